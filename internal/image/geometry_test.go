package image

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intp(v int) *int { return &v }

func TestTargetSize(t *testing.T) {
	tests := []struct {
		name   string
		w0, h0 int
		params SizeParams
		wantW  int
		wantH  int
	}{
		{"percent half", 800, 600, SizeParams{Percent: intp(50)}, 400, 300},
		{"percent floors", 333, 101, SizeParams{Percent: intp(33)}, 109, 33},
		{"percent upscale", 10, 10, SizeParams{Percent: intp(250)}, 25, 25},
		{"width keeps aspect", 800, 600, SizeParams{Width: intp(200)}, 200, 150},
		{"width floors", 1000, 333, SizeParams{Width: intp(100)}, 100, 33},
		{"height keeps aspect", 800, 600, SizeParams{Height: intp(300)}, 400, 300},
		{"both given", 800, 600, SizeParams{Width: intp(10), Height: intp(90)}, 10, 90},
		{"tiny percent", 10, 10, SizeParams{Percent: intp(1)}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := TargetSize(tt.w0, tt.h0, tt.params)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestTargetSize_PercentProperty(t *testing.T) {
	for p := 1; p <= 300; p += 7 {
		for _, dims := range [][2]int{{1, 1}, {17, 3}, {1920, 1080}, {4000, 3}} {
			w, h := TargetSize(dims[0], dims[1], SizeParams{Percent: intp(p)})
			assert.Equal(t, dims[0]*p/100, w)
			assert.Equal(t, dims[1]*p/100, h)
		}
	}
}

func TestCheckTargetSize(t *testing.T) {
	assert.NoError(t, CheckTargetSize(1, 1, 100))
	assert.NoError(t, CheckTargetSize(100, 100, 100))
	assert.NoError(t, CheckTargetSize(50000, 1, 0))

	err := CheckTargetSize(0, 5, 100)
	assert.EqualError(t, err, "The requested size is too small for this image.")

	err = CheckTargetSize(101, 5, 100)
	assert.EqualError(t, err, "The requested size exceeds the maximum of 100 pixels.")
}

func TestEncodeQuality(t *testing.T) {
	assert.Equal(t, 1, EncodeQuality(1))
	assert.Equal(t, 95, EncodeQuality(95))
	assert.Equal(t, 95, EncodeQuality(96))
	assert.Equal(t, 95, EncodeQuality(100))
}
