package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "Test@example.com", NormalizeEmail("Test@EXAMPLE.com"))
	assert.Equal(t, "user@example.com", NormalizeEmail("  user@Example.COM "))
	assert.Equal(t, "not-an-email", NormalizeEmail("not-an-email"))
}

func TestResolution(t *testing.T) {
	img := &Image{Width: 800, Height: 600}
	assert.Equal(t, "800x600px", img.Resolution())

	r := &Resized{Width: 40, Height: 30}
	assert.Equal(t, "40x30px", r.Resolution())
	assert.Equal(t, "", r.ParentName())

	r.Image = &Image{Name: "cat.png"}
	assert.Equal(t, "cat.png", r.ParentName())
}
