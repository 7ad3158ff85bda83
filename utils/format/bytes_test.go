package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHumanReadableSize(t *testing.T) {
	tests := []struct {
		name     string
		bytes    int64
		expected string
	}{
		{"bytes", 0, "0 B"},
		{"bytes small", 512, "512 B"},
		{"kilobytes", 1024, "1.00 KB"},
		{"megabytes", 1048576, "1.00 MB"},
		{"mixed", 1105197056, "1.03 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HumanReadableSize(tt.bytes))
		})
	}
}

func TestAssetSize(t *testing.T) {
	tests := []struct {
		name     string
		bytes    int64
		expected string
	}{
		{"one byte", 1, "0.0KB"},
		{"exact kilobyte", 1024, "1.0KB"},
		{"fraction", 1536, "1.5KB"},
		{"two decimals", 12646, "12.35KB"},
		{"just below a megabyte", 1048575, "1024.0KB"},
		{"exact megabyte", 1048576, "1.0MB"},
		{"megabytes", 5347738, "5.1MB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AssetSize(tt.bytes))
		})
	}
}
