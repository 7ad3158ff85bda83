package image

import (
	"fmt"
	"sync"

	"github.com/davidbyttow/govips/v2/vips"
)

var vipsOnce sync.Once

// VipsCodec 基于 libvips 的编解码器，支持 WEBP 编码
type VipsCodec struct{}

// NewVipsCodec 创建 libvips 编解码器，首次调用时启动 libvips
func NewVipsCodec() *VipsCodec {
	vipsOnce.Do(func() {
		vips.LoggingSettings(nil, vips.LogLevelWarning)
		vips.Startup(nil)
	})
	return &VipsCodec{}
}

// Name 编解码器名称
func (c *VipsCodec) Name() string {
	return "vips"
}

var vipsEncodable = map[string]bool{
	FormatJPEG: true,
	FormatPNG:  true,
	FormatGIF:  true,
	FormatWEBP: true,
}

// CanEncode BMP 不能导出
func (c *VipsCodec) CanEncode(format string) bool {
	return vipsEncodable[normalizeFormat(format)]
}

// Decode 从内存解码
func (c *VipsCodec) Decode(data []byte) (*Picture, error) {
	ref, err := vips.NewImageFromBuffer(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	format, ok := vipsFormats[ref.Format()]
	if !ok {
		ref.Close()
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, vips.ImageTypes[ref.Format()])
	}
	return &Picture{
		Width:   ref.Width(),
		Height:  ref.Height(),
		Format:  format,
		handle:  ref,
		release: ref.Close,
	}, nil
}

// Resize 原地缩放，宽高比例分别计算
func (c *VipsCodec) Resize(pic *Picture, width, height int) (*Picture, error) {
	ref, ok := pic.handle.(*vips.ImageRef)
	if !ok {
		return nil, fmt.Errorf("picture was not decoded by the vips codec")
	}
	hscale := float64(width) / float64(ref.Width())
	vscale := float64(height) / float64(ref.Height())
	if err := ref.ResizeWithVScale(hscale, vscale, vips.KernelLanczos3); err != nil {
		return nil, fmt.Errorf("vips resize failed: %w", err)
	}
	pic.Width, pic.Height = ref.Width(), ref.Height()
	return pic, nil
}

// Encode 按格式导出
func (c *VipsCodec) Encode(pic *Picture, format string, quality int) ([]byte, error) {
	ref, ok := pic.handle.(*vips.ImageRef)
	if !ok {
		return nil, fmt.Errorf("picture was not decoded by the vips codec")
	}

	var (
		out []byte
		err error
	)
	switch normalizeFormat(format) {
	case FormatJPEG:
		out, _, err = ref.ExportJpeg(&vips.JpegExportParams{Quality: quality, StripMetadata: true})
	case FormatPNG:
		out, _, err = ref.ExportPng(vips.NewPngExportParams())
	case FormatWEBP:
		out, _, err = ref.ExportWebp(&vips.WebpExportParams{Quality: quality, StripMetadata: true, ReductionEffort: 4})
	case FormatGIF:
		out, _, err = ref.ExportGIF(vips.NewGifExportParams())
	default:
		return nil, fmt.Errorf("%w: cannot encode %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("vips export %s failed: %w", format, err)
	}
	return out, nil
}

var vipsFormats = map[vips.ImageType]string{
	vips.ImageTypeJPEG: FormatJPEG,
	vips.ImageTypePNG:  FormatPNG,
	vips.ImageTypeGIF:  FormatGIF,
	vips.ImageTypeWEBP: FormatWEBP,
	vips.ImageTypeBMP:  FormatBMP,
}
