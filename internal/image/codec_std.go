package image

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// StdCodec 纯 Go 编解码器，WEBP 只能解码
type StdCodec struct{}

// NewStdCodec 创建纯 Go 编解码器
func NewStdCodec() *StdCodec {
	return &StdCodec{}
}

// Name 编解码器名称
func (c *StdCodec) Name() string {
	return "std"
}

var stdEncodable = map[string]bool{
	FormatJPEG: true,
	FormatPNG:  true,
	FormatGIF:  true,
	FormatBMP:  true,
}

// CanEncode WEBP 之外的格式均可输出
func (c *StdCodec) CanEncode(format string) bool {
	return stdEncodable[normalizeFormat(format)]
}

// Probe 只解析头部
func (c *StdCodec) Probe(data []byte) (int, int, string, error) {
	cfg, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return cfg.Width, cfg.Height, normalizeFormat(name), nil
}

// Decode 解码图片，GIF 只取第一帧
func (c *StdCodec) Decode(data []byte) (*Picture, error) {
	img, name, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	b := img.Bounds()
	return &Picture{
		Width:  b.Dx(),
		Height: b.Dy(),
		Format: normalizeFormat(name),
		handle: img,
	}, nil
}

// Resize 使用 Catmull-Rom 插值缩放
func (c *StdCodec) Resize(pic *Picture, width, height int) (*Picture, error) {
	src, ok := pic.handle.(image.Image)
	if !ok {
		return nil, fmt.Errorf("picture was not decoded by the std codec")
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return &Picture{
		Width:  width,
		Height: height,
		Format: pic.Format,
		handle: dst,
	}, nil
}

// Encode 按格式编码，quality 只对 JPEG 生效
func (c *StdCodec) Encode(pic *Picture, format string, quality int) ([]byte, error) {
	img, ok := pic.handle.(image.Image)
	if !ok {
		return nil, fmt.Errorf("picture was not decoded by the std codec")
	}

	var buf bytes.Buffer
	var err error
	switch normalizeFormat(format) {
	case FormatJPEG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	case FormatPNG:
		err = png.Encode(&buf, img)
	case FormatGIF:
		err = gif.Encode(&buf, img, &gif.Options{NumColors: 256})
	case FormatBMP:
		err = bmp.Encode(&buf, img)
	default:
		return nil, fmt.Errorf("%w: cannot encode %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", format, err)
	}
	return buf.Bytes(), nil
}
