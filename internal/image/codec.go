package image

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedFormat 编解码器不支持该格式
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrDecode 数据不是可解码的图片
	ErrDecode = errors.New("failed to decode image")
)

// 格式标签，写入 Image.Format
const (
	FormatJPEG = "JPEG"
	FormatPNG  = "PNG"
	FormatGIF  = "GIF"
	FormatWEBP = "WEBP"
	FormatBMP  = "BMP"
)

// Picture 解码后的图片，handle 由具体编解码器持有
type Picture struct {
	Width  int
	Height int
	Format string

	handle  interface{}
	release func()
}

// Close 释放编解码器资源
func (p *Picture) Close() {
	if p != nil && p.release != nil {
		p.release()
		p.release = nil
	}
}

// Codec 图片编解码能力
type Codec interface {
	// Decode 解码图片
	Decode(data []byte) (*Picture, error)
	// Resize 缩放到指定尺寸
	Resize(pic *Picture, width, height int) (*Picture, error)
	// Encode 按格式与质量编码
	Encode(pic *Picture, format string, quality int) ([]byte, error)
	// CanEncode 是否能输出该格式
	CanEncode(format string) bool
	// Name 编解码器名称
	Name() string
}

// prober 可以不完整解码就读出尺寸的编解码器
type prober interface {
	Probe(data []byte) (width, height int, format string, err error)
}

// Probe 读取上传图片的宽高与格式
func Probe(codec Codec, data []byte) (width, height int, format string, err error) {
	if p, ok := codec.(prober); ok {
		return p.Probe(data)
	}
	pic, err := codec.Decode(data)
	if err != nil {
		return 0, 0, "", err
	}
	defer pic.Close()
	return pic.Width, pic.Height, pic.Format, nil
}

// NewCodec 按名称创建编解码器
func NewCodec(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "", "std":
		return NewStdCodec(), nil
	case "vips":
		return NewVipsCodec(), nil
	default:
		return nil, fmt.Errorf("unknown image codec: %s", name)
	}
}

// normalizeFormat 统一格式标签
func normalizeFormat(name string) string {
	switch strings.ToUpper(name) {
	case "JPEG", "JPG":
		return FormatJPEG
	case "PNG":
		return FormatPNG
	case "GIF":
		return FormatGIF
	case "WEBP":
		return FormatWEBP
	case "BMP":
		return FormatBMP
	default:
		return strings.ToUpper(name)
	}
}
