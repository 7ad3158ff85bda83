package mime

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

// SniffContentType 嗅探内容类型，读取后复位到开头
func SniffContentType(stream io.ReadSeeker) (string, error) {
	buffer := make([]byte, 512)

	n, err := stream.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read stream for mime sniffing: %w", err)
	}

	contentType := http.DetectContentType(buffer[:n])

	_, err = stream.Seek(0, io.SeekStart)
	if err != nil {
		return "", fmt.Errorf("failed to seek stream back to start after sniffing: %w", err)
	}

	return contentType, nil
}

// ForFormat 格式标签对应的 MIME 类型
func ForFormat(format string) string {
	switch strings.ToUpper(format) {
	case "JPEG", "JPG":
		return "image/jpeg"
	case "PNG":
		return "image/png"
	case "GIF":
		return "image/gif"
	case "WEBP":
		return "image/webp"
	case "BMP":
		return "image/bmp"
	default:
		return "application/octet-stream"
	}
}
