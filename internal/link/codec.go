// Package link 生成和解析带过期时间的混淆链接
package link

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidLink 链接无法解码、已过期或目标不合法
var ErrInvalidLink = errors.New("invalid or expired link")

// Codec 过期链接编解码器
// 编码内容为 "<resourceURL>?expires=<unix>"，整体做 URL 安全的 base64
type Codec struct {
	// prefix 解码后的目标必须以此开头，防止开放重定向
	prefix string
}

// NewCodec 创建编解码器，prefix 为媒体 URL 前缀，如 /static/media/
func NewCodec(prefix string) *Codec {
	return &Codec{prefix: prefix}
}

// Encode 编码资源地址，有效期为 minutes 分钟
func (c *Codec) Encode(resourceURL string, minutes int, now time.Time) string {
	expires := now.Unix() + int64(minutes)*60
	raw := fmt.Sprintf("%s?expires=%d", resourceURL, expires)
	return base64.URLEncoding.EncodeToString([]byte(raw))
}

// Link 拼出完整的访问链接
func (c *Codec) Link(host, encoded string) string {
	return fmt.Sprintf("http://%s/%s?exp=1", host, encoded)
}

// Decode 解析请求路径，返回去掉过期参数的目标地址
func (c *Codec) Decode(path string, now time.Time) (string, error) {
	encoded := strings.TrimPrefix(path, "/")
	if encoded == "" {
		return "", ErrInvalidLink
	}

	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		raw, err = base64.RawURLEncoding.DecodeString(encoded)
		if err != nil {
			return "", ErrInvalidLink
		}
	}
	decoded := string(raw)

	eq := strings.LastIndex(decoded, "=")
	if eq < 0 {
		return "", ErrInvalidLink
	}
	expires, err := strconv.ParseInt(decoded[eq+1:], 10, 64)
	if err != nil {
		return "", ErrInvalidLink
	}
	if expires < now.Unix() {
		return "", ErrInvalidLink
	}

	target := decoded
	if q := strings.Index(decoded, "?"); q >= 0 {
		target = decoded[:q]
	}
	if !strings.HasPrefix(target, c.prefix) || strings.Contains(target, "..") {
		return "", ErrInvalidLink
	}
	return target, nil
}
