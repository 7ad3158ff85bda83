package utils

import (
	"context"
	"errors"
	"strings"
)

// IsClientDisconnect 客户端断开导致的取消
// MinIO、WebDAV 客户端有时只在错误文本里带上 context canceled
func IsClientDisconnect(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	return strings.Contains(err.Error(), "context canceled")
}
