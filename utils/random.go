package utils

import (
	"strings"

	"github.com/google/uuid"
)

// ShortID 返回 n 位十六进制随机串，n 超出范围时返回完整的 32 位
func ShortID(n int) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	if n <= 0 || n > len(id) {
		return id
	}
	return id[:n]
}
