package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	byteUnit = 1024
	megabyte = byteUnit * byteUnit
)

var units = []string{"B", "KB", "MB", "GB", "TB", "PB"}

// HumanReadableSize 将字节数转换为人类可读的格式，用于日志与错误信息
func HumanReadableSize(bytes int64) string {
	if bytes < byteUnit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(byteUnit), 1
	for n := bytes / byteUnit; n >= byteUnit && exp < len(units)-1; n /= byteUnit {
		div *= byteUnit
		exp++
	}

	return fmt.Sprintf("%.2f %s", float64(bytes)/float64(div), units[exp])
}

// AssetSize API 展示用的大小: 不足 1MB 以 KB 表示，保留两位小数且去掉多余的 0
// 例如 1536 -> "1.5KB"，1048576 -> "1.0MB"
func AssetSize(bytes int64) string {
	mb := float64(bytes) / megabyte
	if mb >= 1 {
		return decimal(mb) + "MB"
	}
	return decimal(float64(bytes)/byteUnit) + "KB"
}

func decimal(v float64) string {
	s := strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
