package generator

import (
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/anoixa/imagehost/utils"
)

// 载荷种类
const (
	KindOriginal = "original"
	KindResized  = "resized"
)

const uploadRoot = "uploads/images"

// PathGenerator 载荷路径生成器
// 格式: uploads/images/<user_id>/<user_id>_<timestamp>_<random>_<kind>.<ext>
type PathGenerator struct {
	now    func() time.Time
	random func() string
}

// NewPathGenerator 创建路径生成器
func NewPathGenerator() *PathGenerator {
	return &PathGenerator{
		now:    time.Now,
		random: func() string { return utils.ShortID(12) },
	}
}

// Generate 生成一个新的存储路径，ext 不含点，可以为空
func (pg *PathGenerator) Generate(userID uint, kind, ext string) string {
	name := fmt.Sprintf("%d_%d_%s_%s", userID, pg.now().Unix(), pg.random(), kind)
	if ext = strings.TrimPrefix(strings.ToLower(ext), "."); ext != "" {
		name += "." + ext
	}
	return path.Join(uploadRoot, strconv.FormatUint(uint64(userID), 10), name)
}

// ExtensionForFormat 格式标签到扩展名
func ExtensionForFormat(format string) string {
	switch strings.ToUpper(format) {
	case "JPEG", "JPG":
		return "jpg"
	case "PNG":
		return "png"
	case "GIF":
		return "gif"
	case "WEBP":
		return "webp"
	case "BMP":
		return "bmp"
	default:
		return strings.ToLower(format)
	}
}
