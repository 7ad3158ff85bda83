package image

import "fmt"

// MaxEncodeQuality 编码时质量上限，记录的 quality 不受影响
const MaxEncodeQuality = 95

// GeometryError 目标尺寸不可用，对应 400
type GeometryError struct {
	Message string
}

func (e *GeometryError) Error() string {
	return e.Message
}

// EncodeQuality 实际编码使用的质量
func EncodeQuality(quality int) int {
	if quality > MaxEncodeQuality {
		return MaxEncodeQuality
	}
	return quality
}

// TargetSize 计算目标尺寸，全部使用整数运算向下取整
// percent 与 width/height 的互斥由 Resolve 保证
func TargetSize(w0, h0 int, params SizeParams) (int, int) {
	width, height := int64(w0), int64(h0)

	switch {
	case params.Percent != nil:
		p := int64(*params.Percent)
		return int(width * p / 100), int(height * p / 100)
	case params.Width != nil && params.Height != nil:
		return *params.Width, *params.Height
	case params.Width != nil:
		w := int64(*params.Width)
		if width == 0 {
			return int(w), 0
		}
		return int(w), int(height * w / width)
	case params.Height != nil:
		h := int64(*params.Height)
		if height == 0 {
			return 0, int(h)
		}
		return int(width * h / height), int(h)
	default:
		return w0, h0
	}
}

// CheckTargetSize 拒绝为零或超过上限的目标尺寸，maxDimension <= 0 表示不限
func CheckTargetSize(width, height, maxDimension int) error {
	if width < 1 || height < 1 {
		return &GeometryError{Message: "The requested size is too small for this image."}
	}
	if maxDimension > 0 && (width > maxDimension || height > maxDimension) {
		return &GeometryError{Message: fmt.Sprintf("The requested size exceeds the maximum of %d pixels.", maxDimension)}
	}
	return nil
}
