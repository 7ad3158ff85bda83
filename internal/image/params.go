package image

import (
	"math"
	"net/url"
	"strconv"
)

// DefaultQuality 未指定 quality 时使用的值
const DefaultQuality = "75"

// ParamErrorKind 参数错误类别
type ParamErrorKind int

const (
	// ErrSizeMissing 未给出任何尺寸参数
	ErrSizeMissing ParamErrorKind = iota + 1
	// ErrSizeConflict percent 与 width/height 同时给出
	ErrSizeConflict
	// ErrNotInteger 参数不是无符号整数
	ErrNotInteger
	// ErrOutOfRange 参数超出范围
	ErrOutOfRange
)

// ParamError 尺寸参数校验错误，对应 400
type ParamError struct {
	Kind    ParamErrorKind
	Message string
}

func (e *ParamError) Error() string {
	return e.Message
}

// RawSizeParams 原始字符串参数，空字符串视为未提供
type RawSizeParams struct {
	Quality string
	Percent string
	Width   string
	Height  string
}

// SizeParams 解析后的参数，未提供的尺寸为 nil
type SizeParams struct {
	Quality int
	Percent *int
	Width   *int
	Height  *int
}

// ResolveQuery 从查询串读取参数并解析
func ResolveQuery(query url.Values) (SizeParams, error) {
	return Resolve(RawSizeParams{
		Quality: query.Get("quality"),
		Percent: query.Get("percent"),
		Width:   query.Get("width"),
		Height:  query.Get("height"),
	})
}

// Resolve 校验并转换尺寸参数，第一个失败的规则决定错误信息
func Resolve(raw RawSizeParams) (SizeParams, error) {
	if raw.Quality == "" {
		raw.Quality = DefaultQuality
	}

	if raw.Percent == "" && raw.Width == "" && raw.Height == "" {
		return SizeParams{}, &ParamError{Kind: ErrSizeMissing, Message: "A new size must be specified."}
	}
	if raw.Percent != "" && (raw.Width != "" || raw.Height != "") {
		return SizeParams{}, &ParamError{Kind: ErrSizeConflict, Message: "Either the percentage or the new size must be given, not both."}
	}
	for _, v := range []string{raw.Quality, raw.Percent, raw.Width, raw.Height} {
		if v != "" && !isDigits(v) {
			return SizeParams{}, &ParamError{Kind: ErrNotInteger, Message: "All given parameters must be of type int."}
		}
	}

	params := SizeParams{
		Quality: atoi(raw.Quality),
		Percent: optional(raw.Percent),
		Width:   optional(raw.Width),
		Height:  optional(raw.Height),
	}

	if params.Quality < 1 || params.Quality > 100 {
		return SizeParams{}, &ParamError{Kind: ErrOutOfRange, Message: "Quality must be between 1 and 100."}
	}
	if params.Percent != nil && *params.Percent < 1 {
		return SizeParams{}, &ParamError{Kind: ErrOutOfRange, Message: "Percent must be greater or equal to 1."}
	}
	if params.Width != nil && *params.Width < 1 {
		return SizeParams{}, &ParamError{Kind: ErrOutOfRange, Message: "Width must be greater or equal to 1."}
	}
	if params.Height != nil && *params.Height < 1 {
		return SizeParams{}, &ParamError{Kind: ErrOutOfRange, Message: "Height must be greater or equal to 1."}
	}
	return params, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

// atoi 只接受已校验的数字串，溢出时截断到 MaxInt32
func atoi(s string) int {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return math.MaxInt32
	}
	return int(n)
}

func optional(s string) *int {
	if s == "" {
		return nil
	}
	n := atoi(s)
	return &n
}
