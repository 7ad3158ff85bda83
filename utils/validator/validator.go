package validator

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"

	playground "github.com/go-playground/validator/v10"
)

// allowedImageMimeTypes Allowed image types
var allowedImageMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
}

var (
	validate     *playground.Validate
	validateOnce sync.Once
)

// IsImage 按内容嗅探判断是否为允许的图片类型，读取后复位到开头
func IsImage(file io.ReadSeeker) (bool, string, error) {
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return false, "", err
	}

	if _, err = file.Seek(0, io.SeekStart); err != nil {
		return false, "", err
	}

	mimeType := http.DetectContentType(buffer[:n])
	return allowedImageMimeTypes[mimeType], mimeType, nil
}

// Struct 校验模型上的 validate 标签
func Struct(v interface{}) error {
	validateOnce.Do(func() {
		validate = playground.New()
	})
	return validate.Struct(v)
}

// IsValidationError 是否为字段校验错误
func IsValidationError(err error) bool {
	var verrs playground.ValidationErrors
	return errors.As(err, &verrs)
}

// Message 取第一条校验错误，格式为 "<field>: <说明>"
func Message(err error) string {
	var verrs playground.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body"
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + ": This field is required."
	case "email":
		return field + ": Enter a valid email address."
	case "min":
		return field + ": Ensure this field has at least " + fe.Param() + " characters."
	case "max":
		return field + ": Ensure this field has no more than " + fe.Param() + " characters."
	default:
		return field + ": Invalid value."
	}
}
