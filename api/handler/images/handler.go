package images

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/anoixa/imagehost/api/common"
	"github.com/anoixa/imagehost/database/repo/images"
	"github.com/anoixa/imagehost/internal/image"
	"github.com/anoixa/imagehost/internal/services/assets"
	"github.com/anoixa/imagehost/utils"
	"github.com/anoixa/imagehost/utils/validator"
	"github.com/gin-gonic/gin"
)

const (
	msgInvalidImage  = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
	msgImageNotFound = "Image does not exist."
	msgNotFound      = "Not found."
	msgNoFile        = "No file was submitted."
	msgInternalError = "Internal server error"
	msgFileTooLarge  = "The uploaded file exceeds the maximum allowed size."
)

// Handler 原图接口
type Handler struct {
	assets        *assets.Service
	maxUploadSize int64
	fallbackHost  string
}

// NewHandler 创建原图接口，maxUploadSize 为字节数，fallbackHost 用于请求缺少 Host 的情况
func NewHandler(svc *assets.Service, maxUploadSize int64, fallbackHost string) *Handler {
	return &Handler{
		assets:        svc,
		maxUploadSize: maxUploadSize,
		fallbackHost:  fallbackHost,
	}
}

// Host 生成链接使用的主机名
func Host(c *gin.Context, fallback string) string {
	if c.Request.Host != "" {
		return c.Request.Host
	}
	return fallback
}

// ParseID 解析路径中的 :id，非法 ID 视为不存在
func ParseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		common.RespondError(c, http.StatusNotFound, msgNotFound)
		return 0, false
	}
	return uint(id), true
}

// RespondAssetError 将服务层错误映射为 HTTP 响应
// 不属于当前用户的记录与不存在的记录一样返回 404
func RespondAssetError(c *gin.Context, err error, notFoundMsg string) {
	var (
		paramErr *image.ParamError
		geoErr   *image.GeometryError
		linkErr  *assets.LinkError
	)
	switch {
	case errors.Is(err, images.ErrNotFound):
		common.RespondError(c, http.StatusNotFound, notFoundMsg)
	case errors.As(err, &paramErr):
		common.RespondError(c, http.StatusBadRequest, paramErr.Message)
	case errors.As(err, &geoErr):
		common.RespondError(c, http.StatusBadRequest, geoErr.Message)
	case errors.As(err, &linkErr):
		common.RespondError(c, http.StatusBadRequest, linkErr.Message)
	case errors.Is(err, assets.ErrInvalidImage), errors.Is(err, image.ErrDecode):
		common.RespondError(c, http.StatusBadRequest, msgInvalidImage)
	case errors.Is(err, image.ErrUnsupportedFormat):
		common.RespondError(c, http.StatusBadRequest, err.Error())
	case validator.IsValidationError(err):
		common.RespondError(c, http.StatusBadRequest, validator.Message(err))
	case utils.IsClientDisconnect(err):
		utils.LogIfDevf("[Images] client went away: %v", err)
		c.Abort()
	default:
		_ = c.Error(err)
		utils.Logger().Error().Err(err).Str("path", c.FullPath()).Msg("[Images] request failed")
		common.RespondError(c, http.StatusInternalServerError, msgInternalError)
	}
}
