// Package media 从存储读取并返回图片文件
package media

import (
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/anoixa/imagehost/api/common"
	"github.com/anoixa/imagehost/internal/services/assets"
	"github.com/anoixa/imagehost/storage"
	"github.com/anoixa/imagehost/utils"
	"github.com/anoixa/imagehost/utils/mime"
	"github.com/gin-gonic/gin"
)

// Handler 媒体文件接口
type Handler struct {
	assets *assets.Service
}

// NewHandler 创建媒体文件接口
func NewHandler(svc *assets.Service) *Handler {
	return &Handler{assets: svc}
}

// Serve GET <media_url_prefix>*path
func (h *Handler) Serve(c *gin.Context) {
	p := strings.TrimPrefix(c.Param("path"), "/")
	if p == "" || !storage.IsValidStoragePath(p) {
		common.RespondError(c, http.StatusNotFound, "Not found.")
		return
	}

	r, err := h.assets.Open(c.Request.Context(), p)
	if err != nil {
		if storage.IsNotFound(err) {
			common.RespondError(c, http.StatusNotFound, "Not found.")
			return
		}
		if utils.IsClientDisconnect(err) {
			c.Abort()
			return
		}
		utils.Logger().Error().Err(err).Str("path", utils.SanitizeLogMessage(p)).Msg("[Media] failed to open payload")
		common.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	if closer, ok := r.(io.Closer); ok {
		defer closer.Close()
	}

	contentType, err := mime.SniffContentType(r)
	if err != nil || !strings.HasPrefix(contentType, "image/") {
		contentType = mime.ForFormat(strings.TrimPrefix(path.Ext(p), "."))
	}
	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "private, max-age=3600")
	http.ServeContent(c.Writer, c.Request, path.Base(p), time.Time{}, r)
}
