package images

import (
	"net/http"

	"github.com/anoixa/imagehost/api/middleware"
	"github.com/gin-gonic/gin"
)

// DeleteImage DELETE /images/:id/，同时删除缩放图和文件
func (h *Handler) DeleteImage(c *gin.Context) {
	id, ok := ParseID(c)
	if !ok {
		return
	}

	if err := h.assets.DeleteImage(c.Request.Context(), id, middleware.CurrentUserID(c)); err != nil {
		RespondAssetError(c, err, msgNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}
