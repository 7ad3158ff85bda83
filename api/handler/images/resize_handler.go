package images

import (
	"github.com/anoixa/imagehost/api/common"
	"github.com/anoixa/imagehost/api/middleware"
	"github.com/anoixa/imagehost/internal/image"
	"github.com/gin-gonic/gin"
)

// ResizeImage GET /images/resize/:id/
// 先校验尺寸参数，再检查图片归属
func (h *Handler) ResizeImage(c *gin.Context) {
	params, err := image.ResolveQuery(c.Request.URL.Query())
	if err != nil {
		RespondAssetError(c, err, msgImageNotFound)
		return
	}

	id, ok := ParseID(c)
	if !ok {
		return
	}

	resized, err := h.assets.Resize(c.Request.Context(), id, middleware.CurrentUserID(c), params)
	if err != nil {
		RespondAssetError(c, err, msgImageNotFound)
		return
	}

	common.RespondSuccess(c, gin.H{
		"id":            resized.ID,
		"resized_image": h.assets.MediaURL(Host(c, h.fallbackHost), resized.Path),
	})
}
