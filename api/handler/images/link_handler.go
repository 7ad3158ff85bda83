package images

import (
	"github.com/anoixa/imagehost/api/common"
	"github.com/anoixa/imagehost/api/middleware"
	"github.com/gin-gonic/gin"
)

// ImageLink GET /images/link/:id/?time=<minutes>
func (h *Handler) ImageLink(c *gin.Context) {
	id, ok := ParseID(c)
	if !ok {
		return
	}

	issued, err := h.assets.ImageLink(c.Request.Context(), id, middleware.CurrentUserID(c), c.Query("time"), Host(c, h.fallbackHost))
	if err != nil {
		RespondAssetError(c, err, msgImageNotFound)
		return
	}
	common.RespondSuccess(c, issued)
}
