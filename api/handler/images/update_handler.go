package images

import (
	"net/http"

	"github.com/anoixa/imagehost/api/common"
	"github.com/anoixa/imagehost/api/middleware"
	"github.com/gin-gonic/gin"
)

type updateRequest struct {
	Description *string `form:"description" json:"description"`
}

// UpdateImage PATCH /images/:id/，只允许修改描述
func (h *Handler) UpdateImage(c *gin.Context) {
	id, ok := ParseID(c)
	if !ok {
		return
	}

	var req updateRequest
	if err := c.ShouldBind(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID := middleware.CurrentUserID(c)
	if req.Description == nil {
		img, err := h.assets.GetImage(c.Request.Context(), id, userID)
		if err != nil {
			RespondAssetError(c, err, msgNotFound)
			return
		}
		common.RespondSuccess(c, gin.H{"id": img.ID, "description": img.Description})
		return
	}

	img, err := h.assets.UpdateDescription(c.Request.Context(), id, userID, *req.Description)
	if err != nil {
		RespondAssetError(c, err, msgNotFound)
		return
	}
	common.RespondSuccess(c, gin.H{"id": img.ID, "description": img.Description})
}
