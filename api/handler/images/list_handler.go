package images

import (
	"github.com/anoixa/imagehost/api/common"
	"github.com/anoixa/imagehost/api/middleware"
	"github.com/gin-gonic/gin"
)

type listItem struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListImages GET /images/
func (h *Handler) ListImages(c *gin.Context) {
	list, err := h.assets.ListImages(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		RespondAssetError(c, err, msgNotFound)
		return
	}

	items := make([]listItem, 0, len(list))
	for _, img := range list {
		items = append(items, listItem{ID: img.ID, Name: img.Name, Description: img.Description})
	}
	common.RespondSuccess(c, items)
}
