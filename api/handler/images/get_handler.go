package images

import (
	"github.com/anoixa/imagehost/api/common"
	"github.com/anoixa/imagehost/api/middleware"
	"github.com/anoixa/imagehost/utils/format"
	"github.com/gin-gonic/gin"
)

type imageDetail struct {
	ID          uint   `json:"id"`
	Owner       string `json:"owner"`
	Image       string `json:"image"`
	Name        string `json:"name"`
	Resolution  string `json:"resolution"`
	Format      string `json:"format"`
	Size        string `json:"size"`
	Description string `json:"description"`
}

// GetImage GET /images/:id/
func (h *Handler) GetImage(c *gin.Context) {
	id, ok := ParseID(c)
	if !ok {
		return
	}

	img, err := h.assets.GetImage(c.Request.Context(), id, middleware.CurrentUserID(c))
	if err != nil {
		RespondAssetError(c, err, msgNotFound)
		return
	}

	common.RespondSuccess(c, imageDetail{
		ID:          img.ID,
		Owner:       img.User.Name,
		Image:       h.assets.MediaURL(Host(c, h.fallbackHost), img.Path),
		Name:        img.Name,
		Resolution:  img.Resolution(),
		Format:      img.Format,
		Size:        format.AssetSize(img.Size),
		Description: img.Description,
	})
}
