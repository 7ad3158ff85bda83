// Package resized 缩放图接口
package resized

import (
	"net/http"

	"github.com/anoixa/imagehost/api/common"
	"github.com/anoixa/imagehost/api/handler/images"
	"github.com/anoixa/imagehost/api/middleware"
	"github.com/anoixa/imagehost/internal/services/assets"
	"github.com/anoixa/imagehost/utils/format"
	"github.com/gin-gonic/gin"
)

const (
	msgNotFound      = "Not found."
	msgImageNotFound = "Image does not exist."
)

// Handler 缩放图接口
type Handler struct {
	assets       *assets.Service
	fallbackHost string
}

// NewHandler 创建缩放图接口
func NewHandler(svc *assets.Service, fallbackHost string) *Handler {
	return &Handler{assets: svc, fallbackHost: fallbackHost}
}

type listItem struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Resolution string `json:"resolution"`
}

type detail struct {
	ID           uint   `json:"id"`
	ImageID      *uint  `json:"image_id"`
	Owner        string `json:"owner"`
	ResizedImage string `json:"resized_image"`
	Name         string `json:"name"`
	Resolution   string `json:"resolution"`
	Format       string `json:"format"`
	Size         string `json:"size"`
	Description  string `json:"description"`
}

// List GET /resized/
func (h *Handler) List(c *gin.Context) {
	list, err := h.assets.ListResized(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		images.RespondAssetError(c, err, msgNotFound)
		return
	}

	items := make([]listItem, 0, len(list))
	for _, r := range list {
		items = append(items, listItem{ID: r.ID, Name: r.ParentName(), Resolution: r.Resolution()})
	}
	common.RespondSuccess(c, items)
}

// Get GET /resized/:id/
func (h *Handler) Get(c *gin.Context) {
	id, ok := images.ParseID(c)
	if !ok {
		return
	}

	r, err := h.assets.GetResized(c.Request.Context(), id, middleware.CurrentUserID(c))
	if err != nil {
		images.RespondAssetError(c, err, msgNotFound)
		return
	}

	out := detail{
		ID:           r.ID,
		ImageID:      r.ImageID,
		Owner:        r.User.Name,
		ResizedImage: h.assets.MediaURL(images.Host(c, h.fallbackHost), r.Path),
		Name:         r.ParentName(),
		Resolution:   r.Resolution(),
		Size:         format.AssetSize(r.Size),
	}
	if r.Image != nil {
		out.Format = r.Image.Format
		out.Description = r.Image.Description
	}
	common.RespondSuccess(c, out)
}

// Delete DELETE /resized/:id/
func (h *Handler) Delete(c *gin.Context) {
	id, ok := images.ParseID(c)
	if !ok {
		return
	}

	if err := h.assets.DeleteResized(c.Request.Context(), id, middleware.CurrentUserID(c)); err != nil {
		images.RespondAssetError(c, err, msgNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

// Link GET /resized/link/:id/?time=<minutes>
func (h *Handler) Link(c *gin.Context) {
	id, ok := images.ParseID(c)
	if !ok {
		return
	}

	issued, err := h.assets.ResizedLink(c.Request.Context(), id, middleware.CurrentUserID(c), c.Query("time"), images.Host(c, h.fallbackHost))
	if err != nil {
		images.RespondAssetError(c, err, msgImageNotFound)
		return
	}
	common.RespondSuccess(c, issued)
}
