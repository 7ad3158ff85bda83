package images

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/anoixa/imagehost/api/common"
	"github.com/anoixa/imagehost/api/middleware"
	"github.com/anoixa/imagehost/internal/image"
	"github.com/anoixa/imagehost/internal/services/assets"
	"github.com/anoixa/imagehost/utils/format"
	"github.com/gin-gonic/gin"
)

var errFileTooLarge = errors.New("file too large")

// UploadImage POST /images/
func (h *Handler) UploadImage(c *gin.Context) {
	in, ok := h.readUpload(c)
	if !ok {
		return
	}

	img, err := h.assets.Upload(c.Request.Context(), in)
	if err != nil {
		RespondAssetError(c, err, msgImageNotFound)
		return
	}

	common.RespondCreated(c, gin.H{"id": img.ID})
}

// UploadAndResize POST /images/resize/
// 参数先于文件校验
func (h *Handler) UploadAndResize(c *gin.Context) {
	params, err := image.ResolveQuery(c.Request.URL.Query())
	if err != nil {
		RespondAssetError(c, err, msgImageNotFound)
		return
	}

	in, ok := h.readUpload(c)
	if !ok {
		return
	}

	img, resized, err := h.assets.UploadAndResize(c.Request.Context(), in, params)
	if err != nil {
		RespondAssetError(c, err, msgImageNotFound)
		return
	}

	host := Host(c, h.fallbackHost)
	common.RespondCreated(c, gin.H{
		"id":            img.ID,
		"description":   img.Description,
		"image":         h.assets.MediaURL(host, img.Path),
		"name":          img.Name,
		"resized_id":    resized.ID,
		"resized_image": h.assets.MediaURL(host, resized.Path),
	})
}

// readUpload 读取 multipart 中的 image 字段
func (h *Handler) readUpload(c *gin.Context) (assets.UploadInput, bool) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			common.RespondError(c, http.StatusBadRequest, msgNoFile)
		} else {
			common.RespondError(c, http.StatusBadRequest, msgInvalidImage)
		}
		return assets.UploadInput{}, false
	}

	data, err := h.readFile(fileHeader)
	if err != nil {
		if errors.Is(err, errFileTooLarge) {
			common.RespondError(c, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("%s (%s)", msgFileTooLarge, format.HumanReadableSize(h.maxUploadSize)))
			return assets.UploadInput{}, false
		}
		RespondAssetError(c, err, msgImageNotFound)
		return assets.UploadInput{}, false
	}

	return assets.UploadInput{
		UserID:      middleware.CurrentUserID(c),
		FileName:    fileHeader.Filename,
		Description: c.PostForm("description"),
		Data:        data,
	}, true
}

func (h *Handler) readFile(fileHeader *multipart.FileHeader) ([]byte, error) {
	if h.maxUploadSize > 0 && fileHeader.Size > h.maxUploadSize {
		return nil, errFileTooLarge
	}
	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	var r io.Reader = file
	if h.maxUploadSize > 0 {
		r = io.LimitReader(file, h.maxUploadSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if h.maxUploadSize > 0 && int64(len(data)) > h.maxUploadSize {
		return nil, errFileTooLarge
	}
	return data, nil
}
