package resized

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anoixa/imagehost/api/middleware"
	"github.com/anoixa/imagehost/database/dbtest"
	"github.com/anoixa/imagehost/database/models"
	"github.com/anoixa/imagehost/database/repo/images"
	"github.com/anoixa/imagehost/internal/image"
	"github.com/anoixa/imagehost/internal/image/imagetest"
	"github.com/anoixa/imagehost/internal/services/assets"
	"github.com/anoixa/imagehost/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type response struct {
	Status string          `json:"status"`
	Msg    string          `json:"msg"`
	Data   json.RawMessage `json:"data"`
}

func setup(t *testing.T) (*gin.Engine, *models.Resized) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	provider := dbtest.NewProvider(t)
	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	resizedRepo := images.NewResizedRepository(provider)
	engine := image.NewEngine(image.NewStdCodec(), local, resizedRepo, image.EngineConfig{MaxDimension: 2000, MaxConcurrency: 1})
	svc := assets.NewService(images.NewRepository(provider), resizedRepo, local, engine, assets.Config{MediaURLPrefix: "/static/media/"})

	owner := dbtest.CreateUser(t, provider, "owner")
	other := dbtest.CreateUser(t, provider, "other")
	ctx := context.Background()
	img, err := svc.Upload(ctx, assets.UploadInput{UserID: owner.ID, FileName: "tree.png", Description: "oak", Data: imagetest.PNG(t, 50, 20)})
	require.NoError(t, err)
	height := 10
	r, err := svc.Resize(ctx, img.ID, owner.ID, image.SizeParams{Quality: 80, Height: &height})
	require.NoError(t, err)

	h := NewHandler(svc, "fallback.local")
	router := gin.New()
	router.Use(func(c *gin.Context) {
		user := owner
		if c.GetHeader("X-Test-User") == "other" {
			user = other
		}
		c.Set(middleware.ContextUserIDKey, user.ID)
		c.Set(middleware.ContextUserKey, user)
		c.Next()
	})
	router.GET("/resized/", h.List)
	router.GET("/resized/:id/", h.Get)
	router.DELETE("/resized/:id/", h.Delete)
	router.GET("/resized/link/:id/", h.Link)
	return router, r
}

func serve(router *gin.Engine, method, target string, asOther bool) (*httptest.ResponseRecorder, response) {
	req := httptest.NewRequest(method, target, nil)
	if asOther {
		req.Header.Set("X-Test-User", "other")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	var body response
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestListAndGet(t *testing.T) {
	router, r := setup(t)

	w, body := serve(router, http.MethodGet, "/resized/", false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":1,"name":"tree.png","resolution":"25x10px"}]`, string(body.Data))

	w, body = serve(router, http.MethodGet, "/resized/", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(body.Data))

	w, body = serve(router, http.MethodGet, "/resized/1/", false)
	require.Equal(t, http.StatusOK, w.Code)
	var d detail
	require.NoError(t, json.Unmarshal(body.Data, &d))
	require.NotNil(t, d.ImageID)
	assert.Equal(t, *r.ImageID, *d.ImageID)
	assert.Equal(t, "owner", d.Owner)
	assert.Equal(t, "PNG", d.Format)
	assert.Equal(t, "oak", d.Description)
	assert.Equal(t, "http://example.com/static/media/"+r.Path, d.ResizedImage)

	w, body = serve(router, http.MethodGet, "/resized/1/", true)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not found.", body.Msg)
}

func TestLinkAndDelete(t *testing.T) {
	router, _ := setup(t)

	w, body := serve(router, http.MethodGet, "/resized/link/1/?time=3", false)
	require.Equal(t, http.StatusOK, w.Code)
	var issued assets.IssuedLink
	require.NoError(t, json.Unmarshal(body.Data, &issued))
	assert.Equal(t, 3, issued.ExpiresIn)

	w, body = serve(router, http.MethodGet, "/resized/link/1/?time=3", true)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Image does not exist.", body.Msg)

	w, _ = serve(router, http.MethodDelete, "/resized/1/", true)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = serve(router, http.MethodDelete, "/resized/1/", false)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, _ = serve(router, http.MethodGet, "/resized/1/", false)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
