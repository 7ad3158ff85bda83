package core

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/anoixa/imagehost/cache"
	"github.com/anoixa/imagehost/config"
	"github.com/anoixa/imagehost/database"
	"github.com/anoixa/imagehost/database/dbtest"
	"github.com/anoixa/imagehost/internal/app"
	"github.com/anoixa/imagehost/internal/image/imagetest"
	"github.com/anoixa/imagehost/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Status string          `json:"status"`
	Msg    string          `json:"msg"`
	Data   json.RawMessage `json:"data"`
}

type testServer struct {
	t       *testing.T
	handler http.Handler
	cookies []*http.Cookie
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Defaults()
	cfg.AppEnv = "development"
	cfg.JWTSecret = "0123456789abcdef0123456789abcdef"
	cfg.RateLimitAuthBurst = 100
	cfg.RateLimitApiBurst = 1000

	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	memory, err := cache.NewMemory(cache.DefaultMemoryConfig())
	require.NoError(t, err)

	container := app.NewContainerWithFactories(cfg,
		database.NewFactoryWithProvider(dbtest.NewProvider(t)),
		storage.NewFactoryWithProvider(local),
		cache.NewFactoryWithProvider(memory),
	)
	require.NoError(t, container.Init())

	handler, cleanup := NewHandler(container, cfg)
	t.Cleanup(cleanup)
	return &testServer{t: t, handler: handler}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range s.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func (s *testServer) json(method, target string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return s.do(req)
}

func (s *testServer) upload(target string, payload []byte, description string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "photo.png")
	require.NoError(s.t, err)
	_, err = part.Write(payload)
	require.NoError(s.t, err)
	if description != "" {
		require.NoError(s.t, mw.WriteField("description", description))
	}
	require.NoError(s.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return s.do(req)
}

func (s *testServer) login(email, password string) {
	s.t.Helper()
	w := s.json(http.MethodPost, "/user/login/", gin.H{"email": email, "password": password})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	s.cookies = w.Result().Cookies()
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
	return env
}

func register(t *testing.T, s *testServer, name string) {
	t.Helper()
	w := s.json(http.MethodPost, "/user/create/", gin.H{
		"email":    name + "@example.com",
		"name":     name,
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)

	w := s.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, map[string]string{"database": "ok", "cache": "ok", "storage": "ok"}, body.Checks)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestVersionAndMetrics(t *testing.T) {
	s := newTestServer(t)

	w := s.do(httptest.NewRequest(http.MethodGet, "/version", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), config.Version)

	w = s.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "imagehost_http_requests_total")
}

func TestUserLifecycle(t *testing.T) {
	s := newTestServer(t)

	w := s.json(http.MethodGet, "/user/me/", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	register(t, s, "alice")

	w = s.json(http.MethodPost, "/user/create/", gin.H{"email": "alice@example.com", "name": "other", "password": "password123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.json(http.MethodPost, "/user/create/", gin.H{"email": "short@example.com", "name": "short", "password": "1234567"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.json(http.MethodPost, "/user/login/", gin.H{"email": "alice@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"success": false}`, w.Body.String())

	s.login("alice@example.com", "password123")
	names := map[string]bool{}
	for _, c := range s.cookies {
		names[c.Name] = true
		assert.True(t, c.HttpOnly)
	}
	assert.True(t, names["access_token"])
	assert.True(t, names["refresh_token"])

	var me struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	w = s.json(http.MethodGet, "/user/me/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &me)
	assert.Equal(t, "alice", me.Name)

	w = s.json(http.MethodPatch, "/user/me/", gin.H{"name": "alicia"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &me)
	assert.Equal(t, "alicia", me.Name)

	w = s.json(http.MethodPost, "/user/logout/", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	for _, c := range w.Result().Cookies() {
		assert.Equal(t, -1, c.MaxAge)
	}

	w = s.json(http.MethodDelete, "/user/me/", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	s.cookies = nil
	w = s.json(http.MethodPost, "/user/login/", gin.H{"email": "alice@example.com", "password": "password123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestImageWorkflow(t *testing.T) {
	s := newTestServer(t)
	register(t, s, "bob")
	s.login("bob@example.com", "password123")

	w := s.upload("/images/", []byte("not an image"), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.upload("/images/", imagetest.PNG(t, 40, 20), "sunset")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID uint `json:"id"`
	}
	decode(t, w, &created)
	require.NotZero(t, created.ID)

	var detail struct {
		Owner      string `json:"owner"`
		Image      string `json:"image"`
		Resolution string `json:"resolution"`
		Format     string `json:"format"`
	}
	w = s.json(http.MethodGet, "/images/1/", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &detail)
	assert.Equal(t, "bob", detail.Owner)
	assert.Equal(t, "40x20px", detail.Resolution)
	assert.Equal(t, "PNG", detail.Format)
	require.True(t, strings.HasPrefix(detail.Image, "http://example.com/static/media/"))

	// 媒体文件无需认证
	mediaURL, err := url.Parse(detail.Image)
	require.NoError(t, err)
	anon := &testServer{t: t, handler: s.handler}
	w = anon.do(httptest.NewRequest(http.MethodGet, mediaURL.Path, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	w = s.json(http.MethodGet, "/images/resize/1/?percent=50", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.json(http.MethodGet, "/images/resize/1/", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	decodeMsg := decode(t, w, nil)
	assert.Equal(t, "A new size must be specified.", decodeMsg.Msg)

	w = s.json(http.MethodGet, "/images/resize/99/?percent=50", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Image does not exist.", decode(t, w, nil).Msg)

	var resizedList []struct {
		ID         uint   `json:"id"`
		Resolution string `json:"resolution"`
	}
	w = s.json(http.MethodGet, "/resized/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resizedList)
	require.Len(t, resizedList, 1)
	assert.Equal(t, "20x10px", resizedList[0].Resolution)

	w = s.upload("/images/resize/?width=10", imagetest.PNG(t, 40, 20), "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.json(http.MethodPatch, "/images/1/", gin.H{"description": "dusk"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "dusk")

	w = s.json(http.MethodDelete, "/images/1/", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.json(http.MethodGet, "/images/1/", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = anon.do(httptest.NewRequest(http.MethodGet, mediaURL.Path, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExpiringLinks(t *testing.T) {
	s := newTestServer(t)
	register(t, s, "carol")
	s.login("carol@example.com", "password123")

	w := s.upload("/images/", imagetest.PNG(t, 8, 8), "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.json(http.MethodGet, "/images/link/1/", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Expiring time must be provided.", decode(t, w, nil).Msg)

	w = s.json(http.MethodGet, "/images/link/1/?time=10", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var issued struct {
		URL       string `json:"url"`
		ExpiresIn int    `json:"expires_in"`
	}
	decode(t, w, &issued)
	assert.Equal(t, 10, issued.ExpiresIn)

	link, err := url.Parse(issued.URL)
	require.NoError(t, err)
	assert.Equal(t, "1", link.Query().Get("exp"))

	anon := &testServer{t: t, handler: s.handler}
	w = anon.do(httptest.NewRequest(http.MethodGet, link.RequestURI(), nil))
	require.Equal(t, http.StatusFound, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/static/media/"))

	w = anon.do(httptest.NewRequest(http.MethodGet, "/garbage?exp=1", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"status":"error","msg":"Invalid or expired link."}`, w.Body.String())
}

func TestRequiresAuthentication(t *testing.T) {
	s := newTestServer(t)

	for _, target := range []string{"/images/", "/images/1/", "/resized/", "/resized/1/", "/images/link/1/?time=5"} {
		w := s.json(http.MethodGet, target, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, target)
	}
}
