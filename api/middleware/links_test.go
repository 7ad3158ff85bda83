package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpiringLinks(t *testing.T) {
	resolve := func(path string) (string, error) {
		if path == "/good" {
			return "/static/media/uploads/images/1/a.png", nil
		}
		return "", errors.New("bad link")
	}
	var fallthroughCalls int
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fallthroughCalls++
		w.WriteHeader(http.StatusTeapot)
	})
	handler := ExpiringLinks(resolve, next)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/good?exp=1", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/static/media/uploads/images/1/a.png", w.Header().Get("Location"))

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bad?exp=1", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"status":"error","msg":"Invalid or expired link."}`, w.Body.String())

	assert.Zero(t, fallthroughCalls)

	for _, target := range []string{"/good", "/good?exp=0", "/images/?exp=true"} {
		w = httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusTeapot, w.Code, target)
	}
	assert.Equal(t, 3, fallthroughCalls)
}
