package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.Equal(t, "sqlite", cfg.DBType)
	assert.Equal(t, 5*time.Minute, cfg.JWTAccessTTL)
	assert.Equal(t, 24*time.Hour, cfg.JWTRefreshTTL)
	assert.Equal(t, "/static/media/", cfg.MediaURLPrefix)
	assert.Equal(t, "std", cfg.ImageCodec)
	assert.Equal(t, int64(4), cfg.ImageMaxConcurrency)
}

func TestDecode_WeakTypes(t *testing.T) {
	cfg, err := Decode(map[string]interface{}{
		"server_port":           "9090",
		"jwt_access_ttl":        "90s",
		"storage_minio_use_ssl": "true",
	})
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, 90*time.Second, cfg.JWTAccessTTL)
	assert.True(t, cfg.StorageMinioUseSSL)
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	assert.Error(t, cfg.Validate(), "empty secret must be rejected")

	cfg.JWTSecret = "0123456789abcdef0123456789abcdef"
	assert.NoError(t, cfg.Validate())

	cfg.MediaURLPrefix = "static"
	assert.Error(t, cfg.Validate())
}

func TestAddrAndHost(t *testing.T) {
	cfg := Defaults()
	cfg.ServerHost = "0.0.0.0"
	cfg.ServerPort = 8000

	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
	assert.Equal(t, "http://localhost:8000", cfg.BaseURL())
	assert.Equal(t, "localhost:8000", cfg.Host())

	cfg.ServerDomain = "https://img.example.com/"
	assert.Equal(t, "img.example.com", cfg.Host())
}
