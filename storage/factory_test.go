package storage

import (
	"testing"

	"github.com/anoixa/imagehost/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFactory(t *testing.T) {
	t.Run("local", func(t *testing.T) {
		cfg := config.Defaults()
		cfg.StorageLocalPath = t.TempDir()

		f, err := NewFactory(cfg)
		require.NoError(t, err)
		assert.Equal(t, "local", f.GetProvider().Name())
	})

	t.Run("webdav", func(t *testing.T) {
		srv := newWebDAVServer(t)
		cfg := config.Defaults()
		cfg.StorageType = "webdav"
		cfg.StorageWebDAVURL = srv.URL

		f, err := NewFactory(cfg)
		require.NoError(t, err)
		assert.Contains(t, f.GetProvider().Name(), "webdav")
	})

	t.Run("minio without endpoint", func(t *testing.T) {
		cfg := config.Defaults()
		cfg.StorageType = "minio"

		_, err := NewFactory(cfg)
		assert.Error(t, err)
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := config.Defaults()
		cfg.StorageType = "ftp"

		_, err := NewFactory(cfg)
		assert.Error(t, err)
	})
}
