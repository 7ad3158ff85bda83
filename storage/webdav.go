package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/studio-b12/gowebdav"
)

// WebDAVConfig WebDAV 配置
type WebDAVConfig struct {
	URL      string
	Username string
	Password string
	RootPath string
	Timeout  time.Duration
}

// WebDAVStorage WebDAV 存储
type WebDAVStorage struct {
	client   *gowebdav.Client
	baseURL  string
	rootPath string
}

// NewWebDAVStorage 创建 WebDAV 存储，创建时读取一次根目录确认可用
func NewWebDAVStorage(cfg WebDAVConfig) (*WebDAVStorage, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("webdav URL is required")
	}

	rootPath := strings.Trim(cfg.RootPath, "/")
	if rootPath != "" {
		rootPath = "/" + rootPath
	}

	client := gowebdav.NewClient(cfg.URL, cfg.Username, cfg.Password)
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	s := &WebDAVStorage{
		client:   client,
		rootPath: rootPath,
		baseURL:  strings.TrimRight(cfg.URL, "/"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Health(ctx); err != nil {
		return nil, fmt.Errorf("webdav connection test failed: %w", err)
	}
	return s, nil
}

// davCall gowebdav 不接受 context，在 goroutine 中执行并与 ctx 竞争
func davCall[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	type result struct {
		val T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn()
		done <- result{val: v, err: err}
	}()

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-done:
		return res.val, res.err
	}
}

func davExec(ctx context.Context, fn func() error) error {
	_, err := davCall(ctx, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// fullPath 存储路径映射到服务器路径
func (s *WebDAVStorage) fullPath(storagePath string) string {
	storagePath = strings.TrimLeft(storagePath, "/")
	if s.rootPath != "" {
		return s.rootPath + "/" + storagePath
	}
	return "/" + storagePath
}

// ensureParentDir 逐级创建父目录，已存在的目录忽略
func (s *WebDAVStorage) ensureParentDir(ctx context.Context, fullPath string) error {
	parentDir := path.Dir(fullPath)
	if parentDir == "/" || parentDir == "." {
		return nil
	}

	current := ""
	for _, part := range strings.Split(strings.Trim(parentDir, "/"), "/") {
		if part == "" {
			continue
		}
		current += "/" + part
		dir := current
		err := davExec(ctx, func() error {
			return s.client.Mkdir(dir, os.FileMode(0755))
		})
		if err != nil && !isCollectionExistsError(err) {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// 各服务器对已存在目录的 MKCOL 返回不一
var collectionExistsMarkers = []string{"already exists", "conflict", "Conflict", "409", "Method Not Allowed", "405"}

func isCollectionExistsError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, m := range collectionExistsMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// SaveWithContext 写入文件，必要时创建父目录
func (s *WebDAVStorage) SaveWithContext(ctx context.Context, storagePath string, file io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fullPath := s.fullPath(storagePath)
	if err := s.ensureParentDir(ctx, fullPath); err != nil {
		return fmt.Errorf("failed to ensure parent directory for %s: %w", storagePath, err)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("failed to read payload: %w", err)
	}

	if err := davExec(ctx, func() error {
		return s.client.Write(fullPath, data, 0644)
	}); err != nil {
		return fmt.Errorf("failed to write file %s: %w", storagePath, err)
	}
	return nil
}

// GetWithContext 读取整个文件
func (s *WebDAVStorage) GetWithContext(ctx context.Context, storagePath string) (io.ReadSeeker, error) {
	fullPath := s.fullPath(storagePath)
	data, err := davCall(ctx, func() ([]byte, error) {
		return s.client.Read(fullPath)
	})
	if err != nil {
		return nil, s.wrap(err, "read", storagePath)
	}
	return bytes.NewReader(data), nil
}

// DeleteWithContext 删除文件
// 部分服务器对不存在的资源 DELETE 也返回成功，先 Stat 区分
func (s *WebDAVStorage) DeleteWithContext(ctx context.Context, storagePath string) error {
	fullPath := s.fullPath(storagePath)
	err := davExec(ctx, func() error {
		if _, err := s.client.Stat(fullPath); err != nil {
			return err
		}
		return s.client.Remove(fullPath)
	})
	if err != nil {
		return s.wrap(err, "delete", storagePath)
	}
	return nil
}

func (s *WebDAVStorage) wrap(err error, op, storagePath string) error {
	if gowebdav.IsErrNotFound(err) {
		return fmt.Errorf("%w: %s", ErrNotFound, storagePath)
	}
	return fmt.Errorf("failed to %s file %s: %w", op, storagePath, err)
}

// Health 读取根目录
func (s *WebDAVStorage) Health(ctx context.Context) error {
	_, err := davCall(ctx, func() ([]os.FileInfo, error) {
		return s.client.ReadDir(s.rootPath)
	})
	return err
}

// Name 存储名称，带服务器地址
func (s *WebDAVStorage) Name() string {
	if s.baseURL == "" {
		return "webdav"
	}
	return fmt.Sprintf("webdav:%s%s", s.baseURL, s.rootPath)
}
