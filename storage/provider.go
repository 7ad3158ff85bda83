package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound 文件不存在
var ErrNotFound = errors.New("payload not found")

// Provider 存储提供者接口
// 所有存储实现必须遵循此接口，路径为相对路径，如 uploads/images/1/1_1700000000_ab12_original.png
type Provider interface {
	// SaveWithContext 保存文件到存储
	SaveWithContext(ctx context.Context, identifier string, file io.Reader) error

	// GetWithContext 从存储获取文件，不存在时返回 ErrNotFound
	GetWithContext(ctx context.Context, identifier string) (io.ReadSeeker, error)

	// DeleteWithContext 从存储删除文件，不存在时返回 ErrNotFound
	DeleteWithContext(ctx context.Context, identifier string) error

	// Health 检查存储健康状态
	Health(ctx context.Context) error

	// Name 返回存储名称
	Name() string
}

// IsNotFound 判断是否为文件不存在
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
