package database

import (
	"context"
	"fmt"
	"time"

	"github.com/anoixa/imagehost/config"
	"github.com/anoixa/imagehost/database/models"
	"github.com/anoixa/imagehost/utils"
)

// Factory 数据库工厂 - 负责创建和管理数据库提供者
type Factory struct {
	provider Provider
}

// NewFactory 创建新的数据库工厂
func NewFactory(cfg *config.Config) (*Factory, error) {
	provider, err := NewGormProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database provider: %w", err)
	}

	utils.Logger().Info().Str("provider", provider.Name()).Msg("Database provider initialized")
	return &Factory{provider: provider}, nil
}

// NewFactoryWithProvider 使用已有的提供者
func NewFactoryWithProvider(provider Provider) *Factory {
	return &Factory{provider: provider}
}

// GetProvider 获取数据库提供者
func (f *Factory) GetProvider() Provider {
	return f.provider
}

// Close 关闭数据库连接
func (f *Factory) Close() error {
	if f.provider != nil {
		return f.provider.Close()
	}
	return nil
}

// AutoMigrate 自动迁移数据库结构
func (f *Factory) AutoMigrate() error {
	if f.provider == nil {
		return fmt.Errorf("database provider not initialized")
	}

	utils.Logger().Info().Msg("Running database auto migration...")
	if err := f.provider.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to auto migrate database: %w", err)
	}
	utils.Logger().Info().Msg("Database auto migration completed.")
	return nil
}

// WaitForDB 轮询数据库直到可用，retries 次后仍失败则返回最后一次错误
func WaitForDB(ctx context.Context, provider Provider, retries int, interval time.Duration) error {
	if retries < 1 {
		retries = 1
	}

	var err error
	for attempt := 1; attempt <= retries; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = provider.Ping(pingCtx)
		cancel()
		if err == nil {
			return nil
		}

		utils.Logger().Warn().Err(err).Int("attempt", attempt).Msg("Database unavailable, waiting...")
		if attempt == retries {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
	return fmt.Errorf("database still unavailable after %d attempts: %w", retries, err)
}
