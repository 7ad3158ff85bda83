package cache

import (
	"fmt"
	"time"

	"github.com/anoixa/imagehost/config"
	"github.com/anoixa/imagehost/utils"
)

// Factory 缓存工厂 - 根据配置创建缓存提供者
type Factory struct {
	provider Provider
}

// NewFactory 创建缓存工厂
func NewFactory(cfg *config.Config) (*Factory, error) {
	var (
		provider Provider
		err      error
	)

	switch cfg.CacheType {
	case "", "memory":
		provider, err = NewMemory(DefaultMemoryConfig())
	case "redis":
		provider, err = NewRedisCache(RedisConfig{
			Address:     cfg.CacheRedisAddr,
			Password:    cfg.CacheRedisPassword,
			DB:          cfg.CacheRedisDB,
			PoolSize:    10,
			DialTimeout: 5 * time.Second,
		})
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.CacheType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s cache: %w", cfg.CacheType, err)
	}

	utils.Logger().Info().Str("provider", provider.Name()).Msg("[Cache] cache provider initialized")
	return &Factory{provider: provider}, nil
}

// NewFactoryWithProvider 使用已有的提供者创建工厂（测试使用）
func NewFactoryWithProvider(provider Provider) *Factory {
	return &Factory{provider: provider}
}

// GetProvider 获取缓存提供者
func (f *Factory) GetProvider() Provider {
	return f.provider
}

// Close 关闭缓存
func (f *Factory) Close() error {
	if f.provider == nil {
		return nil
	}
	return f.provider.Close()
}
