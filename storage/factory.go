package storage

import (
	"fmt"
	"time"

	"github.com/anoixa/imagehost/config"
	"github.com/anoixa/imagehost/utils"
)

// Factory 存储工厂 - 根据配置创建存储提供者
type Factory struct {
	provider Provider
}

// NewFactory 创建新的存储工厂
func NewFactory(cfg *config.Config) (*Factory, error) {
	provider, err := newProvider(cfg)
	if err != nil {
		return nil, err
	}
	utils.Logger().Info().Str("provider", provider.Name()).Msg("[Storage] storage provider initialized")
	return &Factory{provider: provider}, nil
}

// NewFactoryWithProvider 使用已有的提供者创建工厂（测试使用）
func NewFactoryWithProvider(provider Provider) *Factory {
	return &Factory{provider: provider}
}

// GetProvider 获取存储提供者
func (f *Factory) GetProvider() Provider {
	return f.provider
}

func newProvider(cfg *config.Config) (Provider, error) {
	switch cfg.StorageType {
	case "", "local":
		return NewLocalStorage(cfg.StorageLocalPath)
	case "minio":
		return NewMinioStorage(MinioConfig{
			Endpoint:        cfg.StorageMinioEndpoint,
			AccessKeyID:     cfg.StorageMinioAccess,
			SecretAccessKey: cfg.StorageMinioSecret,
			BucketName:      cfg.StorageMinioBucket,
			UseSSL:          cfg.StorageMinioUseSSL,
		})
	case "webdav":
		return NewWebDAVStorage(WebDAVConfig{
			URL:      cfg.StorageWebDAVURL,
			Username: cfg.StorageWebDAVUser,
			Password: cfg.StorageWebDAVPass,
			RootPath: cfg.StorageWebDAVRoot,
			Timeout:  30 * time.Second,
		})
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.StorageType)
	}
}
