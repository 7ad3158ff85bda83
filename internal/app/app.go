package app

import (
	"fmt"

	"github.com/anoixa/imagehost/cache"
	"github.com/anoixa/imagehost/config"
	"github.com/anoixa/imagehost/database"
	"github.com/anoixa/imagehost/database/repo/accounts"
	"github.com/anoixa/imagehost/database/repo/images"
	"github.com/anoixa/imagehost/internal/auth"
	"github.com/anoixa/imagehost/internal/image"
	"github.com/anoixa/imagehost/internal/services/assets"
	"github.com/anoixa/imagehost/internal/services/users"
	"github.com/anoixa/imagehost/storage"
	"github.com/anoixa/imagehost/utils"
)

// Container 依赖注入容器 - 管理所有服务的生命周期
type Container struct {
	config          *config.Config
	databaseFactory *database.Factory
	storageFactory  *storage.Factory
	cacheFactory    *cache.Factory

	AccountsRepo *accounts.Repository
	ImagesRepo   *images.Repository
	ResizedRepo  *images.ResizedRepository

	JWTService    *auth.JWTService
	UserLookup    *auth.UserLookup
	Sessions      *auth.SessionAuthenticator
	LoginService  *auth.LoginService
	Engine        *image.Engine
	AssetService  *assets.Service
	UserService   *users.Service
}

// NewContainer 创建新的依赖注入容器
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config: cfg,
	}
}

// NewContainerWithFactories 使用已创建的工厂，测试使用
func NewContainerWithFactories(cfg *config.Config, db *database.Factory, store *storage.Factory, cacheFactory *cache.Factory) *Container {
	return &Container{
		config:          cfg,
		databaseFactory: db,
		storageFactory:  store,
		cacheFactory:    cacheFactory,
	}
}

// Init 初始化全部依赖
func (c *Container) Init() error {
	if err := c.InitDatabase(); err != nil {
		return err
	}
	return c.InitServices()
}

// InitDatabase 只初始化数据库与仓库，migrate 等命令使用
func (c *Container) InitDatabase() error {
	utils.LogIfDev("Initializing DI container...")

	if c.databaseFactory == nil {
		factory, err := database.NewFactory(c.config)
		if err != nil {
			return fmt.Errorf("failed to initialize database factory: %w", err)
		}
		c.databaseFactory = factory
	}

	c.initRepositories()
	return nil
}

// InitServices 初始化存储、缓存和业务服务
func (c *Container) InitServices() error {
	if c.databaseFactory == nil {
		return fmt.Errorf("database must be initialized before services")
	}

	if c.storageFactory == nil {
		factory, err := storage.NewFactory(c.config)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		c.storageFactory = factory
	}
	if c.cacheFactory == nil {
		factory, err := cache.NewFactory(c.config)
		if err != nil {
			return fmt.Errorf("failed to initialize cache: %w", err)
		}
		c.cacheFactory = factory
	}

	jwtService, err := auth.NewJWTService(auth.TokenConfig{
		Secret:           []byte(c.config.JWTSecret),
		ExpiresIn:        c.config.JWTAccessTTL,
		RefreshExpiresIn: c.config.JWTRefreshTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize jwt service: %w", err)
	}
	c.JWTService = jwtService
	c.UserLookup = auth.NewUserLookup(c.AccountsRepo, c.cacheFactory.GetProvider(), c.config.CacheUserTTL)
	c.Sessions = auth.NewSessionAuthenticator(jwtService, c.UserLookup)
	c.LoginService = auth.NewLoginService(c.AccountsRepo, jwtService)

	codec, err := image.NewCodec(c.config.ImageCodec)
	if err != nil {
		return err
	}
	provider := c.storageFactory.GetProvider()
	c.Engine = image.NewEngine(codec, provider, c.ResizedRepo, image.EngineConfig{
		MaxDimension:   c.config.ImageMaxDimension,
		MaxConcurrency: c.config.ImageMaxConcurrency,
	})
	c.AssetService = assets.NewService(c.ImagesRepo, c.ResizedRepo, provider, c.Engine, assets.Config{
		MediaURLPrefix: c.config.MediaURLPrefix,
	})
	c.UserService = users.NewService(c.GetDatabaseProvider(), c.AccountsRepo, c.ImagesRepo, c.UserLookup, assets.PayloadRemover(provider))

	utils.Logger().Info().
		Str("storage", provider.Name()).
		Str("cache", c.cacheFactory.GetProvider().Name()).
		Str("codec", codec.Name()).
		Msg("Services initialized")
	return nil
}

// initRepositories 初始化所有仓库
func (c *Container) initRepositories() {
	provider := c.databaseFactory.GetProvider()
	c.AccountsRepo = accounts.NewRepository(provider)
	c.ImagesRepo = images.NewRepository(provider)
	c.ResizedRepo = images.NewResizedRepository(provider)
	utils.LogIfDev("Repositories initialized")
}

// GetDatabaseFactory 获取数据库工厂
func (c *Container) GetDatabaseFactory() *database.Factory {
	return c.databaseFactory
}

// GetDatabaseProvider 获取数据库提供者
func (c *Container) GetDatabaseProvider() database.Provider {
	if c.databaseFactory == nil {
		return nil
	}
	return c.databaseFactory.GetProvider()
}

// GetStorageFactory 获取存储工厂
func (c *Container) GetStorageFactory() *storage.Factory {
	return c.storageFactory
}

// GetCacheFactory 获取缓存工厂
func (c *Container) GetCacheFactory() *cache.Factory {
	return c.cacheFactory
}

// GetConfig 获取配置
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// Close 关闭所有服务
func (c *Container) Close() error {
	utils.LogIfDev("Closing DI container...")

	if c.cacheFactory != nil {
		if err := c.cacheFactory.Close(); err != nil {
			utils.Logger().Warn().Err(err).Msg("Error closing cache")
		}
	}
	if c.databaseFactory != nil {
		if err := c.databaseFactory.Close(); err != nil {
			utils.Logger().Warn().Err(err).Msg("Error closing database")
		}
	}

	utils.LogIfDev("DI container closed")
	return nil
}
