package core

import (
	"net/http"
	"time"

	"github.com/anoixa/imagehost/api/middleware"
	"github.com/anoixa/imagehost/config"
	"github.com/anoixa/imagehost/internal/app"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// 启动gin
func setupRouter(container *app.Container, cfg *config.Config) (*gin.Engine, func()) {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// 全局中间件
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())
	router.Use(middleware.SecureHeaders(middleware.SecureOptions(cfg.IsDevelopment())))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.BaseURL()},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.SetTrustedProxies(nil)

	// 限制上传文件大小
	router.MaxMultipartMemory = int64(cfg.UploadMaxSizeMB) << 20

	// 并发限制，避免内存过载
	concurrencyLimiter := middleware.NewConcurrencyLimiter(cfg.MaxConcurrency)
	router.Use(concurrencyLimiter.Middleware())

	// 速率限制
	authRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitAuthRPS, cfg.RateLimitAuthBurst, cfg.RateLimitExpireTime)
	apiRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitApiRPS, cfg.RateLimitApiBurst, cfg.RateLimitExpireTime)
	cleanup := func() {
		authRateLimiter.StopCleanup()
		apiRateLimiter.StopCleanup()
	}

	RegisterRoutes(router, &RouterDependencies{
		Container:       container,
		AuthRateLimiter: authRateLimiter,
		APIRateLimiter:  apiRateLimiter,
		ServerVersion: ServerVersion{
			Version:    config.Version,
			CommitHash: config.CommitHash,
		},
		Config: cfg,
	})

	return router, cleanup
}

// NewHandler 组装完整的 HTTP 处理链：过期链接拦截在路由之前
func NewHandler(container *app.Container, cfg *config.Config) (http.Handler, func()) {
	router, cleanup := setupRouter(container, cfg)
	return middleware.ExpiringLinks(container.AssetService.ResolveLink, router), cleanup
}

// StartServer 创建 http.Server
func StartServer(container *app.Container, cfg *config.Config) (*http.Server, func()) {
	handler, cleanup := NewHandler(container, cfg)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return srv, cleanup
}
