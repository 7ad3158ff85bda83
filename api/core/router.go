package core

import (
	"github.com/anoixa/imagehost/api/common"
	handlerImages "github.com/anoixa/imagehost/api/handler/images"
	"github.com/anoixa/imagehost/api/handler/media"
	"github.com/anoixa/imagehost/api/handler/resized"
	handlerUsers "github.com/anoixa/imagehost/api/handler/users"
	"github.com/anoixa/imagehost/api/middleware"
	"github.com/anoixa/imagehost/config"
	"github.com/anoixa/imagehost/internal/app"
	"github.com/gin-gonic/gin"
)

// ServerVersion 版本信息
type ServerVersion struct {
	Version    string
	CommitHash string
}

// RouterDependencies 路由注册依赖
type RouterDependencies struct {
	Container       *app.Container
	AuthRateLimiter *middleware.IPRateLimiter
	APIRateLimiter  *middleware.IPRateLimiter
	ServerVersion   ServerVersion
	Config          *config.Config
}

// CookieConfig 根据配置生成认证 Cookie 参数
func CookieConfig(cfg *config.Config) middleware.CookieConfig {
	return middleware.CookieConfig{
		AccessTTL:  cfg.JWTAccessTTL,
		RefreshTTL: cfg.JWTRefreshTTL,
		Secure:     !cfg.IsDevelopment(),
	}
}

// RegisterRoutes 注册所有路由
func RegisterRoutes(router *gin.Engine, deps *RouterDependencies) {
	// 基础路由
	registerBasicRoutes(router, deps)

	// 媒体文件
	registerMediaRoutes(router, deps)

	// API 路由
	registerAPIRoutes(router, deps)
}

// registerBasicRoutes 注册基础路由
func registerBasicRoutes(router *gin.Engine, deps *RouterDependencies) {
	healthHandler := NewHealthHandler(deps.Container)
	router.GET("/health", healthHandler.Handle)

	router.GET("/version", func(context *gin.Context) {
		common.RespondSuccess(context, gin.H{
			"version": deps.ServerVersion.Version,
			"commit":  deps.ServerVersion.CommitHash,
		})
	})

	router.GET("/metrics", middleware.MetricsHandler())
}

// registerMediaRoutes 注册媒体文件路由，不需要认证
func registerMediaRoutes(router *gin.Engine, deps *RouterDependencies) {
	mediaHandler := media.NewHandler(deps.Container.AssetService)
	router.GET(deps.Config.MediaURLPrefix+"*path", mediaHandler.Serve)
	router.HEAD(deps.Config.MediaURLPrefix+"*path", mediaHandler.Serve)
}

// registerAPIRoutes 注册 API 路由
func registerAPIRoutes(router *gin.Engine, deps *RouterDependencies) {
	cfg := deps.Config
	c := deps.Container
	cookies := CookieConfig(cfg)
	fallbackHost := cfg.Host()

	imageHandler := handlerImages.NewHandler(c.AssetService, int64(cfg.UploadMaxSizeMB)<<20, fallbackHost)
	resizedHandler := resized.NewHandler(c.AssetService, fallbackHost)
	userHandler := handlerUsers.NewHandler(c.UserService, c.LoginService, cookies)

	session := middleware.Session(c.Sessions, cookies)
	requireAuth := middleware.RequireAuth(c.Sessions)
	noStore := func(context *gin.Context) {
		context.Header("Cache-Control", "no-store")
		context.Next()
	}

	// 用户
	userGroup := router.Group("/user")
	userGroup.Use(noStore)
	{
		public := userGroup.Group("")
		public.Use(deps.AuthRateLimiter.Middleware())
		{
			public.POST("/create/", userHandler.Create)
			public.POST("/login/", userHandler.Login)
		}

		private := userGroup.Group("")
		private.Use(deps.APIRateLimiter.Middleware(), session, requireAuth)
		{
			private.POST("/logout/", userHandler.Logout)
			private.GET("/me/", userHandler.Me)
			private.PATCH("/me/", userHandler.UpdateMe)
			private.PUT("/me/", userHandler.UpdateMe)
			private.DELETE("/me/", userHandler.DeleteMe)
		}
	}

	// 原图
	imagesGroup := router.Group("/images")
	imagesGroup.Use(noStore, deps.APIRateLimiter.Middleware(), session, requireAuth)
	{
		imagesGroup.GET("/", imageHandler.ListImages)
		imagesGroup.POST("/", imageHandler.UploadImage)
		imagesGroup.GET("/:id/", imageHandler.GetImage)
		imagesGroup.PATCH("/:id/", imageHandler.UpdateImage)
		imagesGroup.PUT("/:id/", imageHandler.UpdateImage)
		imagesGroup.DELETE("/:id/", imageHandler.DeleteImage)

		imagesGroup.POST("/resize/", imageHandler.UploadAndResize)
		imagesGroup.GET("/resize/:id/", imageHandler.ResizeImage)
		imagesGroup.GET("/link/:id/", imageHandler.ImageLink)
	}

	// 缩放图
	resizedGroup := router.Group("/resized")
	resizedGroup.Use(noStore, deps.APIRateLimiter.Middleware(), session, requireAuth)
	{
		resizedGroup.GET("/", resizedHandler.List)
		resizedGroup.GET("/:id/", resizedHandler.Get)
		resizedGroup.DELETE("/:id/", resizedHandler.Delete)
		resizedGroup.GET("/link/:id/", resizedHandler.Link)
	}
}
