package core

import (
	"context"
	"net/http"
	"time"

	"github.com/anoixa/imagehost/config"
	"github.com/anoixa/imagehost/internal/app"
	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

const healthCheckTimeout = 3 * time.Second

// HealthHandler 健康检查
type HealthHandler struct {
	container *app.Container
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(container *app.Container) *HealthHandler {
	return &HealthHandler{container: container}
}

// Handle GET /health
func (h *HealthHandler) Handle(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	checks := gin.H{
		"database": h.checkDatabase(ctx),
		"cache":    h.checkCache(ctx),
		"storage":  h.checkStorage(ctx),
	}
	httpStatus := http.StatusOK
	status := "ok"
	for _, result := range checks {
		if result != "ok" {
			httpStatus = http.StatusServiceUnavailable
			status = "degraded"
			break
		}
	}

	c.JSON(httpStatus, gin.H{
		"status":  status,
		"uptime":  time.Since(startTime).Round(time.Second).String(),
		"version": config.Version,
		"checks":  checks,
	})
}

func (h *HealthHandler) checkDatabase(ctx context.Context) string {
	provider := h.container.GetDatabaseProvider()
	if provider == nil {
		return "not initialized"
	}
	if err := provider.Ping(ctx); err != nil {
		return "unavailable: " + err.Error()
	}
	return "ok"
}

func (h *HealthHandler) checkCache(ctx context.Context) string {
	factory := h.container.GetCacheFactory()
	if factory == nil || factory.GetProvider() == nil {
		return "not initialized"
	}
	if err := factory.GetProvider().Health(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

func (h *HealthHandler) checkStorage(ctx context.Context) string {
	factory := h.container.GetStorageFactory()
	if factory == nil || factory.GetProvider() == nil {
		return "not initialized"
	}
	if err := factory.GetProvider().Health(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
