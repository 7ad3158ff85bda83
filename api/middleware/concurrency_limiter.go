package middleware

import (
	"net/http"

	"github.com/anoixa/imagehost/api/common"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/semaphore"
)

var (
	inflightRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "imagehost_http_inflight_requests",
		Help: "Requests currently holding a concurrency slot",
	})
	rejectedRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "imagehost_http_rejected_requests_total",
		Help: "Requests rejected because the server was at its concurrency limit",
	})
)

// ConcurrencyLimiter 全局并发上限
type ConcurrencyLimiter struct {
	sem *semaphore.Weighted
}

// NewConcurrencyLimiter 并发限制器
func NewConcurrencyLimiter(maxConcurrency int64) *ConcurrencyLimiter {
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	return &ConcurrencyLimiter{
		sem: semaphore.NewWeighted(maxConcurrency),
	}
}

// Middleware 超出上限时立即返回 503
func (cl *ConcurrencyLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cl.sem.TryAcquire(1) {
			rejectedRequests.Inc()
			common.RespondErrorAbort(c, http.StatusServiceUnavailable, "Server is busy, please try again later")
			return
		}
		inflightRequests.Inc()
		defer func() {
			inflightRequests.Dec()
			cl.sem.Release(1)
		}()

		c.Next()
	}
}
