package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/anoixa/imagehost/api/common"
	"github.com/anoixa/imagehost/utils"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	mu       sync.Mutex
	lastSeen time.Time
}

// IPRateLimiter 按客户端 IP 的令牌桶限流
type IPRateLimiter struct {
	rps        float64       // 每秒请求数
	burst      int           // 令牌桶的容量
	expireTime time.Duration // 空闲多久后回收
	limiterMap *sync.Map
	stopChan   chan struct{}
	stopOnce   sync.Once
}

// NewIPRateLimiter Create new IP-based rate limits
func NewIPRateLimiter(rps float64, burst int, expireTime time.Duration) *IPRateLimiter {
	limiter := &IPRateLimiter{
		rps:        rps,
		burst:      burst,
		expireTime: expireTime,
		limiterMap: &sync.Map{},
		stopChan:   make(chan struct{}),
	}

	utils.SafeGo(limiter.cleanupStaleClients)

	return limiter
}

// Allow 消耗 key 的一个令牌
func (rl *IPRateLimiter) Allow(key string) bool {
	val, _ := rl.limiterMap.LoadOrStore(key, &clientLimiter{
		limiter: rate.NewLimiter(rate.Limit(rl.rps), rl.burst),
	})
	client := val.(*clientLimiter)

	client.mu.Lock()
	client.lastSeen = time.Now()
	client.mu.Unlock()

	return client.limiter.Allow()
}

// Middleware Return a Gin middleware handler
// 客户端地址取 gin 的 ClientIP，是否信任代理头由路由的 TrustedProxies 决定
func (rl *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			common.RespondErrorAbort(c, http.StatusTooManyRequests, "Too many requests")
			return
		}
		c.Next()
	}
}

// StopCleanup 停止后台清理，可重复调用
func (rl *IPRateLimiter) StopCleanup() {
	rl.stopOnce.Do(func() { close(rl.stopChan) })
}

func (rl *IPRateLimiter) cleanupStaleClients() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evict(time.Now())
		case <-rl.stopChan:
			return
		}
	}
}

// evict 删除空闲超过 expireTime 的条目
func (rl *IPRateLimiter) evict(now time.Time) {
	rl.limiterMap.Range(func(key, value interface{}) bool {
		client := value.(*clientLimiter)
		client.mu.Lock()
		idle := now.Sub(client.lastSeen)
		client.mu.Unlock()
		if idle > rl.expireTime {
			rl.limiterMap.Delete(key)
		}
		return true
	})
}
