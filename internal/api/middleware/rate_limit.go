package middleware

import (
	"fmt"
	"sync"
	"time"

	"bento-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimiter 令牌桶限流器
type RateLimiter struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	rate     float64
	lastTime time.Time
}

// NewRateLimiter 創建新的限流器
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:   float64(requests),
		capacity: float64(requests),
		rate:     float64(requests) / window.Seconds(),
		lastTime: time.Now(),
	}
}

// Allow 檢查是否允許請求
func (rl *RateLimiter) Allow() bool {
	return rl.allowAt(time.Now())
}

func (rl *RateLimiter) allowAt(now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	// 依經過時間補充令牌
	elapsed := now.Sub(rl.lastTime).Seconds()
	if elapsed > 0 {
		rl.tokens = min(rl.capacity, rl.tokens+elapsed*rl.rate)
		rl.lastTime = now
	}

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

// idleSince 最後一次取用令牌距 now 的時間
func (rl *RateLimiter) idleSince(now time.Time) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return now.Sub(rl.lastTime)
}

// clientLimiters 每個來源 IP 一個令牌桶；閒置超過 window 的桶會被清除
type clientLimiters struct {
	mu        sync.Mutex
	limiters  map[string]*RateLimiter
	requests  int
	window    time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newClientLimiters(requests int, window time.Duration) *clientLimiters {
	return &clientLimiters{
		limiters: make(map[string]*RateLimiter),
		requests: requests,
		window:   window,
		now:      time.Now,
	}
}

// allow 取出來源的令牌桶並嘗試取用一個令牌
func (cl *clientLimiters) allow(ip string) bool {
	now := cl.now()
	return cl.get(ip, now).allowAt(now)
}

func (cl *clientLimiters) get(ip string, now time.Time) *RateLimiter {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if now.Sub(cl.lastSweep) >= cl.window {
		cl.sweep(now)
	}

	limiter, ok := cl.limiters[ip]
	if !ok {
		limiter = NewRateLimiter(cl.requests, cl.window)
		limiter.lastTime = now
		cl.limiters[ip] = limiter
	}
	return limiter
}

// sweep 閒置滿一個 window 的桶令牌已補滿，刪除後重建結果相同
func (cl *clientLimiters) sweep(now time.Time) {
	for ip, limiter := range cl.limiters {
		if limiter.idleSince(now) >= cl.window {
			delete(cl.limiters, ip)
		}
	}
	cl.lastSweep = now
}

// RateLimit 依來源 IP 限流的中間件
func RateLimit(requests int, window time.Duration) gin.HandlerFunc {
	clients := newClientLimiters(requests, window)

	return func(c *gin.Context) {
		if !clients.allow(c.ClientIP()) {
			common.LogInfo("Rate limit exceeded",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)

			c.Header("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			status, resp := common.ToResponse(common.ErrTooManyRequests, false)
			c.AbortWithStatusJSON(status, resp)
			return
		}

		c.Next()
	}
}
