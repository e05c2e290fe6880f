package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiterConfig holds per-client limits for the credential endpoints.
type RateLimiterConfig struct {
	Rate            rate.Limit
	Burst           int
	CleanupInterval time.Duration
}

// DefaultRateLimiterConfig allows 10 credential attempts per minute per IP.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		Rate:            rate.Limit(10.0 / 60.0),
		Burst:           10,
		CleanupInterval: 5 * time.Minute,
	}
}

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter throttles credential endpoints per client IP. Entries idle for
// two cleanup intervals are discarded by a background sweep.
type RateLimiter struct {
	config   RateLimiterConfig
	mutex    sync.Mutex
	limiters map[string]*clientLimiter
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter constructs a RateLimiter and starts its cleanup loop.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	limiter := &RateLimiter{
		config:   config,
		limiters: make(map[string]*clientLimiter),
		stopCh:   make(chan struct{}),
	}
	go limiter.cleanupLoop()
	return limiter
}

// Stop terminates the cleanup loop.
func (limiter *RateLimiter) Stop() {
	limiter.stopOnce.Do(func() { close(limiter.stopCh) })
}

// Allow reports whether the client may proceed.
func (limiter *RateLimiter) Allow(clientKey string) bool {
	limiter.mutex.Lock()
	defer limiter.mutex.Unlock()
	entry, ok := limiter.limiters[clientKey]
	if !ok {
		entry = &clientLimiter{limiter: rate.NewLimiter(limiter.config.Rate, limiter.config.Burst)}
		limiter.limiters[clientKey] = entry
	}
	entry.lastAccess = time.Now()
	return entry.limiter.Allow()
}

// Middleware rejects over-limit requests with 429.
func (limiter *RateLimiter) Middleware() gin.HandlerFunc {
	return func(contextGin *gin.Context) {
		if !limiter.Allow(contextGin.ClientIP()) {
			contextGin.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "auth.rate_limited",
			})
			return
		}
		contextGin.Next()
	}
}

func (limiter *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(limiter.config.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-limiter.stopCh:
			return
		case <-ticker.C:
			limiter.cleanup()
		}
	}
}

func (limiter *RateLimiter) cleanup() {
	cutoff := time.Now().Add(-2 * limiter.config.CleanupInterval)
	limiter.mutex.Lock()
	defer limiter.mutex.Unlock()
	for clientKey, entry := range limiter.limiters {
		if entry.lastAccess.Before(cutoff) {
			delete(limiter.limiters, clientKey)
		}
	}
}
