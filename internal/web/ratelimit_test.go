package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func TestRateLimiterAllowPerClient(t *testing.T) {
	limiter := NewRateLimiter(RateLimiterConfig{Rate: rate.Limit(1), Burst: 2, CleanupInterval: time.Minute})
	defer limiter.Stop()

	if !limiter.Allow("10.0.0.1") || !limiter.Allow("10.0.0.1") {
		t.Fatalf("burst must admit the first two attempts")
	}
	if limiter.Allow("10.0.0.1") {
		t.Fatalf("third attempt must be throttled")
	}
	// A different client gets its own budget.
	if !limiter.Allow("10.0.0.2") {
		t.Fatalf("separate clients must not share a limiter")
	}
}

func TestRateLimiterCleanupDropsIdleClients(t *testing.T) {
	limiter := NewRateLimiter(RateLimiterConfig{Rate: rate.Limit(1), Burst: 1, CleanupInterval: 10 * time.Millisecond})
	defer limiter.Stop()

	limiter.Allow("10.0.0.1")
	limiter.mutex.Lock()
	limiter.limiters["10.0.0.1"].lastAccess = time.Now().Add(-time.Hour)
	limiter.mutex.Unlock()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		limiter.mutex.Lock()
		_, present := limiter.limiters["10.0.0.1"]
		limiter.mutex.Unlock()
		if !present {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("idle client was never swept")
}

func TestRateLimiterMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limiter := NewRateLimiter(RateLimiterConfig{Rate: rate.Limit(1), Burst: 1, CleanupInterval: time.Minute})
	defer limiter.Stop()

	router := gin.New()
	router.Use(limiter.Middleware())
	router.GET("/probe", func(contextGin *gin.Context) {
		contextGin.Status(http.StatusOK)
	})

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/probe", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("expected 200 on first attempt, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/probe", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on second attempt, got %d", second.Code)
	}
	if body := second.Body.String(); !strings.Contains(body, "auth.rate_limited") {
		t.Fatalf("unexpected body %q", body)
	}
}
