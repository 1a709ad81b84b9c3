package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestAdmit_AllowsUpToLimit(t *testing.T) {
	l := NewIPRateLimiter(5, time.Minute)
	defer l.Stop()

	for i := 0; i < 5; i++ {
		allowed, _ := l.Admit("192.0.2.1")
		if !allowed {
			t.Fatalf("request %d should have been allowed", i+1)
		}
	}

	allowed, retryAfter := l.Admit("192.0.2.1")
	if allowed {
		t.Error("request over the limit should have been rejected")
	}
	if retryAfter <= 0 {
		t.Errorf("expected positive retry hint, got %v", retryAfter)
	}
}

func TestAdmit_IndependentPerIP(t *testing.T) {
	l := NewIPRateLimiter(2, time.Minute)
	defer l.Stop()

	l.Admit("192.0.2.1")
	l.Admit("192.0.2.1")
	if allowed, _ := l.Admit("192.0.2.1"); allowed {
		t.Error("first IP should be exhausted")
	}

	// A different source has its own bucket
	if allowed, _ := l.Admit("192.0.2.2"); !allowed {
		t.Error("second IP should not be affected by the first")
	}
}

func TestAdmit_RecoversAfterWindow(t *testing.T) {
	// 2 per 200ms: tokens refill every 100ms
	l := NewIPRateLimiter(2, 200*time.Millisecond)
	defer l.Stop()

	l.Admit("192.0.2.1")
	l.Admit("192.0.2.1")
	if allowed, _ := l.Admit("192.0.2.1"); allowed {
		t.Fatal("expected rejection while bucket is empty")
	}

	time.Sleep(150 * time.Millisecond)

	if allowed, _ := l.Admit("192.0.2.1"); !allowed {
		t.Error("expected admission after the window refilled")
	}
}

func TestRateLimitMiddleware_Returns429(t *testing.T) {
	gin.SetMode(gin.TestMode)

	l := NewIPRateLimiter(1, time.Minute)
	defer l.Stop()

	router := gin.New()
	router.Use(l.Middleware())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/test", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/test", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", second.Code)
	}
	if second.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header on rejection")
	}
}

func TestStop_Idempotent(t *testing.T) {
	l := NewIPRateLimiter(1, time.Minute)
	l.Stop()
	l.Stop() // must not panic
}
