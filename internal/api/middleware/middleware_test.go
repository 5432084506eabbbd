package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"bento-planner/internal/pkg/common"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimiterRefill(t *testing.T) {
	rl := NewRateLimiter(2, time.Second)
	start := rl.lastTime

	if !rl.allowAt(start) || !rl.allowAt(start) {
		t.Fatal("expected initial burst to be allowed")
	}
	if rl.allowAt(start) {
		t.Fatal("expected bucket to be empty")
	}
	if !rl.allowAt(start.Add(600 * time.Millisecond)) {
		t.Fatal("expected a token after refill")
	}
}

func TestClientLimitersSweepIdleBuckets(t *testing.T) {
	now := time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC)
	cl := newClientLimiters(1, time.Minute)
	cl.now = func() time.Time { return now }

	if !cl.allow("10.0.0.1") || !cl.allow("10.0.0.2") {
		t.Fatal("expected first request from each client to pass")
	}
	if cl.allow("10.0.0.1") {
		t.Fatal("expected second request inside window to be limited")
	}

	now = now.Add(30 * time.Second)
	cl.allow("10.0.0.3")
	if len(cl.limiters) != 3 {
		t.Fatalf("expected 3 buckets before window elapses, got %d", len(cl.limiters))
	}

	now = now.Add(45 * time.Second)
	if cl.allow("10.0.0.3") {
		t.Fatal("expected kept bucket to keep its drained tokens")
	}
	if len(cl.limiters) != 1 {
		t.Fatalf("expected idle buckets removed, got %d", len(cl.limiters))
	}
	if _, ok := cl.limiters["10.0.0.3"]; !ok {
		t.Fatal("expected active bucket to be kept")
	}
}

func TestDeduplicatorWindow(t *testing.T) {
	now := time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC)
	d := newDeduplicator(time.Second, func() time.Time { return now })

	if d.seen("a") {
		t.Fatal("first request should pass")
	}
	if !d.seen("a") {
		t.Fatal("repeat inside window should be flagged")
	}
	if d.seen("b") {
		t.Fatal("different fingerprint should pass")
	}

	now = now.Add(2 * time.Second)
	if d.seen("a") {
		t.Fatal("repeat after window should pass")
	}
}

func TestDeduplicationMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(Deduplication(time.Minute))
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	post := func(body string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(body))
		r.ServeHTTP(w, req)
		return w.Code
	}

	if code := post(`{"a":1}`); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if code := post(`{"a":1}`); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for duplicate, got %d", code)
	}
	if code := post(`{"a":2}`); code != http.StatusOK {
		t.Fatalf("expected 200 for new body, got %d", code)
	}

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("GET should not be deduplicated, got %d", w.Code)
		}
	}
}

func TestBodySizeLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodySizeLimit(8))
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"too":"large"}`)))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), common.ErrCodeRequestTooLarge) {
		t.Fatalf("unexpected body %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("bodiless request: expected 200, got %d", w.Code)
	}
}

func TestLoggerLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	prev := common.Logger
	common.Logger = zap.New(core)
	t.Cleanup(func() { common.Logger = prev })

	r := gin.New()
	r.Use(Logger())
	r.GET("/live", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/v1/pools/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	tests := []struct {
		name   string
		path   string
		level  zapcore.Level
		msg    string
		poolID string
	}{
		{"health check", "/live", zapcore.DebugLevel, "健康檢查", ""},
		{"missing pool", "/api/v1/pools/pool-42", zapcore.WarnLevel, "用戶端錯誤", "pool-42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))

			entries := logs.TakeAll()
			if len(entries) != 1 {
				t.Fatalf("expected 1 log entry, got %d", len(entries))
			}
			entry := entries[0]
			if entry.Level != tt.level || entry.Message != tt.msg {
				t.Fatalf("expected %s %q, got %s %q", tt.level, tt.msg, entry.Level, entry.Message)
			}
			poolID, _ := entry.ContextMap()["pool_id"].(string)
			if poolID != tt.poolID {
				t.Fatalf("expected pool_id %q, got %q", tt.poolID, poolID)
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "INTERNAL_ERROR") {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}
