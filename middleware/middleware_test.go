package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/fileupload/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimitBlocksAfterBurst(t *testing.T) {
	r := gin.New()
	r.POST("/upload", RateLimit(4), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/upload", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	// burst is perMinute/2
	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("status codes = %v, want %v", codes, want)
		}
	}

	// Another client has its own bucket
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/upload", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("second client status = %d, want 200", w.Code)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	r := gin.New()
	r.POST("/upload", RateLimit(0), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 50; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/upload", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, w.Code)
		}
	}
}

func TestLimiterSetEvictsIdleClients(t *testing.T) {
	set := &limiterSet{limiters: map[string]*rateLimiter{}, limit: 1, burst: 1}
	now := time.Now()

	set.allow("a", now)
	set.allow("b", now.Add(limiterIdleTTL+time.Second))

	if _, ok := set.limiters["a"]; ok {
		t.Error("idle limiter for a was not evicted")
	}
	if _, ok := set.limiters["b"]; !ok {
		t.Error("limiter for b missing")
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(utils.RequestIDKey)) })

	t.Run("generated", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		id := w.Header().Get(RequestIDHeader)
		if id == "" {
			t.Fatal("no request id header")
		}
		if w.Body.String() != id {
			t.Errorf("context id %q != header id %q", w.Body.String(), id)
		}
	})

	t.Run("propagated", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		r.ServeHTTP(w, req)
		if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
			t.Errorf("request id = %q, want abc-123", got)
		}
	})
}

func TestSafeFilename(t *testing.T) {
	r := gin.New()
	r.GET("/download/:filename", SafeFilename("filename"), func(c *gin.Context) {
		c.String(http.StatusOK, c.Param("filename"))
	})

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"plain", "/download/1-report.pdf", http.StatusOK},
		{"dots inside", "/download/1-a..b", http.StatusOK},
		{"parent", "/download/..", http.StatusBadRequest},
		{"encoded parent", "/download/%2e%2e", http.StatusBadRequest},
		{"backslash", "/download/..%5Csecret", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if w.Code != tt.status {
				t.Errorf("GET %s = %d, want %d", tt.path, w.Code, tt.status)
			}
		})
	}
}
