package monitoring

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func resetGlobalMetrics() {
	globalMetrics.mu.Lock()
	defer globalMetrics.mu.Unlock()

	globalMetrics.RequestCount = 0
	globalMetrics.RequestDuration = 0
	globalMetrics.ActiveRequests = 0
	globalMetrics.ErrorCount = 0
	globalMetrics.StatusCodes = make(map[string]int64)
	globalMetrics.Endpoints = make(map[string]int64)
	globalMetrics.StartTime = time.Now()
	globalMetrics.LastRequest = time.Time{}
	globalMetrics.totalDuration = 0
}

func setupTestGin() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestMetricsMiddleware(t *testing.T) {
	resetGlobalMetrics()

	router := setupTestGin()
	router.Use(MetricsMiddleware())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	req, _ := http.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	metrics := GetMetrics()

	if metrics.RequestCount != 1 {
		t.Errorf("Expected RequestCount to be 1, got %d", metrics.RequestCount)
	}
	if metrics.ActiveRequests != 0 {
		t.Errorf("Expected ActiveRequests to be 0 after completion, got %d", metrics.ActiveRequests)
	}
	if metrics.ErrorCount != 0 {
		t.Errorf("Expected ErrorCount to be 0 for a successful request, got %d", metrics.ErrorCount)
	}
	if metrics.Endpoints["GET /test"] != 1 {
		t.Errorf("Expected endpoint call to be tracked, got %v", metrics.Endpoints)
	}
}

func TestMetricsMiddlewareErrorTracking(t *testing.T) {
	resetGlobalMetrics()

	router := setupTestGin()
	router.Use(MetricsMiddleware())
	router.GET("/missing", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	req, _ := http.NewRequest("GET", "/missing", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	metrics := GetMetrics()
	if metrics.ErrorCount != 1 {
		t.Errorf("Expected ErrorCount to be 1 for a 4xx response, got %d", metrics.ErrorCount)
	}
	if metrics.StatusCodes[http.StatusText(http.StatusNotFound)] != 1 {
		t.Errorf("Expected 404 to be tracked, got %v", metrics.StatusCodes)
	}
}

func TestMetricsHandler(t *testing.T) {
	resetGlobalMetrics()

	router := setupTestGin()
	router.GET("/metrics", MetricsHandler())

	req, _ := http.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	for _, key := range []string{"application", "system", "timestamp"} {
		if !strings.Contains(w.Body.String(), key) {
			t.Errorf("Expected metrics payload to include %q", key)
		}
	}
}

func TestGetSystemMetrics(t *testing.T) {
	metrics := GetSystemMetrics()

	if metrics.GoroutineCount <= 0 {
		t.Error("Expected at least one goroutine")
	}
	if metrics.GoVersion == "" {
		t.Error("Expected a Go version")
	}
}
