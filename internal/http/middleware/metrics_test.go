package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_CountersInflightAndPathFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Metrics())

	// JSON body → positive size (observed in the size histogram)
	r.GET("/api/v1/notifications/unread-count", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"count": 3})
	})

	// Status only → size stays -1 (skipped in the size histogram)
	r.DELETE("/api/v1/notifications/:id", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	// Baselines before we hit the routes (to avoid interference from other tests)
	baseCount := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/api/v1/notifications/unread-count", "200"))
	base404 := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/does-not-exist", "404"))

	// 1) Matched route → path label is the registered route
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/unread-count", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET unread-count -> %d", w.Code)
	}

	// 2) Missing route → fallback to the raw URL path label
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/does-not-exist", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /does-not-exist -> %d", w.Code)
	}

	// 3) Param route with no body → the size<0 skip path runs
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/notifications/n-42", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("DELETE notification -> %d", w.Code)
	}

	// Counters for specific label sets should have incremented by 1
	gotCount := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/api/v1/notifications/unread-count", "200"))
	if gotCount != baseCount+1 {
		t.Fatalf("counter unread-count 200 = %v; want %v", gotCount, baseCount+1)
	}

	// 404 path uses raw URL (fallback)
	got404 := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/does-not-exist", "404"))
	if got404 != base404+1 {
		t.Fatalf("counter 404 fallback = %v; want %v", got404, base404+1)
	}

	// Param routes are labelled by route pattern, not raw URL
	gotDismiss := testutil.ToFloat64(httpReqs.WithLabelValues("DELETE", "/api/v1/notifications/:id", "204"))
	if gotDismiss < 1 {
		t.Fatalf("counter dismiss 204 = %v; want >= 1", gotDismiss)
	}

	// In-flight gauge should be 0 after requests complete
	if inFlight := testutil.ToFloat64(httpInflight); inFlight != 0 {
		t.Fatalf("httpInflight = %v; want 0", inFlight)
	}

	// Histogram bucket counts are timing-dependent, so we only exercise the
	// observe paths: latency for every request, size when the writer reported
	// a non-negative byte count.
}
