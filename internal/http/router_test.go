package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	_ "github.com/rxhub/pharmacy-alerts/docs"
	"github.com/rxhub/pharmacy-alerts/internal/cache"
	"github.com/rxhub/pharmacy-alerts/internal/config"
	"github.com/rxhub/pharmacy-alerts/internal/domain"
	"github.com/rxhub/pharmacy-alerts/internal/repo"
	"github.com/rxhub/pharmacy-alerts/internal/services"
)

// --- test DB helper (pure-Go sqlite, no CGO) ---
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:routerdb_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func testConfig() config.Config {
	return config.Config{
		APIBasePath:   "/api/v1",
		DefaultUserID: "demo-user",
		RateRPS:       100,
		RateBurst:     50,
		Sweep:         config.SweepConfig{Recipients: []string{"demo-user"}},
		Security:      config.SecurityConfig{EnableHSTS: false, HSTSMaxAge: 0},
		OTEL:          config.OTELConfig{ServiceName: "pharmacy-alerts-test"},
	}
}

// newRouter builds a fully wired engine backed by a fresh in-memory DB.
func newRouter(t *testing.T, cfg config.Config) (*gin.Engine, *services.NotificationService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	db := newTestDB(t)
	ns := services.NewNotificationService(db, cache.New(time.Minute, 0), nil, services.NewMetrics())
	ss := services.NewSweepService(db, ns)
	RegisterRoutes(r, cfg, ns, ss)
	return r, ns
}

func TestRegisterRoutes_CORSAllowAll_Health_Metrics_Fallbacks(t *testing.T) {
	r, _ := newRouter(t, testConfig()) // empty CORS list triggers AllowAllOrigins branch

	// /health works
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	// CORS (AllowAllOrigins) → header "*"
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("AllowAllOrigins expected '*', got %q", got)
	}

	// /metrics is wired
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || len(w.Body.Bytes()) == 0 {
		t.Fatalf("GET /metrics bad: code=%d len=%d", w.Code, w.Body.Len())
	}

	// NoRoute → 404
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/nope", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /nope expected 404, got %d", w.Code)
	}

	// NoMethod → 405 (PUT on a known path)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/health", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("PUT /health expected 405, got %d", w.Code)
	}
}

func TestRegisterRoutes_CORSWithOrigins_HeaderEcho(t *testing.T) {
	cfg := testConfig()
	cfg.APIBasePath = "/api/v2"
	cfg.CORS = config.CORSConfig{AllowedOrigins: []string{"http://example.com"}}
	r, _ := newRouter(t, cfg)

	// Any request runs through CORS middleware; header should reflect origin.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://example.com")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://example.com" {
		t.Fatalf("expected ACAO echo, got %q", got)
	}
}

func Test_limitBody_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// tiny cap to trigger MaxBytesReader
	r.Use(limitBody(10))
	r.POST("/echo", func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.String(http.StatusRequestEntityTooLarge, "too big")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString("0123456789AB")) // 12 bytes
	r.ServeHTTP(w, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 from limitBody, got %d", w.Code)
	}
}

func Test_groupWithPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	// "/" and "" should mount at root
	root1 := groupWithPrefix(r, "/")
	root1.GET("/one", func(c *gin.Context) { c.String(http.StatusOK, "one") })
	root2 := groupWithPrefix(r, "")
	root2.GET("/two", func(c *gin.Context) { c.String(http.StatusOK, "two") })

	// non-root prefix
	api := groupWithPrefix(r, "/api")
	api.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	// Hit all three
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/one", nil)
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "one" {
		t.Fatalf("GET /one got %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/two", nil)
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "two" {
		t.Fatalf("GET /two got %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "pong" {
		t.Fatalf("GET /api/ping got %d %q", rec.Code, rec.Body.String())
	}
}

// Smoke test that a request traverses otel + logging + identity + ratelimit +
// security headers without tripping anything.
func TestPipeline_Smoke(t *testing.T) {
	cfg := testConfig()
	cfg.Security = config.SecurityConfig{EnableHSTS: true, HSTSMaxAge: time.Hour} // only set on https
	r, _ := newRouter(t, cfg)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.URL.Scheme = "https"
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("pipeline GET /health = %d", w.Code)
	}
	// RequestID header should be present (from RequestID middleware)
	if rid := w.Header().Get("X-Request-ID"); rid == "" {
		t.Fatalf("expected X-Request-ID header to be set")
	}
}

// Malformed identity headers are rejected before they reach any handler.
func TestPipeline_RejectsBadUserID(t *testing.T) {
	r, _ := newRouter(t, testConfig())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil)
	req.Header.Set("X-User-ID", "till 3") // space is not allowed
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad X-User-ID expected 400, got %d", w.Code)
	}
}

// Full lifecycle through the wired stack: create, dedup, list with ETag,
// unread count, read, dismiss, sweep endpoints.
func TestRouter_NotificationLifecycle(t *testing.T) {
	r, ns := newRouter(t, testConfig())

	do := func(method, path, body, user string, hdr map[string]string) *httptest.ResponseRecorder {
		t.Helper()
		var rd io.Reader
		if body != "" {
			rd = bytes.NewBufferString(body)
		}
		w := httptest.NewRecorder()
		req := httptest.NewRequest(method, path, rd)
		if user != "" {
			req.Header.Set("X-User-ID", user)
		}
		for k, v := range hdr {
			req.Header.Set(k, v)
		}
		r.ServeHTTP(w, req)
		return w
	}

	payload := `{"title":"Low stock: Ibuprofen 200mg","message":"Down to 4 units.","category":"low_stock","priority":2,"metadata":{"product_id":"p-9"}}`

	// Create → 201
	w := do(http.MethodPost, "/api/v1/notifications", payload, "till-1", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d body=%s", w.Code, w.Body.String())
	}
	var created struct {
		Notification *domain.Notification `json:"notification"`
		Deduplicated bool                 `json:"deduplicated"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("json: %v", err)
	}
	if created.Notification == nil || created.Deduplicated {
		t.Fatalf("unexpected create body: %s", w.Body.String())
	}

	// Same payload again → 200 deduplicated, and no second row stored
	w = do(http.MethodPost, "/api/v1/notifications", payload, "till-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("dedup = %d body=%s", w.Code, w.Body.String())
	}
	var rows int64
	if err := ns.DB.Model(&domain.Notification{}).Where("user_id = ?", "till-1").Count(&rows).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if rows != 1 {
		t.Fatalf("stored rows = %d; want the duplicate suppressed", rows)
	}

	// List → 200 with ETag, then 304 on If-None-Match
	w = do(http.MethodGet, "/api/v1/notifications", "", "till-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("list response missing ETag")
	}
	w = do(http.MethodGet, "/api/v1/notifications", "", "till-1", map[string]string{"If-None-Match": etag})
	if w.Code != http.StatusNotModified {
		t.Fatalf("conditional list = %d; want 304", w.Code)
	}

	// Unread count → 1
	w = do(http.MethodGet, "/api/v1/notifications/unread-count", "", "till-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("unread-count = %d", w.Code)
	}
	var cnt struct {
		Count int64 `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &cnt); err != nil {
		t.Fatalf("json: %v", err)
	}
	if cnt.Count != 1 {
		t.Fatalf("count = %d; want 1", cnt.Count)
	}

	// Mark read → 204, then dismiss → 204
	id := created.Notification.ID
	if w = do(http.MethodPost, "/api/v1/notifications/"+id+"/read", "", "till-1", nil); w.Code != http.StatusNoContent {
		t.Fatalf("mark read = %d", w.Code)
	}
	if w = do(http.MethodDelete, "/api/v1/notifications/"+id, "", "till-1", nil); w.Code != http.StatusNoContent {
		t.Fatalf("dismiss = %d", w.Code)
	}

	// Sweep endpoints are mounted (no products seeded, so a clean empty run)
	w = do(http.MethodPost, "/api/v1/health-check/run", "", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health-check/run = %d body=%s", w.Code, w.Body.String())
	}
	w = do(http.MethodGet, "/api/v1/health-check/metrics", "", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health-check/metrics = %d", w.Code)
	}
	var hm services.HealthStatus
	if err := json.Unmarshal(w.Body.Bytes(), &hm); err != nil {
		t.Fatalf("json: %v", err)
	}
	if hm.Created != 1 || hm.Deduplicated != 1 {
		t.Fatalf("pipeline counters created=%d dedup=%d; want 1/1", hm.Created, hm.Deduplicated)
	}
}

// Swagger UI mounts only when enabled.
func TestRegisterRoutes_SwaggerToggle(t *testing.T) {
	// Disabled: /swagger/* falls through to NoRoute
	r, _ := newRouter(t, testConfig())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("disabled swagger = %d; want 404", w.Code)
	}

	// Enabled: the UI and the generated spec are served
	cfg := testConfig()
	cfg.SwaggerEnabled = true
	r, _ = newRouter(t, cfg)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("swagger UI = %d", w.Code)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte("Pharmacy Alerts API")) {
		t.Fatalf("swagger spec = %d body=%s", w.Code, w.Body.String())
	}
}
