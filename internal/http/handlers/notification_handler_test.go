package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rxhub/pharmacy-alerts/internal/cache"
	"github.com/rxhub/pharmacy-alerts/internal/domain"
	"github.com/rxhub/pharmacy-alerts/internal/repo"
	"github.com/rxhub/pharmacy-alerts/internal/services"
)

// ---------- test DB + real services ----------

func newHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Unique DSN per call to avoid cross-test contamination
	dsn := fmt.Sprintf("file:notif_handlers_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newRealHandlers(t *testing.T) (*Handlers, *services.NotificationService) {
	t.Helper()
	db := newHandlerDB(t)
	ns := services.NewNotificationService(db, cache.New(time.Minute, 0), nil, services.NewMetrics())
	ss := services.NewSweepService(db, ns)
	return New(ns, ss, []string{"demo-user"}), ns
}

// ---------- flexible service stubs ----------

type stubNotifSvc struct {
	create      func(context.Context, services.CreateInput) (*domain.Notification, error)
	list        func(context.Context, string, int, int, bool) ([]domain.Notification, int64, error)
	unreadCount func(context.Context, string) (int64, error)
	markRead    func(context.Context, string, string) error
	markAll     func(context.Context, string) (int64, error)
	dismiss     func(context.Context, string, string) error
	dismissAll  func(context.Context, string) (int64, error)
	health      func() services.HealthStatus
}

func (s stubNotifSvc) Create(ctx context.Context, in services.CreateInput) (*domain.Notification, error) {
	if s.create != nil {
		return s.create(ctx, in)
	}
	return &domain.Notification{ID: uuid.NewString(), UserID: in.UserID, Title: in.Title}, nil
}

func (s stubNotifSvc) List(ctx context.Context, uid string, page, pageSize int, unread bool) ([]domain.Notification, int64, error) {
	if s.list != nil {
		return s.list(ctx, uid, page, pageSize, unread)
	}
	return nil, 0, nil
}

func (s stubNotifSvc) UnreadCount(ctx context.Context, uid string) (int64, error) {
	if s.unreadCount != nil {
		return s.unreadCount(ctx, uid)
	}
	return 0, nil
}

func (s stubNotifSvc) MarkAsRead(ctx context.Context, uid, id string) error {
	if s.markRead != nil {
		return s.markRead(ctx, uid, id)
	}
	return nil
}

func (s stubNotifSvc) MarkAllAsRead(ctx context.Context, uid string) (int64, error) {
	if s.markAll != nil {
		return s.markAll(ctx, uid)
	}
	return 0, nil
}

func (s stubNotifSvc) Dismiss(ctx context.Context, uid, id string) error {
	if s.dismiss != nil {
		return s.dismiss(ctx, uid, id)
	}
	return nil
}

func (s stubNotifSvc) DismissAll(ctx context.Context, uid string) (int64, error) {
	if s.dismissAll != nil {
		return s.dismissAll(ctx, uid)
	}
	return 0, nil
}

func (s stubNotifSvc) Health() services.HealthStatus {
	if s.health != nil {
		return s.health()
	}
	return services.HealthStatus{Status: "healthy"}
}

type stubSweepSvc struct {
	run     func(context.Context, []string) (services.SweepResult, error)
	lastRun func(context.Context) (*domain.HealthCheckRun, error)
}

func (s stubSweepSvc) Run(ctx context.Context, userIDs []string) (services.SweepResult, error) {
	if s.run != nil {
		return s.run(ctx, userIDs)
	}
	return services.SweepResult{}, nil
}

func (s stubSweepSvc) LastRun(ctx context.Context) (*domain.HealthCheckRun, error) {
	if s.lastRun != nil {
		return s.lastRun(ctx)
	}
	return nil, repo.ErrNotFound
}

func newStubHandlers(n stubNotifSvc, s stubSweepSvc) *Handlers {
	return New(n, s, []string{"demo-user"})
}

// ---------- helpers-only tests ----------

func Test_userID_and_clampPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// userID helper
	rc := gin.CreateTestContextOnly(httptest.NewRecorder(), gin.New())
	if got := userID(rc); got != "demo-user" {
		t.Fatalf("fallback userID = %q", got)
	}
	rc.Set("userID", "till-1")
	if got := userID(rc); got != "till-1" {
		t.Fatalf("ctx userID = %q", got)
	}
	rc.Set("userID", 123) // wrong type → fallback
	if got := userID(rc); got != "demo-user" {
		t.Fatalf("wrong-type fallback userID = %q", got)
	}

	// header fallback
	cH, _ := gin.CreateTestContext(httptest.NewRecorder())
	reqH := httptest.NewRequest("GET", "/", nil)
	reqH.Header.Set("X-User-ID", "till-9")
	cH.Request = reqH
	if got := userID(cH); got != "till-9" {
		t.Fatalf("header fallback userID = %q", got)
	}

	// clampPagination bounds
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest("GET", "/?page=-5&page_size=9999", nil)
	c.Request = req
	p, ps := clampPagination(c)
	if p != 1 || ps != 100 {
		t.Fatalf("clamp bounds got p=%d ps=%d", p, ps)
	}
	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	req = httptest.NewRequest("GET", "/?page=&page_size=0", nil)
	c.Request = req
	p, ps = clampPagination(c)
	if p != 1 || ps != 1 {
		t.Fatalf("clamp defaults got p=%d ps=%d", p, ps)
	}
}

// ---------- CreateNotification ----------

func TestCreateNotification_BadJSON_Validation_Success_Dedup(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h, _ := newRealHandlers(t)
	r := gin.New()
	r.POST("/notifications", h.CreateNotification)

	post := func(body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/notifications", bytes.NewBufferString(body))
		req.Header.Set("X-User-ID", "till-1")
		r.ServeHTTP(w, req)
		return w
	}

	// Bad JSON -> 400
	if w := post("{bad"); w.Code != http.StatusBadRequest {
		t.Fatalf("bad json -> %d", w.Code)
	}

	// Validation error -> 400 with the service message
	w := post(`{"message":"no title","category":"low_stock"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing title -> %d", w.Code)
	}
	var er ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
		t.Fatalf("json: %v", err)
	}
	if er.Code != ErrCodeBadRequest || er.Message != "title is required" {
		t.Fatalf("unexpected validation body: %+v", er)
	}

	// Success -> 201 with the persisted notification
	payload := `{"title":"Low stock: Amoxicillin 500mg","message":"Down to 3 units.","category":"low_stock","priority":2,"metadata":{"product_id":"p-1"}}`
	w = post(payload)
	if w.Code != http.StatusCreated {
		t.Fatalf("create -> %d body=%s", w.Code, w.Body.String())
	}
	var out CreateNotificationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out.Deduplicated || out.Notification == nil {
		t.Fatalf("unexpected create response: %+v", out)
	}
	if out.Notification.UserID != "till-1" || out.Notification.Priority != domain.PriorityHigh {
		t.Fatalf("unexpected notification: %#v", out.Notification)
	}

	// Same key inside the cooldown window -> 200 deduplicated
	w = post(payload)
	if w.Code != http.StatusOK {
		t.Fatalf("dedup -> %d body=%s", w.Code, w.Body.String())
	}
	out = CreateNotificationResponse{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if !out.Deduplicated || out.Notification != nil {
		t.Fatalf("expected suppressed response, got: %+v", out)
	}
}

func TestCreateNotification_InternalError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	errSvc := stubNotifSvc{
		create: func(context.Context, services.CreateInput) (*domain.Notification, error) {
			return nil, gorm.ErrInvalidField
		},
	}
	h := newStubHandlers(errSvc, stubSweepSvc{})
	r := gin.New()
	r.POST("/notifications", h.CreateNotification)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/notifications",
		bytes.NewBufferString(`{"title":"T","message":"M","category":"system"}`))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("internal -> %d", w.Code)
	}
	var er ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
		t.Fatalf("json: %v", err)
	}
	if er.Code != ErrCodeCreateFailed {
		t.Fatalf("expected create_failed, got %+v", er)
	}
}

// ---------- ListNotifications ----------

func seedNotifications(t *testing.T, ns *services.NotificationService, userID string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		in := services.CreateInput{
			UserID:   userID,
			Title:    fmt.Sprintf("Low stock: Product %d", i),
			Message:  "Reorder soon.",
			Category: domain.CategoryLowStock,
			Metadata: map[string]any{"product_id": fmt.Sprintf("p-%d", i)},
		}
		if _, err := ns.Create(context.Background(), in); err != nil {
			t.Fatalf("seed create %d: %v", i, err)
		}
	}
}

func TestListNotifications_ETag304_And_SuccessPage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, ns := newRealHandlers(t)
	seedNotifications(t, ns, "till-1", 2)

	r := gin.New()
	r.GET("/notifications", h.ListNotifications)

	// Compute expected ETag
	count, maxTS, err := repo.NotificationsStats(context.Background(), ns.DB, "till-1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	var ts int64
	if maxTS != nil {
		ts = maxTS.Unix()
	}
	etag := fmt.Sprintf(`W/"notifications:%s:%d:%d"`, "till-1", count, ts)

	// 304 path
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	req.Header.Set("X-User-ID", "till-1")
	req.Header.Set("If-None-Match", etag)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotModified {
		t.Fatalf("etag 304 -> %d", w.Code)
	}

	// 200 success with pagination
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/notifications?page=1&page_size=1", nil)
	req.Header.Set("X-User-ID", "till-1")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list 200 -> %d body=%s", w.Code, w.Body.String())
	}
	var out ListNotificationsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out.Pagination.Page != 1 || out.Pagination.PageSize != 1 || out.Pagination.Total != count {
		t.Fatalf("pagination mismatch: %#v", out.Pagination)
	}
	if out.Pagination.TotalPages != 2 || out.Pagination.HasNext != true {
		t.Fatalf("pages/hasnext mismatch: %#v", out.Pagination)
	}
	if len(out.Notifications) != 1 {
		t.Fatalf("expected 1 notification on page 1")
	}
}

func TestListNotifications_UnreadFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, ns := newRealHandlers(t)
	seedNotifications(t, ns, "till-1", 3)

	// Mark one as read via the service so the filter has something to hide.
	items, _, err := ns.List(context.Background(), "till-1", 1, 10, false)
	if err != nil || len(items) != 3 {
		t.Fatalf("seed list: n=%d err=%v", len(items), err)
	}
	if err := ns.MarkAsRead(context.Background(), "till-1", items[0].ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	r := gin.New()
	r.GET("/notifications", h.ListNotifications)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/notifications?unread=true", nil)
	req.Header.Set("X-User-ID", "till-1")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("unread list -> %d", w.Code)
	}
	var out ListNotificationsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out.Pagination.Total != 2 || len(out.Notifications) != 2 {
		t.Fatalf("expected 2 unread, got total=%d n=%d", out.Pagination.Total, len(out.Notifications))
	}
	for _, n := range out.Notifications {
		if n.IsRead {
			t.Fatalf("read notification leaked into unread view: %s", n.ID)
		}
	}
}

func TestListNotifications_SkipETagPrecheck_And_ListError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Stub service (not *services.NotificationService) so db==nil → ETag
	// pre-check is skipped.
	svc := stubNotifSvc{
		list: func(context.Context, string, int, int, bool) ([]domain.Notification, int64, error) {
			return nil, 0, gorm.ErrInvalidField
		},
	}
	h := newStubHandlers(svc, stubSweepSvc{})

	r := gin.New()
	r.GET("/notifications", h.ListNotifications)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/notifications?page=1&page_size=5", nil)
	req.Header.Set("X-User-ID", "till-1")
	// Bogus If-None-Match also exercises the inm != "" && inm != etag path
	req.Header.Set("If-None-Match", `W/"nope"`)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on list error; got %d body=%s", w.Code, w.Body.String())
	}
}

func TestListNotifications_EmptyState_SetsETag_WithZeroTS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, _ := newRealHandlers(t)

	r := gin.New()
	r.GET("/notifications", h.ListNotifications)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	req.Header.Set("X-User-ID", "till-2") // user with no notifications
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on empty list; got %d body=%s", w.Code, w.Body.String())
	}
	if et := w.Header().Get("ETag"); et != `W/"notifications:till-2:0:0"` {
		t.Fatalf(`expected ETag W/"notifications:till-2:0:0", got %q`, et)
	}

	var out ListNotificationsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out.Pagination.Total != 0 || out.Pagination.TotalPages != 0 || out.Pagination.HasNext {
		t.Fatalf("unexpected pagination: %#v", out.Pagination)
	}
}

// ---------- GetUnreadCount ----------

func TestGetUnreadCount_Success_And_Error(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Success with real service
	{
		h, ns := newRealHandlers(t)
		seedNotifications(t, ns, "till-1", 2)

		r := gin.New()
		r.GET("/notifications/unread-count", h.GetUnreadCount)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/notifications/unread-count", nil)
		req.Header.Set("X-User-ID", "till-1")
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("count -> %d", w.Code)
		}
		var out UnreadCountResponse
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("json: %v", err)
		}
		if out.Count != 2 {
			t.Fatalf("count = %d; want 2", out.Count)
		}
	}

	// Service error -> 500
	{
		svc := stubNotifSvc{
			unreadCount: func(context.Context, string) (int64, error) { return 0, gorm.ErrInvalidField },
		}
		h := newStubHandlers(svc, stubSweepSvc{})
		r := gin.New()
		r.GET("/notifications/unread-count", h.GetUnreadCount)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/notifications/unread-count", nil)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("error -> %d", w.Code)
		}
	}
}

// ---------- MarkAsRead / Dismiss ----------

func TestMarkAsRead_UUID_NotFound_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// bad UUID -> 400
	{
		h := newStubHandlers(stubNotifSvc{}, stubSweepSvc{})
		r := gin.New()
		r.POST("/notifications/:id/read", h.MarkAsRead)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/notifications/not-a-uuid/read", nil)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("uuid 400 -> %d", w.Code)
		}
	}

	// unknown id -> 404
	{
		svc := stubNotifSvc{
			markRead: func(context.Context, string, string) error { return services.ErrNotificationNotFound },
		}
		h := newStubHandlers(svc, stubSweepSvc{})
		r := gin.New()
		r.POST("/notifications/:id/read", h.MarkAsRead)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/notifications/"+uuid.NewString()+"/read", nil)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusNotFound {
			t.Fatalf("not found -> %d", w.Code)
		}
	}

	// store error -> 500
	{
		svc := stubNotifSvc{
			markRead: func(context.Context, string, string) error { return gorm.ErrInvalidDB },
		}
		h := newStubHandlers(svc, stubSweepSvc{})
		r := gin.New()
		r.POST("/notifications/:id/read", h.MarkAsRead)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/notifications/"+uuid.NewString()+"/read", nil)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("store error -> %d", w.Code)
		}
	}

	// success -> 204 and the row flips
	{
		h, ns := newRealHandlers(t)
		seedNotifications(t, ns, "till-1", 1)
		items, _, _ := ns.List(context.Background(), "till-1", 1, 10, false)
		if len(items) != 1 {
			t.Fatalf("seed: %d items", len(items))
		}

		r := gin.New()
		r.POST("/notifications/:id/read", h.MarkAsRead)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/notifications/"+items[0].ID+"/read", nil)
		req.Header.Set("X-User-ID", "till-1")
		r.ServeHTTP(w, req)
		if w.Code != http.StatusNoContent {
			t.Fatalf("204 -> %d", w.Code)
		}
		count, err := ns.UnreadCount(context.Background(), "till-1")
		if err != nil || count != 0 {
			t.Fatalf("unread after read = %d err=%v", count, err)
		}
	}
}

func TestDismissNotification_UUID_NotFound_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// bad UUID -> 400
	{
		h := newStubHandlers(stubNotifSvc{}, stubSweepSvc{})
		r := gin.New()
		r.DELETE("/notifications/:id", h.DismissNotification)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/notifications/nope", nil)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("uuid 400 -> %d", w.Code)
		}
	}

	// unknown id -> 404
	{
		svc := stubNotifSvc{
			dismiss: func(context.Context, string, string) error { return services.ErrNotificationNotFound },
		}
		h := newStubHandlers(svc, stubSweepSvc{})
		r := gin.New()
		r.DELETE("/notifications/:id", h.DismissNotification)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/notifications/"+uuid.NewString(), nil)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusNotFound {
			t.Fatalf("not found -> %d", w.Code)
		}
	}

	// success -> 204 and the row leaves the list
	{
		h, ns := newRealHandlers(t)
		seedNotifications(t, ns, "till-1", 2)
		items, _, _ := ns.List(context.Background(), "till-1", 1, 10, false)
		if len(items) != 2 {
			t.Fatalf("seed: %d items", len(items))
		}

		r := gin.New()
		r.DELETE("/notifications/:id", h.DismissNotification)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/notifications/"+items[0].ID, nil)
		req.Header.Set("X-User-ID", "till-1")
		r.ServeHTTP(w, req)
		if w.Code != http.StatusNoContent {
			t.Fatalf("204 -> %d", w.Code)
		}
		after, total, _ := ns.List(context.Background(), "till-1", 1, 10, false)
		if total != 1 || len(after) != 1 || after[0].ID == items[0].ID {
			t.Fatalf("dismissed row still listed: total=%d", total)
		}
	}
}

// ---------- MarkAllAsRead / DismissAll ----------

func TestMarkAllAsRead_And_DismissAll(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, ns := newRealHandlers(t)
	seedNotifications(t, ns, "till-1", 3)

	r := gin.New()
	r.POST("/notifications/read-all", h.MarkAllAsRead)
	r.DELETE("/notifications", h.DismissAll)

	// read-all -> 200 {"updated":3}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/notifications/read-all", nil)
	req.Header.Set("X-User-ID", "till-1")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("read-all -> %d", w.Code)
	}
	var mr MarkAllReadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &mr); err != nil {
		t.Fatalf("json: %v", err)
	}
	if mr.Updated != 3 {
		t.Fatalf("updated = %d; want 3", mr.Updated)
	}

	// dismiss all -> 200 {"dismissed":3}
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/notifications", nil)
	req.Header.Set("X-User-ID", "till-1")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("dismiss-all -> %d", w.Code)
	}
	var dr DismissAllResponse
	if err := json.Unmarshal(w.Body.Bytes(), &dr); err != nil {
		t.Fatalf("json: %v", err)
	}
	if dr.Dismissed != 3 {
		t.Fatalf("dismissed = %d; want 3", dr.Dismissed)
	}

	// everything gone
	_, total, err := ns.List(context.Background(), "till-1", 1, 10, false)
	if err != nil || total != 0 {
		t.Fatalf("after dismiss-all: total=%d err=%v", total, err)
	}
}

func TestMarkAllAsRead_Error(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := stubNotifSvc{
		markAll: func(context.Context, string) (int64, error) { return 0, gorm.ErrInvalidDB },
	}
	h := newStubHandlers(svc, stubSweepSvc{})
	r := gin.New()
	r.POST("/notifications/read-all", h.MarkAllAsRead)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/notifications/read-all", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("read-all error -> %d", w.Code)
	}
}
