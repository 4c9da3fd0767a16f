// Notification HTTP handlers.
//
// This file exposes REST endpoints for notification resources:
//   - POST   /notifications               (create, deduplicated)
//   - GET    /notifications               (list, paginated, ETag support)
//   - GET    /notifications/unread-count  (cached count)
//   - POST   /notifications/{id}/read     (mark read, idempotent)
//   - POST   /notifications/read-all      (mark all read)
//   - DELETE /notifications/{id}          (dismiss, soft)
//   - DELETE /notifications               (dismiss all)
//
// Handlers are transport-thin: they validate input shape, call application
// services, and translate results into HTTP responses. Content validation
// (lengths, categories, priorities) lives in the service so its error
// messages reach the client verbatim.
//
// Deduplication is not an error: a create suppressed by the cooldown ledger
// returns 200 with `deduplicated: true` instead of 201, so POS clients can
// fire-and-forget without special-casing.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rxhub/pharmacy-alerts/internal/domain"
	"github.com/rxhub/pharmacy-alerts/internal/http/middleware"
	"github.com/rxhub/pharmacy-alerts/internal/repo"
	"github.com/rxhub/pharmacy-alerts/internal/services"
	"github.com/rxhub/pharmacy-alerts/internal/utils"
)

//
// Service contracts (context-aware)
//

// NotificationService defines the notification pipeline operations consumed
// by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type NotificationService interface {
	// Create runs the admission check and persists the notification when the
	// cooldown ledger admits it. A (nil, nil) return means suppressed.
	Create(ctx context.Context, in services.CreateInput) (*domain.Notification, error)
	// List returns a page of the user's active notifications and the total count.
	List(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) ([]domain.Notification, int64, error)
	// UnreadCount returns the cached number of unread notifications.
	UnreadCount(ctx context.Context, userID string) (int64, error)
	// MarkAsRead flags one notification as read.
	MarkAsRead(ctx context.Context, userID, id string) error
	// MarkAllAsRead flags every unread notification and returns the count.
	MarkAllAsRead(ctx context.Context, userID string) (int64, error)
	// Dismiss soft-deletes one notification.
	Dismiss(ctx context.Context, userID, id string) error
	// DismissAll soft-deletes all active notifications and returns the count.
	DismissAll(ctx context.Context, userID string) (int64, error)
	// Health reports pipeline counters and cache effectiveness.
	Health() services.HealthStatus
}

// SweepService defines the inventory health sweep operations consumed by
// HTTP handlers.
type SweepService interface {
	// Run executes one interval-gated sweep for the given recipients.
	Run(ctx context.Context, userIDs []string) (services.SweepResult, error)
	// LastRun returns the bookkeeping row of the most recent claimed sweep.
	LastRun(ctx context.Context) (*domain.HealthCheckRun, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for notifications and health checks.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	notifSvc NotificationService
	sweepSvc SweepService

	// sweepRecipients are the user IDs a manually triggered sweep alerts,
	// normally the configured on-duty staff list.
	sweepRecipients []string
}

// New constructs and returns a Handlers instance bound to the given services.
func New(notifSvc NotificationService, sweepSvc SweepService, sweepRecipients []string) *Handlers {
	return &Handlers{notifSvc: notifSvc, sweepSvc: sweepSvc, sweepRecipients: sweepRecipients}
}

// userID extracts the acting user from the Gin context (set by the Identity
// middleware). If absent, it falls back to the X-User-ID header (tests use
// it), and finally to "demo-user". It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if uid := middleware.UserIDFrom(c); uid != "" {
		return uid
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader(middleware.HeaderUserID)); h != "" {
			return h
		}
	}
	return "demo-user"
}

//
// DTOs
//

// CreateNotificationRequest is the JSON payload for creating a notification.
//
// Priority is the integer urgency level (1 critical … 5 info); zero or absent
// defaults to medium. Metadata is free-form; a "product_id" entry makes the
// deduplication key product-scoped.
type CreateNotificationRequest struct {
	Title    string         `json:"title" example:"Low stock: Amoxicillin 500mg"`
	Message  string         `json:"message" example:"Amoxicillin 500mg (SKU AMX-500) is down to 3 units; reorder level is 10."`
	Category string         `json:"category" example:"low_stock"`
	Priority int            `json:"priority,omitempty" example:"2"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// CreateNotificationResponse reports the outcome of a create request.
// Deduplicated is true when the cooldown ledger suppressed the alert; the
// notification field is then null.
type CreateNotificationResponse struct {
	Notification *domain.Notification `json:"notification,omitempty"`
	Deduplicated bool                 `json:"deduplicated"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListNotificationsResponse wraps a page of notifications and pagination
// information.
type ListNotificationsResponse struct {
	Notifications []domain.Notification `json:"notifications"`
	Pagination    Pagination            `json:"pagination"`
}

// UnreadCountResponse carries the unread counter badge value.
type UnreadCountResponse struct {
	Count int64 `json:"count" example:"7"`
}

// MarkAllReadResponse reports how many notifications were flipped to read.
type MarkAllReadResponse struct {
	Updated int64 `json:"updated" example:"3"`
}

// DismissAllResponse reports how many notifications were dismissed.
type DismissAllResponse struct {
	Dismissed int64 `json:"dismissed" example:"5"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

//
// Handlers
//

// CreateNotification godoc
// @ID          createNotification
// @Summary     Create a notification
// @Description Creates a notification for the current user. Repeats within the
// @Description category cooldown window are suppressed by the deduplication
// @Description ledger and reported with 200 and `deduplicated: true`.
// @Tags        Notifications
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (POS terminal or operator)"  example(till-3)
// @Param       body       body    handlers.CreateNotificationRequest  true  "Notification payload"
//
// @Success     201  {object}  handlers.CreateNotificationResponse  "Created"
// @Success     200  {object}  handlers.CreateNotificationResponse  "Suppressed by cooldown"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /notifications [post]
func (h *Handlers) CreateNotification(c *gin.Context) {
	var req CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	n, err := h.notifSvc.Create(c.Request.Context(), services.CreateInput{
		UserID:   userID(c),
		Title:    req.Title,
		Message:  req.Message,
		Category: req.Category,
		Priority: domain.Priority(req.Priority),
		Metadata: req.Metadata,
	})
	if err != nil {
		if services.IsValidation(err) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	if n == nil {
		ok(c, http.StatusOK, CreateNotificationResponse{Deduplicated: true})
		return
	}
	ok(c, http.StatusCreated, CreateNotificationResponse{Notification: n})
}

// ListNotifications godoc
// @ID          listNotifications
// @Summary     List notifications (paginated)
// @Description Returns a page of the user's active notifications, newest first.
// @Description Supports weak ETag via If-None-Match and may return 304.
// @Tags        Notifications
// @Produce     json
//
// @Param       X-User-ID      header  string  false "User ID (POS terminal or operator)"  example(till-3)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"          example(W/\"abc123\")
// @Param       page           query   int     false "Page number"                          minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"                       minimum(1) maximum(100) default(20)
// @Param       unread         query   bool    false "Only unread notifications"           default(false)
//
// @Success     200  {object} handlers.ListNotificationsResponse
// @Header      200  {string} ETag           "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /notifications [get]
func (h *Handlers) ListNotifications(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)
	page, pageSize := clampPagination(c)
	unreadOnly := utils.BoolDefault(c.Query("unread"), false)

	// ETag pre-check (best effort).
	var db *gorm.DB
	if svc, isConcrete := h.notifSvc.(*services.NotificationService); isConcrete {
		db = svc.DB
	}
	if db != nil {
		count, maxTS, err := repo.NotificationsStats(ctx, db, uid)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"notifications:%s:%d:%d"`, uid, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	// Fetch page.
	items, total, err := h.notifSvc.List(ctx, uid, page, pageSize, unreadOnly)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListNotificationsResponse{
		Notifications: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetUnreadCount godoc
// @ID          getUnreadCount
// @Summary     Unread notification count
// @Description Returns the number of unread notifications for the badge on the
// @Description POS home screen. Served from a short-TTL cache.
// @Tags        Notifications
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (POS terminal or operator)"  example(till-3)
//
// @Success     200  {object} handlers.UnreadCountResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /notifications/unread-count [get]
func (h *Handlers) GetUnreadCount(c *gin.Context) {
	count, err := h.notifSvc.UnreadCount(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, UnreadCountResponse{Count: count})
}

// MarkAsRead godoc
// @ID          markAsRead
// @Summary     Mark a notification as read
// @Description Flags a notification as read. Already-read notifications are a
// @Description no-op success; the first read pins read_at.
// @Tags        Notifications
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (POS terminal or operator)"  example(till-3)
// @Param       id         path    string  true  "Notification ID (UUID)"              format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Notification not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /notifications/{id}/read [post]
func (h *Handlers) MarkAsRead(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "notification id must be a UUID")
		return
	}

	if err := h.notifSvc.MarkAsRead(c.Request.Context(), userID(c), id); err != nil {
		if err == services.ErrNotificationNotFound {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "notification not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeUpdateFailed, err.Error())
		return
	}
	noContent(c)
}

// MarkAllAsRead godoc
// @ID          markAllAsRead
// @Summary     Mark all notifications as read
// @Description Flags every unread notification for the current user as read
// @Description and returns how many were updated.
// @Tags        Notifications
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (POS terminal or operator)"  example(till-3)
//
// @Success     200  {object} handlers.MarkAllReadResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /notifications/read-all [post]
func (h *Handlers) MarkAllAsRead(c *gin.Context) {
	n, err := h.notifSvc.MarkAllAsRead(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeUpdateFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, MarkAllReadResponse{Updated: n})
}

// DismissNotification godoc
// @ID          dismissNotification
// @Summary     Dismiss a notification
// @Description Soft-deletes a notification: it disappears from lists and
// @Description counts but remains stored until the retention job purges it.
// @Description Dismissing twice is a no-op success.
// @Tags        Notifications
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (POS terminal or operator)"  example(till-3)
// @Param       id         path    string  true  "Notification ID (UUID)"              format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Notification not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /notifications/{id} [delete]
func (h *Handlers) DismissNotification(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "notification id must be a UUID")
		return
	}

	if err := h.notifSvc.Dismiss(c.Request.Context(), userID(c), id); err != nil {
		if err == services.ErrNotificationNotFound {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "notification not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeUpdateFailed, err.Error())
		return
	}
	noContent(c)
}

// DismissAll godoc
// @ID          dismissAll
// @Summary     Dismiss all notifications
// @Description Soft-deletes every active notification for the current user and
// @Description returns how many were dismissed.
// @Tags        Notifications
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (POS terminal or operator)"  example(till-3)
//
// @Success     200  {object} handlers.DismissAllResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /notifications [delete]
func (h *Handlers) DismissAll(c *gin.Context) {
	n, err := h.notifSvc.DismissAll(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeUpdateFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, DismissAllResponse{Dismissed: n})
}
