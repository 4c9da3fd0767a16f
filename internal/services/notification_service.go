// Package services – NotificationService
//
// This file implements NotificationService, the application-level component
// that owns the notification pipeline: input validation and sanitization,
// cooldown admission against the dedup ledger, persistence, read-through
// caching of unread counts and list pages, and asynchronous email fan-out
// for urgent alerts.
//
// Duplicate suppression is decided by a single conditional upsert in the
// repo layer, so concurrent attempts for the same (user, key) pair resolve
// to at most one stored notification per cooldown window. When the ledger
// errors for an unknown reason the attempt is suppressed rather than risking
// a duplicate send; when the ledger is missing entirely the pipeline keeps
// delivering without cooldowns.
//
// Observability: all public methods are OpenTelemetry-instrumented; spans
// include user identifiers and pagination parameters where applicable.

package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/rxhub/pharmacy-alerts/internal/cache"
	"github.com/rxhub/pharmacy-alerts/internal/domain"
	"github.com/rxhub/pharmacy-alerts/internal/mailer"
	"github.com/rxhub/pharmacy-alerts/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	maxTitleRunes   = 200
	maxMessageRunes = 1000

	defaultPageSize = 20
	maxPageSize     = 100

	// failureRateThreshold flips the health status to "degraded".
	failureRateThreshold = 0.10
)

// EmailQueue is the asynchronous delivery contract required by
// NotificationService. *mailer.Mailer satisfies it.
type EmailQueue interface {
	// Enabled reports whether outbound email is configured.
	Enabled() bool

	// Enqueue hands one email to the delivery queue without blocking.
	Enqueue(e mailer.Email) bool
}

// CreateInput carries one notification request through validation,
// admission, and persistence.
type CreateInput struct {
	UserID   string
	Title    string
	Message  string
	Category string
	Priority domain.Priority
	Metadata map[string]any
}

// NotificationService provides notification-level operations: creation with
// cooldown admission, read tracking, dismissal, and cached read paths.
type NotificationService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Cache serves unread counts and list pages between invalidations.
	Cache *cache.Store
	// Mailer is the optional async email queue; nil disables fan-out.
	Mailer EmailQueue
	// Metrics accumulates pipeline counters for the health endpoint.
	Metrics *Metrics

	// AlertEmail is the shared pharmacy inbox that receives urgent alerts.
	// Empty disables email fan-out.
	AlertEmail string

	// EmailMaxPriority is the least-urgent level that still fans out to
	// email; lower numbers are more urgent. Zero disables fan-out.
	EmailMaxPriority domain.Priority
}

// NewNotificationService constructs a NotificationService with sane defaults
// for email fan-out.
func NewNotificationService(db *gorm.DB, c *cache.Store, m EmailQueue, metrics *Metrics) *NotificationService {
	return &NotificationService{
		DB:               db,
		Cache:            c,
		Mailer:           m,
		Metrics:          metrics,
		EmailMaxPriority: domain.PriorityHigh,
	}
}

// Create validates and sanitizes the input, asks the dedup ledger for
// admission, and persists the notification. It returns (nil, nil) when the
// attempt is suppressed by an active cooldown, so callers can distinguish
// "deduplicated" from failure.
func (s *NotificationService) Create(ctx context.Context, in CreateInput) (*domain.Notification, error) {
	tr := otel.Tracer("services/NotificationService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(
			attribute.String("user.id", in.UserID),
			attribute.String("notification.category", in.Category),
		),
	)
	defer span.End()

	norm, err := s.normalize(in)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	key := domain.NotificationKey(norm.Category, norm.Metadata, norm.Title)

	admitted, err := repo.ShouldSendNotification(ctx, s.DB, norm.UserID, key,
		norm.Priority.CooldownHours(), norm.Metadata, time.Now().UTC())
	switch {
	case errors.Is(err, repo.ErrAdmissionUnsupported):
		// Ledger table missing: keep alerting without cooldowns rather
		// than going silent.
		log.Warn().Str("notification_key", key).Msg("dedup ledger unavailable; sending without cooldown")
		admitted = true
	case err != nil:
		// Unknown ledger failure: suppressing is safer than a duplicate send.
		log.Warn().Err(err).Str("notification_key", key).Msg("dedup admission failed; suppressing notification")
		s.Metrics.RecordDeduplicated()
		return nil, nil
	}
	if !admitted {
		s.Metrics.RecordDeduplicated()
		return nil, nil
	}

	n, err := repo.CreateNotification(ctx, s.DB, norm.UserID, norm.Title, norm.Message,
		norm.Category, norm.Priority, norm.Metadata)
	if err != nil {
		// Admission was already recorded; the cooldown window stays burned.
		s.Metrics.RecordFailed()
		return nil, err
	}
	s.Metrics.RecordCreated(time.Since(start))

	s.fanOutEmail(n)
	s.Cache.InvalidateUser(norm.UserID)
	return n, nil
}

// CreateBatch runs admission per input and persists all admitted rows in a
// single bulk insert. Invalid inputs are skipped with a warning instead of
// failing the batch, because batch callers are machine-generated sweeps.
// The returned slice holds only the rows that were actually created.
func (s *NotificationService) CreateBatch(ctx context.Context, inputs []CreateInput) ([]domain.Notification, error) {
	tr := otel.Tracer("services/NotificationService")
	ctx, span := tr.Start(ctx, "CreateBatch",
		trace.WithAttributes(attribute.Int("batch.size", len(inputs))),
	)
	defer span.End()

	start := time.Now()
	now := time.Now().UTC()

	rows := make([]domain.Notification, 0, len(inputs))
	degraded := false
	for i, in := range inputs {
		norm, err := s.normalize(in)
		if err != nil {
			log.Warn().Err(err).Int("index", i).Msg("skipping invalid batch input")
			continue
		}
		key := domain.NotificationKey(norm.Category, norm.Metadata, norm.Title)

		admitted := true
		if !degraded {
			admitted, err = repo.ShouldSendNotification(ctx, s.DB, norm.UserID, key,
				norm.Priority.CooldownHours(), norm.Metadata, now)
			switch {
			case errors.Is(err, repo.ErrAdmissionUnsupported):
				log.Warn().Str("notification_key", key).Msg("dedup ledger unavailable; batch proceeds without cooldowns")
				degraded = true
				admitted = true
			case err != nil:
				log.Warn().Err(err).Str("notification_key", key).Msg("dedup admission failed; suppressing batch input")
				s.Metrics.RecordDeduplicated()
				continue
			}
		}
		if !admitted {
			s.Metrics.RecordDeduplicated()
			continue
		}

		rows = append(rows, domain.Notification{
			UserID:   norm.UserID,
			Title:    norm.Title,
			Message:  norm.Message,
			Category: norm.Category,
			Priority: norm.Priority,
			Metadata: norm.Metadata,
		})
	}
	if len(rows) == 0 {
		return []domain.Notification{}, nil
	}

	if _, err := repo.CreateNotificationsBatch(ctx, s.DB, rows); err != nil {
		for range rows {
			s.Metrics.RecordFailed()
		}
		return nil, err
	}
	s.Metrics.RecordCreatedBatch(len(rows), time.Since(start))

	users := make(map[string]struct{}, len(rows))
	for i := range rows {
		s.fanOutEmail(&rows[i])
		users[rows[i].UserID] = struct{}{}
	}
	for u := range users {
		s.Cache.InvalidateUser(u)
	}
	return rows, nil
}

// UnreadCount returns the number of unread, undismissed notifications for a
// user, served from cache when fresh.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	tr := otel.Tracer("services/NotificationService")
	ctx, span := tr.Start(ctx, "UnreadCount",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	if strings.TrimSpace(userID) == "" {
		return 0, ErrMissingUserID
	}

	ck := cache.UnreadCountKey(userID)
	if v, ok := s.Cache.Get(ck); ok {
		if count, ok := v.(int64); ok {
			return count, nil
		}
	}

	count, err := repo.CountUnread(ctx, s.DB, userID)
	if err != nil {
		return 0, err
	}
	s.Cache.Set(ck, count)
	return count, nil
}

// listPage is the cached shape of one notification list page.
type listPage struct {
	items []domain.Notification
	total int64
}

// List returns a page of notifications for a user, newest first, served
// from cache when fresh. It applies defaults for invalid page/pageSize and
// returns the total count alongside the page.
func (s *NotificationService) List(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) ([]domain.Notification, int64, error) {
	tr := otel.Tracer("services/NotificationService")
	ctx, span := tr.Start(ctx, "List",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
			attribute.Bool("unread_only", unreadOnly),
		),
	)
	defer span.End()

	if strings.TrimSpace(userID) == "" {
		return nil, 0, ErrMissingUserID
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	offset := (page - 1) * pageSize

	ck := cache.ListKey(userID, page, pageSize, unreadOnly)
	if v, ok := s.Cache.Get(ck); ok {
		if lp, ok := v.(listPage); ok {
			return lp.items, lp.total, nil
		}
	}

	total, err := repo.CountNotifications(ctx, s.DB, userID, unreadOnly)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		s.Cache.Set(ck, listPage{items: []domain.Notification{}})
		return []domain.Notification{}, 0, nil
	}

	items, err := repo.ListNotificationsPage(ctx, s.DB, userID, unreadOnly, offset, pageSize)
	if err != nil {
		return nil, 0, err
	}
	s.Cache.Set(ck, listPage{items: items, total: total})
	return items, total, nil
}

// MarkAsRead flags one notification as read, ensuring it exists and belongs
// to the given user. Re-reading an already-read notification is a no-op.
func (s *NotificationService) MarkAsRead(ctx context.Context, userID, id string) error {
	tr := otel.Tracer("services/NotificationService")
	ctx, span := tr.Start(ctx, "MarkAsRead",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("notification.id", id),
		),
	)
	defer span.End()

	changed, err := repo.MarkNotificationRead(ctx, s.DB, id, userID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	if changed {
		s.Cache.InvalidateUser(userID)
	}
	return nil
}

// MarkAllAsRead flags every unread notification for the user as read and
// returns how many rows changed.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	tr := otel.Tracer("services/NotificationService")
	ctx, span := tr.Start(ctx, "MarkAllAsRead",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	n, err := repo.MarkAllNotificationsRead(ctx, s.DB, userID, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.Cache.InvalidateUser(userID)
	}
	return n, nil
}

// Dismiss hides one notification from all default reads, ensuring it exists
// and belongs to the given user. Dismissing twice is a no-op.
func (s *NotificationService) Dismiss(ctx context.Context, userID, id string) error {
	tr := otel.Tracer("services/NotificationService")
	ctx, span := tr.Start(ctx, "Dismiss",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("notification.id", id),
		),
	)
	defer span.End()

	changed, err := repo.DismissNotification(ctx, s.DB, id, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	if changed {
		s.Cache.InvalidateUser(userID)
	}
	return nil
}

// DismissAll hides every notification for the user and returns how many
// rows changed.
func (s *NotificationService) DismissAll(ctx context.Context, userID string) (int64, error) {
	tr := otel.Tracer("services/NotificationService")
	ctx, span := tr.Start(ctx, "DismissAll",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	n, err := repo.DismissAllNotifications(ctx, s.DB, userID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.Cache.InvalidateUser(userID)
	}
	return n, nil
}

// HealthStatus is the point-in-time pipeline report exposed by the
// health metrics endpoint.
type HealthStatus struct {
	Status          string  `json:"status"`
	Created         int64   `json:"notifications_created"`
	Failed          int64   `json:"notifications_failed"`
	Deduplicated    int64   `json:"notifications_deduplicated"`
	FailureRate     float64 `json:"failure_rate"`
	AvgCreateTimeMs float64 `json:"avg_create_time_ms"`
	CacheHitRate    float64 `json:"cache_hit_rate"`
	CacheSize       int     `json:"cache_size"`
}

// Health reports pipeline counters and cache effectiveness. Status degrades
// once the failure rate crosses the threshold.
func (s *NotificationService) Health() HealthStatus {
	m := s.Metrics.Snapshot()
	cs := s.Cache.Stats()

	status := "healthy"
	if m.FailureRate > failureRateThreshold {
		status = "degraded"
	}
	return HealthStatus{
		Status:          status,
		Created:         m.Created,
		Failed:          m.Failed,
		Deduplicated:    m.Deduplicated,
		FailureRate:     m.FailureRate,
		AvgCreateTimeMs: m.AvgCreateTimeMs,
		CacheHitRate:    cs.HitRate,
		CacheSize:       cs.Size,
	}
}

// fanOutEmail queues an email for urgent notifications when a mailer and a
// shared alert inbox are configured. Delivery is asynchronous and never
// blocks or fails the create path.
func (s *NotificationService) fanOutEmail(n *domain.Notification) {
	if s.Mailer == nil || !s.Mailer.Enabled() || s.AlertEmail == "" {
		return
	}
	if s.EmailMaxPriority == 0 || n.Priority > s.EmailMaxPriority {
		return
	}
	s.Mailer.Enqueue(mailer.Email{
		NotificationID: n.ID,
		To:             s.AlertEmail,
		Subject:        fmt.Sprintf("[%s] %s", strings.ToUpper(n.Priority.String()), n.Title),
		Category:       n.Category,
		Body:           n.Message,
	})
}

// normalize sanitizes free-text fields and validates the input against the
// service limits. Priority defaults to medium when unset.
func (s *NotificationService) normalize(in CreateInput) (CreateInput, error) {
	in.UserID = strings.TrimSpace(in.UserID)
	if in.UserID == "" {
		return in, ErrMissingUserID
	}

	in.Title = sanitizeTitle(in.Title)
	if in.Title == "" {
		return in, ErrMissingTitle
	}
	if utf8.RuneCountInString(in.Title) > maxTitleRunes {
		return in, ErrTitleTooLong
	}

	in.Message = sanitizeMessage(in.Message)
	if in.Message == "" {
		return in, ErrMissingMessage
	}
	if utf8.RuneCountInString(in.Message) > maxMessageRunes {
		return in, ErrMessageTooLong
	}

	in.Category = strings.ToLower(strings.TrimSpace(in.Category))
	if !domain.ValidCategory(in.Category) {
		return in, ErrInvalidCategory
	}

	if in.Priority == 0 {
		in.Priority = domain.PriorityMedium
	}
	if !in.Priority.Valid() {
		return in, ErrInvalidPriority
	}
	return in, nil
}

// --- Input sanitization helpers ---

var (
	// scriptRE removes script blocks including their content.
	scriptRE = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	// tagRE removes any remaining markup tags.
	tagRE = regexp.MustCompile(`<[^>]*>`)
	// spaceRE collapses consecutive whitespace to a single space.
	spaceRE = regexp.MustCompile(`\s+`)
)

// sanitizeTitle strips markup and collapses all whitespace to single spaces.
func sanitizeTitle(s string) string {
	s = scriptRE.ReplaceAllString(s, "")
	s = tagRE.ReplaceAllString(s, "")
	return spaceRE.ReplaceAllString(strings.TrimSpace(s), " ")
}

// sanitizeMessage strips markup but keeps the line structure of the body.
func sanitizeMessage(s string) string {
	s = scriptRE.ReplaceAllString(s, "")
	s = tagRE.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
