// Package mailer delivers notification emails asynchronously. Sends are
// queued on a bounded channel and drained by background workers, so the
// notification write path never waits on an SMTP round-trip. Delivery is
// fire-and-forget by contract: a full queue drops the email with a warning,
// and a send that exhausts its retries is logged and abandoned. The
// notification row itself is already persisted by then; only the email_sent
// flag stays false.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// sendMail is the transport used by workers. Package-level so tests can
// substitute a recorder without a live SMTP server.
var sendMail = smtp.SendMail

// Email is one queued delivery. Subject is sent exactly as composed by the
// caller; Category is the machine token the body heading is built from.
type Email struct {
	NotificationID string
	To             string
	Subject        string
	Category       string
	Body           string
}

// Config holds SMTP connection settings and queue tuning. An empty Host
// disables the mailer entirely: Enqueue becomes a no-op.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string

	QueueSize    int
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
}

// Mailer owns the delivery queue and its workers.
type Mailer struct {
	cfg    Config
	log    zerolog.Logger
	queue  chan Email
	wg     sync.WaitGroup
	cancel context.CancelFunc
	closed atomic.Bool

	// onSent runs after each successful delivery, with the notification ID.
	onSent func(ctx context.Context, notificationID string)

	sent    atomic.Int64
	dropped atomic.Int64
	failed  atomic.Int64

	titleCaser cases.Caser
}

// New builds a Mailer. Zero-value tuning fields get working defaults.
func New(cfg Config, log zerolog.Logger) *Mailer {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 500 * time.Millisecond
	}
	return &Mailer{
		cfg:        cfg,
		log:        log,
		queue:      make(chan Email, cfg.QueueSize),
		titleCaser: cases.Title(language.English),
	}
}

// Enabled reports whether the mailer has enough configuration to deliver.
func (m *Mailer) Enabled() bool {
	return m.cfg.Host != "" && m.cfg.From != ""
}

// SetOnSent registers a callback invoked after every successful delivery.
// Must be called before Start.
func (m *Mailer) SetOnSent(fn func(ctx context.Context, notificationID string)) {
	m.onSent = fn
}

// Start launches the delivery workers. A disabled mailer starts nothing.
func (m *Mailer) Start() {
	if !m.Enabled() {
		m.log.Info().Msg("mailer disabled: no SMTP host configured")
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	for i := 0; i < m.cfg.Workers; i++ {
		m.wg.Add(1)
		go m.worker(ctx)
	}
	m.log.Info().Int("workers", m.cfg.Workers).Int("queue", m.cfg.QueueSize).Msg("mailer started")
}

// Stop shuts the workers down. Emails still queued are dropped; in-flight
// deliveries finish their current attempt.
func (m *Mailer) Stop() {
	if m.closed.Swap(true) {
		return
	}
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
}

// Enqueue queues an email without blocking. It returns false when the email
// was not accepted (mailer disabled, stopped, or queue full).
func (m *Mailer) Enqueue(e Email) bool {
	if !m.Enabled() || m.closed.Load() {
		return false
	}
	select {
	case m.queue <- e:
		return true
	default:
		m.dropped.Add(1)
		m.log.Warn().
			Str("notification_id", e.NotificationID).
			Str("to", e.To).
			Msg("mailer queue full, dropping email")
		return false
	}
}

// Counters returns cumulative sent/dropped/failed totals.
func (m *Mailer) Counters() (sent, dropped, failed int64) {
	return m.sent.Load(), m.dropped.Load(), m.failed.Load()
}

func (m *Mailer) worker(ctx context.Context) {
	defer m.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-m.queue:
			m.deliver(ctx, e)
		}
	}
}

// deliver attempts the send with doubling backoff between retries.
func (m *Mailer) deliver(ctx context.Context, e Email) {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" && m.cfg.Password != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	recipients := splitRecipients(e.To)
	msg := m.message(e, recipients)

	backoff := m.cfg.RetryBackoff
	var lastErr error
	for attempt := 0; attempt <= m.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff *= 2
		}
		lastErr = sendMail(addr, auth, m.cfg.From, recipients, msg)
		if lastErr == nil {
			m.sent.Add(1)
			if m.onSent != nil {
				m.onSent(ctx, e.NotificationID)
			}
			return
		}
	}

	m.failed.Add(1)
	m.log.Error().
		Err(lastErr).
		Str("notification_id", e.NotificationID).
		Str("to", e.To).
		Int("attempts", m.cfg.MaxRetries+1).
		Msg("email delivery failed")
}

// message renders RFC 5322 headers plus a plain-text body. The subject line
// passes through untouched; the category heading is the only text composed
// here.
func (m *Mailer) message(e Email, recipients []string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(recipients, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", e.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	if e.Category != "" {
		fmt.Fprintf(&b, "Category: %s\r\n\r\n", m.categoryLabel(e.Category))
	}
	b.WriteString(e.Body)
	return []byte(b.String())
}

// categoryLabel renders a category token as a body heading: "low_stock"
// becomes "Low Stock".
func (m *Mailer) categoryLabel(cat string) string {
	return m.titleCaser.String(strings.ReplaceAll(cat, "_", " "))
}

func splitRecipients(to string) []string {
	parts := strings.Split(to, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
