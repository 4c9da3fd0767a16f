// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, database paths, cache and sweep tuning,
// email delivery, rate limiting, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "pharmacy-alerts")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// CacheConfig tunes the in-process read cache for counts and list pages.
type CacheConfig struct {
	TTL   time.Duration // CACHE_TTL (entry freshness)
	Sweep time.Duration // CACHE_SWEEP_INTERVAL (expired-entry cleanup)
}

// SweepConfig tunes the inventory health sweep.
type SweepConfig struct {
	Interval         time.Duration // SWEEP_INTERVAL (minimum gap between runs)
	Tick             time.Duration // SWEEP_TICK (scheduler cadence)
	ExpiryWindow     time.Duration // EXPIRY_WINDOW (look-ahead for expiry alerts)
	EscalationWindow time.Duration // EXPIRY_ESCALATION_WINDOW (high-priority horizon)
	Recipients       []string      // SWEEP_RECIPIENTS (CSV of user ids)
}

// SMTPConfig holds the SMTP connection settings. An empty Host disables
// outbound email.
type SMTPConfig struct {
	Host     string // SMTP_HOST
	Port     int    // SMTP_PORT
	Username string // SMTP_USERNAME
	Password string // SMTP_PASSWORD
	From     string // SMTP_FROM
}

// EmailConfig holds delivery settings for urgent-alert emails.
type EmailConfig struct {
	SMTP SMTPConfig

	AlertInbox   string        // ALERT_EMAIL (shared pharmacy inbox)
	QueueSize    int           // EMAIL_QUEUE_SIZE
	Workers      int           // EMAIL_WORKERS
	MaxRetries   int           // EMAIL_MAX_RETRIES
	RetryBackoff time.Duration // EMAIL_RETRY_BACKOFF
}

// RetentionConfig bounds how long bookkeeping rows are kept.
type RetentionConfig struct {
	Dedup     time.Duration // DEDUP_RETENTION (cooldown ledger rows)
	Dismissed time.Duration // DISMISSED_RETENTION (soft-deleted notifications)
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// App
	DBPath        string // SQLite path
	DefaultUserID string // X-User-ID fallback for single-terminal installs

	Cache     CacheConfig
	Sweep     SweepConfig
	Email     EmailConfig
	Retention RetentionConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// App
		DBPath:        getenv("DB_PATH", "pharmacy.db"),
		DefaultUserID: getenv("DEFAULT_USER_ID", "demo-user"),

		Cache: CacheConfig{
			TTL:   getdur("CACHE_TTL", 30*time.Second),
			Sweep: getdur("CACHE_SWEEP_INTERVAL", 60*time.Second),
		},

		Sweep: SweepConfig{
			Interval:         getdur("SWEEP_INTERVAL", time.Hour),
			Tick:             getdur("SWEEP_TICK", 15*time.Minute),
			ExpiryWindow:     getdur("EXPIRY_WINDOW", 30*24*time.Hour),
			EscalationWindow: getdur("EXPIRY_ESCALATION_WINDOW", 7*24*time.Hour),
			Recipients:       splitCSV(getenv("SWEEP_RECIPIENTS", "")),
		},

		Email: EmailConfig{
			SMTP: SMTPConfig{
				Host:     getenv("SMTP_HOST", ""),
				Port:     getint("SMTP_PORT", 587),
				Username: getenv("SMTP_USERNAME", ""),
				Password: getenv("SMTP_PASSWORD", ""),
				From:     getenv("SMTP_FROM", ""),
			},
			AlertInbox:   getenv("ALERT_EMAIL", ""),
			QueueSize:    getint("EMAIL_QUEUE_SIZE", 256),
			Workers:      getint("EMAIL_WORKERS", 2),
			MaxRetries:   getint("EMAIL_MAX_RETRIES", 3),
			RetryBackoff: getdur("EMAIL_RETRY_BACKOFF", 500*time.Millisecond),
		},

		Retention: RetentionConfig{
			Dedup:     getdur("DEDUP_RETENTION", 90*24*time.Hour),
			Dismissed: getdur("DISMISSED_RETENTION", 30*24*time.Hour),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "pharmacy-alerts"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if strings.TrimSpace(cfg.DefaultUserID) == "" {
		return cfg, errors.New("DEFAULT_USER_ID must not be empty")
	}
	if cfg.Cache.TTL <= 0 || cfg.Cache.Sweep <= 0 {
		return cfg, errors.New("CACHE_TTL and CACHE_SWEEP_INTERVAL must be > 0")
	}
	if cfg.Sweep.Interval <= 0 || cfg.Sweep.Tick <= 0 {
		return cfg, errors.New("SWEEP_INTERVAL and SWEEP_TICK must be > 0")
	}
	if cfg.Sweep.ExpiryWindow <= 0 || cfg.Sweep.EscalationWindow <= 0 {
		return cfg, errors.New("EXPIRY_WINDOW and EXPIRY_ESCALATION_WINDOW must be > 0")
	}
	if cfg.Sweep.EscalationWindow > cfg.Sweep.ExpiryWindow {
		return cfg, errors.New("EXPIRY_ESCALATION_WINDOW must not exceed EXPIRY_WINDOW")
	}
	if cfg.Email.SMTP.Port < 1 || cfg.Email.SMTP.Port > 65535 {
		return cfg, errors.New("SMTP_PORT must be in [1,65535]")
	}
	if cfg.Email.QueueSize < 1 || cfg.Email.Workers < 1 {
		return cfg, errors.New("EMAIL_QUEUE_SIZE and EMAIL_WORKERS must be >= 1")
	}
	if cfg.Email.MaxRetries < 0 {
		return cfg, errors.New("EMAIL_MAX_RETRIES must be >= 0")
	}
	if cfg.Email.RetryBackoff <= 0 {
		return cfg, errors.New("EMAIL_RETRY_BACKOFF must be > 0")
	}
	if cfg.Retention.Dedup <= 0 || cfg.Retention.Dismissed <= 0 {
		return cfg, errors.New("DEDUP_RETENTION and DISMISSED_RETENTION must be > 0")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
