// Pharmacy alert service: deduplicated notifications for POS terminals.
//
// The process hosts three cooperating parts wired around one SQLite file:
// the HTTP API that POS registers poll, the background inventory sweep that
// raises low-stock and expiry alerts, and the async mailer that fans urgent
// alerts out to the shared pharmacy inbox.
//
// @title        Pharmacy Alerts API
// @version      1.0
// @description  Notification deduplication and cooldown service for pharmacy POS terminals.
// @host         localhost:8080
// @BasePath     /api/v1
// @schemes      http
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "github.com/rxhub/pharmacy-alerts/docs"
	"github.com/rxhub/pharmacy-alerts/internal/cache"
	"github.com/rxhub/pharmacy-alerts/internal/config"
	httpapi "github.com/rxhub/pharmacy-alerts/internal/http"
	"github.com/rxhub/pharmacy-alerts/internal/jobs"
	"github.com/rxhub/pharmacy-alerts/internal/mailer"
	"github.com/rxhub/pharmacy-alerts/internal/observability"
	"github.com/rxhub/pharmacy-alerts/internal/repo"
	"github.com/rxhub/pharmacy-alerts/internal/services"
	"github.com/rxhub/pharmacy-alerts/internal/sysutil"
)

const version = "1.0.0"

func main() {
	_ = godotenv.Load()

	cfg := config.MustLoad()
	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("opentelemetry setup failed")
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open database")
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	store := cache.New(cfg.Cache.TTL, cfg.Cache.Sweep)

	m := mailer.New(mailer.Config{
		Host:         cfg.Email.SMTP.Host,
		Port:         cfg.Email.SMTP.Port,
		Username:     cfg.Email.SMTP.Username,
		Password:     cfg.Email.SMTP.Password,
		From:         cfg.Email.SMTP.From,
		QueueSize:    cfg.Email.QueueSize,
		Workers:      cfg.Email.Workers,
		MaxRetries:   cfg.Email.MaxRetries,
		RetryBackoff: cfg.Email.RetryBackoff,
	}, log.With().Str("component", "mailer").Logger())
	m.SetOnSent(func(ctx context.Context, notificationID string) {
		if err := repo.MarkEmailSent(ctx, db, notificationID); err != nil {
			log.Warn().Err(err).Str("notification_id", notificationID).Msg("failed to flag email_sent")
		}
	})
	m.Start()
	defer m.Stop()

	notifSvc := services.NewNotificationService(db, store, m, services.NewMetrics())
	notifSvc.AlertEmail = cfg.Email.AlertInbox

	sweepSvc := services.NewSweepService(db, notifSvc)
	sweepSvc.Interval = cfg.Sweep.Interval
	sweepSvc.ExpiryWindow = cfg.Sweep.ExpiryWindow
	sweepSvc.EscalationWindow = cfg.Sweep.EscalationWindow

	sched := jobs.NewScheduler(db, sweepSvc, cfg.Sweep.Recipients)
	sched.SweepEvery = cfg.Sweep.Tick
	sched.DedupRetention = cfg.Retention.Dedup
	sched.DismissedRetention = cfg.Retention.Dismissed
	sched.Start()
	defer sched.Stop()

	r := gin.New()
	httpapi.RegisterRoutes(r, cfg, notifSvc, sweepSvc)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("base_path", cfg.APIBasePath).Msg("pharmacy alerts listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("tracer shutdown failed")
	}
}
