// Health-check HTTP handlers.
//
// This file exposes the inventory sweep trigger and the pipeline metrics
// snapshot:
//   - POST /health-check/run      (trigger an interval-gated sweep)
//   - GET  /health-check/metrics  (pipeline counters + last sweep outcome)
//
// Triggering a sweep is always safe: the run claim collapses concurrent and
// repeated triggers to one sweep per interval, so monitoring systems may call
// it alongside the internal scheduler without double-alerting.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rxhub/pharmacy-alerts/internal/services"
)

// SweepRunInfo describes the most recent claimed sweep. CompletedAt is nil
// while a sweep is still in flight (or when it crashed before recording).
type SweepRunInfo struct {
	LastRunAt            time.Time  `json:"last_run_at"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	NotificationsCreated int        `json:"notifications_created"`
	ErrorMessage         string     `json:"error_message,omitempty"`
}

// HealthMetricsResponse combines the notification pipeline snapshot with the
// last sweep bookkeeping. LastSweep is omitted until a sweep has run.
type HealthMetricsResponse struct {
	services.HealthStatus
	LastSweep *SweepRunInfo `json:"last_sweep,omitempty"`
}

// RunHealthSweep godoc
// @ID          runHealthSweep
// @Summary     Trigger an inventory health sweep
// @Description Runs the low-stock and expiry scan for the configured
// @Description recipients. The run claim makes extra triggers harmless: when
// @Description another scheduler already holds the interval, the response has
// @Description `ran: false` and nothing is scanned.
// @Tags        Health
// @Produce     json
//
// @Success     200  {object} services.SweepResult
// @Failure     500  {object} handlers.ErrorResponse "Sweep failed"
// @Router      /health-check/run [post]
func (h *Handlers) RunHealthSweep(c *gin.Context) {
	res, err := h.sweepSvc.Run(c.Request.Context(), h.sweepRecipients)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeSweepFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, res)
}

// GetHealthMetrics godoc
// @ID          getHealthMetrics
// @Summary     Notification pipeline metrics
// @Description Returns created/failed/deduplicated counters, the average
// @Description create latency, cache effectiveness, and the outcome of the
// @Description last inventory sweep. Status flips to "degraded" when the
// @Description failure rate crosses the alert threshold.
// @Tags        Health
// @Produce     json
//
// @Success     200  {object} handlers.HealthMetricsResponse
// @Router      /health-check/metrics [get]
func (h *Handlers) GetHealthMetrics(c *gin.Context) {
	resp := HealthMetricsResponse{HealthStatus: h.notifSvc.Health()}

	// Last sweep is best effort: a missing row just leaves the field out.
	if last, err := h.sweepSvc.LastRun(c.Request.Context()); err == nil && last != nil {
		resp.LastSweep = &SweepRunInfo{
			LastRunAt:            last.LastRunAt,
			CompletedAt:          last.CompletedAt,
			NotificationsCreated: last.NotificationsCreated,
			ErrorMessage:         last.ErrorMessage,
		}
	}
	ok(c, http.StatusOK, resp)
}
