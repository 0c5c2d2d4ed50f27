// Package health derives the service health from the latest upstream probe.
package health

import (
	"math"
	"net/http"
	"time"

	"github.com/giygas/patient-dashboard/interfaces"
)

const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
	StatusUnknown  = "unknown"
)

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	store         interfaces.StatusStore
	interval      time.Duration
	degradedAfter int
	now           func() time.Time
}

// NewHealthChecker creates a checker for probes run every interval. The
// service turns unavailable after degradedAfter intervals without a
// healthy probe; a zero interval never does.
func NewHealthChecker(store interfaces.StatusStore, interval time.Duration, degradedAfter int) interfaces.HealthChecker {
	return &HealthCheckerImpl{
		store:         store,
		interval:      interval,
		degradedAfter: degradedAfter,
		now:           time.Now,
	}
}

// HealthCheck reports healthy when the last probe reached upstream and
// found the target, degraded when it did not and unknown before any probe.
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	probe, ok := h.store.GetProbeStatus()
	now := h.now()

	data = map[string]any{
		"probe_interval_minutes": h.interval.Minutes(),
	}

	if !ok {
		return StatusUnknown, data, http.StatusOK
	}

	data["checked_at"] = probe.CheckedAt.Format(time.RFC3339)
	data["probe_age_minutes"] = math.Round(now.Sub(probe.CheckedAt).Minutes()*10) / 10
	data["reachable"] = probe.Reachable
	data["target_found"] = probe.TargetFound
	data["patients"] = probe.PatientCount
	data["latency_ms"] = probe.Latency.Milliseconds()
	data["quality_issues"] = probe.QualityIssues
	if probe.StatusCode != 0 {
		data["upstream_status"] = probe.StatusCode
	}
	if probe.ErrorKind != "" {
		data["error_kind"] = probe.ErrorKind
		data["error"] = probe.ErrorMessage
	}

	lastHealthy := h.store.GetLastHealthy()
	if !lastHealthy.IsZero() {
		data["last_healthy"] = lastHealthy.Format(time.RFC3339)
	}

	if probe.OK() {
		return StatusHealthy, data, http.StatusOK
	}

	if h.interval > 0 && h.degradedAfter > 0 {
		since := lastHealthy
		if since.IsZero() {
			since = h.store.GetServerStartTime()
		}
		if !since.IsZero() && now.Sub(since) > time.Duration(h.degradedAfter)*h.interval {
			return StatusDegraded, data, http.StatusServiceUnavailable
		}
	}

	return StatusDegraded, data, http.StatusOK
}
