// Package handlers provides the HTTP handlers of the dashboard service.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/giygas/patient-dashboard/dashboard"
	"github.com/giygas/patient-dashboard/interfaces"
	"github.com/giygas/patient-dashboard/logging"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// PageBuilder runs one fetch and render cycle
type PageBuilder interface {
	Build(ctx context.Context) (*dashboard.Page, dashboard.Result, string)
}

// Compile-time check to ensure Builder implements PageBuilder
var _ PageBuilder = (*dashboard.Builder)(nil)

// HTTPHandler serves the dashboard page and the health endpoint
type HTTPHandler struct {
	builder PageBuilder
	checker interfaces.HealthChecker
	store   interfaces.StatusStore
	title   string
}

// NewHTTPHandler creates a handler with injected dependencies
func NewHTTPHandler(builder PageBuilder, checker interfaces.HealthChecker, store interfaces.StatusStore, title string) *HTTPHandler {
	return &HTTPHandler{
		builder: builder,
		checker: checker,
		store:   store,
		title:   title,
	}
}

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status        string         `json:"status"`
	Uptime        string         `json:"uptime"`
	UptimeSeconds float64        `json:"uptime_seconds"`
	Upstream      map[string]any `json:"upstream"`
	System        map[string]any `json:"system"`
}

// StatusForKind maps a result kind to the response status. The failure
// page is still written with that status.
func StatusForKind(kind string) int {
	switch kind {
	case "success":
		return http.StatusOK
	case dashboard.KindNetwork, dashboard.KindParse:
		return http.StatusBadGateway
	case dashboard.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ServeDashboard builds the page for this request. Each request performs
// exactly one upstream fetch bound to the request context.
func (h *HTTPHandler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	page, result, buildID := h.builder.Build(r.Context())

	var buf bytes.Buffer
	view := dashboard.View{Title: h.title, BuildID: buildID, Page: page}
	if err := dashboard.WriteLayout(&buf, view); err != nil {
		logging.Error("Failed to render dashboard layout", "build_id", buildID, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set(logging.BuildIDHeader, buildID)
	w.WriteHeader(StatusForKind(result.Kind()))
	if _, err := w.Write(buf.Bytes()); err != nil {
		logging.Warn("Failed to write dashboard response", "build_id", buildID, "error", err)
	}
}

// HealthCheck returns upstream probe status and process statistics
func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	status, upstream, httpStatus := h.checker.HealthCheck()

	var uptime time.Duration
	if start := h.store.GetServerStartTime(); !start.IsZero() {
		uptime = time.Since(start)
	}

	response := HealthResponse{
		Status:        status,
		Uptime:        formatUptimeHuman(uptime),
		UptimeSeconds: uptime.Seconds(),
		Upstream:      upstream,
		System: map[string]any{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       int(m.Alloc / 1024 / 1024),
				"total_alloc_mb": int(m.TotalAlloc / 1024 / 1024),
				"sys_mb":         int(m.Sys / 1024 / 1024),
				"num_gc":         m.NumGC,
			},
		},
	}
	if host := hostStats(); host != nil {
		response.System["host"] = host
	}

	RespondWithJSON(w, httpStatus, response)
}

// hostStats reports machine memory and CPU count, or nil when the
// platform does not expose them
func hostStats() map[string]any {
	vm, err := mem.VirtualMemory()
	if err != nil {
		logging.Debug("Host memory unavailable", "error", err)
		return nil
	}
	host := map[string]any{
		"memory_total_mb":     int(vm.Total / 1024 / 1024),
		"memory_available_mb": int(vm.Available / 1024 / 1024),
		"memory_used_percent": vm.UsedPercent,
	}
	if n, err := cpu.Counts(true); err == nil {
		host["cpus"] = n
	}
	return host
}

// RespondWithJSON writes a JSON response
func RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	if _, err := w.Write(data); err != nil {
		logging.Warn("Failed to write JSON response", "error", err)
	}
}

// RespondWithError writes a JSON error response
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, map[string]any{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	})
}

// formatUptimeHuman formats duration into a human-readable string
func formatUptimeHuman(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string

	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", seconds))

	return strings.Join(parts, " ")
}
