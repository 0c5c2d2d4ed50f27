package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/giygas/patient-dashboard/config"
	"github.com/giygas/patient-dashboard/dashboard"
	"github.com/giygas/patient-dashboard/data"
	"github.com/giygas/patient-dashboard/fetcher"
	"github.com/giygas/patient-dashboard/handlers"
	"github.com/giygas/patient-dashboard/health"
)

const upstreamBody = `[
	{"name": "Jessica Taylor", "gender": "Female", "age": 28,
	 "diagnosis_history": [
		{"month": "March", "year": 2023, "heart_rate": {"value": 78},
		 "blood_pressure": {"systolic": {"value": 160}, "diastolic": {"value": 78}}},
		{"month": "January", "year": 2024, "heart_rate": {"value": 92},
		 "blood_pressure": {"systolic": {"value": 120}, "diastolic": {"value": 80}}}
	 ]},
	{"name": "Emily Williams", "gender": "Female", "age": 18},
	{"name": "Ryan Johnson", "gender": "Male", "age": 45}
]`

type stubChart struct{}

func (stubChart) RenderChart(w io.Writer, data dashboard.ChartData) error {
	_, err := io.WriteString(w, "<html>"+strings.Join(data.Labels, ",")+"</html>")
	return err
}

func newTestServer(t *testing.T, upstream http.HandlerFunc) *Server {
	t.Helper()

	up := httptest.NewServer(upstream)
	t.Cleanup(up.Close)

	cfg := &config.Config{
		Address:        "127.0.0.1",
		Port:           "0",
		MaxRequestBody: 1 << 20,
		MaxHeaderSize:  1 << 20,
	}

	client := fetcher.NewClient(fetcher.Config{URL: up.URL, Credential: "coalition:skills-test"})
	store := data.NewStatusContainer()
	store.SetServerStartTime(time.Now())
	builder := dashboard.NewBuilder(client, "Jessica Taylor", stubChart{})
	checker := health.NewHealthChecker(store, 5*time.Minute, 3)

	s := NewServer(cfg, handlers.NewHTTPHandler(builder, checker, store, "Patient Dashboard"))
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestDashboardRoute(t *testing.T) {
	var auth string
	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(upstreamBody))
	})

	rr := get(t, s.Handler(), "/")

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if auth != "Basic Y29hbGl0aW9uOnNraWxscy10ZXN0" {
		t.Errorf("upstream Authorization = %q", auth)
	}

	body := rr.Body.String()
	for _, want := range []string{
		"Jessica Taylor", "92 bpm", "120/80", "Emily Williams", "Ryan Johnson",
		"January 2024 · BP 120/80 · HR 92 bpm", "2023,2024",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
	if strings.Index(body, "January 2024") > strings.Index(body, "March 2023") {
		t.Error("diagnosis list should be newest first")
	}
}

func TestDashboardRouteUpstreamFailure(t *testing.T) {
	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	rr := get(t, s.Handler(), "/")

	if rr.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rr.Code)
	}
	body := rr.Body.String()
	for _, prefix := range []string{
		"Failed to load patient info", "Failed to load vitals",
		"Failed to load blood pressure trend", "Failed to load diagnosis history",
	} {
		if !strings.Contains(body, prefix+": network error: 500") {
			t.Errorf("body missing %q", prefix)
		}
	}
}

func TestHealthRoute(t *testing.T) {
	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	rr := get(t, s.Handler(), "/health")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	var resp handlers.HealthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Status != health.StatusUnknown {
		t.Errorf("status = %q, want %q", resp.Status, health.StatusUnknown)
	}
}

func TestMetricsRoute(t *testing.T) {
	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(upstreamBody))
	})

	get(t, s.Handler(), "/")
	rr := get(t, s.Handler(), "/metrics")

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"http_request_total", "upstream_fetch_total", "dashboard_render_total"} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %s", want)
		}
	}
}

func TestStaticRoute(t *testing.T) {
	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	rr := get(t, s.Handler(), "/static/dashboard.css")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("Content-Type"), "text/css") {
		t.Errorf("Content-Type = %q", rr.Header().Get("Content-Type"))
	}
	if rr.Header().Get("Cache-Control") == "" {
		t.Error("static assets should be cacheable")
	}
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	rr := get(t, s.Handler(), "/nope")
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
	if !strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		t.Errorf("Content-Type = %q", rr.Header().Get("Content-Type"))
	}
}

func TestTrailingSlashRedirect(t *testing.T) {
	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	rr := get(t, s.Handler(), "/health/")
	if rr.Code != http.StatusMovedPermanently {
		t.Errorf("status = %d, want 301", rr.Code)
	}
}

func TestDashboardSetsBuildID(t *testing.T) {
	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(upstreamBody))
	})

	rr := get(t, s.Handler(), "/")
	if rr.Header().Get("X-Build-ID") == "" {
		t.Error("dashboard responses should carry a build id")
	}
}
