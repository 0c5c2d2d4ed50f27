// Package scheduler runs the periodic upstream probe that feeds /health.
// A probe fetches the collection, checks the target is present and runs the
// data quality report. Its result is never used to render the dashboard.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/giygas/patient-dashboard/dashboard"
	"github.com/giygas/patient-dashboard/fetcher"
	"github.com/giygas/patient-dashboard/interfaces"
	"github.com/giygas/patient-dashboard/logging"
	"github.com/giygas/patient-dashboard/metrics"
	"github.com/giygas/patient-dashboard/patients"
	"github.com/giygas/patient-dashboard/validation"
	"github.com/go-co-op/gocron"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// probeTimeout bounds a background probe so a hung upstream cannot pin it
const probeTimeout = 30 * time.Second

// DegradedIntervals is how many probe intervals without a healthy probe
// are tolerated before the service reports itself unavailable
const DegradedIntervals = 3

// Scheduler probes the upstream on a fixed interval
type Scheduler struct {
	store     interfaces.StatusStore
	source    interfaces.PatientSource
	validator interfaces.DataValidator
	target    string
	interval  time.Duration
	scheduler *gocron.Scheduler
	job       *gocron.Job
	started   chan struct{}
}

// NewScheduler creates a scheduler probing every intervalMinutes. Zero
// disables the periodic probe; Start still probes once.
func NewScheduler(store interfaces.StatusStore, source interfaces.PatientSource, target string, intervalMinutes int) *Scheduler {
	return &Scheduler{
		store:     store,
		source:    source,
		validator: validation.NewDataValidator(),
		target:    target,
		interval:  time.Duration(intervalMinutes) * time.Minute,
		scheduler: gocron.NewScheduler(time.Local),
		started:   make(chan struct{}),
	}
}

// Interval returns the probe period, zero when disabled
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// NextProbe returns when the next probe is due, zero when disabled
func (s *Scheduler) NextProbe() time.Time {
	if s.job == nil {
		return time.Time{}
	}
	return s.job.NextRun()
}

// Start launches the initial probe in the background and schedules the
// following ones. It does not wait for the upstream. A failed initial probe
// is recorded, not returned.
func (s *Scheduler) Start() error {
	go func() {
		defer close(s.started)
		s.Probe(context.Background())
	}()

	if s.interval <= 0 {
		logging.Info("Upstream probe schedule disabled")
		return nil
	}

	job, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(func() {
		s.Probe(context.Background())
	})
	if err != nil {
		logging.Error("Failed to schedule upstream probe", "error", err)
		return fmt.Errorf("failed to schedule upstream probe: %w", err)
	}
	s.job = job

	s.scheduler.StartAsync()
	logging.Info("Upstream probe scheduled", "interval", s.interval.String())

	return nil
}

// InitialProbeDone is closed once the probe launched by Start has finished
func (s *Scheduler) InitialProbeDone() <-chan struct{} {
	return s.started
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// Probe fetches the collection once and records the outcome. It returns
// false without probing when another probe is in flight.
func (s *Scheduler) Probe(ctx context.Context) (interfaces.ProbeStatus, bool) {
	if !s.store.BeginProbe() {
		logging.Info("Probe already in progress, skipping...")
		return interfaces.ProbeStatus{}, false
	}
	defer s.store.EndProbe()

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	start := time.Now()
	records, err := s.source.FetchPatients(ctx)
	status := interfaces.ProbeStatus{
		CheckedAt: start,
		Latency:   time.Since(start),
	}

	if err != nil {
		status.ErrorKind = dashboard.ErrorKind(err)
		status.ErrorMessage = err.Error()
		var netErr *fetcher.NetworkError
		if errors.As(err, &netErr) {
			status.StatusCode = netErr.StatusCode
		} else {
			// any other failure means a response was read
			status.Reachable = true
			status.StatusCode = 200
		}
	} else {
		status.Reachable = true
		status.StatusCode = 200
		status.PatientCount = len(records)
		s.inspect(records, &status)
	}

	s.store.SetProbeStatus(status)
	metrics.SetProbeUp(status.OK())
	s.warnIfDegraded(status)

	logging.Info("Upstream probe completed",
		"reachable", status.Reachable,
		"target_found", status.TargetFound,
		"patients", status.PatientCount,
		"latency_ms", status.Latency.Milliseconds(),
		"error_kind", status.ErrorKind)

	return status, true
}

// inspect checks for the target and logs the quality report
func (s *Scheduler) inspect(records []patients.Patient, status *interfaces.ProbeStatus) {
	focus, err := patients.FindPatient(records, s.target)
	if err != nil {
		status.ErrorKind = dashboard.ErrorKind(err)
		status.ErrorMessage = err.Error()
	} else {
		status.TargetFound = true
		if err := s.validator.ValidatePatient(focus); err != nil {
			logging.Warn("Target record failed validation", "target", s.target, "error", err)
		}
	}

	report := s.validator.ReportDataQuality(records)
	status.QualityIssues = report.IssueCount()

	if len(report.DuplicateNames) > 0 {
		logging.Warn("Duplicate patient names detected",
			"total", len(report.DuplicateNames),
			"names", report.DuplicateNames,
		)
	}

	if report.UnnamedRecords > 0 {
		logging.Warn("Patients without a name", "count", report.UnnamedRecords)
	}

	if len(report.UnknownMonths) > 0 {
		logging.Warn("Diagnosis entries with unrecognized months",
			"total", len(report.UnknownMonths),
			"months", report.UnknownMonths,
		)
	}

	if report.MissingVitals > 0 {
		logging.Debug("Diagnosis entries without vitals", "count", report.MissingVitals)
	}
}

func (s *Scheduler) warnIfDegraded(status interfaces.ProbeStatus) {
	if status.OK() || s.interval <= 0 {
		return
	}
	since := s.store.GetLastHealthy()
	if since.IsZero() {
		since = s.store.GetServerStartTime()
	}
	if !since.IsZero() && time.Since(since) > DegradedIntervals*s.interval {
		logging.Warn("Upstream has not been healthy for several probe intervals",
			"since", since.Format(time.RFC3339),
			"intervals", DegradedIntervals)
	}
}
