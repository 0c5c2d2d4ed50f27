// Package interfaces defines the core abstractions shared across the
// dashboard packages so each piece can be tested against fakes.
package interfaces

import (
	"context"
	"time"

	"github.com/giygas/patient-dashboard/patients"
)

// PatientSource returns the full patient collection, one attempt per call
type PatientSource interface {
	FetchPatients(ctx context.Context) ([]patients.Patient, error)
}

// ProbeStatus is the outcome of one upstream reachability probe
type ProbeStatus struct {
	CheckedAt     time.Time     `json:"checked_at"`
	Reachable     bool          `json:"reachable"`
	StatusCode    int           `json:"status_code,omitempty"`
	Latency       time.Duration `json:"latency_ns"`
	PatientCount  int           `json:"patient_count"`
	TargetFound   bool          `json:"target_found"`
	ErrorKind     string        `json:"error_kind,omitempty"`
	ErrorMessage  string        `json:"error_message,omitempty"`
	QualityIssues int           `json:"quality_issues"`
}

// OK reports whether the probe reached upstream and found the target
func (s ProbeStatus) OK() bool {
	return s.Reachable && s.TargetFound
}

// StatusStore keeps the latest probe status with atomic replacement
type StatusStore interface {
	GetProbeStatus() (ProbeStatus, bool)
	SetProbeStatus(status ProbeStatus)
	GetLastHealthy() time.Time
	GetServerStartTime() time.Time
	BeginProbe() bool
	EndProbe()
}

// Scheduler manages the periodic upstream probe
type Scheduler interface {
	Start() error
	Stop()
}

// HealthChecker reports service health for the /health endpoint
type HealthChecker interface {
	HealthCheck() (status string, details map[string]any, httpStatus int)
}

// DataQualityReport summarizes oddities in a fetched collection
type DataQualityReport struct {
	Records               int
	UnnamedRecords        int
	DuplicateNames        []string
	RecordsWithoutHistory []string
	UnknownMonths         []string
	MissingVitals         int
}

// IssueCount is the number of individual findings in the report
func (r *DataQualityReport) IssueCount() int {
	if r == nil {
		return 0
	}
	return r.UnnamedRecords + len(r.DuplicateNames) + len(r.RecordsWithoutHistory) + len(r.UnknownMonths) + r.MissingVitals
}

// DataValidator inspects a fetched collection without rejecting it
type DataValidator interface {
	ValidatePatient(p *patients.Patient) error
	ReportDataQuality(records []patients.Patient) *DataQualityReport
}
