package dashboard

import (
	"errors"
	"fmt"

	"github.com/giygas/patient-dashboard/fetcher"
	"github.com/giygas/patient-dashboard/patients"
)

// Error kinds used in logs, metrics and HTTP status selection
const (
	KindNetwork  = "network"
	KindParse    = "parse"
	KindNotFound = "not_found"
	KindUnknown  = "unknown"
)

// Snapshot is everything the success path renders from
type Snapshot struct {
	Patients []patients.Patient
	Target   string
	Focus    *patients.Patient
	Latest   *patients.DiagnosisEntry
}

// Result is either a snapshot or the error that ended the load
type Result struct {
	snapshot *Snapshot
	err      error
}

func Success(s *Snapshot) Result {
	return Result{snapshot: s}
}

func Failure(err error) Result {
	if err == nil {
		err = errors.New("unknown failure")
	}
	return Result{err: err}
}

func (r Result) OK() bool {
	return r.err == nil && r.snapshot != nil && r.snapshot.Focus != nil
}

func (r Result) Snapshot() *Snapshot { return r.snapshot }

func (r Result) Err() error {
	if r.err == nil && !r.OK() {
		return errors.New("empty result")
	}
	return r.err
}

// Kind returns "success" or the error kind
func (r Result) Kind() string {
	if r.OK() {
		return "success"
	}
	return ErrorKind(r.Err())
}

// ErrorKind classifies err for logs, metrics and status codes
func ErrorKind(err error) string {
	var netErr *fetcher.NetworkError
	var parseErr *fetcher.ParseError
	var notFound *patients.NotFoundError
	switch {
	case errors.As(err, &netErr):
		return KindNetwork
	case errors.As(err, &parseErr):
		return KindParse
	case errors.As(err, &notFound):
		return KindNotFound
	default:
		return KindUnknown
	}
}

// Dispatch renders result into page. On success every renderer runs in a
// fixed order; if one of them fails the whole page switches to the failure
// path and that error is returned.
func Dispatch(page *Page, result Result, chart ChartRenderer) error {
	if !result.OK() {
		RenderFailure(page, result.Err())
		return nil
	}

	s := result.Snapshot()
	steps := []func() error{
		func() error { return RenderPatientInfo(page, s.Focus) },
		func() error { return RenderVitals(page, s.Latest) },
		func() error { return RenderTrendChart(page, s.Focus.DiagnosisHistory, chart) },
		func() error { return RenderDiagnosisHistory(page, s.Focus.DiagnosisHistory) },
		func() error { return RenderOtherPatients(page, s.Patients, s.Target) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			RenderFailure(page, err)
			return err
		}
	}
	return nil
}

var failureLabels = []struct {
	region Region
	label  string
	item   bool
}{
	{RegionPatientCard, "patient info", false},
	{RegionVitals, "vitals", false},
	{RegionChart, "blood pressure trend", false},
	{RegionDiagnosisList, "diagnosis history", true},
	{RegionOtherPatients, "patients", true},
}

// RenderFailure writes "Failed to load <region>: <message>" into the primary
// regions and the roster. Undeclared regions are skipped.
func RenderFailure(page *Page, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	for _, f := range failureLabels {
		name := "failure-block"
		if f.item {
			name = "failure-item"
		}
		// fragments are static, so execution only fails on a broken writer
		_ = fill(page, f.region, name, fmt.Sprintf("Failed to load %s: %s", f.label, msg))
	}
}
