package dashboard

import (
	"context"
	"embed"
	"io/fs"
	"time"

	"github.com/google/uuid"

	"github.com/giygas/patient-dashboard/interfaces"
	"github.com/giygas/patient-dashboard/logging"
	"github.com/giygas/patient-dashboard/metrics"
	"github.com/giygas/patient-dashboard/patients"
)

//go:embed static
var staticFS embed.FS

// StaticFS exposes the embedded stylesheet rooted at static/
func StaticFS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Builder runs one fetch, select and render cycle per call
type Builder struct {
	source  interfaces.PatientSource
	target  string
	chart   ChartRenderer
	regions []Region
}

type BuilderOption func(*Builder)

// WithRegions declares a custom region set for built pages
func WithRegions(regions ...Region) BuilderOption {
	return func(b *Builder) {
		b.regions = regions
	}
}

func NewBuilder(source interfaces.PatientSource, target string, chart ChartRenderer, opts ...BuilderOption) *Builder {
	b := &Builder{
		source:  source,
		target:  target,
		chart:   chart,
		regions: DefaultRegions,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Target is the patient name the dashboard focuses on
func (b *Builder) Target() string {
	return b.target
}

// Load fetches the collection and selects the focal record and its latest
// diagnosis. It performs exactly one fetch.
func (b *Builder) Load(ctx context.Context) Result {
	records, err := b.source.FetchPatients(ctx)
	if err != nil {
		return Failure(err)
	}

	focus, err := patients.FindPatient(records, b.target)
	if err != nil {
		return Failure(err)
	}

	return Success(&Snapshot{
		Patients: records,
		Target:   b.target,
		Focus:    focus,
		Latest:   patients.LatestDiagnosis(focus.DiagnosisHistory),
	})
}

// Build loads and renders a fresh page. The returned result reflects what
// the page shows, including render failures.
func (b *Builder) Build(ctx context.Context) (*Page, Result, string) {
	buildID := uuid.NewString()
	start := time.Now()

	page := NewPage(b.regions...)
	result := b.Load(ctx)
	if err := Dispatch(page, result, b.chart); err != nil {
		result = Failure(err)
	}

	kind := result.Kind()
	metrics.RecordRender(kind)

	if result.OK() {
		logging.Info("Dashboard built",
			"build_id", buildID,
			"target", b.target,
			"patients", len(result.Snapshot().Patients),
			"history", len(result.Snapshot().Focus.DiagnosisHistory),
			"duration_ms", time.Since(start).Milliseconds())
	} else {
		logging.Warn("Dashboard build failed",
			"build_id", buildID,
			"target", b.target,
			"kind", kind,
			"error", result.Err(),
			"duration_ms", time.Since(start).Milliseconds())
	}

	return page, result, buildID
}
