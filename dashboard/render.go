package dashboard

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/giygas/patient-dashboard/format"
	"github.com/giygas/patient-dashboard/logging"
	"github.com/giygas/patient-dashboard/patients"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	fragments = template.Must(template.ParseFS(templateFS, "templates/fragments.html"))
	layout    = template.Must(template.ParseFS(templateFS, "templates/layout.html"))
)

// DefaultDiagnosisTitle labels entries that carry no diagnosis
const DefaultDiagnosisTitle = "Checkup"

type patientCardView struct {
	Photo          string
	Name           string
	Age            string
	Gender         string
	BloodType      string
	DateOfBirth    string
	Phone          string
	Email          string
	EmergencyName  string
	EmergencyPhone string
	Insurance      string
}

type vitalView struct {
	Icon  string
	Label string
	Value string
}

type diagnosisView struct {
	Title     string
	Date      string
	Systolic  string
	Diastolic string
	HeartRate string
}

type rosterView struct {
	Photo  string
	Name   string
	Gender string
	Age    string
}

// fill executes the named fragment into region r. An undeclared region is
// skipped without error.
func fill(page *Page, r Region, name string, data any) error {
	if !page.Has(r) {
		logging.Debug("Region not declared, skipping", "region", string(r))
		return nil
	}
	var buf bytes.Buffer
	if err := fragments.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", r, err)
	}
	page.Set(r, template.HTML(buf.String()))
	return nil
}

// RenderPatientInfo fills the patient card. Every field falls back on its own.
func RenderPatientInfo(page *Page, p *patients.Patient) error {
	if p == nil {
		p = &patients.Patient{}
	}
	contact := p.Contact()
	view := patientCardView{
		Photo:          format.ValueOr(p.ProfilePicture, ""),
		Name:           format.Text(p.Name),
		Age:            format.Value(p.Age),
		Gender:         format.Value(p.Gender),
		BloodType:      format.Value(p.BloodType),
		DateOfBirth:    format.DateOfBirth(p.DateOfBirth),
		Phone:          format.Value(p.PhoneNumber),
		Email:          format.Value(p.Email),
		EmergencyName:  format.Value(contact.ContactName()),
		EmergencyPhone: format.Value(contact.ContactPhone()),
		Insurance:      format.Value(p.InsuranceType),
	}
	return fill(page, RegionPatientCard, "patient-card", view)
}

// RenderVitals fills the vitals grid from the latest diagnosis entry
func RenderVitals(page *Page, latest *patients.DiagnosisEntry) error {
	if latest == nil {
		return fill(page, RegionVitals, "vitals-empty", nil)
	}
	bp := latest.BP()
	items := []vitalView{
		{Icon: "❤️", Label: "Heart Rate", Value: format.Number(latest.HR().Val()) + " bpm"},
		{Icon: "🩸", Label: "Blood Pressure", Value: format.Number(bp.Sys().Val()) + "/" + format.Number(bp.Dia().Val())},
		{Icon: "🌡️", Label: "Temperature", Value: format.Number(latest.Temp().Val()) + " °F"},
		{Icon: "🫁", Label: "Respiratory Rate", Value: format.Number(latest.RR().Val()) + " bpm"},
	}
	return fill(page, RegionVitals, "vitals-grid", items)
}

// RenderTrendChart draws the blood pressure history through chart. It is a
// no-op when the chart region is absent or the history is empty.
func RenderTrendChart(page *Page, history []patients.DiagnosisEntry, chart ChartRenderer) error {
	if !page.Has(RegionChart) || len(history) == 0 {
		return nil
	}
	if chart == nil {
		return fmt.Errorf("no chart renderer configured")
	}

	var doc bytes.Buffer
	if err := chart.RenderChart(&doc, BuildChartData(history)); err != nil {
		return fmt.Errorf("failed to draw chart: %w", err)
	}
	// string, not template.HTML, so the document is attribute-escaped
	return fill(page, RegionChart, "bpChart", doc.String())
}

// RenderDiagnosisHistory lists the whole history, newest first
func RenderDiagnosisHistory(page *Page, history []patients.DiagnosisEntry) error {
	if len(history) == 0 {
		return fill(page, RegionDiagnosisList, "diagnosis-empty", nil)
	}

	sorted := patients.SortNewestFirst(history)
	items := make([]diagnosisView, 0, len(sorted))
	for i := range sorted {
		d := &sorted[i]
		bp := d.BP()
		items = append(items, diagnosisView{
			Title:     format.ValueOr(d.Diagnosis, DefaultDiagnosisTitle),
			Date:      format.Value(d.Month) + " " + format.Value(d.Year),
			Systolic:  format.Number(bp.Sys().Val()),
			Diastolic: format.Number(bp.Dia().Val()),
			HeartRate: format.Number(d.HR().Val()),
		})
	}
	return fill(page, RegionDiagnosisList, "diagnosis-list", items)
}

// RenderOtherPatients lists every record whose name differs from target
func RenderOtherPatients(page *Page, records []patients.Patient, target string) error {
	others := patients.Others(records, target)
	items := make([]rosterView, 0, len(others))
	for i := range others {
		p := &others[i]
		items = append(items, rosterView{
			Photo:  format.ValueOr(p.ProfilePicture, ""),
			Name:   format.Text(p.Name),
			Gender: format.Value(p.Gender),
			Age:    format.Value(p.Age),
		})
	}
	return fill(page, RegionOtherPatients, "other-patients-list", items)
}

// View is the data handed to the page layout
type View struct {
	Title   string
	BuildID string
	Page    *Page
}

// WriteLayout renders the full HTML document for page
func WriteLayout(w io.Writer, view View) error {
	if view.Page == nil {
		view.Page = NewDefaultPage()
	}
	if err := layout.Execute(w, view); err != nil {
		return fmt.Errorf("failed to render layout: %w", err)
	}
	return nil
}
