package dashboard

import (
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/giygas/patient-dashboard/patients"
)

// ChartData is the input of the blood pressure trend: one label per entry
// and two aligned series. A nil reading is a gap.
type ChartData struct {
	Labels    []string
	Systolic  []*float64
	Diastolic []*float64
}

// BuildChartData orders history by year alone. Entries sharing a year keep
// their input order and get identical labels.
func BuildChartData(history []patients.DiagnosisEntry) ChartData {
	sorted := patients.SortByYear(history)
	data := ChartData{
		Labels:    make([]string, 0, len(sorted)),
		Systolic:  make([]*float64, 0, len(sorted)),
		Diastolic: make([]*float64, 0, len(sorted)),
	}
	for i := range sorted {
		e := &sorted[i]
		label := ""
		if e.Year != nil {
			label = strconv.Itoa(*e.Year)
		}
		data.Labels = append(data.Labels, label)
		data.Systolic = append(data.Systolic, e.BP().Sys().Val())
		data.Diastolic = append(data.Diastolic, e.BP().Dia().Val())
	}
	return data
}

// ChartRenderer draws a two-series line chart as a standalone HTML document
type ChartRenderer interface {
	RenderChart(w io.Writer, data ChartData) error
}

// EChartsRenderer draws the trend with go-echarts
type EChartsRenderer struct {
	Width  string
	Height string
	// AssetsHost overrides where the echarts script is loaded from
	AssetsHost string
}

func NewEChartsRenderer() *EChartsRenderer {
	return &EChartsRenderer{Width: "100%", Height: "300px"}
}

func (e *EChartsRenderer) RenderChart(w io.Writer, data ChartData) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:  "Blood Pressure",
			Width:      e.Width,
			Height:     e.Height,
			AssetsHost: e.AssetsHost,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
			Top:  "top",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Scale: opts.Bool(true),
		}),
	)

	line.SetXAxis(data.Labels).
		AddSeries("Systolic", lineData(data.Systolic)).
		AddSeries("Diastolic", lineData(data.Diastolic)).
		SetSeriesOptions(
			charts.WithLineChartOpts(opts.LineChart{
				Smooth:     opts.Bool(true),
				ShowSymbol: opts.Bool(true),
			}),
		)

	return line.Render(w)
}

// echarts treats "-" as a missing point
func lineData(values []*float64) []opts.LineData {
	out := make([]opts.LineData, 0, len(values))
	for _, v := range values {
		if v == nil {
			out = append(out, opts.LineData{Value: "-"})
			continue
		}
		out = append(out, opts.LineData{Value: *v})
	}
	return out
}
