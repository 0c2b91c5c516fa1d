// Package render turns water-quality aggregates into chart specs and draws
// them on a rendering surface.
package render

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/kaisel-labs/basin-dashboard/internal/waterquality"
)

// ChartType tags the kind of chart a Spec describes.
type ChartType string

const (
	Bar        ChartType = "bar"
	Line       ChartType = "line"
	Pie        ChartType = "pie"
	Radar      ChartType = "radar"
	StackedBar ChartType = "stacked-bar"
)

// Series is one named data series. A nil value is a gap.
type Series struct {
	Name   string     `json:"name"`
	Values []*float64 `json:"values"`
	Colors []string   `json:"colors,omitempty"`
	Stack  string     `json:"stack,omitempty"`
}

// Spec is everything a surface needs to draw a chart.
type Spec struct {
	Type   ChartType `json:"type"`
	Title  string    `json:"title"`
	Labels []string  `json:"labels"`
	Series []Series  `json:"series"`
	XTitle string    `json:"x_title,omitempty"`
	YTitle string    `json:"y_title,omitempty"`
	YMax   float64   `json:"y_max,omitempty"`
}

// Drawable reports whether the spec has at least one point to draw. Pie and
// stacked-bar charts need a positive value since their slices are shares.
func (s Spec) Drawable() bool {
	if len(s.Labels) == 0 {
		return false
	}
	for _, series := range s.Series {
		for _, v := range series.Values {
			if v == nil {
				continue
			}
			if *v > 0 || (s.Type != Pie && s.Type != StackedBar) {
				return true
			}
		}
	}
	return false
}

// AbsentPolicy decides how a missing (date, measure, status) cell is drawn.
type AbsentPolicy string

const (
	// AbsentZero draws missing cells as 0.
	AbsentZero AbsentPolicy = "zero"
	// AbsentGap leaves a gap (nil value).
	AbsentGap AbsentPolicy = "gap"
	// AbsentOmit drops the point and its label on single-series charts and
	// behaves like AbsentGap elsewhere.
	AbsentOmit AbsentPolicy = "omit"
)

// ParseAbsentPolicy validates a policy name; "" means AbsentZero.
func ParseAbsentPolicy(s string) (AbsentPolicy, error) {
	switch p := AbsentPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return AbsentZero, nil
	case AbsentZero, AbsentGap, AbsentOmit:
		return p, nil
	default:
		return "", eris.Errorf("render: unknown absent policy %q", s)
	}
}

func (p AbsentPolicy) value(c waterquality.Cell) *float64 {
	if c.Present {
		v := c.Value
		return &v
	}
	if p == AbsentZero || p == "" {
		var zero float64
		return &zero
	}
	return nil
}

// Colors used for statuses and measures.
const (
	ColorClean            = "#10b981"
	ColorSlightlyPolluted = "#f59e0b"
	ColorPolluted         = "#ef4444"
	ColorFirstYear        = "#2563eb"
	ColorLastYear         = "#10b981"
)

// StatusColor maps a raw status to its chart colour.
func StatusColor(status string) string {
	switch status {
	case waterquality.StatusClean:
		return ColorClean
	case waterquality.StatusSlightlyPolluted:
		return ColorSlightlyPolluted
	default:
		return ColorPolluted
	}
}

var measureColors = map[string]string{
	waterquality.MeasureBOD5: "#2563eb",
	waterquality.MeasureNH3N: "#10b981",
	waterquality.MeasureSS:   "#f59e0b",
}

// MeasureColor maps a measure to its line colour.
func MeasureColor(measure string) string {
	if c, ok := measureColors[measure]; ok {
		return c
	}
	return "#6b7280"
}

// PollutionChart draws every measure/status proportion of one snapshot as a
// single bar series coloured by status.
func PollutionChart(snap waterquality.Snapshot, policy AbsentPolicy) Spec {
	series := Series{Name: fmt.Sprintf("Water Quality Indicators (%s)", snap.Date)}
	var labels []string
	for _, e := range snap.Entries {
		if !e.Cell.Present && policy == AbsentOmit {
			continue
		}
		labels = append(labels, e.Label)
		series.Values = append(series.Values, policy.value(e.Cell))
		series.Colors = append(series.Colors, StatusColor(e.Status))
	}
	return Spec{
		Type:   Bar,
		Title:  "Water Quality Indicators",
		Labels: labels,
		Series: []Series{series},
		YTitle: "Proportion (%)",
		YMax:   100,
	}
}

// TrendsChart draws the clean-series of every measure over the year index.
func TrendsChart(d *waterquality.Dataset, policy AbsentPolicy, opts ...waterquality.IndexOption) Spec {
	years := d.YearIndex(opts...)
	labels := make([]string, len(years))
	for i, y := range years {
		labels[i] = waterquality.DisplayYear(y)
	}

	spec := Spec{
		Type:   Line,
		Title:  "Clean Water Indicators Over Time",
		Labels: labels,
		XTitle: "Year",
		YTitle: "Clean proportion (%)",
		YMax:   100,
	}
	for _, m := range waterquality.Measures() {
		s := d.CleanSeries(m, opts...)
		spec.Series = append(spec.Series, Series{
			Name:   waterquality.MeasureLabel(m) + " clean",
			Values: cellValues(s.Cells, policy),
			Colors: []string{MeasureColor(m)},
		})
	}
	return spec
}

// ComparisonChart draws the first and last year side by side. Labels are
// statuses; each measure contributes one series per year.
func ComparisonChart(cmp waterquality.Comparison, policy AbsentPolicy) Spec {
	statuses := waterquality.Statuses()
	labels := make([]string, len(statuses))
	for i, st := range statuses {
		labels[i] = waterquality.StatusLabel(st)
	}

	spec := Spec{
		Type:   Bar,
		Title:  fmt.Sprintf("Basin Monitoring Comparison %s vs %s", cmp.FirstDate, cmp.LastDate),
		Labels: labels,
		XTitle: "Status",
		YTitle: "Proportion (%)",
		YMax:   100,
	}
	for _, m := range waterquality.Measures() {
		spec.Series = append(spec.Series,
			comparisonSeries(m, cmp.FirstDate, cmp.First, ColorFirstYear, policy),
			comparisonSeries(m, cmp.LastDate, cmp.Last, ColorLastYear, policy),
		)
	}
	return spec
}

func comparisonSeries(measure, date string, entries []waterquality.Entry, color string, policy AbsentPolicy) Series {
	s := Series{
		Name:   waterquality.MeasureLabel(measure) + " " + date,
		Colors: []string{color},
		Stack:  measure + "-" + date,
	}
	for _, st := range waterquality.Statuses() {
		var cell waterquality.Cell
		for _, e := range entries {
			if e.Measure == measure && e.Status == st {
				cell = e.Cell
				break
			}
		}
		s.Values = append(s.Values, policy.value(cell))
	}
	return s
}

// StatusMixChart draws the status split of one measure in a snapshot.
func StatusMixChart(snap waterquality.Snapshot, measure string, policy AbsentPolicy) Spec {
	series := Series{Name: waterquality.MeasureLabel(measure) + " " + snap.Date}
	var labels []string
	for _, st := range waterquality.Statuses() {
		e, _ := snap.Get(measure, st)
		if !e.Cell.Present && policy == AbsentOmit {
			continue
		}
		labels = append(labels, waterquality.StatusLabel(st))
		series.Values = append(series.Values, policy.value(e.Cell))
		series.Colors = append(series.Colors, StatusColor(st))
	}
	return Spec{
		Type:   Pie,
		Title:  fmt.Sprintf("%s status mix (%s)", waterquality.MeasureLabel(measure), snap.Date),
		Labels: labels,
		Series: []Series{series},
	}
}

// CleanRadarChart draws the clean proportion of each measure on one axis each.
func CleanRadarChart(snap waterquality.Snapshot, policy AbsentPolicy) Spec {
	series := Series{Name: "clean " + snap.Date, Colors: []string{ColorClean}}
	var labels []string
	for _, m := range waterquality.Measures() {
		e, _ := snap.Get(m, waterquality.StatusClean)
		if !e.Cell.Present && policy == AbsentOmit {
			continue
		}
		labels = append(labels, waterquality.MeasureLabel(m))
		series.Values = append(series.Values, policy.value(e.Cell))
	}
	return Spec{
		Type:   Radar,
		Title:  fmt.Sprintf("Clean proportion by measure (%s)", snap.Date),
		Labels: labels,
		Series: []Series{series},
		YMax:   100,
	}
}

// StackedStatusChart stacks the status proportions of one measure per year.
func StackedStatusChart(d *waterquality.Dataset, measure string, policy AbsentPolicy, opts ...waterquality.IndexOption) Spec {
	years := d.YearIndex(opts...)
	labels := make([]string, len(years))
	for i, y := range years {
		labels[i] = waterquality.DisplayYear(y)
	}

	spec := Spec{
		Type:   StackedBar,
		Title:  waterquality.MeasureLabel(measure) + " status by year",
		Labels: labels,
		XTitle: "Year",
		YTitle: "Proportion (%)",
		YMax:   100,
	}
	for _, st := range waterquality.Statuses() {
		s := d.StatusSeries(measure, st, opts...)
		spec.Series = append(spec.Series, Series{
			Name:   waterquality.StatusLabel(st),
			Values: cellValues(s.Cells, policy),
			Colors: []string{StatusColor(st)},
			Stack:  measure,
		})
	}
	return spec
}

func cellValues(cells []waterquality.Cell, policy AbsentPolicy) []*float64 {
	out := make([]*float64, len(cells))
	for i, c := range cells {
		out[i] = policy.value(c)
	}
	return out
}
