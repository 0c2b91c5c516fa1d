// Package waterquality builds chart-ready water-quality series from basin
// monitoring records: year indexing, per-status series, single-year
// snapshots and first/last comparisons.
package waterquality

import "strings"

// Header field names understood by the parser.
const (
	FieldDate            = "date"
	FieldMeasure         = "measure"
	FieldStatus          = "status"
	FieldBasinsMonitored = "basins_monitored"
	FieldProportion      = "proportion"
)

// Measures.
const (
	MeasureBOD5 = "bod5"
	MeasureNH3N = "nh3n"
	MeasureSS   = "ss"
)

// Statuses in their raw dataset form.
const (
	StatusClean            = "clean"
	StatusSlightlyPolluted = "slightly__polluted"
	StatusPolluted         = "polluted"
)

// Measures returns the fixed measure order used by snapshots and charts.
func Measures() []string {
	return []string{MeasureBOD5, MeasureNH3N, MeasureSS}
}

// Statuses returns the fixed status order used by snapshots and charts.
func Statuses() []string {
	return []string{StatusClean, StatusSlightlyPolluted, StatusPolluted}
}

// Record is one row of the basin water-quality dataset.
type Record struct {
	Date            string            `json:"date"`
	Measure         string            `json:"measure"`
	Status          string            `json:"status"`
	BasinsMonitored int               `json:"basins_monitored"`
	Proportion      float64           `json:"proportion"`
	Fields          map[string]string `json:"fields,omitempty"`
	Line            int               `json:"line"`
}

// MeasureLabel formats a measure for display ("bod5" -> "BOD5").
func MeasureLabel(measure string) string {
	return strings.ToUpper(measure)
}

// StatusLabel formats a raw status for display ("slightly__polluted" -> "slightly polluted").
func StatusLabel(status string) string {
	return strings.ReplaceAll(status, "__", " ")
}

// DisplayYear strips any sub-label after the first space ("2019 00:00:00" -> "2019").
func DisplayYear(date string) string {
	if i := strings.IndexByte(date, ' '); i >= 0 {
		return date[:i]
	}
	return date
}
