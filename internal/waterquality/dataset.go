package waterquality

import (
	"sort"
	"strconv"
	"strings"
)

// Cell is the result of a (date, measure, status) lookup. Present is false
// when the dataset has no matching record.
type Cell struct {
	Value   float64 `json:"value"`
	Present bool    `json:"present"`
}

// Series is a sequence of cells aligned 1:1 with a year index.
type Series struct {
	Measure string   `json:"measure"`
	Status  string   `json:"status"`
	Years   []string `json:"years"`
	Cells   []Cell   `json:"cells"`
}

// Zeroed returns the series values with absent cells reported as 0.
func (s Series) Zeroed() []float64 {
	out := make([]float64, len(s.Cells))
	for i, c := range s.Cells {
		if c.Present {
			out[i] = c.Value
		}
	}
	return out
}

type cellKey struct {
	date, measure, status string
}

// Dataset indexes a record sequence for repeated lookups. Records are never
// modified; duplicates are kept but only the first match is ever returned.
type Dataset struct {
	records []Record
	first   map[cellKey]int
	byDate  map[string]int
	years   []string
}

// NewDataset indexes records in their original order.
func NewDataset(records []Record) *Dataset {
	d := &Dataset{
		records: records,
		first:   make(map[cellKey]int, len(records)),
		byDate:  make(map[string]int),
	}
	for i, r := range records {
		k := cellKey{r.Date, r.Measure, r.Status}
		if _, ok := d.first[k]; !ok {
			d.first[k] = i
		}
		if _, ok := d.byDate[r.Date]; !ok {
			d.byDate[r.Date] = i
			d.years = append(d.years, r.Date)
		}
	}
	return d
}

// Records returns the underlying records.
func (d *Dataset) Records() []Record {
	return d.records
}

// Len is the number of records.
func (d *Dataset) Len() int {
	return len(d.records)
}

// IndexOption adjusts YearIndex ordering.
type IndexOption func(*indexOptions)

type indexOptions struct {
	sortByYear bool
}

// SortByYear orders the year index by the numeric year leading each date
// label. Labels without a leading year keep first-occurrence order after
// all numeric ones.
func SortByYear() IndexOption {
	return func(o *indexOptions) { o.sortByYear = true }
}

// YearIndex returns the distinct dates in first-occurrence order.
func (d *Dataset) YearIndex(opts ...IndexOption) []string {
	var o indexOptions
	for _, fn := range opts {
		fn(&o)
	}

	years := make([]string, len(d.years))
	copy(years, d.years)
	if !o.sortByYear {
		return years
	}

	sort.SliceStable(years, func(i, j int) bool {
		yi, okI := leadingYear(years[i])
		yj, okJ := leadingYear(years[j])
		switch {
		case okI && okJ:
			return yi < yj
		case okI:
			return true
		default:
			return false
		}
	})
	return years
}

func leadingYear(date string) (int, bool) {
	s := DisplayYear(strings.TrimSpace(date))
	if i := strings.IndexAny(s, "-/"); i > 0 {
		s = s[:i]
	}
	y, err := strconv.Atoi(s)
	return y, err == nil
}

// Lookup returns the proportion of the first record matching all three keys.
func (d *Dataset) Lookup(date, measure, status string) Cell {
	i, ok := d.first[cellKey{date, measure, status}]
	if !ok {
		return Cell{}
	}
	return Cell{Value: d.records[i].Proportion, Present: true}
}

// StatusSeries looks up (year, measure, status) for every year in the index.
func (d *Dataset) StatusSeries(measure, status string, opts ...IndexOption) Series {
	years := d.YearIndex(opts...)
	s := Series{
		Measure: measure,
		Status:  status,
		Years:   years,
		Cells:   make([]Cell, len(years)),
	}
	for i, y := range years {
		s.Cells[i] = d.Lookup(y, measure, status)
	}
	return s
}

// CleanSeries is StatusSeries for the clean status.
func (d *Dataset) CleanSeries(measure string, opts ...IndexOption) Series {
	return d.StatusSeries(measure, StatusClean, opts...)
}

// BasinsMonitored returns the basin count of the first record for date.
func (d *Dataset) BasinsMonitored(date string) (int, bool) {
	i, ok := d.byDate[date]
	if !ok {
		return 0, false
	}
	return d.records[i].BasinsMonitored, true
}

// ProportionTotal sums the first-match proportions of every known status for
// (date, measure). Well-formed data totals roughly 100; nothing enforces it.
// Statuses outside Statuses() are ignored.
func (d *Dataset) ProportionTotal(date, measure string) float64 {
	var total float64
	for _, status := range Statuses() {
		total += d.Lookup(date, measure, status).Value
	}
	return total
}
