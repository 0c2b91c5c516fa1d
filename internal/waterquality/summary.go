package waterquality

// Summary carries the headline statistics shown next to the pollution and
// comparison charts. Pointer fields are nil when the data is absent.
type Summary struct {
	Measure      string   `json:"measure"`
	FirstYear    string   `json:"first_year,omitempty"`
	LatestYear   string   `json:"latest_year,omitempty"`
	Years        int      `json:"years"`
	FirstClean   *float64 `json:"first_clean,omitempty"`
	LatestClean  *float64 `json:"latest_clean,omitempty"`
	CleanChange  *float64 `json:"clean_change,omitempty"`
	BasinsFirst  *int     `json:"basins_first,omitempty"`
	BasinsLatest *int     `json:"basins_latest,omitempty"`
	BasinsAdded  *int     `json:"basins_added,omitempty"`
}

// Summary reports first-versus-latest statistics for measure.
func (d *Dataset) Summary(measure string, opts ...IndexOption) Summary {
	years := d.YearIndex(opts...)
	s := Summary{Measure: measure, Years: len(years)}
	if len(years) == 0 {
		return s
	}

	s.FirstYear = years[0]
	s.LatestYear = years[len(years)-1]

	if c := d.Lookup(s.FirstYear, measure, StatusClean); c.Present {
		v := c.Value
		s.FirstClean = &v
	}
	if c := d.Lookup(s.LatestYear, measure, StatusClean); c.Present {
		v := c.Value
		s.LatestClean = &v
	}
	if s.FirstClean != nil && s.LatestClean != nil {
		delta := *s.LatestClean - *s.FirstClean
		s.CleanChange = &delta
	}

	if n, ok := d.BasinsMonitored(s.FirstYear); ok {
		s.BasinsFirst = &n
	}
	if n, ok := d.BasinsMonitored(s.LatestYear); ok {
		s.BasinsLatest = &n
	}
	if s.BasinsFirst != nil && s.BasinsLatest != nil {
		added := *s.BasinsLatest - *s.BasinsFirst
		s.BasinsAdded = &added
	}

	return s
}

// Direction classifies a change in clean proportion.
func Direction(change *float64) string {
	switch {
	case change == nil:
		return "unknown"
	case *change > 0:
		return "improving"
	case *change < 0:
		return "degrading"
	default:
		return "flat"
	}
}
