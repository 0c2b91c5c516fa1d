package waterquality

// Entry is one (measure, status) cell of a snapshot.
type Entry struct {
	Measure string `json:"measure"`
	Status  string `json:"status"`
	Label   string `json:"label"`
	Cell    Cell   `json:"cell"`
}

// Snapshot is the measure x status cross product for a single date, in
// Measures() x Statuses() order.
type Snapshot struct {
	Date    string  `json:"date"`
	Entries []Entry `json:"entries"`
}

// Get returns the entry for (measure, status).
func (s Snapshot) Get(measure, status string) (Entry, bool) {
	for _, e := range s.Entries {
		if e.Measure == measure && e.Status == status {
			return e, true
		}
	}
	return Entry{}, false
}

// Snapshot builds the fixed cross product for date.
func (d *Dataset) Snapshot(date string) Snapshot {
	measures := Measures()
	statuses := Statuses()
	snap := Snapshot{
		Date:    date,
		Entries: make([]Entry, 0, len(measures)*len(statuses)),
	}
	for _, m := range measures {
		for _, st := range statuses {
			snap.Entries = append(snap.Entries, Entry{
				Measure: m,
				Status:  st,
				Label:   MeasureLabel(m) + " - " + StatusLabel(st),
				Cell:    d.Lookup(date, m, st),
			})
		}
	}
	return snap
}

// LatestSnapshot is the snapshot of the last date in the year index.
func (d *Dataset) LatestSnapshot(opts ...IndexOption) (Snapshot, bool) {
	years := d.YearIndex(opts...)
	if len(years) == 0 {
		return Snapshot{}, false
	}
	return d.Snapshot(years[len(years)-1]), true
}

// Comparison packages the first and last year snapshots as two parallel
// groups of equal length.
type Comparison struct {
	FirstDate string  `json:"first_date"`
	LastDate  string  `json:"last_date"`
	First     []Entry `json:"first"`
	Last      []Entry `json:"last"`
}

// Compare builds the comparison of two arbitrary dates.
func (d *Dataset) Compare(first, last string) Comparison {
	return Comparison{
		FirstDate: first,
		LastDate:  last,
		First:     d.Snapshot(first).Entries,
		Last:      d.Snapshot(last).Entries,
	}
}

// Comparison compares the first and last entries of the year index. The
// boolean is false when the dataset has no dates.
func (d *Dataset) Comparison(opts ...IndexOption) (Comparison, bool) {
	years := d.YearIndex(opts...)
	if len(years) == 0 {
		return Comparison{}, false
	}
	return d.Compare(years[0], years[len(years)-1]), true
}
