package models

// RecordKey identifies a stored record; (date, measure, status) is unique.
type RecordKey struct {
	Date    string
	Measure string
	Status  string
}

// RecordRow is a normalized record ready for upsert. Rows are queued in
// source order so the table's seq column follows first occurrence.
type RecordRow struct {
	Key             RecordKey
	BasinsMonitored int
	Proportion      float64
	Source          string
}

// StoredRecord holds the stored values compared against incoming rows.
type StoredRecord struct {
	BasinsMonitored int
	Proportion      float64
}
