package utils

import (
	"fmt"
	"math"

	"github.com/kaisel-labs/basin-dashboard/internal/waterquality"
	"github.com/kaisel-labs/basin-dashboard/services/watcher/internal/models"
)

// BuildRecordRows converts parsed records into upsert rows. Only the first
// record of each (date, measure, status) is kept, matching lookup semantics.
func BuildRecordRows(records []waterquality.Record, source string) []models.RecordRow {
	rows := make([]models.RecordRow, 0, len(records))
	seen := make(map[models.RecordKey]bool, len(records))
	for _, r := range records {
		key := models.RecordKey{Date: r.Date, Measure: r.Measure, Status: r.Status}
		if seen[key] {
			continue
		}
		seen[key] = true
		rows = append(rows, models.RecordRow{
			Key:             key,
			BasinsMonitored: r.BasinsMonitored,
			Proportion:      r.Proportion,
			Source:          source,
		})
	}
	return rows
}

// FilterChangedRecords selects rows that are new or differ from what is stored.
func FilterChangedRecords(
	rows []models.RecordRow,
	existing map[models.RecordKey]models.StoredRecord,
	epsilon float64,
) []models.RecordRow {
	out := make([]models.RecordRow, 0, len(rows))
	for _, row := range rows {
		prev, ok := existing[row.Key]
		if !ok {
			out = append(out, row)
			continue
		}

		if prev.BasinsMonitored != row.BasinsMonitored {
			out = append(out, row)
			continue
		}

		if !ValuesEqual(prev.Proportion, row.Proportion, epsilon) {
			out = append(out, row)
		}
	}
	return out
}

// ValuesEqual compares two proportions with tolerance.
func ValuesEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}

// RowString prints a row for logging.
func RowString(r models.RecordRow) string {
	return fmt.Sprintf("%s/%s/%s basins=%d proportion=%.3f", r.Key.Date, r.Key.Measure, r.Key.Status, r.BasinsMonitored, r.Proportion)
}
