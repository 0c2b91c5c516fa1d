package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaisel-labs/basin-dashboard/internal/waterquality"
	"github.com/kaisel-labs/basin-dashboard/services/watcher/internal/models"
)

func key(date, measure, status string) models.RecordKey {
	return models.RecordKey{Date: date, Measure: measure, Status: status}
}

func TestBuildRecordRows_FirstMatchWins(t *testing.T) {
	rows := BuildRecordRows([]waterquality.Record{
		{Date: "2001", Measure: "bod5", Status: "clean", BasinsMonitored: 130, Proportion: 48.33},
		{Date: "2000", Measure: "bod5", Status: "clean", BasinsMonitored: 120, Proportion: 32.5},
		{Date: "2001", Measure: "bod5", Status: "clean", BasinsMonitored: 1, Proportion: 99},
	}, "wq.csv")

	require.Len(t, rows, 2)
	assert.Equal(t, key("2001", "bod5", "clean"), rows[0].Key)
	assert.Equal(t, 48.33, rows[0].Proportion)
	assert.Equal(t, key("2000", "bod5", "clean"), rows[1].Key)
	assert.Equal(t, "wq.csv", rows[1].Source)
}

func TestFilterChangedRecords(t *testing.T) {
	rows := []models.RecordRow{
		{Key: key("2000", "bod5", "clean"), BasinsMonitored: 120, Proportion: 32.5},
		{Key: key("2000", "bod5", "polluted"), BasinsMonitored: 120, Proportion: 20.005},
		{Key: key("2000", "ss", "clean"), BasinsMonitored: 121, Proportion: 80},
		{Key: key("2000", "nh3n", "clean"), BasinsMonitored: 120, Proportion: 41},
		{Key: key("2001", "bod5", "clean"), BasinsMonitored: 130, Proportion: 48.33},
	}
	existing := map[models.RecordKey]models.StoredRecord{
		key("2000", "bod5", "clean"):    {BasinsMonitored: 120, Proportion: 32.5},
		key("2000", "bod5", "polluted"): {BasinsMonitored: 120, Proportion: 20},
		key("2000", "ss", "clean"):      {BasinsMonitored: 120, Proportion: 80},
		key("2000", "nh3n", "clean"):    {BasinsMonitored: 120, Proportion: 40},
	}

	pending := FilterChangedRecords(rows, existing, 0.01)

	var keys []models.RecordKey
	for _, r := range pending {
		keys = append(keys, r.Key)
	}
	assert.Equal(t, []models.RecordKey{
		key("2000", "ss", "clean"),
		key("2000", "nh3n", "clean"),
		key("2001", "bod5", "clean"),
	}, keys)
}

func TestRowString(t *testing.T) {
	r := models.RecordRow{Key: key("2000", "bod5", "clean"), BasinsMonitored: 120, Proportion: 32.5}
	assert.Equal(t, "2000/bod5/clean basins=120 proportion=32.500", RowString(r))
}
