package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaisel-labs/basin-dashboard/internal/waterquality"
)

func testDataset() *waterquality.Dataset {
	return waterquality.NewDataset([]waterquality.Record{
		{Date: "2000", Measure: "bod5", Status: "clean", BasinsMonitored: 100, Proportion: 30},
		{Date: "2000", Measure: "bod5", Status: "polluted", BasinsMonitored: 100, Proportion: 20},
		{Date: "2001", Measure: "bod5", Status: "clean", BasinsMonitored: 110, Proportion: 45},
		{Date: "2001", Measure: "ss", Status: "clean", BasinsMonitored: 110, Proportion: 70},
	})
}

func values(vs []*float64) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		if v == nil {
			out[i] = nil
			continue
		}
		out[i] = *v
	}
	return out
}

func TestParseAbsentPolicy(t *testing.T) {
	p, err := ParseAbsentPolicy("")
	require.NoError(t, err)
	assert.Equal(t, AbsentZero, p)

	p, err = ParseAbsentPolicy(" GAP ")
	require.NoError(t, err)
	assert.Equal(t, AbsentGap, p)

	_, err = ParseAbsentPolicy("interpolate")
	assert.Error(t, err)
}

func TestPollutionChart_Policies(t *testing.T) {
	snap := testDataset().Snapshot("2000")

	zero := PollutionChart(snap, AbsentZero)
	assert.Equal(t, Bar, zero.Type)
	require.Len(t, zero.Series, 1)
	assert.Len(t, zero.Labels, 9)
	assert.Equal(t, "BOD5 - clean", zero.Labels[0])
	assert.Equal(t, []any{30.0, 0.0, 20.0}, values(zero.Series[0].Values[:3]))
	assert.Equal(t, []string{ColorClean, ColorSlightlyPolluted, ColorPolluted}, zero.Series[0].Colors[:3])

	gap := PollutionChart(snap, AbsentGap)
	assert.Equal(t, []any{30.0, nil, 20.0}, values(gap.Series[0].Values[:3]))

	omit := PollutionChart(snap, AbsentOmit)
	assert.Equal(t, []string{"BOD5 - clean", "BOD5 - polluted"}, omit.Labels)
	assert.Len(t, omit.Series[0].Colors, 2)
}

func TestTrendsChart_OneSeriesPerMeasure(t *testing.T) {
	spec := TrendsChart(testDataset(), AbsentGap)
	assert.Equal(t, Line, spec.Type)
	assert.Equal(t, []string{"2000", "2001"}, spec.Labels)
	require.Len(t, spec.Series, 3)
	assert.Equal(t, "BOD5 clean", spec.Series[0].Name)
	assert.Equal(t, []any{30.0, 45.0}, values(spec.Series[0].Values))
	assert.Equal(t, []any{nil, nil}, values(spec.Series[1].Values))
	assert.Equal(t, []any{nil, 70.0}, values(spec.Series[2].Values))
}

func TestComparisonChart_SeriesPerMeasureAndYear(t *testing.T) {
	cmp, ok := testDataset().Comparison()
	require.True(t, ok)

	spec := ComparisonChart(cmp, AbsentZero)
	assert.Equal(t, []string{"clean", "slightly polluted", "polluted"}, spec.Labels)
	require.Len(t, spec.Series, 6)
	assert.Equal(t, "BOD5 2000", spec.Series[0].Name)
	assert.Equal(t, "BOD5 2001", spec.Series[1].Name)
	assert.Equal(t, []any{30.0, 0.0, 20.0}, values(spec.Series[0].Values))
	assert.Equal(t, []any{45.0, 0.0, 0.0}, values(spec.Series[1].Values))
	assert.Equal(t, "bod5-2000", spec.Series[0].Stack)
}

func TestStatusMixAndRadar(t *testing.T) {
	snap := testDataset().Snapshot("2001")

	pie := StatusMixChart(snap, "ss", AbsentOmit)
	assert.Equal(t, Pie, pie.Type)
	assert.Equal(t, []string{"clean"}, pie.Labels)

	radar := CleanRadarChart(snap, AbsentZero)
	assert.Equal(t, Radar, radar.Type)
	assert.Equal(t, []string{"BOD5", "NH3N", "SS"}, radar.Labels)
	assert.Equal(t, []any{45.0, 0.0, 70.0}, values(radar.Series[0].Values))
}

func TestStackedStatusChart(t *testing.T) {
	spec := StackedStatusChart(testDataset(), "bod5", AbsentZero)
	assert.Equal(t, StackedBar, spec.Type)
	require.Len(t, spec.Series, 3)
	for _, s := range spec.Series {
		assert.Equal(t, "bod5", s.Stack)
		assert.Len(t, s.Values, 2)
	}
	assert.Equal(t, []any{20.0, 0.0}, values(spec.Series[2].Values))
}

func TestBuild(t *testing.T) {
	d := testDataset()
	for _, kind := range Kinds() {
		spec, ok, err := Build(kind, d, BuildOptions{Policy: AbsentZero})
		require.NoError(t, err, kind)
		assert.True(t, ok, kind)
		assert.NotEmpty(t, spec.Labels, kind)
	}

	spec, _, err := Build(KindPollution, d, BuildOptions{Date: "2000"})
	require.NoError(t, err)
	assert.Contains(t, spec.Series[0].Name, "2000")

	_, ok, err := Build(KindTrends, waterquality.NewDataset(nil), BuildOptions{})
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = Build("heatmap", d, BuildOptions{})
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, _, err = Build(KindPollution, d, BuildOptions{Date: "1999"})
	assert.ErrorIs(t, err, ErrUnknownDate)

	_, _, err = Build(KindStatusMix, d, BuildOptions{Measure: "xyz"})
	assert.ErrorIs(t, err, ErrUnknownMeasure)
}

func TestSpec_Drawable(t *testing.T) {
	snap := testDataset().Snapshot("2000")

	assert.True(t, PollutionChart(snap, AbsentZero).Drawable())
	assert.False(t, StatusMixChart(snap, "nh3n", AbsentZero).Drawable())
	assert.False(t, StatusMixChart(snap, "nh3n", AbsentOmit).Drawable())
	assert.True(t, StatusMixChart(snap, "bod5", AbsentZero).Drawable())
	assert.False(t, StackedStatusChart(testDataset(), "nh3n", AbsentZero).Drawable())
	assert.False(t, Spec{Type: Line}.Drawable())
}
