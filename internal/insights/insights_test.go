package insights

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Catalogue(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, []string{"mineral_extraction", "water_quality", "timber_production"}, c.Names())
	assert.Equal(t, 84.0, c.Headline.WaterQuality.QualityIndex)
	require.Len(t, c.Headline.WaterQuality.Trends, 6)
	assert.Equal(t, MonthValue{Month: "Jun", Value: 90}, c.Headline.WaterQuality.Trends[5])
	assert.Equal(t, "15.2 tons/day", c.Headline.MineralExtraction.ExtractionRate)
	assert.Equal(t, 7.8, c.Headline.MineralExtraction.ImpactScore)
	assert.Equal(t, "1200 m³", c.Headline.TimberProduction.ProductionVolume)
	assert.Equal(t, 92.0, c.Headline.TimberProduction.SustainabilityIndex)

	for _, name := range c.Names() {
		n, err := c.Dataset(name)
		require.NoError(t, err)
		assert.Len(t, n.Insights, 3)
		assert.Len(t, n.Problems, 3)
		assert.Len(t, n.KeyPoints, 3)
	}
	assert.Len(t, c.Recommendations(0), 3)
}

func TestDataset_Unknown(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	_, err = c.Dataset("fisheries")
	assert.True(t, errors.Is(err, ErrUnknownDataset))
}

func TestRecommendations_FallBackToKeyPoints(t *testing.T) {
	c, err := Parse([]byte(`
headline:
  recommendations: [default one]
datasets:
  - name: a
    key_points: [a1, a2, a3]
  - name: b
    key_points: [b1, b2, b3]
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"a1", "a2", "a3", "b1", "b2"}, c.Recommendations(0))
	assert.Equal(t, []string{"a1", "a2"}, c.Recommendations(2))

	c.Datasets = nil
	assert.Equal(t, []string{"default one"}, c.Recommendations(0))
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("datasets: [{name: a}, {name: a}]"))
	assert.Error(t, err)

	_, err = Parse([]byte("datasets: [{insights: [x]}]"))
	assert.Error(t, err)

	_, err = Parse([]byte("datasets: {"))
	assert.Error(t, err)
}
