// Package insights holds the narrative catalogue shown next to the charts:
// per-dataset insights, problems and key points, cross-dataset findings and
// the headline figures of the legacy dashboard payload.
package insights

import (
	_ "embed"
	"errors"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// ErrUnknownDataset is returned when a dataset name is not in the catalogue.
var ErrUnknownDataset = errors.New("insights: unknown dataset")

// DefaultRecommendationLimit caps recommendations drawn from key points.
const DefaultRecommendationLimit = 5

// Narrative is the text attached to one dataset.
type Narrative struct {
	Name      string   `yaml:"name" json:"name"`
	Insights  []string `yaml:"insights" json:"insights"`
	Problems  []string `yaml:"problems" json:"problems"`
	KeyPoints []string `yaml:"key_points" json:"key_points"`
}

// Integrated is the cross-dataset section.
type Integrated struct {
	IntegratedInsights []string `yaml:"integrated_insights" json:"integrated_insights"`
	SystemicProblems   []string `yaml:"systemic_problems" json:"systemic_problems"`
	Recommendations    []string `yaml:"recommendations" json:"recommendations"`
}

// MonthValue is one point of a monthly trend.
type MonthValue struct {
	Month string  `yaml:"month" json:"month"`
	Value float64 `yaml:"value" json:"value"`
}

// WaterQualityHeadline holds the quality index and its monthly trend.
type WaterQualityHeadline struct {
	QualityIndex float64      `yaml:"quality_index" json:"quality_index"`
	Trends       []MonthValue `yaml:"trends" json:"trends"`
}

// MineralHeadline holds the extraction rate and impact score.
type MineralHeadline struct {
	ExtractionRate string  `yaml:"extraction_rate" json:"extraction_rate"`
	ImpactScore    float64 `yaml:"impact_score" json:"impact_score"`
}

// TimberHeadline holds production volume and sustainability index.
type TimberHeadline struct {
	ProductionVolume    string  `yaml:"production_volume" json:"production_volume"`
	SustainabilityIndex float64 `yaml:"sustainability_index" json:"sustainability_index"`
}

// Headline is the fixed figure set of the aggregate dashboard payload.
type Headline struct {
	WaterQuality      WaterQualityHeadline `yaml:"water_quality" json:"water_quality"`
	MineralExtraction MineralHeadline      `yaml:"mineral_extraction" json:"mineral_extraction"`
	TimberProduction  TimberHeadline       `yaml:"timber_production" json:"timber_production"`
	Recommendations   []string             `yaml:"recommendations" json:"recommendations"`
}

// Catalog is the decoded catalogue. Datasets keep file order.
type Catalog struct {
	Headline   Headline    `yaml:"headline" json:"headline"`
	Datasets   []Narrative `yaml:"datasets" json:"datasets"`
	Integrated Integrated  `yaml:"integrated" json:"integrated"`
}

// Default decodes the embedded catalogue.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Parse decodes a YAML catalogue.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, eris.Wrap(err, "insights: decode catalogue")
	}
	seen := make(map[string]bool, len(c.Datasets))
	for _, n := range c.Datasets {
		if n.Name == "" {
			return nil, eris.New("insights: dataset without a name")
		}
		if seen[n.Name] {
			return nil, eris.Errorf("insights: duplicate dataset %q", n.Name)
		}
		seen[n.Name] = true
	}
	return &c, nil
}

// Names lists dataset names in catalogue order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.Datasets))
	for i, n := range c.Datasets {
		out[i] = n.Name
	}
	return out
}

// Dataset returns the narrative for name.
func (c *Catalog) Dataset(name string) (Narrative, error) {
	for _, n := range c.Datasets {
		if n.Name == name {
			return n, nil
		}
	}
	return Narrative{}, eris.Wrapf(ErrUnknownDataset, "insights: %q", name)
}

// Recommendations returns the integrated recommendations. Without any, it
// concatenates per-dataset key points up to limit, then falls back to the
// headline defaults. A limit <= 0 means DefaultRecommendationLimit.
func (c *Catalog) Recommendations(limit int) []string {
	if len(c.Integrated.Recommendations) > 0 {
		return append([]string(nil), c.Integrated.Recommendations...)
	}
	if limit <= 0 {
		limit = DefaultRecommendationLimit
	}
	var out []string
	for _, n := range c.Datasets {
		for _, kp := range n.KeyPoints {
			if len(out) == limit {
				return out
			}
			out = append(out, kp)
		}
	}
	if len(out) > 0 {
		return out
	}
	return append([]string(nil), c.Headline.Recommendations...)
}
