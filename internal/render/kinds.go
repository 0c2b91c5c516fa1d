package render

import (
	"errors"
	"slices"

	"github.com/rotisserie/eris"

	"github.com/kaisel-labs/basin-dashboard/internal/waterquality"
)

// ErrUnknownKind is returned by Build for an unrecognised chart kind.
var ErrUnknownKind = errors.New("render: unknown chart kind")

// ErrUnknownDate and ErrUnknownMeasure reject options outside the dataset.
var (
	ErrUnknownDate    = errors.New("render: unknown date")
	ErrUnknownMeasure = errors.New("render: unknown measure")
)

// Dashboard chart kinds.
const (
	KindPollution  = "pollution"
	KindTrends     = "trends"
	KindComparison = "comparison"
	KindStatusMix  = "status-mix"
	KindRadar      = "radar"
	KindStacked    = "stacked"
)

// Kinds lists every chart kind Build accepts.
func Kinds() []string {
	return []string{KindPollution, KindTrends, KindComparison, KindStatusMix, KindRadar, KindStacked}
}

// BuildOptions selects what a chart kind draws. Date "" or "latest" means
// the last entry of the year index.
type BuildOptions struct {
	Date    string
	Measure string
	Policy  AbsentPolicy
	Index   []waterquality.IndexOption
}

// Build makes the spec for kind. It reports false when the dataset has
// nothing to draw. A date missing from the year index or a measure outside
// waterquality.Measures is an error.
func Build(kind string, d *waterquality.Dataset, o BuildOptions) (Spec, bool, error) {
	switch kind {
	case KindPollution, KindTrends, KindComparison, KindStatusMix, KindRadar, KindStacked:
	default:
		return Spec{}, false, ErrUnknownKind
	}
	if d.Len() == 0 {
		return Spec{}, false, nil
	}
	if o.Measure == "" {
		o.Measure = waterquality.MeasureBOD5
	}
	if !slices.Contains(waterquality.Measures(), o.Measure) {
		return Spec{}, false, eris.Wrapf(ErrUnknownMeasure, "render: %q", o.Measure)
	}
	if o.Date != "" && o.Date != "latest" && !slices.Contains(d.YearIndex(), o.Date) {
		return Spec{}, false, eris.Wrapf(ErrUnknownDate, "render: %q", o.Date)
	}

	snapshot := func() waterquality.Snapshot {
		if o.Date == "" || o.Date == "latest" {
			snap, _ := d.LatestSnapshot(o.Index...)
			return snap
		}
		return d.Snapshot(o.Date)
	}

	switch kind {
	case KindPollution:
		return PollutionChart(snapshot(), o.Policy), true, nil
	case KindTrends:
		return TrendsChart(d, o.Policy, o.Index...), true, nil
	case KindComparison:
		cmp, ok := d.Comparison(o.Index...)
		if !ok {
			return Spec{}, false, nil
		}
		return ComparisonChart(cmp, o.Policy), true, nil
	case KindStatusMix:
		return StatusMixChart(snapshot(), o.Measure, o.Policy), true, nil
	case KindRadar:
		return CleanRadarChart(snapshot(), o.Policy), true, nil
	default:
		return StackedStatusChart(d, o.Measure, o.Policy, o.Index...), true, nil
	}
}
