package render

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrUnsupportedChart is returned by surfaces that cannot draw a chart type.
var ErrUnsupportedChart = errors.New("render: unsupported chart type")

// ErrEmptyChart is returned when a spec has nothing to draw.
var ErrEmptyChart = errors.New("render: nothing to draw")

// Handle is an opaque reference to a rendered chart. The caller owns it and
// must pass it to Destroy (or Replace) when done.
type Handle struct {
	id          uint64
	spec        Spec
	image       []byte
	contentType string
}

// ID identifies the handle within its surface.
func (h *Handle) ID() uint64 { return h.id }

// Spec returns the spec the handle was rendered from.
func (h *Handle) Spec() Spec { return h.spec }

// Image returns the rendered bytes; nil after Destroy.
func (h *Handle) Image() []byte { return h.image }

// ContentType is the MIME type of Image.
func (h *Handle) ContentType() string { return h.contentType }

// Surface draws specs and releases what it drew.
type Surface interface {
	Render(spec Spec) (*Handle, error)
	Destroy(h *Handle) error
}

// Replace tears down old (if any) before rendering spec; charts are never
// updated in place.
func Replace(s Surface, old *Handle, spec Spec) (*Handle, error) {
	if old != nil {
		if err := s.Destroy(old); err != nil {
			return nil, eris.Wrap(err, "render: destroy previous chart")
		}
	}
	return s.Render(spec)
}

// PNGSurface renders bar, line, pie and stacked-bar specs to PNG.
type PNGSurface struct {
	Width  int
	Height int

	next atomic.Uint64
	mu   sync.Mutex
	live map[uint64]*Handle
}

// NewPNGSurface creates a surface with the given canvas size.
func NewPNGSurface(width, height int) *PNGSurface {
	if width <= 0 {
		width = 1024
	}
	if height <= 0 {
		height = 512
	}
	return &PNGSurface{Width: width, Height: height, live: make(map[uint64]*Handle)}
}

// Live reports how many handles have not been destroyed.
func (p *PNGSurface) Live() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.live)
}

// Render draws spec.
func (p *PNGSurface) Render(spec Spec) (*Handle, error) {
	switch spec.Type {
	case Bar, Line, Pie, StackedBar:
	default:
		return nil, eris.Wrapf(ErrUnsupportedChart, "render: %s", spec.Type)
	}
	if !spec.Drawable() {
		return nil, eris.Wrapf(ErrEmptyChart, "render: %s %q", spec.Type, spec.Title)
	}

	var buf bytes.Buffer
	var err error
	switch spec.Type {
	case Bar:
		err = p.barChart(spec).Render(chart.PNG, &buf)
	case Line:
		err = p.lineChart(spec).Render(chart.PNG, &buf)
	case Pie:
		err = p.pieChart(spec).Render(chart.PNG, &buf)
	case StackedBar:
		err = p.stackedBarChart(spec).Render(chart.PNG, &buf)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "render: draw %s chart", spec.Type)
	}

	h := &Handle{
		id:          p.next.Add(1),
		spec:        spec,
		image:       buf.Bytes(),
		contentType: "image/png",
	}
	p.mu.Lock()
	p.live[h.id] = h
	p.mu.Unlock()
	return h, nil
}

// Destroy releases a handle. Nil and unknown handles are ignored.
func (p *PNGSurface) Destroy(h *Handle) error {
	if h == nil {
		return nil
	}
	p.mu.Lock()
	delete(p.live, h.id)
	p.mu.Unlock()
	h.image = nil
	return nil
}

func (p *PNGSurface) yAxis(spec Spec) chart.YAxis {
	maxY := spec.YMax
	if maxY <= 0 {
		for _, s := range spec.Series {
			for _, v := range s.Values {
				if v != nil && *v > maxY {
					maxY = *v
				}
			}
		}
	}
	if maxY <= 0 {
		maxY = 100
	}
	return chart.YAxis{
		Name:  spec.YTitle,
		Range: &chart.ContinuousRange{Min: 0, Max: maxY},
	}
}

// barChart flattens grouped series into one bar per (series, label).
func (p *PNGSurface) barChart(spec Spec) chart.BarChart {
	bc := chart.BarChart{
		Title:  spec.Title,
		Width:  p.Width,
		Height: p.Height,
		YAxis:  p.yAxis(spec),
		XAxis:  chart.Style{FontSize: 8},
	}
	multi := len(spec.Series) > 1
	for _, s := range spec.Series {
		for i, v := range s.Values {
			if v == nil || i >= len(spec.Labels) {
				continue
			}
			label := spec.Labels[i]
			if multi {
				label = s.Name + " " + label
			}
			col := colorAt(s.Colors, i)
			bc.Bars = append(bc.Bars, chart.Value{
				Value: *v,
				Label: label,
				Style: chart.Style{FillColor: col, StrokeColor: col},
			})
		}
	}
	if n := len(bc.Bars); n > 0 {
		bc.BarWidth = min(40, max(4, p.Width/(n*2)))
		bc.BarSpacing = bc.BarWidth / 2
	}
	return bc
}

// lineChart skips nil values so gaps are not drawn as zero.
func (p *PNGSurface) lineChart(spec Spec) chart.Chart {
	ticks := make([]chart.Tick, len(spec.Labels))
	for i, l := range spec.Labels {
		ticks[i] = chart.Tick{Value: float64(i), Label: l}
	}

	ch := chart.Chart{
		Title:  spec.Title,
		Width:  p.Width,
		Height: p.Height,
		XAxis: chart.XAxis{
			Name:  spec.XTitle,
			Range: &chart.ContinuousRange{Min: -0.5, Max: float64(len(spec.Labels)) - 0.5},
			Ticks: ticks,
		},
		YAxis: p.yAxis(spec),
	}
	for _, s := range spec.Series {
		var xs, ys []float64
		for i, v := range s.Values {
			if v == nil {
				continue
			}
			xs = append(xs, float64(i))
			ys = append(ys, *v)
		}
		if len(xs) == 0 {
			continue
		}
		col := colorAt(s.Colors, 0)
		ch.Series = append(ch.Series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: col,
				StrokeWidth: 2,
				DotColor:    col,
				DotWidth:    3,
			},
		})
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch
}

func (p *PNGSurface) pieChart(spec Spec) chart.PieChart {
	pc := chart.PieChart{
		Title:  spec.Title,
		Width:  p.Height,
		Height: p.Height,
	}
	if len(spec.Series) == 0 {
		return pc
	}
	s := spec.Series[0]
	for i, v := range s.Values {
		if v == nil || *v <= 0 || i >= len(spec.Labels) {
			continue
		}
		pc.Values = append(pc.Values, chart.Value{
			Value: *v,
			Label: spec.Labels[i],
			Style: chart.Style{FillColor: colorAt(s.Colors, i)},
		})
	}
	return pc
}

func (p *PNGSurface) stackedBarChart(spec Spec) chart.StackedBarChart {
	sc := chart.StackedBarChart{
		Title:  spec.Title,
		Width:  p.Width,
		Height: p.Height,
	}
	for i, label := range spec.Labels {
		bar := chart.StackedBar{Name: label}
		for _, s := range spec.Series {
			if i >= len(s.Values) || s.Values[i] == nil || *s.Values[i] <= 0 {
				continue
			}
			bar.Values = append(bar.Values, chart.Value{
				Value: *s.Values[i],
				Label: s.Name,
				Style: chart.Style{FillColor: colorAt(s.Colors, 0)},
			})
		}
		// go-chart normalises each bar by its total.
		if len(bar.Values) == 0 {
			continue
		}
		sc.Bars = append(sc.Bars, bar)
	}
	return sc
}

// colorAt picks colors[i], falling back to the first colour, then grey.
func colorAt(colors []string, i int) drawing.Color {
	var hex string
	switch {
	case i < len(colors):
		hex = colors[i]
	case len(colors) > 0:
		hex = colors[0]
	default:
		hex = "#6b7280"
	}
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}
