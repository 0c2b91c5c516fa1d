package render

import (
	"sync"
	"time"
)

// DefaultBoardPanels caps the panels a board keeps when NewBoard is given
// no limit.
const DefaultBoardPanels = 64

type panel struct {
	handle *Handle
	stamp  time.Time
	used   uint64
}

// Board owns one chart handle per named panel. Redrawing a panel always
// goes through Replace. When full, the least recently drawn panel is
// destroyed to make room.
type Board struct {
	surface Surface
	limit   int

	mu     sync.Mutex
	tick   uint64
	panels map[string]*panel
}

// NewBoard creates an empty board drawing on surface and keeping at most
// limit panels. A limit <= 0 means DefaultBoardPanels.
func NewBoard(surface Surface, limit int) *Board {
	if limit <= 0 {
		limit = DefaultBoardPanels
	}
	return &Board{surface: surface, limit: limit, panels: make(map[string]*panel)}
}

// Len reports how many panels the board holds.
func (b *Board) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.panels)
}

// Draw returns the image for name. The panel is redrawn when it is missing
// or its stamp differs from stamp; build is only called in that case.
func (b *Board) Draw(name string, stamp time.Time, build func() Spec) ([]byte, string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tick++

	p, ok := b.panels[name]
	if ok && p.stamp.Equal(stamp) && p.handle != nil {
		p.used = b.tick
		return cloneBytes(p.handle.Image()), p.handle.ContentType(), nil
	}

	var old *Handle
	if ok {
		old = p.handle
	} else if err := b.evict(); err != nil {
		return nil, "", err
	}
	h, err := Replace(b.surface, old, build())
	if err != nil {
		delete(b.panels, name)
		return nil, "", err
	}
	b.panels[name] = &panel{handle: h, stamp: stamp, used: b.tick}
	return cloneBytes(h.Image()), h.ContentType(), nil
}

// evict destroys least recently drawn panels until one more fits.
func (b *Board) evict() error {
	for len(b.panels) >= b.limit {
		var (
			oldest string
			lowest uint64
			found  bool
		)
		for name, p := range b.panels {
			if !found || p.used < lowest {
				oldest, lowest, found = name, p.used, true
			}
		}
		p := b.panels[oldest]
		delete(b.panels, oldest)
		if err := b.surface.Destroy(p.handle); err != nil {
			return err
		}
	}
	return nil
}

// Close destroys every panel.
func (b *Board) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for name, p := range b.panels {
		if err := b.surface.Destroy(p.handle); err != nil {
			return err
		}
		delete(b.panels, name)
	}
	return nil
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
