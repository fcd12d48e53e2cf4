package overlay

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"

	"github.com/dgnsrekt/tv_panesync/internal/engine"
	"github.com/dgnsrekt/tv_panesync/internal/series"
)

const (
	// MarkerSize is the edge of the square point marker.
	MarkerSize = 8.0
	// labelGap separates a label's bottom edge from its anchor.
	labelGap = 6.0

	upColor   = "#26a69a"
	downColor = "#ef5350"
)

var managerSeq atomic.Int64

// Source is the pane an overlay manager anchors to.
type Source interface {
	// Chart is nil once the pane has been torn down.
	Chart() engine.Chart
	Points() []series.Point
	Formatter() engine.PriceFormatter
	OnVisibleRangeChanged(fn func(*series.LogicalRange)) (release func())
}

// Options tune a manager.
type Options struct {
	Color string
}

// Manager keeps one kind of per-point element (labels or markers) in step
// with its pane's viewport. Every range change discards the manager's
// elements and projects all anchors again; sizes are only known after
// insertion and the visible anchor set changes on each pan or zoom, so there
// is nothing worth diffing.
type Manager struct {
	src     Source
	surface *Surface
	kind    Kind
	tag     string
	color   string
}

// NewManager renders the initial element set and subscribes to the pane's
// range-changed event.
func NewManager(src Source, surface *Surface, kind Kind, opts Options) *Manager {
	m := &Manager{
		src:     src,
		surface: surface,
		kind:    kind,
		tag:     fmt.Sprintf("%s-%d", kind, managerSeq.Add(1)),
		color:   opts.Color,
	}
	m.render()
	src.OnVisibleRangeChanged(func(r *series.LogicalRange) {
		m.Resync()
	})
	return m
}

// Tag identifies the elements this manager owns on its surface.
func (m *Manager) Tag() string { return m.tag }

// Kind is the element kind the manager produces.
func (m *Manager) Kind() Kind { return m.kind }

// Elements returns the manager's current elements.
func (m *Manager) Elements() []Element { return m.surface.Tagged(m.tag) }

// Resync discards this manager's elements and projects every anchor again.
// It returns the number of elements now on the surface for this manager.
func (m *Manager) Resync() int {
	removed := m.surface.RemoveTagged(m.tag)
	n := m.render()
	slog.Debug("overlay resync", "tag", m.tag, "removed", removed, "rendered", n)
	return n
}

func (m *Manager) render() int {
	ch := m.src.Chart()
	if ch == nil {
		return 0
	}
	format := m.src.Formatter()
	n := 0
	for _, p := range m.src.Points() {
		at, ok := Project(ch, p)
		if !ok {
			continue
		}
		el := m.surface.Insert(Element{
			Kind:       m.kind,
			Tag:        m.tag,
			Anchor:     p,
			AnchorTime: p.PointTime(),
			Position:   at,
			Text:       Text(p, format),
			Color:      m.pointColor(p),
		})
		switch m.kind {
		case KindLabel:
			el.Position = Position{X: at.X - el.Size.W/2, Y: at.Y - el.Size.H - labelGap}
		default:
			el.Position = Position{X: at.X - el.Size.W/2, Y: at.Y - el.Size.H/2}
		}
		n++
	}
	return n
}

func (m *Manager) pointColor(p series.Point) string {
	switch v := p.(type) {
	case series.OHLC:
		if v.Close >= v.Open {
			return upColor
		}
		return downColor
	case series.Scalar:
		return m.color
	case series.Whitespace:
		return ""
	default:
		return ""
	}
}

// Project converts a point's price and time into plot pixels. It fails for
// whitespace and for anchors outside the visible time or price range.
func Project(ch engine.Chart, p series.Point) (Position, bool) {
	price, ok := series.Price(p)
	if !ok {
		return Position{}, false
	}
	y, ok := ch.PriceToY(price)
	if !ok {
		return Position{}, false
	}
	x, ok := ch.TimeToX(p.PointTime())
	if !ok {
		return Position{}, false
	}
	return Position{X: x, Y: y}, true
}

// Text is the label text of a point: the formatted price when a formatter is
// configured, the raw number otherwise.
func Text(p series.Point, format engine.PriceFormatter) string {
	price, ok := series.Price(p)
	if !ok {
		return ""
	}
	if format != nil {
		return format(price)
	}
	return strconv.FormatFloat(price, 'f', -1, 64)
}
