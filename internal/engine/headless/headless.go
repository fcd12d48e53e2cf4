// Package headless is an in-memory implementation of the chart engine. It
// keeps a logical-index time scale and an auto-scaled price scale and emits
// events synchronously, which makes it suitable for servers and tests where
// no browser draws the chart.
//
// A Chart is not safe for concurrent use.
package headless

import (
	"log/slog"
	"math"

	"github.com/dgnsrekt/tv_panesync/internal/engine"
	"github.com/dgnsrekt/tv_panesync/internal/series"
)

const (
	scaleMarginTop    = 0.2
	scaleMarginBottom = 0.1
)

// Engine creates headless charts.
type Engine struct{}

// New returns a headless chart factory.
func New() *Engine { return &Engine{} }

// CreateChart mounts a chart on c. Options are merged over the defaults.
func (e *Engine) CreateChart(c *engine.Container, opts engine.ChartOptions) (engine.Chart, error) {
	if c == nil {
		c = &engine.Container{}
	}
	opts = engine.DefaultChartOptions().Merge(opts)
	if opts.Width == 0 {
		opts.Width = c.Width
	}
	if opts.Height == 0 {
		opts.Height = c.Height
	}
	ch := &Chart{
		container: *c,
		opts:      opts,
	}
	slog.Debug("headless chart created", "container", c.ID, "width", opts.Width, "height", opts.Height)
	return ch, nil
}

// Indicator is the cursor indicator currently shown on a chart.
type Indicator struct {
	Price  float64
	Time   series.Time
	Series engine.Series
}

type rangeSub struct {
	id int
	fn func(*series.LogicalRange)
}

type cursorSub struct {
	id int
	fn func(engine.CursorEvent)
}

// Chart is a headless chart instance.
type Chart struct {
	container engine.Container
	opts      engine.ChartOptions
	series    []*Series
	visible   *series.LogicalRange
	indicator *Indicator
	removed   bool

	nextSub    int
	rangeSubs  []rangeSub
	cursorSubs []cursorSub
}

// Container returns the container the chart was mounted on.
func (c *Chart) Container() engine.Container { return c.container }

// Options returns the merged chart options.
func (c *Chart) Options() engine.ChartOptions { return c.opts }

// Removed reports whether Remove was called.
func (c *Chart) Removed() bool { return c.removed }

// SeriesList returns the series added to the chart.
func (c *Chart) SeriesList() []*Series { return c.series }

// PlotWidth is the width of the plotting surface, excluding the price axis.
func (c *Chart) PlotWidth() float64 {
	w := float64(c.opts.Width - c.opts.RightPriceScale.MinimumWidth)
	if w < 1 {
		w = math.Max(float64(c.opts.Width), 1)
	}
	return w
}

// PlotHeight is the height of the plotting surface.
func (c *Chart) PlotHeight() float64 {
	return math.Max(float64(c.opts.Height), 1)
}

func (c *Chart) AddSeries(g engine.Geometry) (engine.Series, error) {
	if c.removed {
		return nil, errRemoved
	}
	if !g.Known() {
		return nil, &engine.UnsupportedGeometryError{Geometry: g}
	}
	s := &Series{chart: c, geometry: g}
	c.series = append(c.series, s)
	return s, nil
}

func (c *Chart) VisibleRange() *series.LogicalRange {
	if c.removed || c.visible == nil {
		return nil
	}
	r := *c.visible
	return &r
}

// SetVisibleRange moves the viewport and notifies range subscribers when the
// window actually changed.
func (c *Chart) SetVisibleRange(r series.LogicalRange) {
	if c.removed {
		return
	}
	if !finite(r.From) || !finite(r.To) {
		slog.Debug("headless range ignored", "container", c.container.ID, "from", r.From, "to", r.To)
		return
	}
	if c.visible != nil && *c.visible == r {
		return
	}
	c.visible = &r
	c.emitRange()
}

func (c *Chart) SubscribeVisibleRangeChanged(fn func(*series.LogicalRange)) func() {
	if c.removed {
		return func() {}
	}
	c.nextSub++
	id := c.nextSub
	c.rangeSubs = append(c.rangeSubs, rangeSub{id: id, fn: fn})
	return func() {
		for i, s := range c.rangeSubs {
			if s.id == id {
				c.rangeSubs = append(c.rangeSubs[:i:i], c.rangeSubs[i+1:]...)
				return
			}
		}
	}
}

func (c *Chart) SubscribeCursorMoved(fn func(engine.CursorEvent)) func() {
	if c.removed {
		return func() {}
	}
	c.nextSub++
	id := c.nextSub
	c.cursorSubs = append(c.cursorSubs, cursorSub{id: id, fn: fn})
	return func() {
		for i, s := range c.cursorSubs {
			if s.id == id {
				c.cursorSubs = append(c.cursorSubs[:i:i], c.cursorSubs[i+1:]...)
				return
			}
		}
	}
}

func (c *Chart) emitRange() {
	subs := append([]rangeSub(nil), c.rangeSubs...)
	for _, s := range subs {
		if c.removed {
			return
		}
		s.fn(c.VisibleRange())
	}
}

func (c *Chart) emitCursor(evt engine.CursorEvent) {
	subs := append([]cursorSub(nil), c.cursorSubs...)
	for _, s := range subs {
		if c.removed {
			return
		}
		s.fn(evt)
	}
}

// timeScale is the data of the first series; every other series is expected
// to be aligned to it.
func (c *Chart) timeScale() []series.Point {
	if len(c.series) == 0 {
		return nil
	}
	return c.series[0].data
}

func (c *Chart) barSpacing() (float64, series.LogicalRange, bool) {
	if c.visible == nil {
		return 0, series.LogicalRange{}, false
	}
	r := *c.visible
	spacing := c.PlotWidth() / (math.Max(r.Span(), 0) + 1)
	if !finite(spacing) || spacing <= 0 {
		return 0, series.LogicalRange{}, false
	}
	return spacing, r, true
}

func (c *Chart) indexToX(i float64) (float64, bool) {
	spacing, r, ok := c.barSpacing()
	if !ok {
		return 0, false
	}
	x := (i - r.From + 0.5) * spacing
	if math.IsNaN(x) || x < 0 || x > c.PlotWidth() {
		return 0, false
	}
	return x, true
}

func (c *Chart) xToIndex(x float64) (int, bool) {
	spacing, r, ok := c.barSpacing()
	if !ok || math.IsNaN(x) || x < 0 || x > c.PlotWidth() {
		return 0, false
	}
	i := int(math.Round(x/spacing - 0.5 + r.From))
	if i < 0 || i >= len(c.timeScale()) {
		return 0, false
	}
	return i, true
}

func (c *Chart) TimeToX(t series.Time) (float64, bool) {
	if c.removed {
		return 0, false
	}
	i, ok := series.IndexOf(c.timeScale(), t)
	if !ok {
		return 0, false
	}
	return c.indexToX(float64(i))
}

func (c *Chart) XToTime(x float64) (series.Time, bool) {
	if c.removed {
		return 0, false
	}
	i, ok := c.xToIndex(x)
	if !ok {
		return 0, false
	}
	return c.timeScale()[i].PointTime(), true
}

// priceRange is the auto-scaled min/max over every point inside the window.
func (c *Chart) priceRange() (lo, hi float64, ok bool) {
	if c.visible == nil {
		return 0, 0, false
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, s := range c.series {
		for i, p := range s.data {
			if _, visible := c.indexToX(float64(i)); !visible {
				continue
			}
			l, h, has := series.Bounds(p)
			if !has {
				continue
			}
			lo = math.Min(lo, l)
			hi = math.Max(hi, h)
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 0, false
	}
	if lo == hi {
		pad := math.Max(math.Abs(lo)*0.05, 1)
		lo, hi = lo-pad, hi+pad
	}
	return lo, hi, true
}

func (c *Chart) PriceToY(price float64) (float64, bool) {
	if c.removed {
		return 0, false
	}
	lo, hi, ok := c.priceRange()
	if !ok {
		return 0, false
	}
	h := c.PlotHeight()
	usable := h * (1 - scaleMarginTop - scaleMarginBottom)
	y := h*scaleMarginTop + usable*(hi-price)/(hi-lo)
	if y < 0 || y > h {
		return 0, false
	}
	return y, true
}

func (c *Chart) SetCursorIndicator(price float64, t series.Time, s engine.Series) {
	if c.removed {
		return
	}
	c.indicator = &Indicator{Price: price, Time: t, Series: s}
}

func (c *Chart) ClearCursorIndicator() {
	c.indicator = nil
}

// CursorIndicator returns the indicator set by the last SetCursorIndicator.
func (c *Chart) CursorIndicator() (Indicator, bool) {
	if c.indicator == nil {
		return Indicator{}, false
	}
	return *c.indicator, true
}

// MoveCursor simulates the pointer at plot x. Series whose point at that
// index carries a value are reported as matches; whitespace slots are not.
func (c *Chart) MoveCursor(x float64) {
	if c.removed {
		return
	}
	evt := engine.CursorEvent{}
	if x >= 0 && x <= c.PlotWidth() {
		evt.X, evt.HasX = x, true
	}
	if i, ok := c.xToIndex(x); ok {
		for _, s := range c.series {
			if i >= len(s.data) {
				continue
			}
			if _, priced := series.Price(s.data[i]); priced {
				evt.Matches = append(evt.Matches, engine.SeriesMatch{Series: s, Point: s.data[i]})
			}
		}
	}
	c.emitCursor(evt)
}

// LeaveCursor simulates the pointer leaving the chart.
func (c *Chart) LeaveCursor() {
	if c.removed {
		return
	}
	c.emitCursor(engine.CursorEvent{})
}

// Remove destroys the chart: subscriptions are dropped and every later call
// is a no-op.
func (c *Chart) Remove() {
	if c.removed {
		return
	}
	c.removed = true
	c.rangeSubs = nil
	c.cursorSubs = nil
	c.indicator = nil
	slog.Debug("headless chart removed", "container", c.container.ID)
}

// Series is a headless data series.
type Series struct {
	chart    *Chart
	geometry engine.Geometry
	opts     engine.SeriesOptions
	data     []series.Point
}

func (s *Series) Geometry() engine.Geometry { return s.geometry }

func (s *Series) ApplyOptions(opts engine.SeriesOptions) { s.opts = opts }

func (s *Series) Options() engine.SeriesOptions { return s.opts }

// SetData keeps points by reference.
func (s *Series) SetData(points []series.Point) { s.data = points }

func (s *Series) Data() []series.Point { return s.data }

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
