package chartsync

import (
	"github.com/dgnsrekt/tv_panesync/internal/engine"
	"github.com/dgnsrekt/tv_panesync/internal/series"
)

// echoFactory builds charts that raise range-changed on every
// SetVisibleRange, changed or not, and record how deeply those calls nest.
type echoFactory struct {
	depth    int
	maxDepth int
	charts   []*echoChart
}

func (f *echoFactory) CreateChart(c *engine.Container, opts engine.ChartOptions) (engine.Chart, error) {
	ch := &echoChart{factory: f, rangeSubs: map[int]func(*series.LogicalRange){}, cursorSubs: map[int]func(engine.CursorEvent){}}
	f.charts = append(f.charts, ch)
	return ch, nil
}

type echoChart struct {
	factory    *echoFactory
	visible    *series.LogicalRange
	setCalls   int
	series     []*echoSeries
	removed    bool
	nextID     int
	rangeSubs  map[int]func(*series.LogicalRange)
	cursorSubs map[int]func(engine.CursorEvent)
}

func (c *echoChart) AddSeries(g engine.Geometry) (engine.Series, error) {
	if !g.Known() {
		return nil, &engine.UnsupportedGeometryError{Geometry: g}
	}
	s := &echoSeries{geometry: g}
	c.series = append(c.series, s)
	return s, nil
}

func (c *echoChart) VisibleRange() *series.LogicalRange { return c.visible }

func (c *echoChart) SetVisibleRange(r series.LogicalRange) {
	c.setCalls++
	c.factory.depth++
	if c.factory.depth > c.factory.maxDepth {
		c.factory.maxDepth = c.factory.depth
	}
	defer func() { c.factory.depth-- }()
	c.visible = &r
	c.emitRange(&r)
}

func (c *echoChart) emitRange(r *series.LogicalRange) {
	for i := 1; i <= c.nextID; i++ {
		if fn, ok := c.rangeSubs[i]; ok {
			fn(r)
		}
	}
}

func (c *echoChart) SubscribeVisibleRangeChanged(fn func(*series.LogicalRange)) func() {
	c.nextID++
	id := c.nextID
	c.rangeSubs[id] = fn
	return func() { delete(c.rangeSubs, id) }
}

func (c *echoChart) SubscribeCursorMoved(fn func(engine.CursorEvent)) func() {
	c.nextID++
	id := c.nextID
	c.cursorSubs[id] = fn
	return func() { delete(c.cursorSubs, id) }
}

func (c *echoChart) subscriptions() int { return len(c.rangeSubs) + len(c.cursorSubs) }

func (c *echoChart) TimeToX(t series.Time) (float64, bool)                  { return 0, false }
func (c *echoChart) PriceToY(p float64) (float64, bool)                     { return 0, false }
func (c *echoChart) XToTime(x float64) (series.Time, bool)                  { return 0, false }
func (c *echoChart) SetCursorIndicator(float64, series.Time, engine.Series) {}
func (c *echoChart) ClearCursorIndicator()                                  {}
func (c *echoChart) Remove()                                                { c.removed = true }

type echoSeries struct {
	geometry engine.Geometry
	opts     engine.SeriesOptions
	data     []series.Point
}

func (s *echoSeries) Geometry() engine.Geometry           { return s.geometry }
func (s *echoSeries) ApplyOptions(o engine.SeriesOptions) { s.opts = o }
func (s *echoSeries) Options() engine.SeriesOptions       { return s.opts }
func (s *echoSeries) SetData(p []series.Point)            { s.data = p }
func (s *echoSeries) Data() []series.Point                { return s.data }

// countingFactory wraps another factory and keeps the charts it made.
type countingFactory struct {
	inner  engine.Factory
	charts []engine.Chart
}

func (f *countingFactory) CreateChart(c *engine.Container, opts engine.ChartOptions) (engine.Chart, error) {
	ch, err := f.inner.CreateChart(c, opts)
	if err == nil {
		f.charts = append(f.charts, ch)
	}
	return ch, err
}
