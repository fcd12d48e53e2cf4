// Package chartsync wires chart panes into a synchronized layout: visible
// ranges and cursor positions propagate from any pane to every other pane.
//
// Propagation is synchronous. None of the types here are safe for concurrent
// use; callers serialize access to a layout.
package chartsync

import (
	"fmt"
	"log/slog"

	"github.com/dgnsrekt/tv_panesync/internal/engine"
	"github.com/dgnsrekt/tv_panesync/internal/overlay"
	"github.com/dgnsrekt/tv_panesync/internal/series"
)

// ChartConfig selects where a pane is mounted and how its chart looks.
type ChartConfig struct {
	Container *engine.Container
	Options   engine.ChartOptions
}

// SeriesConfig is the data and styling of a pane's single series.
type SeriesConfig struct {
	Data         []series.Point
	Options      engine.SeriesOptions
	Title        string
	VisibleRange *series.LogicalRange
}

// DisplayOptions choose the series geometry and which overlays to draw.
type DisplayOptions struct {
	Geometry    engine.Geometry
	ShowLabels  bool
	ShowMarkers bool
	// Measurer sizes overlay elements; nil uses overlay.DefaultMeasurer.
	Measurer overlay.Measurer
}

// Pane is one chart surface with exactly one data series.
type Pane struct {
	container *engine.Container
	chart     engine.Chart
	series    engine.Series
	data      []series.Point
	title     string
	formatter engine.PriceFormatter
	geometry  engine.Geometry

	surface *overlay.Surface
	caption *overlay.Title
	labels  *overlay.Manager
	markers *overlay.Manager

	// unsubs holds the subscriptions still live; release removes its entry.
	unsubs  map[int]func()
	nextSub int
	closed  bool
}

// NewPane creates the chart, its series and the requested overlays. Any
// failure leaves nothing behind: the chart is removed before returning.
func NewPane(factory engine.Factory, chartCfg ChartConfig, seriesCfg SeriesConfig, display DisplayOptions) (*Pane, error) {
	if factory == nil {
		return nil, NewError(CodeConfiguration, "chart factory is required", nil)
	}
	geometry := display.Geometry
	if geometry == "" {
		geometry = engine.GeometryArea
	}
	if (display.ShowLabels || display.ShowMarkers) && !chartCfg.Container.Valid() {
		return nil, NewError(CodeConfiguration, "labels and markers require a container", nil)
	}

	chart, err := factory.CreateChart(chartCfg.Container, chartCfg.Options)
	if err != nil {
		return nil, NewError(CodeConfiguration, "create chart", err)
	}
	s, err := chart.AddSeries(geometry)
	if err != nil || s == nil {
		chart.Remove()
		return nil, NewError(CodeConfiguration, fmt.Sprintf("no series for geometry %q", string(geometry)), err)
	}

	opts := seriesCfg.Options
	if geometry == engine.GeometryStepLine {
		opts = opts.WithSteps()
	}
	s.ApplyOptions(opts)
	s.SetData(seriesCfg.Data)

	p := &Pane{
		container: chartCfg.Container,
		chart:     chart,
		series:    s,
		data:      seriesCfg.Data,
		title:     seriesCfg.Title,
		formatter: seriesCfg.Options.Formatter,
		geometry:  geometry,
		surface:   overlay.NewSurface(display.Measurer),
	}

	if len(p.data) > 0 {
		r := series.LogicalRange{From: 0, To: float64(len(p.data) - 1)}
		if seriesCfg.VisibleRange != nil {
			r = *seriesCfg.VisibleRange
		}
		chart.SetVisibleRange(r)
	}

	if p.title != "" {
		p.caption = overlay.NewTitle(p.surface, p.title, chartCfg.Options.Layout.TextColor)
	}
	color := opts.MainColor()
	if display.ShowLabels {
		p.labels = overlay.NewManager(p, p.surface, overlay.KindLabel, overlay.Options{Color: color})
	}
	if display.ShowMarkers {
		p.markers = overlay.NewManager(p, p.surface, overlay.KindMarker, overlay.Options{Color: color})
	}

	slog.Debug("pane created",
		"pane", p.ID(),
		"geometry", string(geometry),
		"points", len(p.data),
		"labels", display.ShowLabels,
		"markers", display.ShowMarkers,
	)
	return p, nil
}

// ID is the pane's container id, or empty when mounted without one.
func (p *Pane) ID() string {
	if p.container == nil {
		return ""
	}
	return p.container.ID
}

// Container is the host surface, possibly nil.
func (p *Pane) Container() *engine.Container { return p.container }

// Chart returns the chart instance, or nil after Close.
func (p *Pane) Chart() engine.Chart {
	if p.closed {
		return nil
	}
	return p.chart
}

// Series returns the pane's series, or nil after Close.
func (p *Pane) Series() engine.Series {
	if p.closed {
		return nil
	}
	return p.series
}

// Points is the plotted data sequence, shared with the series.
func (p *Pane) Points() []series.Point { return p.data }

// Formatter is the series' custom price formatter, if any.
func (p *Pane) Formatter() engine.PriceFormatter { return p.formatter }

// Title is the pane caption.
func (p *Pane) Title() string { return p.title }

// Geometry is the series geometry.
func (p *Pane) Geometry() engine.Geometry { return p.geometry }

// Surface is the pane's overlay layer.
func (p *Pane) Surface() *overlay.Surface { return p.surface }

// Labels returns the value label manager, nil when labels are off.
func (p *Pane) Labels() *overlay.Manager { return p.labels }

// Markers returns the point marker manager, nil when markers are off.
func (p *Pane) Markers() *overlay.Manager { return p.markers }

// Overlays returns every overlay element currently on the pane.
func (p *Pane) Overlays() []overlay.Element { return p.surface.Elements() }

// Closed reports whether the pane was torn down.
func (p *Pane) Closed() bool { return p.closed }

// VisibleRange returns the chart's logical window, nil when unset or closed.
func (p *Pane) VisibleRange() *series.LogicalRange {
	if p.closed {
		return nil
	}
	return p.chart.VisibleRange()
}

// SetVisibleRange moves the pane's viewport, which in a synchronized layout
// moves every other pane too.
func (p *Pane) SetVisibleRange(r series.LogicalRange) {
	if p.closed {
		return
	}
	p.chart.SetVisibleRange(r)
}

// OnVisibleRangeChanged subscribes fn to the chart's range-changed event
// until Close or until the returned release func is called.
func (p *Pane) OnVisibleRangeChanged(fn func(*series.LogicalRange)) func() {
	if p.closed {
		return func() {}
	}
	return p.track(p.chart.SubscribeVisibleRangeChanged(func(r *series.LogicalRange) {
		if p.closed {
			return
		}
		fn(r)
	}))
}

// OnCursorMoved subscribes fn to the chart's cursor-moved event until Close
// or until the returned release func is called.
func (p *Pane) OnCursorMoved(fn func(engine.CursorEvent)) func() {
	if p.closed {
		return func() {}
	}
	return p.track(p.chart.SubscribeCursorMoved(func(evt engine.CursorEvent) {
		if p.closed {
			return
		}
		fn(evt)
	}))
}

func (p *Pane) track(unsub func()) func() {
	if p.unsubs == nil {
		p.unsubs = make(map[int]func())
	}
	p.nextSub++
	id := p.nextSub
	p.unsubs[id] = unsub
	return func() {
		fn, ok := p.unsubs[id]
		if !ok {
			return
		}
		delete(p.unsubs, id)
		fn()
	}
}

// Close detaches every subscription, drops the overlays and removes the
// chart. It is safe to call more than once.
func (p *Pane) Close() {
	if p.closed {
		return
	}
	p.closed = true
	for _, unsub := range p.unsubs {
		unsub()
	}
	p.unsubs = nil
	p.surface.Clear()
	p.chart.Remove()
	slog.Debug("pane closed", "pane", p.ID())
}
