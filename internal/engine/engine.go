// Package engine describes the chart rendering engine the synchronization
// core drives. The engine owns the plotting surface; the core only reads and
// sets viewports, converts coordinates and moves the cursor indicator.
package engine

import (
	"fmt"
	"strings"

	"github.com/dgnsrekt/tv_panesync/internal/series"
)

// Geometry is the visual kind of a series.
type Geometry string

const (
	GeometryArea        Geometry = "AREA"
	GeometryBar         Geometry = "BAR"
	GeometryBaseline    Geometry = "BASELINE"
	GeometryCandlestick Geometry = "CANDLESTICK"
	GeometryHistogram   Geometry = "HISTOGRAM"
	GeometryLine        Geometry = "LINE"
	GeometryStepLine    Geometry = "STEPLINE"
)

var geometries = []Geometry{
	GeometryArea, GeometryBar, GeometryBaseline, GeometryCandlestick,
	GeometryHistogram, GeometryLine, GeometryStepLine,
}

// ParseGeometry resolves a case-insensitive geometry name. Unknown names are
// returned unchanged with ok=false so the caller can report them.
func ParseGeometry(s string) (Geometry, bool) {
	g := Geometry(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range geometries {
		if g == known {
			return g, true
		}
	}
	return g, false
}

// Known reports whether g is one of the declared geometries.
func (g Geometry) Known() bool {
	_, ok := ParseGeometry(string(g))
	return ok
}

// LineType controls interpolation between consecutive line points.
type LineType int

const (
	LineTypeSimple LineType = iota
	LineTypeWithSteps
	LineTypeCurved
)

// Container is the host surface a chart is mounted on.
type Container struct {
	ID     string
	Width  int
	Height int
}

// Valid reports whether overlays can be positioned inside the container.
func (c *Container) Valid() bool {
	return c != nil && strings.TrimSpace(c.ID) != "" && c.Width > 0 && c.Height > 0
}

// Chart is one chart instance of the rendering engine.
type Chart interface {
	AddSeries(g Geometry) (Series, error)

	VisibleRange() *series.LogicalRange
	SetVisibleRange(r series.LogicalRange)
	SubscribeVisibleRangeChanged(fn func(*series.LogicalRange)) (unsubscribe func())

	TimeToX(t series.Time) (float64, bool)
	PriceToY(price float64) (float64, bool)
	XToTime(x float64) (series.Time, bool)

	SubscribeCursorMoved(fn func(CursorEvent)) (unsubscribe func())
	SetCursorIndicator(price float64, t series.Time, s Series)
	ClearCursorIndicator()

	Remove()
}

// Series is a single plotted data series on a chart.
type Series interface {
	Geometry() Geometry
	ApplyOptions(opts SeriesOptions)
	Options() SeriesOptions
	SetData(points []series.Point)
	Data() []series.Point
}

// Factory creates chart instances on containers.
type Factory interface {
	CreateChart(c *Container, opts ChartOptions) (Chart, error)
}

// SeriesMatch is a series plotted under the cursor and the point it hit.
type SeriesMatch struct {
	Series Series
	Point  series.Point
}

// CursorEvent is emitted when the pointer moves over or leaves a chart.
type CursorEvent struct {
	Matches []SeriesMatch
	X       float64
	HasX    bool
}

// UnsupportedGeometryError is returned by AddSeries for geometries the engine
// cannot draw.
type UnsupportedGeometryError struct {
	Geometry Geometry
}

func (e *UnsupportedGeometryError) Error() string {
	return fmt.Sprintf("unsupported series geometry %q", string(e.Geometry))
}
