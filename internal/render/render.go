// Package render rasterises a synchronized layout to PNG: each pane's series
// in its geometry, its overlays, the price axis and the cursor indicator.
package render

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"strconv"

	"github.com/dgnsrekt/tv_panesync/internal/engine"
	"github.com/dgnsrekt/tv_panesync/internal/engine/headless"
	"github.com/dgnsrekt/tv_panesync/internal/overlay"
	"github.com/dgnsrekt/tv_panesync/internal/series"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
)

// Pane is what the renderer reads from a synchronized pane.
type Pane interface {
	ID() string
	Container() *engine.Container
	Chart() engine.Chart
	Series() engine.Series
	Geometry() engine.Geometry
	Points() []series.Point
	Formatter() engine.PriceFormatter
	Overlays() []overlay.Element
}

// Image is a rendered layout.
type Image struct {
	Width  int
	Height int
	PNG    []byte
}

var (
	defaultLine = color.RGBA{0x29, 0x62, 0xff, 0xff}
	upColor     = color.RGBA{0x26, 0xa6, 0x9a, 0xff}
	downColor   = color.RGBA{0xef, 0x53, 0x50, 0xff}
	crossColor  = color.RGBA{0x75, 0x86, 0x96, 0xff}
	separator   = color.RGBA{0xe0, 0xe3, 0xeb, 0xff}
)

// Layout stacks the live panes vertically and encodes the result as PNG.
// Closed panes are skipped.
func Layout(panes []Pane) (*Image, error) {
	var live []Pane
	width, height := 0, 0
	for _, p := range panes {
		if p == nil || p.Chart() == nil || !p.Container().Valid() {
			continue
		}
		live = append(live, p)
		width = max(width, p.Container().Width)
		height += p.Container().Height
	}
	if len(live) == 0 {
		return nil, fmt.Errorf("nothing to render")
	}

	face, err := NewFace(fontSize)
	if err != nil {
		return nil, err
	}

	dc := gg.NewContext(width, height)
	dc.SetColor(color.White)
	dc.Clear()
	dc.SetFontFace(face)

	top := 0.0
	for i, p := range live {
		drawPane(dc, face, p, top)
		top += float64(p.Container().Height)
		if i < len(live)-1 {
			dc.SetColor(separator)
			dc.SetLineWidth(1)
			dc.DrawLine(0, top, float64(width), top)
			dc.Stroke()
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return &Image{Width: width, Height: height, PNG: buf.Bytes()}, nil
}

type optionsSource interface {
	Options() engine.ChartOptions
}

type plotSource interface {
	PlotWidth() float64
}

type indicatorSource interface {
	CursorIndicator() (headless.Indicator, bool)
}

func chartOptions(ch engine.Chart) engine.ChartOptions {
	if o, ok := ch.(optionsSource); ok {
		return o.Options()
	}
	return engine.DefaultChartOptions()
}

func plotWidth(ch engine.Chart, c *engine.Container, opts engine.ChartOptions) float64 {
	if p, ok := ch.(plotSource); ok {
		return p.PlotWidth()
	}
	return math.Max(float64(c.Width-opts.RightPriceScale.MinimumWidth), 1)
}

func drawPane(dc *gg.Context, face font.Face, p Pane, top float64) {
	ch := p.Chart()
	c := p.Container()
	opts := chartOptions(ch)
	w, h := float64(c.Width), float64(c.Height)
	pw := plotWidth(ch, c, opts)

	dc.Push()
	defer dc.Pop()
	dc.Translate(0, top)

	dc.SetColor(colorOr(opts.Layout.Background, color.RGBA{255, 255, 255, 255}))
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()

	dc.DrawRectangle(0, 0, pw, h)
	dc.Clip()
	drawSeries(dc, p, pw, h)
	dc.ResetClip()

	drawPriceAxis(dc, p, opts, pw, w)
	if opts.TimeAxisVisible() {
		drawTimeAxis(dc, p, opts, h)
	}
	drawOverlays(dc, face, p.Overlays())
	drawIndicator(dc, ch, pw, h)
}

func seriesColor(p Pane) color.RGBA {
	if s := p.Series(); s != nil {
		return colorOr(s.Options().MainColor(), defaultLine)
	}
	return defaultLine
}

type projected struct {
	x, y  float64
	point series.Point
}

func project(ch engine.Chart, points []series.Point) []projected {
	var out []projected
	for _, pt := range points {
		price, ok := series.Price(pt)
		if !ok {
			continue
		}
		x, ok := ch.TimeToX(pt.PointTime())
		if !ok {
			continue
		}
		y, ok := ch.PriceToY(price)
		if !ok {
			continue
		}
		out = append(out, projected{x: x, y: y, point: pt})
	}
	return out
}

func barWidth(ch engine.Chart, pw float64) float64 {
	r := ch.VisibleRange()
	if r == nil {
		return 6
	}
	spacing := pw / (math.Max(r.Span(), 0) + 1)
	return math.Max(1, spacing*0.7)
}

func drawSeries(dc *gg.Context, p Pane, pw, h float64) {
	ch := p.Chart()
	pts := project(ch, p.Points())
	if len(pts) == 0 {
		return
	}
	col := seriesColor(p)
	dc.SetLineWidth(2)
	if s := p.Series(); s != nil && s.Options().LineWidth > 0 {
		dc.SetLineWidth(float64(s.Options().LineWidth))
	}

	switch p.Geometry() {
	case engine.GeometryLine:
		polyline(dc, pts, col)
	case engine.GeometryStepLine:
		dc.SetColor(col)
		dc.MoveTo(pts[0].x, pts[0].y)
		for i := 1; i < len(pts); i++ {
			dc.LineTo(pts[i].x, pts[i-1].y)
			dc.LineTo(pts[i].x, pts[i].y)
		}
		dc.Stroke()
	case engine.GeometryArea:
		dc.SetColor(withAlpha(col, 0.25))
		dc.MoveTo(pts[0].x, h)
		for _, pt := range pts {
			dc.LineTo(pt.x, pt.y)
		}
		dc.LineTo(pts[len(pts)-1].x, h)
		dc.ClosePath()
		dc.Fill()
		polyline(dc, pts, col)
	case engine.GeometryBaseline:
		base := pts[0].y
		dc.SetColor(crossColor)
		dc.SetDash(4, 4)
		dc.DrawLine(0, base, pw, base)
		dc.Stroke()
		dc.SetDash()
		for i := 1; i < len(pts); i++ {
			c := upColor
			if (pts[i].y+pts[i-1].y)/2 > base {
				c = downColor
			}
			dc.SetColor(c)
			dc.DrawLine(pts[i-1].x, pts[i-1].y, pts[i].x, pts[i].y)
			dc.Stroke()
		}
	case engine.GeometryHistogram:
		zero := h
		if y, ok := ch.PriceToY(0); ok {
			zero = y
		}
		bw := barWidth(ch, pw)
		dc.SetColor(col)
		for _, pt := range pts {
			dc.DrawRectangle(pt.x-bw/2, math.Min(pt.y, zero), bw, math.Abs(zero-pt.y))
		}
		dc.Fill()
	case engine.GeometryBar, engine.GeometryCandlestick:
		drawOHLC(dc, ch, pts, barWidth(ch, pw), p.Geometry() == engine.GeometryCandlestick)
	}
}

func polyline(dc *gg.Context, pts []projected, col color.RGBA) {
	dc.SetColor(col)
	dc.MoveTo(pts[0].x, pts[0].y)
	for _, pt := range pts[1:] {
		dc.LineTo(pt.x, pt.y)
	}
	dc.Stroke()
}

func drawOHLC(dc *gg.Context, ch engine.Chart, pts []projected, bw float64, candle bool) {
	dc.SetLineWidth(1)
	for _, pt := range pts {
		bar, ok := pt.point.(series.OHLC)
		if !ok {
			// Scalar data on an OHLC geometry is drawn as a tick.
			dc.SetColor(defaultLine)
			dc.DrawLine(pt.x-bw/2, pt.y, pt.x+bw/2, pt.y)
			dc.Stroke()
			continue
		}
		yo, ok1 := ch.PriceToY(bar.Open)
		yh, ok2 := ch.PriceToY(bar.High)
		yl, ok3 := ch.PriceToY(bar.Low)
		if !ok1 || !ok2 || !ok3 {
			continue
		}
		yc := pt.y
		c := upColor
		if bar.Close < bar.Open {
			c = downColor
		}
		dc.SetColor(c)
		dc.DrawLine(pt.x, yh, pt.x, yl)
		dc.Stroke()
		if candle {
			dc.DrawRectangle(pt.x-bw/2, math.Min(yo, yc), bw, math.Max(math.Abs(yc-yo), 1))
			dc.Fill()
			continue
		}
		dc.DrawLine(pt.x-bw/2, yo, pt.x, yo)
		dc.DrawLine(pt.x, yc, pt.x+bw/2, yc)
		dc.Stroke()
	}
}

// visibleBounds is the lowest and highest price among on-screen points.
func visibleBounds(ch engine.Chart, points []series.Point) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, pt := range points {
		if _, on := ch.TimeToX(pt.PointTime()); !on {
			continue
		}
		l, h, has := series.Bounds(pt)
		if !has {
			continue
		}
		lo, hi = math.Min(lo, l), math.Max(hi, h)
	}
	return lo, hi, !math.IsInf(lo, 1)
}

func priceText(p Pane, v float64) string {
	if f := p.Formatter(); f != nil {
		return f(v)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func drawPriceAxis(dc *gg.Context, p Pane, opts engine.ChartOptions, pw, w float64) {
	ch := p.Chart()
	lo, hi, ok := visibleBounds(ch, p.Points())
	if !ok {
		return
	}
	dc.SetColor(colorOr(opts.RightPriceScale.TextColor, crossColor))
	const ticks = 4
	for k := 0; k <= ticks; k++ {
		v := lo + (hi-lo)*float64(k)/ticks
		y, ok := ch.PriceToY(v)
		if !ok {
			continue
		}
		dc.DrawStringAnchored(priceText(p, v), pw+(w-pw)/2, y, 0.5, 0.5)
	}
}

func drawTimeAxis(dc *gg.Context, p Pane, opts engine.ChartOptions, h float64) {
	ch := p.Chart()
	dc.SetColor(colorOr(opts.TimeScale.TextColor, crossColor))
	lastX := math.Inf(-1)
	for _, pt := range p.Points() {
		x, ok := ch.TimeToX(pt.PointTime())
		if !ok || x-lastX < 90 {
			continue
		}
		dc.DrawStringAnchored(pt.PointTime().Std().Format("2006-01-02"), x, h-4, 0.5, 0)
		lastX = x
	}
}

func drawOverlays(dc *gg.Context, face font.Face, els []overlay.Element) {
	for _, el := range els {
		col := colorOr(el.Color, crossColor)
		switch el.Kind {
		case overlay.KindMarker:
			r := el.Size.W / 2
			dc.SetColor(col)
			dc.DrawCircle(el.Position.X+r, el.Position.Y+el.Size.H/2, r)
			dc.Fill()
		case overlay.KindLabel:
			dc.SetColor(color.White)
			dc.DrawRoundedRectangle(el.Position.X, el.Position.Y, el.Size.W, el.Size.H, 3)
			dc.FillPreserve()
			dc.SetColor(col)
			dc.SetLineWidth(1)
			dc.Stroke()
			dc.DrawStringAnchored(el.Text, el.Position.X+el.Size.W/2, el.Position.Y+el.Size.H/2, 0.5, 0.35)
		case overlay.KindTitle:
			dc.SetColor(colorOr(el.Color, color.RGBA{0x13, 0x17, 0x22, 0xff}))
			ascent := float64(face.Metrics().Ascent.Ceil())
			dc.DrawString(el.Text, el.Position.X, el.Position.Y+ascent)
		}
	}
}

func drawIndicator(dc *gg.Context, ch engine.Chart, pw, h float64) {
	src, ok := ch.(indicatorSource)
	if !ok {
		return
	}
	ind, ok := src.CursorIndicator()
	if !ok {
		return
	}
	dc.SetColor(crossColor)
	dc.SetLineWidth(1)
	dc.SetDash(4, 4)
	defer dc.SetDash()
	if x, ok := ch.TimeToX(ind.Time); ok {
		dc.DrawLine(x, 0, x, h)
		dc.Stroke()
	}
	if y, ok := ch.PriceToY(ind.Price); ok {
		dc.DrawLine(0, y, pw, y)
		dc.Stroke()
	}
}
