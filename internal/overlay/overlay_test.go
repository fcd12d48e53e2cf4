package overlay

import (
	"fmt"
	"testing"

	"github.com/dgnsrekt/tv_panesync/internal/engine"
	"github.com/dgnsrekt/tv_panesync/internal/engine/headless"
	"github.com/dgnsrekt/tv_panesync/internal/series"
)

type testSource struct {
	chart  *headless.Chart
	points []series.Point
	format engine.PriceFormatter
}

func (s *testSource) Chart() engine.Chart {
	if s.chart.Removed() {
		return nil
	}
	return s.chart
}
func (s *testSource) Points() []series.Point           { return s.points }
func (s *testSource) Formatter() engine.PriceFormatter { return s.format }
func (s *testSource) OnVisibleRangeChanged(fn func(*series.LogicalRange)) func() {
	return s.chart.SubscribeVisibleRangeChanged(fn)
}

func newSource(t *testing.T, points []series.Point) *testSource {
	t.Helper()
	ch, err := headless.New().CreateChart(&engine.Container{ID: "o", Width: 865, Height: 300}, engine.ChartOptions{})
	if err != nil {
		t.Fatalf("CreateChart() error = %v", err)
	}
	s, err := ch.AddSeries(engine.GeometryLine)
	if err != nil {
		t.Fatalf("AddSeries() error = %v", err)
	}
	s.SetData(points)
	ch.SetVisibleRange(series.LogicalRange{From: 0, To: float64(len(points) - 1)})
	return &testSource{chart: ch.(*headless.Chart), points: points}
}

func TestSurfaceInsertMeasures(t *testing.T) {
	s := NewSurface(nil)
	el := s.Insert(Element{Kind: KindLabel, Tag: "a", Text: "12.5"})
	want := Size{W: 4*7.2 + 8, H: 14 + 8}
	if el.Size != want {
		t.Fatalf("Insert() size = %+v; want %+v", el.Size, want)
	}
	m := s.Insert(Element{Kind: KindMarker, Tag: "b"})
	if m.Size != (Size{W: MarkerSize, H: MarkerSize}) {
		t.Fatalf("marker size = %+v; want %v square", m.Size, MarkerSize)
	}
	el.Position = Position{X: 3, Y: 4}
	if got := s.Tagged("a")[0].Position; got != el.Position {
		t.Fatalf("Tagged() position = %+v; want the corrected %+v", got, el.Position)
	}
}

func TestSurfaceRemoveTagged(t *testing.T) {
	s := NewSurface(nil)
	for i := 0; i < 3; i++ {
		s.Insert(Element{Kind: KindLabel, Tag: "a"})
		s.Insert(Element{Kind: KindMarker, Tag: "b"})
	}
	if n := s.RemoveTagged("a"); n != 3 {
		t.Fatalf("RemoveTagged(a) = %d; want 3", n)
	}
	if s.Len() != 3 || len(s.Tagged("b")) != 3 {
		t.Fatalf("RemoveTagged(a) touched other tags: len=%d", s.Len())
	}
	s.Clear()
	if s.Len() != 0 {
		t.Fatalf("Clear() left %d elements", s.Len())
	}
}

func TestProjectSkipsWhitespace(t *testing.T) {
	src := newSource(t, []series.Point{
		series.Scalar{Time: 1, Value: 1},
		series.Whitespace{Time: 2},
		series.Scalar{Time: 3, Value: 3},
	})
	if _, ok := Project(src.chart, src.points[1]); ok {
		t.Fatalf("Project(whitespace) ok = true; want false")
	}
	if _, ok := Project(src.chart, src.points[0]); !ok {
		t.Fatalf("Project(scalar) ok = false; want true")
	}
}

func TestText(t *testing.T) {
	p := series.Scalar{Value: 1234.5}
	if got := Text(p, nil); got != "1234.5" {
		t.Fatalf("Text(nil) = %q; want 1234.5", got)
	}
	usd := func(v float64) string { return fmt.Sprintf("$%.2f", v) }
	if got := Text(p, usd); got != "$1234.50" {
		t.Fatalf("Text(usd) = %q; want $1234.50", got)
	}
	if got := Text(series.Whitespace{}, usd); got != "" {
		t.Fatalf("Text(whitespace) = %q; want empty", got)
	}
}

func TestLabelPlacement(t *testing.T) {
	src := newSource(t, []series.Point{
		series.Scalar{Time: 1, Value: 10},
		series.Scalar{Time: 2, Value: 20},
	})
	surface := NewSurface(nil)
	labels := NewManager(src, surface, KindLabel, Options{Color: "#123"})
	els := labels.Elements()
	if len(els) != 2 {
		t.Fatalf("labels = %d; want 2", len(els))
	}
	for _, el := range els {
		anchor, _ := Project(src.chart, el.Anchor)
		wantX := anchor.X - el.Size.W/2
		wantY := anchor.Y - el.Size.H - labelGap
		if el.Position.X != wantX || el.Position.Y != wantY {
			t.Fatalf("label at %+v; want (%v, %v)", el.Position, wantX, wantY)
		}
		if el.Color != "#123" {
			t.Fatalf("label colour = %q; want #123", el.Color)
		}
	}
}

func TestMarkerPlacement(t *testing.T) {
	src := newSource(t, []series.Point{
		series.OHLC{Time: 1, Open: 1, High: 5, Low: 0, Close: 4},
		series.OHLC{Time: 2, Open: 4, High: 6, Low: 1, Close: 2},
	})
	markers := NewManager(src, NewSurface(nil), KindMarker, Options{})
	els := markers.Elements()
	if len(els) != 2 {
		t.Fatalf("markers = %d; want 2", len(els))
	}
	anchor, _ := Project(src.chart, els[0].Anchor)
	if els[0].Position.X != anchor.X-MarkerSize/2 || els[0].Position.Y != anchor.Y-MarkerSize/2 {
		t.Fatalf("marker at %+v; want centred on %+v", els[0].Position, anchor)
	}
	if els[0].Color != upColor || els[1].Color != downColor {
		t.Fatalf("marker colours = %q, %q; want up then down", els[0].Color, els[1].Color)
	}
}

func TestManagerFollowsViewport(t *testing.T) {
	points := make([]series.Point, 50)
	for i := range points {
		points[i] = series.Scalar{Time: series.Time(i), Value: float64(i)}
	}
	src := newSource(t, points)
	surface := NewSurface(nil)
	NewTitle(surface, "caption", "#000")
	labels := NewManager(src, surface, KindLabel, Options{})
	markers := NewManager(src, surface, KindMarker, Options{})
	if len(labels.Elements()) != 50 {
		t.Fatalf("initial labels = %d; want 50", len(labels.Elements()))
	}

	src.chart.SetVisibleRange(series.LogicalRange{From: 10, To: 19})
	for _, m := range []*Manager{labels, markers} {
		els := m.Elements()
		if len(els) != 10 {
			t.Fatalf("%s after zoom = %d; want 10", m.Kind(), len(els))
		}
		for _, el := range els {
			if el.AnchorTime < 10 || el.AnchorTime > 19 {
				t.Fatalf("%s anchored at %d outside window", m.Kind(), el.AnchorTime)
			}
		}
	}
	if got := surface.Tagged(TitleTag); len(got) != 1 || got[0].Position != (Position{X: 8, Y: 8}) {
		t.Fatalf("title = %+v; want one element at the inset", got)
	}
	if surface.Len() != 21 {
		t.Fatalf("surface len = %d; want 21", surface.Len())
	}
}

func TestManagerTagsAreDistinct(t *testing.T) {
	src := newSource(t, []series.Point{series.Scalar{Time: 1, Value: 1}})
	surface := NewSurface(nil)
	a := NewManager(src, surface, KindLabel, Options{})
	b := NewManager(src, surface, KindLabel, Options{})
	if a.Tag() == b.Tag() {
		t.Fatalf("managers share tag %q", a.Tag())
	}
	a.Resync()
	if len(b.Elements()) != 1 {
		t.Fatalf("Resync of one manager removed another's elements")
	}
}

func TestTitleRemove(t *testing.T) {
	surface := NewSurface(nil)
	title := NewTitle(surface, "AAPL", "#333")
	if title.Text() != "AAPL" {
		t.Fatalf("Text() = %q; want AAPL", title.Text())
	}
	title.Remove()
	if surface.Len() != 0 {
		t.Fatalf("surface len = %d; want 0", surface.Len())
	}
}

func TestManagerAfterChartRemoved(t *testing.T) {
	src := newSource(t, []series.Point{series.Scalar{Time: 1, Value: 1}})
	m := NewManager(src, NewSurface(nil), KindMarker, Options{})
	src.chart.Remove()
	if n := m.Resync(); n != 0 {
		t.Fatalf("Resync() after remove = %d; want 0", n)
	}
}
