package headless

import (
	"errors"
	"math"
	"testing"

	"github.com/dgnsrekt/tv_panesync/internal/engine"
	"github.com/dgnsrekt/tv_panesync/internal/series"
)

func newChart(t *testing.T, n int) (*Chart, engine.Series) {
	t.Helper()
	ch, err := New().CreateChart(&engine.Container{ID: "c", Width: 865, Height: 300}, engine.ChartOptions{})
	if err != nil {
		t.Fatalf("CreateChart() error = %v", err)
	}
	s, err := ch.AddSeries(engine.GeometryLine)
	if err != nil {
		t.Fatalf("AddSeries() error = %v", err)
	}
	points := make([]series.Point, n)
	for i := range points {
		points[i] = series.Scalar{Time: series.Time(100 + i), Value: float64(i)}
	}
	s.SetData(points)
	return ch.(*Chart), s
}

func TestCreateChartDefaults(t *testing.T) {
	ch, _ := newChart(t, 0)
	if ch.PlotWidth() != 800 {
		t.Fatalf("PlotWidth() = %v; want 800", ch.PlotWidth())
	}
	if ch.Options().TimeAxisVisible() {
		t.Fatalf("time axis visible; want default hidden")
	}
	if ch.VisibleRange() != nil {
		t.Fatalf("VisibleRange() = %v; want nil before any range is set", ch.VisibleRange())
	}
}

func TestAddSeriesUnknownGeometry(t *testing.T) {
	ch, _ := newChart(t, 0)
	_, err := ch.AddSeries("PIE")
	var ug *engine.UnsupportedGeometryError
	if !errors.As(err, &ug) {
		t.Fatalf("AddSeries(PIE) error = %v; want UnsupportedGeometryError", err)
	}
}

func TestSetVisibleRangeEmitsOnChange(t *testing.T) {
	ch, _ := newChart(t, 10)
	var got []series.LogicalRange
	unsub := ch.SubscribeVisibleRangeChanged(func(r *series.LogicalRange) {
		got = append(got, *r)
	})
	ch.SetVisibleRange(series.LogicalRange{From: 0, To: 9})
	ch.SetVisibleRange(series.LogicalRange{From: 0, To: 9})
	ch.SetVisibleRange(series.LogicalRange{From: 2, To: 5})
	unsub()
	ch.SetVisibleRange(series.LogicalRange{From: 3, To: 5})
	if len(got) != 2 {
		t.Fatalf("range events = %v; want 2", got)
	}
}

func TestCoordinateConversions(t *testing.T) {
	ch, _ := newChart(t, 10)
	ch.SetVisibleRange(series.LogicalRange{From: 0, To: 9})
	// 800px over 10 bars.
	x, ok := ch.TimeToX(103)
	if !ok || x != 280 {
		t.Fatalf("TimeToX(103) = %v, %v; want 280, true", x, ok)
	}
	tm, ok := ch.XToTime(x)
	if !ok || tm != 103 {
		t.Fatalf("XToTime(%v) = %v, %v; want 103, true", x, tm, ok)
	}
	if _, ok := ch.TimeToX(999); ok {
		t.Fatalf("TimeToX(unknown) ok = true; want false")
	}
	if _, ok := ch.XToTime(-1); ok {
		t.Fatalf("XToTime(-1) ok = true; want false")
	}

	ch.SetVisibleRange(series.LogicalRange{From: 5, To: 9})
	if _, ok := ch.TimeToX(101); ok {
		t.Fatalf("TimeToX(off-screen) ok = true; want false")
	}
}

func TestPriceToY(t *testing.T) {
	ch, _ := newChart(t, 10)
	ch.SetVisibleRange(series.LogicalRange{From: 0, To: 9})
	top, ok := ch.PriceToY(9)
	if !ok || math.Abs(top-60) > 1e-9 {
		t.Fatalf("PriceToY(max) = %v, %v; want 60, true", top, ok)
	}
	bottom, ok := ch.PriceToY(0)
	if !ok || math.Abs(bottom-270) > 1e-9 {
		t.Fatalf("PriceToY(min) = %v, %v; want 270, true", bottom, ok)
	}
	if _, ok := ch.PriceToY(1000); ok {
		t.Fatalf("PriceToY(out of scale) ok = true; want false")
	}
}

func TestMoveCursorReportsMatches(t *testing.T) {
	ch, s := newChart(t, 10)
	data := s.Data()
	data[4] = series.Whitespace{Time: 104}
	ch.SetVisibleRange(series.LogicalRange{From: 0, To: 9})
	var events []engine.CursorEvent
	ch.SubscribeCursorMoved(func(evt engine.CursorEvent) { events = append(events, evt) })

	x3, _ := ch.TimeToX(103)
	x4, _ := ch.TimeToX(104)
	ch.MoveCursor(x3)
	ch.MoveCursor(x4)
	ch.LeaveCursor()
	if len(events) != 3 {
		t.Fatalf("cursor events = %d; want 3", len(events))
	}
	if len(events[0].Matches) != 1 || events[0].Matches[0].Point.PointTime() != 103 {
		t.Fatalf("event 0 = %+v; want a match at 103", events[0])
	}
	if len(events[1].Matches) != 0 || !events[1].HasX {
		t.Fatalf("event 1 = %+v; want no match with x", events[1])
	}
	if events[2].HasX || len(events[2].Matches) != 0 {
		t.Fatalf("event 2 = %+v; want empty", events[2])
	}
}

func TestCursorIndicator(t *testing.T) {
	ch, s := newChart(t, 3)
	ch.SetCursorIndicator(1.5, 101, s)
	ind, ok := ch.CursorIndicator()
	if !ok || ind.Price != 1.5 || ind.Time != 101 || ind.Series != s {
		t.Fatalf("CursorIndicator() = %+v, %v", ind, ok)
	}
	ch.ClearCursorIndicator()
	if _, ok := ch.CursorIndicator(); ok {
		t.Fatalf("indicator kept after clear")
	}
}

func TestRemove(t *testing.T) {
	ch, _ := newChart(t, 5)
	ch.SetVisibleRange(series.LogicalRange{From: 0, To: 4})
	calls := 0
	ch.SubscribeVisibleRangeChanged(func(*series.LogicalRange) { calls++ })
	ch.Remove()
	ch.Remove()
	ch.SetVisibleRange(series.LogicalRange{From: 1, To: 2})
	if calls != 0 || ch.VisibleRange() != nil || !ch.Removed() {
		t.Fatalf("removed chart still active: calls=%d range=%v", calls, ch.VisibleRange())
	}
	if _, err := ch.AddSeries(engine.GeometryLine); err == nil {
		t.Fatalf("AddSeries() on removed chart error = nil")
	}
}

func TestNonFiniteRangeIgnored(t *testing.T) {
	ch, _ := newChart(t, 10)
	ch.SetVisibleRange(series.LogicalRange{From: 0, To: 9})
	events := 0
	ch.SubscribeVisibleRangeChanged(func(*series.LogicalRange) { events++ })

	for _, r := range []series.LogicalRange{
		{From: math.NaN(), To: math.NaN()},
		{From: math.NaN(), To: math.NaN()},
		{From: 0, To: math.Inf(1)},
		{From: math.Inf(-1), To: 3},
	} {
		ch.SetVisibleRange(r)
	}
	if events != 0 {
		t.Fatalf("range events = %d; want 0 for non-finite ranges", events)
	}
	if got := ch.VisibleRange(); got == nil || *got != (series.LogicalRange{From: 0, To: 9}) {
		t.Fatalf("VisibleRange() = %v; want {0 9}", got)
	}
	if _, ok := ch.XToTime(math.NaN()); ok {
		t.Fatalf("XToTime(NaN) ok = true; want false")
	}
}

func TestNonFiniteSpacingHidesPoints(t *testing.T) {
	ch, _ := newChart(t, 10)
	// Bypasses SetVisibleRange to reach the coordinate math directly.
	ch.visible = &series.LogicalRange{From: math.NaN(), To: math.NaN()}
	for tm := series.Time(100); tm < 110; tm++ {
		if x, ok := ch.TimeToX(tm); ok {
			t.Fatalf("TimeToX(%d) = %v, true; want off-screen", tm, x)
		}
	}
	if _, ok := ch.XToTime(10); ok {
		t.Fatalf("XToTime(10) ok = true; want false")
	}
}
