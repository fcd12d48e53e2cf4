package render

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"github.com/dgnsrekt/tv_panesync/internal/chartsync"
	"github.com/dgnsrekt/tv_panesync/internal/engine"
	"github.com/dgnsrekt/tv_panesync/internal/engine/headless"
	"github.com/dgnsrekt/tv_panesync/internal/overlay"
	"github.com/dgnsrekt/tv_panesync/internal/series"
)

func testPane(t *testing.T, id string, g engine.Geometry, points []series.Point, m overlay.Measurer) *chartsync.Pane {
	t.Helper()
	p, err := chartsync.NewPane(headless.New(),
		chartsync.ChartConfig{Container: &engine.Container{ID: id, Width: 400, Height: 200}},
		chartsync.SeriesConfig{Data: points, Title: id},
		chartsync.DisplayOptions{Geometry: g, ShowLabels: true, ShowMarkers: true, Measurer: m},
	)
	if err != nil {
		t.Fatalf("NewPane(%s) error = %v", id, err)
	}
	t.Cleanup(p.Close)
	return p
}

func TestLayoutRendersEveryGeometry(t *testing.T) {
	m, err := NewFontMeasurer()
	if err != nil {
		t.Fatalf("NewFontMeasurer() error = %v", err)
	}
	scalars := make([]series.Point, 20)
	bars := make([]series.Point, 20)
	for i := range scalars {
		v := float64(i%7) + 1
		scalars[i] = series.Scalar{Time: series.Time(i * 86400), Value: v}
		bars[i] = series.OHLC{Time: series.Time(i * 86400), Open: v, High: v + 2, Low: v - 1, Close: v + float64(i%2*2-1)}
	}
	scalars[5] = series.Whitespace{Time: 5 * 86400}

	var panes []Pane
	for _, g := range []engine.Geometry{
		engine.GeometryArea, engine.GeometryLine, engine.GeometryStepLine,
		engine.GeometryBaseline, engine.GeometryHistogram,
	} {
		panes = append(panes, testPane(t, string(g), g, scalars, m))
	}
	panes = append(panes,
		testPane(t, "bar", engine.GeometryBar, bars, m),
		testPane(t, "candle", engine.GeometryCandlestick, bars, m),
	)
	candle := panes[len(panes)-1].(*chartsync.Pane)
	candle.Chart().SetCursorIndicator(3, 3*86400, candle.Series())

	img, err := Layout(panes)
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	if img.Width != 400 || img.Height != 200*len(panes) {
		t.Fatalf("Layout() size = %dx%d; want 400x%d", img.Width, img.Height, 200*len(panes))
	}
	decoded, err := png.Decode(bytes.NewReader(img.PNG))
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != img.Width || b.Dy() != img.Height {
		t.Fatalf("decoded bounds = %v", b)
	}
}

func TestLayoutSkipsClosedPanes(t *testing.T) {
	points := []series.Point{series.Scalar{Time: 1, Value: 1}, series.Scalar{Time: 2, Value: 2}}
	a := testPane(t, "a", engine.GeometryLine, points, nil)
	b := testPane(t, "b", engine.GeometryLine, points, nil)
	b.Close()
	img, err := Layout([]Pane{a, b})
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	if img.Height != 200 {
		t.Fatalf("Layout() height = %d; want 200", img.Height)
	}
	a.Close()
	if _, err := Layout([]Pane{a, b}); err == nil {
		t.Fatalf("Layout(all closed) error = nil; want error")
	}
}

func TestFontMeasurer(t *testing.T) {
	m, err := NewFontMeasurer()
	if err != nil {
		t.Fatalf("NewFontMeasurer() error = %v", err)
	}
	short := m.Measure(overlay.KindLabel, "1")
	long := m.Measure(overlay.KindLabel, "1234.56")
	if long.W <= short.W || short.H != long.H || short.W <= 2*labelPadding {
		t.Fatalf("Measure() short=%+v long=%+v", short, long)
	}
	if got := m.Measure(overlay.KindMarker, "ignored"); got != (overlay.Size{W: overlay.MarkerSize, H: overlay.MarkerSize}) {
		t.Fatalf("Measure(marker) = %+v", got)
	}
}

func TestParseColor(t *testing.T) {
	cases := []struct {
		in   string
		want color.RGBA
	}{
		{"white", color.RGBA{255, 255, 255, 255}},
		{"#fff", color.RGBA{255, 255, 255, 255}},
		{"#2962FF", color.RGBA{0x29, 0x62, 0xff, 0xff}},
		{"#00000080", color.RGBA{0, 0, 0, 0x80}},
		{"rgba(0, 0, 0, 0)", color.RGBA{}},
		{"rgb(10, 20, 30)", color.RGBA{10, 20, 30, 255}},
	}
	for _, tc := range cases {
		got, err := parseColor(tc.in)
		if err != nil || got != tc.want {
			t.Fatalf("parseColor(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
	}
	for _, bad := range []string{"#12", "rgba(1,2)", "hsl(1,2,3)", "rgb(300,0,0)"} {
		if _, err := parseColor(bad); err == nil {
			t.Fatalf("parseColor(%q) error = nil", bad)
		}
	}
	if got := colorOr("nonsense", defaultLine); got != defaultLine {
		t.Fatalf("colorOr() = %v; want fallback", got)
	}
}
