package chartsync

import (
	"testing"

	"github.com/dgnsrekt/tv_panesync/internal/engine"
	"github.com/dgnsrekt/tv_panesync/internal/engine/headless"
	"github.com/dgnsrekt/tv_panesync/internal/series"
)

func scalarPoints(n int) []series.Point {
	points := make([]series.Point, n)
	for i := range points {
		points[i] = series.Scalar{Time: series.Time(i), Value: float64(i%13) + 1}
	}
	return points
}

// sparseAligned keeps a value on every step-th slot of reference and
// whitespace everywhere else.
func sparseAligned(reference []series.Point, step int) []series.Point {
	var sparse []series.Point
	for i, p := range reference {
		if i%step == 0 {
			sparse = append(sparse, series.Scalar{Time: p.PointTime(), Value: float64(i) * 1.5})
		}
	}
	return series.AlignTo(reference, sparse)
}

func newPane(t *testing.T, f engine.Factory, id string, data []series.Point, display DisplayOptions) *Pane {
	t.Helper()
	p, err := NewPane(f,
		ChartConfig{Container: &engine.Container{ID: id, Width: 865, Height: 300}},
		SeriesConfig{Data: data, Title: id},
		display,
	)
	if err != nil {
		t.Fatalf("NewPane(%s) error = %v", id, err)
	}
	t.Cleanup(p.Close)
	return p
}

func headlessChart(t *testing.T, p *Pane) *headless.Chart {
	t.Helper()
	ch, ok := p.Chart().(*headless.Chart)
	if !ok {
		t.Fatalf("Chart() = %T; want *headless.Chart", p.Chart())
	}
	return ch
}
