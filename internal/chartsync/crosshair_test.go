package chartsync

import (
	"testing"

	"github.com/dgnsrekt/tv_panesync/internal/engine"
	"github.com/dgnsrekt/tv_panesync/internal/engine/headless"
	"github.com/dgnsrekt/tv_panesync/internal/series"
)

func TestResolveCursorPrecedence(t *testing.T) {
	f := headless.New()
	src := newPane(t, f, "src", scalarPoints(20), DisplayOptions{})
	dst := newPane(t, f, "dst", scalarPoints(20), DisplayOptions{})
	dstChart := headlessChart(t, dst)
	matched := series.Scalar{Time: 7, Value: 42}

	cases := []struct {
		name       string
		evt        engine.CursorEvent
		wantAction CursorAction
		wantInd    Indicator
		wantErr    bool
	}{
		{
			name:       "matched point wins over screen x",
			evt:        engine.CursorEvent{Matches: []engine.SeriesMatch{{Series: src.Series(), Point: matched}}, X: 10, HasX: true},
			wantAction: CursorSet,
			wantInd:    Indicator{Price: 42, Time: 7},
		},
		{
			name:       "ohlc match uses close",
			evt:        engine.CursorEvent{Matches: []engine.SeriesMatch{{Point: series.OHLC{Time: 3, Open: 1, High: 9, Low: 0, Close: 5}}}},
			wantAction: CursorSet,
			wantInd:    Indicator{Price: 5, Time: 3},
		},
		{
			name:       "whitespace match falls through to screen x",
			evt:        engine.CursorEvent{Matches: []engine.SeriesMatch{{Point: series.Whitespace{Time: 3}}}, X: 20, HasX: true},
			wantAction: CursorSet,
			wantInd:    Indicator{Price: 0, Time: mustXToTime(t, dstChart, 20), Approximate: true},
		},
		{
			name:       "screen x outside target",
			evt:        engine.CursorEvent{X: -5, HasX: true},
			wantAction: CursorClear,
			wantErr:    true,
		},
		{
			name:       "nothing available",
			evt:        engine.CursorEvent{},
			wantAction: CursorClear,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			action, ind, err := ResolveCursor(tc.evt, dst)
			if tc.wantErr != IsCoordinateResolution(err) {
				t.Fatalf("ResolveCursor() error = %v; want coordinate error %v", err, tc.wantErr)
			}
			if action != tc.wantAction {
				t.Fatalf("ResolveCursor() action = %v; want %v", action, tc.wantAction)
			}
			if action == CursorSet && ind != tc.wantInd {
				t.Fatalf("ResolveCursor() indicator = %+v; want %+v", ind, tc.wantInd)
			}
		})
	}
}

func mustXToTime(t *testing.T, ch *headless.Chart, x float64) series.Time {
	t.Helper()
	tm, ok := ch.XToTime(x)
	if !ok {
		t.Fatalf("XToTime(%v) unavailable", x)
	}
	return tm
}

func TestResolveCursorClosedTargetIsSkipped(t *testing.T) {
	f := headless.New()
	dst := newPane(t, f, "dst", scalarPoints(5), DisplayOptions{})
	dst.Close()
	action, _, err := ResolveCursor(engine.CursorEvent{X: 3, HasX: true}, dst)
	if err != nil || action != CursorSkip {
		t.Fatalf("ResolveCursor() = %v, %v; want skip, nil", action, err)
	}
}

func TestCrosshairForwardsAcrossPanes(t *testing.T) {
	f := headless.New()
	base := scalarPoints(50)
	a := newPane(t, f, "a", base, DisplayOptions{})
	b := newPane(t, f, "b", sparseAligned(base, 5), DisplayOptions{})
	c := newPane(t, f, "c", base, DisplayOptions{})
	var actions []CursorAction
	if _, err := NewCoordinator([]*Pane{a, b, c}, WithCursorObserver(func(e Edge, action CursorAction, ind Indicator) {
		actions = append(actions, action)
	})); err != nil {
		t.Fatalf("NewCoordinator() error = %v", err)
	}
	aChart, bChart, cChart := headlessChart(t, a), headlessChart(t, b), headlessChart(t, c)

	x, ok := aChart.TimeToX(12)
	if !ok {
		t.Fatalf("TimeToX(12) unavailable")
	}
	aChart.MoveCursor(x)
	want := base[12].(series.Scalar)
	for name, ch := range map[string]*headless.Chart{"b": bChart, "c": cChart} {
		ind, ok := ch.CursorIndicator()
		if !ok {
			t.Fatalf("%s has no indicator", name)
		}
		if ind.Price != want.Value || ind.Time != want.Time {
			t.Fatalf("%s indicator = %+v; want price %v time %d", name, ind, want.Value, want.Time)
		}
	}
	if _, ok := aChart.CursorIndicator(); ok {
		t.Fatalf("source pane got its own indicator")
	}

	// b has whitespace at time 12: the cursor over b yields no match, so a
	// and c fall back to the time under b's screen x with a zero price.
	bx, _ := bChart.TimeToX(12)
	bChart.MoveCursor(bx)
	ind, ok := cChart.CursorIndicator()
	if !ok || ind.Time != 12 || ind.Price != 0 {
		t.Fatalf("c indicator = %+v, %v; want time 12 price 0", ind, ok)
	}

	bChart.LeaveCursor()
	if _, ok := cChart.CursorIndicator(); ok {
		t.Fatalf("c indicator not cleared after cursor left b")
	}
	if len(actions) != 6 {
		t.Fatalf("observed actions = %d; want 6", len(actions))
	}
}

func TestCrosshairUnresolvableXClearsTarget(t *testing.T) {
	f := headless.New()
	a := newPane(t, f, "a", sparseAligned(scalarPoints(30), 5), DisplayOptions{})
	b := newPane(t, f, "b", scalarPoints(10), DisplayOptions{})
	var bActions []CursorAction
	if _, err := NewCoordinator([]*Pane{a, b}, WithCursorObserver(func(e Edge, action CursorAction, ind Indicator) {
		if e.Target == b {
			bActions = append(bActions, action)
		}
	})); err != nil {
		t.Fatalf("NewCoordinator() error = %v", err)
	}
	aChart, bChart := headlessChart(t, a), headlessChart(t, b)
	a.SetVisibleRange(series.LogicalRange{From: 0, To: 29})
	bChart.SetCursorIndicator(1, 1, b.Series())

	// a is whitespace at 26 and b has no bar there, so the cursor x cannot be
	// converted in b's space.
	x, ok := aChart.TimeToX(26)
	if !ok {
		t.Fatalf("TimeToX(26) unavailable")
	}
	aChart.MoveCursor(x)
	if _, ok := bChart.CursorIndicator(); ok {
		t.Fatalf("b indicator kept; want cleared")
	}
	if len(bActions) != 1 || bActions[0] != CursorClear {
		t.Fatalf("b actions = %v; want [clear]", bActions)
	}
}
