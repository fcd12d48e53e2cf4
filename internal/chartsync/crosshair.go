package chartsync

import (
	"log/slog"

	"github.com/dgnsrekt/tv_panesync/internal/engine"
	"github.com/dgnsrekt/tv_panesync/internal/series"
)

// CursorAction is what a cursor event does to a target pane.
type CursorAction int

const (
	// CursorSkip leaves the target untouched.
	CursorSkip CursorAction = iota
	// CursorSet moves the target's indicator.
	CursorSet
	// CursorClear hides the target's indicator.
	CursorClear
)

func (a CursorAction) String() string {
	switch a {
	case CursorSet:
		return "set"
	case CursorClear:
		return "clear"
	default:
		return "skip"
	}
}

// Indicator is the cursor position forwarded to a target pane.
type Indicator struct {
	Price float64     `json:"price"`
	Time  series.Time `json:"time"`
	// Approximate is set when the time was derived from the cursor's screen
	// x rather than from a plotted point.
	Approximate bool `json:"approximate"`
}

// CursorObserver is told about every cursor action applied along an edge.
type CursorObserver func(e Edge, action CursorAction, ind Indicator)

// CrosshairSynchronizer forwards cursor moves along edges.
type CrosshairSynchronizer struct {
	observer CursorObserver
}

// NewCrosshairSynchronizer returns a crosshair synchronizer.
func NewCrosshairSynchronizer(observer CursorObserver) *CrosshairSynchronizer {
	return &CrosshairSynchronizer{observer: observer}
}

// Link subscribes to the edge source's cursor-moved event. The returned
// func releases the subscription.
func (c *CrosshairSynchronizer) Link(e Edge) func() {
	return e.Source.OnCursorMoved(func(evt engine.CursorEvent) {
		c.forward(e, evt)
	})
}

func (c *CrosshairSynchronizer) forward(e Edge, evt engine.CursorEvent) {
	action, ind, err := ResolveCursor(evt, e.Target)
	if err != nil {
		slog.Debug("cursor resolution failed, clearing target", "target", e.Target.ID(), "error", err)
		action = CursorClear
	}
	ch := e.Target.Chart()
	if ch == nil {
		return
	}
	switch action {
	case CursorSet:
		ch.SetCursorIndicator(ind.Price, ind.Time, e.Target.Series())
	case CursorClear:
		ch.ClearCursorIndicator()
	case CursorSkip:
		return
	}
	if c.observer != nil {
		c.observer(e, action, ind)
	}
}

// ResolveCursor decides what a cursor event on a source pane means for
// target. The order is fixed: a plotted point under the cursor wins, then a
// time derived from the cursor's screen x in the target's space (with price
// zero), and otherwise the target's indicator is cleared. A screen x the
// target cannot convert yields a CoordinateResolutionError.
func ResolveCursor(evt engine.CursorEvent, target *Pane) (CursorAction, Indicator, error) {
	if target == nil || target.Closed() {
		return CursorSkip, Indicator{}, nil
	}
	if p, ok := matchedPoint(evt); ok {
		if target.Series() == nil {
			return CursorSkip, Indicator{}, nil
		}
		price, _ := series.Price(p)
		return CursorSet, Indicator{Price: price, Time: p.PointTime()}, nil
	}
	if evt.HasX {
		t, ok := target.Chart().XToTime(evt.X)
		if !ok {
			return CursorClear, Indicator{}, NewError(CodeCoordinateResolution, "cursor x has no time on target", nil)
		}
		if target.Series() == nil {
			return CursorSkip, Indicator{}, nil
		}
		return CursorSet, Indicator{Price: 0, Time: t, Approximate: true}, nil
	}
	return CursorClear, Indicator{}, nil
}

// matchedPoint picks the last matched series point that carries a price.
func matchedPoint(evt engine.CursorEvent) (series.Point, bool) {
	var found series.Point
	for _, m := range evt.Matches {
		if m.Point == nil {
			continue
		}
		if _, ok := series.Price(m.Point); ok {
			found = m.Point
		}
	}
	return found, found != nil
}
