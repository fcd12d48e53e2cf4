package chartsync

import (
	"log/slog"

	"github.com/dgnsrekt/tv_panesync/internal/series"
)

// Edge is a directed synchronization relation from Source to Target.
type Edge struct {
	Source *Pane
	Target *Pane
}

// Combinations returns every ordered pair of distinct panes: for i<j the
// pair (i,j) followed by (j,i).
func Combinations(panes []*Pane) []Edge {
	var edges []Edge
	for i := 0; i < len(panes); i++ {
		for j := i + 1; j < len(panes); j++ {
			edges = append(edges, Edge{Source: panes[i], Target: panes[j]})
			edges = append(edges, Edge{Source: panes[j], Target: panes[i]})
		}
	}
	return edges
}

// RangeObserver is told about every range pushed along an edge.
type RangeObserver func(e Edge, r series.LogicalRange)

// ViewportSynchronizer forwards visible-range changes along edges. One lock
// covers all of its edges: while a range is being pushed to a target, the
// range-changed event the target raises in turn is dropped, which is what
// stops A→B→A ping-pong.
type ViewportSynchronizer struct {
	syncing  bool
	observer RangeObserver
}

// NewViewportSynchronizer returns a synchronizer with its lock released.
func NewViewportSynchronizer(observer RangeObserver) *ViewportSynchronizer {
	return &ViewportSynchronizer{observer: observer}
}

// Link subscribes to the edge source's range-changed event. The returned
// func releases the subscription.
func (v *ViewportSynchronizer) Link(e Edge) func() {
	return e.Source.OnVisibleRangeChanged(func(r *series.LogicalRange) {
		v.propagate(e, r)
	})
}

// Syncing reports whether a propagation is in progress.
func (v *ViewportSynchronizer) Syncing() bool { return v.syncing }

func (v *ViewportSynchronizer) propagate(e Edge, r *series.LogicalRange) {
	if v.syncing {
		return
	}
	if r == nil || e.Target.Closed() {
		return
	}
	v.syncing = true
	defer func() { v.syncing = false }()

	slog.Debug("viewport propagate",
		"source", e.Source.ID(),
		"target", e.Target.ID(),
		"from", r.From,
		"to", r.To,
	)
	e.Target.SetVisibleRange(*r)
	if v.observer != nil {
		v.observer(e, *r)
	}
}
