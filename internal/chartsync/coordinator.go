package chartsync

import (
	"fmt"
	"log/slog"
)

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithRangeObserver reports every propagated visible range.
func WithRangeObserver(fn RangeObserver) Option {
	return func(c *Coordinator) { c.onRange = fn }
}

// WithCursorObserver reports every forwarded cursor action.
func WithCursorObserver(fn CursorObserver) Option {
	return func(c *Coordinator) { c.onCursor = fn }
}

// Coordinator synchronizes a fixed set of panes. Its edges never change;
// to add or drop a pane build a new Coordinator over the new set.
type Coordinator struct {
	panes     []*Pane
	edges     []Edge
	viewport  *ViewportSynchronizer
	crosshair *CrosshairSynchronizer

	onRange  RangeObserver
	onCursor CursorObserver
	releases []func()
}

// NewCoordinator wires every ordered pair of panes for viewport and cursor
// synchronization. A nil slice or a nil pane is rejected before anything is
// wired; an empty or single-pane slice yields no edges.
func NewCoordinator(panes []*Pane, opts ...Option) (*Coordinator, error) {
	if panes == nil {
		return nil, NewError(CodeInvalidArgument, "panes are required", nil)
	}
	for i, p := range panes {
		if p == nil {
			return nil, NewError(CodeInvalidArgument, fmt.Sprintf("pane %d is nil", i), nil)
		}
	}

	c := &Coordinator{panes: append([]*Pane(nil), panes...)}
	for _, opt := range opts {
		opt(c)
	}
	c.viewport = NewViewportSynchronizer(c.onRange)
	c.crosshair = NewCrosshairSynchronizer(c.onCursor)
	c.edges = Combinations(c.panes)
	for _, e := range c.edges {
		c.releases = append(c.releases, c.viewport.Link(e), c.crosshair.Link(e))
	}
	slog.Debug("coordinator wired", "panes", len(c.panes), "edges", len(c.edges))
	return c, nil
}

// Panes returns the synchronized panes in wiring order.
func (c *Coordinator) Panes() []*Pane { return append([]*Pane(nil), c.panes...) }

// Edges returns the directed synchronization relation.
func (c *Coordinator) Edges() []Edge { return append([]Edge(nil), c.edges...) }

// Viewport returns the range synchronizer.
func (c *Coordinator) Viewport() *ViewportSynchronizer { return c.viewport }

// Crosshair returns the cursor synchronizer.
func (c *Coordinator) Crosshair() *CrosshairSynchronizer { return c.crosshair }

// Detach releases the coordinator's own subscriptions so a replacement can be
// wired over the same panes. Pane teardown does not need it: closing a pane
// drops every subscription registered on it.
func (c *Coordinator) Detach() {
	for _, release := range c.releases {
		release()
	}
	c.releases = nil
}
