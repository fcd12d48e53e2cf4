package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgnsrekt/tv_panesync/internal/chartsync"
	"github.com/dgnsrekt/tv_panesync/internal/engine/headless"
	"github.com/dgnsrekt/tv_panesync/internal/overlay"
	"github.com/dgnsrekt/tv_panesync/internal/relay"
	"github.com/dgnsrekt/tv_panesync/internal/series"
)

// GetRange returns a pane's visible range and the latest propagated range.
func (s *Service) GetRange(ctx context.Context, layoutID, paneID string) (RangeResult, error) {
	sess, err := s.lookup(layoutID)
	if err != nil {
		return RangeResult{}, err
	}
	defer sess.mu.Unlock()
	p, err := sess.pane(paneID)
	if err != nil {
		return RangeResult{}, err
	}
	return sess.rangeResult(p), nil
}

// SetRange scrolls a pane. The change propagates to every other pane before
// SetRange returns.
func (s *Service) SetRange(ctx context.Context, layoutID, paneID string, r series.LogicalRange) (RangeResult, error) {
	if err := r.Check(); err != nil {
		return RangeResult{}, chartsync.NewError(chartsync.CodeValidation, "invalid visible range", err)
	}
	sess, err := s.lookup(layoutID)
	if err != nil {
		return RangeResult{}, err
	}
	defer sess.mu.Unlock()
	p, err := sess.pane(paneID)
	if err != nil {
		return RangeResult{}, err
	}
	p.SetVisibleRange(r)
	s.emit(sess, relay.FeedOverlays, "overlays", sess.overlaySummary())
	slog.Debug("range set", "layout_id", sess.id, "pane", p.ID(), "from", r.From, "to", r.To)
	return sess.rangeResult(p), nil
}

func (sess *session) rangeResult(p *chartsync.Pane) RangeResult {
	out := RangeResult{
		Pane:      p.ID(),
		Range:     p.VisibleRange(),
		Panes:     make(map[string]*series.LogicalRange, len(sess.panes)),
		LastRange: sess.lastRange,
	}
	for _, other := range sess.panes {
		out.Panes[other.ID()] = other.VisibleRange()
	}
	return out
}

func (sess *session) overlaySummary() []OverlaySummary {
	out := make([]OverlaySummary, 0, len(sess.panes))
	for _, p := range sess.panes {
		sum := OverlaySummary{Pane: p.ID(), Elements: len(p.Overlays())}
		if m := p.Labels(); m != nil {
			sum.Labels = len(m.Elements())
		}
		if m := p.Markers(); m != nil {
			sum.Markers = len(m.Elements())
		}
		out = append(out, sum)
	}
	return out
}

// MoveCursor moves the pointer on a pane, or takes it off, and reports the
// cursor indicator of every pane once forwarding is done.
func (s *Service) MoveCursor(ctx context.Context, layoutID, paneID string, req CursorRequest) (CursorResult, error) {
	if req.X == nil && !req.Leave {
		return CursorResult{}, chartsync.NewError(chartsync.CodeValidation, "either x or leave is required", nil)
	}
	sess, err := s.lookup(layoutID)
	if err != nil {
		return CursorResult{}, err
	}
	defer sess.mu.Unlock()
	p, err := sess.pane(paneID)
	if err != nil {
		return CursorResult{}, err
	}
	ch, ok := p.Chart().(*headless.Chart)
	if !ok {
		return CursorResult{}, chartsync.NewError(chartsync.CodeConfiguration,
			fmt.Sprintf("pane %s cannot simulate a pointer", p.ID()), nil)
	}
	if req.Leave {
		ch.LeaveCursor()
	} else {
		ch.MoveCursor(*req.X)
	}

	out := CursorResult{Source: p.ID(), Panes: make([]PaneCursor, 0, len(sess.panes))}
	for _, other := range sess.panes {
		pc := PaneCursor{Pane: other.ID(), Source: other == p}
		if hc, ok := other.Chart().(*headless.Chart); ok {
			if ind, visible := hc.CursorIndicator(); visible {
				pc.Visible, pc.Price, pc.Time = true, ind.Price, ind.Time
			}
		}
		out.Panes = append(out.Panes, pc)
	}
	return out, nil
}

// Overlays returns the overlay elements currently drawn on a pane.
func (s *Service) Overlays(ctx context.Context, layoutID, paneID string) ([]overlay.Element, error) {
	sess, err := s.lookup(layoutID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()
	p, err := sess.pane(paneID)
	if err != nil {
		return nil, err
	}
	return p.Overlays(), nil
}

// Edges lists the layout's directed synchronization edges.
func (s *Service) Edges(ctx context.Context, layoutID string) ([]EdgeInfo, error) {
	sess, err := s.lookup(layoutID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()
	out := []EdgeInfo{}
	if sess.coord != nil {
		for _, e := range sess.coord.Edges() {
			out = append(out, EdgeInfo{Source: e.Source.ID(), Target: e.Target.ID()})
		}
	}
	return out, nil
}

// DeletePane tears down one pane and rewires the remaining panes.
func (s *Service) DeletePane(ctx context.Context, layoutID, paneID string) (LayoutInfo, error) {
	sess, err := s.lookup(layoutID)
	if err != nil {
		return LayoutInfo{}, err
	}
	defer sess.mu.Unlock()
	p, err := sess.pane(paneID)
	if err != nil {
		return LayoutInfo{}, err
	}
	if sess.coord != nil {
		sess.coord.Detach()
		sess.coord = nil
	}
	p.Close()
	remaining := make([]*chartsync.Pane, 0, len(sess.panes)-1)
	for _, other := range sess.panes {
		if other != p {
			remaining = append(remaining, other)
		}
	}
	sess.panes = remaining
	coord, err := s.coordinate(sess, remaining)
	if err != nil {
		return LayoutInfo{}, err
	}
	sess.coord = coord
	s.emit(sess, relay.FeedTeardown, "teardown", map[string]any{"panes": []string{p.ID()}, "layout": false})
	slog.Info("pane deleted", "layout_id", sess.id, "pane", p.ID(), "remaining", len(remaining))
	return sess.info(), nil
}
