// Package service hosts synchronized layouts: it builds panes from layout
// definitions, keeps their coordinators wired and serializes every operation
// on a layout.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dgnsrekt/tv_panesync/internal/chartsync"
	"github.com/dgnsrekt/tv_panesync/internal/engine"
	"github.com/dgnsrekt/tv_panesync/internal/engine/headless"
	"github.com/dgnsrekt/tv_panesync/internal/layout"
	"github.com/dgnsrekt/tv_panesync/internal/overlay"
	"github.com/dgnsrekt/tv_panesync/internal/relay"
	"github.com/dgnsrekt/tv_panesync/internal/series"
	"github.com/dgnsrekt/tv_panesync/internal/snapshot"
	"github.com/dgnsrekt/tv_panesync/internal/storage"
	"github.com/google/uuid"
)

// Capturer screenshots an HTML page.
type Capturer interface {
	Capture(ctx context.Context, html []byte, width, height int) ([]byte, error)
}

// Options are the collaborators of a Service. Only Loader and Snapshots are
// required.
type Options struct {
	Catalog   *layout.Catalog
	Loader    *storage.SeriesLoader
	Snapshots *snapshot.Store
	Journal   *storage.Journal
	Publisher *relay.Publisher
	Capturer  Capturer
	Measurer  overlay.Measurer
}

// Service owns every live layout.
type Service struct {
	opts Options

	mu      sync.RWMutex
	layouts map[string]*session
}

// session is one live layout. Its mutex serializes all access to the panes
// and coordinator, including the observer callbacks they trigger.
type session struct {
	mu        sync.Mutex
	id        string
	def       layout.Definition
	createdAt time.Time
	panes     []*chartsync.Pane
	formats   map[string]string
	coord     *chartsync.Coordinator
	lastRange *RangeEvent
	deleted   bool
}

// New creates a service.
func New(opts Options) *Service {
	if opts.Catalog == nil {
		opts.Catalog = &layout.Catalog{}
	}
	return &Service{opts: opts, layouts: make(map[string]*session)}
}

func requireNonEmpty(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return chartsync.NewError(chartsync.CodeValidation, fieldName+" is required", nil)
	}
	return nil
}

// Catalog lists the layout names that can be created by name.
func (s *Service) Catalog(ctx context.Context) []string {
	return s.opts.Catalog.Names()
}

// CreateLayout builds every pane of a definition and wires them together.
func (s *Service) CreateLayout(ctx context.Context, req CreateRequest) (LayoutInfo, error) {
	var def layout.Definition
	if req.Definition != nil {
		def = *req.Definition
	} else {
		if err := requireNonEmpty(req.Name, "name"); err != nil {
			return LayoutInfo{}, err
		}
		found, ok := s.opts.Catalog.Find(strings.TrimSpace(req.Name))
		if !ok {
			return LayoutInfo{}, chartsync.NewError(chartsync.CodeLayoutNotFound,
				fmt.Sprintf("no layout named %q", req.Name), nil)
		}
		def = found
	}
	if err := def.Validate(); err != nil {
		return LayoutInfo{}, chartsync.NewError(chartsync.CodeValidation, err.Error(), nil)
	}

	sess := &session{
		id:        uuid.New().String(),
		def:       def,
		createdAt: time.Now().UTC(),
		formats:   make(map[string]string, len(def.Panes)),
	}
	panes, err := s.buildPanes(def)
	if err != nil {
		return LayoutInfo{}, err
	}
	sess.panes = panes
	for _, ps := range def.Panes {
		sess.formats[ps.ID] = ps.Format
	}
	coord, err := s.coordinate(sess, panes)
	if err != nil {
		closeAll(panes)
		return LayoutInfo{}, err
	}
	sess.coord = coord

	s.mu.Lock()
	s.layouts[sess.id] = sess
	s.mu.Unlock()

	sess.mu.Lock()
	defer sess.mu.Unlock()
	info := sess.info()
	s.emit(sess, relay.FeedLayout, "created", info)
	slog.Info("layout created", "layout_id", sess.id, "name", def.Name, "panes", len(panes), "edges", info.Edges)
	return info, nil
}

func (s *Service) buildPanes(def layout.Definition) ([]*chartsync.Pane, error) {
	var (
		panes     []*chartsync.Pane
		reference []series.Point
	)
	factory := headless.New()
	base := engine.DefaultChartOptions().Merge(def.Chart)
	for i, ps := range def.Panes {
		points, err := s.loadPoints(ps)
		if err != nil {
			closeAll(panes)
			return nil, chartsync.NewError(chartsync.CodeValidation, fmt.Sprintf("pane %s data", ps.ID), err)
		}
		if i == 0 {
			reference = points
		} else if ps.Align {
			points = series.AlignTo(reference, points)
		}
		format, err := ps.Formatter()
		if err != nil {
			closeAll(panes)
			return nil, chartsync.NewError(chartsync.CodeValidation, fmt.Sprintf("pane %s", ps.ID), err)
		}
		opts := base
		if i == len(def.Panes)-1 {
			visible := true
			opts.TimeScale.Visible = &visible
		}
		seriesOpts := ps.Series
		seriesOpts.Formatter = format

		p, err := chartsync.NewPane(factory,
			chartsync.ChartConfig{
				Container: &engine.Container{ID: ps.ID, Width: def.Width, Height: ps.HeightOr(def.PaneHeight)},
				Options:   opts,
			},
			chartsync.SeriesConfig{Data: points, Options: seriesOpts, Title: ps.Title, VisibleRange: ps.VisibleRange},
			chartsync.DisplayOptions{
				Geometry:    ps.GeometryOrDefault(),
				ShowLabels:  ps.Labels,
				ShowMarkers: ps.Markers,
				Measurer:    s.opts.Measurer,
			},
		)
		if err != nil {
			closeAll(panes)
			return nil, err
		}
		panes = append(panes, p)
	}
	return panes, nil
}

func (s *Service) loadPoints(ps layout.PaneSpec) ([]series.Point, error) {
	if len(ps.Points) > 0 {
		return storage.Decode(ps.Points)
	}
	if s.opts.Loader == nil {
		return nil, fmt.Errorf("no data directory configured for %s", ps.Data)
	}
	return s.opts.Loader.Load(ps.Data)
}

// coordinate wires panes with observers that report to sess. Observers run
// inside whichever operation holds sess.mu.
func (s *Service) coordinate(sess *session, panes []*chartsync.Pane) (*chartsync.Coordinator, error) {
	return chartsync.NewCoordinator(panes,
		chartsync.WithRangeObserver(func(e chartsync.Edge, r series.LogicalRange) {
			evt := &RangeEvent{Source: e.Source.ID(), Target: e.Target.ID(), Range: r, At: time.Now().UTC()}
			sess.lastRange = evt
			s.emit(sess, relay.FeedRange, "range", evt)
		}),
		chartsync.WithCursorObserver(func(e chartsync.Edge, action chartsync.CursorAction, ind chartsync.Indicator) {
			s.emit(sess, relay.FeedCursor, "cursor", CursorEvent{
				Source:    e.Source.ID(),
				Target:    e.Target.ID(),
				Action:    action.String(),
				Indicator: ind,
			})
		}),
	)
}

// emit publishes to the relay and appends to the journal.
func (s *Service) emit(sess *session, feed, kind string, v any) {
	s.opts.Publisher.Publish(feed, sess.id, v)
	if s.opts.Journal == nil {
		return
	}
	if err := s.opts.Journal.Record(storage.JournalEntry{Layout: sess.id, Kind: kind, Data: v}); err != nil {
		slog.Debug("journal record failed", "layout_id", sess.id, "kind", kind, "error", err)
	}
}

func closeAll(panes []*chartsync.Pane) {
	for _, p := range panes {
		p.Close()
	}
}

// lookup returns the session with its mutex held. Callers must unlock.
func (s *Service) lookup(layoutID string) (*session, error) {
	if err := requireNonEmpty(layoutID, "layout id"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	sess, ok := s.layouts[strings.TrimSpace(layoutID)]
	s.mu.RUnlock()
	if !ok {
		return nil, chartsync.NewError(chartsync.CodeLayoutNotFound, fmt.Sprintf("layout %s not found", layoutID), nil)
	}
	sess.mu.Lock()
	if sess.deleted {
		sess.mu.Unlock()
		return nil, chartsync.NewError(chartsync.CodeLayoutNotFound, fmt.Sprintf("layout %s not found", layoutID), nil)
	}
	return sess, nil
}

func (sess *session) pane(paneID string) (*chartsync.Pane, error) {
	paneID = strings.TrimSpace(paneID)
	for _, p := range sess.panes {
		if p.ID() == paneID && !p.Closed() {
			return p, nil
		}
	}
	return nil, chartsync.NewError(chartsync.CodePaneNotFound,
		fmt.Sprintf("pane %q not found in layout %s", paneID, sess.id), nil)
}

func (sess *session) info() LayoutInfo {
	info := LayoutInfo{
		ID:        sess.id,
		Name:      sess.def.Name,
		CreatedAt: sess.createdAt,
		Panes:     make([]PaneInfo, 0, len(sess.panes)),
		LastRange: sess.lastRange,
	}
	if sess.coord != nil {
		info.Edges = len(sess.coord.Edges())
	}
	for _, p := range sess.panes {
		info.Panes = append(info.Panes, paneInfo(p))
	}
	return info
}

func paneInfo(p *chartsync.Pane) PaneInfo {
	info := PaneInfo{
		ID:           p.ID(),
		Title:        p.Title(),
		Geometry:     string(p.Geometry()),
		Points:       len(p.Points()),
		VisibleRange: p.VisibleRange(),
		Labels:       p.Labels() != nil,
		Markers:      p.Markers() != nil,
		Overlays:     len(p.Overlays()),
	}
	if c := p.Container(); c != nil {
		info.Width, info.Height = c.Width, c.Height
	}
	return info
}

// ListLayouts returns every live layout, oldest first.
func (s *Service) ListLayouts(ctx context.Context) []LayoutInfo {
	s.mu.RLock()
	sessions := make([]*session, 0, len(s.layouts))
	for _, sess := range s.layouts {
		sessions = append(sessions, sess)
	}
	s.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].createdAt.Before(sessions[j].createdAt)
	})
	out := make([]LayoutInfo, 0, len(sessions))
	for _, sess := range sessions {
		sess.mu.Lock()
		if !sess.deleted {
			out = append(out, sess.info())
		}
		sess.mu.Unlock()
	}
	return out
}

// GetLayout describes one layout.
func (s *Service) GetLayout(ctx context.Context, layoutID string) (LayoutInfo, error) {
	sess, err := s.lookup(layoutID)
	if err != nil {
		return LayoutInfo{}, err
	}
	defer sess.mu.Unlock()
	return sess.info(), nil
}

// DeleteLayout tears down every pane of a layout.
func (s *Service) DeleteLayout(ctx context.Context, layoutID string) error {
	sess, err := s.lookup(layoutID)
	if err != nil {
		return err
	}
	defer sess.mu.Unlock()
	sess.deleted = true
	s.mu.Lock()
	delete(s.layouts, sess.id)
	s.mu.Unlock()

	if sess.coord != nil {
		sess.coord.Detach()
	}
	ids := make([]string, 0, len(sess.panes))
	for _, p := range sess.panes {
		ids = append(ids, p.ID())
	}
	closeAll(sess.panes)
	sess.panes = nil
	s.emit(sess, relay.FeedTeardown, "teardown", map[string]any{"panes": ids, "layout": true})
	if s.opts.Journal != nil {
		if err := s.opts.Journal.CloseLayout(sess.id); err != nil {
			slog.Debug("journal close failed", "layout_id", sess.id, "error", err)
		}
	}
	slog.Info("layout deleted", "layout_id", sess.id, "panes", len(ids))
	return nil
}

// Close tears down every layout.
func (s *Service) Close() {
	for _, info := range s.ListLayouts(context.Background()) {
		if err := s.DeleteLayout(context.Background(), info.ID); err != nil && !chartsync.HasCode(err, chartsync.CodeLayoutNotFound) {
			slog.Warn("layout teardown failed", "layout_id", info.ID, "error", err)
		}
	}
}

func snapshotErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, snapshot.ErrNotFound):
		return chartsync.NewError(chartsync.CodeSnapshotNotFound, err.Error(), nil)
	case errors.Is(err, snapshot.ErrInvalidID):
		return chartsync.NewError(chartsync.CodeValidation, err.Error(), nil)
	default:
		return chartsync.NewError(chartsync.CodeRenderFailure, "snapshot store", err)
	}
}
