package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dgnsrekt/tv_panesync/internal/chartsync"
	"github.com/dgnsrekt/tv_panesync/internal/export"
	"github.com/dgnsrekt/tv_panesync/internal/render"
	"github.com/dgnsrekt/tv_panesync/internal/snapshot"
	"github.com/google/uuid"
)

const (
	SourceRender  = "render"
	SourceBrowser = "browser"
)

// TakeSnapshot rasterises the layout as it stands and stores the PNG.
func (s *Service) TakeSnapshot(ctx context.Context, layoutID, notes string) (snapshot.SnapshotMeta, error) {
	sess, err := s.lookup(layoutID)
	if err != nil {
		return snapshot.SnapshotMeta{}, err
	}
	defer sess.mu.Unlock()
	img, err := sess.render()
	if err != nil {
		return snapshot.SnapshotMeta{}, err
	}
	return s.saveSnapshot(sess.view(), SourceRender, img.PNG, img.Width, img.Height, notes)
}

// RenderPNG rasterises the layout without storing it.
func (s *Service) RenderPNG(ctx context.Context, layoutID string) (*render.Image, error) {
	sess, err := s.lookup(layoutID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()
	return sess.render()
}

func (sess *session) render() (*render.Image, error) {
	panes := make([]render.Pane, 0, len(sess.panes))
	for _, p := range sess.panes {
		panes = append(panes, p)
	}
	img, err := render.Layout(panes)
	if err != nil {
		return nil, chartsync.NewError(chartsync.CodeRenderFailure, "render layout", err)
	}
	return img, nil
}

// BrowserSnapshot loads the exported page in Chromium and stores its
// screenshot.
func (s *Service) BrowserSnapshot(ctx context.Context, layoutID, notes string) (snapshot.SnapshotMeta, error) {
	if s.opts.Capturer == nil {
		return snapshot.SnapshotMeta{}, chartsync.NewError(chartsync.CodeBrowserUnavailable, "no browser configured", nil)
	}
	sess, err := s.lookup(layoutID)
	if err != nil {
		return snapshot.SnapshotMeta{}, err
	}
	page, width, height, err := sess.exportPage()
	view := sess.view()
	// The capture can take seconds; other operations may run meanwhile.
	sess.mu.Unlock()
	if err != nil {
		return snapshot.SnapshotMeta{}, err
	}

	shot, err := s.opts.Capturer.Capture(ctx, page, width, height)
	if err != nil {
		return snapshot.SnapshotMeta{}, chartsync.NewError(chartsync.CodeBrowserUnavailable, "browser capture", err)
	}

	// A layout deleted during the capture gets no snapshot.
	sess, err = s.lookup(layoutID)
	if err != nil {
		return snapshot.SnapshotMeta{}, err
	}
	sess.mu.Unlock()
	return s.saveSnapshot(view, SourceBrowser, shot, width, height, notes)
}

// ExportHTML returns the layout as a standalone lightweight-charts page.
func (s *Service) ExportHTML(ctx context.Context, layoutID string) ([]byte, error) {
	sess, err := s.lookup(layoutID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()
	page, _, _, err := sess.exportPage()
	return page, err
}

func (sess *session) exportPage() ([]byte, int, int, error) {
	panes := make([]export.Pane, 0, len(sess.panes))
	width, height := 0, 0
	for _, p := range sess.panes {
		panes = append(panes, p)
		if c := p.Container(); c != nil {
			width = max(width, c.Width)
			height += c.Height
		}
	}
	doc, err := export.Build(sess.def.Name, panes, sess.formats)
	if err != nil {
		return nil, 0, 0, chartsync.NewError(chartsync.CodeRenderFailure, "export layout", err)
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, doc); err != nil {
		return nil, 0, 0, chartsync.NewError(chartsync.CodeRenderFailure, "export layout", err)
	}
	return buf.Bytes(), width, height, nil
}

// layoutView is what a snapshot records about the layout it was taken from.
type layoutView struct {
	layoutID string
	name     string
	panes    []string
	ranges   map[string]*snapshot.PaneWindow
}

// view reads the pane list and ranges. The caller holds sess.mu.
func (sess *session) view() layoutView {
	v := layoutView{
		layoutID: sess.id,
		name:     sess.def.Name,
		ranges:   make(map[string]*snapshot.PaneWindow, len(sess.panes)),
	}
	for _, p := range sess.panes {
		v.panes = append(v.panes, p.ID())
		if r := p.VisibleRange(); r != nil {
			v.ranges[p.ID()] = &snapshot.PaneWindow{From: r.From, To: r.To}
		}
	}
	return v
}

func (s *Service) saveSnapshot(view layoutView, source string, data []byte, width, height int, notes string) (snapshot.SnapshotMeta, error) {
	meta := snapshot.SnapshotMeta{
		ID:         uuid.New().String(),
		LayoutID:   view.layoutID,
		LayoutName: view.name,
		Source:     source,
		Format:     "png",
		Width:      width,
		Height:     height,
		SizeBytes:  len(data),
		CreatedAt:  time.Now().UTC(),
		Panes:      view.panes,
		Ranges:     view.ranges,
		Notes:      strings.TrimSpace(notes),
	}
	if s.opts.Snapshots == nil {
		return snapshot.SnapshotMeta{}, chartsync.NewError(chartsync.CodeConfiguration, "no snapshot store configured", nil)
	}
	if err := s.opts.Snapshots.Save(meta, data); err != nil {
		return snapshot.SnapshotMeta{}, chartsync.NewError(chartsync.CodeRenderFailure, fmt.Sprintf("save snapshot: %v", err), nil)
	}
	return meta, nil
}

// ListSnapshots returns stored snapshots, newest first. An empty layoutID
// lists every layout's snapshots.
func (s *Service) ListSnapshots(ctx context.Context, layoutID string) ([]snapshot.SnapshotMeta, error) {
	if s.opts.Snapshots == nil {
		return []snapshot.SnapshotMeta{}, nil
	}
	metas, err := s.opts.Snapshots.List(strings.TrimSpace(layoutID))
	return metas, snapshotErr(err)
}

// GetSnapshot returns one snapshot's metadata.
func (s *Service) GetSnapshot(ctx context.Context, id string) (snapshot.SnapshotMeta, error) {
	if err := s.requireStore(); err != nil {
		return snapshot.SnapshotMeta{}, err
	}
	meta, err := s.opts.Snapshots.Get(strings.TrimSpace(id))
	return meta, snapshotErr(err)
}

// ReadSnapshotImage returns a snapshot's image bytes and format.
func (s *Service) ReadSnapshotImage(ctx context.Context, id string) ([]byte, string, error) {
	if err := s.requireStore(); err != nil {
		return nil, "", err
	}
	data, format, err := s.opts.Snapshots.ReadImage(strings.TrimSpace(id))
	return data, format, snapshotErr(err)
}

// DeleteSnapshot removes a stored snapshot.
func (s *Service) DeleteSnapshot(ctx context.Context, id string) error {
	if err := s.requireStore(); err != nil {
		return err
	}
	return snapshotErr(s.opts.Snapshots.Delete(strings.TrimSpace(id)))
}

func (s *Service) requireStore() error {
	if s.opts.Snapshots == nil {
		return chartsync.NewError(chartsync.CodeSnapshotNotFound, "no snapshot store configured", nil)
	}
	return nil
}
