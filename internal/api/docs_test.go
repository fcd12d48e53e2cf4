package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dgnsrekt/tv_panesync/internal/chartsync"
	"github.com/dgnsrekt/tv_panesync/internal/overlay"
	"github.com/dgnsrekt/tv_panesync/internal/series"
	"github.com/dgnsrekt/tv_panesync/internal/service"
	"github.com/dgnsrekt/tv_panesync/internal/snapshot"
)

// stubService fails every layout lookup with err.
type stubService struct {
	err error
}

func (s *stubService) Catalog(ctx context.Context) []string { return []string{"demo"} }
func (s *stubService) CreateLayout(ctx context.Context, req service.CreateRequest) (service.LayoutInfo, error) {
	return service.LayoutInfo{}, s.err
}
func (s *stubService) ListLayouts(ctx context.Context) []service.LayoutInfo { return nil }
func (s *stubService) GetLayout(ctx context.Context, layoutID string) (service.LayoutInfo, error) {
	return service.LayoutInfo{}, s.err
}
func (s *stubService) DeleteLayout(ctx context.Context, layoutID string) error { return s.err }
func (s *stubService) GetRange(ctx context.Context, layoutID, paneID string) (service.RangeResult, error) {
	return service.RangeResult{}, s.err
}
func (s *stubService) SetRange(ctx context.Context, layoutID, paneID string, r series.LogicalRange) (service.RangeResult, error) {
	return service.RangeResult{}, s.err
}
func (s *stubService) MoveCursor(ctx context.Context, layoutID, paneID string, req service.CursorRequest) (service.CursorResult, error) {
	return service.CursorResult{}, s.err
}
func (s *stubService) Overlays(ctx context.Context, layoutID, paneID string) ([]overlay.Element, error) {
	return nil, s.err
}
func (s *stubService) Edges(ctx context.Context, layoutID string) ([]service.EdgeInfo, error) {
	return nil, s.err
}
func (s *stubService) DeletePane(ctx context.Context, layoutID, paneID string) (service.LayoutInfo, error) {
	return service.LayoutInfo{}, s.err
}
func (s *stubService) TakeSnapshot(ctx context.Context, layoutID, notes string) (snapshot.SnapshotMeta, error) {
	return snapshot.SnapshotMeta{}, s.err
}
func (s *stubService) BrowserSnapshot(ctx context.Context, layoutID, notes string) (snapshot.SnapshotMeta, error) {
	return snapshot.SnapshotMeta{}, s.err
}
func (s *stubService) ExportHTML(ctx context.Context, layoutID string) ([]byte, error) {
	return nil, s.err
}
func (s *stubService) ListSnapshots(ctx context.Context, layoutID string) ([]snapshot.SnapshotMeta, error) {
	return nil, s.err
}
func (s *stubService) GetSnapshot(ctx context.Context, id string) (snapshot.SnapshotMeta, error) {
	return snapshot.SnapshotMeta{}, s.err
}
func (s *stubService) ReadSnapshotImage(ctx context.Context, id string) ([]byte, string, error) {
	return nil, "", s.err
}
func (s *stubService) DeleteSnapshot(ctx context.Context, id string) error { return s.err }

func TestDocsPage(t *testing.T) {
	h := NewServer(&stubService{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/docs", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Fatalf("Content-Type = %q; want text/html; charset=utf-8", ct)
	}
	body := w.Body.String()
	if !strings.Contains(body, `apiDescriptionUrl="/openapi.json"`) {
		t.Fatalf("docs missing openapi reference")
	}
	if !strings.Contains(body, `href="/docs/events"`) {
		t.Fatalf("docs missing events link")
	}
}

func TestEventsDocs(t *testing.T) {
	h := NewServer(&stubService{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/docs/events", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	for _, feed := range []string{"range", "cursor", "overlays", "teardown"} {
		if !strings.Contains(w.Body.String(), "<code>"+feed+"</code>") {
			t.Fatalf("events docs missing feed %q", feed)
		}
	}
}

func TestMapErrStatus(t *testing.T) {
	cases := []struct {
		code string
		want int
	}{
		{chartsync.CodeValidation, http.StatusBadRequest},
		{chartsync.CodeConfiguration, http.StatusBadRequest},
		{chartsync.CodeLayoutNotFound, http.StatusNotFound},
		{chartsync.CodePaneNotFound, http.StatusNotFound},
		{chartsync.CodeSnapshotNotFound, http.StatusNotFound},
		{chartsync.CodeBrowserUnavailable, http.StatusBadGateway},
		{chartsync.CodeRenderFailure, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		h := NewServer(&stubService{err: chartsync.NewError(tc.code, "boom", nil)}, nil)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/layouts/x", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != tc.want {
			t.Fatalf("%s: status = %d, want %d", tc.code, w.Code, tc.want)
		}
	}
}

func TestEventRoutesNeedBroker(t *testing.T) {
	h := NewServer(&stubService{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d without a broker", w.Code, http.StatusNotFound)
	}
}
