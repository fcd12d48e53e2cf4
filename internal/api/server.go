package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/dgnsrekt/tv_panesync/internal/chartsync"
	"github.com/dgnsrekt/tv_panesync/internal/overlay"
	"github.com/dgnsrekt/tv_panesync/internal/relay"
	"github.com/dgnsrekt/tv_panesync/internal/series"
	"github.com/dgnsrekt/tv_panesync/internal/service"
	"github.com/dgnsrekt/tv_panesync/internal/snapshot"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Service interface {
	Catalog(ctx context.Context) []string
	CreateLayout(ctx context.Context, req service.CreateRequest) (service.LayoutInfo, error)
	ListLayouts(ctx context.Context) []service.LayoutInfo
	GetLayout(ctx context.Context, layoutID string) (service.LayoutInfo, error)
	DeleteLayout(ctx context.Context, layoutID string) error
	GetRange(ctx context.Context, layoutID, paneID string) (service.RangeResult, error)
	SetRange(ctx context.Context, layoutID, paneID string, r series.LogicalRange) (service.RangeResult, error)
	MoveCursor(ctx context.Context, layoutID, paneID string, req service.CursorRequest) (service.CursorResult, error)
	Overlays(ctx context.Context, layoutID, paneID string) ([]overlay.Element, error)
	Edges(ctx context.Context, layoutID string) ([]service.EdgeInfo, error)
	DeletePane(ctx context.Context, layoutID, paneID string) (service.LayoutInfo, error)
	TakeSnapshot(ctx context.Context, layoutID, notes string) (snapshot.SnapshotMeta, error)
	BrowserSnapshot(ctx context.Context, layoutID, notes string) (snapshot.SnapshotMeta, error)
	ExportHTML(ctx context.Context, layoutID string) ([]byte, error)
	ListSnapshots(ctx context.Context, layoutID string) ([]snapshot.SnapshotMeta, error)
	GetSnapshot(ctx context.Context, id string) (snapshot.SnapshotMeta, error)
	ReadSnapshotImage(ctx context.Context, id string) ([]byte, string, error)
	DeleteSnapshot(ctx context.Context, id string) error
}

type layoutIDInput struct {
	LayoutID string `path:"layout_id" doc:"Layout id returned by create-layout"`
}

type paneInput struct {
	LayoutID string `path:"layout_id" doc:"Layout id returned by create-layout"`
	PaneID   string `path:"pane_id" doc:"Pane id from the layout definition"`
}

type statusOutput struct {
	Body struct {
		Status string `json:"status"`
	}
}

// NewServer builds the HTTP API. A nil broker leaves out the event streams.
func NewServer(svc Service, broker *relay.Broker) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)

	cfg := huma.DefaultConfig("Pane Sync API", "1.0.0")
	cfg.DocsPath = ""
	api := humachi.New(router, cfg)

	mountDocs(router)
	if broker != nil {
		router.Get("/api/v1/events", relay.SSEHandler(broker))
		router.Get("/api/v1/events/ws", relay.WSHandler(broker))
	}

	registerLayoutHandlers(api, svc)
	registerSyncHandlers(api, svc)
	registerSnapshotHandlers(api, svc)
	registerMiscHandlers(api, svc, broker)

	return router
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var coded *chartsync.CodedError
	if errors.As(err, &coded) {
		msg := coded.Message
		if coded.Cause != nil {
			msg = fmt.Sprintf("%s: %v", coded.Message, coded.Cause)
		}
		switch coded.Code {
		case chartsync.CodeValidation, chartsync.CodeInvalidArgument, chartsync.CodeConfiguration:
			return huma.Error400BadRequest(msg)
		case chartsync.CodeLayoutNotFound, chartsync.CodePaneNotFound, chartsync.CodeSnapshotNotFound:
			return huma.Error404NotFound(msg)
		case chartsync.CodeCoordinateResolution:
			return huma.Error422UnprocessableEntity(msg)
		case chartsync.CodeBrowserUnavailable:
			return huma.Error502BadGateway(msg)
		default:
			return huma.Error500InternalServerError(fmt.Sprintf("%s: %s", coded.Code, msg))
		}
	}
	return huma.Error500InternalServerError(err.Error())
}
