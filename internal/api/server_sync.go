package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/dgnsrekt/tv_panesync/internal/overlay"
	"github.com/dgnsrekt/tv_panesync/internal/series"
	"github.com/dgnsrekt/tv_panesync/internal/service"
)

func registerSyncHandlers(api huma.API, svc Service) {
	type rangeOutput struct {
		Body service.RangeResult
	}
	huma.Register(api, huma.Operation{OperationID: "get-range", Method: http.MethodGet, Path: "/api/v1/layouts/{layout_id}/panes/{pane_id}/range", Summary: "Get a pane's visible logical range", Tags: []string{"Panes"}},
		func(ctx context.Context, input *paneInput) (*rangeOutput, error) {
			res, err := svc.GetRange(ctx, input.LayoutID, input.PaneID)
			if err != nil {
				return nil, mapErr(err)
			}
			return &rangeOutput{Body: res}, nil
		})

	huma.Register(api, huma.Operation{OperationID: "set-range", Method: http.MethodPut, Path: "/api/v1/layouts/{layout_id}/panes/{pane_id}/range", Summary: "Scroll a pane", Description: "Sets the pane's visible logical range. Every other pane follows before the response is written.", Tags: []string{"Panes"}},
		func(ctx context.Context, input *struct {
			LayoutID string `path:"layout_id"`
			PaneID   string `path:"pane_id"`
			Body     struct {
				From float64 `json:"from" doc:"First visible logical index"`
				To   float64 `json:"to" doc:"Last visible logical index"`
			}
		}) (*rangeOutput, error) {
			res, err := svc.SetRange(ctx, input.LayoutID, input.PaneID, series.LogicalRange{From: input.Body.From, To: input.Body.To})
			if err != nil {
				return nil, mapErr(err)
			}
			return &rangeOutput{Body: res}, nil
		})

	type cursorOutput struct {
		Body service.CursorResult
	}
	huma.Register(api, huma.Operation{OperationID: "move-cursor", Method: http.MethodPost, Path: "/api/v1/layouts/{layout_id}/panes/{pane_id}/cursor", Summary: "Move the pointer over a pane", Description: "Send {\"x\": 120} to hover at plot x, or {\"leave\": true} to take the pointer off the pane.", Tags: []string{"Panes"}},
		func(ctx context.Context, input *struct {
			LayoutID string `path:"layout_id"`
			PaneID   string `path:"pane_id"`
			Body     service.CursorRequest
		}) (*cursorOutput, error) {
			res, err := svc.MoveCursor(ctx, input.LayoutID, input.PaneID, input.Body)
			if err != nil {
				return nil, mapErr(err)
			}
			return &cursorOutput{Body: res}, nil
		})

	type overlaysOutput struct {
		Body struct {
			Pane     string            `json:"pane"`
			Elements []overlay.Element `json:"elements"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-overlays", Method: http.MethodGet, Path: "/api/v1/layouts/{layout_id}/panes/{pane_id}/overlays", Summary: "List overlay elements drawn on a pane", Tags: []string{"Panes"}},
		func(ctx context.Context, input *paneInput) (*overlaysOutput, error) {
			els, err := svc.Overlays(ctx, input.LayoutID, input.PaneID)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &overlaysOutput{}
			out.Body.Pane = input.PaneID
			out.Body.Elements = els
			if out.Body.Elements == nil {
				out.Body.Elements = []overlay.Element{}
			}
			return out, nil
		})
}
