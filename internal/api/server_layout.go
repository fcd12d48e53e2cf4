package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/dgnsrekt/tv_panesync/internal/layout"
	"github.com/dgnsrekt/tv_panesync/internal/service"
)

func registerLayoutHandlers(api huma.API, svc Service) {
	type catalogOutput struct {
		Body struct {
			Names []string `json:"names"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-catalog", Method: http.MethodGet, Path: "/api/v1/catalog", Summary: "List layout definitions that can be created by name", Tags: []string{"Layouts"}},
		func(ctx context.Context, input *struct{}) (*catalogOutput, error) {
			out := &catalogOutput{}
			out.Body.Names = svc.Catalog(ctx)
			return out, nil
		})

	type layoutOutput struct {
		Body service.LayoutInfo
	}
	huma.Register(api, huma.Operation{OperationID: "create-layout", Method: http.MethodPost, Path: "/api/v1/layouts", Summary: "Create a synchronized layout", Description: "Creates a layout from a catalog name or an inline definition. Inline panes may carry their points directly.", Tags: []string{"Layouts"}, DefaultStatus: http.StatusCreated},
		func(ctx context.Context, input *struct {
			Body struct {
				Name       string             `json:"name,omitempty" doc:"Catalog layout name"`
				Definition *layout.Definition `json:"definition,omitempty" doc:"Inline layout definition"`
			}
		}) (*layoutOutput, error) {
			info, err := svc.CreateLayout(ctx, service.CreateRequest{Name: input.Body.Name, Definition: input.Body.Definition})
			if err != nil {
				return nil, mapErr(err)
			}
			return &layoutOutput{Body: info}, nil
		})

	type listLayoutsOutput struct {
		Body struct {
			Layouts []service.LayoutInfo `json:"layouts"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-layouts", Method: http.MethodGet, Path: "/api/v1/layouts", Summary: "List live layouts", Tags: []string{"Layouts"}},
		func(ctx context.Context, input *struct{}) (*listLayoutsOutput, error) {
			out := &listLayoutsOutput{}
			out.Body.Layouts = svc.ListLayouts(ctx)
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "get-layout", Method: http.MethodGet, Path: "/api/v1/layouts/{layout_id}", Summary: "Get a layout", Tags: []string{"Layouts"}},
		func(ctx context.Context, input *layoutIDInput) (*layoutOutput, error) {
			info, err := svc.GetLayout(ctx, input.LayoutID)
			if err != nil {
				return nil, mapErr(err)
			}
			return &layoutOutput{Body: info}, nil
		})

	huma.Register(api, huma.Operation{OperationID: "delete-layout", Method: http.MethodDelete, Path: "/api/v1/layouts/{layout_id}", Summary: "Tear down a layout and all its panes", Tags: []string{"Layouts"}},
		func(ctx context.Context, input *layoutIDInput) (*statusOutput, error) {
			if err := svc.DeleteLayout(ctx, input.LayoutID); err != nil {
				return nil, mapErr(err)
			}
			out := &statusOutput{}
			out.Body.Status = "deleted"
			return out, nil
		})

	type edgesOutput struct {
		Body struct {
			LayoutID string             `json:"layout_id"`
			Edges    []service.EdgeInfo `json:"edges"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-edges", Method: http.MethodGet, Path: "/api/v1/layouts/{layout_id}/edges", Summary: "List directed synchronization edges", Tags: []string{"Layouts"}},
		func(ctx context.Context, input *layoutIDInput) (*edgesOutput, error) {
			edges, err := svc.Edges(ctx, input.LayoutID)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &edgesOutput{}
			out.Body.LayoutID = input.LayoutID
			out.Body.Edges = edges
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "delete-pane", Method: http.MethodDelete, Path: "/api/v1/layouts/{layout_id}/panes/{pane_id}", Summary: "Tear down one pane", Description: "Closes the pane and rewires the remaining panes.", Tags: []string{"Panes"}},
		func(ctx context.Context, input *paneInput) (*layoutOutput, error) {
			info, err := svc.DeletePane(ctx, input.LayoutID, input.PaneID)
			if err != nil {
				return nil, mapErr(err)
			}
			return &layoutOutput{Body: info}, nil
		})
}
