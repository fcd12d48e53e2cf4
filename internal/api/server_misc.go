package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/dgnsrekt/tv_panesync/internal/relay"
)

func registerMiscHandlers(api huma.API, svc Service, broker *relay.Broker) {
	type healthOutput struct {
		Body struct {
			Status          string `json:"status"`
			Layouts         int    `json:"layouts"`
			EventClients    int    `json:"event_clients"`
			EventsPublished int64  `json:"events_published"`
			EventsDropped   int64  `json:"events_dropped"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "health", Method: http.MethodGet, Path: "/health", Summary: "Health check", Tags: []string{"Health"}},
		func(ctx context.Context, input *struct{}) (*healthOutput, error) {
			out := &healthOutput{}
			out.Body.Status = "ok"
			out.Body.Layouts = len(svc.ListLayouts(ctx))
			if broker != nil {
				out.Body.EventClients = broker.ClientCount()
				out.Body.EventsPublished = broker.Published()
				out.Body.EventsDropped = broker.Dropped()
			}
			return out, nil
		})
}
