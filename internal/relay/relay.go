package relay

import (
	"encoding/json"
	"log/slog"
)

// Feed names published by the layout service.
const (
	FeedRange    = "range"
	FeedCursor   = "cursor"
	FeedOverlays = "overlays"
	FeedLayout   = "layout"
	FeedTeardown = "teardown"
)

// Publisher marshals layout events and hands them to a broker.
type Publisher struct {
	broker *Broker
}

// NewPublisher creates a publisher on broker.
func NewPublisher(broker *Broker) *Publisher {
	return &Publisher{broker: broker}
}

// Publish sends v as the JSON payload of a feed event for layoutID.
func (p *Publisher) Publish(feed, layoutID string, v any) {
	if p == nil || p.broker == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		slog.Debug("relay payload marshal failed", "feed", feed, "error", err)
		return
	}
	p.broker.Publish(Event{Feed: feed, Layout: layoutID, Payload: string(data)})
}
