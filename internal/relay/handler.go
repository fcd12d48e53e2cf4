package relay

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// ParseFilter reads ?feeds=a,b and ?layouts=x,y.
func ParseFilter(r *http.Request) Filter {
	return Filter{
		Feeds:   parseSet(r.URL.Query().Get("feeds")),
		Layouts: parseSet(r.URL.Query().Get("layouts")),
	}
}

func parseSet(q string) map[string]bool {
	if q == "" {
		return nil
	}
	set := make(map[string]bool)
	for _, f := range strings.Split(q, ",") {
		if f = strings.TrimSpace(f); f != "" {
			set[f] = true
		}
	}
	return set
}

// SSEHandler returns an http.HandlerFunc that streams relay events as SSE.
// Clients may filter via ?feeds=range,cursor and ?layouts=<id>.
func SSEHandler(broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming not supported", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		flusher.Flush()

		id, ch := broker.Subscribe(ParseFilter(r))
		defer broker.Unsubscribe(id)
		slog.Debug("sse client subscribed", "subscriber", id)

		for {
			select {
			case <-r.Context().Done():
				return
			case evt, ok := <-ch:
				if !ok {
					return
				}
				if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Feed, evt.Payload); err != nil {
					slog.Debug("sse write failed", "subscriber", id, "error", err)
					return
				}
				flusher.Flush()
			}
		}
	}
}
