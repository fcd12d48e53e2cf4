package relay

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// wsFrame is the text frame sent to WebSocket clients.
type wsFrame struct {
	Feed    string          `json:"feed"`
	Layout  string          `json:"layout,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// WSHandler upgrades the request and streams relay events as JSON text
// frames. It accepts the same filters as SSEHandler. Frames sent by the
// client are read and discarded; a close frame or read error ends the stream.
func WSHandler(broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := ParseFilter(r)
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			slog.Debug("websocket upgrade failed", "error", err)
			return
		}
		defer conn.Close()

		id, ch := broker.Subscribe(f)
		defer broker.Unsubscribe(id)
		slog.Debug("websocket client subscribed", "subscriber", id, "remote", r.RemoteAddr)

		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := wsutil.ReadClientData(conn); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-closed:
				return
			case <-r.Context().Done():
				return
			case evt, ok := <-ch:
				if !ok {
					return
				}
				data, err := json.Marshal(wsFrame{Feed: evt.Feed, Layout: evt.Layout, Payload: json.RawMessage(evt.Payload)})
				if err != nil {
					slog.Debug("websocket frame marshal failed", "error", err)
					continue
				}
				if err := wsutil.WriteServerText(conn, data); err != nil {
					slog.Debug("websocket write failed", "subscriber", id, "error", err)
					return
				}
			}
		}
	}
}
