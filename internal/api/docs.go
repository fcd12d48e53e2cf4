package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// mountDocs serves the OpenAPI reference and the event stream guide.
func mountDocs(router chi.Router) {
	router.Get("/docs", servePage("docs", docsHTML))
	router.Get("/docs/events", servePage("events docs", eventsDocsHTML))
}

func servePage(name, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		if _, err := w.Write([]byte(body)); err != nil {
			slog.Debug("page write failed", "page", name, "error", err)
		}
	}
}

const docsHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Pane Sync API</title>
  <link href="https://unpkg.com/@stoplight/elements@9.0.0/styles.min.css" rel="stylesheet" />
  <script src="https://unpkg.com/@stoplight/elements@9.0.0/web-components.min.js" crossorigin="anonymous"></script>
  <style>
    body { height: 100vh; margin: 0; }
    nav.panesync { position: fixed; top: 10px; right: 14px; z-index: 9999; display: flex; gap: 8px;
      font: 500 12px -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif; }
    nav.panesync a { background: #131722; color: #d1d4dc; border: 1px solid #2a2e39; border-radius: 6px;
      padding: 5px 12px; text-decoration: none; }
  </style>
</head>
<body>
  <nav class="panesync">
    <a href="/docs/events">Event streams</a>
    <a href="/openapi.yaml">openapi.yaml</a>
  </nav>
  <elements-api
    apiDescriptionUrl="/openapi.json"
    router="hash"
    layout="sidebar"
    tryItCredentialsPolicy="same-origin"
  />
</body>
</html>`
