// Package site serves the human-facing index page at the root path.
package site

import (
	"context"
	"net/http"
)

// Register attaches the index route to mux. The pattern matches the
// root path only, so unknown paths keep answering 404.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.HandleFunc("/{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(indexHTML))
	})
}

const indexHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>Fastbreak</title>
    <style>
      body { font-family: sans-serif; margin: 3rem auto; max-width: 40rem; line-height: 1.5; }
      code { background: #f2f2f2; padding: 0 0.2rem; }
    </style>
  </head>
  <body>
    <h1>Fastbreak</h1>
    <p>Season win-total estimation over possession-level Markov chains.
       Start a run with <code>POST /api/simulate</code> or watch one season
       by season on <code>POST /api/simulate/stream</code>.</p>
    <ul>
      <li><a href="/api-docs">API reference</a></li>
      <li><a href="/openapi.yaml">OpenAPI document</a></li>
      <li><a href="/healthz">Health and metrics</a></li>
      <li><a href="/stats">Service statistics</a></li>
    </ul>
  </body>
</html>`
