// Package handler contains the HTTP handlers of the hierarchy proxy and their routing.
package handler

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/hierarchy-proxy/pkg/blob"
	"github.com/Sternrassler/hierarchy-proxy/pkg/cache"
	"github.com/Sternrassler/hierarchy-proxy/pkg/logging"
	"github.com/Sternrassler/hierarchy-proxy/pkg/upstream"
)

// readyTimeout bounds the cache ping behind /ready.
const readyTimeout = 2 * time.Second

// Deps are the collaborators the handlers are built from.
type Deps struct {
	Cache   cache.Store
	Fetcher upstream.Fetcher
	Keys    blob.KeyResolver
	Images  blob.ImageService

	// HierarchyV2URL receives the POST for /h misses.
	HierarchyV2URL string

	// HierarchyV3BaseURL is the prefix for /c/{cid} fetches.
	HierarchyV3BaseURL string
}

// NewRouter builds the instrumented HTTP handler serving every route.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /gsu", ErrorHandler(NewServingURL(d.Keys, d.Images).Handle))
	mux.Handle("GET /h", NewHierarchyV2(d.Cache, d.Fetcher, d.HierarchyV2URL))
	mux.Handle("GET /c/{cid}", NewHierarchyV3(d.Cache, d.Fetcher, d.HierarchyV3BaseURL))

	mux.HandleFunc("GET /health", Health)
	mux.Handle("GET /ready", Ready(d.Cache))
	mux.Handle("GET /metrics", promhttp.Handler())

	return Instrument(mux, logging.NewLogger("http"))
}

// Health reports liveness.
func Health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "OK")
}

// Ready reports 503 while the cache store cannot be reached.
// Stores without a Ping method are always ready.
func Ready(store cache.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if pinger, ok := store.(cache.Pinger); ok {
			ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
			defer cancel()

			if err := pinger.Ping(ctx); err != nil {
				log.Warn().Err(err).Str("component", "http").Msg("Readiness check failed")
				http.Error(w, "cache unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "OK")
	})
}
