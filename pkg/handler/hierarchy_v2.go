package handler

import (
	"net/http"
	"regexp"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/hierarchy-proxy/pkg/cache"
	"github.com/Sternrassler/hierarchy-proxy/pkg/logging"
	"github.com/Sternrassler/hierarchy-proxy/pkg/metrics"
	"github.com/Sternrassler/hierarchy-proxy/pkg/upstream"
)

const (
	handlerV2 = "v2"

	// v2MaxAge is the client-side Cache-Control max-age for /h.
	v2MaxAge = 36000000

	// callerUID identifies this proxy to the hierarchy function.
	callerUID = "gae"
)

var identifierPattern = regexp.MustCompile(`^[0-9]{1,13}$`)

// ValidIdentifier reports whether id is empty or 1 to 13 decimal digits.
func ValidIdentifier(id string) bool {
	return id == "" || identifierPattern.MatchString(id)
}

// hierarchyRequest is the callable-function envelope sent upstream.
type hierarchyRequest struct {
	Data hierarchyRequestData `json:"data"`
}

type hierarchyRequestData struct {
	ID  string `json:"id"`
	UID string `json:"uid"`
}

// HierarchyV2 serves GET /h?id=<id>.
//
// Hits are any present cache value. Misses POST to the hierarchy function and cache the
// body without expiry. Upstream failures degrade to "{}" without X-Cache and are not cached.
type HierarchyV2 struct {
	cache    cache.Store
	fetcher  upstream.Fetcher
	endpoint string
	logger   zerolog.Logger
}

// NewHierarchyV2 creates the /h handler. endpoint is the hierarchy function URL.
func NewHierarchyV2(store cache.Store, fetcher upstream.Fetcher, endpoint string) *HierarchyV2 {
	return &HierarchyV2{
		cache:    store,
		fetcher:  fetcher,
		endpoint: endpoint,
		logger:   logging.NewLogger("hierarchy-v2"),
	}
}

// ServeHTTP implements http.Handler.
func (h *HierarchyV2) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.URL.Query().Get("id")

	if !ValidIdentifier(id) {
		h.logger.Debug().Str("id", id).Msg("Rejected invalid identifier")
		_, _ = w.Write([]byte(emptyObject))
		return
	}

	setHierarchyHeaders(w, v2MaxAge)

	if body, ok := readCache(ctx, h.cache, h.logger, handlerV2, id); ok {
		cache.CacheHits.WithLabelValues(handlerV2).Inc()
		metrics.ObserveCacheStatus(handlerV2, cacheStatusMemory)
		writeBody(w, cacheStatusMemory, body)
		return
	}

	res := h.fetcher.PostJSON(ctx, h.endpoint, hierarchyRequest{
		Data: hierarchyRequestData{ID: id, UID: callerUID},
	})
	if !res.OK() {
		h.logger.Warn().
			Err(res.Err).
			Str("id", id).
			Str("request_id", RequestID(ctx)).
			Msg("Hierarchy fetch failed, returning empty object")
		metrics.ObserveCacheStatus(handlerV2, "")
		writeBody(w, "", emptyObject)
		return
	}

	body := res.Text()
	writeCache(ctx, h.cache, h.logger, id, body, 0)
	metrics.ObserveCacheStatus(handlerV2, cacheStatusUpstream)
	writeBody(w, cacheStatusUpstream, body)
}
