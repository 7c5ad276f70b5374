package handler

import (
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/hierarchy-proxy/pkg/cache"
	"github.com/Sternrassler/hierarchy-proxy/pkg/logging"
	"github.com/Sternrassler/hierarchy-proxy/pkg/metrics"
	"github.com/Sternrassler/hierarchy-proxy/pkg/upstream"
)

const (
	handlerV3 = "v3"

	// v3MaxAge is the client-side Cache-Control max-age for /c/{cid}.
	v3MaxAge = 3600

	// NegativeTTLSeconds is how long a failed fetch is remembered as "{}".
	NegativeTTLSeconds = 3600

	upstreamQuerySuffix = "?abracadabra=1"
)

// HierarchyV3 serves GET /c/{cid}.
//
// Cached values are served only when they hold a "depth" key and a non-empty "data"
// object; anything else is skipped, not deleted. Fetched bodies with a "depth" key are
// cached without expiry. Fetch failures cache "{}" for NegativeTTLSeconds. That entry
// never passes the structural check, so the next request fetches again.
type HierarchyV3 struct {
	cache   cache.Store
	fetcher upstream.Fetcher
	baseURL string
	logger  zerolog.Logger
}

// NewHierarchyV3 creates the /c/{cid} handler. baseURL is the prefix the cid is appended to.
func NewHierarchyV3(store cache.Store, fetcher upstream.Fetcher, baseURL string) *HierarchyV3 {
	return &HierarchyV3{
		cache:   store,
		fetcher: fetcher,
		baseURL: baseURL,
		logger:  logging.NewLogger("hierarchy-v3"),
	}
}

// UpstreamURL returns the URL fetched for cid.
func (h *HierarchyV3) UpstreamURL(cid string) string {
	return h.baseURL + url.PathEscape(cid) + upstreamQuerySuffix
}

// ServeHTTP implements http.Handler.
func (h *HierarchyV3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cid := r.PathValue("cid")

	setHierarchyHeaders(w, v3MaxAge)

	if cached, ok := readCache(ctx, h.cache, h.logger, handlerV3, cid); ok {
		reason := checkCachedHierarchy(cached)
		if reason == "" {
			cache.CacheHits.WithLabelValues(handlerV3).Inc()
			metrics.ObserveCacheStatus(handlerV3, cacheStatusMemory)
			writeBody(w, cacheStatusMemory, cached)
			return
		}
		cache.CacheBypass.WithLabelValues(handlerV3, reason).Inc()
		h.logger.Debug().Str("cid", cid).Str("reason", reason).Msg("Skipping cached entry")
	}

	target := h.UpstreamURL(cid)
	res := h.fetcher.Get(ctx, target)
	if !res.OK() {
		h.logger.Warn().
			Err(res.Err).
			Str("url", target).
			Str("request_id", RequestID(ctx)).
			Msg("Hierarchy fetch failed, caching empty object")
		metrics.ObserveCacheStatus(handlerV3, "")
		writeBody(w, "", emptyObject)
		writeCache(ctx, h.cache, h.logger, cid, emptyObject, NegativeTTLSeconds)
		return
	}

	body := res.Text()
	metrics.ObserveCacheStatus(handlerV3, cacheStatusUpstream)
	writeBody(w, cacheStatusUpstream, body)

	if hasDepth(body) {
		writeCache(ctx, h.cache, h.logger, cid, body, 0)
		return
	}
	h.logger.Debug().Str("cid", cid).Msg("Fetched body has no depth, not caching")
}
