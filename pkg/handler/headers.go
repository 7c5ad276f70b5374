package handler

import (
	"io"
	"net/http"
	"strconv"
)

const (
	headerContentType   = "Content-Type"
	headerCacheControl  = "Cache-Control"
	headerAllowOrigin   = "Access-Control-Allow-Origin"
	headerXCache        = "X-Cache"
	headerXRequestID    = "X-Request-ID"
	contentTypeJSON     = "application/json"
	corsAllowOrigin     = "*"
	emptyObject         = "{}"
	cacheStatusMemory   = "HIT-M"
	cacheStatusUpstream = "HIT-D"
)

// setHierarchyHeaders writes the headers shared by every hierarchy response.
func setHierarchyHeaders(w http.ResponseWriter, maxAge int) {
	h := w.Header()
	h.Set(headerContentType, contentTypeJSON)
	h.Set(headerCacheControl, "max-age="+strconv.Itoa(maxAge))
	h.Set(headerAllowOrigin, corsAllowOrigin)
}

// writeBody writes body with status 200. cacheStatus is omitted when empty.
func writeBody(w http.ResponseWriter, cacheStatus, body string) {
	if cacheStatus != "" {
		w.Header().Set(headerXCache, cacheStatus)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, body)
}
