package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/Sternrassler/hierarchy-proxy/pkg/blob"
)

// ServingURL serves GET /gsu?path=<path>.
//
// The response body is the serving URL of the blob at "/gs/" + path. Resolution
// failures are returned, not masked, and surface as 500 through ErrorHandler.
type ServingURL struct {
	keys   blob.KeyResolver
	images blob.ImageService
}

// NewServingURL creates the /gsu handler.
func NewServingURL(keys blob.KeyResolver, images blob.ImageService) *ServingURL {
	return &ServingURL{keys: keys, images: images}
}

// Handle resolves the serving URL and writes it as the body.
func (h *ServingURL) Handle(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	ref := blob.GSPrefix + r.URL.Query().Get("path")

	key, err := h.keys.KeyFromPath(ctx, ref)
	if err != nil {
		return fmt.Errorf("create blob key: %w", err)
	}

	servingURL, err := h.images.ServingURL(ctx, key)
	if err != nil {
		return fmt.Errorf("get serving url for %s: %w", ref, err)
	}

	_, err = io.WriteString(w, servingURL)
	return err
}
