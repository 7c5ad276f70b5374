package blob

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"resty.dev/v3"

	"github.com/Sternrassler/hierarchy-proxy/pkg/logging"
)

// HTTPImageService asks a remote image-serving endpoint for serving URLs.
//
// The endpoint receives GET <endpoint>?blob_key=<key> and answers with the URL as
// plain text, or 404 when the blob does not exist.
type HTTPImageService struct {
	endpoint string
	rest     *resty.Client
	timeout  time.Duration
	logger   zerolog.Logger
}

// NewHTTPImageService creates an image service client. httpClient may be nil.
func NewHTTPImageService(endpoint string, httpClient *http.Client, timeout time.Duration) *HTTPImageService {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &HTTPImageService{
		endpoint: endpoint,
		rest:     resty.NewWithClient(httpClient),
		timeout:  timeout,
		logger:   logging.NewLogger("image-service"),
	}
}

// ServingURL resolves key to its public serving URL.
func (s *HTTPImageService) ServingURL(ctx context.Context, key Key) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp, err := s.rest.R().
		SetContext(ctx).
		SetQueryParam("blob_key", key.String()).
		Get(s.endpoint)
	if err != nil {
		return "", fmt.Errorf("image service request: %w", err)
	}

	switch status := resp.StatusCode(); {
	case status == http.StatusNotFound:
		return "", fmt.Errorf("%w: %s", ErrBlobNotFound, key)
	case status < 200 || status >= 300:
		return "", fmt.Errorf("image service returned status %d for %s", status, key)
	}

	servingURL := strings.TrimSpace(resp.String())
	if !strings.HasPrefix(servingURL, "http") {
		return "", fmt.Errorf("%w: %q", ErrInvalidServingURL, servingURL)
	}

	s.logger.Debug().Str("key", key.String()).Str("url", servingURL).Msg("Resolved serving URL")
	return servingURL, nil
}

// Close releases the underlying client resources.
func (s *HTTPImageService) Close() error {
	return s.rest.Close()
}
