// Package blob resolves storage paths to image serving URLs.
//
// Resolution is two steps, matching the blobstore/images split:
//
//	key, err := keys.KeyFromPath(ctx, "/gs/bucket/photos/1.jpg")
//	url, err := images.ServingURL(ctx, key)
package blob

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// GSPrefix is the path prefix of Cloud Storage object references.
const GSPrefix = "/gs/"

// encodedGSPrefix marks keys that encode a Cloud Storage path.
const encodedGSPrefix = "encoded_gs_file:"

var (
	// ErrInvalidPath is returned for references that are not /gs/<bucket>/<object>.
	ErrInvalidPath = errors.New("invalid storage path")

	// ErrBlobNotFound is returned when the image service has no blob for the key.
	ErrBlobNotFound = errors.New("blob not found")

	// ErrInvalidServingURL is returned when the image service answers with something that is not a URL.
	ErrInvalidServingURL = errors.New("invalid serving url")
)

// Key identifies a stored blob.
type Key string

// String implements fmt.Stringer.
func (k Key) String() string {
	return string(k)
}

// KeyResolver converts storage references into blob keys.
type KeyResolver interface {
	KeyFromPath(ctx context.Context, path string) (Key, error)
}

// ImageService resolves blob keys to public serving URLs.
type ImageService interface {
	ServingURL(ctx context.Context, key Key) (string, error)
}

// GSKeys encodes /gs/<bucket>/<object> references into blob keys.
type GSKeys struct{}

// KeyFromPath validates path and returns its encoded key.
func (GSKeys) KeyFromPath(_ context.Context, path string) (Key, error) {
	rest, ok := strings.CutPrefix(path, GSPrefix)
	if !ok {
		return "", fmt.Errorf("%w: %q must start with %s", ErrInvalidPath, path, GSPrefix)
	}

	bucket, object, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", fmt.Errorf("%w: %q must be %s<bucket>/<object>", ErrInvalidPath, path, GSPrefix)
	}

	return Key(encodedGSPrefix + base64.URLEncoding.EncodeToString([]byte(path))), nil
}

// DecodeGSKey returns the /gs/ path encoded in key.
func DecodeGSKey(key Key) (string, error) {
	encoded, ok := strings.CutPrefix(string(key), encodedGSPrefix)
	if !ok {
		return "", fmt.Errorf("%w: key %q is not a storage key", ErrInvalidPath, key)
	}

	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: decode key: %v", ErrInvalidPath, err)
	}
	return string(raw), nil
}
