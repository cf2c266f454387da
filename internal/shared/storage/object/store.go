package object

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

// ErrInvalidKey is returned for keys that are empty or escape the store root.
var ErrInvalidKey = errors.New("invalid storage key")

// Store saves binary objects by key. Archived uploads are write-only from
// the API; reads happen out of band.
type Store interface {
	Put(ctx context.Context, key string, contentType string, r io.Reader) (int64, error)
}

// CleanKey normalizes key to a relative slash-separated path.
func CleanKey(key string) (string, error) {
	k := strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	if k == "" {
		return "", ErrInvalidKey
	}
	clean := path.Clean("/" + k)
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" || clean == "." || strings.Contains(k, "..") {
		return "", ErrInvalidKey
	}
	return clean, nil
}
