// Package imagestore keeps processed item images under opaque keys.
package imagestore

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Get for an unknown key.
var ErrNotFound = errors.New("image not found")

// Store saves and loads image bytes.
type Store interface {
	Put(ctx context.Context, key string, data []byte, mime string) error
	Get(ctx context.Context, key string) (data []byte, mime string, err error)
}

// NewKey returns a fresh random key with a .jpg extension.
func NewKey() string {
	return uuid.NewString() + ".jpg"
}

// ValidKey reports whether key has the shape NewKey produces. Handlers use
// it to reject path tricks before touching a store.
func ValidKey(key string) bool {
	const ext = ".jpg"
	if len(key) <= len(ext) || key[len(key)-len(ext):] != ext {
		return false
	}
	_, err := uuid.Parse(key[:len(key)-len(ext)])
	return err == nil
}
