// Package storage is the object-store boundary for transcoded audio
// artifacts.
package storage

import (
	"context"
	"io"
)

// ObjectStore persists a blob under a key and returns the public URL it will
// be served from.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}
