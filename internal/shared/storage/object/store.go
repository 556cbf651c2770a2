package object

import (
	"context"
	"errors"
)

// ErrNotExist is returned by Get when no object is stored under the key.
var ErrNotExist = errors.New("object does not exist")

// Store defines the contract for reading and writing whole objects by key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, contentType string, data []byte) error
}
