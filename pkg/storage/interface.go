package storage

import (
	"context"
	"errors"

	"github.com/epw80/message-board/pkg/message"
)

// ErrPersistence marks a failure to read or write the message collection
var ErrPersistence = errors.New("persistence failure")

// Store reads and replaces the whole message collection at once.
// Messages are kept in insertion order (oldest first).
type Store interface {
	// ReadAll returns the full collection.
	ReadAll(ctx context.Context) ([]message.Message, error)

	// WriteAll replaces the full collection with msgs.
	WriteAll(ctx context.Context, msgs []message.Message) error

	// HealthCheck verifies the storage backend is accessible and operational.
	HealthCheck(ctx context.Context) error

	// Close releases any resources held by the store.
	// After calling Close, the store should not be used.
	Close() error
}
