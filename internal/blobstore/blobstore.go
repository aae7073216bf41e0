// Package blobstore defines the two storage collaborators the pipeline
// consumes: a raw-bytes source and a persistent sink. The pipeline makes
// no assumption about their implementation beyond this interface.
package blobstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a named document does not exist in the
// source store.
var ErrNotFound = errors.New("blob not found")

// Store is the storage collaborator contract.
type Store interface {
	// Fetch downloads a named document from the source container.
	Fetch(ctx context.Context, name string) ([]byte, error)

	// EnsureNamespace makes the destination namespace available for
	// writes, creating backing structure if absent. Idempotent.
	EnsureNamespace(ctx context.Context, namespace string) error

	// Put stores one artifact under namespace/key in the destination.
	Put(ctx context.Context, namespace, key string, data []byte) error
}
