package storage

import (
	"context"

	"github.com/poiesic/topical/core"
)

// ArtifactStore persists stage artifacts across runs.
//
// Get methods return ErrNotFound when no artifact exists under the key.
// Callers treat any Get failure (missing, truncated, unparseable) as a
// cache miss, never as fatal.
type ArtifactStore interface {
	// PutMatrix stores a matrix artifact, replacing any previous value.
	PutMatrix(ctx context.Context, key string, m core.Matrix) error

	// GetMatrix retrieves a matrix artifact.
	GetMatrix(ctx context.Context, key string) (core.Matrix, error)

	// PutLabels stores a label-assignment artifact, replacing any previous value.
	PutLabels(ctx context.Context, key string, labels core.Labels) error

	// GetLabels retrieves a label-assignment artifact.
	GetLabels(ctx context.Context, key string) (core.Labels, error)

	// PutJSON stores v as a JSON document, replacing any previous value.
	PutJSON(ctx context.Context, key string, v any) error

	// GetJSON retrieves a JSON document into v.
	GetJSON(ctx context.Context, key string, v any) error

	// Delete removes an artifact. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the underlying database.
	Close() error
}
