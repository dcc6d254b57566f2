package badger

import "github.com/poiesic/topical/storage"

// NewMemoryArtifactStore creates an in-memory artifact store for tests.
//
// Returns storage.ArtifactStore interface to enforce abstraction.
func NewMemoryArtifactStore() (storage.ArtifactStore, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, err
	}
	return newArtifactStore(backend), nil
}
