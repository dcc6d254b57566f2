// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/topical/core"
	"github.com/poiesic/topical/storage"
)

// ArtifactStore implements storage.ArtifactStore for BadgerDB.
type ArtifactStore struct {
	backend *Backend
}

var _ storage.ArtifactStore = (*ArtifactStore)(nil)

// newArtifactStore is an internal constructor that returns the concrete type.
func newArtifactStore(backend *Backend) *ArtifactStore {
	return &ArtifactStore{backend: backend}
}

// NewArtifactStore opens a BadgerDB-backed artifact store at the given path.
//
// Returns storage.ArtifactStore interface to enforce abstraction.
func NewArtifactStore(filePath string) (storage.ArtifactStore, error) {
	backend, err := OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}
	return newArtifactStore(backend), nil
}

// PutMatrix stores a matrix artifact, replacing any previous value.
func (s *ArtifactStore) PutMatrix(ctx context.Context, key string, m core.Matrix) error {
	data, err := storage.MarshalMatrix(m)
	if err != nil {
		return err
	}
	return s.put(makeMatrixKey(key), data)
}

// GetMatrix retrieves a matrix artifact.
func (s *ArtifactStore) GetMatrix(ctx context.Context, key string) (core.Matrix, error) {
	data, err := s.get(makeMatrixKey(key))
	if err != nil {
		return nil, err
	}
	return storage.UnmarshalMatrix(data)
}

// PutLabels stores a label-assignment artifact, replacing any previous value.
func (s *ArtifactStore) PutLabels(ctx context.Context, key string, labels core.Labels) error {
	return s.put(makeLabelsKey(key), storage.MarshalLabels(labels))
}

// GetLabels retrieves a label-assignment artifact.
func (s *ArtifactStore) GetLabels(ctx context.Context, key string) (core.Labels, error) {
	data, err := s.get(makeLabelsKey(key))
	if err != nil {
		return nil, err
	}
	return storage.UnmarshalLabels(data)
}

// PutJSON stores v as a JSON document, replacing any previous value.
func (s *ArtifactStore) PutJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
	}
	return s.put(makeJSONKey(key), data)
}

// GetJSON retrieves a JSON document into v.
func (s *ArtifactStore) GetJSON(ctx context.Context, key string, v any) error {
	data, err := s.get(makeJSONKey(key))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
	}
	return nil
}

// Delete removes artifacts stored under the key, across all artifact kinds.
func (s *ArtifactStore) Delete(ctx context.Context, key string) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		for _, k := range [][]byte{makeMatrixKey(key), makeLabelsKey(key), makeJSONKey(key)} {
			if err := tx.Delete(k); err != nil && err != badger.ErrKeyNotFound {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Close closes the underlying database.
func (s *ArtifactStore) Close() error {
	return s.backend.Close()
}

func (s *ArtifactStore) put(key, value []byte) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(key, value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

func (s *ArtifactStore) get(key []byte) ([]byte, error) {
	var value []byte
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(key)
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return value, nil
}
