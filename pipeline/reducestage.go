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


package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/topical/core"
	"github.com/poiesic/topical/reduce"
	"github.com/poiesic/topical/storage"
)

// ReduceStage computes a low-dimensional projection of the embedding
// matrix, cached by the consumed embedding's identity plus the reduction
// parameters.
//
// Projections are invalidated by their own provenance only. Forcing the
// embedding stage does not force reduction: with an unchanged corpus and
// model the cached projection is still considered valid.
type ReduceStage struct {
	store  storage.ArtifactStore
	config *Config
	logger *slog.Logger
}

func NewReduceStage(store storage.ArtifactStore, config *Config) *ReduceStage {
	return &ReduceStage{
		store:  store,
		config: config,
		logger: slog.Default().With("component", "reduce"),
	}
}

// Run returns the dims-dimensional projection of embeddings, one row per
// record. corpusHash identifies the corpus the embeddings came from.
func (s *ReduceStage) Run(ctx context.Context, embeddings core.Matrix, corpusHash string, dims int) (core.Matrix, error) {
	want := projectionProvenance{
		CorpusHash: corpusHash,
		Model:      s.config.EmbeddingModel,
		Components: dims,
		Seed:       s.config.Seed,
	}

	if s.config.Resume && !s.config.ForceReduce {
		if cached, ok := s.cached(ctx, want, embeddings.Rows()); ok {
			s.logger.Info("reusing cached projection", "dims", dims)
			return cached, nil
		}
	}

	s.logger.Info("projecting embeddings", "dims", dims, "records", embeddings.Rows())
	projected, err := reduce.Project(embeddings, reduce.Params{Components: dims, Seed: s.config.Seed})
	if err != nil {
		return nil, fmt.Errorf("projection to %dd failed: %w", dims, err)
	}
	if projected.Rows() != embeddings.Rows() {
		return nil, fmt.Errorf("projection row mismatch: expected %d, got %d",
			embeddings.Rows(), projected.Rows())
	}

	if err := s.store.PutMatrix(ctx, projectionKey(s.config.Year, dims), projected); err != nil {
		return nil, fmt.Errorf("failed to store projection: %w", err)
	}
	if err := s.store.PutJSON(ctx, projectionMetaKey(s.config.Year, dims), want); err != nil {
		return nil, fmt.Errorf("failed to store projection provenance: %w", err)
	}
	return projected, nil
}

func (s *ReduceStage) cached(ctx context.Context, want projectionProvenance, rows int) (core.Matrix, bool) {
	var got projectionProvenance
	if err := s.store.GetJSON(ctx, projectionMetaKey(s.config.Year, want.Components), &got); err != nil {
		return nil, false
	}
	if got != want {
		return nil, false
	}

	matrix, err := s.store.GetMatrix(ctx, projectionKey(s.config.Year, want.Components))
	if err != nil || matrix.Rows() != rows {
		return nil, false
	}
	return matrix, true
}
