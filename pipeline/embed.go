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
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/topical/ai"
	"github.com/poiesic/topical/core"
	"github.com/poiesic/topical/storage"
)

// EmbedStage produces the embedding matrix for a record set, reusing the
// cached matrix when its recorded provenance (corpus fingerprint, model,
// row count) matches the current inputs.
type EmbedStage struct {
	store    storage.ArtifactStore
	embedder ai.Embedder
	config   *Config
	logger   *slog.Logger
	progress io.Writer
}

// NewEmbedStage creates the embedding stage.
// progress: where to write progress output (typically os.Stderr)
func NewEmbedStage(store storage.ArtifactStore, embedder ai.Embedder, config *Config, progress io.Writer) *EmbedStage {
	return &EmbedStage{
		store:    store,
		embedder: embedder,
		config:   config,
		logger:   slog.Default().With("component", "embed"),
		progress: progress,
	}
}

// Run returns one embedding row per record, in record order.
//
// The matrix and its provenance document are written only after every batch
// has succeeded; a failed run leaves any previous artifact untouched. A
// batch failure is retried with exponential backoff and aborts the stage
// once retries are exhausted.
func (s *EmbedStage) Run(ctx context.Context, records []*core.Record) (core.Matrix, error) {
	want := embeddingProvenance{
		CorpusHash: core.FingerprintRecords(records),
		Model:      s.config.EmbeddingModel,
		Count:      len(records),
	}

	if s.config.Resume && !s.config.ForceEmbed {
		if cached, ok := s.cached(ctx, want); ok {
			s.logger.Info("reusing cached embeddings", "records", len(records))
			return cached, nil
		}
	}

	texts := make([]string, len(records))
	for i, record := range records {
		texts[i] = record.Title
	}

	s.logger.Info("embedding corpus",
		"records", len(records), "model", want.Model, "batchSize", s.config.BatchSize)

	tracker := NewProgressTracker(s.progress, len(records), s.config.BatchSize)
	tracker.Start()

	matrix := make(core.Matrix, 0, len(records))
	for start := 0; start < len(texts); start += s.config.BatchSize {
		end := start + s.config.BatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		batchStart := time.Now()
		var vectors [][]float32
		err := RetryWithBackoff(ctx, func() error {
			var err error
			vectors, err = s.embedder.EmbedTexts(ctx, batch)
			return err
		}, s.config.MaxRetries, s.config.RetryDelay)
		if err != nil {
			return nil, fmt.Errorf("embedding batch %d-%d failed after %d attempts: %w",
				start, end, s.config.MaxRetries, err)
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("embedding count mismatch in batch %d-%d: expected %d, got %d",
				start, end, len(batch), len(vectors))
		}

		matrix = append(matrix, vectors...)
		tracker.Update(len(matrix))
		s.logger.Debug("embedded batch",
			"done", len(matrix), "total", len(texts), "took", time.Since(batchStart).Round(time.Millisecond))

		if end < len(texts) && s.config.BatchPause > 0 {
			timer := time.NewTimer(s.config.BatchPause)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
	}
	tracker.Finish()

	if err := core.ValidateAligned(records, matrix.Rows()); err != nil {
		return nil, fmt.Errorf("embedding result misaligned: %w", err)
	}

	if err := s.store.PutMatrix(ctx, embeddingsKey(s.config.Year), matrix); err != nil {
		return nil, fmt.Errorf("failed to store embeddings: %w", err)
	}
	if err := s.store.PutJSON(ctx, embeddingsMetaKey(s.config.Year), want); err != nil {
		return nil, fmt.Errorf("failed to store embedding provenance: %w", err)
	}

	elapsed := tracker.Elapsed()
	s.logger.Info("embedding complete",
		"records", len(records), "elapsed", elapsed.Round(time.Second))
	return matrix, nil
}

// cached loads the stored matrix when the stored provenance equals want.
// Any read or parse failure is a cache miss.
func (s *EmbedStage) cached(ctx context.Context, want embeddingProvenance) (core.Matrix, bool) {
	var got embeddingProvenance
	if err := s.store.GetJSON(ctx, embeddingsMetaKey(s.config.Year), &got); err != nil {
		return nil, false
	}
	if got != want {
		s.logger.Debug("embedding cache invalid",
			"storedModel", got.Model, "storedCount", got.Count)
		return nil, false
	}

	matrix, err := s.store.GetMatrix(ctx, embeddingsKey(s.config.Year))
	if err != nil || matrix.Rows() != want.Count {
		return nil, false
	}
	return matrix, true
}
