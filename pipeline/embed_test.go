package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/poiesic/topical/ai/mock"
	"github.com/poiesic/topical/core"
	"github.com/poiesic/topical/storage"
	badgerstore "github.com/poiesic/topical/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	config := DefaultConfig()
	config.Year = 2025
	config.EmbeddingModel = "mock-model"
	config.BatchPause = 0
	config.RetryDelay = time.Millisecond
	return config
}

func makeRecords(n int) []*core.Record {
	records := make([]*core.Record, n)
	for i := range records {
		records[i] = &core.Record{
			Id:       i,
			Title:    fmt.Sprintf("title-%02d", i),
			Link:     fmt.Sprintf("https://example.com/%d", i),
			Date:     "2025-03-01",
			Source:   "2025/03/bookmarks.json",
			DupCount: 1,
		}
	}
	return records
}

func newMemoryStore(t *testing.T) storage.ArtifactStore {
	t.Helper()
	store, err := badgerstore.NewMemoryArtifactStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestEmbedStage_ComputesAndCaches(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	config := testConfig()
	records := makeRecords(6)

	embedder := mock.NewMockEmbedder()
	stage := NewEmbedStage(store, embedder, config, io.Discard)

	first, err := stage.Run(ctx, records)
	require.NoError(t, err)
	require.Equal(t, len(records), first.Rows())
	assert.Equal(t, 1, embedder.CallCount())

	// Same corpus, same model: the service must not be invoked again.
	second, err := stage.Run(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, 1, embedder.CallCount())
	assert.Equal(t, first, second)
}

func TestEmbedStage_ModelChangeInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	config := testConfig()
	records := makeRecords(4)

	embedder := mock.NewMockEmbedder()
	stage := NewEmbedStage(store, embedder, config, io.Discard)
	_, err := stage.Run(ctx, records)
	require.NoError(t, err)
	require.Equal(t, 1, embedder.CallCount())

	config.EmbeddingModel = "other-model"
	_, err = stage.Run(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, 2, embedder.CallCount(), "provenance mismatch must recompute")
}

func TestEmbedStage_CorpusChangeInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	config := testConfig()

	embedder := mock.NewMockEmbedder()
	stage := NewEmbedStage(store, embedder, config, io.Discard)
	_, err := stage.Run(ctx, makeRecords(4))
	require.NoError(t, err)

	changed := makeRecords(4)
	changed[2].Title = "a different title"
	_, err = stage.Run(ctx, changed)
	require.NoError(t, err)
	assert.Equal(t, 2, embedder.CallCount())
}

func TestEmbedStage_ForceBypassesCache(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	config := testConfig()
	records := makeRecords(4)

	embedder := mock.NewMockEmbedder()
	stage := NewEmbedStage(store, embedder, config, io.Discard)
	_, err := stage.Run(ctx, records)
	require.NoError(t, err)

	config.ForceEmbed = true
	_, err = stage.Run(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, 2, embedder.CallCount())

	// The forced result is cached for the next unforced run.
	config.ForceEmbed = false
	_, err = stage.Run(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, 2, embedder.CallCount())
}

func TestEmbedStage_FailurePersistsNothing(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	config := testConfig()
	config.MaxRetries = 2

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("service down")
	}
	stage := NewEmbedStage(store, embedder, config, io.Discard)

	_, err := stage.Run(ctx, makeRecords(4))
	require.Error(t, err)

	_, err = store.GetMatrix(ctx, embeddingsKey(config.Year))
	assert.ErrorIs(t, err, storage.ErrNotFound, "a failed stage must leave no artifact")
	var meta embeddingProvenance
	assert.Error(t, store.GetJSON(ctx, embeddingsMetaKey(config.Year), &meta))
}

func TestEmbedStage_CountMismatchFails(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	config := testConfig()

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1, 2}}, nil
	}
	stage := NewEmbedStage(store, embedder, config, io.Discard)

	_, err := stage.Run(ctx, makeRecords(4))
	assert.ErrorContains(t, err, "mismatch")
}

func TestEmbedStage_Batching(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	config := testConfig()
	config.BatchSize = 10

	var batchSizes []int
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		batchSizes = append(batchSizes, len(texts))
		vectors := make([][]float32, len(texts))
		for i := range vectors {
			vectors[i] = []float32{float32(i), 1}
		}
		return vectors, nil
	}
	stage := NewEmbedStage(store, embedder, config, io.Discard)

	matrix, err := stage.Run(ctx, makeRecords(25))
	require.NoError(t, err)
	assert.Equal(t, 25, matrix.Rows())
	assert.Equal(t, []int{10, 10, 5}, batchSizes)
}
