package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/topical/ai/mock"
	"github.com/poiesic/topical/core"
	"github.com/poiesic/topical/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeCorpus lays out a one-month corpus of distinct titles plus a few
// duplicates under root/<year>/03/.
func writeCorpus(t *testing.T, root string, year, distinct int) {
	t.Helper()
	monthDir := filepath.Join(root, fmt.Sprintf("%d", year), "03")
	require.NoError(t, os.MkdirAll(monthDir, 0o755))

	type item struct {
		Title string `json:"title"`
		Link  string `json:"link"`
		Date  string `json:"date"`
	}
	items := []item{}
	for i := 0; i < distinct; i++ {
		items = append(items, item{
			Title: fmt.Sprintf("title-%02d", i),
			Link:  fmt.Sprintf("https://example.com/%d", i),
			Date:  fmt.Sprintf("%d-03-01", year),
		})
	}
	// Duplicates of the first two titles.
	items = append(items, items[0], items[1])

	data, err := json.Marshal(items)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(monthDir, "bookmarks.json"), data, 0o644))
}

func runnerFixture(t *testing.T, config *Config) (storage.ArtifactStore, *Config) {
	t.Helper()
	if config == nil {
		config = testConfig()
	}
	config.DataRoot = t.TempDir()
	config.OutDir = filepath.Join(t.TempDir(), "out")
	writeCorpus(t, config.DataRoot, config.Year, 30)
	return newMemoryStore(t), config
}

func TestRunner_FullRun(t *testing.T) {
	ctx := context.Background()
	store, config := runnerFixture(t, nil)
	config.LLMSummary = true

	embedder := mock.NewMockEmbedder()
	labeler := mock.NewMockLabeler()
	runner := NewRunner(store, embedder, labeler, config, io.Discard)

	require.NoError(t, runner.Run(ctx))
	assert.Positive(t, embedder.CallCount())
	assert.Positive(t, labeler.CallCount())

	for _, strategy := range []string{StrategyDensity, StrategyKMeans, StrategyAgglomerative} {
		path := filepath.Join(config.OutDir, fmt.Sprintf("clusters_%s.json", strategy))
		data, err := os.ReadFile(path)
		require.NoError(t, err, strategy)

		var docs []RecordOutput
		require.NoError(t, json.Unmarshal(data, &docs))
		require.Len(t, docs, 30, strategy)
		for i, doc := range docs {
			assert.Equal(t, i, doc.Id, "output rows keep record order")
		}
		assert.Equal(t, "title-00", docs[0].Title)
		assert.Equal(t, 2, docs[0].DupCount, "duplicate occurrences are folded in")

		summaryPath := filepath.Join(config.OutDir, fmt.Sprintf("clusters_%s_summary.json", strategy))
		data, err = os.ReadFile(summaryPath)
		require.NoError(t, err, strategy)
		var summaries []*core.ClusterSummary
		require.NoError(t, json.Unmarshal(data, &summaries))
		require.NotEmpty(t, summaries, strategy)
		for _, summary := range summaries {
			assert.NotEmpty(t, summary.LLMKeywords, "%s cluster %d", strategy, summary.Cluster)
		}
	}

	data, err := os.ReadFile(filepath.Join(config.OutDir, fmt.Sprintf("run_%d_meta.json", config.Year)))
	require.NoError(t, err)
	var meta core.RunMeta
	require.NoError(t, json.Unmarshal(data, &meta))
	assert.Equal(t, config.Year, meta.Year)
	assert.Equal(t, "mock-model", meta.Model)
	assert.Equal(t, 30, meta.Count)
	assert.NotEmpty(t, meta.CorpusHash)
}

func TestRunner_SecondRunUsesCaches(t *testing.T) {
	ctx := context.Background()
	store, config := runnerFixture(t, nil)
	config.LLMSummary = true

	first := NewRunner(store, mock.NewMockEmbedder(), mock.NewMockLabeler(), config, io.Discard)
	require.NoError(t, first.Run(ctx))

	// Fresh service doubles over the same store: everything is cached and
	// complete, so neither service may be touched.
	embedder := mock.NewMockEmbedder()
	labeler := mock.NewMockLabeler()
	second := NewRunner(store, embedder, labeler, config, io.Discard)
	require.NoError(t, second.Run(ctx))

	assert.Zero(t, embedder.CallCount(), "embeddings must come from cache")
	assert.Zero(t, labeler.CallCount(), "completed summaries must not be relabeled")
}

func TestRunner_ForceEmbedDoesNotCascade(t *testing.T) {
	ctx := context.Background()
	store, config := runnerFixture(t, nil)

	require.NoError(t, NewRunner(store, mock.NewMockEmbedder(), mock.NewMockLabeler(), config, io.Discard).Run(ctx))

	// Plant a recognizable matrix under the 10-D projection key. Its
	// provenance still matches the unchanged corpus and model, so a
	// non-cascading force-embed run must leave it untouched.
	marker := make(core.Matrix, 30)
	for i := range marker {
		marker[i] = []float32{7, 7, 7, 7, 7, 7, 7, 7, 7, 7}
	}
	require.NoError(t, store.PutMatrix(ctx, projectionKey(config.Year, 10), marker))

	embedder := mock.NewMockEmbedder()
	config.ForceEmbed = true
	require.NoError(t, NewRunner(store, embedder, mock.NewMockLabeler(), config, io.Discard).Run(ctx))

	assert.Positive(t, embedder.CallCount(), "embedding recomputes under force")

	stored, err := store.GetMatrix(ctx, projectionKey(config.Year, 10))
	require.NoError(t, err)
	assert.Equal(t, marker, stored, "forcing embeddings must not recompute projections")
}

func TestRunner_KMeansOnEmbeddings(t *testing.T) {
	ctx := context.Background()
	store, config := runnerFixture(t, nil)
	config.KMeansOnEmbeddings = true

	require.NoError(t, NewRunner(store, mock.NewMockEmbedder(), mock.NewMockLabeler(), config, io.Discard).Run(ctx))

	_, err := os.Stat(filepath.Join(config.OutDir, "clusters_kmeans_embed.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(config.OutDir, "clusters_kmeans.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunner_NoRecords(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	config := testConfig()
	config.DataRoot = t.TempDir()
	config.OutDir = filepath.Join(t.TempDir(), "out")

	err := NewRunner(store, mock.NewMockEmbedder(), mock.NewMockLabeler(), config, io.Discard).Run(ctx)
	assert.ErrorIs(t, err, core.ErrNoRecords)
}
