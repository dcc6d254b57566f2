package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/topical/ai/mock"
	"github.com/poiesic/topical/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func labelingFixture(clusters int) ([]*core.ClusterSummary, map[int][]string) {
	summaries := make([]*core.ClusterSummary, clusters)
	titles := map[int][]string{}
	for i := range summaries {
		summaries[i] = &core.ClusterSummary{Cluster: i, Size: 1}
		titles[i] = []string{"title-" + string(rune('a'+i))}
	}
	return summaries, titles
}

func TestLabelStage_LabelsEveryCluster(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	config := testConfig()

	labeler := mock.NewMockLabeler()
	stage := NewLabelStage(store, labeler, config)
	summaries, titles := labelingFixture(3)

	require.NoError(t, stage.Run(ctx, StrategyDensity, summaries, titles))
	assert.Equal(t, 3, labeler.CallCount())
	for _, summary := range summaries {
		assert.True(t, summary.Attempted())
		assert.NotEmpty(t, summary.LLMKeywords)
	}

	// The final checkpoint is the complete document.
	var stored []*core.ClusterSummary
	require.NoError(t, store.GetJSON(ctx, summaryKey(StrategyDensity, config.Year), &stored))
	require.Len(t, stored, 3)
	for _, summary := range stored {
		assert.True(t, summary.Attempted())
	}
}

func TestLabelStage_ResumesSkippingLabeledClusters(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	config := testConfig()

	// A previous interrupted run labeled only cluster 3 of 0..4.
	previous := []*core.ClusterSummary{
		{Cluster: 3, Size: 1, LLMKeywords: []string{"kept"}},
	}
	require.NoError(t, store.PutJSON(ctx, summaryKey(StrategyDensity, config.Year), previous))

	labeler := mock.NewMockLabeler()
	stage := NewLabelStage(store, labeler, config)
	summaries, titles := labelingFixture(5)

	require.NoError(t, stage.Run(ctx, StrategyDensity, summaries, titles))

	assert.Equal(t, 4, labeler.CallCount(), "only clusters 0,1,2,4 need the model")
	for _, request := range labeler.Requests() {
		assert.NotEqual(t, titles[3], request, "cluster 3 must not be re-requested")
	}
	assert.Equal(t, []string{"kept"}, summaries[3].LLMKeywords)
}

func TestLabelStage_EmptyAttemptSkippedByDefault(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	config := testConfig()

	previous := []*core.ClusterSummary{
		{Cluster: 1, Size: 1, LLMKeywords: []string{}},
	}
	require.NoError(t, store.PutJSON(ctx, summaryKey(StrategyKMeans, config.Year), previous))

	labeler := mock.NewMockLabeler()
	stage := NewLabelStage(store, labeler, config)
	summaries, titles := labelingFixture(2)

	require.NoError(t, stage.Run(ctx, StrategyKMeans, summaries, titles))
	assert.Equal(t, 1, labeler.CallCount())
	assert.True(t, summaries[1].Attempted())
	assert.Empty(t, summaries[1].LLMKeywords)
}

func TestLabelStage_RetryEmptyLabels(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	config := testConfig()
	config.RetryEmptyLabels = true

	previous := []*core.ClusterSummary{
		{Cluster: 1, Size: 1, LLMKeywords: []string{}},
	}
	require.NoError(t, store.PutJSON(ctx, summaryKey(StrategyKMeans, config.Year), previous))

	labeler := mock.NewMockLabeler()
	stage := NewLabelStage(store, labeler, config)
	summaries, titles := labelingFixture(2)

	require.NoError(t, stage.Run(ctx, StrategyKMeans, summaries, titles))
	assert.Equal(t, 2, labeler.CallCount(), "empty attempts are retried when configured")
	assert.NotEmpty(t, summaries[1].LLMKeywords)
}

func TestLabelStage_ModelFailureDegradesToEmpty(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	config := testConfig()

	labeler := mock.NewMockLabeler()
	labeler.KeywordsFunc = func(ctx context.Context, titles []string) ([]string, error) {
		if titles[0] == "title-b" {
			return nil, errors.New("model unavailable")
		}
		return []string{"ok"}, nil
	}
	stage := NewLabelStage(store, labeler, config)
	summaries, titles := labelingFixture(3)

	require.NoError(t, stage.Run(ctx, StrategyDensity, summaries, titles))

	assert.Equal(t, []string{"ok"}, summaries[0].LLMKeywords)
	require.NotNil(t, summaries[1].LLMKeywords)
	assert.Empty(t, summaries[1].LLMKeywords, "failure yields an attempted, empty entry")
	assert.Equal(t, []string{"ok"}, summaries[2].LLMKeywords)
}

func TestLabelStage_CheckpointsAfterEveryCluster(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	config := testConfig()

	labeler := mock.NewMockLabeler()
	labeler.KeywordsFunc = func(lctx context.Context, reqTitles []string) ([]string, error) {
		// Inspect the checkpoint written for the previous cluster.
		var stored []*core.ClusterSummary
		err := store.GetJSON(ctx, summaryKey(StrategyDensity, config.Year), &stored)
		if reqTitles[0] == "title-b" {
			// Cluster 0 was labeled and must already be persisted.
			if err != nil || len(stored) != 2 || !stored[0].Attempted() {
				return nil, errors.New("missing checkpoint for cluster 0")
			}
		}
		return []string{"kw"}, nil
	}
	stage := NewLabelStage(store, labeler, config)
	summaries, titles := labelingFixture(2)

	require.NoError(t, stage.Run(ctx, StrategyDensity, summaries, titles))
	assert.Equal(t, 2, labeler.CallCount())
}

func TestLabelStage_NoResumeRelabelsEverything(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	config := testConfig()
	config.Resume = false

	previous := []*core.ClusterSummary{
		{Cluster: 0, Size: 1, LLMKeywords: []string{"stale"}},
	}
	require.NoError(t, store.PutJSON(ctx, summaryKey(StrategyDensity, config.Year), previous))

	labeler := mock.NewMockLabeler()
	stage := NewLabelStage(store, labeler, config)
	summaries, titles := labelingFixture(1)

	require.NoError(t, stage.Run(ctx, StrategyDensity, summaries, titles))
	assert.Equal(t, 1, labeler.CallCount())
	assert.NotEqual(t, []string{"stale"}, summaries[0].LLMKeywords)
}
