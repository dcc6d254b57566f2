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
	"github.com/poiesic/topical/cluster"
	"github.com/poiesic/topical/core"
	"github.com/poiesic/topical/corpus"
	"github.com/poiesic/topical/storage"
)

// Strategy names used in artifact keys and output file names.
const (
	StrategyDensity       = "dbscan"
	StrategyKMeans        = "kmeans"
	StrategyKMeansEmbed   = "kmeans_embed"
	StrategyAgglomerative = "agglomerative"
)

// Runner executes the full pipeline for one year.
type Runner struct {
	store    storage.ArtifactStore
	embedder ai.Embedder
	labeler  ai.KeywordLabeler
	config   *Config
	logger   *slog.Logger

	embed   *EmbedStage
	reduce  *ReduceStage
	cluster *ClusterStage
	label   *LabelStage
	outputs *OutputWriter
}

// NewRunner creates a runner over the given store and services.
// progress: where to write progress output (typically os.Stderr)
func NewRunner(store storage.ArtifactStore, embedder ai.Embedder, labeler ai.KeywordLabeler, config *Config, progress io.Writer) *Runner {
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Runner{
		store:    store,
		embedder: embedder,
		labeler:  labeler,
		config:   config,
		logger:   slog.Default().With("component", "pipeline"),
		embed:    NewEmbedStage(store, embedder, config, progress),
		reduce:   NewReduceStage(store, config),
		cluster:  NewClusterStage(store, config),
		label:    NewLabelStage(store, labeler, config),
		outputs:  NewOutputWriter(store, config),
	}
}

// Run executes load, embed, reduce, cluster, label, and write for the
// configured year. Returns core.ErrNoRecords when the corpus yields
// nothing usable.
func (r *Runner) Run(ctx context.Context) error {
	started := time.Now()
	r.logger.Info("starting run", "year", r.config.Year)

	loader := corpus.NewLoader(r.config.DataRoot)
	records, err := loader.Load(r.config.Year, r.config.Limit)
	if err != nil {
		return fmt.Errorf("corpus load failed: %w", err)
	}
	if len(records) == 0 {
		r.logger.Error("no usable records for year", "year", r.config.Year)
		return core.ErrNoRecords
	}
	corpusHash := core.FingerprintRecords(records)
	r.logger.Info("corpus loaded", "records", len(records))

	embeddings, err := r.embed.Run(ctx, records)
	if err != nil {
		return err
	}

	coords, err := r.reduce.Run(ctx, embeddings, corpusHash, 2)
	if err != nil {
		return err
	}
	reduced, err := r.reduce.Run(ctx, embeddings, corpusHash, 10)
	if err != nil {
		return err
	}

	for _, strategy := range r.strategies(corpusHash, embeddings, reduced) {
		labels, err := r.cluster.Run(ctx, strategy.name, strategy.input, strategy.provenance, strategy.compute)
		if err != nil {
			return err
		}
		if err := r.finishStrategy(ctx, strategy.name, records, labels, coords); err != nil {
			return err
		}
	}

	meta := &core.RunMeta{
		Year:       r.config.Year,
		Model:      r.config.EmbeddingModel,
		Host:       r.config.EmbeddingHost,
		CorpusHash: corpusHash,
		Count:      len(records),
	}
	if err := r.outputs.WriteRunMeta(ctx, meta); err != nil {
		return err
	}

	r.logger.Info("run complete",
		"year", r.config.Year, "records", len(records),
		"elapsed", time.Since(started).Round(time.Second))
	return nil
}

type strategyRun struct {
	name       string
	input      core.Matrix
	provenance clusterProvenance
	compute    func(core.Matrix) core.Labels
}

// strategies builds the three runs in their fixed order. The partition
// strategy consumes the 10-D projection unless KMeansOnEmbeddings moves it
// to the raw embedding matrix, which also changes its name and cache keys.
func (r *Runner) strategies(corpusHash string, embeddings, reduced core.Matrix) []strategyRun {
	base := clusterProvenance{CorpusHash: corpusHash, Model: r.config.EmbeddingModel}

	density := base
	density.Input = "projection-10d"
	density.MinClusterSize = r.config.MinClusterSize
	density.MinSamples = r.config.MinSamples

	partitionName := StrategyKMeans
	partitionInput := reduced
	partition := base
	partition.Input = "projection-10d"
	partition.Seed = r.config.Seed
	if r.config.KMeansOnEmbeddings {
		partitionName = StrategyKMeansEmbed
		partitionInput = embeddings
		partition.Input = "embeddings"
	}

	hierarchical := base
	hierarchical.Input = "projection-10d"
	hierarchical.Clusters = cluster.AgglomerativeClusterCount(reduced.Rows())

	return []strategyRun{
		{
			name:       StrategyDensity,
			input:      reduced,
			provenance: density,
			compute: func(m core.Matrix) core.Labels {
				return cluster.Density(m, cluster.DensityParams{
					MinClusterSize: r.config.MinClusterSize,
					MinSamples:     r.config.MinSamples,
				})
			},
		},
		{
			name:       partitionName,
			input:      partitionInput,
			provenance: partition,
			compute: func(m core.Matrix) core.Labels {
				return cluster.KMeans(m, cluster.KMeansParams{Seed: r.config.Seed})
			},
		},
		{
			name:       StrategyAgglomerative,
			input:      reduced,
			provenance: hierarchical,
			compute:    cluster.Agglomerative,
		},
	}
}

// finishStrategy summarizes, optionally labels, and writes outputs for one
// strategy, skipping all of it when the stored outputs already cover the
// current assignment.
func (r *Runner) finishStrategy(ctx context.Context, strategy string, records []*core.Record, labels core.Labels, coords core.Matrix) error {
	if r.config.Resume && r.strategyComplete(ctx, strategy, labels) {
		r.logger.Info("outputs already complete", "strategy", strategy)
		return nil
	}

	summaries := Summarize(records, labels)
	if r.config.LLMSummary {
		titles := clusterTitles(records, labels, maxTitlesPerPrompt)
		if err := r.label.Run(ctx, strategy, summaries, titles); err != nil {
			return err
		}
	}
	return r.outputs.Write(ctx, strategy, records, labels, coords, summaries)
}

// strategyComplete reports whether stored outputs fully cover labels: the
// per-record document has one row per record and the summary document
// passes the completion check (including non-empty keywords when labeling
// is on).
func (r *Runner) strategyComplete(ctx context.Context, strategy string, labels core.Labels) bool {
	var docs []RecordOutput
	if err := r.store.GetJSON(ctx, outputKey(strategy, r.config.Year), &docs); err != nil {
		return false
	}
	if len(docs) != len(labels) {
		return false
	}

	var stored []*core.ClusterSummary
	if err := r.store.GetJSON(ctx, summaryKey(strategy, r.config.Year), &stored); err != nil {
		return false
	}
	return summariesComplete(stored, labels, r.config.LLMSummary)
}
