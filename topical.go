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


// Package topical clusters a year of bookmark titles by topic: load and
// deduplicate, embed, reduce, cluster three ways, optionally label the
// clusters with an LLM, and write per-record and per-cluster artifacts.
package topical

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/poiesic/topical/ai"
	"github.com/poiesic/topical/ai/openai"
	"github.com/poiesic/topical/pipeline"
	"github.com/poiesic/topical/storage"
	"github.com/poiesic/topical/storage/badger"
)

// Pipeline is the top-level handle: an opened artifact store wired to the
// embedding and labeling services and a run configuration.
type Pipeline struct {
	store    storage.ArtifactStore
	embedder ai.Embedder
	labeler  ai.KeywordLabeler
	config   *pipeline.Config
	progress io.Writer
	logger   *slog.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*pipelineOptions)

type pipelineOptions struct {
	aiConfig *ai.Config
	progress io.Writer
}

// WithAIConfig overrides the AI service configuration.
func WithAIConfig(config *ai.Config) PipelineOption {
	return func(o *pipelineOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithProgress sets where progress output is written. Default is stderr.
func WithProgress(w io.Writer) PipelineOption {
	return func(o *pipelineOptions) {
		if w != nil {
			o.progress = w
		}
	}
}

// NewPipeline opens the artifact database at filePath and wires the
// services the run configuration calls for.
func NewPipeline(filePath string, config *pipeline.Config, opts ...PipelineOption) (*Pipeline, error) {
	options := &pipelineOptions{
		aiConfig: ai.DefaultConfig(),
		progress: os.Stderr,
	}
	for _, opt := range opts {
		opt(options)
	}
	if config == nil {
		config = pipeline.DefaultConfig()
	}

	options.aiConfig.Normalize()
	if err := options.aiConfig.Validate(); err != nil {
		return nil, err
	}

	// The embedding identity feeds every stage's provenance.
	config.EmbeddingModel = options.aiConfig.EmbeddingModel
	config.EmbeddingHost = options.aiConfig.EmbeddingHost

	store, err := badger.NewArtifactStore(filePath)
	if err != nil {
		return nil, err
	}

	embedder, err := openai.NewEmbedder(options.aiConfig)
	if err != nil {
		store.Close()
		return nil, err
	}

	labeler, err := openai.NewKeywordLabeler(options.aiConfig)
	if err != nil {
		store.Close()
		return nil, err
	}

	return &Pipeline{
		store:    store,
		embedder: embedder,
		labeler:  labeler,
		config:   config,
		progress: options.progress,
		logger:   slog.Default(),
	}, nil
}

// Run executes the pipeline for the configured year.
func (p *Pipeline) Run(ctx context.Context) error {
	runner := pipeline.NewRunner(p.store, p.embedder, p.labeler, p.config, p.progress)
	return runner.Run(ctx)
}

// Store exposes the underlying artifact store.
func (p *Pipeline) Store() storage.ArtifactStore {
	return p.store
}

func (p *Pipeline) Close() error {
	if err := p.store.Close(); err != nil {
		p.logger.Error("error closing artifact store", "err", err)
		return err
	}
	return nil
}
