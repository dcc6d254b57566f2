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
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/topical/ai"
	"github.com/poiesic/topical/core"
	"github.com/poiesic/topical/storage"
)

// maxTitlesPerPrompt caps how many member titles one labeling prompt may
// carry.
const maxTitlesPerPrompt = 200

// LabelStage asks the language model for topic keywords, one cluster at a
// time in ascending id order, and rewrites the whole summary document to
// the store after every cluster. That per-cluster checkpoint is what makes
// an interrupted labeling run resumable.
type LabelStage struct {
	store   storage.ArtifactStore
	labeler ai.KeywordLabeler
	config  *Config
	logger  *slog.Logger
}

func NewLabelStage(store storage.ArtifactStore, labeler ai.KeywordLabeler, config *Config) *LabelStage {
	return &LabelStage{
		store:   store,
		labeler: labeler,
		config:  config,
		logger:  slog.Default().With("component", "label"),
	}
}

// Run fills in LLMKeywords on every summary, mutating the slice in place.
//
// A cluster already attempted in the stored document is skipped when its
// keywords are non-empty, or when they are empty and RetryEmptyLabels is
// off. A model or parse failure degrades that one cluster to an empty
// keyword list and the stage continues; only storage failures and context
// cancellation abort it.
func (s *LabelStage) Run(ctx context.Context, strategy string, summaries []*core.ClusterSummary, titles map[int][]string) error {
	previous := s.previousKeywords(ctx, strategy)

	for _, summary := range summaries {
		if kw, ok := previous[summary.Cluster]; ok {
			if len(kw) > 0 || !s.config.RetryEmptyLabels {
				summary.LLMKeywords = kw
				s.logger.Debug("skipping labeled cluster",
					"strategy", strategy, "cluster", summary.Cluster, "keywords", len(kw))
				continue
			}
		}

		keywords, err := s.labeler.Keywords(ctx, titles[summary.Cluster])
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			s.logger.Warn("keyword labeling failed",
				"strategy", strategy, "cluster", summary.Cluster, "error", err)
			keywords = []string{}
		}
		if keywords == nil {
			keywords = []string{}
		}
		summary.LLMKeywords = keywords

		// Checkpoint: persist the whole document so far.
		if err := s.store.PutJSON(ctx, summaryKey(strategy, s.config.Year), summaries); err != nil {
			return fmt.Errorf("failed to checkpoint %s summaries: %w", strategy, err)
		}
		s.logger.Info("labeled cluster",
			"strategy", strategy, "cluster", summary.Cluster,
			"size", summary.Size, "keywords", len(keywords))
	}
	return nil
}

// previousKeywords maps cluster id to stored keywords for clusters that
// were already attempted. A missing or unreadable document means nothing to
// resume.
func (s *LabelStage) previousKeywords(ctx context.Context, strategy string) map[int][]string {
	if !s.config.Resume {
		return nil
	}

	var stored []*core.ClusterSummary
	if err := s.store.GetJSON(ctx, summaryKey(strategy, s.config.Year), &stored); err != nil {
		return nil
	}

	previous := map[int][]string{}
	for _, summary := range stored {
		if summary.Attempted() {
			previous[summary.Cluster] = summary.LLMKeywords
		}
	}
	return previous
}
