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
	"github.com/poiesic/topical/storage"
)

// ClusterStage runs one clustering strategy over its input matrix, caching
// the label assignment keyed by the consumed artifact's identity plus the
// strategy parameters. Each strategy's cache is gated independently.
type ClusterStage struct {
	store  storage.ArtifactStore
	config *Config
	logger *slog.Logger
}

func NewClusterStage(store storage.ArtifactStore, config *Config) *ClusterStage {
	return &ClusterStage{
		store:  store,
		config: config,
		logger: slog.Default().With("component", "cluster"),
	}
}

// Run returns one label per input row. compute is invoked only on a cache
// miss; the assignment and its provenance are written together after it
// succeeds.
func (s *ClusterStage) Run(ctx context.Context, strategy string, input core.Matrix, want clusterProvenance, compute func(core.Matrix) core.Labels) (core.Labels, error) {
	if s.config.Resume && !s.config.ForceCluster {
		if cached, ok := s.cached(ctx, strategy, want, input.Rows()); ok {
			s.logger.Info("reusing cached labels", "strategy", strategy)
			return cached, nil
		}
	}

	s.logger.Info("clustering", "strategy", strategy, "records", input.Rows())
	labels := compute(input)
	if len(labels) != input.Rows() {
		return nil, fmt.Errorf("%s produced %d labels for %d records", strategy, len(labels), input.Rows())
	}

	if err := s.store.PutLabels(ctx, labelsKey(strategy, s.config.Year), labels); err != nil {
		return nil, fmt.Errorf("failed to store %s labels: %w", strategy, err)
	}
	if err := s.store.PutJSON(ctx, labelsMetaKey(strategy, s.config.Year), want); err != nil {
		return nil, fmt.Errorf("failed to store %s label provenance: %w", strategy, err)
	}

	s.logger.Info("clustering complete",
		"strategy", strategy, "clusters", len(labels.ClusterIDs()))
	return labels, nil
}

func (s *ClusterStage) cached(ctx context.Context, strategy string, want clusterProvenance, rows int) (core.Labels, bool) {
	var got clusterProvenance
	if err := s.store.GetJSON(ctx, labelsMetaKey(strategy, s.config.Year), &got); err != nil {
		return nil, false
	}
	if got != want {
		return nil, false
	}

	labels, err := s.store.GetLabels(ctx, labelsKey(strategy, s.config.Year))
	if err != nil || len(labels) != rows {
		return nil, false
	}
	return labels, true
}
