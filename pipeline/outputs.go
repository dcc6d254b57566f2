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
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/poiesic/topical/core"
	"github.com/poiesic/topical/storage"
)

// RecordOutput is one per-record entry in a strategy's output document:
// the record fields plus its cluster assignment and 2-D plot coordinates.
type RecordOutput struct {
	Id       int     `json:"id"`
	Title    string  `json:"title"`
	Link     string  `json:"link"`
	Date     string  `json:"date"`
	Source   string  `json:"source"`
	DupCount int     `json:"dup_count"`
	Cluster  int     `json:"cluster"`
	X        float32 `json:"x"`
	Y        float32 `json:"y"`
}

// OutputWriter persists a strategy's final artifacts: the per-record
// document and the cluster summary document, written wholesale to both the
// artifact store and JSON files under the output directory.
type OutputWriter struct {
	store  storage.ArtifactStore
	config *Config
	logger *slog.Logger
}

func NewOutputWriter(store storage.ArtifactStore, config *Config) *OutputWriter {
	return &OutputWriter{
		store:  store,
		config: config,
		logger: slog.Default().With("component", "output"),
	}
}

// Write replaces the strategy's output and summary documents.
func (w *OutputWriter) Write(ctx context.Context, strategy string, records []*core.Record, labels core.Labels, coords core.Matrix, summaries []*core.ClusterSummary) error {
	docs := make([]RecordOutput, len(records))
	for i, record := range records {
		docs[i] = RecordOutput{
			Id:       record.Id,
			Title:    record.Title,
			Link:     record.Link,
			Date:     record.Date,
			Source:   record.Source,
			DupCount: record.DupCount,
			Cluster:  labels[i],
			X:        coords[i][0],
			Y:        coords[i][1],
		}
	}

	if err := w.store.PutJSON(ctx, outputKey(strategy, w.config.Year), docs); err != nil {
		return fmt.Errorf("failed to store %s output: %w", strategy, err)
	}
	if err := w.store.PutJSON(ctx, summaryKey(strategy, w.config.Year), summaries); err != nil {
		return fmt.Errorf("failed to store %s summaries: %w", strategy, err)
	}

	if err := w.writeFile(fmt.Sprintf("clusters_%s.json", strategy), docs); err != nil {
		return err
	}
	if err := w.writeFile(fmt.Sprintf("clusters_%s_summary.json", strategy), summaries); err != nil {
		return err
	}

	w.logger.Info("wrote outputs",
		"strategy", strategy, "records", len(docs), "clusters", len(summaries))
	return nil
}

// WriteRunMeta replaces the run-level metadata document.
func (w *OutputWriter) WriteRunMeta(ctx context.Context, meta *core.RunMeta) error {
	if err := w.store.PutJSON(ctx, runMetaKey(meta.Year), meta); err != nil {
		return fmt.Errorf("failed to store run metadata: %w", err)
	}
	return w.writeFile(fmt.Sprintf("run_%d_meta.json", meta.Year), meta)
}

func (w *OutputWriter) writeFile(name string, v any) error {
	if err := os.MkdirAll(w.config.OutDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	path := filepath.Join(w.config.OutDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
