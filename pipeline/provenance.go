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

import "fmt"

// Artifact store keys. Everything is namespaced by year so several years of
// runs coexist in one database.
func embeddingsKey(year int) string     { return fmt.Sprintf("embeddings:%d", year) }
func embeddingsMetaKey(year int) string { return fmt.Sprintf("embeddings-meta:%d", year) }

func projectionKey(year, dims int) string {
	return fmt.Sprintf("projection:%dd:%d", dims, year)
}
func projectionMetaKey(year, dims int) string {
	return fmt.Sprintf("projection-meta:%dd:%d", dims, year)
}

func labelsKey(strategy string, year int) string {
	return fmt.Sprintf("labels:%s:%d", strategy, year)
}
func labelsMetaKey(strategy string, year int) string {
	return fmt.Sprintf("labels-meta:%s:%d", strategy, year)
}

func summaryKey(strategy string, year int) string {
	return fmt.Sprintf("summary:%s:%d", strategy, year)
}
func outputKey(strategy string, year int) string {
	return fmt.Sprintf("output:%s:%d", strategy, year)
}

func runMetaKey(year int) string { return fmt.Sprintf("run:%d", year) }

// embeddingProvenance is the validity key for the cached embedding matrix.
// The cache is reused only when the stored document equals the one derived
// from the current corpus and configuration.
type embeddingProvenance struct {
	CorpusHash string `json:"corpus_hash"`
	Model      string `json:"model"`
	Count      int    `json:"count"`
}

// projectionProvenance keys a cached projection by the identity of the
// embedding artifact it was computed from plus the reduction parameters.
type projectionProvenance struct {
	CorpusHash string `json:"corpus_hash"`
	Model      string `json:"model"`
	Components int    `json:"components"`
	Seed       int64  `json:"seed"`
}

// clusterProvenance keys a cached label assignment by the artifact it
// consumed and the strategy parameters. Fields a strategy does not use stay
// zero.
type clusterProvenance struct {
	CorpusHash     string `json:"corpus_hash"`
	Model          string `json:"model"`
	Input          string `json:"input"`
	Seed           int64  `json:"seed,omitempty"`
	MinClusterSize int    `json:"min_cluster_size,omitempty"`
	MinSamples     int    `json:"min_samples,omitempty"`
	Clusters       int    `json:"clusters,omitempty"`
}
