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

import "time"

// Config holds configuration for a pipeline run.
type Config struct {
	// Year selects the corpus subdirectory to ingest.
	Year int

	// DataRoot is the directory holding per-year corpus subdirectories.
	DataRoot string

	// OutDir is where output JSON files are written.
	OutDir string

	// Limit caps the number of distinct records loaded (0 = no limit).
	Limit int

	// EmbeddingModel and EmbeddingHost identify the embedding service; they
	// are part of the embedding artifact's provenance.
	EmbeddingModel string
	EmbeddingHost  string

	// BatchSize is the number of titles per embedding request.
	BatchSize int

	// BatchPause is the idle time between consecutive embedding batches,
	// keeping pressure off a local inference service.
	BatchPause time.Duration

	// MaxRetries is the maximum number of retry attempts for embedding calls.
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff.
	RetryDelay time.Duration

	// Seed fixes randomized stages (reduction sign convention, k-means
	// initialization) for reproducible assignments.
	Seed int64

	// MinClusterSize and MinSamples tune the density-based strategy.
	MinClusterSize int
	MinSamples     int

	// KMeansOnEmbeddings runs the partition strategy on the raw embedding
	// matrix instead of the 10-D projection.
	KMeansOnEmbeddings bool

	// LLMSummary enables keyword labeling of clusters.
	LLMSummary bool

	// RetryEmptyLabels re-asks the model for clusters whose previous
	// labeling attempt produced no keywords. Off by default: an attempted
	// cluster is skipped on resume even when its keyword list is empty.
	RetryEmptyLabels bool

	// Resume allows reuse of cached stage artifacts and completed outputs.
	Resume bool

	// Per-stage force switches. Forcing recomputes and overwrites that
	// stage's artifact but deliberately does not invalidate downstream
	// artifacts; their provenance checks decide for themselves.
	ForceEmbed   bool
	ForceReduce  bool
	ForceCluster bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DataRoot:       "data",
		OutDir:         "out",
		BatchSize:      128,
		BatchPause:     100 * time.Millisecond,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
		Seed:           42,
		MinClusterSize: 15,
		MinSamples:     5,
		Resume:         true,
	}
}

// ForceAll turns on every stage force and disables artifact reuse.
func (c *Config) ForceAll() {
	c.ForceEmbed = true
	c.ForceReduce = true
	c.ForceCluster = true
	c.Resume = false
}
