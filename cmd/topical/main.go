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


package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/topical"
	"github.com/poiesic/topical/ai"
	"github.com/poiesic/topical/core"
	"github.com/poiesic/topical/pipeline"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "topical",
		Usage: "Topic clustering for yearly bookmark corpora",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run the clustering pipeline for one year",
				Action: runCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "year",
						Aliases:  []string{"y"},
						Usage:    "Year of the corpus to process",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB artifact database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "data-root",
						Usage: "Directory holding per-year corpus subdirectories",
						Value: "data",
					},
					&cli.StringFlag{
						Name:  "out-dir",
						Usage: "Directory for output JSON files",
						Value: "out",
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL (also used for the labeling LLM)",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "snowflake-arctic-embed2:568m",
					},
					&cli.StringFlag{
						Name:  "llm-model",
						Usage: "LLM model name for cluster keyword labeling",
						Value: "qwen3:1.7b",
					},
					&cli.BoolFlag{
						Name:  "llm-summary",
						Usage: "Label clusters with LLM-generated keywords",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Cap on distinct titles to load (0 = no limit)",
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Recompute every stage and ignore all cached artifacts",
					},
					&cli.BoolFlag{
						Name:  "force-embed",
						Usage: "Recompute the embedding matrix",
					},
					&cli.BoolFlag{
						Name:  "force-reduce",
						Usage: "Recompute the projections",
					},
					&cli.BoolFlag{
						Name:  "force-cluster",
						Usage: "Recompute the label assignments",
					},
					&cli.BoolFlag{
						Name:  "kmeans-on-embeddings",
						Usage: "Run the partition strategy on raw embeddings instead of the 10-D projection",
					},
					&cli.BoolFlag{
						Name:  "resume",
						Usage: "Reuse cached artifacts and completed outputs",
						Value: true,
					},
					&cli.BoolFlag{
						Name:  "retry-empty-labels",
						Usage: "Re-ask the LLM for clusters whose previous labeling returned no keywords",
					},
					&cli.IntFlag{
						Name:  "min-cluster-size",
						Usage: "Smallest cluster the density strategy keeps",
						Value: 15,
					},
					&cli.IntFlag{
						Name:  "min-samples",
						Usage: "Core-point neighbor count for the density strategy",
						Value: 5,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of titles per embedding request",
						Value: 128,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed embedding calls",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.Int64Flag{
						Name:  "seed",
						Usage: "Seed for randomized stages",
						Value: 42,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runCommand(c *cli.Context) error {
	ctx := context.Background()

	config := pipeline.DefaultConfig()
	config.Year = c.Int("year")
	config.DataRoot = c.String("data-root")
	config.OutDir = c.String("out-dir")
	config.Limit = c.Int("limit")
	config.BatchSize = c.Int("batch-size")
	config.MaxRetries = c.Int("max-retries")
	config.RetryDelay = c.Duration("retry-delay")
	config.Seed = c.Int64("seed")
	config.MinClusterSize = c.Int("min-cluster-size")
	config.MinSamples = c.Int("min-samples")
	config.KMeansOnEmbeddings = c.Bool("kmeans-on-embeddings")
	config.LLMSummary = c.Bool("llm-summary")
	config.RetryEmptyLabels = c.Bool("retry-empty-labels")
	config.Resume = c.Bool("resume")
	config.ForceEmbed = c.Bool("force-embed")
	config.ForceReduce = c.Bool("force-reduce")
	config.ForceCluster = c.Bool("force-cluster")
	if c.Bool("force") {
		config.ForceAll()
	}

	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}
	if config.MinClusterSize <= 0 || config.MinSamples <= 0 {
		return fmt.Errorf("min-cluster-size and min-samples must be greater than 0")
	}

	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithLabelerModel(c.String("llm-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	p, err := topical.NewPipeline(c.String("db"), config, topical.WithAIConfig(aiConfig))
	if err != nil {
		return fmt.Errorf("failed to open pipeline: %w", err)
	}
	defer p.Close()

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Corpus: %s (year %d)\n", config.DataRoot, config.Year)
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := p.Run(ctx); err != nil {
		if errors.Is(err, core.ErrNoRecords) {
			fmt.Fprintf(os.Stderr, "No usable records for %d, nothing to do\n", config.Year)
			return nil
		}
		return fmt.Errorf("run failed: %w", err)
	}

	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
