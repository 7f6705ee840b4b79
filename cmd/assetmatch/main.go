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
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/poiesic/assetmatch"
	"github.com/poiesic/assetmatch/ai"
	"github.com/poiesic/assetmatch/core"
	"github.com/poiesic/assetmatch/ingestion"
	"github.com/poiesic/assetmatch/pairing"
	"github.com/poiesic/assetmatch/retry"
	"github.com/urfave/cli/v2"
)

var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true,
}

func main() {
	app := &cli.App{
		Name:  "assetmatch",
		Usage: "Content-addressable embedding store and similarity pairing for visual assets",
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
				Name:   "ingest",
				Usage:  "Describe, embed, and store every asset in a directory",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to the store directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "assets",
						Aliases:  []string{"a"},
						Usage:    "Directory of assets to ingest",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "work-dir",
						Usage: "Directory for materialized local copies",
						Value: ".assetmatch-work",
					},
					&cli.StringFlag{
						Name:  "kind",
						Usage: "Asset kind to register (source, generated, reference)",
						Value: "source",
					},
					&cli.StringFlag{
						Name:  "describer-host",
						Usage: "Vision describer service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "describer-model",
						Usage: "Vision describer model name",
						Value: "llava:13b",
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "embeddinggemma",
					},
					&cli.IntFlag{
						Name:  "dimension",
						Usage: "Embedding dimensionality",
						Value: 1536,
					},
					&cli.IntFlag{
						Name:  "concurrency",
						Usage: "Number of concurrent ingestion workers",
						Value: 8,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of assets dispatched per wave",
						Value: 32,
					},
					&cli.DurationFlag{
						Name:  "call-timeout",
						Usage: "Timeout applied to each external call",
						Value: 60 * time.Second,
					},
					&cli.BoolFlag{
						Name:  "overwrite",
						Usage: "Re-materialize assets even when a local copy exists",
					},
				},
			},
			{
				Name:   "pair",
				Usage:  "Find the best generated matches for a stored source asset",
				Action: pairCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to the store directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "source",
						Aliases:  []string{"s"},
						Usage:    "URI of the source asset to pair from",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "kind",
						Usage: "Candidate asset kind",
						Value: "generated",
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Maximum number of targets to select",
						Value: 3,
					},
					&cli.Float64Flag{
						Name:  "min-confidence",
						Usage: "Discard candidates scoring below this value",
						Value: 0.0,
					},
					&cli.Float64Flag{
						Name:  "review-threshold",
						Usage: "Flag pairs below this confidence for review",
						Value: 0.7,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for store reads",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
			{
				Name:      "cluster",
				Usage:     "Group stored assets into similarity clusters",
				Action:    clusterCommand,
				ArgsUsage: "URI [URI...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to the store directory",
						Required: true,
					},
					&cli.Float64Flag{
						Name:  "min-similarity",
						Usage: "Minimum cosine similarity for cluster membership",
						Value: 0.85,
					},
					&cli.IntFlag{
						Name:  "min-cluster-size",
						Usage: "Minimum members for a dense region",
						Value: 2,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	kind := core.AssetKind(c.String("kind"))
	if err := core.ValidateAssetKind(kind); err != nil {
		return err
	}

	assets, err := collectAssets(c.String("assets"), kind)
	if err != nil {
		return err
	}
	if len(assets) == 0 {
		fmt.Fprintln(os.Stderr, "no assets found")
		return nil
	}

	aiConfig := ai.NewConfig(
		ai.WithDescriberHost(c.String("describer-host")),
		ai.WithDescriberModel(c.String("describer-model")),
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithDimension(c.Int("dimension")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	lib, err := assetmatch.Open(c.String("db"), assetmatch.WithAIConfig(aiConfig))
	if err != nil {
		return fmt.Errorf("failed to open library: %w", err)
	}
	defer lib.Close()

	materializer, err := ingestion.NewLocalMaterializer(c.String("work-dir"))
	if err != nil {
		return err
	}

	pipeline, err := lib.NewIngestionPipeline(materializer,
		ingestion.WithPoolSize(c.Int("concurrency")),
		ingestion.WithBatchSize(c.Int("batch-size")),
		ingestion.WithCallTimeout(c.Duration("call-timeout")),
		ingestion.WithOverwrite(c.Bool("overwrite")),
	)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	fmt.Fprintf(os.Stderr, "Ingesting %d assets from %s\n", len(assets), c.String("assets"))
	manifest := pipeline.Ingest(ctx, assets)

	fmt.Fprintf(os.Stderr, "Stored: %d\n", len(manifest.Succeeded()))
	for _, failure := range manifest.Failed() {
		fmt.Fprintf(os.Stderr, "Failed (%s): %s: %v\n",
			failure.Stage, failure.Asset.Filename, failure.Reason)
	}
	if len(manifest.Failed()) > 0 {
		return fmt.Errorf("%d of %d assets failed", len(manifest.Failed()), len(assets))
	}
	return nil
}

func pairCommand(c *cli.Context) error {
	ctx := context.Background()

	kind := core.AssetKind(c.String("kind"))
	if err := core.ValidateAssetKind(kind); err != nil {
		return err
	}

	lib, err := assetmatch.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open library: %w", err)
	}
	defer lib.Close()

	sourceURI := c.String("source")
	primaryID, err := core.ContentIDFromURI(sourceURI)
	if err != nil {
		return err
	}
	legacyID := core.LegacyContentID(sourceURI)

	// Older stores may only know the asset under its legacy id.
	var vector []float32
	var matchedID core.ContentID
	err = retry.Do(ctx, func() error {
		var retrieveErr error
		vector, matchedID, retrieveErr = lib.VectorStore().Retrieve(ctx, primaryID, legacyID)
		return retrieveErr
	}, c.Int("max-retries"), c.Duration("retry-delay"))
	if err != nil {
		return fmt.Errorf("failed to retrieve source embedding: %w", err)
	}

	engine, err := lib.NewPairingEngine(
		pairing.WithReviewThreshold(c.Float64("review-threshold")),
	)
	if err != nil {
		return err
	}

	pair, err := engine.Pair(ctx, &pairing.PairRequest{
		Source:           &core.Descriptor{Embedding: vector},
		SourceID:         matchedID,
		SourceFilename:   filepath.Base(sourceURI),
		CandidatesOfKind: kind,
		TopK:             c.Int("top-k"),
		MinConfidence:    c.Float64("min-confidence"),
	})
	if err != nil {
		return err
	}
	if pair == nil {
		fmt.Println("no pair found")
		return nil
	}

	fmt.Printf("source:      %s\n", pair.SourceContentID)
	fmt.Printf("confidence:  %.3f\n", pair.Confidence)
	fmt.Printf("needsReview: %t\n", pair.NeedsReview)
	for i, target := range pair.TargetContentIDs {
		fmt.Printf("target[%d]:   %s\n", i, target)
	}
	return nil
}

func clusterCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.NArg() == 0 {
		return fmt.Errorf("at least one asset URI is required")
	}

	ids := make([]core.ContentID, 0, c.NArg())
	for _, uri := range c.Args().Slice() {
		id, err := core.ContentIDFromURI(uri)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	lib, err := assetmatch.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open library: %w", err)
	}
	defer lib.Close()

	engine, err := lib.NewClusteringEngine()
	if err != nil {
		return err
	}

	clusters, noise, err := engine.Cluster(ctx, ids,
		c.Float64("min-similarity"), c.Int("min-cluster-size"))
	if err != nil {
		return err
	}

	for i, cluster := range clusters {
		fmt.Printf("cluster %d (%d members):\n", i+1, len(cluster))
		for _, id := range cluster {
			fmt.Printf("  %s\n", id)
		}
	}
	fmt.Printf("noise (%d):\n", len(noise))
	for _, id := range noise {
		fmt.Printf("  %s\n", id)
	}
	return nil
}

func collectAssets(dir string, kind core.AssetKind) ([]*core.Asset, error) {
	var assets []*core.Asset
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}

		assets = append(assets, &core.Asset{
			URI:       "file://" + abs,
			Filename:  d.Name(),
			ByteSize:  info.Size(),
			Kind:      kind,
			CreatedAt: info.ModTime().UTC(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning asset directory: %w", err)
	}
	return assets, nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

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

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
