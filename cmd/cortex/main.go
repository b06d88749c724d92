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
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/cortex"
	"github.com/poiesic/cortex/ai"
	"github.com/poiesic/cortex/core"
	"github.com/poiesic/cortex/ingestion"
	"github.com/poiesic/cortex/reembed"
	"github.com/poiesic/cortex/search"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "cortex",
		Usage: "Hybrid semantic and keyword search over stored context",
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
				Name:   "add",
				Usage:  "Add a context item to the store",
				Action: addCommand,
				Flags: append(databaseFlags(),
					&cli.StringFlag{
						Name:     "title",
						Usage:    "Item title",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "content",
						Usage:    "Item content",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Content type (text, code, markdown, json)",
						Value: string(core.ContentTypeText),
					},
					&cli.StringFlag{
						Name:  "project",
						Usage: "Project ID to file the item under",
					},
					&cli.StringFlag{
						Name:  "source",
						Usage: "Where the content came from (file path, URL, ...)",
					},
					&cli.StringSliceFlag{
						Name:  "tag",
						Usage: "Tag to attach (repeatable)",
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Search the store",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: append(databaseFlags(),
					&cli.StringFlag{
						Name:  "mode",
						Usage: "Search mode (semantic, keyword, hybrid)",
						Value: string(search.ModeHybrid),
					},
					&cli.Float64Flag{
						Name:  "weight",
						Usage: "Semantic weight for hybrid mode (0..1)",
						Value: search.DefaultSemanticWeight,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: search.DefaultLimit,
					},
					&cli.IntFlag{
						Name:  "offset",
						Usage: "Number of ranked results to skip",
					},
					&cli.StringFlag{
						Name:  "project",
						Usage: "Restrict to a project ID",
					},
					&cli.StringSliceFlag{
						Name:  "type",
						Usage: "Restrict to a content type (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "tag",
						Usage: "Restrict to a tag (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "include-inactive",
						Usage: "Include soft-deleted items",
					},
				),
			},
			{
				Name:   "reembed",
				Usage:  "Re-embed items with missing or stale vectors",
				Action: reembedCommand,
				Flags: append(databaseFlags(),
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of items to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N items",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				),
			},
			{
				Name:   "stats",
				Usage:  "Print store statistics",
				Action: statsCommand,
				Flags:  databaseFlags(),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// databaseFlags are shared by every command that opens the store.
func databaseFlags() []cli.Flag {
	defaults := ai.DefaultConfig()
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: defaults.EmbeddingHost,
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: defaults.EmbeddingModel,
		},
		&cli.IntFlag{
			Name:  "dimension",
			Usage: "Embedding dimension",
			Value: defaults.Dimension,
		},
	}
}

func openDatabase(c *cli.Context) (*cortex.Database, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithDimension(c.Int("dimension")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	db, err := cortex.NewDatabase(c.String("db"), cortex.WithAIConfig(aiConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func addCommand(c *cli.Context) error {
	ctx := context.Background()

	contentType := core.ContentType(c.String("type"))
	if !contentType.Valid() {
		return fmt.Errorf("invalid content type %q: must be one of text, code, markdown, json", c.String("type"))
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewPipeline()
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	item, err := pipeline.Create(ctx, &ingestion.ItemDraft{
		Title:       c.String("title"),
		Content:     c.String("content"),
		ContentType: contentType,
		Tags:        c.StringSlice("tag"),
		Source:      c.String("source"),
		ProjectId:   c.String("project"),
	})
	if err != nil {
		return fmt.Errorf("failed to add item: %w", err)
	}

	status := "embedded"
	if !item.HasCurrentVector() {
		status = "stored without vector (run 'cortex reembed' later)"
	}
	fmt.Printf("Added item %d (%s)\n", item.Id, status)
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	searcher, err := db.NewSearcher()
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	contentTypes := make([]core.ContentType, 0, len(c.StringSlice("type")))
	for _, raw := range c.StringSlice("type") {
		ct := core.ContentType(raw)
		if !ct.Valid() {
			return fmt.Errorf("invalid content type %q", raw)
		}
		contentTypes = append(contentTypes, ct)
	}

	req := &search.Request{
		Query:          query,
		Mode:           search.Mode(c.String("mode")),
		SemanticWeight: c.Float64("weight"),
		Limit:          c.Int("limit"),
		Offset:         c.Int("offset"),
		Filters: search.Filters{
			ProjectID:       c.String("project"),
			ContentTypes:    contentTypes,
			Tags:            c.StringSlice("tag"),
			IncludeInactive: c.Bool("include-inactive"),
		},
	}

	resp, err := searcher.Search(ctx, req)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if resp.Degraded {
		fmt.Fprintln(os.Stderr, "warning: embedder unavailable, results are keyword-only")
	}

	fmt.Printf("%d match(es) in %.1fms (mode: %s)\n", resp.Total, resp.ExecutionTimeMS, resp.Mode)
	for i, scored := range resp.Items {
		item := scored.Item
		fmt.Printf("%3d. [%.3f] #%d %s\n", req.Offset+i+1, scored.Score, item.Id, item.Title)
		fmt.Printf("     %s\n", snippet(item.Content, 100))
	}
	return nil
}

func reembedCommand(c *cli.Context) error {
	ctx := context.Background()

	reembedConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}

	// Validate config
	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := db.NewReembedder(reembedConfig, os.Stderr).Run(ctx); err != nil {
		return fmt.Errorf("re-embedding failed: %w", err)
	}
	return nil
}

func statsCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := db.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to gather stats: %w", err)
	}

	fmt.Printf("Items:     %d (%d active)\n", stats.TotalItems, stats.ActiveItems)
	fmt.Printf("Projects:  %d\n", stats.ProjectCount)
	fmt.Printf("Dimension: %d\n", stats.Dimension)
	for _, ct := range core.ContentTypes {
		if count := stats.ContentTypes[ct]; count > 0 {
			fmt.Printf("  %-9s %d\n", ct+":", count)
		}
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

// snippet trims content to a single line of at most max runes.
func snippet(content string, max int) string {
	line := strings.Join(strings.Fields(content), " ")
	runes := []rune(line)
	if len(runes) <= max {
		return line
	}
	return string(runes[:max-3]) + "..."
}
