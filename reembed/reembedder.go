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


package reembed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/cortex/ai"
	"github.com/poiesic/cortex/core"
	"github.com/poiesic/cortex/storage"
)

// Config holds configuration for the re-embedding operation.
type Config struct {
	// BatchSize is the number of items to embed in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of items)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reembedder finds items whose vector is missing or was computed from
// earlier content, and re-embeds them in batches.
type Reembedder struct {
	items     storage.ItemRepository
	embedder  ai.Embedder
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(items storage.ItemRepository, embedder ai.Embedder, config *Config, progress io.Writer) *Reembedder {
	if config == nil {
		config = DefaultConfig()
	}

	return &Reembedder{
		items:     items,
		embedder:  embedder,
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(items, embedder, config.MaxRetries, config.RetryDelay),
	}
}

// Run executes the re-embedding operation.
// The store is scanned twice: once to count stale items for progress
// reporting, then again to process them in batches.
func (r *Reembedder) Run(ctx context.Context) error {
	total := 0
	for item, err := range r.items.ScanItems(ctx) {
		if err != nil {
			return fmt.Errorf("failed to scan items: %w", err)
		}
		if !item.HasCurrentVector() {
			total++
		}
	}

	if total == 0 {
		fmt.Fprintf(r.progress, "All items have current vectors (0 to re-embed)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting re-embedding of %d items (batch size: %d)\n",
		total, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	processed := 0
	batch := make([]*core.ContextItem, 0, r.config.BatchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := r.processor.Process(ctx, batch); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}
		processed += len(batch)
		tracker.Update(processed)
		batch = batch[:0]
		return nil
	}

	for item, err := range r.items.ScanItems(ctx) {
		if err != nil {
			return fmt.Errorf("failed to scan items: %w", err)
		}
		if item.HasCurrentVector() {
			continue
		}

		batch = append(batch, item)
		if len(batch) >= r.config.BatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Re-embedding complete. Processed %d items in %v (%.1f items/sec)\n",
		total, elapsed.Round(time.Second), float64(total)/elapsed.Seconds())

	return nil
}
