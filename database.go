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


// Package cortex wires storage, embedding, search and ingestion into a
// single context store.
package cortex

import (
	"context"
	"io"
	"log/slog"

	"github.com/poiesic/cortex/ai"
	"github.com/poiesic/cortex/ai/openai"
	"github.com/poiesic/cortex/core"
	"github.com/poiesic/cortex/ingestion"
	"github.com/poiesic/cortex/reembed"
	"github.com/poiesic/cortex/search"
	"github.com/poiesic/cortex/storage"
	"github.com/poiesic/cortex/storage/badger"
)

// Database is the top-level handle over a cortex store: the Badger
// backend, its repositories and the configured embedder.
type Database struct {
	backend     *badger.Backend
	itemRepo    storage.ItemRepository
	projectRepo storage.ProjectRepository
	embedder    ai.Embedder
	aiConfig    *ai.Config
	logger      *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	embedder ai.Embedder
	inMemory bool
}

// WithAIConfig sets the embedder configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithEmbedder injects a pre-built embedder instead of constructing the
// OpenAI-compatible one from the AI config.
func WithEmbedder(embedder ai.Embedder) DatabaseOption {
	return func(o *databaseOptions) {
		o.embedder = embedder
	}
}

// WithInMemory opens the store in memory; nothing is persisted.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// NewDatabase opens (or creates) a cortex store at filePath.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	// Create item repository
	itemRepo, err := badger.NewItemRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create project repository
	projectRepo := badger.NewProjectRepository(backend)

	// Build the embedder unless one was injected
	embedder := options.embedder
	if embedder == nil {
		embedder, err = openai.NewEmbedder(options.aiConfig)
		if err != nil {
			itemRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Database{
		backend:     backend,
		itemRepo:    itemRepo,
		projectRepo: projectRepo,
		embedder:    embedder,
		aiConfig:    options.aiConfig,
		logger:      slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	if err := db.projectRepo.Close(); err != nil {
		db.logger.Error("error closing project repository", "err", err)
		return err
	}
	if err := db.itemRepo.Close(); err != nil {
		db.logger.Error("error closing item repository", "err", err)
		return err
	}
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) ItemRepository() storage.ItemRepository {
	return db.itemRepo
}

func (db *Database) ProjectRepository() storage.ProjectRepository {
	return db.projectRepo
}

func (db *Database) Embedder() ai.Embedder {
	return db.embedder
}

func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(db.itemRepo, db.embedder, opts...)
}

func (db *Database) NewPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	opts = append([]ingestion.Option{ingestion.WithDimension(db.aiConfig.Dimension)}, opts...)
	return ingestion.NewPipeline(db.itemRepo, db.projectRepo, db.embedder, opts...)
}

func (db *Database) NewReembedder(config *reembed.Config, progress io.Writer) *reembed.Reembedder {
	return reembed.NewReembedder(db.itemRepo, db.embedder, config, progress)
}

// Stats summarizes the store: item counts, per-content-type counts and the
// number of projects.
func (db *Database) Stats(ctx context.Context) (*core.Stats, error) {
	stats := &core.Stats{
		ContentTypes: make(map[core.ContentType]int),
		Dimension:    db.aiConfig.Dimension,
	}

	for item, err := range db.itemRepo.ScanItems(ctx) {
		if err != nil {
			return nil, err
		}
		stats.TotalItems++
		if item.IsActive {
			stats.ActiveItems++
		}
		stats.ContentTypes[item.ContentType]++
	}

	projects, err := db.projectRepo.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	stats.ProjectCount = len(projects)

	return stats, nil
}
