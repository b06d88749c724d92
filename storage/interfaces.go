package storage

import (
	"context"
	"iter"

	"github.com/poiesic/cortex/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the repository and releases resources.
	Close() error
}

// ItemRepository provides operations for managing context items.
type ItemRepository interface {
	Repository

	// AddItems adds one or more context items to storage.
	// Generates new IDs from the sequence and sets CreatedAt/UpdatedAt.
	// Each item is written as a single record, so content and vector are
	// never observable out of step with each other.
	// Returns the items with generated IDs and timestamps populated.
	AddItems(ctx context.Context, items ...*core.ContextItem) ([]*core.ContextItem, error)

	// UpdateItems updates existing context items.
	// Refreshes the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any item doesn't exist.
	UpdateItems(ctx context.Context, items ...*core.ContextItem) ([]*core.ContextItem, error)

	// DeleteItems removes context items by their IDs (hard delete).
	// Returns ErrNotFound if any item doesn't exist.
	// Soft deletion is an update that flips IsActive.
	DeleteItems(ctx context.Context, ids ...core.ID) error

	// GetItem retrieves a single context item by ID.
	// Returns ErrNotFound if the item doesn't exist.
	GetItem(ctx context.Context, id core.ID) (*core.ContextItem, error)

	// GetItems retrieves multiple context items by their IDs.
	// Returns only the items that exist (no error for missing items).
	GetItems(ctx context.Context, ids ...core.ID) ([]*core.ContextItem, error)

	// ScanItems returns a lazy sequence over all stored items, active or
	// not. The sequence is finite and restartable: each range starts a
	// fresh read transaction. A non-nil error terminates the sequence.
	ScanItems(ctx context.Context) iter.Seq2[*core.ContextItem, error]
}

// ProjectRepository provides operations for managing context projects.
type ProjectRepository interface {
	Repository

	// AddProject adds a project under its user-chosen ID.
	// Sets CreatedAt/UpdatedAt. Returns ErrDuplicateKey if the ID exists.
	AddProject(ctx context.Context, project *core.ContextProject) (*core.ContextProject, error)

	// UpdateProject updates an existing project.
	// Refreshes the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if the project doesn't exist.
	UpdateProject(ctx context.Context, project *core.ContextProject) (*core.ContextProject, error)

	// DeleteProject removes a project by ID (hard delete).
	// Items referencing the project are left untouched; the relation is weak.
	// Returns ErrNotFound if the project doesn't exist.
	DeleteProject(ctx context.Context, id string) error

	// GetProject retrieves a single project by ID.
	// Returns ErrNotFound if the project doesn't exist.
	GetProject(ctx context.Context, id string) (*core.ContextProject, error)

	// ListProjects retrieves all projects, ordered by ID.
	ListProjects(ctx context.Context) ([]*core.ContextProject, error)
}
