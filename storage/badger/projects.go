package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/cortex/core"
	"github.com/poiesic/cortex/storage"
)

// ProjectRepository implements storage.ProjectRepository for BadgerDB.
type ProjectRepository struct {
	backend *Backend
}

var _ storage.ProjectRepository = (*ProjectRepository)(nil)

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository(backend *Backend) *ProjectRepository {
	return &ProjectRepository{backend: backend}
}

// Close is a no-op; the backend owns all resources.
func (r *ProjectRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *ProjectRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddProject adds a project under its user-chosen ID.
func (r *ProjectRepository) AddProject(ctx context.Context, project *core.ContextProject) (*core.ContextProject, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeProjectKey(project.Id)

		existing, err := r.readProject(tx, key)
		if err != nil {
			return err
		}
		if existing != nil {
			return storage.ErrDuplicateKey
		}

		project.CreatedAt = storeNow()
		project.UpdatedAt = project.CreatedAt

		value := storage.MarshalProject(project)
		if err := tx.Set(key, value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return project, err
}

// UpdateProject updates an existing project.
func (r *ProjectRepository) UpdateProject(ctx context.Context, project *core.ContextProject) (*core.ContextProject, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeProjectKey(project.Id)

		old, err := r.readProject(tx, key)
		if err != nil {
			return err
		}
		if old == nil {
			return storage.ErrNotFound
		}

		// CreatedAt is immutable
		project.CreatedAt = old.CreatedAt
		project.UpdatedAt = storeNow()

		value := storage.MarshalProject(project)
		if err := tx.Set(key, value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return project, err
}

// DeleteProject removes a project by ID. Items referencing the project
// keep their ProjectId; the relation carries no ownership.
func (r *ProjectRepository) DeleteProject(ctx context.Context, id string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeProjectKey(id)

		project, err := r.readProject(tx, key)
		if err != nil {
			return err
		}
		if project == nil {
			return storage.ErrNotFound
		}

		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetProject retrieves a single project by ID.
func (r *ProjectRepository) GetProject(ctx context.Context, id string) (*core.ContextProject, error) {
	var result *core.ContextProject
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeProjectKey(id)
		var err error
		result, err = r.readProject(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// ListProjects retrieves all projects, ordered by ID.
// Key iteration is lexicographic, which matches ordering by project ID.
func (r *ProjectRepository) ListProjects(ctx context.Context) ([]*core.ContextProject, error) {
	var results []*core.ContextProject
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = projectScanPrefix()
		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var project *core.ContextProject
			err := it.Item().Value(func(val []byte) error {
				var err error
				project, err = storage.UnmarshalProject(val)
				return err
			})
			if err != nil {
				return err
			}
			results = append(results, project)
		}
		return nil
	}, false)

	return results, err
}

// readProject reads a project from the transaction.
func (r *ProjectRepository) readProject(tx *badger.Txn, key []byte) (*core.ContextProject, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var project *core.ContextProject
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		project, unmarshalErr = storage.UnmarshalProject(val)
		return unmarshalErr
	})
	return project, err
}
