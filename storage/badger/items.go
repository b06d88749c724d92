package badger

import (
	"context"
	"errors"
	"iter"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/cortex/core"
	"github.com/poiesic/cortex/storage"
)

// errStopScan signals that a scan consumer stopped early. Never escapes
// this package.
var errStopScan = errors.New("scan stopped")

// storeNow returns the current time at the precision records are stored
// with, so timestamps on returned entities match a later read.
func storeNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// ItemRepository implements storage.ItemRepository for BadgerDB.
type ItemRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.ItemRepository = (*ItemRepository)(nil)

// NewItemRepository creates a new ItemRepository.
func NewItemRepository(backend *Backend) (*ItemRepository, error) {
	idSeq, err := backend.GetSequence(itemIDSeq)
	if err != nil {
		return nil, err
	}

	return &ItemRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *ItemRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *ItemRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddItems adds one or more context items to storage.
func (r *ItemRepository) AddItems(ctx context.Context, items ...*core.ContextItem) ([]*core.ContextItem, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, item := range items {
			// Always generate new ID from sequence
			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			// BadgerDB sequences can return 0 on first call, so we skip it
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			item.Id = core.ID(nextID)

			item.CreatedAt = storeNow()
			item.UpdatedAt = item.CreatedAt

			key := makeItemKey(item.Id)
			value := storage.MarshalItem(item)
			if err := tx.Set(key, value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return items, err
}

// UpdateItems updates existing context items.
// The whole record, vector included, is rewritten in one Set so content
// and vector stay paired.
func (r *ItemRepository) UpdateItems(ctx context.Context, items ...*core.ContextItem) ([]*core.ContextItem, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, item := range items {
			key := makeItemKey(item.Id)

			old, err := r.readItem(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			// CreatedAt is immutable
			item.CreatedAt = old.CreatedAt
			item.UpdatedAt = storeNow()

			value := storage.MarshalItem(item)
			if err := tx.Set(key, value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return items, err
}

// DeleteItems removes context items by their IDs.
func (r *ItemRepository) DeleteItems(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeItemKey(id)

			item, err := r.readItem(tx, key)
			if err != nil {
				return err
			}
			if item == nil {
				return storage.ErrNotFound
			}

			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetItem retrieves a single context item by ID.
func (r *ItemRepository) GetItem(ctx context.Context, id core.ID) (*core.ContextItem, error) {
	var result *core.ContextItem
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeItemKey(id)
		var err error
		result, err = r.readItem(tx, key)
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

// GetItems retrieves multiple context items by their IDs.
func (r *ItemRepository) GetItems(ctx context.Context, ids ...core.ID) ([]*core.ContextItem, error) {
	var result []*core.ContextItem
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeItemKey(id)
			item, err := r.readItem(tx, key)
			if err != nil {
				return err
			}
			if item != nil {
				result = append(result, item)
			}
		}
		return nil
	}, false)
	return result, err
}

// ScanItems returns a lazy sequence over all stored items.
// Each range over the sequence opens a fresh read transaction, so the
// sequence is restartable. The context is checked on every step.
func (r *ItemRepository) ScanItems(ctx context.Context) iter.Seq2[*core.ContextItem, error] {
	return func(yield func(*core.ContextItem, error) bool) {
		err := r.backend.WithTx(func(tx *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = itemScanPrefix()
			it := tx.NewIterator(opts)
			defer it.Close()

			for it.Rewind(); it.Valid(); it.Next() {
				if err := ctx.Err(); err != nil {
					return err
				}

				var item *core.ContextItem
				err := it.Item().Value(func(val []byte) error {
					var err error
					item, err = storage.UnmarshalItem(val)
					return err
				})
				if err != nil {
					return err
				}

				if !yield(item, nil) {
					return errStopScan
				}
			}
			return nil
		}, false)

		if err != nil && !errors.Is(err, errStopScan) {
			yield(nil, err)
		}
	}
}

// readItem reads a context item from the transaction.
func (r *ItemRepository) readItem(tx *badger.Txn, key []byte) (*core.ContextItem, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var record *core.ContextItem
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		record, unmarshalErr = storage.UnmarshalItem(val)
		return unmarshalErr
	})
	return record, err
}
