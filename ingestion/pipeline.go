package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/cortex/ai"
	"github.com/poiesic/cortex/core"
	"github.com/poiesic/cortex/storage"
)

// DefaultEmbedTimeout bounds synchronous embedding during Create/Update.
const DefaultEmbedTimeout = 5 * time.Second

// Pipeline orchestrates mutations of context items and projects.
// It owns validation, embedding and the async refresh pool; callers never
// talk to the repositories directly for writes.
type Pipeline struct {
	items        storage.ItemRepository
	projects     storage.ProjectRepository
	embedder     ai.Embedder
	refresher    *embeddingRefresher
	pool         *ants.Pool
	dimension    int
	embedTimeout time.Duration
	logger       *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for async embedding refresh.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithDimension sets the embedding dimension used for item validation.
// Default is the ai package default.
func WithDimension(dimension int) Option {
	return func(p *Pipeline) error {
		if dimension > 0 {
			p.dimension = dimension
		}
		return nil
	}
}

// WithEmbedTimeout bounds the synchronous embedding call in Create and
// Update. Default is DefaultEmbedTimeout.
func WithEmbedTimeout(timeout time.Duration) Option {
	return func(p *Pipeline) error {
		if timeout > 0 {
			p.embedTimeout = timeout
		}
		return nil
	}
}

// NewPipeline creates a new mutation pipeline.
func NewPipeline(
	items storage.ItemRepository,
	projects storage.ProjectRepository,
	embedder ai.Embedder,
	opts ...Option,
) (*Pipeline, error) {
	if items == nil {
		return nil, ErrItemRepositoryRequired
	}
	if projects == nil {
		return nil, ErrProjectRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		items:        items,
		projects:     projects,
		embedder:     embedder,
		pool:         pool,
		dimension:    ai.DefaultConfig().Dimension,
		embedTimeout: DefaultEmbedTimeout,
		logger:       slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	p.refresher = newEmbeddingRefresher(items, embedder, p.logger)

	return p, nil
}

// Create validates and stores a new item. The content is embedded
// synchronously under the pipeline's timeout; if embedding fails, the item
// is stored without a vector and the failure is logged.
func (p *Pipeline) Create(ctx context.Context, draft *ItemDraft) (*core.ContextItem, error) {
	item := draft.item()
	if err := core.ValidateItem(item, p.dimension); err != nil {
		return nil, err
	}

	p.embedInto(ctx, item)

	added, err := p.items.AddItems(ctx, item)
	if err != nil {
		return nil, err
	}
	return added[0], nil
}

// Update applies a partial update to an existing item. The content is
// re-embedded only when its fingerprint changed; metadata-only edits never
// touch the vector. If re-embedding fails, the stale vector is cleared so
// it is never paired with the new content.
func (p *Pipeline) Update(ctx context.Context, id core.ID, patch *ItemPatch) (*core.ContextItem, error) {
	item, err := p.items.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}

	oldFingerprint := core.IDFromContent(item.Content)

	patch.apply(item)

	if err := core.ValidateItem(item, p.dimension); err != nil {
		return nil, err
	}

	if core.IDFromContent(item.Content) != oldFingerprint {
		item.Vector = nil
		item.VectorHash = 0
		p.embedInto(ctx, item)
	}

	updated, err := p.items.UpdateItems(ctx, item)
	if err != nil {
		return nil, err
	}
	return updated[0], nil
}

// SoftDelete marks an item inactive. The record stays in the store and can
// be reactivated via Update with an IsActive patch.
func (p *Pipeline) SoftDelete(ctx context.Context, id core.ID) error {
	item, err := p.items.GetItem(ctx, id)
	if err != nil {
		return err
	}

	item.IsActive = false
	_, err = p.items.UpdateItems(ctx, item)
	return err
}

// IngestBatch validates and stores drafts vector-less, then schedules one
// embedding-refresh job for the batch on the worker pool. The stored items
// are returned immediately; refresh errors are logged, never surfaced.
func (p *Pipeline) IngestBatch(ctx context.Context, drafts []*ItemDraft) ([]*core.ContextItem, error) {
	items := make([]*core.ContextItem, len(drafts))
	for i, draft := range drafts {
		item := draft.item()
		if err := core.ValidateItem(item, p.dimension); err != nil {
			return nil, err
		}
		items[i] = item
	}

	added, err := p.items.AddItems(ctx, items...)
	if err != nil {
		return nil, err
	}
	if len(added) == 0 {
		return added, nil
	}

	ids := make([]core.ID, len(added))
	for i, item := range added {
		ids[i] = item.Id
	}

	submitErr := p.pool.Submit(func() {
		if err := p.refresher.process(context.Background(), ids...); err != nil {
			p.logger.Error("error refreshing batch embeddings", "err", err)
		}
	})
	if submitErr != nil {
		p.logger.Error("error scheduling embedding refresh", "err", submitErr)
	}

	return added, nil
}

// CreateProject validates and stores a new project under its user-chosen ID.
func (p *Pipeline) CreateProject(ctx context.Context, project *core.ContextProject) (*core.ContextProject, error) {
	if err := core.ValidateProject(project); err != nil {
		return nil, err
	}
	project.IsActive = true
	return p.projects.AddProject(ctx, project)
}

// UpdateProject validates and updates an existing project.
func (p *Pipeline) UpdateProject(ctx context.Context, project *core.ContextProject) (*core.ContextProject, error) {
	if err := core.ValidateProject(project); err != nil {
		return nil, err
	}
	return p.projects.UpdateProject(ctx, project)
}

// DeleteProject removes a project. Items keep their ProjectId; the
// reference is weak and deletion never cascades.
func (p *Pipeline) DeleteProject(ctx context.Context, id string) error {
	return p.projects.DeleteProject(ctx, id)
}

// GetProject retrieves a project by ID.
func (p *Pipeline) GetProject(ctx context.Context, id string) (*core.ContextProject, error) {
	return p.projects.GetProject(ctx, id)
}

// ListProjects retrieves all projects ordered by ID.
func (p *Pipeline) ListProjects(ctx context.Context) ([]*core.ContextProject, error) {
	return p.projects.ListProjects(ctx)
}

// embedInto embeds the item's content under the pipeline timeout. On
// success the vector and its fingerprint are set together; on failure the
// item is left vector-less and a warning is logged.
func (p *Pipeline) embedInto(ctx context.Context, item *core.ContextItem) {
	ectx, cancel := context.WithTimeout(ctx, p.embedTimeout)
	defer cancel()

	vector, err := p.embedder.EmbedText(ectx, item.Content)
	if err != nil {
		p.logger.Warn("embedding unavailable, storing item without vector",
			"title", item.Title, "err", err)
		return
	}

	item.Vector = vector
	item.VectorHash = core.IDFromContent(item.Content)
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
