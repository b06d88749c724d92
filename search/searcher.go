package search

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/poiesic/cortex/ai"
	"github.com/poiesic/cortex/core"
	"github.com/poiesic/cortex/storage"
	"golang.org/x/sync/errgroup"
)

// Defaults for request construction and searcher configuration.
const (
	DefaultSemanticWeight = 0.7
	DefaultLimit          = 50
	DefaultMaxLimit       = 100
	DefaultEmbedTimeout   = 5 * time.Second
	DefaultScanBatchSize  = 256
)

// Config tunes searcher behavior. Zero fields take the package defaults.
type Config struct {
	// MaxLimit caps the requested page size.
	MaxLimit int

	// EmbedTimeout bounds the query-embedding call so an unreachable
	// embedder degrades the search instead of hanging it.
	EmbedTimeout time.Duration

	// ScanBatchSize is the number of scanned items between cancellation
	// checks during the candidate scan.
	ScanBatchSize int
}

// DefaultSearchConfig returns the default searcher configuration.
func DefaultSearchConfig() *Config {
	return &Config{
		MaxLimit:      DefaultMaxLimit,
		EmbedTimeout:  DefaultEmbedTimeout,
		ScanBatchSize: DefaultScanBatchSize,
	}
}

func (c *Config) normalize() {
	if c.MaxLimit <= 0 {
		c.MaxLimit = DefaultMaxLimit
	}
	if c.EmbedTimeout <= 0 {
		c.EmbedTimeout = DefaultEmbedTimeout
	}
	if c.ScanBatchSize <= 0 {
		c.ScanBatchSize = DefaultScanBatchSize
	}
}

// Searcher provides hybrid semantic and keyword search over context items.
type Searcher struct {
	items    storage.ItemRepository
	embedder ai.Embedder
	config   *Config
	scorer   ScorerFactory
	logger   *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithConfig replaces the searcher configuration.
func WithConfig(config *Config) Option {
	return func(s *Searcher) error {
		if config == nil {
			config = DefaultSearchConfig()
		}
		config.normalize()
		s.config = config
		return nil
	}
}

// WithScorerFactory replaces the keyword scorer.
// Default is NewKeywordScorer.
func WithScorerFactory(factory ScorerFactory) Option {
	return func(s *Searcher) error {
		if factory == nil {
			factory = NewKeywordScorer
		}
		s.scorer = factory
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	items storage.ItemRepository,
	embedder ai.Embedder,
	opts ...Option,
) (*Searcher, error) {
	if items == nil {
		return nil, ErrItemRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		items:    items,
		embedder: embedder,
		config:   DefaultSearchConfig(),
		scorer:   NewKeywordScorer,
		logger:   slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search executes the request and returns the ranked page of results.
func (s *Searcher) Search(ctx context.Context, req *Request) (*Response, error) {
	return s.SearchWithMonitor(ctx, req, nil)
}

// SearchWithMonitor executes the request with monitoring.
// The monitor receives callbacks at each stage of the search process.
func (s *Searcher) SearchWithMonitor(ctx context.Context, req *Request, monitor SearchMonitor) (*Response, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	start := time.Now()

	if err := req.validate(s.config.MaxLimit); err != nil {
		return nil, err
	}

	monitor.Start(req)

	emptyQuery := strings.TrimSpace(req.Query) == ""

	// A keyword search without terms matches nothing.
	if req.Mode == ModeKeyword && emptyQuery {
		resp := &Response{
			Items:           []*core.ScoredItem{},
			Mode:            ModeKeyword,
			ExecutionTimeMS: elapsedMS(start),
		}
		monitor.Finish(resp)
		return resp, nil
	}

	// The hybrid blend ignores the semantic signal entirely at weight 0,
	// so skip the embedding round-trip.
	needEmbed := req.Mode == ModeSemantic ||
		(req.Mode == ModeHybrid && req.SemanticWeight > 0)

	// Embed the query concurrently with the candidate scan. An embedding
	// failure is recorded, not propagated: the search degrades instead.
	var (
		queryVector []float32
		embedErr    error
		candidates  []*core.ContextItem
	)

	g, gctx := errgroup.WithContext(ctx)

	if needEmbed {
		g.Go(func() error {
			ectx, cancel := context.WithTimeout(gctx, s.config.EmbedTimeout)
			defer cancel()

			vector, err := s.embedder.EmbedText(ectx, req.Query)
			if err != nil {
				embedErr = err
				return nil
			}
			queryVector = vector
			return nil
		})
	}

	g.Go(func() error {
		scanned := 0
		for item, err := range s.items.ScanItems(gctx) {
			if err != nil {
				return err
			}
			scanned++
			if scanned%s.config.ScanBatchSize == 0 {
				if err := gctx.Err(); err != nil {
					return err
				}
			}
			if req.Filters.matches(item) {
				candidates = append(candidates, item)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("candidate scan failed", "err", err)
		return nil, err
	}
	monitor.AfterCandidateScan(candidates)

	// Resolve the effective mode. A lost embedder downgrades semantic and
	// hybrid searches to keyword scoring for this call only.
	mode := req.Mode
	degraded := false
	if needEmbed && queryVector == nil {
		s.logger.Warn("query embedding unavailable, degrading to keyword search",
			"mode", req.Mode, "err", embedErr)
		monitor.Degraded(embedErr)
		mode = ModeKeyword
		degraded = true

		if emptyQuery {
			// Nothing left to score against.
			resp := &Response{
				Items:           []*core.ScoredItem{},
				Mode:            mode,
				Degraded:        true,
				ExecutionTimeMS: elapsedMS(start),
			}
			monitor.Finish(resp)
			return resp, nil
		}
	}

	scored := s.scoreCandidates(candidates, req, mode, queryVector, emptyQuery)
	monitor.AfterScoring(scored)

	sortScored(scored)

	total := len(scored)
	page := paginate(scored, req.Offset, req.Limit)

	resp := &Response{
		Items:           page,
		Total:           total,
		Mode:            mode,
		Degraded:        degraded,
		ExecutionTimeMS: elapsedMS(start),
	}
	monitor.Finish(resp)

	s.logger.Debug("search complete",
		"mode", mode, "total", total, "returned", len(page),
		"degraded", degraded, "ms", resp.ExecutionTimeMS)

	return resp, nil
}

// scoreCandidates applies the effective mode's scoring to every candidate.
// With a non-empty query, items scoring exactly zero are dropped; an empty
// query keeps everything so hybrid search doubles as a recency listing.
func (s *Searcher) scoreCandidates(
	candidates []*core.ContextItem,
	req *Request,
	mode Mode,
	queryVector []float32,
	emptyQuery bool,
) []*core.ScoredItem {
	keyword := s.scorer(req.Query)

	scored := make([]*core.ScoredItem, 0, len(candidates))
	for _, item := range candidates {
		var semScore, kwScore, combined float64

		switch mode {
		case ModeSemantic:
			// Vector-less items have no semantic rank at all.
			if len(item.Vector) == 0 {
				continue
			}
			semScore = semanticScore(queryVector, item.Vector)
			combined = semScore

		case ModeKeyword:
			kwScore = keyword.Score(item)
			combined = kwScore

		case ModeHybrid:
			if len(item.Vector) > 0 && queryVector != nil {
				semScore = semanticScore(queryVector, item.Vector)
			}
			if !emptyQuery {
				kwScore = keyword.Score(item)
			}
			combined = req.SemanticWeight*semScore + (1-req.SemanticWeight)*kwScore
		}

		if !emptyQuery && combined == 0 {
			continue
		}

		scored = append(scored, &core.ScoredItem{
			Item:          item,
			Score:         combined,
			SemanticScore: semScore,
			KeywordScore:  kwScore,
		})
	}

	return scored
}

// sortScored orders results by score descending, then creation time
// descending, then id descending. The full chain is deterministic, so
// pagination over an unchanged store is stable.
func sortScored(scored []*core.ScoredItem) {
	sort.Slice(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.Item.CreatedAt.Equal(b.Item.CreatedAt) {
			return a.Item.CreatedAt.After(b.Item.CreatedAt)
		}
		return a.Item.Id > b.Item.Id
	})
}

func paginate(scored []*core.ScoredItem, offset, limit int) []*core.ScoredItem {
	if offset >= len(scored) {
		return []*core.ScoredItem{}
	}
	scored = scored[offset:]
	if limit < len(scored) {
		scored = scored[:limit]
	}
	return scored
}

func elapsedMS(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
