package search

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/poiesic/cortex/ai"
	"github.com/poiesic/cortex/ai/mock"
	"github.com/poiesic/cortex/core"
	"github.com/poiesic/cortex/storage"
	"github.com/poiesic/cortex/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestSearcher builds a searcher over a fresh in-memory store.
func newTestSearcher(t *testing.T, embedder ai.Embedder, opts ...Option) (*Searcher, storage.ItemRepository) {
	t.Helper()

	itemRepo, projectRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		itemRepo.Close()
		projectRepo.Close()
		backend.Close()
	})

	searcher, err := NewSearcher(itemRepo, embedder, opts...)
	require.NoError(t, err)
	return searcher, itemRepo
}

// queryEmbedder returns a mock embedder that answers every query with the
// given vector.
func queryEmbedder(vector []float32) *mock.MockEmbedder {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return vector, nil
	}
	return embedder
}

func seedItems(t *testing.T, repo storage.ItemRepository, items ...*core.ContextItem) []*core.ContextItem {
	t.Helper()
	added, err := repo.AddItems(context.Background(), items...)
	require.NoError(t, err)
	return added
}

func resultIDs(items []*core.ScoredItem) []core.ID {
	ids := make([]core.ID, 0, len(items))
	for _, s := range items {
		ids = append(ids, s.Item.Id)
	}
	return ids
}

func TestNewSearcher(t *testing.T) {
	itemRepo, projectRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		itemRepo.Close()
		projectRepo.Close()
		backend.Close()
	}()

	embedder := mock.NewMockEmbedder()

	t.Run("valid configuration", func(t *testing.T) {
		searcher, err := NewSearcher(itemRepo, embedder)
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		searcher, err := NewSearcher(itemRepo, embedder, WithLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("nil config falls back to defaults", func(t *testing.T) {
		searcher, err := NewSearcher(itemRepo, embedder, WithConfig(nil))
		require.NoError(t, err)
		assert.Equal(t, DefaultMaxLimit, searcher.config.MaxLimit)
	})

	t.Run("nil item repository", func(t *testing.T) {
		_, err := NewSearcher(nil, embedder)
		assert.Equal(t, ErrItemRepositoryRequired, err)
	})

	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewSearcher(itemRepo, nil)
		assert.Equal(t, ErrEmbedderRequired, err)
	})
}

func TestSearch_RequestValidation(t *testing.T) {
	searcher, _ := newTestSearcher(t, mock.NewMockEmbedder())
	ctx := context.Background()

	tests := []struct {
		name string
		req  *Request
	}{
		{"unknown mode", &Request{Query: "q", Mode: "fuzzy", Limit: 10}},
		{"empty mode", &Request{Query: "q", Limit: 10}},
		{"weight below zero", &Request{Query: "q", Mode: ModeHybrid, SemanticWeight: -0.1, Limit: 10}},
		{"weight above one", &Request{Query: "q", Mode: ModeHybrid, SemanticWeight: 1.1, Limit: 10}},
		{"negative limit", &Request{Query: "q", Mode: ModeHybrid, Limit: -1}},
		{"limit above maximum", &Request{Query: "q", Mode: ModeHybrid, Limit: DefaultMaxLimit + 1}},
		{"negative offset", &Request{Query: "q", Mode: ModeHybrid, Limit: 10, Offset: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := searcher.Search(ctx, tt.req)
			assert.ErrorIs(t, err, ErrInvalidQuery)
		})
	}

	t.Run("NewRequest defaults are valid", func(t *testing.T) {
		req := NewRequest("q")
		assert.Equal(t, ModeHybrid, req.Mode)
		assert.Equal(t, DefaultSemanticWeight, req.SemanticWeight)
		assert.Equal(t, DefaultLimit, req.Limit)
		_, err := searcher.Search(ctx, req)
		assert.NoError(t, err)
	})
}

func TestSearch_EmptyStore(t *testing.T) {
	searcher, _ := newTestSearcher(t, queryEmbedder([]float32{1, 0, 0}))

	resp, err := searcher.Search(context.Background(), NewRequest("anything"))
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
	assert.Zero(t, resp.Total)
	assert.Equal(t, ModeHybrid, resp.Mode)
	assert.False(t, resp.Degraded)
}

func TestSearch_KeywordMode(t *testing.T) {
	searcher, repo := newTestSearcher(t, mock.NewMockEmbedder())
	ctx := context.Background()

	added := seedItems(t, repo,
		&core.ContextItem{
			Title:       "Ownership in Rust",
			Content:     "The borrow checker enforces move semantics.",
			ContentType: core.ContentTypeText,
			IsActive:    true,
		},
		&core.ContextItem{
			Title:       "Garbage collection",
			Content:     "Rust avoids GC via ownership and borrow rules.",
			ContentType: core.ContentTypeText,
			IsActive:    true,
		},
		&core.ContextItem{
			Title:       "Vue Router",
			Content:     "Routes and navigation.",
			ContentType: core.ContentTypeText,
			IsActive:    true,
		},
	)

	req := NewRequest("rust borrow")
	req.Mode = ModeKeyword

	resp, err := searcher.Search(ctx, req)
	require.NoError(t, err)

	// The Vue item matches nothing and is excluded entirely.
	require.Len(t, resp.Items, 2)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, ModeKeyword, resp.Mode)

	// Title matches outrank content-only matches.
	assert.Equal(t, added[0].Id, resp.Items[0].Item.Id)
	assert.InDelta(t, 3.0/5.0, resp.Items[0].Score, 1e-9)
	assert.Equal(t, added[1].Id, resp.Items[1].Item.Id)
	assert.InDelta(t, 2.0/5.0, resp.Items[1].Score, 1e-9)

	// Keyword mode never consults vectors.
	for _, s := range resp.Items {
		assert.Zero(t, s.SemanticScore)
		assert.Equal(t, s.Score, s.KeywordScore)
	}
}

func TestSearch_SemanticMode(t *testing.T) {
	searcher, repo := newTestSearcher(t, queryEmbedder([]float32{1, 0, 0}))
	ctx := context.Background()

	added := seedItems(t, repo,
		&core.ContextItem{
			Title: "close", Content: "close match",
			ContentType: core.ContentTypeText, IsActive: true,
			Vector: []float32{0.9, 0.1, 0},
		},
		&core.ContextItem{
			Title: "orthogonal", Content: "unrelated direction",
			ContentType: core.ContentTypeText, IsActive: true,
			Vector: []float32{0, 1, 0},
		},
		&core.ContextItem{
			Title: "vectorless", Content: "never embedded",
			ContentType: core.ContentTypeText, IsActive: true,
		},
		&core.ContextItem{
			Title: "opposite", Content: "anti match",
			ContentType: core.ContentTypeText, IsActive: true,
			Vector: []float32{-1, 0, 0},
		},
	)

	req := NewRequest("close match")
	req.Mode = ModeSemantic

	resp, err := searcher.Search(ctx, req)
	require.NoError(t, err)

	// Vector-less items are excluded outright; the opposite vector scores
	// exactly zero and is dropped with the query non-empty.
	require.Len(t, resp.Items, 2)
	assert.Equal(t, []core.ID{added[0].Id, added[1].Id}, resultIDs(resp.Items))
	assert.Greater(t, resp.Items[0].Score, resp.Items[1].Score)
	assert.InDelta(t, 0.5, resp.Items[1].Score, 1e-6)
}

func TestSearch_HybridMode(t *testing.T) {
	searcher, repo := newTestSearcher(t, queryEmbedder([]float32{0.95, 0.05, 0}))
	ctx := context.Background()

	added := seedItems(t, repo,
		&core.ContextItem{
			Title:       "Ownership in Rust",
			Content:     "Move semantics and the borrow checker.",
			ContentType: core.ContentTypeText,
			IsActive:    true,
			Vector:      []float32{1, 0, 0},
		},
		&core.ContextItem{
			Title:       "Vue Router setup",
			Content:     "Configure vue router; not rust.",
			ContentType: core.ContentTypeText,
			IsActive:    true,
			Vector:      []float32{0, 1, 0},
		},
	)
	rustID, vueID := added[0].Id, added[1].Id

	t.Run("both signals favor the on-topic item", func(t *testing.T) {
		resp, err := searcher.Search(ctx, NewRequest("rust ownership"))
		require.NoError(t, err)

		require.Len(t, resp.Items, 2)
		assert.Equal(t, []core.ID{rustID, vueID}, resultIDs(resp.Items))

		top := resp.Items[0]
		assert.InDelta(t, 0.8, top.KeywordScore, 1e-9)
		assert.InDelta(t,
			DefaultSemanticWeight*top.SemanticScore+(1-DefaultSemanticWeight)*top.KeywordScore,
			top.Score, 1e-9)
	})

	t.Run("weight one matches semantic mode", func(t *testing.T) {
		hybrid := NewRequest("rust ownership")
		hybrid.SemanticWeight = 1

		semantic := NewRequest("rust ownership")
		semantic.Mode = ModeSemantic

		hybridResp, err := searcher.Search(ctx, hybrid)
		require.NoError(t, err)
		semanticResp, err := searcher.Search(ctx, semantic)
		require.NoError(t, err)

		assert.Equal(t, resultIDs(semanticResp.Items), resultIDs(hybridResp.Items))
		for i := range hybridResp.Items {
			assert.InDelta(t, semanticResp.Items[i].Score, hybridResp.Items[i].Score, 1e-9)
		}
	})

	t.Run("weight zero matches keyword mode", func(t *testing.T) {
		hybrid := NewRequest("rust ownership")
		hybrid.SemanticWeight = 0

		keyword := NewRequest("rust ownership")
		keyword.Mode = ModeKeyword

		hybridResp, err := searcher.Search(ctx, hybrid)
		require.NoError(t, err)
		keywordResp, err := searcher.Search(ctx, keyword)
		require.NoError(t, err)

		assert.Equal(t, resultIDs(keywordResp.Items), resultIDs(hybridResp.Items))
		for i := range hybridResp.Items {
			assert.InDelta(t, keywordResp.Items[i].Score, hybridResp.Items[i].Score, 1e-9)
		}
	})

	t.Run("vectorless item still ranks by keywords", func(t *testing.T) {
		extra := seedItems(t, repo, &core.ContextItem{
			Title:       "rust ownership cheatsheet",
			Content:     "No embedding yet.",
			ContentType: core.ContentTypeText,
			IsActive:    true,
		})
		defer func() {
			require.NoError(t, repo.DeleteItems(ctx, extra[0].Id))
		}()

		resp, err := searcher.Search(ctx, NewRequest("rust ownership"))
		require.NoError(t, err)

		var found *core.ScoredItem
		for _, s := range resp.Items {
			if s.Item.Id == extra[0].Id {
				found = s
			}
		}
		require.NotNil(t, found)
		assert.Zero(t, found.SemanticScore)
		assert.InDelta(t, (1-DefaultSemanticWeight)*found.KeywordScore, found.Score, 1e-9)
	})
}

func TestSearch_Filters(t *testing.T) {
	searcher, repo := newTestSearcher(t, mock.NewMockEmbedder())
	ctx := context.Background()

	seedItems(t, repo,
		&core.ContextItem{
			Title: "api notes", Content: "a", ContentType: core.ContentTypeText,
			ProjectId: "p1", Tags: []string{"api"}, IsActive: true,
		},
		&core.ContextItem{
			Title: "db helper", Content: "b", ContentType: core.ContentTypeCode,
			ProjectId: "p1", Tags: []string{"db"}, IsActive: true,
		},
		&core.ContextItem{
			Title: "shared doc", Content: "c", ContentType: core.ContentTypeText,
			ProjectId: "p2", Tags: []string{"api", "db"}, IsActive: true,
		},
		&core.ContextItem{
			Title: "retired", Content: "d", ContentType: core.ContentTypeText,
			ProjectId: "p1", IsActive: false,
		},
	)

	// Empty-query hybrid at weight zero lists everything the filters
	// admit, so each case asserts on the match count alone.
	search := func(filters Filters) *Response {
		req := NewRequest("")
		req.SemanticWeight = 0
		req.Filters = filters
		resp, err := searcher.Search(ctx, req)
		require.NoError(t, err)
		return resp
	}

	t.Run("default excludes inactive", func(t *testing.T) {
		assert.Equal(t, 3, search(Filters{}).Total)
	})

	t.Run("include inactive", func(t *testing.T) {
		assert.Equal(t, 4, search(Filters{IncludeInactive: true}).Total)
	})

	t.Run("project filter", func(t *testing.T) {
		assert.Equal(t, 2, search(Filters{ProjectID: "p1"}).Total)
	})

	t.Run("content type filter", func(t *testing.T) {
		assert.Equal(t, 1, search(Filters{ContentTypes: []core.ContentType{core.ContentTypeCode}}).Total)
	})

	t.Run("content types combine with OR", func(t *testing.T) {
		assert.Equal(t, 3, search(Filters{
			ContentTypes: []core.ContentType{core.ContentTypeCode, core.ContentTypeText},
		}).Total)
	})

	t.Run("tags combine with OR", func(t *testing.T) {
		assert.Equal(t, 2, search(Filters{Tags: []string{"api"}}).Total)
	})

	t.Run("dimensions combine with AND", func(t *testing.T) {
		assert.Equal(t, 1, search(Filters{ProjectID: "p1", Tags: []string{"api"}}).Total)
	})

	t.Run("no match is success", func(t *testing.T) {
		resp := search(Filters{ProjectID: "p3"})
		assert.Zero(t, resp.Total)
		assert.Empty(t, resp.Items)
	})
}

func TestSearch_EmptyQuery(t *testing.T) {
	searcher, repo := newTestSearcher(t, queryEmbedder([]float32{1, 0, 0}))
	ctx := context.Background()

	added := seedItems(t, repo,
		&core.ContextItem{
			Title: "first", Content: "a", ContentType: core.ContentTypeText,
			IsActive: true, Vector: []float32{0, 1, 0},
		},
		&core.ContextItem{
			Title: "second", Content: "b", ContentType: core.ContentTypeText,
			IsActive: true, Vector: []float32{1, 0, 0},
		},
		&core.ContextItem{
			Title: "third", Content: "c", ContentType: core.ContentTypeText,
			IsActive: true,
		},
	)

	t.Run("keyword mode returns nothing", func(t *testing.T) {
		req := NewRequest("")
		req.Mode = ModeKeyword
		resp, err := searcher.Search(ctx, req)
		require.NoError(t, err)
		assert.Empty(t, resp.Items)
		assert.Zero(t, resp.Total)
	})

	t.Run("hybrid weight zero lists by recency", func(t *testing.T) {
		req := NewRequest("")
		req.SemanticWeight = 0
		resp, err := searcher.Search(ctx, req)
		require.NoError(t, err)

		// All scores are zero, so the newest insertion wins each tiebreak.
		require.Len(t, resp.Items, 3)
		assert.Equal(t, []core.ID{added[2].Id, added[1].Id, added[0].Id}, resultIDs(resp.Items))
	})

	t.Run("hybrid keeps zero-scored items", func(t *testing.T) {
		resp, err := searcher.Search(ctx, NewRequest(""))
		require.NoError(t, err)

		// No zero-score exclusion without query terms: the vector-less
		// item stays in the listing at score zero.
		assert.Equal(t, 3, resp.Total)
		assert.Equal(t, added[1].Id, resp.Items[0].Item.Id)
	})
}

func TestSearch_Pagination(t *testing.T) {
	searcher, repo := newTestSearcher(t, mock.NewMockEmbedder())
	ctx := context.Background()

	names := []string{"alpha", "beta", "gamma", "delta", "epsilon"}
	items := make([]*core.ContextItem, 0, len(names))
	for _, n := range names {
		items = append(items, &core.ContextItem{
			Title:       "widget " + n,
			Content:     "widget notes",
			ContentType: core.ContentTypeText,
			IsActive:    true,
		})
	}
	seedItems(t, repo, items...)

	search := func(limit, offset int) *Response {
		req := NewRequest("widget")
		req.Mode = ModeKeyword
		req.Limit = limit
		req.Offset = offset
		resp, err := searcher.Search(ctx, req)
		require.NoError(t, err)
		return resp
	}

	t.Run("pages are disjoint and ordered", func(t *testing.T) {
		page1 := search(2, 0)
		page2 := search(2, 2)
		page3 := search(2, 4)

		assert.Equal(t, 5, page1.Total)
		assert.Len(t, page1.Items, 2)
		assert.Len(t, page2.Items, 2)
		assert.Len(t, page3.Items, 1)

		seen := make(map[core.ID]bool)
		for _, page := range []*Response{page1, page2, page3} {
			for _, s := range page.Items {
				assert.False(t, seen[s.Item.Id], "item %d appeared twice", s.Item.Id)
				seen[s.Item.Id] = true
			}
		}
		assert.Len(t, seen, 5)
	})

	t.Run("offset beyond total", func(t *testing.T) {
		resp := search(2, 10)
		assert.Empty(t, resp.Items)
		assert.Equal(t, 5, resp.Total)
	})

	t.Run("zero limit reports total only", func(t *testing.T) {
		resp := search(0, 0)
		assert.Empty(t, resp.Items)
		assert.Equal(t, 5, resp.Total)
	})

	t.Run("repeated request is idempotent", func(t *testing.T) {
		first := search(3, 1)
		second := search(3, 1)
		assert.Equal(t, resultIDs(first.Items), resultIDs(second.Items))
	})
}

func TestSortScored(t *testing.T) {
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	item := func(id core.ID, created time.Time) *core.ContextItem {
		return &core.ContextItem{Id: id, CreatedAt: created}
	}

	scored := []*core.ScoredItem{
		{Item: item(1, base), Score: 0.5},
		{Item: item(2, base.Add(time.Hour)), Score: 0.5},
		{Item: item(3, base), Score: 0.9},
		{Item: item(4, base), Score: 0.5},
	}

	sortScored(scored)

	// Score descending, then creation time descending, then id descending.
	assert.Equal(t, []core.ID{3, 2, 4, 1}, resultIDs(scored))
}

func TestSearch_DegradesWithoutEmbedder(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, fmt.Errorf("%w: connection refused", ai.ErrEmbeddingUnavailable)
	}

	searcher, repo := newTestSearcher(t, embedder)
	ctx := context.Background()

	added := seedItems(t, repo,
		&core.ContextItem{
			Title: "rust ownership", Content: "borrow checker",
			ContentType: core.ContentTypeText, IsActive: true,
			Vector: []float32{1, 0, 0},
		},
		&core.ContextItem{
			Title: "unrelated", Content: "nothing here",
			ContentType: core.ContentTypeText, IsActive: true,
			Vector: []float32{0, 1, 0},
		},
	)

	t.Run("hybrid degrades to keyword", func(t *testing.T) {
		resp, err := searcher.Search(ctx, NewRequest("rust ownership"))
		require.NoError(t, err)

		assert.True(t, resp.Degraded)
		assert.Equal(t, ModeKeyword, resp.Mode)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, added[0].Id, resp.Items[0].Item.Id)
		assert.Zero(t, resp.Items[0].SemanticScore)
	})

	t.Run("semantic degrades to keyword", func(t *testing.T) {
		req := NewRequest("rust ownership")
		req.Mode = ModeSemantic
		resp, err := searcher.Search(ctx, req)
		require.NoError(t, err)

		assert.True(t, resp.Degraded)
		assert.Equal(t, ModeKeyword, resp.Mode)
		require.Len(t, resp.Items, 1)
	})

	t.Run("empty query degrades to nothing", func(t *testing.T) {
		resp, err := searcher.Search(ctx, NewRequest(""))
		require.NoError(t, err)

		assert.True(t, resp.Degraded)
		assert.Empty(t, resp.Items)
	})
}

func TestSearch_Cancellation(t *testing.T) {
	searcher, repo := newTestSearcher(t, queryEmbedder([]float32{1, 0, 0}))

	seedItems(t, repo,
		&core.ContextItem{Title: "a", Content: "a", ContentType: core.ContentTypeText, IsActive: true},
		&core.ContextItem{Title: "b", Content: "b", ContentType: core.ContentTypeText, IsActive: true},
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := searcher.Search(ctx, NewRequest("a"))
	assert.ErrorIs(t, err, context.Canceled)
}

// recordingMonitor captures the hook sequence for assertions.
type recordingMonitor struct {
	calls      []string
	candidates int
	degraded   error
}

func (m *recordingMonitor) Start(_ *Request) { m.calls = append(m.calls, "start") }
func (m *recordingMonitor) AfterCandidateScan(c []*core.ContextItem) {
	m.calls = append(m.calls, "scan")
	m.candidates = len(c)
}
func (m *recordingMonitor) Degraded(err error) {
	m.calls = append(m.calls, "degraded")
	m.degraded = err
}
func (m *recordingMonitor) AfterScoring(_ []*core.ScoredItem) { m.calls = append(m.calls, "scored") }
func (m *recordingMonitor) Finish(_ *Response)                { m.calls = append(m.calls, "finish") }

func TestSearchWithMonitor(t *testing.T) {
	t.Run("normal flow", func(t *testing.T) {
		searcher, repo := newTestSearcher(t, queryEmbedder([]float32{1, 0, 0}))
		seedItems(t, repo, &core.ContextItem{
			Title: "a", Content: "a", ContentType: core.ContentTypeText,
			IsActive: true, Vector: []float32{1, 0, 0},
		})

		monitor := &recordingMonitor{}
		_, err := searcher.SearchWithMonitor(context.Background(), NewRequest("a"), monitor)
		require.NoError(t, err)

		assert.Equal(t, []string{"start", "scan", "scored", "finish"}, monitor.calls)
		assert.Equal(t, 1, monitor.candidates)
	})

	t.Run("degraded flow reports the cause", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return nil, ai.ErrEmbeddingUnavailable
		}
		searcher, repo := newTestSearcher(t, embedder)
		seedItems(t, repo, &core.ContextItem{
			Title: "a", Content: "a", ContentType: core.ContentTypeText, IsActive: true,
		})

		monitor := &recordingMonitor{}
		_, err := searcher.SearchWithMonitor(context.Background(), NewRequest("a"), monitor)
		require.NoError(t, err)

		assert.Contains(t, monitor.calls, "degraded")
		assert.True(t, errors.Is(monitor.degraded, ai.ErrEmbeddingUnavailable))
	})
}
