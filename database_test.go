package cortex

import (
	"bytes"
	"context"
	"testing"

	"github.com/poiesic/cortex/ai"
	"github.com/poiesic/cortex/ai/mock"
	"github.com/poiesic/cortex/core"
	"github.com/poiesic/cortex/ingestion"
	"github.com/poiesic/cortex/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()

	embedder := mock.NewMockEmbedder()
	embedder.Dimension = 8

	db, err := NewDatabase("",
		WithInMemory(),
		WithEmbedder(embedder),
		WithAIConfig(ai.NewConfig(ai.WithDimension(8))),
	)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDatabase_EndToEnd(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)

	pipeline, err := db.NewPipeline()
	require.NoError(t, err)
	defer pipeline.Release()

	_, err = pipeline.CreateProject(ctx, &core.ContextProject{
		Id:   "docs",
		Name: "Documentation",
	})
	require.NoError(t, err)

	item, err := pipeline.Create(ctx, &ingestion.ItemDraft{
		Title:       "Ownership in Rust",
		Content:     "The borrow checker enforces move semantics.",
		ContentType: core.ContentTypeMarkdown,
		ProjectId:   "docs",
		Tags:        []string{"rust"},
	})
	require.NoError(t, err)
	assert.True(t, item.HasCurrentVector())

	searcher, err := db.NewSearcher()
	require.NoError(t, err)

	resp, err := searcher.Search(ctx, search.NewRequest("rust ownership"))
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, item.Id, resp.Items[0].Item.Id)
	assert.False(t, resp.Degraded)

	stats, err := db.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalItems)
	assert.Equal(t, 1, stats.ActiveItems)
	assert.Equal(t, 1, stats.ContentTypes[core.ContentTypeMarkdown])
	assert.Equal(t, 1, stats.ProjectCount)
	assert.Equal(t, 8, stats.Dimension)
}

func TestDatabase_StatsCountsInactive(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)

	pipeline, err := db.NewPipeline()
	require.NoError(t, err)
	defer pipeline.Release()

	item, err := pipeline.Create(ctx, &ingestion.ItemDraft{
		Title: "a", Content: "b", ContentType: core.ContentTypeText,
	})
	require.NoError(t, err)
	require.NoError(t, pipeline.SoftDelete(ctx, item.Id))

	stats, err := db.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalItems)
	assert.Zero(t, stats.ActiveItems)
}

func TestDatabase_NewReembedder(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)

	// Store an item vector-less through the repository directly.
	_, err := db.ItemRepository().AddItems(ctx, &core.ContextItem{
		Title: "bare", Content: "no vector yet",
		ContentType: core.ContentTypeText, IsActive: true,
	})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, db.NewReembedder(nil, &out).Run(ctx))
	assert.Contains(t, out.String(), "Re-embedding complete")

	stats, err := db.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalItems)
}
