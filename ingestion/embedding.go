package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/cortex/ai"
	"github.com/poiesic/cortex/core"
	"github.com/poiesic/cortex/storage"
)

// embeddingRefresher back-fills vectors for items that were stored
// without one.
type embeddingRefresher struct {
	items    storage.ItemRepository
	embedder ai.Embedder
	logger   *slog.Logger
}

func newEmbeddingRefresher(items storage.ItemRepository, embedder ai.Embedder, logger *slog.Logger) *embeddingRefresher {
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingRefresher{
		items:    items,
		embedder: embedder,
		logger:   logger.With("processor", "embeddings"),
	}
}

// process embeds and updates the items identified by the given IDs.
// Items deleted since ingestion are skipped silently.
func (er *embeddingRefresher) process(ctx context.Context, ids ...core.ID) error {
	er.logger.Info("refreshing embeddings", "items", len(ids))

	items, err := er.items.GetItems(ctx, ids...)
	if err != nil {
		er.logger.Error("error retrieving items", "err", err)
		return err
	}
	if len(items) == 0 {
		return nil
	}

	texts := make([]string, len(items))
	for i, item := range items {
		texts[i] = item.Content
	}

	vectors, err := er.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		er.logger.Error("error generating embeddings", "err", err)
		return err
	}

	if len(vectors) != len(items) {
		return fmt.Errorf("embedding result mismatch. expected %d, received %d", len(items), len(vectors))
	}

	for i := range vectors {
		items[i].Vector = vectors[i]
		items[i].VectorHash = core.IDFromContent(items[i].Content)
	}

	_, err = er.items.UpdateItems(ctx, items...)
	return err
}
