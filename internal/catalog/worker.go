package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/MikeSquared-Agency/pantry/internal/embeddings"
	"github.com/MikeSquared-Agency/pantry/internal/store"
	"github.com/pgvector/pgvector-go"
)

// driftStore is the subset of the store the background worker needs.
type driftStore interface {
	ItemsMissingEmbeddings(ctx context.Context, limit int) ([]store.Item, error)
	ItemsWithStaleEmbeddings(ctx context.Context, limit int) ([]store.Item, error)
	ReplaceEmbedding(ctx context.Context, itemID, content string, embedding pgvector.Vector) error
}

// WorkerConfig holds background drift-repair settings.
type WorkerConfig struct {
	Interval  time.Duration
	BatchSize int
}

// Worker periodically re-embeds items whose embedding is missing or older than
// the item row. It repairs the drift left behind when the provider fails during
// a mutation, without ever touching item rows.
type Worker struct {
	store    driftStore
	embedder embeddings.Provider
	config   WorkerConfig
	logger   *slog.Logger
}

// NewWorker creates a drift-repair worker.
func NewWorker(s driftStore, embedder embeddings.Provider, cfg WorkerConfig, logger *slog.Logger) *Worker {
	return &Worker{store: s, embedder: embedder, config: cfg, logger: logger}
}

// Start launches the repair loop. It runs until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	go w.runLoop(ctx)
}

func (w *Worker) runLoop(ctx context.Context) {
	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	// Run once immediately
	if err := w.repairBatch(ctx); err != nil {
		w.logger.Warn("drift repair initial run", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("drift repair worker shutting down")
			return
		case <-ticker.C:
			if err := w.repairBatch(ctx); err != nil {
				w.logger.Warn("drift repair error", "error", err)
			}
		}
	}
}

// repairBatch re-embeds up to BatchSize items: first those with no embedding,
// then those whose embedding predates the item's last update.
func (w *Worker) repairBatch(ctx context.Context) error {
	items, err := w.store.ItemsMissingEmbeddings(ctx, w.config.BatchSize)
	if err != nil {
		return err
	}

	remaining := w.config.BatchSize - len(items)
	if remaining > 0 {
		stale, err := w.store.ItemsWithStaleEmbeddings(ctx, remaining)
		if err != nil {
			return err
		}
		items = append(items, stale...)
	}

	if len(items) == 0 {
		return nil
	}

	repaired := 0
	for i := range items {
		it := &items[i]
		content := RenderContent(it)

		vec, err := w.embedder.Embed(ctx, content)
		if err != nil {
			w.logger.Warn("repair embed failed", "item_id", it.ID, "error", err)
			continue
		}
		if err := w.store.ReplaceEmbedding(ctx, it.ID, content, vec); err != nil {
			w.logger.Warn("repair store failed", "item_id", it.ID, "error", err)
			continue
		}
		repaired++
	}

	w.logger.Info("drift repair pass", "candidates", len(items), "repaired", repaired)
	return nil
}
