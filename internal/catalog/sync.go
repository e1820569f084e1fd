package catalog

import (
	"context"
	"fmt"
)

// SyncStatus reports the reconciliation check between items and their embeddings.
type SyncStatus struct {
	ItemCount      int  `json:"item_count"`
	EmbeddingCount int  `json:"embedding_count"`
	FullySynced    bool `json:"fully_synced"`
}

// ResyncReport summarizes a full rebuild of the embedding index.
type ResyncReport struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

// CheckSync compares the item count against the count of embeddings joined to
// an item. FullySynced requires the counts to match and at least one item.
func (m *Manager) CheckSync(ctx context.Context) (*SyncStatus, error) {
	itemCount, err := m.store.CountItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting items: %w", err)
	}
	embeddingCount, err := m.store.CountLinkedEmbeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting embeddings: %w", err)
	}

	return &SyncStatus{
		ItemCount:      itemCount,
		EmbeddingCount: embeddingCount,
		FullySynced:    itemCount == embeddingCount && itemCount > 0,
	}, nil
}

// ResyncAll clears every embedding and rebuilds the index from the current
// items. Per-item provider failures are logged and counted, then skipped; the
// rebuild continues. Only the embed step runs; item rows are never touched.
func (m *Manager) ResyncAll(ctx context.Context) (*ResyncReport, error) {
	if err := m.store.DeleteAllEmbeddings(ctx); err != nil {
		return nil, fmt.Errorf("clearing embeddings: %w", err)
	}

	items, err := m.store.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}

	report := &ResyncReport{}
	for i := range items {
		it := &items[i]
		content := RenderContent(it)

		vec, err := m.embedder.Embed(ctx, content)
		if err != nil {
			m.logger.Warn("resync embed failed", "item_id", it.ID, "name", it.Name, "error", err)
			report.Failed++
			continue
		}
		if err := m.store.ReplaceEmbedding(ctx, it.ID, content, vec); err != nil {
			m.logger.Warn("resync store failed", "item_id", it.ID, "error", err)
			report.Failed++
			continue
		}
		report.Processed++
	}

	m.logger.Info("resync complete", "processed", report.Processed, "failed", report.Failed)

	if m.publisher != nil {
		_ = m.publisher.ResyncCompleted(ctx, report.Processed, report.Failed)
	}
	return report, nil
}
