// Package catalog implements the retrieval-and-consistency core: it keeps each
// item's derived embedding in lockstep with the item row, ranks items by
// similarity or price, and reconciles drift between the two tables.
package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pgvector/pgvector-go"

	"github.com/MikeSquared-Agency/pantry/internal/embeddings"
	"github.com/MikeSquared-Agency/pantry/internal/hermes"
	"github.com/MikeSquared-Agency/pantry/internal/store"
)

// Default search policy. Matches scoring at or below the threshold are dropped.
const (
	DefaultSearchThreshold = 0.5
	DefaultSearchLimit     = 5
)

// Store is the persistence surface the manager needs. *store.Catalog implements it.
type Store interface {
	InsertItem(ctx context.Context, input store.ItemCreateInput) (*store.Item, error)
	UpdateItem(ctx context.Context, id string, input store.ItemUpdateInput) (*store.Item, error)
	DeleteItem(ctx context.Context, id string) (*store.Item, error)
	GetItem(ctx context.Context, id string) (*store.Item, error)
	ListItems(ctx context.Context) ([]store.Item, error)
	RankItemsByPrice(ctx context.Context, direction store.PriceDirection, limit int) ([]store.Item, error)
	CountItems(ctx context.Context) (int, error)
	ReplaceEmbedding(ctx context.Context, itemID, content string, embedding pgvector.Vector) error
	DeleteEmbeddingsFor(ctx context.Context, itemID string) error
	DeleteAllEmbeddings(ctx context.Context) error
	SearchEmbeddings(ctx context.Context, query pgvector.Vector, minScore float64, limit int) ([]store.EmbeddingMatch, error)
	CountLinkedEmbeddings(ctx context.Context) (int, error)
}

// Manager coordinates item mutations with embedding re-derivation. The item row
// is authoritative: it commits first, and a failed embed leaves the item with a
// stale or missing embedding rather than rolling the mutation back. CheckSync
// and ResyncAll detect and repair that drift.
type Manager struct {
	store     Store
	embedder  embeddings.Provider
	publisher *hermes.Publisher // may be nil
	logger    *slog.Logger

	threshold float64
}

// NewManager creates a Manager. publisher may be nil when no event bus is wired.
func NewManager(s Store, embedder embeddings.Provider, publisher *hermes.Publisher, logger *slog.Logger) *Manager {
	return &Manager{
		store:     s,
		embedder:  embedder,
		publisher: publisher,
		logger:    logger,
		threshold: DefaultSearchThreshold,
	}
}

// SetSearchThreshold overrides the similarity cutoff for Search.
func (m *Manager) SetSearchThreshold(t float64) {
	m.threshold = t
}

// RenderContent is the deterministic projection of an item into the text that
// gets embedded. It is the single source of truth for embedding input: any two
// callers rendering the same item get byte-identical output.
func RenderContent(it *store.Item) string {
	return fmt.Sprintf("%s: %s. Price: $%.2f", it.Name, it.Description, float64(it.Price)/100)
}

// Create inserts an item, then derives and stores its embedding from the
// persisted row.
func (m *Manager) Create(ctx context.Context, input store.ItemCreateInput) (*store.Item, error) {
	it, err := m.store.InsertItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	m.embed(ctx, it)

	if m.publisher != nil {
		_ = m.publisher.ItemCreated(ctx, it)
	}
	return it, nil
}

// Update applies a partial update, then re-derives the embedding from the
// post-mutation row. Returns store.ErrNotFound if the item does not exist.
func (m *Manager) Update(ctx context.Context, id string, input store.ItemUpdateInput) (*store.Item, error) {
	it, err := m.store.UpdateItem(ctx, id, input)
	if err != nil {
		return nil, err
	}

	m.embed(ctx, it)

	if m.publisher != nil {
		_ = m.publisher.ItemUpdated(ctx, it)
	}
	return it, nil
}

// Delete removes an item's embeddings, then the item itself, and returns the
// deleted snapshot. Returns store.ErrNotFound without side effects on the item
// table if the item does not exist.
func (m *Manager) Delete(ctx context.Context, id string) (*store.Item, error) {
	if err := m.store.DeleteEmbeddingsFor(ctx, id); err != nil {
		return nil, err
	}
	it, err := m.store.DeleteItem(ctx, id)
	if err != nil {
		return nil, err
	}

	if m.publisher != nil {
		_ = m.publisher.ItemDeleted(ctx, it)
	}
	return it, nil
}

// embed renders the item's content, calls the provider, and replaces the stored
// embedding. The item mutation has already committed when this runs, so every
// failure here is logged and absorbed: the index is eventually consistent.
func (m *Manager) embed(ctx context.Context, it *store.Item) {
	content := RenderContent(it)

	vec, err := m.embedder.Embed(ctx, content)
	if err != nil {
		m.logger.Warn("embedding failed, item left unindexed", "item_id", it.ID, "provider", m.embedder.Name(), "error", err)
		return
	}

	if err := m.store.ReplaceEmbedding(ctx, it.ID, content, vec); err != nil {
		m.logger.Warn("storing embedding failed", "item_id", it.ID, "error", err)
	}
}
