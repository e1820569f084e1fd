package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
)

// ItemEmbedding is the stored vector representation of an item's rendered content.
// It is a derived, disposable cache: losing it degrades search, not the catalog.
type ItemEmbedding struct {
	ID        string          `json:"id"`
	ItemID    string          `json:"item_id"`
	Content   string          `json:"content"`
	Embedding pgvector.Vector `json:"-"`
	CreatedAt time.Time       `json:"created_at"`
}

// EmbeddingMatch is one similarity-search hit joined to its item.
type EmbeddingMatch struct {
	Item    Item    `json:"item"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// ReplaceEmbedding deletes any existing embedding for the item and inserts a
// fresh one. Delete-then-insert keeps the at-most-one invariant; the transient
// zero-embedding window is the accepted degraded state.
func (s *Catalog) ReplaceEmbedding(ctx context.Context, itemID, content string, embedding pgvector.Vector) error {
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM item_embeddings WHERE item_id = $1", itemID); err != nil {
			return fmt.Errorf("deleting prior embedding for %s: %w", itemID, err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO item_embeddings (id, item_id, content, embedding)
			VALUES ($1, $2, $3, $4)`,
			uuid.NewString(), itemID, content, embedding); err != nil {
			return fmt.Errorf("inserting embedding for %s: %w", itemID, err)
		}
		return nil
	})
}

// DeleteEmbeddingsFor removes all embeddings referencing an item.
func (s *Catalog) DeleteEmbeddingsFor(ctx context.Context, itemID string) error {
	if _, err := s.db.Pool.Exec(ctx, "DELETE FROM item_embeddings WHERE item_id = $1", itemID); err != nil {
		return fmt.Errorf("deleting embeddings for %s: %w", itemID, err)
	}
	return nil
}

// DeleteAllEmbeddings clears the embedding table. Used by full resyncs.
func (s *Catalog) DeleteAllEmbeddings(ctx context.Context) error {
	if _, err := s.db.Pool.Exec(ctx, "DELETE FROM item_embeddings"); err != nil {
		return fmt.Errorf("clearing embeddings: %w", err)
	}
	return nil
}

// SearchEmbeddings ranks items by cosine similarity to the query vector.
// Score is 1 - cosine distance; rows at or below minScore are excluded.
func (s *Catalog) SearchEmbeddings(ctx context.Context, query pgvector.Vector, minScore float64, limit int) ([]EmbeddingMatch, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT i.id, i.name, i.price, i.description, i.created_at, i.updated_at,
		       e.content, 1 - (e.embedding <=> $1) AS score
		FROM item_embeddings e
		JOIN items i ON i.id = e.item_id
		WHERE 1 - (e.embedding <=> $1) > $2
		ORDER BY score DESC
		LIMIT $3
	`, query, minScore, limit)
	if err != nil {
		return nil, fmt.Errorf("searching embeddings: %w", err)
	}
	defer rows.Close()

	var matches []EmbeddingMatch
	for rows.Next() {
		var m EmbeddingMatch
		if err := rows.Scan(&m.Item.ID, &m.Item.Name, &m.Item.Price, &m.Item.Description,
			&m.Item.CreatedAt, &m.Item.UpdatedAt, &m.Content, &m.Score); err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// CountLinkedEmbeddings counts embeddings successfully joined to an item.
func (s *Catalog) CountLinkedEmbeddings(ctx context.Context) (int, error) {
	var n int
	err := s.db.Pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM item_embeddings e
		JOIN items i ON i.id = e.item_id
	`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting linked embeddings: %w", err)
	}
	return n, nil
}

// ItemsMissingEmbeddings returns items that have no embedding yet.
func (s *Catalog) ItemsMissingEmbeddings(ctx context.Context, limit int) ([]Item, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT i.id, i.name, i.price, i.description, i.created_at, i.updated_at
		FROM items i
		LEFT JOIN item_embeddings e ON e.item_id = i.id
		WHERE e.item_id IS NULL
		ORDER BY i.created_at
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("items missing embeddings: %w", err)
	}
	defer rows.Close()
	return collectItems(rows)
}

func collectItems(rows pgx.Rows) ([]Item, error) {
	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Price, &it.Description, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ItemsWithStaleEmbeddings returns items updated after their embedding was written.
func (s *Catalog) ItemsWithStaleEmbeddings(ctx context.Context, limit int) ([]Item, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT i.id, i.name, i.price, i.description, i.created_at, i.updated_at
		FROM items i
		JOIN item_embeddings e ON e.item_id = i.id
		WHERE i.updated_at > e.created_at
		ORDER BY i.updated_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("items with stale embeddings: %w", err)
	}
	defer rows.Close()
	return collectItems(rows)
}
