package catalog

import (
	"context"
	"fmt"

	"github.com/MikeSquared-Agency/pantry/internal/store"
)

// SearchResult is one ranked hit: the item, its similarity score (1 - cosine
// distance, in [-1, 1]), and the content string that was embedded.
type SearchResult struct {
	Item    store.Item `json:"item"`
	Score   float64    `json:"score"`
	Content string     `json:"content"`
}

// Search embeds the query and ranks items by similarity, descending, truncated
// to limit (default 5). Provider failure and zero matches both yield an empty
// result, never an error: the caller renders "no matches" instead of failing
// the turn.
func (m *Manager) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	vec, err := m.embedder.Embed(ctx, query)
	if err != nil {
		m.logger.Warn("query embedding failed", "provider", m.embedder.Name(), "error", err)
		return []SearchResult{}, nil
	}

	matches, err := m.store.SearchEmbeddings(ctx, vec, m.threshold, limit)
	if err != nil {
		m.logger.Warn("similarity search failed", "error", err)
		return []SearchResult{}, nil
	}

	results := make([]SearchResult, 0, len(matches))
	for _, match := range matches {
		results = append(results, SearchResult{
			Item:    match.Item,
			Score:   match.Score,
			Content: match.Content,
		})
	}
	return results, nil
}

// RankByPrice orders all items by raw price, the exact non-semantic path for
// "most/least expensive" questions. No embeddings are involved.
func (m *Manager) RankByPrice(ctx context.Context, direction store.PriceDirection, limit int) ([]store.Item, error) {
	if direction != store.PriceHighest && direction != store.PriceLowest {
		return nil, fmt.Errorf("invalid direction %q: must be %q or %q", direction, store.PriceHighest, store.PriceLowest)
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	return m.store.RankItemsByPrice(ctx, direction, limit)
}
