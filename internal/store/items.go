package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when an item does not exist.
var ErrNotFound = errors.New("item not found")

// PriceDirection orders price rankings.
type PriceDirection string

const (
	PriceHighest PriceDirection = "highest"
	PriceLowest  PriceDirection = "lowest"
)

// Item represents one catalog entry. Price is in minor currency units (cents).
type Item struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Price       int       `json:"price"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ItemCreateInput is the input for creating an item.
type ItemCreateInput struct {
	Name        string `json:"name"`
	Price       int    `json:"price"`
	Description string `json:"description"`
}

// ItemUpdateInput is the input for a partial item update. Nil fields are left unchanged.
type ItemUpdateInput struct {
	Name        *string `json:"name,omitempty"`
	Price       *int    `json:"price,omitempty"`
	Description *string `json:"description,omitempty"`
}

const itemColumns = "id, name, price, description, created_at, updated_at"

func scanItem(row pgx.Row) (*Item, error) {
	it := &Item{}
	err := row.Scan(&it.ID, &it.Name, &it.Price, &it.Description, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return it, nil
}

// Catalog provides item and embedding persistence.
type Catalog struct {
	db *DB
}

// NewCatalog creates a new Catalog store.
func NewCatalog(db *DB) *Catalog {
	return &Catalog{db: db}
}

// InsertItem inserts a new item and returns the persisted row.
func (s *Catalog) InsertItem(ctx context.Context, input ItemCreateInput) (*Item, error) {
	it, err := scanItem(s.db.Pool.QueryRow(ctx, `
		INSERT INTO items (id, name, price, description)
		VALUES ($1, $2, $3, $4)
		RETURNING `+itemColumns,
		uuid.NewString(), input.Name, input.Price, input.Description))
	if err != nil {
		return nil, fmt.Errorf("inserting item: %w", err)
	}
	return it, nil
}

// UpdateItem applies a partial update and returns the post-update row.
// Returns ErrNotFound if the item does not exist.
func (s *Catalog) UpdateItem(ctx context.Context, id string, input ItemUpdateInput) (*Item, error) {
	var setClauses []string
	var args []any
	argN := 1

	if input.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", argN))
		args = append(args, *input.Name)
		argN++
	}
	if input.Price != nil {
		setClauses = append(setClauses, fmt.Sprintf("price = $%d", argN))
		args = append(args, *input.Price)
		argN++
	}
	if input.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", argN))
		args = append(args, *input.Description)
		argN++
	}

	if len(setClauses) == 0 {
		return s.GetItem(ctx, id)
	}

	setClauses = append(setClauses, "updated_at = now()")
	args = append(args, id)

	query := fmt.Sprintf("UPDATE items SET %s WHERE id = $%d RETURNING %s",
		strings.Join(setClauses, ", "), argN, itemColumns)

	it, err := scanItem(s.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("updating item %s: %w", id, err)
	}
	return it, nil
}

// DeleteItem removes an item and returns the deleted snapshot.
// Embeddings referencing the item are removed by the FK cascade.
func (s *Catalog) DeleteItem(ctx context.Context, id string) (*Item, error) {
	it, err := scanItem(s.db.Pool.QueryRow(ctx,
		"DELETE FROM items WHERE id = $1 RETURNING "+itemColumns, id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("deleting item %s: %w", id, err)
	}
	return it, nil
}

// GetItem fetches an item by ID.
func (s *Catalog) GetItem(ctx context.Context, id string) (*Item, error) {
	it, err := scanItem(s.db.Pool.QueryRow(ctx,
		"SELECT "+itemColumns+" FROM items WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting item %s: %w", id, err)
	}
	return it, nil
}

// ListItems returns all items in creation order.
func (s *Catalog) ListItems(ctx context.Context) ([]Item, error) {
	rows, err := s.db.Pool.Query(ctx,
		"SELECT "+itemColumns+" FROM items ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

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

// RankItemsByPrice orders all items by raw price. Ties keep the store's natural
// return order. This is the exact, non-semantic ranking path.
func (s *Catalog) RankItemsByPrice(ctx context.Context, direction PriceDirection, limit int) ([]Item, error) {
	order := "ASC"
	if direction == PriceHighest {
		order = "DESC"
	}
	rows, err := s.db.Pool.Query(ctx,
		"SELECT "+itemColumns+" FROM items ORDER BY price "+order+" LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("ranking items by price: %w", err)
	}
	defer rows.Close()

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

// CountItems returns the number of items.
func (s *Catalog) CountItems(ctx context.Context) (int, error) {
	var n int
	if err := s.db.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM items").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting items: %w", err)
	}
	return n, nil
}
