package hermes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/pantry/internal/store"
)

// Publisher publishes Pantry catalog events to Hermes.
type Publisher struct {
	client *Client
	logger *slog.Logger
}

// NewPublisher creates a new Hermes event publisher.
func NewPublisher(client *Client, logger *slog.Logger) *Publisher {
	return &Publisher{client: client, logger: logger}
}

// CatalogEvent is the standard event envelope published to Hermes.
type CatalogEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

func (p *Publisher) publish(_ context.Context, subject, eventType string, data any) error {
	event := CatalogEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    "pantry",
		Timestamp: time.Now(),
		Data:      data,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	if err := p.client.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("publishing to %s: %w", subject, err)
	}

	p.logger.Debug("published event", "subject", subject, "type", eventType)
	return nil
}

func itemData(it *store.Item) map[string]any {
	return map[string]any{
		"id":    it.ID,
		"name":  it.Name,
		"price": it.Price,
	}
}

// ItemCreated publishes an item creation event.
func (p *Publisher) ItemCreated(ctx context.Context, it *store.Item) error {
	return p.publish(ctx, "pantry.catalog.item.created", "catalog.item.created", itemData(it))
}

// ItemUpdated publishes an item update event.
func (p *Publisher) ItemUpdated(ctx context.Context, it *store.Item) error {
	return p.publish(ctx, "pantry.catalog.item.updated", "catalog.item.updated", itemData(it))
}

// ItemDeleted publishes an item deletion event.
func (p *Publisher) ItemDeleted(ctx context.Context, it *store.Item) error {
	return p.publish(ctx, "pantry.catalog.item.deleted", "catalog.item.deleted", itemData(it))
}

// ResyncCompleted publishes the outcome of a full embedding rebuild.
func (p *Publisher) ResyncCompleted(ctx context.Context, processed, failed int) error {
	return p.publish(ctx, "pantry.catalog.resync.completed", "catalog.resync.completed", map[string]any{
		"processed": processed,
		"failed":    failed,
	})
}
