package api

import (
	"net/http"
	"time"

	"github.com/MikeSquared-Agency/pantry/internal/hermes"
	"github.com/MikeSquared-Agency/pantry/internal/store"
)

// HealthHandler provides the health endpoint.
type HealthHandler struct {
	db        *store.DB
	catalog   *store.Catalog
	hermes    *hermes.Client
	startTime time.Time
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db *store.DB, catalogStore *store.Catalog, hermesClient *hermes.Client) *HealthHandler {
	return &HealthHandler{
		db:        db,
		catalog:   catalogStore,
		hermes:    hermesClient,
		startTime: time.Now(),
	}
}

// Health returns the service health status.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dbStatus := "connected"
	if err := h.db.HealthCheck(ctx); err != nil {
		dbStatus = "disconnected"
	}

	hermesStatus := "disconnected"
	if h.hermes != nil && h.hermes.IsConnected() {
		hermesStatus = "connected"
	}

	itemCount, _ := h.catalog.CountItems(ctx)
	embeddingCount, _ := h.catalog.CountLinkedEmbeddings(ctx)

	resp := map[string]any{
		"status":          "healthy",
		"database":        dbStatus,
		"hermes":          hermesStatus,
		"item_count":      itemCount,
		"embedding_count": embeddingCount,
		"embedding_gap":   itemCount - embeddingCount,
		"uptime_seconds":  int(time.Since(h.startTime).Seconds()),
	}

	if dbStatus == "disconnected" {
		resp["status"] = "degraded"
	}

	writeJSON(w, http.StatusOK, resp)
}
