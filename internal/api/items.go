package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/pantry/internal/catalog"
	"github.com/MikeSquared-Agency/pantry/internal/store"
)

// ItemsHandler provides catalog CRUD, semantic search, and price ranking endpoints.
type ItemsHandler struct {
	manager *catalog.Manager
	items   *store.Catalog
}

// NewItemsHandler creates a new ItemsHandler.
func NewItemsHandler(manager *catalog.Manager, items *store.Catalog) *ItemsHandler {
	return &ItemsHandler{manager: manager, items: items}
}

// CreateItemRequest is the request body for creating an item.
type CreateItemRequest struct {
	Name        string `json:"name"`
	Price       int    `json:"price"`
	Description string `json:"description"`
}

// Create handles POST /items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Name is required")
		return
	}
	if req.Price < 0 {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Price must be >= 0")
		return
	}

	it, err := h.manager.Create(r.Context(), store.ItemCreateInput{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create item")
		return
	}
	writeSuccess(w, http.StatusCreated, it)
}

// List handles GET /items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.items.ListItems(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list items")
		return
	}
	writeSuccess(w, http.StatusOK, items)
}

// Get handles GET /items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	it, err := h.items.GetItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Item not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get item")
		return
	}
	writeSuccess(w, http.StatusOK, it)
}

// Update handles PUT /items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req store.ItemUpdateInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if req.Price != nil && *req.Price < 0 {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Price must be >= 0")
		return
	}

	it, err := h.manager.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Item not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update item")
		return
	}
	writeSuccess(w, http.StatusOK, it)
}

// Delete handles DELETE /items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	it, err := h.manager.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Item not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete item")
		return
	}
	writeSuccess(w, http.StatusOK, it)
}

// SearchRequest is the request body for semantic search.
type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// Search handles POST /items/search.
func (h *ItemsHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Query is required")
		return
	}

	results, err := h.manager.Search(r.Context(), req.Query, req.Limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Search failed")
		return
	}
	writeSuccess(w, http.StatusOK, results)
}

// Ranked handles GET /items/ranked?direction=highest|lowest&limit=n.
func (h *ItemsHandler) Ranked(w http.ResponseWriter, r *http.Request) {
	direction := store.PriceDirection(r.URL.Query().Get("direction"))
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	items, err := h.manager.RankByPrice(r.Context(), direction, limit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	writeSuccess(w, http.StatusOK, items)
}
