package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MikeSquared-Agency/pantry/internal/store"
)

// QueryHandler exposes the guarded raw-query escape hatch.
type QueryHandler struct {
	db *store.DB
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(db *store.DB) *QueryHandler {
	return &QueryHandler{db: db}
}

// QueryRequest is the request body for a raw query.
type QueryRequest struct {
	Query string `json:"query"`
}

// QueryResponse is the tagged success/failure shape for raw queries.
type QueryResponse struct {
	Success  bool             `json:"success"`
	Rows     []map[string]any `json:"rows,omitempty"`
	RowCount int              `json:"row_count"`
	Error    string           `json:"error,omitempty"`
}

// Run handles POST /query. Execution failures are returned in the body as a
// tagged failure, not an HTTP error: the caller relays them conversationally.
func (h *QueryHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	result, err := store.RunReadOnlyQuery(r.Context(), h.db.DBTX(), req.Query)
	if err != nil {
		status := http.StatusOK
		if errors.Is(err, store.ErrQueryNotReadOnly) {
			status = http.StatusForbidden
		}
		writeJSON(w, status, QueryResponse{Success: false, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, QueryResponse{
		Success:  true,
		Rows:     result.Rows,
		RowCount: result.RowCount,
	})
}
