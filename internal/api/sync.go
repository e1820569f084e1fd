package api

import (
	"net/http"

	"github.com/MikeSquared-Agency/pantry/internal/catalog"
)

// SyncHandler exposes the reconciliation surface.
type SyncHandler struct {
	manager *catalog.Manager
}

// NewSyncHandler creates a new SyncHandler.
func NewSyncHandler(manager *catalog.Manager) *SyncHandler {
	return &SyncHandler{manager: manager}
}

// Status handles GET /sync/status.
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.manager.CheckSync(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to check sync status")
		return
	}
	writeSuccess(w, http.StatusOK, status)
}

// Resync handles POST /sync/resync. Rebuilds every embedding from current
// items; per-item provider failures are tolerated and counted.
func (h *SyncHandler) Resync(w http.ResponseWriter, r *http.Request) {
	report, err := h.manager.ResyncAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Resync failed")
		return
	}
	writeSuccess(w, http.StatusOK, report)
}
