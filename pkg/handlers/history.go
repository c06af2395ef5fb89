package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/starfusion/engine/pkg/services"
)

// HistoryResponse is the envelope for the history listing.
type HistoryResponse struct {
	Count     int                        `json:"count"`
	Snapshots []services.HistorySnapshot `json:"snapshots"`
}

// HistoryHandler serves persisted merge snapshots.
type HistoryHandler struct {
	history services.HistoryService
	logger  *zap.Logger
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(history services.HistoryService, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{history: history, logger: logger}
}

// RegisterRoutes registers the history route on the given mux.
func (h *HistoryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /history", h.ListHistory)
}

// ListHistory handles GET /history requests.
// Supports ?limit=N and ?order=asc|desc (newest first by default).
func (h *HistoryHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := 0
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			_ = ErrorResponse(w, http.StatusBadRequest, "invalid_limit",
				"limit must be a positive integer")
			return
		}
		limit = parsed
	}

	ascending := false
	switch query.Get("order") {
	case "", "desc":
	case "asc":
		ascending = true
	default:
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_order",
			"order must be asc or desc")
		return
	}

	snapshots, err := h.history.List(r.Context(), limit, ascending)
	if err != nil {
		h.logger.Error("Failed to list history", zap.Error(err))
		_ = WriteError(w, err)
		return
	}

	response := HistoryResponse{
		Count:     len(snapshots),
		Snapshots: snapshots,
	}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode history response", zap.Error(err))
	}
}
