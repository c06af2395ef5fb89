package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/starfusion/engine/pkg/models"
	"github.com/starfusion/engine/pkg/services"
)

// MergedResponse is the success envelope for the merged data endpoint.
type MergedResponse struct {
	Message    string                   `json:"message"`
	TotalCount int                      `json:"totalCount"`
	Entities   []models.MergedCharacter `json:"entities"`
}

// MergedHandler serves the merged character data.
type MergedHandler struct {
	merge  services.MergeService
	logger *zap.Logger
}

// NewMergedHandler creates a new MergedHandler.
func NewMergedHandler(merge services.MergeService, logger *zap.Logger) *MergedHandler {
	return &MergedHandler{merge: merge, logger: logger}
}

// RegisterRoutes registers the merged data route on the given mux.
func (h *MergedHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /merged", h.GetMerged)
}

// GetMerged handles GET /merged requests. A pipeline failure yields 502
// with the canonical empty result, so clients always get the same shape.
func (h *MergedHandler) GetMerged(w http.ResponseWriter, r *http.Request) {
	result := h.merge.GetMergedData(r.Context())

	if result.Error != "" {
		if err := WriteJSON(w, http.StatusBadGateway, result); err != nil {
			h.logger.Error("Failed to encode merged failure response", zap.Error(err))
		}
		return
	}

	response := MergedResponse{
		Message:    "Data fetched successfully",
		TotalCount: result.TotalCount,
		Entities:   result.Entities,
	}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode merged response", zap.Error(err))
	}
}
