package handlers

import (
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/starfusion/engine/pkg/services"
)

// maxStorageBodyBytes bounds the request body for storage submissions.
const maxStorageBodyBytes = 64 * 1024

// StorageHandler accepts client documents for persistence.
type StorageHandler struct {
	storage services.StorageService
	logger  *zap.Logger
}

// NewStorageHandler creates a new StorageHandler.
func NewStorageHandler(storage services.StorageService, logger *zap.Logger) *StorageHandler {
	return &StorageHandler{storage: storage, logger: logger}
}

// RegisterRoutes registers the storage route on the given mux.
func (h *StorageHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /storage", h.Store)
}

// Store handles POST /storage requests. Validation failures return 400
// with every field violation listed.
func (h *StorageHandler) Store(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxStorageBodyBytes))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_body",
			"failed to read request body")
		return
	}

	entry, err := h.storage.Store(r.Context(), body)
	if err != nil {
		h.logger.Warn("Storage submission rejected", zap.Error(err))
		_ = WriteError(w, err)
		return
	}

	response := map[string]interface{}{
		"id":        entry.ID,
		"createdAt": entry.CreatedAt,
	}
	if err := WriteJSON(w, http.StatusCreated, response); err != nil {
		h.logger.Error("Failed to encode storage response", zap.Error(err))
	}
}
