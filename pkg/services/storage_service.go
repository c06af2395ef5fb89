package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/starfusion/engine/pkg/models"
	"github.com/starfusion/engine/pkg/repositories"
	"github.com/starfusion/engine/pkg/validators"
)

// StorageService validates and persists client documents.
type StorageService interface {
	Store(ctx context.Context, raw json.RawMessage) (*models.StorageEntry, error)
}

type storageService struct {
	storage repositories.StorageRepository
	logger  *zap.Logger
}

// NewStorageService creates a StorageService.
func NewStorageService(storage repositories.StorageRepository, logger *zap.Logger) StorageService {
	return &storageService{
		storage: storage,
		logger:  logger.Named("storage"),
	}
}

var _ StorageService = (*storageService)(nil)

func (s *storageService) Store(ctx context.Context, raw json.RawMessage) (*models.StorageEntry, error) {
	payload, err := validators.ValidateStoragePayload(raw)
	if err != nil {
		return nil, err
	}

	entry := &models.StorageEntry{
		Payload:   *payload,
		CreatedAt: time.Now().UnixMilli(),
	}
	if err := s.storage.Insert(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to store entry: %w", err)
	}

	s.logger.Info("Stored client document",
		zap.String("entry_id", entry.ID.String()),
		zap.String("user_id", entry.Payload.UserID))
	return entry, nil
}
