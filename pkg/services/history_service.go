package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/starfusion/engine/pkg/config"
	"github.com/starfusion/engine/pkg/repositories"
)

// HistorySnapshot is one persisted merge run, payload decoded for clients.
type HistorySnapshot struct {
	ID         uuid.UUID       `json:"id"`
	TotalCount int             `json:"totalCount"`
	Timestamp  int64           `json:"timestamp"`
	Entities   json.RawMessage `json:"entities"`
}

// HistoryService reads persisted merge snapshots.
type HistoryService interface {
	// List returns snapshots ordered by recency. A non-positive limit falls
	// back to the configured default; limits above the maximum are clamped.
	List(ctx context.Context, limit int, ascending bool) ([]HistorySnapshot, error)
}

type historyService struct {
	history repositories.MergeHistoryRepository
	cfg     config.HistoryConfig
	logger  *zap.Logger
}

// NewHistoryService creates a HistoryService.
func NewHistoryService(history repositories.MergeHistoryRepository, cfg config.HistoryConfig, logger *zap.Logger) HistoryService {
	return &historyService{
		history: history,
		cfg:     cfg,
		logger:  logger.Named("history"),
	}
}

var _ HistoryService = (*historyService)(nil)

func (s *historyService) List(ctx context.Context, limit int, ascending bool) ([]HistorySnapshot, error) {
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	if limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}

	records, err := s.history.List(ctx, limit, ascending)
	if err != nil {
		return nil, fmt.Errorf("failed to list merge history: %w", err)
	}

	snapshots := make([]HistorySnapshot, 0, len(records))
	for _, record := range records {
		entities := json.RawMessage(record.Payload)
		if !json.Valid(entities) {
			s.logger.Warn("Skipping snapshot with unreadable payload",
				zap.String("record_id", record.ID.String()))
			continue
		}
		snapshots = append(snapshots, HistorySnapshot{
			ID:         record.ID,
			TotalCount: record.TotalCount,
			Timestamp:  record.CreatedAt,
			Entities:   entities,
		})
	}
	return snapshots, nil
}
