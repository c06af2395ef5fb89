package handlers

import (
	"context"
	"encoding/json"

	"github.com/starfusion/engine/pkg/models"
	"github.com/starfusion/engine/pkg/services"
)

type mockMergeService struct {
	getMergedDataFunc func(ctx context.Context) models.MergedResult
}

func (m *mockMergeService) GetMergedData(ctx context.Context) models.MergedResult {
	return m.getMergedDataFunc(ctx)
}

type mockHistoryService struct {
	listFunc func(ctx context.Context, limit int, ascending bool) ([]services.HistorySnapshot, error)
}

func (m *mockHistoryService) List(ctx context.Context, limit int, ascending bool) ([]services.HistorySnapshot, error) {
	return m.listFunc(ctx, limit, ascending)
}

type mockStorageService struct {
	storeFunc func(ctx context.Context, raw json.RawMessage) (*models.StorageEntry, error)
}

func (m *mockStorageService) Store(ctx context.Context, raw json.RawMessage) (*models.StorageEntry, error) {
	return m.storeFunc(ctx, raw)
}
