package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/starfusion/engine/pkg/config"
	"github.com/starfusion/engine/pkg/models"
)

func historyConfig() config.HistoryConfig {
	return config.HistoryConfig{DefaultLimit: 20, MaxLimit: 100}
}

func TestHistoryService_ClampsLimit(t *testing.T) {
	var seenLimit int
	history := &mockHistoryRepo{
		listFunc: func(_ context.Context, limit int, _ bool) ([]*models.MergeRecord, error) {
			seenLimit = limit
			return nil, nil
		},
	}
	svc := NewHistoryService(history, historyConfig(), zap.NewNop())
	ctx := context.Background()

	_, err := svc.List(ctx, 0, false)
	require.NoError(t, err)
	assert.Equal(t, 20, seenLimit, "non-positive limit falls back to default")

	_, err = svc.List(ctx, 500, false)
	require.NoError(t, err)
	assert.Equal(t, 100, seenLimit, "limit above the maximum is clamped")

	_, err = svc.List(ctx, 7, false)
	require.NoError(t, err)
	assert.Equal(t, 7, seenLimit)
}

func TestHistoryService_DecodesSnapshots(t *testing.T) {
	now := time.Now().UnixMilli()
	history := &mockHistoryRepo{
		listFunc: func(_ context.Context, _ int, ascending bool) ([]*models.MergeRecord, error) {
			assert.True(t, ascending)
			return []*models.MergeRecord{
				{TotalCount: 1, Payload: []byte(`[{"name":"Luke Skywalker"}]`), CreatedAt: now - 1000},
				{TotalCount: 3, Payload: []byte("{corrupt"), CreatedAt: now - 500},
				{TotalCount: 0, Payload: []byte(`[]`), CreatedAt: now},
			}, nil
		},
	}
	svc := NewHistoryService(history, historyConfig(), zap.NewNop())

	snapshots, err := svc.List(context.Background(), 10, true)
	require.NoError(t, err)
	require.Len(t, snapshots, 2, "unreadable snapshots are skipped")
	assert.Equal(t, 1, snapshots[0].TotalCount)
	assert.JSONEq(t, `[{"name":"Luke Skywalker"}]`, string(snapshots[0].Entities))
	assert.Equal(t, now, snapshots[1].Timestamp)
}
