package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/starfusion/engine/pkg/database"
	"github.com/starfusion/engine/pkg/models"
)

// MergeHistoryRepository is the append-only log of merge snapshots.
// Records are written once and never mutated; reads select by recency only.
type MergeHistoryRepository interface {
	// GetFresh returns the most recent snapshot no older than maxAge, or
	// nil when none qualifies.
	GetFresh(ctx context.Context, maxAge time.Duration) (*models.MergeRecord, error)
	// Insert appends a new snapshot. The record's ID and CreatedAt are
	// assigned here if unset.
	Insert(ctx context.Context, record *models.MergeRecord) error
	// List returns up to limit snapshots, newest first unless ascending.
	List(ctx context.Context, limit int, ascending bool) ([]*models.MergeRecord, error)
}

type mergeHistoryRepository struct {
	db *database.DB
}

// NewMergeHistoryRepository creates a MergeHistoryRepository.
func NewMergeHistoryRepository(db *database.DB) MergeHistoryRepository {
	return &mergeHistoryRepository{db: db}
}

var _ MergeHistoryRepository = (*mergeHistoryRepository)(nil)

func (r *mergeHistoryRepository) GetFresh(ctx context.Context, maxAge time.Duration) (*models.MergeRecord, error) {
	minCreatedAt := time.Now().UnixMilli() - maxAge.Milliseconds()

	query := `
		SELECT id, partition_tag, total_count, payload, created_at
		FROM merge_history
		WHERE partition_tag = $1 AND created_at >= $2
		ORDER BY created_at DESC
		LIMIT 1`

	row := r.db.QueryRow(ctx, query, models.PartitionTagHistory, minCreatedAt)
	record, err := scanMergeRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // No fresh snapshot
		}
		return nil, err
	}
	return record, nil
}

func (r *mergeHistoryRepository) Insert(ctx context.Context, record *models.MergeRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt == 0 {
		record.CreatedAt = time.Now().UnixMilli()
	}
	if record.PartitionTag == "" {
		record.PartitionTag = models.PartitionTagHistory
	}

	query := `
		INSERT INTO merge_history (id, partition_tag, total_count, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, query,
		record.ID, record.PartitionTag, record.TotalCount, record.Payload, record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert merge record: %w", err)
	}
	return nil
}

func (r *mergeHistoryRepository) List(ctx context.Context, limit int, ascending bool) ([]*models.MergeRecord, error) {
	direction := "DESC"
	if ascending {
		direction = "ASC"
	}

	query := fmt.Sprintf(`
		SELECT id, partition_tag, total_count, payload, created_at
		FROM merge_history
		WHERE partition_tag = $1
		ORDER BY created_at %s
		LIMIT $2`, direction)

	rows, err := r.db.Query(ctx, query, models.PartitionTagHistory, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list merge records: %w", err)
	}
	defer rows.Close()

	records := make([]*models.MergeRecord, 0)
	for rows.Next() {
		record, err := scanMergeRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating merge records: %w", err)
	}

	return records, nil
}

func scanMergeRecord(row pgx.Row) (*models.MergeRecord, error) {
	var record models.MergeRecord
	err := row.Scan(
		&record.ID, &record.PartitionTag, &record.TotalCount,
		&record.Payload, &record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan merge record: %w", err)
	}
	return &record, nil
}
