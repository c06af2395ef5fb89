package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/starfusion/engine/pkg/apperrors"
	"github.com/starfusion/engine/pkg/database"
	"github.com/starfusion/engine/pkg/models"
)

// StorageRepository persists validated client documents.
type StorageRepository interface {
	Insert(ctx context.Context, entry *models.StorageEntry) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.StorageEntry, error)
}

type storageRepository struct {
	db *database.DB
}

// NewStorageRepository creates a StorageRepository.
func NewStorageRepository(db *database.DB) StorageRepository {
	return &storageRepository{db: db}
}

var _ StorageRepository = (*storageRepository)(nil)

func (r *storageRepository) Insert(ctx context.Context, entry *models.StorageEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	query := `
		INSERT INTO storage_entries (id, title, description, user_id, client_timestamp, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		entry.ID, entry.Payload.Title, entry.Payload.Description,
		entry.Payload.UserID, entry.Payload.Timestamp, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert storage entry: %w", err)
	}
	return nil
}

func (r *storageRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.StorageEntry, error) {
	query := `
		SELECT id, title, description, user_id, client_timestamp, created_at
		FROM storage_entries
		WHERE id = $1`

	var entry models.StorageEntry
	err := r.db.QueryRow(ctx, query, id).Scan(
		&entry.ID, &entry.Payload.Title, &entry.Payload.Description,
		&entry.Payload.UserID, &entry.Payload.Timestamp, &entry.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get storage entry: %w", err)
	}
	return &entry, nil
}
