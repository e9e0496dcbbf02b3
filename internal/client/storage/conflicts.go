package storage

import (
	"context"

	"github.com/iudanet/clinicsync/internal/models"
)

//go:generate moq -out conflicts_mock.go . ConflictStorage

// ConflictStorage хранит обнаруженные и еще не разрешенные конфликты
type ConflictStorage interface {
	// SaveConflict stores conflict under conflict.Key
	SaveConflict(ctx context.Context, conflict *models.Conflict) error

	// GetConflict returns ErrConflictNotFound if the key is absent
	GetConflict(ctx context.Context, key string) (*models.Conflict, error)

	// ListConflicts returns pending conflicts ordered by detection time
	ListConflicts(ctx context.Context) ([]*models.Conflict, error)

	// HasConflicts reports whether any conflict is pending
	HasConflicts(ctx context.Context) (bool, error)

	// CloseConflict removes the conflict and its outbox entry in one transaction
	CloseConflict(ctx context.Context, key string) error
}
