package storage

import (
	"context"

	"github.com/iudanet/clinicsync/internal/models"
)

//go:generate moq -out outbox_mock.go . OutboxStorage

// OutboxStorage локальная очередь изменений, ожидающих синхронизации.
// На один ключ хранится не больше одной записи, повторная запись перезаписывает.
type OutboxStorage interface {
	// PutEntry stores entry under entry.Key
	PutEntry(ctx context.Context, entry *models.QueueEntry) error

	// GetEntry returns ErrEntryNotFound if the key is absent
	GetEntry(ctx context.Context, key string) (*models.QueueEntry, error)

	// DeleteEntry removes the entry. Missing keys are not an error.
	DeleteEntry(ctx context.Context, key string) error

	// ListEntries returns all entries ordered by timestamp, then key
	ListEntries(ctx context.Context) ([]*models.QueueEntry, error)

	// ReplaceEntries deletes and stores entries in one transaction.
	// Deletions are applied first.
	ReplaceEntries(ctx context.Context, remove []string, put []*models.QueueEntry) error

	// CountEntries returns the number of queued entries
	CountEntries(ctx context.Context) (int, error)
}
