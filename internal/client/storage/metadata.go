package storage

import (
	"context"
	"time"
)

//go:generate moq -out metadata_mock.go . MetadataStorage

// MetadataStorage хранит настройки и служебные отметки клиента
type MetadataStorage interface {
	// SaveLastSyncTime saves the time of the last completed sync pass
	SaveLastSyncTime(ctx context.Context, t time.Time) error

	// GetLastSyncTime returns the zero time if no pass has completed yet
	GetLastSyncTime(ctx context.Context) (time.Time, error)

	// SetAutoSend persists the auto-send preference for completion messages
	SetAutoSend(ctx context.Context, enabled bool) error

	// GetAutoSend returns false if the preference was never set
	GetAutoSend(ctx context.Context) (bool, error)

	// SetLocation сохраняет больницу/место приема, пустая строка сбрасывает
	SetLocation(ctx context.Context, location string) error

	// GetLocation returns an empty string if no location was chosen
	GetLocation(ctx context.Context) (string, error)
}
