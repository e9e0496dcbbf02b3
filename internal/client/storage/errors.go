package storage

import "errors"

// Common client storage errors
var (
	// ErrAuthNotFound indicates that no authentication data exists
	ErrAuthNotFound = errors.New("authentication data not found")

	// ErrEntryNotFound indicates that outbox entry was not found
	ErrEntryNotFound = errors.New("outbox entry not found")

	// ErrConflictNotFound indicates that no pending conflict exists for the key
	ErrConflictNotFound = errors.New("conflict not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")

	// ErrDatabaseLocked база открыта другим процессом клиента, например watch
	ErrDatabaseLocked = errors.New("local database is in use by another clinicsync process")
)
