package boltdb

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/clinicsync/internal/client/storage"
)

const (
	keyLastSyncTime = "last_sync_time"
	keyAutoSend     = "auto_send"
	keyLocation     = "location"
)

// SaveLastSyncTime saves the time of the last completed sync pass
func (s *Storage) SaveLastSyncTime(ctx context.Context, t time.Time) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}

		// unix nanoseconds, big endian
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(t.UnixNano()))

		if err := bucket.Put([]byte(keyLastSyncTime), buf); err != nil {
			return fmt.Errorf("failed to save last sync time: %w", err)
		}

		return nil
	})
}

// GetLastSyncTime retrieves the time of the last completed sync pass
// Returns the zero time if no pass has completed yet
func (s *Storage) GetLastSyncTime(ctx context.Context) (time.Time, error) {
	if s.db == nil {
		return time.Time{}, storage.ErrStorageClosed
	}

	var last time.Time

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}

		buf := bucket.Get([]byte(keyLastSyncTime))
		if len(buf) != 8 {
			return nil
		}

		last = time.Unix(0, int64(binary.BigEndian.Uint64(buf))).UTC()
		return nil
	})

	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get last sync time: %w", err)
	}

	return last, nil
}

// SetAutoSend persists the auto-send preference
func (s *Storage) SetAutoSend(ctx context.Context, enabled bool) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	value := []byte{0}
	if enabled {
		value = []byte{1}
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}
		if err := bucket.Put([]byte(keyAutoSend), value); err != nil {
			return fmt.Errorf("failed to save auto send: %w", err)
		}
		return nil
	})
}

// GetAutoSend returns the auto-send preference, false when unset
func (s *Storage) GetAutoSend(ctx context.Context) (bool, error) {
	if s.db == nil {
		return false, storage.ErrStorageClosed
	}

	var enabled bool

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}
		v := bucket.Get([]byte(keyAutoSend))
		enabled = len(v) == 1 && v[0] == 1
		return nil
	})

	if err != nil {
		return false, fmt.Errorf("failed to get auto send: %w", err)
	}

	return enabled, nil
}

// SetLocation persists the hospital location sent with consultation edits
func (s *Storage) SetLocation(ctx context.Context, location string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}
		if location == "" {
			return bucket.Delete([]byte(keyLocation))
		}
		if err := bucket.Put([]byte(keyLocation), []byte(location)); err != nil {
			return fmt.Errorf("failed to save location: %w", err)
		}
		return nil
	})
}

// GetLocation returns the saved location or an empty string
func (s *Storage) GetLocation(ctx context.Context) (string, error) {
	if s.db == nil {
		return "", storage.ErrStorageClosed
	}

	var location string

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}
		// значение живет только внутри транзакции
		location = string(bucket.Get([]byte(keyLocation)))
		return nil
	})

	if err != nil {
		return "", fmt.Errorf("failed to get location: %w", err)
	}

	return location, nil
}
