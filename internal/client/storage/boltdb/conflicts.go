package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"go.etcd.io/bbolt"

	"github.com/iudanet/clinicsync/internal/client/storage"
	"github.com/iudanet/clinicsync/internal/models"
)

// SaveConflict stores the conflict under conflict.Key
func (s *Storage) SaveConflict(ctx context.Context, conflict *models.Conflict) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	data, err := json.Marshal(conflict)
	if err != nil {
		return fmt.Errorf("failed to marshal conflict: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketConflicts)
		if bucket == nil {
			return fmt.Errorf("conflicts bucket not found")
		}
		if err := bucket.Put([]byte(conflict.Key), data); err != nil {
			return fmt.Errorf("failed to save conflict: %w", err)
		}
		return nil
	})
}

// GetConflict retrieves a pending conflict by outbox key
func (s *Storage) GetConflict(ctx context.Context, key string) (*models.Conflict, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var conflict *models.Conflict

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketConflicts)
		if bucket == nil {
			return fmt.Errorf("conflicts bucket not found")
		}

		data := bucket.Get([]byte(key))
		if data == nil {
			return storage.ErrConflictNotFound
		}

		conflict = &models.Conflict{}
		if err := json.Unmarshal(data, conflict); err != nil {
			return fmt.Errorf("failed to unmarshal conflict: %w", err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return conflict, nil
}

// ListConflicts returns pending conflicts ordered by detection time
func (s *Storage) ListConflicts(ctx context.Context) ([]*models.Conflict, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var conflicts []*models.Conflict

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketConflicts)
		if bucket == nil {
			return fmt.Errorf("conflicts bucket not found")
		}

		return bucket.ForEach(func(k, v []byte) error {
			var c models.Conflict
			if err := json.Unmarshal(v, &c); err != nil {
				return fmt.Errorf("failed to unmarshal conflict %s: %w", k, err)
			}
			conflicts = append(conflicts, &c)
			return nil
		})
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list conflicts: %w", err)
	}

	sort.SliceStable(conflicts, func(i, j int) bool {
		return conflicts[i].DetectedAt.Before(conflicts[j].DetectedAt)
	})

	return conflicts, nil
}

// HasConflicts reports whether any conflict is pending
func (s *Storage) HasConflicts(ctx context.Context) (bool, error) {
	if s.db == nil {
		return false, storage.ErrStorageClosed
	}

	var has bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketConflicts)
		if bucket == nil {
			return fmt.Errorf("conflicts bucket not found")
		}
		k, _ := bucket.Cursor().First()
		has = k != nil
		return nil
	})
	if err != nil {
		return false, err
	}

	return has, nil
}

// CloseConflict removes the conflict and its outbox entry
func (s *Storage) CloseConflict(ctx context.Context, key string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		conflicts := tx.Bucket(bucketConflicts)
		outbox := tx.Bucket(bucketOutbox)
		if conflicts == nil || outbox == nil {
			return fmt.Errorf("conflicts or outbox bucket not found")
		}

		if conflicts.Get([]byte(key)) == nil {
			return storage.ErrConflictNotFound
		}
		if err := conflicts.Delete([]byte(key)); err != nil {
			return fmt.Errorf("failed to delete conflict: %w", err)
		}
		if err := outbox.Delete([]byte(key)); err != nil {
			return fmt.Errorf("failed to delete entry: %w", err)
		}
		return nil
	})
}
