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

// PutEntry stores or overwrites the outbox entry under entry.Key
func (s *Storage) PutEntry(ctx context.Context, entry *models.QueueEntry) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}
	if entry == nil || entry.Key == "" {
		return fmt.Errorf("outbox entry key is empty")
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		return putEntry(tx, entry)
	})
	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}

// GetEntry retrieves an outbox entry by key
func (s *Storage) GetEntry(ctx context.Context, key string) (*models.QueueEntry, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var entry *models.QueueEntry

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketOutbox)
		if bucket == nil {
			return fmt.Errorf("outbox bucket not found")
		}

		data := bucket.Get([]byte(key))
		if data == nil {
			return storage.ErrEntryNotFound
		}

		entry = &models.QueueEntry{}
		if err := json.Unmarshal(data, entry); err != nil {
			return fmt.Errorf("failed to unmarshal entry: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return entry, nil
}

// DeleteEntry removes the entry, missing keys are ignored
func (s *Storage) DeleteEntry(ctx context.Context, key string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketOutbox)
		if bucket == nil {
			return fmt.Errorf("outbox bucket not found")
		}
		return bucket.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("delete transaction failed: %w", err)
	}

	return nil
}

// ListEntries returns all entries ordered by timestamp, then key
func (s *Storage) ListEntries(ctx context.Context) ([]*models.QueueEntry, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var entries []*models.QueueEntry

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketOutbox)
		if bucket == nil {
			return fmt.Errorf("outbox bucket not found")
		}

		return bucket.ForEach(func(k, v []byte) error {
			var entry models.QueueEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("failed to unmarshal entry %s: %w", k, err)
			}
			// ключ в бакете главнее поля внутри JSON
			entry.Key = string(k)
			entries = append(entries, &entry)
			return nil
		})
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Timestamp.Equal(entries[j].Timestamp) {
			return entries[i].Key < entries[j].Key
		}
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})

	return entries, nil
}

// ReplaceEntries removes and stores entries atomically
func (s *Storage) ReplaceEntries(ctx context.Context, remove []string, put []*models.QueueEntry) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketOutbox)
		if bucket == nil {
			return fmt.Errorf("outbox bucket not found")
		}
		for _, key := range remove {
			if err := bucket.Delete([]byte(key)); err != nil {
				return fmt.Errorf("failed to delete entry %s: %w", key, err)
			}
		}
		for _, entry := range put {
			if err := putEntry(tx, entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace transaction failed: %w", err)
	}

	return nil
}

// CountEntries returns the number of queued entries
func (s *Storage) CountEntries(ctx context.Context) (int, error) {
	if s.db == nil {
		return 0, storage.ErrStorageClosed
	}

	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketOutbox)
		if bucket == nil {
			return fmt.Errorf("outbox bucket not found")
		}
		n = bucket.Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, err
	}

	return n, nil
}

func putEntry(tx *bbolt.Tx, entry *models.QueueEntry) error {
	bucket := tx.Bucket(bucketOutbox)
	if bucket == nil {
		return fmt.Errorf("outbox bucket not found")
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	if err := bucket.Put([]byte(entry.Key), data); err != nil {
		return fmt.Errorf("failed to save entry: %w", err)
	}

	return nil
}
