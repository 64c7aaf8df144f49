// Package bbolt provides a BoltDB-backed gift history store.
package bbolt

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"
)

const giftBucket = "gift"

// recentRecipientsKey matches the storage namespace the web client used, so
// a migrated history stays readable.
const recentRecipientsKey = "gratitudeGift_recentRecipients"

// Store provides a BoltDB-backed history store.
type Store struct {
	db *bbolt.DB
}

// Open opens a BoltDB-backed store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	store := &Store{db: db}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecentRecipients returns the persisted recipient pubkeys, most recent
// first. A missing record reads as an empty list.
func (s *Store) RecentRecipients(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	var pubkeys []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(giftBucket))
		if bucket == nil {
			return fmt.Errorf("gift bucket is missing")
		}
		payload := bucket.Get([]byte(recentRecipientsKey))
		if payload == nil {
			return nil
		}
		if err := json.Unmarshal(payload, &pubkeys); err != nil {
			return fmt.Errorf("unmarshal recent recipients: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pubkeys, nil
}

// PutRecentRecipients replaces the persisted recipient list.
func (s *Store) PutRecentRecipients(ctx context.Context, pubkeys []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	if pubkeys == nil {
		pubkeys = []string{}
	}

	payload, err := json.Marshal(pubkeys)
	if err != nil {
		return fmt.Errorf("marshal recent recipients: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(giftBucket))
		if bucket == nil {
			return fmt.Errorf("gift bucket is missing")
		}
		return bucket.Put([]byte(recentRecipientsKey), payload)
	})
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(giftBucket))
		if err != nil {
			return fmt.Errorf("create gift bucket: %w", err)
		}
		return nil
	})
}
