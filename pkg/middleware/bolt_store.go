package middleware

import (
	"context"
	"encoding/json"
	"time"

	bolt "github.com/boltdb/bolt"
)

const idempotencyBucket = "request_ids"

// BoltRequestIDStore is a BoltDB-backed RequestIDStore. Unlike the in-memory
// store it survives restarts, so a client retrying a write after a service
// bounce still gets the original response instead of a double-applied
// mutation.
type BoltRequestIDStore struct {
	db *bolt.DB
}

type boltEntry struct {
	Response  []byte    `json:"response"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewBoltRequestIDStore opens (or creates) the store at path.
func NewBoltRequestIDStore(path string) (*BoltRequestIDStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(idempotencyBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltRequestIDStore{db: db}, nil
}

// Close releases the database file lock.
func (s *BoltRequestIDStore) Close() error {
	return s.db.Close()
}

func (s *BoltRequestIDStore) Store(ctx context.Context, requestID string, response []byte, ttl time.Duration) error {
	entry := boltEntry{
		Response:  response,
		ExpiresAt: time.Now().Add(ttl),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(idempotencyBucket)).Put([]byte(requestID), data)
	})
}

func (s *BoltRequestIDStore) Get(ctx context.Context, requestID string) ([]byte, error) {
	var entry boltEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(idempotencyBucket)).Get([]byte(requestID))
		if data == nil {
			return ErrRequestIDNotFound
		}
		return json.Unmarshal(data, &entry)
	})
	if err != nil {
		return nil, err
	}

	if time.Now().After(entry.ExpiresAt) {
		// Expired entries are removed lazily on read.
		_ = s.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket([]byte(idempotencyBucket)).Delete([]byte(requestID))
		})
		return nil, ErrRequestIDNotFound
	}

	return entry.Response, nil
}
