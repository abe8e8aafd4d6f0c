// Package store persists fitted transformer states. States are opaque
// archive blobs keyed by model name, with a small metadata record alongside
// so stored models can be listed and inspected without deserializing them.
package store

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"go.etcd.io/bbolt"
)

var (
	bucketStates = []byte("states")
	bucketMeta   = []byte("meta")
)

// Meta describes a stored transformer state.
type Meta struct {
	Name        string    `json:"name"`
	OpType      string    `json:"op_type"`
	NumFeatures uint64    `json:"num_features"`
	Analyzer    string    `json:"analyzer"`
	CreatedAt   time.Time `json:"created_at"`
}

// BoltStore is a bbolt-backed model-state store.
type BoltStore struct {
	db *bbolt.DB
}

// Open opens (creating if needed) the store at path.
func Open(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketStates, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("store: create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

// Close releases the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// Put stores a serialized state and its metadata under meta.Name,
// replacing any previous entry.
func (s *BoltStore) Put(meta Meta, state []byte) error {
	if meta.Name == "" {
		return fmt.Errorf("store: state name required")
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now().UTC()
	}
	metaData, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("store: marshal meta for %s: %w", meta.Name, err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketStates).Put([]byte(meta.Name), state); err != nil {
			return err
		}
		return tx.Bucket(bucketMeta).Put([]byte(meta.Name), metaData)
	})
}

// Get returns the serialized state and metadata stored under name.
func (s *BoltStore) Get(name string) ([]byte, Meta, error) {
	var state []byte
	var meta Meta
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketStates).Get([]byte(name))
		if data == nil {
			return fmt.Errorf("store: state not found: %s", name)
		}
		state = make([]byte, len(data))
		copy(state, data)
		metaData := tx.Bucket(bucketMeta).Get([]byte(name))
		if metaData == nil {
			return fmt.Errorf("store: metadata missing for state %s", name)
		}
		return json.Unmarshal(metaData, &meta)
	})
	if err != nil {
		return nil, Meta{}, err
	}
	return state, meta, nil
}

// List returns metadata for every stored state in key order.
func (s *BoltStore) List() ([]Meta, error) {
	var metas []Meta
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketMeta).ForEach(func(_, v []byte) error {
			var m Meta
			if err := json.Unmarshal(v, &m); err != nil {
				return err
			}
			metas = append(metas, m)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return metas, nil
}

// Delete removes a stored state. Deleting an absent name is not an error.
func (s *BoltStore) Delete(name string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketStates).Delete([]byte(name)); err != nil {
			return err
		}
		return tx.Bucket(bucketMeta).Delete([]byte(name))
	})
}
