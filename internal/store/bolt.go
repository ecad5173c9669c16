// ABOUTME: BoltDB implementation of the KV interface using go.etcd.io/bbolt
// ABOUTME: Single bucket, one file, parent directories created automatically

package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// bucketName is the single bucket holding all coven-client keys.
var bucketName = []byte("coven")

// BoltKV implements KV on a bbolt database file.
type BoltKV struct {
	db *bolt.DB
}

// NewBoltKV opens (or creates) the database at path and ensures the bucket
// exists. Parent directories are created if needed.
func NewBoltKV(path string) (*BoltKV, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &BoltKV{db: db}, nil
}

// Get returns the value for key, or ErrKeyNotFound.
func (b *BoltKV) Get(key string) ([]byte, error) {
	var value []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketName).Get([]byte(key))
		if data == nil {
			return ErrKeyNotFound
		}
		// The slice is only valid inside the transaction.
		value = make([]byte, len(data))
		copy(value, data)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set writes the value under key.
func (b *BoltKV) Set(key string, value []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), value)
	})
}

// Remove deletes the key. Removing an absent key is not an error.
func (b *BoltKV) Remove(key string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Delete([]byte(key))
	})
}

// Close releases the database file.
func (b *BoltKV) Close() error {
	return b.db.Close()
}
