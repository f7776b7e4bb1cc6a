package kv

import (
	"bytes"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
	"golang.org/x/xerrors"
)

// openTimeout bounds the wait on the file lock held by another process.
const openTimeout = 2 * time.Second

// NoBucketError is returned when a read-only transaction is opened on a bucket
// that has never been written.
type NoBucketError struct {
	Name []byte
}

// Error implements error.
func (err NoBucketError) Error() string {
	return fmt.Sprintf("bucket '%x' not found", err.Name)
}

// Is implements error. It returns true for any bucket.
func (err NoBucketError) Is(other error) bool {
	_, ok := other.(NoBucketError)
	return ok
}

// boltDB is the database of the ledger on top of a bbolt file.
//
// - implements kv.DB
type boltDB struct {
	bolt *bbolt.DB
}

// New opens the database file at the path, and creates it if necessary.
func New(path string) (DB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, xerrors.Errorf("failed to open db: %v", err)
	}

	return boltDB{bolt: db}, nil
}

// View implements kv.DB. The callback runs in a read-only transaction, and a
// missing bucket is reported with a NoBucketError.
func (db boltDB) View(name []byte, fn func(Bucket) error) error {
	return db.bolt.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(name)
		if bucket == nil {
			return NoBucketError{Name: name}
		}

		return fn(boltBucket{bucket: bucket})
	})
}

// Update implements kv.DB. The bucket is created by the first update. bbolt
// rolls the transaction back when the callback returns an error or panics.
func (db boltDB) Update(name []byte, fn func(Bucket) error) error {
	return db.bolt.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(name)
		if err != nil {
			return xerrors.Errorf("failed to create bucket: %v", err)
		}

		return fn(boltBucket{bucket: bucket})
	})
}

// Close implements kv.DB.
func (db boltDB) Close() error {
	return db.bolt.Close()
}

// boltBucket gives access to a bucket during a transaction.
//
// - implements kv.Bucket
type boltBucket struct {
	bucket *bbolt.Bucket
}

// Get implements kv.Bucket.
func (b boltBucket) Get(key []byte) []byte {
	return b.bucket.Get(key)
}

// Set implements kv.Bucket.
func (b boltBucket) Set(key, value []byte) error {
	return b.bucket.Put(key, value)
}

// Delete implements kv.Bucket.
func (b boltBucket) Delete(key []byte) error {
	return b.bucket.Delete(key)
}

// Scan implements kv.Bucket. The cursor seeks the first key of the prefix and
// walks the keys in byte order until the prefix no longer matches.
func (b boltBucket) Scan(prefix []byte, fn func(k, v []byte) error) error {
	cursor := b.bucket.Cursor()

	for k, v := cursor.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = cursor.Next() {
		err := fn(k, v)
		if err != nil {
			return xerrors.Errorf("callback failed: %v", err)
		}
	}

	return nil
}
