package kv

import (
	"go.dedis.ch/courier/core/store"
	"golang.org/x/xerrors"
)

// Store exposes a single bucket of a database as an atomic store. Every update
// runs in one database transaction.
//
// - implements store.Store
type Store struct {
	db     DB
	bucket []byte
}

// NewStore returns a store that reads and writes the given bucket.
func NewStore(db DB, bucket []byte) *Store {
	return &Store{
		db:     db,
		bucket: bucket,
	}
}

// View implements store.Store. A bucket that has never been written is seen as
// empty.
func (s *Store) View(fn func(store.Readable) error) error {
	opened := false

	err := s.db.View(s.bucket, func(b Bucket) error {
		opened = true
		return fn(bucketSnapshot{bucket: b})
	})
	if !opened && xerrors.Is(err, NoBucketError{}) {
		return fn(bucketSnapshot{})
	}

	return err
}

// Update implements store.Store. The transaction is rolled back when the
// callback fails.
func (s *Store) Update(fn func(store.Snapshot) error) error {
	return s.db.Update(s.bucket, func(b Bucket) error {
		return fn(bucketSnapshot{bucket: b})
	})
}

// bucketSnapshot is the adapter of a bucket to a snapshot. A nil bucket reads
// as empty and refuses writes.
//
// - implements store.Snapshot
type bucketSnapshot struct {
	bucket Bucket
}

// Get implements store.Readable. The value is copied so that it stays valid
// after the transaction.
func (s bucketSnapshot) Get(key []byte) ([]byte, error) {
	if s.bucket == nil {
		return nil, nil
	}

	return copyBytes(s.bucket.Get(key)), nil
}

// Scan implements store.Readable. The keys and values are copied.
func (s bucketSnapshot) Scan(prefix []byte, fn func(key, value []byte) error) error {
	if s.bucket == nil {
		return nil
	}

	return s.bucket.Scan(prefix, func(k, v []byte) error {
		return fn(copyBytes(k), copyBytes(v))
	})
}

// Set implements store.Writable.
func (s bucketSnapshot) Set(key, value []byte) error {
	if s.bucket == nil {
		return xerrors.New("read-only snapshot")
	}

	err := s.bucket.Set(key, value)
	if err != nil {
		return xerrors.Errorf("failed to set key '%x': %v", key, err)
	}

	return nil
}

// Delete implements store.Writable.
func (s bucketSnapshot) Delete(key []byte) error {
	if s.bucket == nil {
		return xerrors.New("read-only snapshot")
	}

	err := s.bucket.Delete(key)
	if err != nil {
		return xerrors.Errorf("failed to delete key '%x': %v", key, err)
	}

	return nil
}

func copyBytes(value []byte) []byte {
	if value == nil {
		return nil
	}

	res := make([]byte, len(value))
	copy(res, value)

	return res
}
