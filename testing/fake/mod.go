// Package fake provides test doubles shared by the packages of the module.
package fake

import (
	"bytes"
	"sort"

	"go.dedis.ch/courier/core/store"
	"golang.org/x/xerrors"
)

var fakeErr = xerrors.New("fake error")

// GetError returns the fake error.
func GetError() error {
	return fakeErr
}

// Err returns the expected message of a wrapped fake error.
func Err(msg string) string {
	return msg + ": " + fakeErr.Error()
}

// Store is a store.Store that keeps its data in a map without staging. An
// error can be set to make every call fail.
//
// - implements store.Store
type Store struct {
	Snapshot *InMemorySnapshot
	err      error
}

// NewStore returns a new empty store.
func NewStore() *Store {
	return &Store{Snapshot: NewSnapshot()}
}

// NewBadStore returns a store that returns an error for each call.
func NewBadStore() *Store {
	return &Store{Snapshot: NewSnapshot(), err: fakeErr}
}

// View implements store.Store.
func (s *Store) View(fn func(store.Readable) error) error {
	if s.err != nil {
		return s.err
	}

	return fn(s.Snapshot)
}

// Update implements store.Store.
func (s *Store) Update(fn func(store.Snapshot) error) error {
	if s.err != nil {
		return s.err
	}

	return fn(s.Snapshot)
}

// InMemorySnapshot is a snapshot backed by a map. A bad snapshot fails on
// every call.
//
// - implements store.Snapshot
type InMemorySnapshot struct {
	values    map[string][]byte
	errGet    error
	errSet    error
	errDelete error
}

// NewSnapshot returns a new empty snapshot.
func NewSnapshot() *InMemorySnapshot {
	return &InMemorySnapshot{
		values: make(map[string][]byte),
	}
}

// NewBadSnapshot returns a snapshot that returns an error for each call.
func NewBadSnapshot() *InMemorySnapshot {
	snap := NewSnapshot()
	snap.errGet = fakeErr
	snap.errSet = fakeErr
	snap.errDelete = fakeErr

	return snap
}

// NewBadWriteSnapshot returns a snapshot that reads correctly but fails on
// writes.
func NewBadWriteSnapshot() *InMemorySnapshot {
	snap := NewSnapshot()
	snap.errSet = fakeErr
	snap.errDelete = fakeErr

	return snap
}

// Get implements store.Readable.
func (snap *InMemorySnapshot) Get(key []byte) ([]byte, error) {
	return snap.values[string(key)], snap.errGet
}

// Scan implements store.Readable.
func (snap *InMemorySnapshot) Scan(prefix []byte, fn func(key, value []byte) error) error {
	if snap.errGet != nil {
		return snap.errGet
	}

	keys := make([]string, 0, len(snap.values))
	for key := range snap.values {
		if bytes.HasPrefix([]byte(key), prefix) {
			keys = append(keys, key)
		}
	}

	sort.Strings(keys)

	for _, key := range keys {
		err := fn([]byte(key), snap.values[key])
		if err != nil {
			return err
		}
	}

	return nil
}

// Set implements store.Writable.
func (snap *InMemorySnapshot) Set(key, value []byte) error {
	if snap.errSet != nil {
		return snap.errSet
	}

	snap.values[string(key)] = value

	return nil
}

// Delete implements store.Writable.
func (snap *InMemorySnapshot) Delete(key []byte) error {
	if snap.errDelete != nil {
		return snap.errDelete
	}

	delete(snap.values, string(key))

	return nil
}
