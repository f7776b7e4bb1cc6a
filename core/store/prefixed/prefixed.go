// Package prefixed implements a snapshot that namespaces every key with a
// prefix so that several record kinds can share one store.
package prefixed

import (
	"encoding/binary"

	"go.dedis.ch/courier/core/store"
)

type readable struct {
	store.Readable
	prefix []byte
}

type writable struct {
	store.Writable
	prefix []byte
}

type snapshot struct {
	*writable
	*readable
}

// NewSnapshot creates a new prefixed Snapshot.
func NewSnapshot(prefix string, snap store.Snapshot) store.Snapshot {
	p := []byte(prefix)
	return &snapshot{
		&writable{snap, p},
		&readable{snap, p},
	}
}

// Get implements store.Readable.
func (s *readable) Get(key []byte) ([]byte, error) {
	return s.Readable.Get(NewPrefixedKey(s.prefix, key))
}

// Scan implements store.Readable. The keys passed to the function are relative
// to the namespace.
func (s *readable) Scan(prefix []byte, fn func(key, value []byte) error) error {
	start := NewPrefixedKey(s.prefix, prefix)
	offset := len(start) - len(prefix)

	return s.Readable.Scan(start, func(key, value []byte) error {
		return fn(key[offset:], value)
	})
}

// Set implements store.Writable.
func (s *writable) Set(key []byte, value []byte) error {
	return s.Writable.Set(NewPrefixedKey(s.prefix, key), value)
}

// Delete implements store.Writable.
func (s *writable) Delete(key []byte) error {
	return s.Writable.Delete(NewPrefixedKey(s.prefix, key))
}

// NewPrefixedKey returns the key in the namespace of the prefix. The length of
// the prefix is encoded first so that two prefixes can never collide.
func NewPrefixedKey(prefix, key []byte) []byte {
	res := make([]byte, 2, 2+len(prefix)+len(key))
	binary.LittleEndian.PutUint16(res, uint16(len(prefix)))

	res = append(res, prefix...)
	res = append(res, key...)

	return res
}
