// Package mem implements an in-memory store where updates are staged in a
// layer above the committed state and merged only when they succeed.
package mem

import (
	"sort"
	"strings"
	"sync"

	"go.dedis.ch/courier/core/store"
)

// item is a value of a layer. A deleted item hides the value of the layers
// below.
type item struct {
	value   []byte
	deleted bool
}

// Store is an in-memory implementation of store.Store.
//
// - implements store.Store
type Store struct {
	sync.RWMutex

	data map[string][]byte
}

// NewStore returns a new empty store.
func NewStore() *Store {
	return &Store{
		data: make(map[string][]byte),
	}
}

// View implements store.Store. It executes the callback on the committed
// state.
func (s *Store) View(fn func(store.Readable) error) error {
	s.RLock()
	defer s.RUnlock()

	return fn(committed{data: s.data})
}

// Update implements store.Store. The callback writes to a staging layer that
// is merged into the committed state only when the callback succeeds.
func (s *Store) Update(fn func(store.Snapshot) error) error {
	s.Lock()
	defer s.Unlock()

	layer := newLayer(s.data)

	err := fn(layer)
	if err != nil {
		return err
	}

	for key, it := range layer.updates {
		if it.deleted {
			delete(s.data, key)
		} else {
			s.data[key] = it.value
		}
	}

	return nil
}

// Len returns the number of committed keys.
func (s *Store) Len() int {
	s.RLock()
	defer s.RUnlock()

	return len(s.data)
}

type committed struct {
	data map[string][]byte
}

func (c committed) Get(key []byte) ([]byte, error) {
	return copyValue(c.data[string(key)]), nil
}

func (c committed) Scan(prefix []byte, fn func(key, value []byte) error) error {
	return scan(c.data, nil, prefix, fn)
}

// layer is a set of staged updates on top of a parent state.
//
// - implements store.Snapshot
type layer struct {
	parent  map[string][]byte
	updates map[string]item
}

func newLayer(parent map[string][]byte) *layer {
	return &layer{
		parent:  parent,
		updates: make(map[string]item),
	}
}

// Get implements store.Readable. It looks up the staged updates first and
// falls back to the parent.
func (l *layer) Get(key []byte) ([]byte, error) {
	it, found := l.updates[string(key)]
	if found {
		if it.deleted {
			return nil, nil
		}

		return copyValue(it.value), nil
	}

	return copyValue(l.parent[string(key)]), nil
}

// Scan implements store.Readable. The staged updates hide the values of the
// parent.
func (l *layer) Scan(prefix []byte, fn func(key, value []byte) error) error {
	return scan(l.parent, l.updates, prefix, fn)
}

// Set implements store.Writable.
func (l *layer) Set(key, value []byte) error {
	l.updates[string(key)] = item{value: copyValue(value)}

	return nil
}

// Delete implements store.Writable.
func (l *layer) Delete(key []byte) error {
	l.updates[string(key)] = item{deleted: true}

	return nil
}

// scan merges the updates on top of the parent and calls the function for the
// keys matching the prefix in ascending order.
func scan(parent map[string][]byte, updates map[string]item, prefix []byte,
	fn func(key, value []byte) error) error {

	p := string(prefix)
	values := make(map[string][]byte)

	for key, value := range parent {
		if strings.HasPrefix(key, p) {
			values[key] = value
		}
	}

	for key, it := range updates {
		if !strings.HasPrefix(key, p) {
			continue
		}

		if it.deleted {
			delete(values, key)
		} else {
			values[key] = it.value
		}
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		err := fn([]byte(key), copyValue(values[key]))
		if err != nil {
			return err
		}
	}

	return nil
}

func copyValue(value []byte) []byte {
	if value == nil {
		return nil
	}

	res := make([]byte, len(value))
	copy(res, value)

	return res
}
