// Package store defines the primitives of a simple key/value storage.
package store

// Readable is the interface for a readable store.
type Readable interface {
	// Get returns the value of the key, or nil if the key does not exist.
	Get(key []byte) ([]byte, error)

	// Scan calls the function for each key that starts with the prefix, in
	// ascending order of the keys. It stops at the first error.
	Scan(prefix []byte, fn func(key, value []byte) error) error
}

// Writable is the interface for a writable store.
type Writable interface {
	Set(key []byte, value []byte) error

	Delete(key []byte) error
}

// Snapshot is a state of the store that can be read and write independently. A
// write is applied only to the snapshot reference.
type Snapshot interface {
	Readable
	Writable
}

// Store is a storage that applies a set of writes atomically. An update whose
// callback returns an error, or panics, leaves the store untouched.
type Store interface {
	// View executes the read-only callback on a consistent state of the store.
	View(fn func(Readable) error) error

	// Update executes the callback on a snapshot of the store and commits the
	// writes only if it returns successfully.
	Update(fn func(Snapshot) error) error
}
