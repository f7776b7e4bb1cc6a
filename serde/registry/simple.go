package registry

import (
	"fmt"
	"sync"

	"go.dedis.ch/courier/serde"
)

// UnknownFormatError is returned by the engine of a format that has never been
// registered.
type UnknownFormatError struct {
	Format serde.Format
}

// Error implements error.
func (err UnknownFormatError) Error() string {
	return fmt.Sprintf("format '%s' is not implemented", err.Format)
}

// Is implements error. It matches any unknown format.
func (err UnknownFormatError) Is(other error) bool {
	_, ok := other.(UnknownFormatError)
	return ok
}

// SimpleRegistry maps the formats to their engine. The engines are registered
// at init time and looked up by concurrent requests afterwards.
//
// - implements registry.Registry
type SimpleRegistry struct {
	sync.RWMutex

	engines map[serde.Format]serde.FormatEngine
}

// NewSimpleRegistry returns a new empty registry.
func NewSimpleRegistry() *SimpleRegistry {
	return &SimpleRegistry{
		engines: make(map[serde.Format]serde.FormatEngine),
	}
}

// Register implements registry.Registry. A second registration of the same
// format replaces the engine.
func (r *SimpleRegistry) Register(name serde.Format, f serde.FormatEngine) {
	r.Lock()
	r.engines[name] = f
	r.Unlock()
}

// Get implements registry.Registry. An unknown format gets an engine that fails
// with an UnknownFormatError, so that the callers do not need to check it.
func (r *SimpleRegistry) Get(name serde.Format) serde.FormatEngine {
	r.RLock()
	engine, found := r.engines[name]
	r.RUnlock()

	if !found {
		return unknownFormat{name: name}
	}

	return engine
}

// unknownFormat is the engine of an unregistered format.
//
// - implements serde.FormatEngine
type unknownFormat struct {
	name serde.Format
}

func (f unknownFormat) Encode(serde.Context, serde.Message) ([]byte, error) {
	return nil, UnknownFormatError{Format: f.name}
}

func (f unknownFormat) Decode(serde.Context, []byte) (serde.Message, error) {
	return nil, UnknownFormatError{Format: f.name}
}
