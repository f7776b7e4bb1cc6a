// Package serde defines the primitives to serialize and deserialize (serde)
// the records of the ledger.
//
// A message is serialized by looking up the format engine registered for the
// format of the context. This allows a record type to be independent of the
// encoding that is actually used.
package serde

// Format is the identifier of an encoding format.
type Format string

const (
	// FormatJSON is the identifier of the JSON format.
	FormatJSON Format = "JSON"
)

// ContextEngine marshals the records for one format.
type ContextEngine interface {
	GetFormat() Format

	Marshal(message interface{}) ([]byte, error)

	Unmarshal(data []byte, message interface{}) error
}

// Context is passed to every serialization of a record. The format engines
// use it to marshal their intermediate structures, and the messages use its
// format to find the engine.
type Context struct {
	ContextEngine
}

// NewContext returns a context backed by the engine.
func NewContext(engine ContextEngine) Context {
	return Context{ContextEngine: engine}
}

// Message is the interface a data model should implement to be serialized.
type Message interface {
	// Serialize returns the data of the message encoded in the format of the
	// context.
	Serialize(ctx Context) ([]byte, error)
}

// Factory is the interface to implement to instantiate a message from its
// encoded data.
type Factory interface {
	Deserialize(ctx Context, data []byte) (Message, error)
}

// FormatEngine is the interface to implement to encode and decode the
// messages of a package for a given format.
type FormatEngine interface {
	// Encode returns the data of the message.
	Encode(ctx Context, message Message) ([]byte, error)

	// Decode returns the message of the data.
	Decode(ctx Context, data []byte) (Message, error)
}
