// Package registry defines the registry of the format engines of a package.
package registry

import (
	"go.dedis.ch/courier/serde"
)

// Registry is an interface to register and get format engines for a specific
// format.
type Registry interface {
	Register(serde.Format, serde.FormatEngine)

	// Get returns the engine associated with the format. It never returns nil.
	Get(serde.Format) serde.FormatEngine
}
