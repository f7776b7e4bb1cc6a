// Package proxy defines the HTTP front of a node, where the modules register
// their read-only endpoints.
package proxy

import (
	"net"
	"net/http"
)

// Proxy defines the primitives of the HTTP server of a node.
type Proxy interface {
	// Listen starts the server. The call blocks until the server stops.
	Listen()

	// Stop stops the server.
	Stop()

	// RegisterHandler registers a new handler on the path.
	RegisterHandler(path string, handler func(http.ResponseWriter, *http.Request))

	// GetAddr returns the address the server is listening on, or nil if it is
	// not listening.
	GetAddr() net.Addr
}
