// Package http implements the proxy with the standard HTTP server. Every
// request is tagged with an identifier that is logged and returned in the
// X-Request-Id header.
package http

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"go.dedis.ch/courier"
)

// RequestIDHeader is the header that carries the identifier of a request.
const RequestIDHeader = "X-Request-Id"

const shutdownTimeout = 10 * time.Second

type key int

const requestIDKey key = 0

// HTTP is the HTTP server of a node.
//
// - implements proxy.Proxy
type HTTP struct {
	sync.Mutex

	mux        *http.ServeMux
	server     *http.Server
	logger     zerolog.Logger
	listenAddr string
	ln         net.Listener
}

// NewHTTP creates a new server that will listen on the address. An empty
// address, or one with the port 0, picks a free port.
func NewHTTP(listenAddr string) *HTTP {
	logger := courier.Logger.With().Str("role", "http proxy").Logger()

	mux := http.NewServeMux()

	return &HTTP{
		mux: mux,
		server: &http.Server{
			Handler:           tracing(newRequestID)(logging(logger)(mux)),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger:     logger,
		listenAddr: listenAddr,
	}
}

// Listen implements proxy.Proxy. It serves the requests until the server is
// stopped.
func (h *HTTP) Listen() {
	ln, err := net.Listen("tcp", h.listenAddr)
	if err != nil {
		h.logger.Error().Err(err).Msgf("failed to listen on '%s'", h.listenAddr)
		return
	}

	h.Lock()
	h.ln = ln
	h.Unlock()

	h.logger.Info().Msgf("server is ready to handle requests at http://%s", ln.Addr())

	err = h.server.Serve(ln)
	if err != nil && err != http.ErrServerClosed {
		h.logger.Error().Err(err).Msg("server stopped unexpectedly")
	}

	h.logger.Info().Msg("server stopped")
}

// Stop implements proxy.Proxy. It waits for the requests in progress to
// finish, up to a timeout.
func (h *HTTP) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	h.server.SetKeepAlivesEnabled(false)

	err := h.server.Shutdown(ctx)
	if err != nil {
		h.logger.Warn().Err(err).Msg("failed to shutdown gracefully")
	}

	h.Lock()
	h.ln = nil
	h.Unlock()
}

// RegisterHandler implements proxy.Proxy.
func (h *HTTP) RegisterHandler(path string, handler func(http.ResponseWriter, *http.Request)) {
	h.mux.HandleFunc(path, handler)
}

// GetAddr implements proxy.Proxy.
func (h *HTTP) GetAddr() net.Addr {
	h.Lock()
	defer h.Unlock()

	if h.ln == nil {
		return nil
	}

	return h.ln.Addr()
}

// RequestID returns the identifier of the request, or an empty string if the
// request did not go through the server.
func RequestID(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey).(string)
	return id
}

func newRequestID() string {
	return xid.New().String()
}

// logging logs every request once it has been served.
func logging(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			defer func() {
				logger.Info().
					Str("requestID", RequestID(r)).
					Str("method", r.Method).
					Str("url", r.URL.Path).
					Str("remoteAddr", r.RemoteAddr).
					Str("agent", r.UserAgent()).
					Dur("duration", time.Since(start)).
					Msg("request served")
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// tracing reuses the identifier provided by the client, or creates a new one.
func tracing(nextRequestID func() string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = nextRequestID()
			}

			ctx := context.WithValue(r.Context(), requestIDKey, requestID)
			w.Header().Set(RequestIDHeader, requestID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
