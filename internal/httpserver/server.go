// Package httpserver wraps net/http serving with timeouts suited to an API
// that accepts large media uploads.
package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Server owns the listening http.Server.
type Server struct {
	inner *http.Server
}

// New constructs a server on the given port. The header read is bounded, but
// no whole-request read timeout is set: a video publish can legitimately
// stream a multipart body for minutes, and the handlers bound body size
// themselves.
func New(port int, handler http.Handler) *Server {
	return &Server{
		inner: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       time.Minute,
			MaxHeaderBytes:    1 << 20,
		},
	}
}

// Start begins serving and blocks until the listener closes.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown stops accepting connections and drains in-flight requests until
// the context expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
