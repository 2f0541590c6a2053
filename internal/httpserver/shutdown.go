package httpserver

import (
	"context"
	"time"
)

// ShutdownTimeout bounds graceful shutdown: long enough to drain in-flight
// requests, short enough that a deploy is not held up by a stalled upload.
const ShutdownTimeout = 15 * time.Second

// ShutdownContext derives the context used to drain the server on shutdown.
func ShutdownContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, ShutdownTimeout)
}
