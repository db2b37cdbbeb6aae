package advertise

import (
	"context"

	"github.com/dialproto/godial/internal/dial"
)

// AppProvider owns the actual application state behind the app-control
// surface. The advertising service only reads and writes through these three
// hooks and translates their results into HTTP status codes.
//
// Hooks are invoked synchronously on the request's goroutine with the
// request's context; a hook that blocks stalls exactly that one request.
// Implementations must be safe for concurrent use, requests do not share any
// other mutable state.
type AppProvider interface {
	// Get returns the current record for the named app, or nil when the
	// receiver does not host it. The returned record must not be mutated
	// by the caller.
	Get(ctx context.Context, name string) *dial.App

	// Launch starts the named app with the request payload, or relaunches
	// it when already running. It returns the correlation token for the
	// launched instance; an error maps to 503 for the controller.
	Launch(ctx context.Context, name string, payload []byte) (pid string, err error)

	// Stop halts the instance identified by pid. The returned boolean is
	// mirrored verbatim as 200 or 400.
	Stop(ctx context.Context, name, pid string) bool
}
