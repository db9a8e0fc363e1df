// Package delivery defines the entry points that expose the use cases to the outside world.
package delivery

import "context"

// Delivery is a long-running transport, started by the process entry point.
type Delivery interface {
	// Serve blocks until the transport stops.
	Serve(ctx context.Context) error
}
