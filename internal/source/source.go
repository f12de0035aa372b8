package source

import (
	"context"

	"ariproxy/pkg/health"
)

// Source pushes inbound frames into frames until ctx is done. A full
// channel blocks the reader, which is how sink backpressure reaches the
// connection.
type Source interface {
	Run(ctx context.Context, frames chan<- []byte) error
	CheckHealth(ctx context.Context) health.Report
}
