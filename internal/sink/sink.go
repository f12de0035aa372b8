package sink

import (
	"context"

	"ariproxy/pkg/health"
	"ariproxy/pkg/models"
)

// Sink accepts output records. Write returns once the records are durable
// or have been rejected; records of one call are written in order.
type Sink interface {
	Write(ctx context.Context, records ...models.OutputRecord) error
	CheckHealth(ctx context.Context) health.Report
	Close() error
}
