package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"ariproxy/pkg/metrics"
)

// Throttle paces a stream of work items. A zero-value or disabled Throttle
// never waits.
type Throttle struct {
	limiter *rate.Limiter
}

type Config struct {
	RPS   float64
	Burst int
}

// NewThrottle returns nil when cfg.RPS is not positive; a nil *Throttle is
// valid and lets everything through.
func NewThrottle(cfg Config) *Throttle {
	if cfg.RPS <= 0 {
		return nil
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Throttle{limiter: rate.NewLimiter(rate.Limit(cfg.RPS), burst)}
}

// Wait blocks until the next item may proceed or ctx is done.
func (t *Throttle) Wait(ctx context.Context) error {
	if t == nil {
		return nil
	}
	start := time.Now()
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	metrics.ObserveThrottleWait(time.Since(start))
	return nil
}

func (t *Throttle) Enabled() bool {
	return t != nil
}
