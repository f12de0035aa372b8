package circuitbreaker

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"ariproxy/internal/config"
	"ariproxy/pkg/metrics"
)

const (
	defaultMaxRequests  = 3
	defaultInterval     = time.Minute
	defaultTimeout      = 30 * time.Second
	defaultMinRequests  = 5
	defaultFailureRatio = 0.5
)

type Settings struct {
	Name          string
	MaxRequests   uint32
	Interval      time.Duration
	Timeout       time.Duration
	ReadyToTrip   func(counts gobreaker.Counts) bool
	OnStateChange func(name string, from, to gobreaker.State)
}

// NewSettings fills the zero fields of cfg with defaults.
func NewSettings(name string, cfg config.CircuitBreakerConfig) Settings {
	s := Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
	}
	if s.MaxRequests == 0 {
		s.MaxRequests = defaultMaxRequests
	}
	if s.Interval <= 0 {
		s.Interval = defaultInterval
	}
	if s.Timeout <= 0 {
		s.Timeout = defaultTimeout
	}

	minRequests, ratio := cfg.MinRequests, cfg.FailureRatio
	if minRequests == 0 {
		minRequests = defaultMinRequests
	}
	if ratio <= 0 {
		ratio = defaultFailureRatio
	}
	s.ReadyToTrip = RatioTrip(minRequests, ratio)
	return s
}

// RatioTrip opens the breaker once minRequests were seen in the current
// interval and at least failureRatio of them failed.
func RatioTrip(minRequests uint32, failureRatio float64) func(gobreaker.Counts) bool {
	return func(counts gobreaker.Counts) bool {
		if counts.Requests < minRequests {
			return false
		}
		return float64(counts.TotalFailures)/float64(counts.Requests) >= failureRatio
	}
}

// Wrapper guards calls to one backend.
type Wrapper struct {
	cb *gobreaker.CircuitBreaker
}

func NewWrapper(s Settings) *Wrapper {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:         s.Name,
		MaxRequests:  s.MaxRequests,
		Interval:     s.Interval,
		Timeout:      s.Timeout,
		ReadyToTrip:  s.ReadyToTrip,
		IsSuccessful: countsAsSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			setStateGauge(name, to)
			if s.OnStateChange != nil {
				s.OnStateChange(name, from, to)
			}
		},
	})
	setStateGauge(s.Name, cb.State())

	return &Wrapper{cb: cb}
}

// countsAsSuccess keeps caller cancellations from tripping the breaker.
func countsAsSuccess(err error) bool {
	return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Do runs fn under the breaker. A context that is already done is returned
// without calling fn.
func Do[T any](ctx context.Context, w *Wrapper, fn func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	result, err := w.cb.Execute(func() (interface{}, error) {
		return fn()
	})
	w.observe(err)
	if err != nil {
		return zero, err
	}
	value, _ := result.(T)
	return value, nil
}

func (w *Wrapper) State() gobreaker.State {
	return w.cb.State()
}

func (w *Wrapper) Name() string {
	return w.cb.Name()
}

func (w *Wrapper) IsOpen() bool {
	return w.cb.State() == gobreaker.StateOpen
}

// Rejected reports whether err came from the breaker itself rather than
// the guarded call.
func Rejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func (w *Wrapper) observe(err error) {
	name := w.cb.Name()
	metrics.CircuitBreakerRequests.WithLabelValues(name, w.cb.State().String()).Inc()
	if !countsAsSuccess(err) && !Rejected(err) {
		metrics.CircuitBreakerFailures.WithLabelValues(name).Inc()
	}
}

func setStateGauge(name string, state gobreaker.State) {
	var value float64
	switch state {
	case gobreaker.StateHalfOpen:
		value = 1
	case gobreaker.StateOpen:
		value = 2
	}
	metrics.CircuitBreakerState.WithLabelValues(name).Set(value)
}
