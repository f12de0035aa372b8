package metering

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"ariproxy/internal/constants"
	"ariproxy/internal/logger"
	"ariproxy/pkg/metrics"
)

const (
	statusOK       = "ok"
	statusError    = "error"
	statusOrphaned = "orphaned"
)

// Recorder is where the service publishes what it measured.
type Recorder interface {
	AriEvent(messageType string)
	Counter(name string)
	PersistenceUpdate(duration time.Duration, status string)
	PersistenceTimersOpen(n int)
	CallDuration(duration time.Duration)
	CallsActive(n int)
	Dropped()
}

type prometheusRecorder struct{}

func (prometheusRecorder) AriEvent(messageType string) { metrics.IncAriEvent(messageType) }
func (prometheusRecorder) Counter(name string)         { metrics.IncNamedCounter(name) }
func (prometheusRecorder) PersistenceUpdate(d time.Duration, status string) {
	metrics.ObservePersistenceUpdate(d, status)
}
func (prometheusRecorder) PersistenceTimersOpen(n int)  { metrics.PersistenceTimersOpen.Set(float64(n)) }
func (prometheusRecorder) CallDuration(d time.Duration) { metrics.ObserveCallDuration(d) }
func (prometheusRecorder) CallsActive(n int)            { metrics.CallsActive.Set(float64(n)) }
func (prometheusRecorder) Dropped()                     { metrics.MetricsDroppedTotal.Inc() }

type Option func(*Service)

func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

func WithSweepInterval(d time.Duration) Option {
	return func(s *Service) {
		s.sweepInterval = d
	}
}

func WithOrphanAges(persistence, call time.Duration) Option {
	return func(s *Service) {
		s.persistenceOrphanAge = persistence
		s.callOrphanAge = call
	}
}

// Service owns all timer state. Only Run touches the maps.
type Service struct {
	inbox    chan Message
	log      logger.Logger
	recorder Recorder

	resolvers errgroup.Group

	persistenceTimers map[string]time.Time
	callTimers        map[string]time.Time
	// earlyStops holds call stops whose supplier resolved before the
	// matching start did.
	earlyStops map[string]time.Time

	sweepInterval        time.Duration
	persistenceOrphanAge time.Duration
	callOrphanAge        time.Duration
	now                  func() time.Time
}

func NewService(inboxSize, resolveConcurrency int, log logger.Logger, opts ...Option) *Service {
	if inboxSize <= 0 {
		inboxSize = constants.DefaultInboxSize
	}
	if resolveConcurrency <= 0 {
		resolveConcurrency = constants.DefaultTapConcurrency
	}

	s := &Service{
		inbox:                make(chan Message, inboxSize),
		log:                  log,
		recorder:             prometheusRecorder{},
		persistenceTimers:    make(map[string]time.Time),
		callTimers:           make(map[string]time.Time),
		earlyStops:           make(map[string]time.Time),
		sweepInterval:        constants.MetricsSweepInterval,
		persistenceOrphanAge: constants.PersistenceTimerOrphanAge,
		callOrphanAge:        constants.CallTimerOrphanAge,
		now:                  time.Now,
	}
	s.resolvers.SetLimit(resolveConcurrency)

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tell never blocks. A full inbox drops msg.
func (s *Service) Tell(msg Message) {
	if msg == nil {
		return
	}
	select {
	case s.inbox <- msg:
	default:
		s.recorder.Dropped()
	}
}

func (s *Service) Run(ctx context.Context) error {
	s.log.Infow("Metrics service started", "inbox_size", cap(s.inbox))

	sweep := time.NewTicker(s.sweepInterval)
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = s.resolvers.Wait()
			s.log.Infow("Metrics service stopped",
				"open_persistence_timers", len(s.persistenceTimers),
				"open_call_timers", len(s.callTimers),
			)
			return nil
		case msg := <-s.inbox:
			s.handle(ctx, msg)
		case <-sweep.C:
			s.sweepOrphans()
		}
	}
}

func (s *Service) handle(ctx context.Context, msg Message) {
	switch m := msg.(type) {
	case IncreaseCounter:
		s.recorder.Counter(m.Name)

	case AriEventObserved:
		s.recorder.AriEvent(m.Type)

	case PersistenceUpdateTimerStart:
		s.persistenceTimers[m.Handle] = m.At
		s.recorder.PersistenceTimersOpen(len(s.persistenceTimers))

	case PersistenceUpdateTimerStop:
		started, ok := s.persistenceTimers[m.Handle]
		if !ok {
			s.log.Debugw("Ignoring stop for unknown persistence timer", "handle", m.Handle)
			return
		}
		delete(s.persistenceTimers, m.Handle)
		status := statusOK
		if m.Failed {
			status = statusError
		}
		s.recorder.PersistenceUpdate(m.At.Sub(started), status)
		s.recorder.PersistenceTimersOpen(len(s.persistenceTimers))

	case CallTimerStart:
		s.resolve(ctx, m.CallContext, m.At, true)

	case CallTimerStop:
		s.resolve(ctx, m.CallContext, m.At, false)

	case callTimerResolved:
		if m.start {
			s.startCall(m.callContext, m.at)
		} else {
			s.stopCall(m.callContext, m.at)
		}

	default:
		s.log.Warnw("Unhandled metrics message", "message", msg)
	}
}

func (s *Service) startCall(callContext string, at time.Time) {
	if stopped, ok := s.earlyStops[callContext]; ok {
		delete(s.earlyStops, callContext)
		if !stopped.Before(at) {
			s.recorder.CallDuration(stopped.Sub(at))
			return
		}
	}
	s.callTimers[callContext] = at
	s.recorder.CallsActive(len(s.callTimers))
}

// stopCall closes the call timer. A stop that overtook its start is kept
// until the start resolves or the sweep drops it.
func (s *Service) stopCall(callContext string, at time.Time) {
	started, ok := s.callTimers[callContext]
	if !ok {
		s.log.Debugw("Holding stop for call timer not started yet", "call_context", callContext)
		s.earlyStops[callContext] = at
		return
	}
	delete(s.callTimers, callContext)
	s.recorder.CallDuration(at.Sub(started))
	s.recorder.CallsActive(len(s.callTimers))
}

// resolve evaluates supplier off the loop and posts the result back.
func (s *Service) resolve(ctx context.Context, supplier CallContextSupplier, at time.Time, start bool) {
	if supplier == nil {
		return
	}
	launched := s.resolvers.TryGo(func() error {
		callContext, err := supplier(ctx)
		if err != nil {
			s.log.Warnw("Call timer dropped, call context not resolved", "error", err)
			s.Tell(IncreaseCounter{Name: constants.CounterCallContextErrors})
			return nil
		}
		s.Tell(callTimerResolved{callContext: callContext, at: at, start: start})
		return nil
	})
	if !launched {
		s.recorder.Dropped()
	}
}

func (s *Service) sweepOrphans() {
	now := s.now()

	for handle, started := range s.persistenceTimers {
		if now.Sub(started) < s.persistenceOrphanAge {
			continue
		}
		delete(s.persistenceTimers, handle)
		s.recorder.PersistenceUpdate(now.Sub(started), statusOrphaned)
		s.log.Warnw("Removed orphaned persistence timer", "handle", handle)
	}
	s.recorder.PersistenceTimersOpen(len(s.persistenceTimers))

	for callContext, started := range s.callTimers {
		if now.Sub(started) < s.callOrphanAge {
			continue
		}
		delete(s.callTimers, callContext)
		s.log.Warnw("Removed orphaned call timer", "call_context", callContext)
	}
	s.recorder.CallsActive(len(s.callTimers))

	for callContext, stopped := range s.earlyStops {
		if now.Sub(stopped) < s.persistenceOrphanAge {
			continue
		}
		delete(s.earlyStops, callContext)
		s.log.Warnw("Removed call stop without a start", "call_context", callContext)
	}
}
