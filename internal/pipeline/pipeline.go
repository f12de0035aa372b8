package pipeline

import (
	"context"
	"sync/atomic"

	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"ariproxy/internal/ari"
	"ariproxy/internal/callcontext"
	"ariproxy/internal/config"
	"ariproxy/internal/constants"
	"ariproxy/internal/logger"
	"ariproxy/internal/metering"
	"ariproxy/internal/sink"
	apperrors "ariproxy/pkg/errors"
	"ariproxy/pkg/logging"
	"ariproxy/pkg/metrics"
	"ariproxy/pkg/models"
	"ariproxy/pkg/ratelimit"
	"ariproxy/pkg/tracing"
)

// item is one inbound frame on its way to the sink.
type item struct {
	raw                 string
	msg                 ari.Message
	messageType         string
	resources           []models.AriResource
	resolution          *callcontext.Pending
	skip                bool
	applicationReplaced bool
	err                 error
}

func (it *item) release() {
	it.resolution.Cancel()
}

type Stats struct {
	Received uint64
	Emitted  uint64
	Failed   uint64
}

type Option func(*Pipeline)

// WithApplicationReplacedHandler sets what runs when Asterisk hands the
// Stasis application to another connection.
func WithApplicationReplacedHandler(fn func()) Option {
	return func(p *Pipeline) {
		p.onApplicationReplaced = fn
	}
}

func WithThrottle(t *ratelimit.Throttle) Option {
	return func(p *Pipeline) {
		p.throttle = t
	}
}

// Pipeline translates ARI frames into output records.
//
// A dispatcher parses each frame, taps it for metrics and queues its call
// context resolution. A writer awaits resolutions in frame order and writes
// the records of one message before starting the next. At most concurrency
// messages are between the two stages, so a slow sink stalls the source.
//
// A failing message is logged, counted and skipped. With StopOnError the
// first failure ends Run instead.
type Pipeline struct {
	router   *Router
	resolver *callcontext.Resolver
	metrics  metering.Teller
	sink     sink.Sink
	logger   logger.Logger
	throttle *ratelimit.Throttle

	concurrency           int
	stopOnError           bool
	onApplicationReplaced func()

	received atomic.Uint64
	emitted  atomic.Uint64
	failed   atomic.Uint64
}

func New(
	cfg config.PipelineConfig,
	router *Router,
	resolver *callcontext.Resolver,
	teller metering.Teller,
	out sink.Sink,
	log logger.Logger,
	opts ...Option,
) *Pipeline {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = constants.DefaultTapConcurrency
	}
	if teller == nil {
		teller = metering.Discard
	}

	p := &Pipeline{
		router:                router,
		resolver:              resolver,
		metrics:               teller,
		sink:                  out,
		logger:                log,
		concurrency:           concurrency,
		stopOnError:           cfg.StopOnError,
		onApplicationReplaced: func() {},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run consumes frames until ctx is done or frames is closed.
func (p *Pipeline) Run(ctx context.Context, frames <-chan []byte) error {
	p.logger.Infow("Event pipeline started",
		"concurrency", p.concurrency,
		"stop_on_error", p.stopOnError,
		"throttled", p.throttle.Enabled(),
	)

	pending := make(chan *item, p.concurrency)
	g, gctx := errgroup.WithContext(ctx)
	gctx, stop := context.WithCancel(gctx)
	defer stop()

	g.Go(func() error {
		defer close(pending)
		return p.dispatch(gctx, frames, pending)
	})
	g.Go(func() error {
		return p.write(gctx, pending, stop)
	})

	err := g.Wait()
	stats := p.Stats()
	p.logger.Infow("Event pipeline stopped",
		"received", stats.Received,
		"emitted", stats.Emitted,
		"failed", stats.Failed,
	)
	return err
}

func (p *Pipeline) Stats() Stats {
	return Stats{
		Received: p.received.Load(),
		Emitted:  p.emitted.Load(),
		Failed:   p.failed.Load(),
	}
}

func (p *Pipeline) dispatch(ctx context.Context, frames <-chan []byte, pending chan<- *item) error {
	for {
		var frame []byte
		select {
		case <-ctx.Done():
			return nil
		case f, ok := <-frames:
			if !ok {
				return nil
			}
			frame = f
		}
		p.received.Add(1)

		if err := p.throttle.Wait(ctx); err != nil {
			return nil
		}

		select {
		case pending <- p.prepare(ctx, frame):
		case <-ctx.Done():
			return nil
		}
	}
}

// write drains pending until the dispatcher closes it. Items left over
// after shutdown or a stop-on-error failure are released unprocessed.
func (p *Pipeline) write(ctx context.Context, pending <-chan *item, stop context.CancelFunc) error {
	var stopErr error
	for it := range pending {
		if stopErr != nil || ctx.Err() != nil {
			it.release()
			continue
		}
		if err := p.process(ctx, it); err != nil {
			p.recordFailure(ctx, it, err)
			if p.stopOnError {
				stopErr = err
				stop()
			}
		}
	}
	return stopErr
}

// process is the failure boundary of a single message.
func (p *Pipeline) process(ctx context.Context, it *item) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.RecoverPanic(r)
		}
	}()

	if it.err != nil {
		return it.err
	}
	if it.applicationReplaced {
		p.logger.Infow("ARI application replaced by another connection")
		p.onApplicationReplaced()
		return nil
	}
	if it.skip {
		p.logger.Debugw("Message not translated", "message_type", it.messageType)
		return nil
	}

	ctx = logging.WithMessageType(ctx, it.messageType)
	ctx, span := tracing.StartMessageSpan(ctx, it.messageType)
	if sc := span.SpanContext(); sc.HasTraceID() {
		ctx = logging.WithTraceID(ctx, sc.TraceID().String())
	}
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	callContext, err := it.resolution.Await()
	if err != nil {
		return apperrors.ErrTranslation.WithCause(err)
	}
	ctx = logging.WithCallContext(ctx, callContext)

	records, err := p.translate(it, callContext)
	if err != nil {
		return err
	}

	if err := p.sink.Write(ctx, records...); err != nil {
		return err
	}

	for _, record := range records {
		p.logger.InfowCtx(ctx, ">>> ARI EVENT",
			"topic", record.Topic,
			"key", record.Key,
			"value", record.Value,
		)
		metrics.IncRecordEmitted(record.Topic)
	}
	p.emitted.Add(uint64(len(records)))
	return nil
}

func (p *Pipeline) recordFailure(ctx context.Context, it *item, err error) {
	p.failed.Add(1)
	code := apperrors.Code(err)
	metrics.IncTranslationFailure(code)
	p.metrics.Tell(metering.IncreaseCounter{Name: constants.CounterEventProcessorRestarts})

	action := "resume"
	if p.stopOnError {
		action = "stop"
	}
	p.logger.ErrorwCtx(logging.WithMessageType(ctx, it.messageType), "Event processing failed",
		"error", err,
		"code", code,
		"action", action,
		"frame", truncate(it.raw, maxLoggedFrame),
	)
}

const maxLoggedFrame = 2048

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
