package callcontext

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ariproxy/internal/constants"
	apperrors "ariproxy/pkg/errors"
	"ariproxy/pkg/metrics"
)

const (
	statusOK       = "ok"
	statusNotFound = "not_found"
	statusTimeout  = "timeout"
	statusError    = "error"
)

// Resolver is the client side of the provider. Every exchange is bounded
// by the resolution timeout, including the wait for the inbox.
type Resolver struct {
	provider *Provider
	timeout  time.Duration
}

func NewResolver(provider *Provider, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = constants.DefaultResolutionTimeout
	}
	return &Resolver{provider: provider, timeout: timeout}
}

// Resolve returns the call context bound to resourceID.
func (r *Resolver) Resolve(ctx context.Context, resourceID, hint string, policy Policy) (string, error) {
	return r.ResolveAsync(ctx, resourceID, hint, policy).Await()
}

// ResolveAsync hands the request to the provider and returns once it is
// queued. Requests queued from one goroutine are served in that order.
func (r *Resolver) ResolveAsync(ctx context.Context, resourceID, hint string, policy Policy) *Pending {
	pending := r.newPending(ctx, resourceID, policy)
	if resourceID == "" {
		pending.fail(apperrors.ErrValidation.WithMessage("resource id is required"))
		return pending
	}

	r.send(pending, request{
		kind:       kindResolve,
		resourceID: resourceID,
		hint:       hint,
		policy:     policy,
	})
	return pending
}

// Register binds resourceID to an already known call context. The proxy
// itself only binds through resolution; Register is for embedders that learn
// bindings out of band, such as a command processor creating a bridge.
func (r *Resolver) Register(ctx context.Context, resourceID, callContext string) error {
	if resourceID == "" || callContext == "" {
		return apperrors.ErrValidation.WithMessage("resource id and call context are required")
	}

	pending := r.newPending(ctx, resourceID, CreateIfMissing)
	r.send(pending, request{
		kind:        kindRegister,
		resourceID:  resourceID,
		callContext: callContext,
	})
	_, err := pending.Await()
	return err
}

func (r *Resolver) newPending(ctx context.Context, resourceID string, policy Policy) *Pending {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	return &Pending{
		ctx:        ctx,
		cancel:     cancel,
		resourceID: resourceID,
		policy:     policy,
		started:    time.Now(),
	}
}

func (r *Resolver) send(pending *Pending, req request) {
	replies := make(chan reply, 1)
	req.ctx = pending.ctx
	req.reply = replies

	if err := r.provider.enqueue(pending.ctx, req); err != nil {
		pending.fail(err)
		return
	}
	pending.replies = replies
}

// Pending is an in-flight resolution.
type Pending struct {
	ctx        context.Context
	cancel     context.CancelFunc
	replies    <-chan reply
	resourceID string
	policy     Policy
	started    time.Time

	done        bool
	callContext string
	err         error
}

func (p *Pending) fail(err error) {
	p.done = true
	p.err = err
}

// Cancel gives up on the request without waiting for the reply. It is
// safe on a nil or already awaited Pending.
func (p *Pending) Cancel() {
	if p == nil || p.cancel == nil {
		return
	}
	p.cancel()
}

// Await blocks for the reply. Calling it again returns the same result.
func (p *Pending) Await() (string, error) {
	if p.done {
		if p.err != nil && !apperrors.IsResolution(p.err) {
			p.err = p.resolutionError(p.err)
		}
		p.cancel()
		return p.callContext, p.err
	}

	var rep reply
	select {
	case rep = <-p.replies:
	default:
		select {
		case rep = <-p.replies:
		case <-p.ctx.Done():
			rep = reply{err: p.ctx.Err()}
		}
	}
	p.cancel()

	p.done = true
	p.callContext = rep.callContext
	if rep.err != nil {
		p.err = p.resolutionError(rep.err)
		return "", p.err
	}

	metrics.ObserveResolution(p.policy.String(), statusOK, time.Since(p.started))
	return p.callContext, nil
}

func (p *Pending) resolutionError(err error) error {
	status := statusError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		status = statusTimeout
		err = apperrors.ErrTimeout.WithCause(err).WithMessage(fmt.Sprintf("call context resolution for %s timed out", p.resourceID))
	case apperrors.IsNotFound(err):
		status = statusNotFound
	}
	metrics.ObserveResolution(p.policy.String(), status, time.Since(p.started))

	return apperrors.ErrResolution.WithCause(err).
		WithDetail("resource_id", p.resourceID).
		WithDetail("policy", p.policy.String())
}
