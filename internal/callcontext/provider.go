package callcontext

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"ariproxy/internal/constants"
	"ariproxy/internal/logger"
	"ariproxy/internal/persistence"
	apperrors "ariproxy/pkg/errors"
	"ariproxy/pkg/health"
)

type requestKind int

const (
	kindResolve requestKind = iota
	kindRegister
)

type request struct {
	ctx         context.Context
	kind        requestKind
	resourceID  string
	hint        string
	callContext string
	policy      Policy
	reply       chan<- reply
}

type reply struct {
	callContext string
	err         error
}

// Provider is the call context authority. A single goroutine serves its
// inbox in arrival order, so every binding has exactly one writer.
//
// Bindings are kept under two keys: resource:<id> holds the call context of
// a resource and callcontext:<cc> holds the resource the call context was
// first bound to.
type Provider struct {
	store persistence.KeyValueStore[string, string]
	inbox chan request
	log   logger.Logger
}

func NewProvider(store persistence.KeyValueStore[string, string], inboxSize int, log logger.Logger) *Provider {
	if inboxSize <= 0 {
		inboxSize = constants.DefaultInboxSize
	}
	return &Provider{
		store: store,
		inbox: make(chan request, inboxSize),
		log:   log,
	}
}

func (p *Provider) Run(ctx context.Context) error {
	p.log.Infow("Call context provider started", "inbox_size", cap(p.inbox))

	for {
		select {
		case <-ctx.Done():
			p.log.Infow("Call context provider stopped", "pending", len(p.inbox))
			return nil
		case req := <-p.inbox:
			req.reply <- p.serve(req)
		}
	}
}

// enqueue blocks until the inbox accepts req or ctx ends.
func (p *Provider) enqueue(ctx context.Context, req request) error {
	select {
	case p.inbox <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Provider) CheckHealth(ctx context.Context) health.Report {
	report := p.store.CheckHealth(ctx)
	report.Name = "callcontext.provider"
	return report
}

func (p *Provider) serve(req request) reply {
	if err := req.ctx.Err(); err != nil {
		return reply{err: err}
	}

	switch req.kind {
	case kindRegister:
		return reply{callContext: req.callContext, err: p.bind(req.ctx, req.resourceID, req.callContext)}
	default:
		callContext, err := p.resolve(req.ctx, req.resourceID, req.hint, req.policy)
		return reply{callContext: callContext, err: err}
	}
}

func (p *Provider) resolve(ctx context.Context, resourceID, hint string, policy Policy) (string, error) {
	callContext, found, err := p.store.Get(ctx, resourceKey(resourceID))
	if err != nil {
		return "", err
	}
	if found {
		return callContext, nil
	}

	if policy == FailIfMissing {
		return "", apperrors.ErrNotFound.WithMessage(fmt.Sprintf("no call context bound to resource %s", resourceID))
	}

	callContext, err = p.mint(ctx, resourceID, hint)
	if err != nil {
		return "", err
	}
	if err := p.bind(ctx, resourceID, callContext); err != nil {
		return "", err
	}

	p.log.DebugwCtx(ctx, "Bound new call context", "resource_id", resourceID, "call_context", callContext, "from_hint", callContext == hint)
	return callContext, nil
}

// mint prefers hint unless another resource already owns it.
func (p *Provider) mint(ctx context.Context, resourceID, hint string) (string, error) {
	if hint == "" {
		return uuid.NewString(), nil
	}

	owner, found, err := p.store.Get(ctx, callContextKey(hint))
	if err != nil {
		return "", err
	}
	if found && owner != resourceID {
		p.log.DebugwCtx(ctx, "Call context hint already bound to another resource",
			"resource_id", resourceID, "hint", hint, "owner", owner)
		return uuid.NewString(), nil
	}
	return hint, nil
}

func (p *Provider) bind(ctx context.Context, resourceID, callContext string) error {
	if err := p.store.Put(ctx, resourceKey(resourceID), callContext); err != nil {
		return err
	}

	_, owned, err := p.store.Get(ctx, callContextKey(callContext))
	if err != nil {
		return err
	}
	if owned {
		return nil
	}
	return p.store.Put(ctx, callContextKey(callContext), resourceID)
}

func resourceKey(resourceID string) string {
	return constants.ResourceKeyPrefix + resourceID
}

func callContextKey(callContext string) string {
	return constants.CallContextKeyPrefix + callContext
}
