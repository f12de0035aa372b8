package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"ariproxy/internal/ari"
	"ariproxy/internal/callcontext"
	apperrors "ariproxy/pkg/errors"
	"ariproxy/pkg/jsoncodec"
	"ariproxy/pkg/models"
)

// translate turns one correlated message into its output records.
func (p *Pipeline) translate(it *item, callContext string) ([]models.OutputRecord, error) {
	envelope := models.AriMessageEnvelope{
		Type:          it.messageType,
		CommandsTopic: p.router.CommandsTopic(),
		Payload:       json.RawMessage(it.msg.Raw()),
		CallContext:   callContext,
		Resources:     it.resources,
	}

	value, err := jsoncodec.Marshal(envelope)
	if err != nil {
		return nil, apperrors.ErrTranslation.WithCause(fmt.Errorf("encode envelope: %w", err))
	}

	return []models.OutputRecord{{
		Topic: p.router.Topic(it.messageType),
		Key:   callContext,
		Value: string(value),
	}}, nil
}

// prepare parses a frame and queues its call context resolution. Requests
// are queued in frame order, so a binding created for one message is
// visible to every later one.
func (p *Pipeline) prepare(ctx context.Context, frame []byte) (it *item) {
	it = &item{raw: string(frame)}
	defer func() {
		if r := recover(); r != nil {
			it.err = apperrors.RecoverPanic(r)
		}
	}()

	msg, err := ari.Parse(frame)
	if err != nil {
		it.err = apperrors.ErrTranslation.WithCause(err)
		return it
	}
	it.msg = msg

	p.tap(msg)

	name, ok := msg.Type()
	if !ok {
		it.err = apperrors.ErrTranslation.WithMessage("ari message has no type")
		return it
	}
	it.messageType = name

	messageType, known := ari.LookupType(name)
	if !known {
		it.skip = true
		return it
	}

	if name == ari.ApplicationReplaced {
		it.applicationReplaced = true
		return it
	}
	if !messageType.Correlated() {
		it.skip = true
		return it
	}

	it.resources = messageType.ExtractResources(msg)
	if len(it.resources) == 0 {
		it.err = apperrors.ErrTranslation.WithMessage(fmt.Sprintf("%s message carries no resource identifier", name))
		return it
	}

	policy := callcontext.FailIfMissing
	if messageType.CreatesContext {
		policy = callcontext.CreateIfMissing
	}
	it.resolution = p.resolver.ResolveAsync(ctx, it.resources[0].ID, messageType.Hint(msg), policy)
	return it
}
