package pipeline

import (
	"context"
	"time"

	"ariproxy/internal/ari"
	"ariproxy/internal/callcontext"
	"ariproxy/internal/metering"
)

// tap sends the metrics of msg. It never blocks: the call context is
// resolved lazily by the metrics service, and only for call timers.
func (p *Pipeline) tap(msg ari.Message) {
	channelID, ok := msg.Value(ari.ChannelIDPath)
	if !ok {
		return
	}
	name, ok := msg.Type()
	if !ok {
		return
	}

	descriptors := metering.DetermineGatherers(name)
	if len(descriptors) == 0 {
		return
	}

	hint, _ := msg.Value(ari.ChannelHintPath)
	supplier := metering.Memoize(func(ctx context.Context) (string, error) {
		callContext, err := p.resolver.Resolve(ctx, channelID, hint, callcontext.CreateIfMissing)
		if err != nil {
			p.logger.ErrorwCtx(ctx, "Call context resolution for metrics failed",
				"error", err,
				"message_type", name,
				"channel_id", channelID,
			)
		}
		return callContext, err
	})

	at := time.Now()
	for _, descriptor := range descriptors {
		p.metrics.Tell(descriptor.Emission(supplier, at))
	}
}
