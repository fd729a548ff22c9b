package broadcaster

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/weiawesome/wes-io-live/overlay-service/internal/domain"
	"github.com/weiawesome/wes-io-live/overlay-service/internal/hub"
	"github.com/weiawesome/wes-io-live/overlay-service/pkg/log"
	"github.com/weiawesome/wes-io-live/overlay-service/pkg/pubsub"
)

// ChannelState is the local directory state that relayed events are applied to.
type ChannelState interface {
	Apply(event domain.AssetEvent, then func())
	AddAdmin(broadcaster, username string) bool
	RemoveAdmin(broadcaster, username string) bool
}

// Relay applies events published by other instances to the local channel
// state and then feeds asset events into the local hub.
type Relay struct {
	hub        *hub.Hub
	state      ChannelState
	bus        pubsub.Subscriber
	origin     string
	retryDelay time.Duration
}

// NewRelay creates a relay. origin must match the local Broadcaster's origin.
func NewRelay(h *hub.Hub, state ChannelState, bus pubsub.Subscriber, origin string, retryDelay time.Duration) *Relay {
	if retryDelay <= 0 {
		retryDelay = 2 * time.Second
	}
	return &Relay{hub: h, state: state, bus: bus, origin: origin, retryDelay: retryDelay}
}

// Run consumes the bus until ctx is cancelled, resubscribing whenever the
// subscription fails or ends.
func (r *Relay) Run(ctx context.Context) error {
	l := log.Ctx(ctx)

	for {
		events, err := r.bus.SubscribePattern(ctx, pubsub.PatternOverlayEvents)
		if err != nil {
			l.Warn().Err(err).Dur("retry_in", r.retryDelay).Msg("relay subscribe failed")
		} else {
			l.Info().Str("pattern", pubsub.PatternOverlayEvents).Msg("relay subscribed")
			r.consume(ctx, events)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(r.retryDelay):
		}
	}
}

func (r *Relay) consume(ctx context.Context, events <-chan *pubsub.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			if err := r.deliver(evt); err != nil {
				l := log.Ctx(ctx)
				l.Warn().Err(err).Str("channel", evt.Channel).Msg("dropping relayed event")
			}
		}
	}
}

func (r *Relay) deliver(evt *pubsub.Event) error {
	if evt == nil {
		return fmt.Errorf("nil event")
	}
	if evt.Origin != "" && evt.Origin == r.origin {
		return nil
	}
	if _, ok := pubsub.BroadcasterFromChannel(evt.Channel); !ok {
		return fmt.Errorf("unrecognised channel %q", evt.Channel)
	}

	var rep replica
	if err := evt.UnmarshalPayload(&rep); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	switch evt.Type {
	case busAdminGranted, busAdminRevoked:
		if rep.Broadcaster == "" || rep.Username == "" {
			return fmt.Errorf("incomplete admin change")
		}
		if evt.Type == busAdminGranted {
			r.state.AddAdmin(rep.Broadcaster, rep.Username)
		} else {
			r.state.RemoveAdmin(rep.Broadcaster, rep.Username)
		}
		return nil
	}

	event, err := rep.assetEvent(domain.EventType(evt.Type))
	if err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	r.state.Apply(event, func() {
		r.hub.Publish(hub.ChannelTopic(event.Channel()), data)
	})
	return nil
}
