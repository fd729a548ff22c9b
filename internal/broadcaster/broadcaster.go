package broadcaster

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/weiawesome/wes-io-live/overlay-service/internal/assetstore"
	"github.com/weiawesome/wes-io-live/overlay-service/internal/domain"
	"github.com/weiawesome/wes-io-live/overlay-service/internal/hub"
	"github.com/weiawesome/wes-io-live/overlay-service/pkg/log"
	"github.com/weiawesome/wes-io-live/overlay-service/pkg/pubsub"
)

const (
	defaultPublishTimeout = 3 * time.Second
	defaultQueueSize      = 256
)

// Config controls cross-instance relaying.
type Config struct {
	// Origin identifies this process on the bus so relayed events are not echoed back.
	Origin         string
	PublishTimeout time.Duration
	// QueueSize bounds the bus events waiting to be sent. Events beyond it are dropped.
	QueueSize int
}

type outbound struct {
	ctx   context.Context
	event *pubsub.Event
}

// Broadcaster delivers asset events to the subscribers of a channel topic,
// locally through the hub and, when a bus is configured, to other instances.
type Broadcaster struct {
	hub    *hub.Hub
	bus    pubsub.Publisher
	config Config

	mu     sync.RWMutex
	closed bool
	queue  chan outbound
	done   chan struct{}
}

// New creates a Broadcaster. bus may be nil for single-instance deployments.
// With a bus, events are forwarded by a single goroutine so peers receive
// them in the order they were published here.
func New(h *hub.Hub, bus pubsub.Publisher, cfg Config) *Broadcaster {
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = defaultPublishTimeout
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	b := &Broadcaster{hub: h, bus: bus, config: cfg}
	if bus != nil {
		b.queue = make(chan outbound, cfg.QueueSize)
		b.done = make(chan struct{})
		go b.forward()
	}
	return b
}

// Publish fans event out to the broadcaster's channel topic. Local delivery
// completes before Publish returns; bus delivery happens in the background.
// Failures are logged and never returned.
func (b *Broadcaster) Publish(ctx context.Context, broadcaster string, event domain.AssetEvent) {
	l := log.Ctx(ctx)

	data, err := json.Marshal(event)
	if err != nil {
		l.Error().Err(err).Str(log.FieldBroadcaster, broadcaster).Msg("failed to encode asset event")
		return
	}

	topic := hub.ChannelTopic(broadcaster)
	n := b.hub.Publish(topic, data)
	l.Debug().
		Str(log.FieldTopic, topic).
		Str(log.FieldAssetID, event.AssetID()).
		Str("event_type", string(event.Type())).
		Int("subscribers", n).
		Msg("asset event published")

	if b.bus == nil {
		return
	}
	b.relay(ctx, string(event.Type()), broadcaster, newReplica(event))
}

// ReplicateAdmin tells other instances that username was granted or revoked
// admin rights on broadcaster's channel. Nothing is sent to overlay clients.
func (b *Broadcaster) ReplicateAdmin(ctx context.Context, broadcaster, username string, granted bool) {
	if b.bus == nil {
		return
	}
	eventType := busAdminRevoked
	if granted {
		eventType = busAdminGranted
	}
	b.relay(ctx, eventType, broadcaster, replica{
		Broadcaster: domain.NormalizeBroadcaster(broadcaster),
		Username:    username,
	})
}

func (b *Broadcaster) relay(ctx context.Context, eventType, broadcaster string, rep replica) {
	l := log.Ctx(ctx)

	name, err := assetstore.SanitizeBroadcaster(broadcaster)
	if err != nil {
		l.Warn().Err(err).Str(log.FieldBroadcaster, broadcaster).Msg("broadcaster has no bus channel, event not relayed")
		return
	}

	busEvent, err := pubsub.NewEvent(eventType, pubsub.OverlayEventsChannel(name), rep)
	if err != nil {
		l.Error().Err(err).Msg("failed to wrap event for relay")
		return
	}
	busEvent.Origin = b.config.Origin

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		l.Debug().Str("channel", busEvent.Channel).Msg("broadcaster closed, event not relayed")
		return
	}
	select {
	case b.queue <- outbound{ctx: context.WithoutCancel(ctx), event: busEvent}:
	default:
		l.Warn().Str("channel", busEvent.Channel).Msg("relay queue full, dropping event")
	}
}

func (b *Broadcaster) forward() {
	defer close(b.done)
	for out := range b.queue {
		pubCtx, cancel := context.WithTimeout(out.ctx, b.config.PublishTimeout)
		if err := b.bus.Publish(pubCtx, out.event.Channel, out.event); err != nil {
			l := log.Ctx(out.ctx)
			l.Warn().Err(err).Str("channel", out.event.Channel).Msg("failed to relay event")
		}
		cancel()
	}
}

// Close stops accepting bus events and blocks until queued ones are sent.
// Local delivery keeps working after Close.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	if !b.closed {
		b.closed = true
		if b.queue != nil {
			close(b.queue)
		}
	}
	b.mu.Unlock()

	if b.done != nil {
		<-b.done
	}
}
