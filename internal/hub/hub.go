package hub

import (
	"sync"

	"github.com/google/uuid"

	"github.com/weiawesome/wes-io-live/overlay-service/internal/domain"
	"github.com/weiawesome/wes-io-live/overlay-service/pkg/log"
)

const defaultBuffer = 64

// ChannelTopic returns the hub topic for a broadcaster's channel. The
// broadcaster is normalized exactly as the registry keys channels.
func ChannelTopic(broadcaster string) string {
	return "channel/" + domain.NormalizeBroadcaster(broadcaster)
}

// Subscription receives every message published to its topic after it was
// created. C is closed when the subscription is removed.
type Subscription struct {
	ID    string
	Topic string
	C     <-chan []byte

	send chan []byte
}

// Hub fans messages out to topic subscribers inside this process.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[string]*Subscription
	buffer int
}

// New creates a hub whose subscriptions buffer up to buffer messages.
func New(buffer int) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{
		topics: make(map[string]map[string]*Subscription),
		buffer: buffer,
	}
}

// Subscribe registers a new subscription on topic.
func (h *Hub) Subscribe(topic string) *Subscription {
	send := make(chan []byte, h.buffer)
	sub := &Subscription{
		ID:    uuid.New().String(),
		Topic: topic,
		C:     send,
		send:  send,
	}

	h.mu.Lock()
	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[string]*Subscription)
		h.topics[topic] = subs
	}
	subs[sub.ID] = sub
	h.mu.Unlock()

	l := log.L()
	l.Debug().Str(log.FieldTopic, topic).Str("subscription_id", sub.ID).Msg("subscribed")
	return sub
}

// Unsubscribe removes sub and closes its channel. Repeated calls are no-ops.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.topics[sub.Topic]
	if !ok {
		return
	}
	if _, ok := subs[sub.ID]; !ok {
		return
	}
	delete(subs, sub.ID)
	close(sub.send)
	if len(subs) == 0 {
		delete(h.topics, sub.Topic)
	}
}

// Publish delivers data to every current subscriber of topic and returns
// how many received it. It never blocks: a subscriber whose buffer is full
// misses the message.
func (h *Hub) Publish(topic string, data []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for id, sub := range h.topics[topic] {
		select {
		case sub.send <- data:
			delivered++
		default:
			l := log.L()
			l.Warn().Str(log.FieldTopic, topic).Str("subscription_id", id).Msg("subscriber buffer full, dropping message")
		}
	}
	return delivered
}

// SubscriberCount returns the number of subscribers on topic.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}
