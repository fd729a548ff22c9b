package handler

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/wes-io-live/overlay-service/internal/hub"
	"github.com/weiawesome/wes-io-live/overlay-service/internal/service"
	"github.com/weiawesome/wes-io-live/overlay-service/pkg/pubsub"
)

// memBus is an in-process bus that hands every event to every pattern subscriber.
type memBus struct {
	mu   sync.Mutex
	subs []chan *pubsub.Event
}

func (m *memBus) Publish(ctx context.Context, channel string, event *pubsub.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subs {
		select {
		case ch <- event:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (m *memBus) Subscribe(ctx context.Context, channel string) (<-chan *pubsub.Event, error) {
	return nil, errors.New("not supported")
}

func (m *memBus) SubscribePattern(ctx context.Context, pattern string) (<-chan *pubsub.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan *pubsub.Event, 64)
	m.subs = append(m.subs, ch)
	return ch, nil
}

func (m *memBus) Unsubscribe(ctx context.Context, channel string) error { return nil }

func (m *memBus) Close() error { return nil }

func (m *memBus) subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

func newPeers(t *testing.T) (*testEnv, *testEnv) {
	t.Helper()
	bus := &memBus{}
	store := newTestStore(t)
	a := newNodeEnv(t, 1<<20, store, bus, "node-a")
	b := newNodeEnv(t, 1<<20, store, bus, "node-b")
	require.Eventually(t, func() bool { return bus.subscribers() == 2 }, time.Second, 5*time.Millisecond)
	return a, b
}

func TestRelayedAssetIsListedAndServedByPeer(t *testing.T) {
	a, b := newPeers(t)
	sub := b.hub.Subscribe(hub.ChannelTopic("alice"))

	view := createAsset(t, a)
	id := view["id"].(string)

	select {
	case msg := <-sub.C:
		assert.Contains(t, string(msg), id)
	case <-time.After(2 * time.Second):
		t.Fatal("peer viewer did not receive the created event")
	}

	var visible []map[string]any
	decode(t, b.do(t, http.MethodGet, "/api/channels/alice/assets/visible", "", nil, ""), &visible)
	require.Len(t, visible, 1)
	assert.Equal(t, id, visible[0]["id"])

	w := b.do(t, http.MethodGet, view["url"].(string), "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	w = b.do(t, http.MethodGet, view["previewUrl"].(string), "", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPeersConvergeOnAdminsAndMutations(t *testing.T) {
	a, b := newPeers(t)
	ctx := context.Background()
	id := createAsset(t, a)["id"].(string)
	require.Eventually(t, func() bool {
		_, err := b.service.GetAsset(ctx, "alice", id)
		return err == nil
	}, 2*time.Second, 5*time.Millisecond)

	w := a.doJSON(t, http.MethodPost, "/api/channels/alice/admins", "alice", map[string]string{"username": "carol"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Eventually(t, func() bool { return b.service.CanManage("alice", "carol") }, 2*time.Second, 5*time.Millisecond)

	transform := map[string]any{"x": 5, "y": 6, "width": 40, "height": 30, "rotation": 0}
	w = b.doJSON(t, http.MethodPut, "/api/channels/alice/assets/"+id+"/transform", "carol", transform)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Eventually(t, func() bool {
		asset, err := a.service.GetAsset(ctx, "alice", id)
		return err == nil && asset.X == 5 && asset.Width == 40
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, http.StatusNoContent, b.do(t, http.MethodDelete, "/api/channels/alice/assets/"+id, "carol", nil, "").Code)
	require.Eventually(t, func() bool {
		_, err := a.service.GetAsset(ctx, "alice", id)
		return errors.Is(err, service.ErrAssetNotFound)
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodGet, "/api/channels/alice/assets/"+id+"/content", "", nil, "").Code)
}
