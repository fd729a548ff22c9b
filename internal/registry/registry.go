package registry

import (
	"sort"
	"sync"

	"github.com/weiawesome/wes-io-live/overlay-service/internal/domain"
)

// Registry maps broadcaster identities to their channels. It is built once
// in main and shared by every component that needs channel state.
type Registry struct {
	mu       sync.RWMutex
	channels map[string]*domain.Channel
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{channels: make(map[string]*domain.Channel)}
}

func normalize(broadcaster string) string {
	return domain.NormalizeBroadcaster(broadcaster)
}

// GetOrCreate returns the channel for broadcaster, creating and registering
// an empty one if none exists. Read paths call this too, so simply listing a
// channel's assets brings the channel into existence.
func (r *Registry) GetOrCreate(broadcaster string) *domain.Channel {
	key := normalize(broadcaster)

	r.mu.RLock()
	ch, ok := r.channels[key]
	r.mu.RUnlock()
	if ok {
		return ch
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if ch, ok := r.channels[key]; ok {
		return ch
	}
	ch = domain.NewChannel(key)
	r.channels[key] = ch
	return ch
}

// Lookup returns the channel for broadcaster without creating it.
func (r *Registry) Lookup(broadcaster string) (*domain.Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.channels[normalize(broadcaster)]
	return ch, ok
}

// Len returns the number of known channels.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels)
}

// Apply replays an asset event produced by another instance onto the local
// channel. Created, updated and visibility events carry the full asset and
// replace the local copy; deleted events remove it. then, when non-nil, runs
// after the change within the channel's event order.
func (r *Registry) Apply(event domain.AssetEvent, then func()) {
	ch := r.GetOrCreate(event.Channel())
	ch.Sequence(func() {
		switch e := event.(type) {
		case domain.AssetCreated:
			ch.PutAsset(e.Asset)
		case domain.AssetUpdated:
			ch.PutAsset(e.Asset)
		case domain.AssetVisibilityChanged:
			ch.PutAsset(e.Asset)
		case domain.AssetDeleted:
			ch.RemoveAsset(e.ID)
		}
		if then != nil {
			then()
		}
	})
}

// AddAdmin grants username admin rights on broadcaster's channel.
func (r *Registry) AddAdmin(broadcaster, username string) bool {
	return r.GetOrCreate(broadcaster).AddAdmin(normalize(username))
}

// RemoveAdmin revokes username's admin rights on broadcaster's channel.
func (r *Registry) RemoveAdmin(broadcaster, username string) bool {
	return r.GetOrCreate(broadcaster).RemoveAdmin(normalize(username))
}

// Admins lists the admins of broadcaster's channel.
func (r *Registry) Admins(broadcaster string) []string {
	return r.GetOrCreate(broadcaster).Admins()
}

// IsAdmin reports whether username administers broadcaster's channel.
// Both sides compare case-insensitively. Unknown channels are not created.
func (r *Registry) IsAdmin(broadcaster, username string) bool {
	ch, ok := r.Lookup(broadcaster)
	if !ok {
		return false
	}
	return ch.HasAdmin(normalize(username))
}

// IsBroadcaster reports whether username owns broadcaster's channel.
func (r *Registry) IsBroadcaster(broadcaster, username string) bool {
	b := normalize(broadcaster)
	return b != "" && b == normalize(username)
}

// CanManage reports whether username may mutate broadcaster's assets.
func (r *Registry) CanManage(broadcaster, username string) bool {
	return r.IsBroadcaster(broadcaster, username) || r.IsAdmin(broadcaster, username)
}

// AdminChannelsFor returns, sorted, the broadcasters that list username as admin.
func (r *Registry) AdminChannelsFor(username string) []string {
	u := normalize(username)

	r.mu.RLock()
	channels := make([]*domain.Channel, 0, len(r.channels))
	for _, ch := range r.channels {
		channels = append(channels, ch)
	}
	r.mu.RUnlock()

	result := make([]string, 0)
	for _, ch := range channels {
		if ch.HasAdmin(u) {
			result = append(result, ch.Broadcaster())
		}
	}
	sort.Strings(result)
	return result
}
