package domain

import (
	"sort"
	"strings"
	"sync"
)

// NormalizeBroadcaster returns the canonical key of a broadcaster identity.
// Registry keys and hub topics are both derived from it.
func NormalizeBroadcaster(broadcaster string) string {
	return strings.ToLower(strings.TrimSpace(broadcaster))
}

// Channel is a broadcaster's namespace of admins and assets.
// Assets are stored by value; every accessor hands out copies.
type Channel struct {
	broadcaster string

	mu     sync.RWMutex
	admins map[string]struct{}
	assets map[string]Asset

	// seq serializes a mutation together with the event announcing it.
	seq sync.Mutex
}

// NewChannel creates an empty channel for broadcaster.
func NewChannel(broadcaster string) *Channel {
	return &Channel{
		broadcaster: NormalizeBroadcaster(broadcaster),
		admins:      make(map[string]struct{}),
		assets:      make(map[string]Asset),
	}
}

// Broadcaster returns the normalized channel key.
func (c *Channel) Broadcaster() string {
	return c.broadcaster
}

// Sequence runs fn while holding the channel's event order. Mutations that
// publish an event do both inside fn, so subscribers observe events in the
// same order the changes were applied.
func (c *Channel) Sequence(fn func()) {
	c.seq.Lock()
	defer c.seq.Unlock()
	fn()
}

// AddAdmin adds username and reports whether the set changed.
func (c *Channel) AddAdmin(username string) bool {
	u := strings.ToLower(username)
	if u == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.admins[u]; ok {
		return false
	}
	c.admins[u] = struct{}{}
	return true
}

// RemoveAdmin removes username and reports whether the set changed.
func (c *Channel) RemoveAdmin(username string) bool {
	u := strings.ToLower(username)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.admins[u]; !ok {
		return false
	}
	delete(c.admins, u)
	return true
}

func (c *Channel) HasAdmin(username string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.admins[strings.ToLower(username)]
	return ok
}

// Admins returns the admin usernames in sorted order.
func (c *Channel) Admins() []string {
	c.mu.RLock()
	admins := make([]string, 0, len(c.admins))
	for u := range c.admins {
		admins = append(admins, u)
	}
	c.mu.RUnlock()
	sort.Strings(admins)
	return admins
}

// Assets returns a snapshot of all assets ordered by creation time, then id.
func (c *Channel) Assets() []Asset {
	c.mu.RLock()
	assets := make([]Asset, 0, len(c.assets))
	for _, a := range c.assets {
		assets = append(assets, a)
	}
	c.mu.RUnlock()

	sort.Slice(assets, func(i, j int) bool {
		if !assets[i].CreatedAt.Equal(assets[j].CreatedAt) {
			return assets[i].CreatedAt.Before(assets[j].CreatedAt)
		}
		return assets[i].ID < assets[j].ID
	})
	return assets
}

func (c *Channel) Asset(id string) (Asset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.assets[id]
	return a, ok
}

// PutAsset inserts or replaces the asset keyed by its id.
func (c *Channel) PutAsset(a Asset) {
	c.mu.Lock()
	c.assets[a.ID] = a
	c.mu.Unlock()
}

// UpdateAsset applies fn to the stored asset under the write lock and
// returns the resulting snapshot. It returns false if id is absent.
func (c *Channel) UpdateAsset(id string, fn func(*Asset)) (Asset, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.assets[id]
	if !ok {
		return Asset{}, false
	}
	fn(&a)
	c.assets[id] = a
	return a, true
}

// RemoveAsset deletes id and returns the removed asset, if any.
func (c *Channel) RemoveAsset(id string) (Asset, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.assets[id]
	if ok {
		delete(c.assets, id)
	}
	return a, ok
}
