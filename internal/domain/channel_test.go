package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelAdmins(t *testing.T) {
	c := NewChannel("Alice")
	assert.Equal(t, "alice", c.Broadcaster())

	assert.True(t, c.AddAdmin("Bob"))
	assert.False(t, c.AddAdmin("BOB"))
	assert.False(t, c.AddAdmin(""))
	assert.True(t, c.HasAdmin("bob"))
	assert.Equal(t, []string{"bob"}, c.Admins())

	assert.True(t, c.RemoveAdmin("bob"))
	assert.False(t, c.RemoveAdmin("bob"))
	assert.False(t, c.HasAdmin("Bob"))
	assert.Empty(t, c.Admins())
}

func TestChannelAssetsOrdered(t *testing.T) {
	c := NewChannel("alice")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	c.PutAsset(Asset{ID: "c", CreatedAt: base.Add(time.Second)})
	c.PutAsset(Asset{ID: "b", CreatedAt: base})
	c.PutAsset(Asset{ID: "a", CreatedAt: base})

	var ids []string
	for _, a := range c.Assets() {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestChannelAssetSnapshots(t *testing.T) {
	c := NewChannel("alice")
	c.PutAsset(Asset{ID: "a1", Name: "logo"})

	snap, ok := c.Asset("a1")
	require.True(t, ok)
	snap.Name = "changed"

	stored, _ := c.Asset("a1")
	assert.Equal(t, "logo", stored.Name)

	updated, ok := c.UpdateAsset("a1", func(a *Asset) { a.Hidden = true })
	require.True(t, ok)
	assert.True(t, updated.Hidden)

	_, ok = c.UpdateAsset("missing", func(a *Asset) { a.Hidden = true })
	assert.False(t, ok)

	removed, ok := c.RemoveAsset("a1")
	require.True(t, ok)
	assert.Equal(t, "a1", removed.ID)
	_, ok = c.RemoveAsset("a1")
	assert.False(t, ok)
}

func TestTransformApply(t *testing.T) {
	z := 3
	a := Asset{X: 1, Y: 1, Width: 10, Height: 10, ZIndex: &z}

	Transform{X: -5, Y: 2, Width: -1, Height: 0, Rotation: 720}.Apply(&a)

	assert.Equal(t, -5.0, a.X)
	assert.Equal(t, 2.0, a.Y)
	assert.Equal(t, -1.0, a.Width)
	assert.Equal(t, 0.0, a.Height)
	assert.Equal(t, 720.0, a.Rotation)
	require.NotNil(t, a.ZIndex)
	assert.Equal(t, 3, *a.ZIndex)
	assert.Nil(t, a.Speed)
}
