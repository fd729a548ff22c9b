package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetEventJSON(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	asset := Asset{
		ID:          "a1",
		Broadcaster: "alice",
		Name:        "logo",
		Width:       2,
		Height:      2,
		MediaType:   "image/png",
		CreatedAt:   created,
		ContentPath: "alice/a1.png",
		PreviewPath: "alice/a1.png",
	}

	data, err := json.Marshal(AssetCreated{Broadcaster: "alice", Asset: asset})
	require.NoError(t, err)

	var msg map[string]any
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "CREATED", msg["type"])
	assert.Equal(t, "alice", msg["channel"])
	assert.Equal(t, "a1", msg["assetId"])

	payload, ok := msg["payload"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "/api/channels/alice/assets/a1/content", payload["url"])
	assert.Equal(t, "/api/channels/alice/assets/a1/preview", payload["previewUrl"])
	assert.NotContains(t, payload, "ContentPath")
}

func TestAssetDeletedJSON(t *testing.T) {
	data, err := json.Marshal(AssetDeleted{Broadcaster: "alice", ID: "a1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"DELETED","channel":"alice","assetId":"a1"}`, string(data))
}

func TestAssetEventVariants(t *testing.T) {
	a := Asset{ID: "a1"}
	events := []AssetEvent{
		AssetCreated{Broadcaster: "b", Asset: a},
		AssetUpdated{Broadcaster: "b", Asset: a},
		AssetVisibilityChanged{Broadcaster: "b", Asset: a},
		AssetDeleted{Broadcaster: "b", ID: "a1"},
	}
	want := []EventType{EventCreated, EventUpdated, EventVisibility, EventDeleted}

	for i, e := range events {
		assert.Equal(t, want[i], e.Type())
		assert.Equal(t, "b", e.Channel())
		assert.Equal(t, "a1", e.AssetID())
	}
}

func TestNewAssetViewWithoutPreview(t *testing.T) {
	v := NewAssetView(Asset{ID: "x", Broadcaster: "alice"})
	assert.Equal(t, "/api/channels/alice/assets/x/content", v.URL)
	assert.Empty(t, v.PreviewURL)
}
