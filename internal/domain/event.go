package domain

import (
	"encoding/json"
)

// EventType is the wire tag of an AssetEvent.
type EventType string

const (
	EventCreated    EventType = "CREATED"
	EventUpdated    EventType = "UPDATED"
	EventVisibility EventType = "VISIBILITY"
	EventDeleted    EventType = "DELETED"
)

// AssetEvent is a state transition on a channel's canvas. The set of
// implementations is closed: AssetCreated, AssetUpdated,
// AssetVisibilityChanged and AssetDeleted.
type AssetEvent interface {
	Type() EventType
	Channel() string
	AssetID() string
	assetEvent()
}

// AssetCreated is emitted after an asset is stored and registered.
type AssetCreated struct {
	Broadcaster string
	Asset       Asset
}

// AssetUpdated is emitted after a transform change.
type AssetUpdated struct {
	Broadcaster string
	Asset       Asset
}

// AssetVisibilityChanged is emitted after the hidden flag is set.
type AssetVisibilityChanged struct {
	Broadcaster string
	Asset       Asset
}

// AssetDeleted is emitted after an asset is removed. Only the id is carried.
type AssetDeleted struct {
	Broadcaster string
	ID          string
}

func (AssetCreated) Type() EventType           { return EventCreated }
func (AssetUpdated) Type() EventType           { return EventUpdated }
func (AssetVisibilityChanged) Type() EventType { return EventVisibility }
func (AssetDeleted) Type() EventType           { return EventDeleted }

func (e AssetCreated) Channel() string           { return e.Broadcaster }
func (e AssetUpdated) Channel() string           { return e.Broadcaster }
func (e AssetVisibilityChanged) Channel() string { return e.Broadcaster }
func (e AssetDeleted) Channel() string           { return e.Broadcaster }

func (e AssetCreated) AssetID() string           { return e.Asset.ID }
func (e AssetUpdated) AssetID() string           { return e.Asset.ID }
func (e AssetVisibilityChanged) AssetID() string { return e.Asset.ID }
func (e AssetDeleted) AssetID() string           { return e.ID }

func (AssetCreated) assetEvent()           {}
func (AssetUpdated) assetEvent()           {}
func (AssetVisibilityChanged) assetEvent() {}
func (AssetDeleted) assetEvent()           {}

// eventMessage is the JSON shape pushed to overlay clients.
type eventMessage struct {
	Type    EventType  `json:"type"`
	Channel string     `json:"channel"`
	Payload *AssetView `json:"payload,omitempty"`
	AssetID string     `json:"assetId"`
}

func (e AssetCreated) MarshalJSON() ([]byte, error) {
	return marshalWithAsset(e, e.Asset)
}

func (e AssetUpdated) MarshalJSON() ([]byte, error) {
	return marshalWithAsset(e, e.Asset)
}

func (e AssetVisibilityChanged) MarshalJSON() ([]byte, error) {
	return marshalWithAsset(e, e.Asset)
}

func (e AssetDeleted) MarshalJSON() ([]byte, error) {
	return json.Marshal(eventMessage{
		Type:    e.Type(),
		Channel: e.Broadcaster,
		AssetID: e.ID,
	})
}

func marshalWithAsset(e AssetEvent, a Asset) ([]byte, error) {
	view := NewAssetView(a)
	return json.Marshal(eventMessage{
		Type:    e.Type(),
		Channel: e.Channel(),
		Payload: &view,
		AssetID: a.ID,
	})
}
