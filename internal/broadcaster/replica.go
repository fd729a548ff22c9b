package broadcaster

import (
	"errors"
	"fmt"

	"github.com/weiawesome/wes-io-live/overlay-service/internal/domain"
)

// Bus-only event types. They update peer state and never reach overlay clients.
const (
	busAdminGranted = "ADMIN_GRANTED"
	busAdminRevoked = "ADMIN_REVOKED"
)

// replica is the payload exchanged between instances. Asset events carry the
// whole asset, storage paths included, so a peer sharing the storage backend
// can list and serve it.
type replica struct {
	Broadcaster string        `json:"broadcaster"`
	Asset       *domain.Asset `json:"asset,omitempty"`
	AssetID     string        `json:"assetId,omitempty"`
	Username    string        `json:"username,omitempty"`
}

func newReplica(event domain.AssetEvent) replica {
	rep := replica{Broadcaster: event.Channel(), AssetID: event.AssetID()}
	switch e := event.(type) {
	case domain.AssetCreated:
		rep.Asset = &e.Asset
	case domain.AssetUpdated:
		rep.Asset = &e.Asset
	case domain.AssetVisibilityChanged:
		rep.Asset = &e.Asset
	}
	return rep
}

// assetEvent rebuilds the event a peer published.
func (r replica) assetEvent(eventType domain.EventType) (domain.AssetEvent, error) {
	if r.Broadcaster == "" {
		return nil, errors.New("missing broadcaster")
	}

	switch eventType {
	case domain.EventDeleted:
		if r.AssetID == "" {
			return nil, errors.New("missing asset id")
		}
		return domain.AssetDeleted{Broadcaster: r.Broadcaster, ID: r.AssetID}, nil
	case domain.EventCreated, domain.EventUpdated, domain.EventVisibility:
	default:
		return nil, fmt.Errorf("unknown event type %q", eventType)
	}

	if r.Asset == nil || r.Asset.ID == "" {
		return nil, errors.New("missing asset")
	}
	asset := *r.Asset
	switch eventType {
	case domain.EventCreated:
		return domain.AssetCreated{Broadcaster: r.Broadcaster, Asset: asset}, nil
	case domain.EventUpdated:
		return domain.AssetUpdated{Broadcaster: r.Broadcaster, Asset: asset}, nil
	default:
		return domain.AssetVisibilityChanged{Broadcaster: r.Broadcaster, Asset: asset}, nil
	}
}
