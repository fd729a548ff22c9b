package domain

import (
	"fmt"
	"time"
)

// AssetView is the client-facing projection of an Asset. Storage paths are
// replaced with public fetch URLs.
type AssetView struct {
	ID                string    `json:"id"`
	Broadcaster       string    `json:"broadcaster"`
	Name              string    `json:"name"`
	URL               string    `json:"url"`
	PreviewURL        string    `json:"previewUrl,omitempty"`
	X                 float64   `json:"x"`
	Y                 float64   `json:"y"`
	Width             float64   `json:"width"`
	Height            float64   `json:"height"`
	Rotation          float64   `json:"rotation"`
	Speed             *float64  `json:"speed"`
	Muted             *bool     `json:"muted"`
	MediaType         string    `json:"mediaType"`
	OriginalMediaType string    `json:"originalMediaType"`
	ZIndex            *int      `json:"zIndex"`
	Hidden            bool      `json:"hidden"`
	CreatedAt         time.Time `json:"createdAt"`
}

// ContentURL is the public URL serving an asset's bytes.
func ContentURL(broadcaster, id string) string {
	return fmt.Sprintf("/api/channels/%s/assets/%s/content", broadcaster, id)
}

// PreviewURL is the public URL serving an asset's preview image.
func PreviewURL(broadcaster, id string) string {
	return fmt.Sprintf("/api/channels/%s/assets/%s/preview", broadcaster, id)
}

// NewAssetView projects a for serialization.
func NewAssetView(a Asset) AssetView {
	v := AssetView{
		ID:                a.ID,
		Broadcaster:       a.Broadcaster,
		Name:              a.Name,
		URL:               ContentURL(a.Broadcaster, a.ID),
		X:                 a.X,
		Y:                 a.Y,
		Width:             a.Width,
		Height:            a.Height,
		Rotation:          a.Rotation,
		Speed:             a.Speed,
		Muted:             a.Muted,
		MediaType:         a.MediaType,
		OriginalMediaType: a.OriginalMediaType,
		ZIndex:            a.ZIndex,
		Hidden:            a.Hidden,
		CreatedAt:         a.CreatedAt,
	}
	if a.HasPreview() {
		v.PreviewURL = PreviewURL(a.Broadcaster, a.ID)
	}
	return v
}

// NewAssetViews projects a slice of assets, preserving order.
func NewAssetViews(assets []Asset) []AssetView {
	views := make([]AssetView, len(assets))
	for i, a := range assets {
		views[i] = NewAssetView(a)
	}
	return views
}
