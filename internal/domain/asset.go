package domain

import (
	"time"
)

// DefaultMediaType is used when an upload declares no content type.
const DefaultMediaType = "application/octet-stream"

// Asset is one positioned overlay element on a broadcaster's canvas.
// ID, Broadcaster and CreatedAt never change after creation.
type Asset struct {
	ID                string    `json:"id"`
	Broadcaster       string    `json:"broadcaster"`
	Name              string    `json:"name"`
	X                 float64   `json:"x"`
	Y                 float64   `json:"y"`
	Width             float64   `json:"width"`
	Height            float64   `json:"height"`
	Rotation          float64   `json:"rotation"`
	Speed             *float64  `json:"speed,omitempty"`
	Muted             *bool     `json:"muted,omitempty"`
	ZIndex            *int      `json:"zIndex,omitempty"`
	MediaType         string    `json:"mediaType"`
	OriginalMediaType string    `json:"originalMediaType"`
	Hidden            bool      `json:"hidden"`
	CreatedAt         time.Time `json:"createdAt"`

	// Storage back-references, relative to the content and preview roots.
	// Only instances sharing the storage backend exchange them; clients see
	// AssetView instead.
	ContentPath string `json:"contentPath"`
	PreviewPath string `json:"previewPath,omitempty"`
}

// Transform holds the replaceable geometry of an asset.
type Transform struct {
	X        float64
	Y        float64
	Width    float64
	Height   float64
	Rotation float64
	ZIndex   *int
	Speed    *float64
	Muted    *bool
}

// Apply replaces the geometry fields and any optional field that is set.
func (t Transform) Apply(a *Asset) {
	a.X = t.X
	a.Y = t.Y
	a.Width = t.Width
	a.Height = t.Height
	a.Rotation = t.Rotation
	if t.ZIndex != nil {
		z := *t.ZIndex
		a.ZIndex = &z
	}
	if t.Speed != nil {
		s := *t.Speed
		a.Speed = &s
	}
	if t.Muted != nil {
		m := *t.Muted
		a.Muted = &m
	}
}

// HasPreview reports whether a preview image was stored for the asset.
func (a *Asset) HasPreview() bool {
	return a.PreviewPath != ""
}

// Upload is the raw payload of a create request.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}
