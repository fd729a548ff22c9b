package domain

// TransformRequest is the body of a transform update.
type TransformRequest struct {
	X        *float64 `json:"x" binding:"required"`
	Y        *float64 `json:"y" binding:"required"`
	Width    *float64 `json:"width" binding:"required"`
	Height   *float64 `json:"height" binding:"required"`
	Rotation *float64 `json:"rotation" binding:"required"`
	ZIndex   *int     `json:"zIndex"`
	Speed    *float64 `json:"speed"`
	Muted    *bool    `json:"muted"`
}

// ToTransform converts a bound request. Callers must have validated it.
func (r *TransformRequest) ToTransform() Transform {
	return Transform{
		X:        *r.X,
		Y:        *r.Y,
		Width:    *r.Width,
		Height:   *r.Height,
		Rotation: *r.Rotation,
		ZIndex:   r.ZIndex,
		Speed:    r.Speed,
		Muted:    r.Muted,
	}
}

// VisibilityRequest is the body of a visibility update.
type VisibilityRequest struct {
	Hidden *bool `json:"hidden" binding:"required"`
}

// AdminRequest is the body of an add-admin call.
type AdminRequest struct {
	Username string `json:"username" binding:"required,min=1,max=100"`
}

// CodeAssetRequest creates or replaces a script asset.
type CodeAssetRequest struct {
	Name   string `json:"name" binding:"required,min=1,max=200"`
	Source string `json:"source" binding:"required"`
}

// AdminChannelsResponse lists the channels a user administers.
type AdminChannelsResponse struct {
	Channels []string `json:"channels"`
}
