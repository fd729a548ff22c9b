package domain

import (
	"time"
)

// ScriptMediaType is the media type recorded for code assets.
const ScriptMediaType = "application/javascript"

// ScriptAsset is a code asset owned by a broadcaster. Unlike canvas assets
// it is persisted in the database.
type ScriptAsset struct {
	ID                string    `json:"id"`
	Broadcaster       string    `json:"broadcaster"`
	Name              string    `json:"name"`
	Source            string    `json:"source"`
	MediaType         string    `json:"mediaType"`
	OriginalMediaType string    `json:"originalMediaType"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// ScriptAssetModel is the GORM model for the script_assets table.
type ScriptAssetModel struct {
	ID                string    `gorm:"type:varchar(36);primaryKey"`
	Broadcaster       string    `gorm:"type:varchar(100);index;not null"`
	Name              string    `gorm:"type:varchar(200);not null"`
	Source            string    `gorm:"type:text;not null"`
	MediaType         string    `gorm:"type:varchar(100);not null"`
	OriginalMediaType string    `gorm:"type:varchar(100)"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for ScriptAssetModel.
func (ScriptAssetModel) TableName() string {
	return "script_assets"
}

// ToDomain converts the model to a ScriptAsset.
func (m *ScriptAssetModel) ToDomain() *ScriptAsset {
	return &ScriptAsset{
		ID:                m.ID,
		Broadcaster:       m.Broadcaster,
		Name:              m.Name,
		Source:            m.Source,
		MediaType:         m.MediaType,
		OriginalMediaType: m.OriginalMediaType,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// ScriptAssetToModel converts a ScriptAsset to its GORM model.
func ScriptAssetToModel(s *ScriptAsset) *ScriptAssetModel {
	return &ScriptAssetModel{
		ID:                s.ID,
		Broadcaster:       s.Broadcaster,
		Name:              s.Name,
		Source:            s.Source,
		MediaType:         s.MediaType,
		OriginalMediaType: s.OriginalMediaType,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}
