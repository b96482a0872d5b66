package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
)

// DownloadHistory snapshots the asset set of one completed bundle
// download. AssetIDs is a JSON array of uuid strings so the record
// survives later asset deletion.
type DownloadHistory struct {
  ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
  User      *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
  AssetIDs  datatypes.JSON `gorm:"column:asset_ids;type:jsonb" json:"asset_ids"`
  CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (DownloadHistory) TableName() string { return "download_history" }
