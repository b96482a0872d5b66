package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"
)

// Comment is the single source of truth for asset feedback. The owning
// asset only carries the derived rating and comment count.
type Comment struct {
  ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  AssetID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"asset_id"`
  Asset     *Asset         `gorm:"constraint:OnDelete:CASCADE;foreignKey:AssetID;references:ID" json:"asset,omitempty"`
  UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
  Author    *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"author,omitempty"`
  Text      string         `gorm:"not null;column:text" json:"text"`
  Score     int            `gorm:"not null;default:0;column:score" json:"score"`
  CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
  DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Comment) TableName() string { return "comment" }
