package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"
)

// Asset is a user-uploaded digital good (3D model, script, image, pack).
// File and image lists are stored as JSON arrays: Files holds the public URLs
// of the primary files, Images holds the remote file IDs of the descriptive
// images. The binary content itself lives under DriveFolderID in the remote
// store.
type Asset struct {
  ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  Title        string         `gorm:"not null;column:title" json:"title"`
  Kind         string         `gorm:"not null;index;column:kind" json:"kind"`
  Description  string         `gorm:"column:description" json:"description"`
  Files        datatypes.JSON `gorm:"column:files;type:jsonb" json:"files"`
  Images       datatypes.JSON `gorm:"column:images;type:jsonb" json:"images"`
  Tags         datatypes.JSON `gorm:"column:tags;type:jsonb" json:"tags"`
  OwnerID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"owner_id"`
  Owner        *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:OwnerID;references:ID" json:"owner,omitempty"`
  Comments     []*Comment     `gorm:"foreignKey:AssetID;references:ID" json:"comments,omitempty"`
  Rating       float64        `gorm:"not null;default:0;column:rating" json:"rating"`
  CommentCount int            `gorm:"not null;default:0;column:comment_count" json:"comment_count"`
  DriveFolderID string        `gorm:"column:drive_folder_id" json:"drive_folder_id,omitempty"`
  CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt    time.Time      `gorm:"not null;default:now()" json:"updated_at"`
  DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Asset) TableName() string { return "asset" }
