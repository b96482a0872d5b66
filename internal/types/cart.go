package types

import (
  "time"

  "github.com/google/uuid"
)

// Cart holds one row per user; membership lives in CartItem so the
// composite unique index can reject duplicate adds even under
// concurrent requests.
type Cart struct {
  ID        uuid.UUID   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  UserID    uuid.UUID   `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
  User      *User       `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
  Items     []*CartItem `gorm:"foreignKey:CartID;references:ID" json:"items,omitempty"`
  CreatedAt time.Time   `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt time.Time   `gorm:"not null;default:now()" json:"updated_at"`
}

func (Cart) TableName() string { return "cart" }

type CartItem struct {
  ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  CartID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_item_cart_asset,priority:1" json:"cart_id"`
  Cart      *Cart     `gorm:"constraint:OnDelete:CASCADE;foreignKey:CartID;references:ID" json:"-"`
  AssetID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_item_cart_asset,priority:2" json:"asset_id"`
  Asset     *Asset    `gorm:"constraint:OnDelete:CASCADE;foreignKey:AssetID;references:ID" json:"asset,omitempty"`
  CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (CartItem) TableName() string { return "cart_item" }
