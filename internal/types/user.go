package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"
)

const (
  RoleUser  = "user"
  RoleAdmin = "admin"
)

type User struct {
  ID              uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  Name            string         `gorm:"not null;column:name" json:"name"`
  Email           string         `gorm:"uniqueIndex;not null;column:email" json:"email"`
  Password        string         `gorm:"not null;column:password" json:"-"`
  Role            string         `gorm:"not null;default:'user';column:role" json:"role"`
  AvatarBucketKey string         `gorm:"column:avatar_bucket_key" json:"avatar_bucket_key,omitempty"`
  AvatarURL       string         `gorm:"column:avatar_url" json:"avatar_url,omitempty"`
  CreatedAt       time.Time      `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt       time.Time      `gorm:"not null;default:now()" json:"updated_at"`
  DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "user" }

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
