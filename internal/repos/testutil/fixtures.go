package testutil

import (
  "encoding/json"
  "fmt"
  "testing"

  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/google/uuid"

  "github.com/voxelbay/voxelbay-backend/internal/types"
)

// SeedUser inserts a user with a unique email so parallel test runs
// never collide on the unique index.
func SeedUser(t *testing.T, db *gorm.DB) *types.User {
  t.Helper()
  user := &types.User{
    ID:       uuid.New(),
    Name:     "Test User",
    Email:    fmt.Sprintf("user-%s@example.com", uuid.NewString()),
    Password: "not-a-real-hash",
    Role:     types.RoleUser,
  }
  if err := db.Create(user).Error; err != nil {
    t.Fatalf("failed to seed user: %v", err)
  }
  return user
}

func SeedAsset(t *testing.T, db *gorm.DB, owner *types.User, title, kind string, tags []string) *types.Asset {
  t.Helper()
  if tags == nil {
    tags = []string{}
  }
  tagsJSON, _ := json.Marshal(tags)
  filesJSON, _ := json.Marshal([]string{"https://example.com/file"})
  imagesJSON, _ := json.Marshal([]string{})
  asset := &types.Asset{
    ID:            uuid.New(),
    Title:         title,
    Kind:          kind,
    Files:         datatypes.JSON(filesJSON),
    Images:        datatypes.JSON(imagesJSON),
    Tags:          datatypes.JSON(tagsJSON),
    OwnerID:       owner.ID,
    DriveFolderID: "folder-" + uuid.NewString(),
  }
  if err := db.Create(asset).Error; err != nil {
    t.Fatalf("failed to seed asset: %v", err)
  }
  return asset
}
