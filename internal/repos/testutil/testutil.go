package testutil

import (
  "os"
  "testing"

  "gorm.io/driver/postgres"
  "gorm.io/gorm"

  "github.com/voxelbay/voxelbay-backend/internal/logger"
  "github.com/voxelbay/voxelbay-backend/internal/types"
)

// DB opens the database named by TEST_POSTGRES_DSN and migrates the
// schema. Tests that need a live database skip when the variable is
// unset, so the rest of the suite stays runnable anywhere.
func DB(t *testing.T) *gorm.DB {
  t.Helper()
  dsn := os.Getenv("TEST_POSTGRES_DSN")
  if dsn == "" {
    t.Skip("TEST_POSTGRES_DSN not set, skipping database test")
  }
  db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
  if err != nil {
    t.Fatalf("failed to open test database: %v", err)
  }
  if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
    t.Fatalf("failed to ensure uuid extension: %v", err)
  }
  if err := db.AutoMigrate(
    &types.User{},
    &types.UserToken{},
    &types.Asset{},
    &types.Comment{},
    &types.Cart{},
    &types.CartItem{},
    &types.DownloadHistory{},
  ); err != nil {
    t.Fatalf("failed to migrate test schema: %v", err)
  }
  return db
}

func Logger(t *testing.T) *logger.Logger {
  t.Helper()
  log, err := logger.New("development")
  if err != nil {
    t.Fatalf("failed to init logger: %v", err)
  }
  return log
}
