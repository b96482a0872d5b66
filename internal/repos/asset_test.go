package repos

import (
  "context"
  "testing"

  "github.com/google/uuid"

  "github.com/voxelbay/voxelbay-backend/internal/repos/testutil"
)

func TestAssetRepo_ListFiltersByKind(t *testing.T) {
  db := testutil.DB(t)
  repo := NewAssetRepo(db, testutil.Logger(t))
  ctx := context.Background()

  owner := testutil.SeedUser(t, db)
  kind := "kind-" + uuid.NewString()
  testutil.SeedAsset(t, db, owner, "spaceship", kind, nil)
  testutil.SeedAsset(t, db, owner, "texture pack", "other-"+uuid.NewString(), nil)

  assets, total, err := repo.List(ctx, nil, AssetListFilter{Kind: kind})
  if err != nil {
    t.Fatalf("List failed: %v", err)
  }
  if total != 1 || len(assets) != 1 {
    t.Fatalf("expected exactly one asset of kind %q, got %d (total %d)", kind, len(assets), total)
  }
  if assets[0].Title != "spaceship" {
    t.Fatalf("unexpected asset: %+v", assets[0])
  }
}

func TestAssetRepo_ListFiltersByTag(t *testing.T) {
  db := testutil.DB(t)
  repo := NewAssetRepo(db, testutil.Logger(t))
  ctx := context.Background()

  owner := testutil.SeedUser(t, db)
  tag := "tag-" + uuid.NewString()
  testutil.SeedAsset(t, db, owner, "tagged", "model", []string{tag, "common"})
  testutil.SeedAsset(t, db, owner, "untagged", "model", []string{"common"})

  assets, total, err := repo.List(ctx, nil, AssetListFilter{Tag: tag})
  if err != nil {
    t.Fatalf("List failed: %v", err)
  }
  if total != 1 || len(assets) != 1 || assets[0].Title != "tagged" {
    t.Fatalf("expected only the tagged asset, got %+v (total %d)", assets, total)
  }
}

func TestAssetRepo_ListPaginates(t *testing.T) {
  db := testutil.DB(t)
  repo := NewAssetRepo(db, testutil.Logger(t))
  ctx := context.Background()

  owner := testutil.SeedUser(t, db)
  kind := "kind-" + uuid.NewString()
  for i := 0; i < 3; i++ {
    testutil.SeedAsset(t, db, owner, "asset", kind, nil)
  }

  assets, total, err := repo.List(ctx, nil, AssetListFilter{Kind: kind, Limit: 2, Page: 1})
  if err != nil {
    t.Fatalf("List failed: %v", err)
  }
  if total != 3 {
    t.Fatalf("expected total 3, got %d", total)
  }
  if len(assets) != 2 {
    t.Fatalf("expected page of 2, got %d", len(assets))
  }

  assets, _, err = repo.List(ctx, nil, AssetListFilter{Kind: kind, Limit: 2, Page: 2})
  if err != nil {
    t.Fatalf("List failed: %v", err)
  }
  if len(assets) != 1 {
    t.Fatalf("expected 1 asset on second page, got %d", len(assets))
  }
}

func TestAssetRepo_GetByIDPopulated_MissingReturnsNil(t *testing.T) {
  db := testutil.DB(t)
  repo := NewAssetRepo(db, testutil.Logger(t))
  ctx := context.Background()

  asset, err := repo.GetByIDPopulated(ctx, nil, uuid.New())
  if err != nil {
    t.Fatalf("GetByIDPopulated failed: %v", err)
  }
  if asset != nil {
    t.Fatalf("expected nil for missing asset, got %+v", asset)
  }
}

func TestAssetRepo_UpdateFields(t *testing.T) {
  db := testutil.DB(t)
  repo := NewAssetRepo(db, testutil.Logger(t))
  ctx := context.Background()

  owner := testutil.SeedUser(t, db)
  asset := testutil.SeedAsset(t, db, owner, "rated", "model", nil)

  err := repo.UpdateFields(ctx, nil, asset.ID, map[string]interface{}{
    "rating":        4.5,
    "comment_count": 2,
  })
  if err != nil {
    t.Fatalf("UpdateFields failed: %v", err)
  }

  found, err := repo.GetByIDs(ctx, nil, []uuid.UUID{asset.ID})
  if err != nil || len(found) != 1 {
    t.Fatalf("GetByIDs failed: %v (%d rows)", err, len(found))
  }
  if found[0].Rating != 4.5 || found[0].CommentCount != 2 {
    t.Fatalf("fields not updated: %+v", found[0])
  }
}
