package repos

import (
  "context"
  "testing"

  "github.com/google/uuid"

  "github.com/voxelbay/voxelbay-backend/internal/repos/testutil"
  "github.com/voxelbay/voxelbay-backend/internal/types"
)

func seedCart(t *testing.T, repo CartRepo, userID uuid.UUID) *types.Cart {
  t.Helper()
  cart := &types.Cart{ID: uuid.New(), UserID: userID}
  if _, err := repo.Create(context.Background(), nil, []*types.Cart{cart}); err != nil {
    t.Fatalf("failed to seed cart: %v", err)
  }
  return cart
}

func TestCartRepo_GetByUserID_MissingReturnsNil(t *testing.T) {
  db := testutil.DB(t)
  repo := NewCartRepo(db, testutil.Logger(t))

  cart, err := repo.GetByUserID(context.Background(), nil, uuid.New())
  if err != nil {
    t.Fatalf("GetByUserID failed: %v", err)
  }
  if cart != nil {
    t.Fatalf("expected nil for missing cart, got %+v", cart)
  }
}

func TestCartRepo_AddItem_DuplicateRejectedByIndex(t *testing.T) {
  db := testutil.DB(t)
  repo := NewCartRepo(db, testutil.Logger(t))
  ctx := context.Background()

  user := testutil.SeedUser(t, db)
  asset := testutil.SeedAsset(t, db, user, "dup", "model", nil)
  cart := seedCart(t, repo, user.ID)

  first := &types.CartItem{ID: uuid.New(), CartID: cart.ID, AssetID: asset.ID}
  if err := repo.AddItem(ctx, nil, first); err != nil {
    t.Fatalf("first AddItem failed: %v", err)
  }
  second := &types.CartItem{ID: uuid.New(), CartID: cart.ID, AssetID: asset.ID}
  if err := repo.AddItem(ctx, nil, second); err == nil {
    t.Fatalf("expected unique index to reject duplicate cart item")
  }
}

func TestCartRepo_ItemExistsAndRemove(t *testing.T) {
  db := testutil.DB(t)
  repo := NewCartRepo(db, testutil.Logger(t))
  ctx := context.Background()

  user := testutil.SeedUser(t, db)
  asset := testutil.SeedAsset(t, db, user, "removable", "model", nil)
  cart := seedCart(t, repo, user.ID)

  item := &types.CartItem{ID: uuid.New(), CartID: cart.ID, AssetID: asset.ID}
  if err := repo.AddItem(ctx, nil, item); err != nil {
    t.Fatalf("AddItem failed: %v", err)
  }

  exists, err := repo.ItemExists(ctx, nil, cart.ID, asset.ID)
  if err != nil || !exists {
    t.Fatalf("expected item to exist (err %v)", err)
  }

  if err := repo.RemoveItem(ctx, nil, cart.ID, asset.ID); err != nil {
    t.Fatalf("RemoveItem failed: %v", err)
  }
  exists, err = repo.ItemExists(ctx, nil, cart.ID, asset.ID)
  if err != nil || exists {
    t.Fatalf("expected item to be gone (err %v)", err)
  }

  // Removing again is a no-op.
  if err := repo.RemoveItem(ctx, nil, cart.ID, asset.ID); err != nil {
    t.Fatalf("second RemoveItem should be a no-op, got %v", err)
  }
}

func TestCartRepo_ClearItems(t *testing.T) {
  db := testutil.DB(t)
  repo := NewCartRepo(db, testutil.Logger(t))
  ctx := context.Background()

  user := testutil.SeedUser(t, db)
  cart := seedCart(t, repo, user.ID)
  for i := 0; i < 2; i++ {
    asset := testutil.SeedAsset(t, db, user, "bulk", "model", nil)
    item := &types.CartItem{ID: uuid.New(), CartID: cart.ID, AssetID: asset.ID}
    if err := repo.AddItem(ctx, nil, item); err != nil {
      t.Fatalf("AddItem failed: %v", err)
    }
  }

  if err := repo.ClearItems(ctx, nil, cart.ID); err != nil {
    t.Fatalf("ClearItems failed: %v", err)
  }
  found, err := repo.GetByUserID(ctx, nil, user.ID)
  if err != nil {
    t.Fatalf("GetByUserID failed: %v", err)
  }
  if found == nil || len(found.Items) != 0 {
    t.Fatalf("expected empty cart, got %+v", found)
  }
}
