package services

import (
  "context"
  "encoding/json"
  "fmt"
  "io"
  "os"
  "testing"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/voxelbay/voxelbay-backend/internal/clients/gcp"
  "github.com/voxelbay/voxelbay-backend/internal/repos/testutil"
  "github.com/voxelbay/voxelbay-backend/internal/requestdata"
  "github.com/voxelbay/voxelbay-backend/internal/types"
)

// Function-field fakes so each test overrides only what it needs.

type fakeCartRepo struct {
  getByUserFn  func(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Cart, error)
  clearItemsFn func(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) error
}

func (f *fakeCartRepo) Create(ctx context.Context, tx *gorm.DB, carts []*types.Cart) ([]*types.Cart, error) {
  return carts, nil
}

func (f *fakeCartRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Cart, error) {
  return f.getByUserFn(ctx, tx, userID)
}

func (f *fakeCartRepo) AddItem(ctx context.Context, tx *gorm.DB, item *types.CartItem) error {
  return nil
}

func (f *fakeCartRepo) ItemExists(ctx context.Context, tx *gorm.DB, cartID, assetID uuid.UUID) (bool, error) {
  return false, nil
}

func (f *fakeCartRepo) RemoveItem(ctx context.Context, tx *gorm.DB, cartID, assetID uuid.UUID) error {
  return nil
}

func (f *fakeCartRepo) ClearItems(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) error {
  if f.clearItemsFn != nil {
    return f.clearItemsFn(ctx, tx, cartID)
  }
  return nil
}

type fakeHistoryRepo struct {
  created []*types.DownloadHistory
}

func (f *fakeHistoryRepo) Create(ctx context.Context, tx *gorm.DB, records []*types.DownloadHistory) ([]*types.DownloadHistory, error) {
  f.created = append(f.created, records...)
  return records, nil
}

func (f *fakeHistoryRepo) GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.DownloadHistory, error) {
  return nil, nil
}

type fakeDrive struct {
  rootFolderID string
  listFolderFn func(ctx context.Context, folderID string) ([]*gcp.DriveFile, error)
  findFolderFn func(ctx context.Context, name, parentID string) (string, error)
  downloadFn   func(ctx context.Context, fileID, destPath string) error
}

func (f *fakeDrive) RootFolderID() string { return f.rootFolderID }

func (f *fakeDrive) CreateFolder(ctx context.Context, name, parentID string) (string, error) {
  return "", fmt.Errorf("not implemented")
}

func (f *fakeDrive) Upload(ctx context.Context, localPath, name, folderID string) (*gcp.DriveFile, error) {
  return nil, fmt.Errorf("not implemented")
}

func (f *fakeDrive) Delete(ctx context.Context, fileID string) error { return nil }

func (f *fakeDrive) ListFolder(ctx context.Context, folderID string) ([]*gcp.DriveFile, error) {
  return f.listFolderFn(ctx, folderID)
}

func (f *fakeDrive) FindFolderByName(ctx context.Context, name, parentID string) (string, error) {
  if f.findFolderFn == nil {
    return "", fmt.Errorf("unexpected folder lookup for %q", name)
  }
  return f.findFolderFn(ctx, name, parentID)
}

func (f *fakeDrive) Download(ctx context.Context, fileID, destPath string) error {
  if f.downloadFn != nil {
    return f.downloadFn(ctx, fileID, destPath)
  }
  return os.WriteFile(destPath, []byte("payload-"+fileID), 0o644)
}

func (f *fakeDrive) GetFileMeta(ctx context.Context, fileID string) (*gcp.DriveFile, error) {
  return nil, fmt.Errorf("not implemented")
}

func (f *fakeDrive) OpenFile(ctx context.Context, fileID string) (io.ReadCloser, error) {
  return nil, fmt.Errorf("not implemented")
}

func cartWith(userID uuid.UUID, items ...*types.CartItem) *types.Cart {
  return &types.Cart{ID: uuid.New(), UserID: userID, Items: items}
}

func bundleService(t *testing.T, cartRepo *fakeCartRepo, history *fakeHistoryRepo, drive *fakeDrive) CartService {
  t.Helper()
  return NewCartService(nil, testutil.Logger(t), cartRepo, nil, history, drive)
}

// The history snapshot records every asset that was in the cart, even
// ones whose files could not be fetched for the archive.
func TestCartService_DownloadBundle_SnapshotsFullCart(t *testing.T) {
  userID := uuid.New()
  okAsset := &types.Asset{ID: uuid.New(), Title: "Good Asset", DriveFolderID: "folder-ok"}
  emptyAsset := &types.Asset{ID: uuid.New(), Title: "Hollow Asset", DriveFolderID: "folder-empty"}
  cart := cartWith(userID,
    &types.CartItem{ID: uuid.New(), AssetID: okAsset.ID, Asset: okAsset},
    &types.CartItem{ID: uuid.New(), AssetID: emptyAsset.ID, Asset: emptyAsset},
  )

  cartRepo := &fakeCartRepo{
    getByUserFn: func(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Cart, error) {
      return cart, nil
    },
  }
  history := &fakeHistoryRepo{}
  drive := &fakeDrive{
    listFolderFn: func(ctx context.Context, folderID string) ([]*gcp.DriveFile, error) {
      if folderID == "folder-empty" {
        return nil, nil
      }
      return []*gcp.DriveFile{{ID: "file-1", Name: "model.fbx"}}, nil
    },
  }

  ctx := requestdata.WithRequestData(context.Background(), &requestdata.RequestData{UserID: userID})
  payload, err := bundleService(t, cartRepo, history, drive).DownloadBundle(ctx)
  if err != nil {
    t.Fatalf("bundle failed: %v", err)
  }
  defer payload.Cleanup()
  payload.Finalize(context.Background())

  if len(history.created) != 1 {
    t.Fatalf("expected one history record, got %d", len(history.created))
  }
  var got []uuid.UUID
  if err := json.Unmarshal(history.created[0].AssetIDs, &got); err != nil {
    t.Fatalf("failed to decode snapshot: %v", err)
  }
  if len(got) != 2 {
    t.Fatalf("expected snapshot of both cart assets, got %v", got)
  }
  found := map[uuid.UUID]bool{}
  for _, id := range got {
    found[id] = true
  }
  if !found[okAsset.ID] || !found[emptyAsset.ID] {
    t.Fatalf("snapshot missing a cart asset: bundled=%v skipped=%v got=%v",
      found[okAsset.ID], found[emptyAsset.ID], got)
  }
}

// An asset without a stored folder id falls back to the naming
// convention lookup instead of being skipped.
func TestCartService_DownloadBundle_FolderNameFallback(t *testing.T) {
  userID := uuid.New()
  asset := &types.Asset{ID: uuid.New(), Title: "Legacy Asset"}
  cart := cartWith(userID, &types.CartItem{ID: uuid.New(), AssetID: asset.ID, Asset: asset})

  cartRepo := &fakeCartRepo{
    getByUserFn: func(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Cart, error) {
      return cart, nil
    },
  }
  history := &fakeHistoryRepo{}
  lookedUp := ""
  drive := &fakeDrive{
    rootFolderID: "root-folder",
    findFolderFn: func(ctx context.Context, name, parentID string) (string, error) {
      lookedUp = name
      if parentID != "root-folder" {
        t.Fatalf("expected lookup under the root folder, got %q", parentID)
      }
      return "resolved-folder", nil
    },
    listFolderFn: func(ctx context.Context, folderID string) ([]*gcp.DriveFile, error) {
      if folderID != "resolved-folder" {
        t.Fatalf("expected listing of the resolved folder, got %q", folderID)
      }
      return []*gcp.DriveFile{{ID: "file-1", Name: "scene.blend"}}, nil
    },
  }

  ctx := requestdata.WithRequestData(context.Background(), &requestdata.RequestData{UserID: userID})
  payload, err := bundleService(t, cartRepo, history, drive).DownloadBundle(ctx)
  if err != nil {
    t.Fatalf("bundle failed: %v", err)
  }
  defer payload.Cleanup()

  want := fmt.Sprintf("asset-Legacy_Asset-%s", asset.ID)
  if lookedUp != want {
    t.Fatalf("expected folder lookup %q, got %q", want, lookedUp)
  }
  if _, err := os.Stat(payload.Path); err != nil {
    t.Fatalf("expected archive on disk: %v", err)
  }
}
