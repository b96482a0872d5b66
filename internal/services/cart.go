package services

import (
  "context"
  "encoding/json"
  "fmt"
  "os"
  "path/filepath"
  "gorm.io/gorm"
  "gorm.io/datatypes"
  "github.com/google/uuid"
  "github.com/voxelbay/voxelbay-backend/internal/apperr"
  "github.com/voxelbay/voxelbay-backend/internal/archive"
  "github.com/voxelbay/voxelbay-backend/internal/clients/gcp"
  "github.com/voxelbay/voxelbay-backend/internal/logger"
  "github.com/voxelbay/voxelbay-backend/internal/repos"
  "github.com/voxelbay/voxelbay-backend/internal/requestdata"
  "github.com/voxelbay/voxelbay-backend/internal/types"
)

// BundlePayload is the prepared cart archive. Finalize runs after the
// bytes have been written to the client: it records the download and
// empties the cart, so a failed transfer leaves the cart intact.
type BundlePayload struct {
  Path     string
  FileName string
  Cleanup  func()
  Finalize func(ctx context.Context)
}

type CartService interface {
  Get(ctx context.Context) (*types.Cart, error)
  AddItem(ctx context.Context, assetID uuid.UUID) (*types.Cart, error)
  RemoveItem(ctx context.Context, assetID uuid.UUID) (*types.Cart, error)
  DownloadBundle(ctx context.Context) (*BundlePayload, error)
}

type cartService struct {
  db          *gorm.DB
  log         *logger.Logger
  cartRepo    repos.CartRepo
  assetRepo   repos.AssetRepo
  historyRepo repos.DownloadHistoryRepo
  drive       gcp.DriveService
}

func NewCartService(
  db *gorm.DB,
  log *logger.Logger,
  cartRepo repos.CartRepo,
  assetRepo repos.AssetRepo,
  historyRepo repos.DownloadHistoryRepo,
  drive gcp.DriveService,
) CartService {
  serviceLog := log.With("service", "CartService")
  return &cartService{
    db:          db,
    log:         serviceLog,
    cartRepo:    cartRepo,
    assetRepo:   assetRepo,
    historyRepo: historyRepo,
    drive:       drive,
  }
}

func (cs *cartService) Get(ctx context.Context) (*types.Cart, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil {
    return nil, fmt.Errorf("missing request context: %w", apperr.ErrUnauthorized)
  }
  cart, err := cs.cartRepo.GetByUserID(ctx, nil, rd.UserID)
  if err != nil {
    return nil, fmt.Errorf("failed to fetch cart: %w", err)
  }
  if cart == nil {
    return nil, fmt.Errorf("cart not found: %w", apperr.ErrNotFound)
  }
  return cart, nil
}

func (cs *cartService) AddItem(ctx context.Context, assetID uuid.UUID) (*types.Cart, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil {
    return nil, fmt.Errorf("missing request context: %w", apperr.ErrUnauthorized)
  }
  assets, aErr := cs.assetRepo.GetByIDs(ctx, nil, []uuid.UUID{assetID})
  if aErr != nil {
    return nil, fmt.Errorf("failed to fetch asset: %w", aErr)
  }
  if len(assets) == 0 {
    return nil, fmt.Errorf("asset not found: %w", apperr.ErrNotFound)
  }

  err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    cart, cErr := cs.cartRepo.GetByUserID(ctx, tx, rd.UserID)
    if cErr != nil {
      return fmt.Errorf("failed to fetch cart: %w", cErr)
    }
    if cart == nil {
      cart = &types.Cart{ID: uuid.New(), UserID: rd.UserID}
      if _, crErr := cs.cartRepo.Create(ctx, tx, []*types.Cart{cart}); crErr != nil {
        return fmt.Errorf("failed to create cart: %w", crErr)
      }
    }
    exists, exErr := cs.cartRepo.ItemExists(ctx, tx, cart.ID, assetID)
    if exErr != nil {
      return fmt.Errorf("failed to check cart item: %w", exErr)
    }
    if exists {
      return fmt.Errorf("asset is already in the cart: %w", apperr.ErrConflict)
    }
    item := &types.CartItem{ID: uuid.New(), CartID: cart.ID, AssetID: assetID}
    if addErr := cs.cartRepo.AddItem(ctx, tx, item); addErr != nil {
      // The unique index backstops concurrent adds of the same asset.
      return fmt.Errorf("failed to add cart item: %w", addErr)
    }
    return nil
  })
  if err != nil {
    return nil, err
  }
  return cs.Get(ctx)
}

func (cs *cartService) RemoveItem(ctx context.Context, assetID uuid.UUID) (*types.Cart, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil {
    return nil, fmt.Errorf("missing request context: %w", apperr.ErrUnauthorized)
  }
  cart, err := cs.cartRepo.GetByUserID(ctx, nil, rd.UserID)
  if err != nil {
    return nil, fmt.Errorf("failed to fetch cart: %w", err)
  }
  if cart == nil {
    return nil, fmt.Errorf("cart not found: %w", apperr.ErrNotFound)
  }
  // Removing an absent item is a no-op, not an error.
  if rmErr := cs.cartRepo.RemoveItem(ctx, nil, cart.ID, assetID); rmErr != nil {
    return nil, fmt.Errorf("failed to remove cart item: %w", rmErr)
  }
  return cs.Get(ctx)
}

func (cs *cartService) DownloadBundle(ctx context.Context) (*BundlePayload, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil {
    return nil, fmt.Errorf("missing request context: %w", apperr.ErrUnauthorized)
  }
  cart, err := cs.cartRepo.GetByUserID(ctx, nil, rd.UserID)
  if err != nil {
    return nil, fmt.Errorf("failed to fetch cart: %w", err)
  }
  if cart == nil || len(cart.Items) == 0 {
    return nil, fmt.Errorf("cart is empty: %w", apperr.ErrInvalidArgument)
  }

  scratchDir, tErr := os.MkdirTemp("", "cart-bundle-")
  if tErr != nil {
    return nil, fmt.Errorf("failed to create scratch dir: %w", tErr)
  }
  cleanup := func() {
    if rmErr := os.RemoveAll(scratchDir); rmErr != nil {
      cs.log.Warn("failed to remove scratch dir", "error", rmErr, "dir", scratchDir)
    }
  }

  bundleRoot := filepath.Join(scratchDir, "bundle")
  if mkErr := os.MkdirAll(bundleRoot, 0o755); mkErr != nil {
    cleanup()
    return nil, fmt.Errorf("failed to create bundle dir: %w", mkErr)
  }

  // An asset that vanished since it was added, or one whose files
  // cannot be fetched, is skipped so the rest of the cart still ships.
  // The history snapshot still records every cart item, bundled or not.
  cartAssetIDs := make([]uuid.UUID, 0, len(cart.Items))
  bundled := 0
  for _, item := range cart.Items {
    cartAssetIDs = append(cartAssetIDs, item.AssetID)
    if item.Asset == nil {
      cs.log.Warn("cart item references missing asset (skipped)", "asset_id", item.AssetID)
      continue
    }
    if fErr := cs.fetchAssetInto(ctx, bundleRoot, item.Asset); fErr != nil {
      cs.log.Warn("failed to bundle cart asset (skipped)", "error", fErr, "asset_id", item.AssetID)
      continue
    }
    bundled++
  }
  if bundled == 0 {
    cleanup()
    return nil, fmt.Errorf("no cart assets could be bundled: %w", apperr.ErrInvalidArgument)
  }

  zipPath := filepath.Join(scratchDir, "assets.zip")
  out, cErr := os.Create(zipPath)
  if cErr != nil {
    cleanup()
    return nil, fmt.Errorf("failed to create archive: %w", cErr)
  }
  if zErr := archive.ZipTree(out, bundleRoot); zErr != nil {
    out.Close()
    cleanup()
    return nil, fmt.Errorf("failed to build archive: %w", zErr)
  }
  if clErr := out.Close(); clErr != nil {
    cleanup()
    return nil, fmt.Errorf("failed to finish archive: %w", clErr)
  }

  cartID := cart.ID
  userID := rd.UserID
  finalize := func(fctx context.Context) {
    idsJSON, _ := json.Marshal(cartAssetIDs)
    record := &types.DownloadHistory{
      ID:       uuid.New(),
      UserID:   userID,
      AssetIDs: datatypes.JSON(idsJSON),
    }
    if _, hErr := cs.historyRepo.Create(fctx, nil, []*types.DownloadHistory{record}); hErr != nil {
      cs.log.Warn("failed to record download history", "error", hErr, "user_id", userID)
    }
    if clErr := cs.cartRepo.ClearItems(fctx, nil, cartID); clErr != nil {
      cs.log.Warn("failed to clear cart after bundle download", "error", clErr, "cart_id", cartID)
    }
  }

  return &BundlePayload{
    Path:     zipPath,
    FileName: "assets.zip",
    Cleanup:  cleanup,
    Finalize: finalize,
  }, nil
}

func (cs *cartService) fetchAssetInto(ctx context.Context, bundleRoot string, asset *types.Asset) error {
  folderID := asset.DriveFolderID
  if folderID == "" {
    // Rows written before the folder id was persisted can still be
    // resolved by the folder naming convention.
    folderName := fmt.Sprintf("asset-%s-%s", archive.SanitizeName(asset.Title), asset.ID)
    found, fErr := cs.drive.FindFolderByName(ctx, folderName, cs.drive.RootFolderID())
    if fErr != nil {
      return fmt.Errorf("asset %s has no remote folder: %w", asset.ID, fErr)
    }
    folderID = found
  }
  files, lErr := cs.drive.ListFolder(ctx, folderID)
  if lErr != nil {
    return fmt.Errorf("failed to list asset folder: %w", lErr)
  }
  if len(files) == 0 {
    return fmt.Errorf("asset folder %s is empty", folderID)
  }

  assetDir := filepath.Join(bundleRoot, archive.SanitizeName(asset.Title))
  if mkErr := os.MkdirAll(assetDir, 0o755); mkErr != nil {
    return fmt.Errorf("failed to create asset dir: %w", mkErr)
  }
  for i, f := range files {
    localPath := filepath.Join(assetDir, archive.SanitizeName(f.Name))
    if _, stErr := os.Stat(localPath); stErr == nil {
      localPath = filepath.Join(assetDir, fmt.Sprintf("%d-%s", i, archive.SanitizeName(f.Name)))
    }
    if dErr := cs.drive.Download(ctx, f.ID, localPath); dErr != nil {
      return fmt.Errorf("failed to download %s: %w", f.Name, dErr)
    }
  }
  return nil
}
