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
  "github.com/voxelbay/voxelbay-backend/internal/clients/redis"
  "github.com/voxelbay/voxelbay-backend/internal/logger"
  "github.com/voxelbay/voxelbay-backend/internal/normalization"
  "github.com/voxelbay/voxelbay-backend/internal/repos"
  "github.com/voxelbay/voxelbay-backend/internal/requestdata"
  "github.com/voxelbay/voxelbay-backend/internal/types"
)

// UploadFile is a file already saved to local disk, waiting to be
// pushed to remote storage.
type UploadFile struct {
  Path string
  Name string
}

type CreateAssetInput struct {
  Title       string
  Kind        string
  Description string
  Tags        []string
  Files       []UploadFile
  Images      []UploadFile
}

// DownloadPayload points at a file prepared on local disk. Cleanup
// must be called once the payload has been written to the client.
type DownloadPayload struct {
  Path        string
  FileName    string
  ContentType string
  Cleanup     func()
}

type AssetService interface {
  Create(ctx context.Context, input *CreateAssetInput) (*types.Asset, error)
  List(ctx context.Context, filter repos.AssetListFilter) ([]*types.Asset, int64, error)
  GetByID(ctx context.Context, assetID uuid.UUID) (*types.Asset, error)
  GetByOwner(ctx context.Context, ownerID uuid.UUID) ([]*types.Asset, error)
  Delete(ctx context.Context, assetID uuid.UUID) error
  Download(ctx context.Context, assetID uuid.UUID) (*DownloadPayload, error)
  Trending(ctx context.Context, limit int) ([]*types.Asset, error)
}

type assetService struct {
  db        *gorm.DB
  log       *logger.Logger
  assetRepo repos.AssetRepo
  drive     gcp.DriveService
  downloads redis.DownloadCounter
}

func NewAssetService(
  db *gorm.DB,
  log *logger.Logger,
  assetRepo repos.AssetRepo,
  drive gcp.DriveService,
  downloads redis.DownloadCounter,
) AssetService {
  serviceLog := log.With("service", "AssetService")
  return &assetService{
    db:        db,
    log:       serviceLog,
    assetRepo: assetRepo,
    drive:     drive,
    downloads: downloads,
  }
}

func (s *assetService) Create(ctx context.Context, input *CreateAssetInput) (*types.Asset, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil {
    return nil, fmt.Errorf("missing request context: %w", apperr.ErrUnauthorized)
  }
  title := normalization.TrimInputString(input.Title)
  if title == "" {
    return nil, fmt.Errorf("title is required: %w", apperr.ErrInvalidArgument)
  }
  if len(input.Files) == 0 {
    return nil, fmt.Errorf("at least one file is required: %w", apperr.ErrInvalidArgument)
  }

  assetID := uuid.New()
  folderName := fmt.Sprintf("asset-%s-%s", archive.SanitizeName(title), assetID)
  folderID, err := s.drive.CreateFolder(ctx, folderName, s.drive.RootFolderID())
  if err != nil {
    return nil, fmt.Errorf("failed to create asset folder: %w", err)
  }

  // Files are the product itself: if any upload fails, roll the whole
  // folder back rather than publish a partial asset.
  fileURLs := make([]string, 0, len(input.Files))
  for _, f := range input.Files {
    uploaded, upErr := s.drive.Upload(ctx, f.Path, f.Name, folderID)
    if upErr != nil {
      if delErr := s.drive.Delete(ctx, folderID); delErr != nil {
        s.log.Warn("failed to clean up asset folder after upload error", "error", delErr, "folder_id", folderID)
      }
      return nil, fmt.Errorf("failed to upload asset file %s: %w", f.Name, upErr)
    }
    fileURLs = append(fileURLs, uploaded.PublicURL)
  }

  // Preview images are presentation only, so a failed one is skipped.
  imageIDs := make([]string, 0, len(input.Images))
  for _, img := range input.Images {
    uploaded, upErr := s.drive.Upload(ctx, img.Path, img.Name, folderID)
    if upErr != nil {
      s.log.Warn("failed to upload preview image (skipped)", "error", upErr, "name", img.Name)
      continue
    }
    imageIDs = append(imageIDs, uploaded.ID)
  }

  filesJSON, _ := json.Marshal(fileURLs)
  imagesJSON, _ := json.Marshal(imageIDs)
  tags := make([]string, 0, len(input.Tags))
  for _, t := range input.Tags {
    if nt := normalization.ParseInputString(t); nt != "" {
      tags = append(tags, nt)
    }
  }
  tagsJSON, _ := json.Marshal(tags)

  asset := &types.Asset{
    ID:            assetID,
    Title:         title,
    Kind:          normalization.ParseInputString(input.Kind),
    Description:   normalization.TrimInputString(input.Description),
    Files:         datatypes.JSON(filesJSON),
    Images:        datatypes.JSON(imagesJSON),
    Tags:          datatypes.JSON(tagsJSON),
    OwnerID:       rd.UserID,
    DriveFolderID: folderID,
  }
  if _, cErr := s.assetRepo.Create(ctx, nil, []*types.Asset{asset}); cErr != nil {
    if delErr := s.drive.Delete(ctx, folderID); delErr != nil {
      s.log.Warn("failed to clean up asset folder after db error", "error", delErr, "folder_id", folderID)
    }
    return nil, fmt.Errorf("failed to create asset: %w", cErr)
  }
  return asset, nil
}

func (s *assetService) List(ctx context.Context, filter repos.AssetListFilter) ([]*types.Asset, int64, error) {
  assets, total, err := s.assetRepo.List(ctx, nil, filter)
  if err != nil {
    return nil, 0, fmt.Errorf("failed to list assets: %w", err)
  }
  return assets, total, nil
}

func (s *assetService) GetByID(ctx context.Context, assetID uuid.UUID) (*types.Asset, error) {
  asset, err := s.assetRepo.GetByIDPopulated(ctx, nil, assetID)
  if err != nil {
    return nil, fmt.Errorf("failed to fetch asset: %w", err)
  }
  if asset == nil {
    return nil, fmt.Errorf("asset not found: %w", apperr.ErrNotFound)
  }
  return asset, nil
}

func (s *assetService) GetByOwner(ctx context.Context, ownerID uuid.UUID) ([]*types.Asset, error) {
  assets, err := s.assetRepo.GetByOwnerIDs(ctx, nil, []uuid.UUID{ownerID})
  if err != nil {
    return nil, fmt.Errorf("failed to fetch assets by owner: %w", err)
  }
  return assets, nil
}

func (s *assetService) Delete(ctx context.Context, assetID uuid.UUID) error {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil {
    return fmt.Errorf("missing request context: %w", apperr.ErrUnauthorized)
  }
  assets, err := s.assetRepo.GetByIDs(ctx, nil, []uuid.UUID{assetID})
  if err != nil {
    return fmt.Errorf("failed to fetch asset: %w", err)
  }
  if len(assets) == 0 {
    return fmt.Errorf("asset not found: %w", apperr.ErrNotFound)
  }
  asset := assets[0]
  if asset.OwnerID != rd.UserID && !rd.IsAdmin() {
    return fmt.Errorf("only the owner can delete an asset: %w", apperr.ErrForbidden)
  }

  if dErr := s.assetRepo.SoftDeleteByIDs(ctx, nil, []uuid.UUID{assetID}); dErr != nil {
    return fmt.Errorf("failed to delete asset: %w", dErr)
  }
  // The DB row is already gone; leaking a remote folder is preferable
  // to resurrecting the asset.
  if asset.DriveFolderID != "" {
    if fErr := s.drive.Delete(ctx, asset.DriveFolderID); fErr != nil {
      s.log.Warn("failed to delete remote asset folder", "error", fErr, "folder_id", asset.DriveFolderID)
    }
  }
  return nil
}

func (s *assetService) Download(ctx context.Context, assetID uuid.UUID) (*DownloadPayload, error) {
  assets, err := s.assetRepo.GetByIDs(ctx, nil, []uuid.UUID{assetID})
  if err != nil {
    return nil, fmt.Errorf("failed to fetch asset: %w", err)
  }
  if len(assets) == 0 {
    return nil, fmt.Errorf("asset not found: %w", apperr.ErrNotFound)
  }
  asset := assets[0]
  folderID := asset.DriveFolderID
  if folderID == "" {
    // Rows written before the folder id was persisted can still be
    // resolved by the folder naming convention.
    folderName := fmt.Sprintf("asset-%s-%s", archive.SanitizeName(asset.Title), asset.ID)
    folderID, err = s.drive.FindFolderByName(ctx, folderName, s.drive.RootFolderID())
    if err != nil {
      return nil, fmt.Errorf("asset has no stored files: %w", err)
    }
  }

  files, lErr := s.drive.ListFolder(ctx, folderID)
  if lErr != nil {
    return nil, fmt.Errorf("failed to list asset files: %w", lErr)
  }
  if len(files) == 0 {
    return nil, fmt.Errorf("asset folder is empty: %w", apperr.ErrNotFound)
  }

  scratchDir, tErr := os.MkdirTemp("", "asset-download-")
  if tErr != nil {
    return nil, fmt.Errorf("failed to create scratch dir: %w", tErr)
  }
  cleanup := func() {
    if rmErr := os.RemoveAll(scratchDir); rmErr != nil {
      s.log.Warn("failed to remove scratch dir", "error", rmErr, "dir", scratchDir)
    }
  }

  payload, pErr := s.preparePayload(ctx, scratchDir, asset, files)
  if pErr != nil {
    cleanup()
    return nil, pErr
  }
  payload.Cleanup = cleanup

  s.recordDownload(ctx, assetID)
  return payload, nil
}

func (s *assetService) preparePayload(ctx context.Context, scratchDir string, asset *types.Asset, files []*gcp.DriveFile) (*DownloadPayload, error) {
  if len(files) == 1 {
    f := files[0]
    localPath := filepath.Join(scratchDir, archive.SanitizeName(f.Name))
    if dErr := s.drive.Download(ctx, f.ID, localPath); dErr != nil {
      return nil, fmt.Errorf("failed to download asset file: %w", dErr)
    }
    return &DownloadPayload{
      Path:        localPath,
      FileName:    f.Name,
      // Raw files always ship as octet-stream so the browser saves
      // rather than renders them.
      ContentType: "application/octet-stream",
    }, nil
  }

  entries := make([]archive.Entry, 0, len(files))
  for i, f := range files {
    localPath := filepath.Join(scratchDir, fmt.Sprintf("%d-%s", i, archive.SanitizeName(f.Name)))
    if dErr := s.drive.Download(ctx, f.ID, localPath); dErr != nil {
      return nil, fmt.Errorf("failed to download asset file %s: %w", f.Name, dErr)
    }
    entries = append(entries, archive.Entry{Path: localPath, Name: f.Name})
  }

  zipName := archive.SanitizeName(asset.Title) + ".zip"
  zipPath := filepath.Join(scratchDir, zipName)
  out, cErr := os.Create(zipPath)
  if cErr != nil {
    return nil, fmt.Errorf("failed to create archive: %w", cErr)
  }
  if zErr := archive.ZipFiles(out, entries); zErr != nil {
    out.Close()
    return nil, fmt.Errorf("failed to build archive: %w", zErr)
  }
  if clErr := out.Close(); clErr != nil {
    return nil, fmt.Errorf("failed to finish archive: %w", clErr)
  }
  return &DownloadPayload{
    Path:        zipPath,
    FileName:    zipName,
    ContentType: "application/zip",
  }, nil
}

func (s *assetService) Trending(ctx context.Context, limit int) ([]*types.Asset, error) {
  if s.downloads == nil {
    return []*types.Asset{}, nil
  }
  if limit <= 0 {
    limit = 10
  }
  topIDs, err := s.downloads.Top(ctx, limit)
  if err != nil {
    return nil, fmt.Errorf("failed to fetch trending ids: %w", err)
  }
  if len(topIDs) == 0 {
    return []*types.Asset{}, nil
  }
  assets, aErr := s.assetRepo.GetByIDs(ctx, nil, topIDs)
  if aErr != nil {
    return nil, fmt.Errorf("failed to fetch trending assets: %w", aErr)
  }
  // Preserve counter order; deleted assets fall out naturally.
  byID := make(map[uuid.UUID]*types.Asset, len(assets))
  for _, a := range assets {
    byID[a.ID] = a
  }
  ordered := make([]*types.Asset, 0, len(topIDs))
  for _, id := range topIDs {
    if a, ok := byID[id]; ok {
      ordered = append(ordered, a)
    }
  }
  return ordered, nil
}

func (s *assetService) recordDownload(ctx context.Context, assetID uuid.UUID) {
  if s.downloads == nil {
    return
  }
  if err := s.downloads.Increment(ctx, assetID); err != nil {
    s.log.Warn("failed to record download", "error", err, "asset_id", assetID)
  }
}
