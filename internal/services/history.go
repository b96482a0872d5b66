package services

import (
  "context"
  "encoding/json"
  "fmt"
  "time"
  "gorm.io/gorm"
  "github.com/google/uuid"
  "github.com/voxelbay/voxelbay-backend/internal/apperr"
  "github.com/voxelbay/voxelbay-backend/internal/logger"
  "github.com/voxelbay/voxelbay-backend/internal/repos"
  "github.com/voxelbay/voxelbay-backend/internal/requestdata"
  "github.com/voxelbay/voxelbay-backend/internal/types"
)

// HistoryEntry resolves a stored download record against the current
// catalog. Assets deleted since the download stay in AssetIDs but
// drop out of Assets.
type HistoryEntry struct {
  ID        uuid.UUID      `json:"id"`
  AssetIDs  []uuid.UUID    `json:"asset_ids"`
  Assets    []*types.Asset `json:"assets"`
  CreatedAt time.Time      `json:"created_at"`
}

type HistoryService interface {
  ListByUser(ctx context.Context) ([]*HistoryEntry, error)
}

type historyService struct {
  db          *gorm.DB
  log         *logger.Logger
  historyRepo repos.DownloadHistoryRepo
  assetRepo   repos.AssetRepo
}

func NewHistoryService(
  db *gorm.DB,
  log *logger.Logger,
  historyRepo repos.DownloadHistoryRepo,
  assetRepo repos.AssetRepo,
) HistoryService {
  serviceLog := log.With("service", "HistoryService")
  return &historyService{
    db:          db,
    log:         serviceLog,
    historyRepo: historyRepo,
    assetRepo:   assetRepo,
  }
}

func (hs *historyService) ListByUser(ctx context.Context) ([]*HistoryEntry, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil {
    return nil, fmt.Errorf("missing request context: %w", apperr.ErrUnauthorized)
  }
  records, err := hs.historyRepo.GetByUserIDs(ctx, nil, []uuid.UUID{rd.UserID})
  if err != nil {
    return nil, fmt.Errorf("failed to fetch download history: %w", err)
  }

  entries := make([]*HistoryEntry, 0, len(records))
  allIDs := make([]uuid.UUID, 0)
  for _, r := range records {
    var ids []uuid.UUID
    if uErr := json.Unmarshal(r.AssetIDs, &ids); uErr != nil {
      hs.log.Warn("malformed asset id list in history record (skipped)", "error", uErr, "record_id", r.ID)
      ids = nil
    }
    entries = append(entries, &HistoryEntry{
      ID:        r.ID,
      AssetIDs:  ids,
      Assets:    []*types.Asset{},
      CreatedAt: r.CreatedAt,
    })
    allIDs = append(allIDs, ids...)
  }
  if len(allIDs) == 0 {
    return entries, nil
  }

  assets, aErr := hs.assetRepo.GetByIDs(ctx, nil, allIDs)
  if aErr != nil {
    return nil, fmt.Errorf("failed to resolve history assets: %w", aErr)
  }
  byID := make(map[uuid.UUID]*types.Asset, len(assets))
  for _, a := range assets {
    byID[a.ID] = a
  }
  for _, e := range entries {
    for _, id := range e.AssetIDs {
      if a, ok := byID[id]; ok {
        e.Assets = append(e.Assets, a)
      }
    }
  }
  return entries, nil
}
