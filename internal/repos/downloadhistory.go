package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/voxelbay/voxelbay-backend/internal/logger"
  "github.com/voxelbay/voxelbay-backend/internal/types"
)

type DownloadHistoryRepo interface {
  Create(ctx context.Context, tx *gorm.DB, records []*types.DownloadHistory) ([]*types.DownloadHistory, error)
  GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.DownloadHistory, error)
}

type downloadHistoryRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewDownloadHistoryRepo(db *gorm.DB, baseLog *logger.Logger) DownloadHistoryRepo {
  repoLog := baseLog.With("repo", "DownloadHistoryRepo")
  return &downloadHistoryRepo{db: db, log: repoLog}
}

func (dr *downloadHistoryRepo) Create(ctx context.Context, tx *gorm.DB, records []*types.DownloadHistory) ([]*types.DownloadHistory, error) {
  transaction := tx
  if transaction == nil {
    transaction = dr.db
  }

  if len(records) == 0 {
    return []*types.DownloadHistory{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&records).Error; err != nil {
    return nil, err
  }

  return records, nil
}

func (dr *downloadHistoryRepo) GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.DownloadHistory, error) {
  transaction := tx
  if transaction == nil {
    transaction = dr.db
  }

  var results []*types.DownloadHistory

  if len(userIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("user_id IN ?", userIDs).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}
