package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/voxelbay/voxelbay-backend/internal/logger"
  "github.com/voxelbay/voxelbay-backend/internal/types"
)

type CommentRepo interface {
  Create(ctx context.Context, tx *gorm.DB, comments []*types.Comment) ([]*types.Comment, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, commentIDs []uuid.UUID) ([]*types.Comment, error)
  GetByAssetIDs(ctx context.Context, tx *gorm.DB, assetIDs []uuid.UUID) ([]*types.Comment, error)
  ScoresByAssetID(ctx context.Context, tx *gorm.DB, assetID uuid.UUID) ([]int, error)
  SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, commentIDs []uuid.UUID) error
}

type commentRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewCommentRepo(db *gorm.DB, baseLog *logger.Logger) CommentRepo {
  repoLog := baseLog.With("repo", "CommentRepo")
  return &commentRepo{db: db, log: repoLog}
}

func (cr *commentRepo) Create(ctx context.Context, tx *gorm.DB, comments []*types.Comment) ([]*types.Comment, error) {
  transaction := tx
  if transaction == nil {
    transaction = cr.db
  }

  if len(comments) == 0 {
    return []*types.Comment{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&comments).Error; err != nil {
    return nil, err
  }

  return comments, nil
}

func (cr *commentRepo) GetByIDs(ctx context.Context, tx *gorm.DB, commentIDs []uuid.UUID) ([]*types.Comment, error) {
  transaction := tx
  if transaction == nil {
    transaction = cr.db
  }

  var results []*types.Comment

  if len(commentIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Preload("Author").
    Where("id IN ?", commentIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (cr *commentRepo) GetByAssetIDs(ctx context.Context, tx *gorm.DB, assetIDs []uuid.UUID) ([]*types.Comment, error) {
  transaction := tx
  if transaction == nil {
    transaction = cr.db
  }

  var results []*types.Comment

  if len(assetIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Preload("Author").
    Where("asset_id IN ?", assetIDs).
    Order("created_at ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (cr *commentRepo) ScoresByAssetID(ctx context.Context, tx *gorm.DB, assetID uuid.UUID) ([]int, error) {
  transaction := tx
  if transaction == nil {
    transaction = cr.db
  }

  var scores []int
  if err := transaction.WithContext(ctx).
    Model(&types.Comment{}).
    Where("asset_id = ?", assetID).
    Pluck("score", &scores).Error; err != nil {
    return nil, err
  }
  return scores, nil
}

func (cr *commentRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, commentIDs []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = cr.db
  }

  if len(commentIDs) == 0 {
    return nil
  }

  if err := transaction.WithContext(ctx).
    Where("id IN ?", commentIDs).
    Delete(&types.Comment{}).Error; err != nil {
    return err
  }
  return nil
}
