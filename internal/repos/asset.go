package repos

import (
  "context"
  "encoding/json"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/voxelbay/voxelbay-backend/internal/logger"
  "github.com/voxelbay/voxelbay-backend/internal/types"
)

// AssetListFilter narrows and pages the catalog listing. Zero values
// mean "no filter"; Limit and Page are normalized by the caller.
type AssetListFilter struct {
  Kind    string
  Tag     string
  OwnerID *uuid.UUID
  Sort    string
  Limit   int
  Page    int
}

type AssetRepo interface {
  Create(ctx context.Context, tx *gorm.DB, assets []*types.Asset) ([]*types.Asset, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, assetIDs []uuid.UUID) ([]*types.Asset, error)
  GetByIDPopulated(ctx context.Context, tx *gorm.DB, assetID uuid.UUID) (*types.Asset, error)
  GetByOwnerIDs(ctx context.Context, tx *gorm.DB, ownerIDs []uuid.UUID) ([]*types.Asset, error)
  List(ctx context.Context, tx *gorm.DB, filter AssetListFilter) ([]*types.Asset, int64, error)
  UpdateFields(ctx context.Context, tx *gorm.DB, assetID uuid.UUID, fields map[string]interface{}) error
  SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, assetIDs []uuid.UUID) error
}

type assetRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewAssetRepo(db *gorm.DB, baseLog *logger.Logger) AssetRepo {
  repoLog := baseLog.With("repo", "AssetRepo")
  return &assetRepo{db: db, log: repoLog}
}

func (ar *assetRepo) Create(ctx context.Context, tx *gorm.DB, assets []*types.Asset) ([]*types.Asset, error) {
  transaction := tx
  if transaction == nil {
    transaction = ar.db
  }

  if len(assets) == 0 {
    return []*types.Asset{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&assets).Error; err != nil {
    return nil, err
  }

  return assets, nil
}

func (ar *assetRepo) GetByIDs(ctx context.Context, tx *gorm.DB, assetIDs []uuid.UUID) ([]*types.Asset, error) {
  transaction := tx
  if transaction == nil {
    transaction = ar.db
  }

  var results []*types.Asset

  if len(assetIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("id IN ?", assetIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (ar *assetRepo) GetByIDPopulated(ctx context.Context, tx *gorm.DB, assetID uuid.UUID) (*types.Asset, error) {
  transaction := tx
  if transaction == nil {
    transaction = ar.db
  }

  var results []*types.Asset
  if err := transaction.WithContext(ctx).
    Preload("Owner").
    Preload("Comments", func(db *gorm.DB) *gorm.DB {
      return db.Order("comment.created_at ASC")
    }).
    Preload("Comments.Author").
    Where("id = ?", assetID).
    Find(&results).Error; err != nil {
    return nil, err
  }
  if len(results) == 0 {
    return nil, nil
  }
  return results[0], nil
}

func (ar *assetRepo) GetByOwnerIDs(ctx context.Context, tx *gorm.DB, ownerIDs []uuid.UUID) ([]*types.Asset, error) {
  transaction := tx
  if transaction == nil {
    transaction = ar.db
  }

  var results []*types.Asset

  if len(ownerIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("owner_id IN ?", ownerIDs).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (ar *assetRepo) List(ctx context.Context, tx *gorm.DB, filter AssetListFilter) ([]*types.Asset, int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = ar.db
  }

  q := transaction.WithContext(ctx).Model(&types.Asset{})
  if filter.Kind != "" {
    q = q.Where("kind = ?", filter.Kind)
  }
  if filter.Tag != "" {
    tagJSON, err := json.Marshal([]string{filter.Tag})
    if err != nil {
      return nil, 0, err
    }
    q = q.Where("tags @> ?::jsonb", string(tagJSON))
  }
  if filter.OwnerID != nil {
    q = q.Where("owner_id = ?", *filter.OwnerID)
  }

  var total int64
  if err := q.Count(&total).Error; err != nil {
    return nil, 0, err
  }

  switch filter.Sort {
  case "rating":
    q = q.Order("rating DESC")
  case "title":
    q = q.Order("title ASC")
  default:
    q = q.Order("created_at DESC")
  }

  limit := filter.Limit
  if limit <= 0 {
    limit = 10
  }
  page := filter.Page
  if page <= 0 {
    page = 1
  }

  var results []*types.Asset
  if err := q.
    Preload("Owner").
    Limit(limit).
    Offset((page - 1) * limit).
    Find(&results).Error; err != nil {
    return nil, 0, err
  }
  return results, total, nil
}

func (ar *assetRepo) UpdateFields(ctx context.Context, tx *gorm.DB, assetID uuid.UUID, fields map[string]interface{}) error {
  transaction := tx
  if transaction == nil {
    transaction = ar.db
  }

  if len(fields) == 0 {
    return nil
  }

  if err := transaction.WithContext(ctx).
    Model(&types.Asset{}).
    Where("id = ?", assetID).
    Updates(fields).Error; err != nil {
    return err
  }
  return nil
}

func (ar *assetRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, assetIDs []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = ar.db
  }

  if len(assetIDs) == 0 {
    return nil
  }

  if err := transaction.WithContext(ctx).
    Where("id IN ?", assetIDs).
    Delete(&types.Asset{}).Error; err != nil {
    return err
  }
  return nil
}
