package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/voxelbay/voxelbay-backend/internal/logger"
  "github.com/voxelbay/voxelbay-backend/internal/types"
)

type CartRepo interface {
  Create(ctx context.Context, tx *gorm.DB, carts []*types.Cart) ([]*types.Cart, error)
  GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Cart, error)
  AddItem(ctx context.Context, tx *gorm.DB, item *types.CartItem) error
  ItemExists(ctx context.Context, tx *gorm.DB, cartID, assetID uuid.UUID) (bool, error)
  RemoveItem(ctx context.Context, tx *gorm.DB, cartID, assetID uuid.UUID) error
  ClearItems(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) error
}

type cartRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewCartRepo(db *gorm.DB, baseLog *logger.Logger) CartRepo {
  repoLog := baseLog.With("repo", "CartRepo")
  return &cartRepo{db: db, log: repoLog}
}

func (cr *cartRepo) Create(ctx context.Context, tx *gorm.DB, carts []*types.Cart) ([]*types.Cart, error) {
  transaction := tx
  if transaction == nil {
    transaction = cr.db
  }

  if len(carts) == 0 {
    return []*types.Cart{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&carts).Error; err != nil {
    return nil, err
  }

  return carts, nil
}

func (cr *cartRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Cart, error) {
  transaction := tx
  if transaction == nil {
    transaction = cr.db
  }

  var results []*types.Cart
  if err := transaction.WithContext(ctx).
    Preload("Items", func(db *gorm.DB) *gorm.DB {
      return db.Order("cart_item.created_at ASC")
    }).
    Preload("Items.Asset").
    Where("user_id = ?", userID).
    Find(&results).Error; err != nil {
    return nil, err
  }
  if len(results) == 0 {
    return nil, nil
  }
  return results[0], nil
}

func (cr *cartRepo) AddItem(ctx context.Context, tx *gorm.DB, item *types.CartItem) error {
  transaction := tx
  if transaction == nil {
    transaction = cr.db
  }

  if err := transaction.WithContext(ctx).Create(item).Error; err != nil {
    return err
  }
  return nil
}

func (cr *cartRepo) ItemExists(ctx context.Context, tx *gorm.DB, cartID, assetID uuid.UUID) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = cr.db
  }

  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.CartItem{}).
    Where("cart_id = ? AND asset_id = ?", cartID, assetID).
    Count(&count).Error; err != nil {
    return false, err
  }
  return count > 0, nil
}

func (cr *cartRepo) RemoveItem(ctx context.Context, tx *gorm.DB, cartID, assetID uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = cr.db
  }

  if err := transaction.WithContext(ctx).
    Where("cart_id = ? AND asset_id = ?", cartID, assetID).
    Delete(&types.CartItem{}).Error; err != nil {
    return err
  }
  return nil
}

func (cr *cartRepo) ClearItems(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = cr.db
  }

  if err := transaction.WithContext(ctx).
    Where("cart_id = ?", cartID).
    Delete(&types.CartItem{}).Error; err != nil {
    return err
  }
  return nil
}
