package services

import (
  "context"
  "fmt"
  "gorm.io/gorm"
  "golang.org/x/crypto/bcrypt"
  "github.com/google/uuid"
  "github.com/voxelbay/voxelbay-backend/internal/apperr"
  "github.com/voxelbay/voxelbay-backend/internal/logger"
  "github.com/voxelbay/voxelbay-backend/internal/normalization"
  "github.com/voxelbay/voxelbay-backend/internal/repos"
  "github.com/voxelbay/voxelbay-backend/internal/requestdata"
  "github.com/voxelbay/voxelbay-backend/internal/types"
)

type UserProfileUpdate struct {
  Name     *string `json:"name"`
  Email    *string `json:"email"`
  Password *string `json:"password"`
}

type UserService interface {
  GetByID(ctx context.Context, userID uuid.UUID) (*types.User, error)
  GetAll(ctx context.Context) ([]*types.User, error)
  UpdateProfile(ctx context.Context, userID uuid.UUID, update *UserProfileUpdate) (*types.User, error)
  SetRole(ctx context.Context, userID uuid.UUID, role string) (*types.User, error)
  Delete(ctx context.Context, userID uuid.UUID) error
}

type userService struct {
  db            *gorm.DB
  log           *logger.Logger
  userRepo      repos.UserRepo
  userTokenRepo repos.UserTokenRepo
}

func NewUserService(
  db *gorm.DB,
  log *logger.Logger,
  userRepo repos.UserRepo,
  userTokenRepo repos.UserTokenRepo,
) UserService {
  serviceLog := log.With("service", "UserService")
  return &userService{
    db:            db,
    log:           serviceLog,
    userRepo:      userRepo,
    userTokenRepo: userTokenRepo,
  }
}

func (us *userService) GetByID(ctx context.Context, userID uuid.UUID) (*types.User, error) {
  users, err := us.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
  if err != nil {
    return nil, fmt.Errorf("failed to fetch user: %w", err)
  }
  if len(users) == 0 {
    return nil, fmt.Errorf("user not found: %w", apperr.ErrNotFound)
  }
  return users[0], nil
}

func (us *userService) GetAll(ctx context.Context) ([]*types.User, error) {
  users, err := us.userRepo.GetAll(ctx, nil)
  if err != nil {
    return nil, fmt.Errorf("failed to list users: %w", err)
  }
  return users, nil
}

func (us *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, update *UserProfileUpdate) (*types.User, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil {
    return nil, fmt.Errorf("missing request context: %w", apperr.ErrUnauthorized)
  }
  if rd.UserID != userID && !rd.IsAdmin() {
    return nil, fmt.Errorf("cannot update another user's profile: %w", apperr.ErrForbidden)
  }

  fields := map[string]interface{}{}
  if update.Name != nil {
    name := normalization.TrimInputString(*update.Name)
    if name == "" {
      return nil, fmt.Errorf("name cannot be empty: %w", apperr.ErrInvalidArgument)
    }
    fields["name"] = name
  }
  if update.Email != nil {
    email := normalization.ParseInputString(*update.Email)
    if email == "" {
      return nil, fmt.Errorf("email cannot be empty: %w", apperr.ErrInvalidArgument)
    }
    exists, exErr := us.userRepo.EmailExists(ctx, nil, email)
    if exErr != nil {
      return nil, fmt.Errorf("failed to check email: %w", exErr)
    }
    if exists {
      return nil, fmt.Errorf("email is already registered: %w", apperr.ErrConflict)
    }
    fields["email"] = email
  }
  if update.Password != nil {
    if len(*update.Password) < 6 {
      return nil, fmt.Errorf("password must be at least 6 characters: %w", apperr.ErrInvalidArgument)
    }
    hashed, hErr := bcrypt.GenerateFromPassword([]byte(*update.Password), bcrypt.DefaultCost)
    if hErr != nil {
      return nil, fmt.Errorf("failed to hash password: %w", hErr)
    }
    fields["password"] = string(hashed)
  }
  if len(fields) == 0 {
    return nil, fmt.Errorf("no fields to update: %w", apperr.ErrInvalidArgument)
  }

  if err := us.userRepo.UpdateFields(ctx, nil, userID, fields); err != nil {
    return nil, fmt.Errorf("failed to update user: %w", err)
  }
  return us.GetByID(ctx, userID)
}

func (us *userService) SetRole(ctx context.Context, userID uuid.UUID, role string) (*types.User, error) {
  if role != types.RoleUser && role != types.RoleAdmin {
    return nil, fmt.Errorf("unknown role %q: %w", role, apperr.ErrInvalidArgument)
  }
  if _, err := us.GetByID(ctx, userID); err != nil {
    return nil, err
  }
  if err := us.userRepo.UpdateFields(ctx, nil, userID, map[string]interface{}{"role": role}); err != nil {
    return nil, fmt.Errorf("failed to update user role: %w", err)
  }
  return us.GetByID(ctx, userID)
}

func (us *userService) Delete(ctx context.Context, userID uuid.UUID) error {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil {
    return fmt.Errorf("missing request context: %w", apperr.ErrUnauthorized)
  }
  if rd.UserID != userID && !rd.IsAdmin() {
    return fmt.Errorf("cannot delete another user: %w", apperr.ErrForbidden)
  }
  if _, err := us.GetByID(ctx, userID); err != nil {
    return err
  }
  return us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    if err := us.userTokenRepo.FullDeleteByUserIDs(ctx, tx, []uuid.UUID{userID}); err != nil {
      return fmt.Errorf("failed to delete user tokens: %w", err)
    }
    if err := us.userRepo.SoftDeleteByIDs(ctx, tx, []uuid.UUID{userID}); err != nil {
      return fmt.Errorf("failed to delete user: %w", err)
    }
    return nil
  })
}
