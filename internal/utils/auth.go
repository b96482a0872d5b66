package utils

import (
  "fmt"
  "golang.org/x/crypto/bcrypt"
  "github.com/voxelbay/voxelbay-backend/internal/apperr"
  "github.com/voxelbay/voxelbay-backend/internal/normalization"
  "github.com/voxelbay/voxelbay-backend/internal/types"
)

func NormalizeUserFields(user *types.User) {
  user.Email = normalization.ParseInputString(user.Email)
  user.Name = normalization.TrimInputString(user.Name)
}

func ValidateRegistration(user *types.User) error {
  if user == nil {
    return fmt.Errorf("no user given: %w", apperr.ErrInvalidArgument)
  }
  if user.Email == "" {
    return fmt.Errorf("an email is required to register: %w", apperr.ErrInvalidArgument)
  }
  if user.Password == "" {
    return fmt.Errorf("a password is required to register: %w", apperr.ErrInvalidArgument)
  }
  if user.Name == "" {
    return fmt.Errorf("a name is required to register: %w", apperr.ErrInvalidArgument)
  }
  return nil
}

func ValidateLogin(email, password string) error {
  if email == "" {
    return fmt.Errorf("email is required to login: %w", apperr.ErrInvalidArgument)
  }
  if password == "" {
    return fmt.Errorf("password is required to login: %w", apperr.ErrInvalidArgument)
  }
  return nil
}

func HashPassword(user *types.User) error {
  hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
  if err != nil {
    return fmt.Errorf("failed to hash password")
  }
  user.Password = string(hashedPassword)
  return nil
}
