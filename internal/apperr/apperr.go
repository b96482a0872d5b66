package apperr

import "errors"

var (
  // ErrNotFound is a generic sentinel for missing resources.
  ErrNotFound = errors.New("not found")
  // ErrUnauthorized is a generic sentinel for auth failures.
  ErrUnauthorized = errors.New("unauthorized")
  // ErrForbidden is returned when the caller lacks permission.
  ErrForbidden = errors.New("forbidden")
  // ErrConflict is returned on duplicates (email, cart entry).
  ErrConflict = errors.New("conflict")
  // ErrInvalidArgument is a generic sentinel for invalid input.
  ErrInvalidArgument = errors.New("invalid argument")
)
