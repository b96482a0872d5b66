package handlers

import (
  "errors"
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/voxelbay/voxelbay-backend/internal/apperr"
)

// statusFor maps service errors onto HTTP statuses. Anything
// unrecognized is treated as an internal failure.
func statusFor(err error) int {
  switch {
  case errors.Is(err, apperr.ErrInvalidArgument):
    return http.StatusBadRequest
  case errors.Is(err, apperr.ErrUnauthorized):
    return http.StatusUnauthorized
  case errors.Is(err, apperr.ErrForbidden):
    return http.StatusForbidden
  case errors.Is(err, apperr.ErrNotFound):
    return http.StatusNotFound
  // Duplicates (registration, cart entries) surface as plain
  // validation failures.
  case errors.Is(err, apperr.ErrConflict):
    return http.StatusBadRequest
  default:
    return http.StatusInternalServerError
  }
}

func respondError(c *gin.Context, err error) {
  status := statusFor(err)
  msg := err.Error()
  if status == http.StatusInternalServerError {
    msg = "internal server error"
  }
  c.JSON(status, gin.H{"error": msg})
}
