package handlers

import (
  "errors"
  "fmt"
  "net/http"
  "testing"

  "github.com/voxelbay/voxelbay-backend/internal/apperr"
)

func TestStatusFor_MapsSentinels(t *testing.T) {
  cases := []struct {
    err  error
    want int
  }{
    {fmt.Errorf("bad input: %w", apperr.ErrInvalidArgument), http.StatusBadRequest},
    {fmt.Errorf("no token: %w", apperr.ErrUnauthorized), http.StatusUnauthorized},
    {fmt.Errorf("not yours: %w", apperr.ErrForbidden), http.StatusForbidden},
    {fmt.Errorf("gone: %w", apperr.ErrNotFound), http.StatusNotFound},
    {fmt.Errorf("duplicate: %w", apperr.ErrConflict), http.StatusBadRequest},
    {errors.New("boom"), http.StatusInternalServerError},
  }
  for _, tc := range cases {
    if got := statusFor(tc.err); got != tc.want {
      t.Fatalf("statusFor(%v) = %d, want %d", tc.err, got, tc.want)
    }
  }
}
