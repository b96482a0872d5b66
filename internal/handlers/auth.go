package handlers

import (
  "errors"
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/voxelbay/voxelbay-backend/internal/apperr"
  "github.com/voxelbay/voxelbay-backend/internal/services"
  "github.com/voxelbay/voxelbay-backend/internal/types"
)

type AuthHandler struct {
  authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
  return &AuthHandler{authService: authService}
}

func (ah *AuthHandler) Register(c *gin.Context) {
  var req struct {
    Name     string `json:"name"`
    Email    string `json:"email"`
    Password string `json:"password"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  user := types.User{
    Name:     req.Name,
    Email:    req.Email,
    Password: req.Password,
  }
  pair, err := ah.authService.RegisterUser(c.Request.Context(), &user)
  if err != nil {
    respondError(c, err)
    return
  }
  expiresIn := int(ah.authService.GetAccessTTL().Seconds())
  c.JSON(http.StatusCreated, gin.H{
    "token":         pair.AccessToken,
    "refresh_token": pair.RefreshToken,
    "expires_in":    expiresIn,
    "user":          user,
  })
}

func (ah *AuthHandler) Login(c *gin.Context) {
  var req struct {
    Email    string `json:"email"`
    Password string `json:"password"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  pair, user, err := ah.authService.LoginUser(c.Request.Context(), req.Email, req.Password)
  if err != nil {
    // Bad credentials on this endpoint are a request error, not a
    // missing-token error.
    if errors.Is(err, apperr.ErrUnauthorized) {
      c.JSON(http.StatusBadRequest, gin.H{"error": "invalid credentials"})
      return
    }
    respondError(c, err)
    return
  }
  expiresIn := int(ah.authService.GetAccessTTL().Seconds())
  c.JSON(http.StatusOK, gin.H{
    "token":         pair.AccessToken,
    "refresh_token": pair.RefreshToken,
    "expires_in":    expiresIn,
    "user":          user,
  })
}

func (ah *AuthHandler) Refresh(c *gin.Context) {
  var req struct {
    RefreshToken string `json:"refresh_token"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  pair, err := ah.authService.RefreshUser(c.Request.Context(), req.RefreshToken)
  if err != nil {
    respondError(c, err)
    return
  }
  expiresIn := int(ah.authService.GetAccessTTL().Seconds())
  c.JSON(http.StatusOK, gin.H{
    "token":         pair.AccessToken,
    "refresh_token": pair.RefreshToken,
    "expires_in":    expiresIn,
  })
}

func (ah *AuthHandler) Logout(c *gin.Context) {
  if err := ah.authService.LogoutUser(c.Request.Context()); err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"success": true})
}
