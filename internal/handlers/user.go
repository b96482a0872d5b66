package handlers

import (
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/voxelbay/voxelbay-backend/internal/requestdata"
  "github.com/voxelbay/voxelbay-backend/internal/services"
)

type UserHandler struct {
  userService  services.UserService
  assetService services.AssetService
}

func NewUserHandler(userService services.UserService, assetService services.AssetService) *UserHandler {
  return &UserHandler{userService: userService, assetService: assetService}
}

func (uh *UserHandler) GetMe(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    c.JSON(http.StatusUnauthorized, gin.H{"error": "missing request context"})
    return
  }
  user, err := uh.userService.GetByID(c.Request.Context(), rd.UserID)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"user": user})
}

func (uh *UserHandler) List(c *gin.Context) {
  users, err := uh.userService.GetAll(c.Request.Context())
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"users": users})
}

func (uh *UserHandler) GetByID(c *gin.Context) {
  userID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
    return
  }
  user, err := uh.userService.GetByID(c.Request.Context(), userID)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"user": user})
}

func (uh *UserHandler) UpdateMe(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    c.JSON(http.StatusUnauthorized, gin.H{"error": "missing request context"})
    return
  }
  var req services.UserProfileUpdate
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  user, err := uh.userService.UpdateProfile(c.Request.Context(), rd.UserID, &req)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"user": user})
}

func (uh *UserHandler) GetAssets(c *gin.Context) {
  userID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
    return
  }
  assets, err := uh.assetService.GetByOwner(c.Request.Context(), userID)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"assets": assets})
}

func (uh *UserHandler) Delete(c *gin.Context) {
  userID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
    return
  }
  if err := uh.userService.Delete(c.Request.Context(), userID); err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"success": true})
}
