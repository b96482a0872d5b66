package handlers

import (
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/voxelbay/voxelbay-backend/internal/services"
)

type AdminHandler struct {
  userService services.UserService
}

func NewAdminHandler(userService services.UserService) *AdminHandler {
  return &AdminHandler{userService: userService}
}

func (ah *AdminHandler) ListUsers(c *gin.Context) {
  users, err := ah.userService.GetAll(c.Request.Context())
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"users": users})
}

func (ah *AdminHandler) SetUserRole(c *gin.Context) {
  userID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
    return
  }
  var req struct {
    Role string `json:"role"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  user, err := ah.userService.SetRole(c.Request.Context(), userID, req.Role)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"user": user})
}
