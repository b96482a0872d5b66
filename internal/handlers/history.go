package handlers

import (
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/voxelbay/voxelbay-backend/internal/services"
)

type HistoryHandler struct {
  historyService services.HistoryService
}

func NewHistoryHandler(historyService services.HistoryService) *HistoryHandler {
  return &HistoryHandler{historyService: historyService}
}

func (hh *HistoryHandler) ListMine(c *gin.Context) {
  entries, err := hh.historyService.ListByUser(c.Request.Context())
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"history": entries})
}
