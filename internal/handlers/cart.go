package handlers

import (
  "context"
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/voxelbay/voxelbay-backend/internal/services"
)

type CartHandler struct {
  cartService services.CartService
}

func NewCartHandler(cartService services.CartService) *CartHandler {
  return &CartHandler{cartService: cartService}
}

func (ch *CartHandler) Get(c *gin.Context) {
  cart, err := ch.cartService.Get(c.Request.Context())
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"cart": cart})
}

func (ch *CartHandler) AddItem(c *gin.Context) {
  var req struct {
    AssetID string `json:"assetId"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  assetID, err := uuid.Parse(req.AssetID)
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid asset id"})
    return
  }
  cart, err := ch.cartService.AddItem(c.Request.Context(), assetID)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"cart": cart})
}

func (ch *CartHandler) RemoveItem(c *gin.Context) {
  assetID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid asset id"})
    return
  }
  cart, err := ch.cartService.RemoveItem(c.Request.Context(), assetID)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"cart": cart})
}

func (ch *CartHandler) DownloadBundle(c *gin.Context) {
  payload, err := ch.cartService.DownloadBundle(c.Request.Context())
  if err != nil {
    respondError(c, err)
    return
  }
  defer payload.Cleanup()
  c.Header("Content-Type", "application/zip")
  c.FileAttachment(payload.Path, payload.FileName)
  // History and cart-clear run only after the response has been
  // written; a client that never got the bytes keeps its cart. The
  // request context may already be canceled by then, so finalize on
  // a fresh one.
  payload.Finalize(context.Background())
}
