package handlers

import (
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/voxelbay/voxelbay-backend/internal/services"
)

type CommentHandler struct {
  commentService services.CommentService
}

func NewCommentHandler(commentService services.CommentService) *CommentHandler {
  return &CommentHandler{commentService: commentService}
}

func (ch *CommentHandler) Create(c *gin.Context) {
  assetID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid asset id"})
    return
  }
  var req struct {
    Text  string `json:"text"`
    Score *int   `json:"score"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  comment, err := ch.commentService.Create(c.Request.Context(), &services.CreateCommentInput{
    AssetID: assetID,
    Text:    req.Text,
    Score:   req.Score,
  })
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

// CreateFromBody accepts the asset id in the body instead of the path.
func (ch *CommentHandler) CreateFromBody(c *gin.Context) {
  var req struct {
    AssetID string `json:"assetId"`
    Text    string `json:"text"`
    Score   *int   `json:"score"`
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
  comment, err := ch.commentService.Create(c.Request.Context(), &services.CreateCommentInput{
    AssetID: assetID,
    Text:    req.Text,
    Score:   req.Score,
  })
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

// Rate records a score-only comment. The asset rating is the mean of
// every comment score, so a rating is just a comment without text.
func (ch *CommentHandler) Rate(c *gin.Context) {
  assetID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid asset id"})
    return
  }
  var req struct {
    Score *int `json:"score"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  if req.Score == nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "score is required"})
    return
  }
  comment, err := ch.commentService.Create(c.Request.Context(), &services.CreateCommentInput{
    AssetID: assetID,
    Score:   req.Score,
  })
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"comment": comment})
}

func (ch *CommentHandler) GetByID(c *gin.Context) {
  commentID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid comment id"})
    return
  }
  comment, err := ch.commentService.GetByID(c.Request.Context(), commentID)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"comment": comment})
}

func (ch *CommentHandler) ListByAsset(c *gin.Context) {
  assetID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid asset id"})
    return
  }
  comments, err := ch.commentService.GetByAssetID(c.Request.Context(), assetID)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"comments": comments})
}

func (ch *CommentHandler) Delete(c *gin.Context) {
  commentID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid comment id"})
    return
  }
  if err := ch.commentService.Delete(c.Request.Context(), commentID); err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"success": true})
}
