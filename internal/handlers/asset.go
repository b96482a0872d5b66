package handlers

import (
  "net/http"
  "os"
  "path/filepath"
  "strconv"
  "strings"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/voxelbay/voxelbay-backend/internal/logger"
  "github.com/voxelbay/voxelbay-backend/internal/repos"
  "github.com/voxelbay/voxelbay-backend/internal/services"
)

const maxUploadMemory = 32 << 20

type AssetHandler struct {
  log          *logger.Logger
  assetService services.AssetService
}

func NewAssetHandler(log *logger.Logger, assetService services.AssetService) *AssetHandler {
  return &AssetHandler{
    log:          log.With("handler", "AssetHandler"),
    assetService: assetService,
  }
}

func (ah *AssetHandler) Create(c *gin.Context) {
  if err := c.Request.ParseMultipartForm(maxUploadMemory); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
    return
  }
  form := c.Request.MultipartForm
  fileHeaders := form.File["file"]
  imageHeaders := form.File["image"]
  if len(fileHeaders) == 0 {
    c.JSON(http.StatusBadRequest, gin.H{"error": "at least one file is required"})
    return
  }

  scratchDir, err := os.MkdirTemp("", "asset-upload-")
  if err != nil {
    c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
    return
  }
  defer func() {
    if rmErr := os.RemoveAll(scratchDir); rmErr != nil {
      ah.log.Warn("failed to remove upload scratch dir", "error", rmErr, "dir", scratchDir)
    }
  }()

  input := services.CreateAssetInput{
    Title:       c.PostForm("title"),
    Kind:        c.PostForm("type"),
    Description: c.PostForm("description"),
    Tags:        splitTags(c.PostFormArray("tags")),
  }
  for i, fh := range fileHeaders {
    localPath := filepath.Join(scratchDir, "file-"+strconv.Itoa(i))
    if svErr := c.SaveUploadedFile(fh, localPath); svErr != nil {
      c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded file"})
      return
    }
    input.Files = append(input.Files, services.UploadFile{Path: localPath, Name: fh.Filename})
  }
  for i, fh := range imageHeaders {
    localPath := filepath.Join(scratchDir, "image-"+strconv.Itoa(i))
    if svErr := c.SaveUploadedFile(fh, localPath); svErr != nil {
      c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded image"})
      return
    }
    input.Images = append(input.Images, services.UploadFile{Path: localPath, Name: fh.Filename})
  }

  asset, err := ah.assetService.Create(c.Request.Context(), &input)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusCreated, gin.H{"asset": asset})
}

func (ah *AssetHandler) List(c *gin.Context) {
  filter := repos.AssetListFilter{
    Kind: c.Query("type"),
    Tag:  c.Query("tag"),
    Sort: c.Query("sort"),
  }
  if v := c.Query("limit"); v != "" {
    if n, err := strconv.Atoi(v); err == nil {
      filter.Limit = n
    }
  }
  if v := c.Query("page"); v != "" {
    if n, err := strconv.Atoi(v); err == nil {
      filter.Page = n
    }
  }
  if v := c.Query("owner"); v != "" {
    ownerID, err := uuid.Parse(v)
    if err != nil {
      c.JSON(http.StatusBadRequest, gin.H{"error": "invalid owner id"})
      return
    }
    filter.OwnerID = &ownerID
  }
  assets, total, err := ah.assetService.List(c.Request.Context(), filter)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"assets": assets, "total": total})
}

func (ah *AssetHandler) GetByID(c *gin.Context) {
  assetID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid asset id"})
    return
  }
  asset, err := ah.assetService.GetByID(c.Request.Context(), assetID)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"asset": asset})
}

func (ah *AssetHandler) Delete(c *gin.Context) {
  assetID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid asset id"})
    return
  }
  if err := ah.assetService.Delete(c.Request.Context(), assetID); err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"success": true})
}

func (ah *AssetHandler) Download(c *gin.Context) {
  assetID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid asset id"})
    return
  }
  payload, err := ah.assetService.Download(c.Request.Context(), assetID)
  if err != nil {
    respondError(c, err)
    return
  }
  defer payload.Cleanup()
  if payload.ContentType != "" {
    c.Header("Content-Type", payload.ContentType)
  }
  c.FileAttachment(payload.Path, payload.FileName)
}

func (ah *AssetHandler) Trending(c *gin.Context) {
  limit := 10
  if v := c.Query("limit"); v != "" {
    if n, err := strconv.Atoi(v); err == nil && n > 0 {
      limit = n
    }
  }
  assets, err := ah.assetService.Trending(c.Request.Context(), limit)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"assets": assets})
}

// splitTags flattens repeated form values and comma-separated lists
// into one slice.
func splitTags(values []string) []string {
  tags := make([]string, 0, len(values))
  for _, v := range values {
    for _, part := range strings.Split(v, ",") {
      if p := strings.TrimSpace(part); p != "" {
        tags = append(tags, p)
      }
    }
  }
  return tags
}
