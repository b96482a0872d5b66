package handlers

import (
  "fmt"
  "io"
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/voxelbay/voxelbay-backend/internal/clients/gcp"
  "github.com/voxelbay/voxelbay-backend/internal/logger"
)

// DriveHandler proxies preview images out of remote storage so the
// frontend never needs storage credentials.
type DriveHandler struct {
  log   *logger.Logger
  drive gcp.DriveService
}

func NewDriveHandler(log *logger.Logger, drive gcp.DriveService) *DriveHandler {
  return &DriveHandler{
    log:   log.With("handler", "DriveHandler"),
    drive: drive,
  }
}

func (dh *DriveHandler) GetFile(c *gin.Context) {
  fileID := c.Param("fileId")
  if fileID == "" {
    c.JSON(http.StatusBadRequest, gin.H{"error": "missing file id"})
    return
  }
  meta, err := dh.drive.GetFileMeta(c.Request.Context(), fileID)
  if err != nil {
    respondError(c, err)
    return
  }
  body, err := dh.drive.OpenFile(c.Request.Context(), fileID)
  if err != nil {
    respondError(c, err)
    return
  }
  defer body.Close()

  if meta.MimeType != "" {
    c.Header("Content-Type", meta.MimeType)
  }
  c.Header("Cache-Control", "public, max-age=86400")
  if c.Query("download") == "true" {
    c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", meta.Name))
  }
  c.Status(http.StatusOK)
  if _, cpErr := io.Copy(c.Writer, body); cpErr != nil {
    dh.log.Warn("failed to stream remote file", "error", cpErr, "file_id", fileID)
  }
}
