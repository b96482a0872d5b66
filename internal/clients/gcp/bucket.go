package gcp

import (
  "context"
  "fmt"
  "io"
  "os"
  "strings"
  "time"

  "cloud.google.com/go/storage"
  "google.golang.org/api/option"

  "github.com/voxelbay/voxelbay-backend/internal/logger"
)

// BucketService is the GCS-backed store for generated user avatars.
// Asset binaries live in Drive (see DriveService); avatars are small,
// public and served straight from the bucket or a CDN in front of it.
type BucketService interface {
  UploadFile(ctx context.Context, key string, file io.Reader) error
  DeleteFile(ctx context.Context, key string) error
  GetPublicURL(key string) string
}

type bucketService struct {
  log           *logger.Logger
  storageClient *storage.Client
  bucketName    string
  cdnDomain     string
}

func NewBucketService(log *logger.Logger) (BucketService, error) {
  serviceLog := log.With("service", "BucketService")

  bucketName := strings.TrimSpace(os.Getenv("AVATAR_GCS_BUCKET_NAME"))
  if bucketName == "" {
    return nil, fmt.Errorf("missing env var AVATAR_GCS_BUCKET_NAME")
  }
  cdnDomain := strings.TrimSpace(os.Getenv("AVATAR_CDN_DOMAIN"))

  ctx := context.Background()
  opts := ClientOptionsFromEnv()
  opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
  stClient, err := storage.NewClient(ctx, opts...)
  if err != nil {
    return nil, fmt.Errorf("failed to create storage client: %w", err)
  }

  return &bucketService{
    log:           serviceLog,
    storageClient: stClient,
    bucketName:    bucketName,
    cdnDomain:     cdnDomain,
  }, nil
}

func (bs *bucketService) UploadFile(ctx context.Context, key string, file io.Reader) error {
  ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
  defer cancel()

  w := bs.storageClient.Bucket(bs.bucketName).Object(key).NewWriter(ctx)
  if strings.HasSuffix(strings.ToLower(key), ".png") {
    w.ContentType = "image/png"
  }
  if _, err := io.Copy(w, file); err != nil {
    _ = w.Close()
    return fmt.Errorf("failed to write data to GCS: %w", err)
  }
  if err := w.Close(); err != nil {
    return fmt.Errorf("failed to close GCS writer: %w", err)
  }
  return nil
}

func (bs *bucketService) DeleteFile(ctx context.Context, key string) error {
  ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
  defer cancel()

  o := bs.storageClient.Bucket(bs.bucketName).Object(key)
  if err := o.Delete(ctx); err != nil {
    return fmt.Errorf("failed to delete GCS object %q: %w", key, err)
  }
  return nil
}

func (bs *bucketService) GetPublicURL(key string) string {
  if bs.cdnDomain != "" {
    return fmt.Sprintf("https://%s/%s", bs.cdnDomain, key)
  }
  return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bs.bucketName, key)
}
