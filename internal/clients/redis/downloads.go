package redis

import (
  "context"
  "fmt"
  "os"
  "strings"
  "time"

  "github.com/google/uuid"
  goredis "github.com/redis/go-redis/v9"

  "github.com/voxelbay/voxelbay-backend/internal/logger"
)

// DownloadCounter keeps a sorted set of per-asset download counts so
// the catalog can surface trending assets. It is optional: when redis
// is not configured the rest of the system runs without it.
type DownloadCounter interface {
  Increment(ctx context.Context, assetID uuid.UUID) error
  Top(ctx context.Context, n int) ([]uuid.UUID, error)
  Close() error
}

type downloadCounter struct {
  log *logger.Logger
  rdb *goredis.Client
  key string
}

func NewDownloadCounter(log *logger.Logger) (DownloadCounter, error) {
  if log == nil {
    return nil, fmt.Errorf("logger required")
  }

  addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
  if addr == "" {
    return nil, fmt.Errorf("missing REDIS_ADDR")
  }
  key := strings.TrimSpace(os.Getenv("REDIS_DOWNLOADS_KEY"))
  if key == "" {
    key = "asset_downloads"
  }

  rdb := goredis.NewClient(&goredis.Options{
    Addr:        addr,
    DialTimeout: 5 * time.Second,
  })

  ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
  defer cancel()
  if err := rdb.Ping(ctx).Err(); err != nil {
    _ = rdb.Close()
    return nil, fmt.Errorf("redis ping: %w", err)
  }

  return &downloadCounter{
    log: log.With("service", "DownloadCounter"),
    rdb: rdb,
    key: key,
  }, nil
}

func (dc *downloadCounter) Increment(ctx context.Context, assetID uuid.UUID) error {
  if dc == nil || dc.rdb == nil {
    return fmt.Errorf("download counter not initialized")
  }
  ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
  defer cancel()
  if err := dc.rdb.ZIncrBy(ctx, dc.key, 1, assetID.String()).Err(); err != nil {
    return fmt.Errorf("redis zincrby: %w", err)
  }
  return nil
}

func (dc *downloadCounter) Top(ctx context.Context, n int) ([]uuid.UUID, error) {
  if dc == nil || dc.rdb == nil {
    return nil, fmt.Errorf("download counter not initialized")
  }
  if n <= 0 {
    n = 10
  }
  ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
  defer cancel()
  members, err := dc.rdb.ZRevRange(ctx, dc.key, 0, int64(n-1)).Result()
  if err != nil {
    return nil, fmt.Errorf("redis zrevrange: %w", err)
  }
  ids := make([]uuid.UUID, 0, len(members))
  for _, m := range members {
    id, err := uuid.Parse(m)
    if err != nil {
      dc.log.Warn("skipping malformed member in downloads set", "member", m)
      continue
    }
    ids = append(ids, id)
  }
  return ids, nil
}

func (dc *downloadCounter) Close() error {
  if dc == nil || dc.rdb == nil {
    return nil
  }
  return dc.rdb.Close()
}
