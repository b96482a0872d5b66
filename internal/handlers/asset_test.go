package handlers

import (
  "context"
  "encoding/json"
  "fmt"
  "net/http"
  "os"
  "path/filepath"
  "reflect"
  "strings"
  "testing"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/voxelbay/voxelbay-backend/internal/apperr"
  "github.com/voxelbay/voxelbay-backend/internal/logger"
  "github.com/voxelbay/voxelbay-backend/internal/repos"
  "github.com/voxelbay/voxelbay-backend/internal/services"
  "github.com/voxelbay/voxelbay-backend/internal/types"
)

func newAssetRouter(t *testing.T, svc services.AssetService) *gin.Engine {
  t.Helper()
  log, err := logger.New("development")
  if err != nil {
    t.Fatalf("failed to init logger: %v", err)
  }
  h := NewAssetHandler(log, svc)
  r := gin.New()
  r.GET("/assets", h.List)
  r.GET("/assets/trending", h.Trending)
  r.GET("/assets/:id", h.GetByID)
  r.DELETE("/assets/:id", h.Delete)
  r.GET("/assets/download/:id", h.Download)
  return r
}

func TestAssetHandler_List_PassesFilter(t *testing.T) {
  var gotFilter repos.AssetListFilter
  svc := &fakeAssetService{
    listFn: func(ctx context.Context, filter repos.AssetListFilter) ([]*types.Asset, int64, error) {
      gotFilter = filter
      return []*types.Asset{{Title: "robot"}}, 1, nil
    },
  }
  req, _ := http.NewRequest(http.MethodGet, "/assets?type=model&tag=scifi&limit=5&page=2&sort=rating", nil)
  w := performRequest(newAssetRouter(t, svc), req)

  if w.Code != http.StatusOK {
    t.Fatalf("expected 200, got %d", w.Code)
  }
  want := repos.AssetListFilter{Kind: "model", Tag: "scifi", Sort: "rating", Limit: 5, Page: 2}
  if !reflect.DeepEqual(gotFilter, want) {
    t.Fatalf("filter = %+v, want %+v", gotFilter, want)
  }
}

func TestAssetHandler_GetByID_InvalidID(t *testing.T) {
  svc := &fakeAssetService{
    getFn: func(ctx context.Context, assetID uuid.UUID) (*types.Asset, error) {
      t.Fatalf("service should not be called for a malformed id")
      return nil, nil
    },
  }
  req, _ := http.NewRequest(http.MethodGet, "/assets/not-a-uuid", nil)
  w := performRequest(newAssetRouter(t, svc), req)

  if w.Code != http.StatusBadRequest {
    t.Fatalf("expected 400, got %d", w.Code)
  }
}

func TestAssetHandler_GetByID_NotFound(t *testing.T) {
  svc := &fakeAssetService{
    getFn: func(ctx context.Context, assetID uuid.UUID) (*types.Asset, error) {
      return nil, fmt.Errorf("asset not found: %w", apperr.ErrNotFound)
    },
  }
  req, _ := http.NewRequest(http.MethodGet, "/assets/"+uuid.NewString(), nil)
  w := performRequest(newAssetRouter(t, svc), req)

  if w.Code != http.StatusNotFound {
    t.Fatalf("expected 404, got %d", w.Code)
  }
}

func TestAssetHandler_Delete_Forbidden(t *testing.T) {
  svc := &fakeAssetService{
    deleteFn: func(ctx context.Context, assetID uuid.UUID) error {
      return fmt.Errorf("only the owner can delete an asset: %w", apperr.ErrForbidden)
    },
  }
  req, _ := http.NewRequest(http.MethodDelete, "/assets/"+uuid.NewString(), nil)
  w := performRequest(newAssetRouter(t, svc), req)

  if w.Code != http.StatusForbidden {
    t.Fatalf("expected 403, got %d", w.Code)
  }
}

func TestAssetHandler_Download_StreamsAttachment(t *testing.T) {
  dir := t.TempDir()
  path := filepath.Join(dir, "payload.bin")
  if err := os.WriteFile(path, []byte("binary-data"), 0o644); err != nil {
    t.Fatalf("failed to write payload: %v", err)
  }
  cleaned := false
  svc := &fakeAssetService{
    downloadFn: func(ctx context.Context, assetID uuid.UUID) (*services.DownloadPayload, error) {
      return &services.DownloadPayload{
        Path:        path,
        FileName:    "robot.obj",
        ContentType: "application/octet-stream",
        Cleanup:     func() { cleaned = true },
      }, nil
    },
  }
  req, _ := http.NewRequest(http.MethodGet, "/assets/download/"+uuid.NewString(), nil)
  w := performRequest(newAssetRouter(t, svc), req)

  if w.Code != http.StatusOK {
    t.Fatalf("expected 200, got %d", w.Code)
  }
  if w.Body.String() != "binary-data" {
    t.Fatalf("unexpected body: %q", w.Body.String())
  }
  disp := w.Header().Get("Content-Disposition")
  if !strings.Contains(disp, "attachment") || !strings.Contains(disp, "robot.obj") {
    t.Fatalf("unexpected disposition: %q", disp)
  }
  if !cleaned {
    t.Fatalf("expected cleanup to run after streaming")
  }
}

func TestAssetHandler_Trending_OK(t *testing.T) {
  svc := &fakeAssetService{
    trendingFn: func(ctx context.Context, limit int) ([]*types.Asset, error) {
      if limit != 3 {
        t.Fatalf("expected limit 3, got %d", limit)
      }
      return []*types.Asset{{Title: "hot"}}, nil
    },
  }
  req, _ := http.NewRequest(http.MethodGet, "/assets/trending?limit=3", nil)
  w := performRequest(newAssetRouter(t, svc), req)

  if w.Code != http.StatusOK {
    t.Fatalf("expected 200, got %d", w.Code)
  }
  var resp struct {
    Assets []json.RawMessage `json:"assets"`
  }
  if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
    t.Fatalf("invalid response body: %v", err)
  }
  if len(resp.Assets) != 1 {
    t.Fatalf("expected 1 trending asset, got %d", len(resp.Assets))
  }
}
