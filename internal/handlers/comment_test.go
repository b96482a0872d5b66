package handlers

import (
  "bytes"
  "context"
  "encoding/json"
  "fmt"
  "net/http"
  "testing"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/voxelbay/voxelbay-backend/internal/apperr"
  "github.com/voxelbay/voxelbay-backend/internal/services"
  "github.com/voxelbay/voxelbay-backend/internal/types"
)

func newCommentRouter(svc services.CommentService) *gin.Engine {
  h := NewCommentHandler(svc)
  r := gin.New()
  r.POST("/assets/:id/comments", h.Create)
  r.PUT("/assets/:id/rating", h.Rate)
  r.GET("/comments/asset/:id", h.ListByAsset)
  r.DELETE("/comments/:id", h.Delete)
  return r
}

func TestCommentHandler_Create_Created(t *testing.T) {
  assetID := uuid.New()
  svc := &fakeCommentService{
    createFn: func(ctx context.Context, input *services.CreateCommentInput) (*types.Comment, error) {
      if input.AssetID != assetID {
        t.Fatalf("expected asset id %s, got %s", assetID, input.AssetID)
      }
      if input.Text != "great model" || input.Score == nil || *input.Score != 4 {
        t.Fatalf("unexpected input: %+v", input)
      }
      return &types.Comment{ID: uuid.New(), AssetID: assetID, Text: input.Text, Score: *input.Score}, nil
    },
  }
  body, _ := json.Marshal(map[string]any{"text": "great model", "score": 4})
  req, _ := http.NewRequest(http.MethodPost, "/assets/"+assetID.String()+"/comments", bytes.NewReader(body))
  w := performRequest(newCommentRouter(svc), req)

  if w.Code != http.StatusCreated {
    t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
  }
}

func TestCommentHandler_Rate_ScoreOnly(t *testing.T) {
  assetID := uuid.New()
  svc := &fakeCommentService{
    createFn: func(ctx context.Context, input *services.CreateCommentInput) (*types.Comment, error) {
      if input.Text != "" {
        t.Fatalf("rating should carry no text, got %q", input.Text)
      }
      if input.Score == nil || *input.Score != 5 {
        t.Fatalf("expected score 5, got %v", input.Score)
      }
      return &types.Comment{ID: uuid.New(), AssetID: assetID, Score: 5}, nil
    },
  }
  body, _ := json.Marshal(map[string]int{"score": 5})
  req, _ := http.NewRequest(http.MethodPut, "/assets/"+assetID.String()+"/rating", bytes.NewReader(body))
  w := performRequest(newCommentRouter(svc), req)

  if w.Code != http.StatusOK {
    t.Fatalf("expected 200, got %d", w.Code)
  }
}

func TestCommentHandler_Rate_ZeroScore(t *testing.T) {
  assetID := uuid.New()
  svc := &fakeCommentService{
    createFn: func(ctx context.Context, input *services.CreateCommentInput) (*types.Comment, error) {
      if input.Score == nil {
        t.Fatalf("explicit zero rating must reach the service as a score")
      }
      if *input.Score != 0 {
        t.Fatalf("expected score 0, got %d", *input.Score)
      }
      return &types.Comment{ID: uuid.New(), AssetID: assetID, Score: 0}, nil
    },
  }
  body, _ := json.Marshal(map[string]int{"score": 0})
  req, _ := http.NewRequest(http.MethodPut, "/assets/"+assetID.String()+"/rating", bytes.NewReader(body))
  w := performRequest(newCommentRouter(svc), req)

  if w.Code != http.StatusOK {
    t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
  }
}

func TestCommentHandler_Rate_MissingScore(t *testing.T) {
  svc := &fakeCommentService{
    createFn: func(ctx context.Context, input *services.CreateCommentInput) (*types.Comment, error) {
      t.Fatalf("service must not be called without a score")
      return nil, nil
    },
  }
  req, _ := http.NewRequest(http.MethodPut, "/assets/"+uuid.NewString()+"/rating", bytes.NewReader([]byte(`{}`)))
  w := performRequest(newCommentRouter(svc), req)

  if w.Code != http.StatusBadRequest {
    t.Fatalf("expected 400, got %d", w.Code)
  }
}

func TestCommentHandler_Delete_Forbidden(t *testing.T) {
  svc := &fakeCommentService{
    deleteFn: func(ctx context.Context, commentID uuid.UUID) error {
      return fmt.Errorf("only the author can delete a comment: %w", apperr.ErrForbidden)
    },
  }
  req, _ := http.NewRequest(http.MethodDelete, "/comments/"+uuid.NewString(), nil)
  w := performRequest(newCommentRouter(svc), req)

  if w.Code != http.StatusForbidden {
    t.Fatalf("expected 403, got %d", w.Code)
  }
}
