package services

import (
  "context"
  "errors"
  "testing"

  "github.com/google/uuid"

  "github.com/voxelbay/voxelbay-backend/internal/apperr"
  "github.com/voxelbay/voxelbay-backend/internal/repos"
  "github.com/voxelbay/voxelbay-backend/internal/repos/testutil"
  "github.com/voxelbay/voxelbay-backend/internal/requestdata"
)

func TestMeanScore_Empty(t *testing.T) {
  if got := MeanScore(nil); got != 0 {
    t.Fatalf("expected 0 for no scores, got %v", got)
  }
}

func TestMeanScore_SingleScore(t *testing.T) {
  if got := MeanScore([]int{4}); got != 4.0 {
    t.Fatalf("expected 4.0, got %v", got)
  }
}

func TestMeanScore_Mixed(t *testing.T) {
  if got := MeanScore([]int{5, 3}); got != 4.0 {
    t.Fatalf("expected 4.0, got %v", got)
  }
}

// A text-only comment is stored with score zero and still counts
// toward the denominator.
func TestMeanScore_ZeroScoresDilute(t *testing.T) {
  if got := MeanScore([]int{4, 0}); got != 2.0 {
    t.Fatalf("expected 2.0, got %v", got)
  }
}

func commentCtx(t *testing.T) context.Context {
  t.Helper()
  return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
    UserID: uuid.New(),
  })
}

// Validation runs before any database work, so a nil db is safe here.
func TestCommentService_Create_RejectsEmpty(t *testing.T) {
  svc := NewCommentService(nil, testutil.Logger(t), nil, nil)
  _, err := svc.Create(commentCtx(t), &CreateCommentInput{AssetID: uuid.New()})
  if !errors.Is(err, apperr.ErrInvalidArgument) {
    t.Fatalf("expected invalid argument for empty comment, got %v", err)
  }
}

func TestCommentService_Create_RejectsOutOfRangeScore(t *testing.T) {
  svc := NewCommentService(nil, testutil.Logger(t), nil, nil)
  six := 6
  _, err := svc.Create(commentCtx(t), &CreateCommentInput{AssetID: uuid.New(), Score: &six})
  if !errors.Is(err, apperr.ErrInvalidArgument) {
    t.Fatalf("expected invalid argument for score 6, got %v", err)
  }
}

// An explicit zero score is a valid rating, distinct from no score at all.
func TestCommentService_Create_AcceptsZeroScore(t *testing.T) {
  db := testutil.DB(t)
  log := testutil.Logger(t)
  commentRepo := repos.NewCommentRepo(db, log)
  assetRepo := repos.NewAssetRepo(db, log)
  svc := NewCommentService(db, log, commentRepo, assetRepo)

  owner := testutil.SeedUser(t, db)
  asset := testutil.SeedAsset(t, db, owner, "Zero Rated", "model", nil)
  ctx := requestdata.WithRequestData(context.Background(), &requestdata.RequestData{UserID: owner.ID})

  zero := 0
  comment, err := svc.Create(ctx, &CreateCommentInput{AssetID: asset.ID, Score: &zero})
  if err != nil {
    t.Fatalf("zero rating rejected: %v", err)
  }
  if comment.Score != 0 {
    t.Fatalf("expected stored score 0, got %d", comment.Score)
  }

  updated, err := assetRepo.GetByIDs(ctx, nil, []uuid.UUID{asset.ID})
  if err != nil || len(updated) == 0 {
    t.Fatalf("failed to reload asset: %v", err)
  }
  if updated[0].Rating != 0 || updated[0].CommentCount != 1 {
    t.Fatalf("expected rating 0 with one comment, got rating=%v count=%d",
      updated[0].Rating, updated[0].CommentCount)
  }
}
