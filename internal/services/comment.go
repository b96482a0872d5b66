package services

import (
  "context"
  "fmt"
  "gorm.io/gorm"
  "github.com/google/uuid"
  "github.com/voxelbay/voxelbay-backend/internal/apperr"
  "github.com/voxelbay/voxelbay-backend/internal/logger"
  "github.com/voxelbay/voxelbay-backend/internal/normalization"
  "github.com/voxelbay/voxelbay-backend/internal/repos"
  "github.com/voxelbay/voxelbay-backend/internal/requestdata"
  "github.com/voxelbay/voxelbay-backend/internal/types"
)

// Score is a pointer so an explicit zero rating is distinguishable
// from a score-less text comment (both persist as 0).
type CreateCommentInput struct {
  AssetID uuid.UUID
  Text    string
  Score   *int
}

type CommentService interface {
  Create(ctx context.Context, input *CreateCommentInput) (*types.Comment, error)
  GetByID(ctx context.Context, commentID uuid.UUID) (*types.Comment, error)
  GetByAssetID(ctx context.Context, assetID uuid.UUID) ([]*types.Comment, error)
  Delete(ctx context.Context, commentID uuid.UUID) error
}

type commentService struct {
  db          *gorm.DB
  log         *logger.Logger
  commentRepo repos.CommentRepo
  assetRepo   repos.AssetRepo
}

func NewCommentService(
  db *gorm.DB,
  log *logger.Logger,
  commentRepo repos.CommentRepo,
  assetRepo repos.AssetRepo,
) CommentService {
  serviceLog := log.With("service", "CommentService")
  return &commentService{
    db:          db,
    log:         serviceLog,
    commentRepo: commentRepo,
    assetRepo:   assetRepo,
  }
}

// MeanScore averages every comment's score, including score-less
// comments stored as zero, so a text-only comment drags the rating
// down rather than being ignored.
func MeanScore(scores []int) float64 {
  if len(scores) == 0 {
    return 0
  }
  sum := 0
  for _, s := range scores {
    sum += s
  }
  return float64(sum) / float64(len(scores))
}

func (cs *commentService) Create(ctx context.Context, input *CreateCommentInput) (*types.Comment, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil {
    return nil, fmt.Errorf("missing request context: %w", apperr.ErrUnauthorized)
  }
  text := normalization.TrimInputString(input.Text)
  if text == "" && input.Score == nil {
    return nil, fmt.Errorf("comment needs text or a score: %w", apperr.ErrInvalidArgument)
  }
  score := 0
  if input.Score != nil {
    if *input.Score < 0 || *input.Score > 5 {
      return nil, fmt.Errorf("score must be between 0 and 5: %w", apperr.ErrInvalidArgument)
    }
    score = *input.Score
  }

  comment := &types.Comment{
    ID:      uuid.New(),
    AssetID: input.AssetID,
    UserID:  rd.UserID,
    Text:    text,
    Score:   score,
  }
  err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    assets, aErr := cs.assetRepo.GetByIDs(ctx, tx, []uuid.UUID{input.AssetID})
    if aErr != nil {
      return fmt.Errorf("failed to fetch asset: %w", aErr)
    }
    if len(assets) == 0 {
      return fmt.Errorf("asset not found: %w", apperr.ErrNotFound)
    }
    if _, cErr := cs.commentRepo.Create(ctx, tx, []*types.Comment{comment}); cErr != nil {
      return fmt.Errorf("failed to create comment: %w", cErr)
    }
    return cs.recomputeAssetRating(ctx, tx, input.AssetID)
  })
  if err != nil {
    return nil, err
  }

  created, gErr := cs.commentRepo.GetByIDs(ctx, nil, []uuid.UUID{comment.ID})
  if gErr != nil || len(created) == 0 {
    // The row committed; return what we have if the re-read fails.
    return comment, nil
  }
  return created[0], nil
}

func (cs *commentService) GetByID(ctx context.Context, commentID uuid.UUID) (*types.Comment, error) {
  comments, err := cs.commentRepo.GetByIDs(ctx, nil, []uuid.UUID{commentID})
  if err != nil {
    return nil, fmt.Errorf("failed to fetch comment: %w", err)
  }
  if len(comments) == 0 {
    return nil, fmt.Errorf("comment not found: %w", apperr.ErrNotFound)
  }
  return comments[0], nil
}

func (cs *commentService) GetByAssetID(ctx context.Context, assetID uuid.UUID) ([]*types.Comment, error) {
  comments, err := cs.commentRepo.GetByAssetIDs(ctx, nil, []uuid.UUID{assetID})
  if err != nil {
    return nil, fmt.Errorf("failed to fetch comments: %w", err)
  }
  return comments, nil
}

func (cs *commentService) Delete(ctx context.Context, commentID uuid.UUID) error {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil {
    return fmt.Errorf("missing request context: %w", apperr.ErrUnauthorized)
  }
  comments, err := cs.commentRepo.GetByIDs(ctx, nil, []uuid.UUID{commentID})
  if err != nil {
    return fmt.Errorf("failed to fetch comment: %w", err)
  }
  if len(comments) == 0 {
    return fmt.Errorf("comment not found: %w", apperr.ErrNotFound)
  }
  comment := comments[0]
  if comment.UserID != rd.UserID && !rd.IsAdmin() {
    return fmt.Errorf("only the author can delete a comment: %w", apperr.ErrForbidden)
  }

  return cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    if dErr := cs.commentRepo.SoftDeleteByIDs(ctx, tx, []uuid.UUID{commentID}); dErr != nil {
      return fmt.Errorf("failed to delete comment: %w", dErr)
    }
    return cs.recomputeAssetRating(ctx, tx, comment.AssetID)
  })
}

func (cs *commentService) recomputeAssetRating(ctx context.Context, tx *gorm.DB, assetID uuid.UUID) error {
  scores, sErr := cs.commentRepo.ScoresByAssetID(ctx, tx, assetID)
  if sErr != nil {
    return fmt.Errorf("failed to fetch comment scores: %w", sErr)
  }
  fields := map[string]interface{}{
    "rating":        MeanScore(scores),
    "comment_count": len(scores),
  }
  if uErr := cs.assetRepo.UpdateFields(ctx, tx, assetID, fields); uErr != nil {
    return fmt.Errorf("failed to update asset rating: %w", uErr)
  }
  return nil
}
