package services

import (
  "bytes"
  "context"
  "fmt"
  "image/color"
  "math/rand"
  "os"
  "strings"
  "time"
  "unicode"

  "github.com/fogleman/gg"
  "github.com/golang/freetype/truetype"
  "github.com/google/uuid"
  "golang.org/x/image/font"
  "gorm.io/gorm"

  "github.com/voxelbay/voxelbay-backend/internal/clients/gcp"
  "github.com/voxelbay/voxelbay-backend/internal/logger"
  "github.com/voxelbay/voxelbay-backend/internal/repos"
  "github.com/voxelbay/voxelbay-backend/internal/types"
)

// AvatarService renders a 512px initials avatar for a user and uploads
// it to the avatar bucket. Registration treats avatar failures as
// non-fatal, so everything here is best-effort from the caller's view.
type AvatarService interface {
  CreateAndUploadUserAvatar(ctx context.Context, tx *gorm.DB, user *types.User) error
  GenerateUserAvatar(user *types.User) (bytes.Buffer, error)
}

type avatarService struct {
  db            *gorm.DB
  log           *logger.Logger
  userRepo      repos.UserRepo
  bucketService gcp.BucketService
  bgColors      []color.NRGBA
  fontFace      font.Face
}

var defaultAvatarColors = []color.NRGBA{
  {R: 0x2E, G: 0x86, B: 0xC1, A: 0xFF},
  {R: 0x28, G: 0xB4, B: 0x63, A: 0xFF},
  {R: 0xCA, G: 0x6F, B: 0x1E, A: 0xFF},
  {R: 0x88, G: 0x4E, B: 0xA2, A: 0xFF},
  {R: 0xCB, G: 0x44, B: 0x35, A: 0xFF},
  {R: 0x17, G: 0xA5, B: 0x89, A: 0xFF},
}

func NewAvatarService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, bucketService gcp.BucketService) (AvatarService, error) {
  serviceLog := log.With("service", "AvatarService")

  fontPath := strings.TrimSpace(os.Getenv("AVATAR_FONT"))
  if fontPath == "" {
    return nil, fmt.Errorf("env var AVATAR_FONT is empty")
  }
  serviceLog.Info("Loading avatar font", "font", fontPath)

  face, err := loadFontFace(fontPath, 206)
  if err != nil {
    return nil, fmt.Errorf("could not load avatar font: %w", err)
  }

  return &avatarService{
    db:            db,
    log:           serviceLog,
    userRepo:      userRepo,
    bucketService: bucketService,
    bgColors:      defaultAvatarColors,
    fontFace:      face,
  }, nil
}

func (as *avatarService) CreateAndUploadUserAvatar(ctx context.Context, tx *gorm.DB, user *types.User) error {
  if user == nil || user.ID == uuid.Nil {
    return fmt.Errorf("user required")
  }

  buf, err := as.GenerateUserAvatar(user)
  if err != nil {
    return err
  }

  oldKey := strings.TrimSpace(user.AvatarBucketKey)

  // Versioned key so a CDN in front of the bucket never serves a
  // stale object after regeneration.
  newKey := fmt.Sprintf("user_avatar/%s/%d.png", user.ID.String(), time.Now().UnixNano())

  if err := as.bucketService.UploadFile(ctx, newKey, bytes.NewReader(buf.Bytes())); err != nil {
    return fmt.Errorf("failed to upload user avatar: %w", err)
  }

  user.AvatarBucketKey = newKey
  user.AvatarURL = as.bucketService.GetPublicURL(newKey)

  if oldKey != "" && oldKey != newKey {
    if err := as.bucketService.DeleteFile(ctx, oldKey); err != nil {
      as.log.Warn("failed to delete old avatar (ignored)", "oldKey", oldKey, "error", err)
    }
  }

  return nil
}

func (as *avatarService) GenerateUserAvatar(user *types.User) (bytes.Buffer, error) {
  const size = 512

  dc := gg.NewContext(size, size)

  dc.DrawCircle(float64(size)/2, float64(size)/2, float64(size)/2)
  dc.Clip()

  base := as.bgColors[rand.Intn(len(as.bgColors))]
  dc.SetColor(base)
  dc.DrawRectangle(0, 0, float64(size), float64(size))
  dc.Fill()

  initials := computeInitials(user.Name)

  dc.SetFontFace(as.fontFace)
  tw, th := dc.MeasureString(initials)
  cx, cy := float64(size)/2, float64(size)/2

  dc.SetColor(color.White)
  dc.DrawString(initials, cx-(tw/2)+5, cy+(th/2)-10)

  var buf bytes.Buffer
  if err := dc.EncodePNG(&buf); err != nil {
    return buf, fmt.Errorf("failed to encode PNG: %w", err)
  }
  return buf, nil
}

func computeInitials(name string) string {
  words := strings.Fields(name)
  initials := []rune{}
  for _, w := range words {
    for _, r := range w {
      initials = append(initials, unicode.ToUpper(r))
      break
    }
    if len(initials) == 2 {
      break
    }
  }
  if len(initials) == 0 {
    return "?"
  }
  return string(initials)
}

func loadFontFace(path string, points float64) (font.Face, error) {
  raw, err := os.ReadFile(path)
  if err != nil {
    return nil, fmt.Errorf("read font file: %w", err)
  }
  parsed, err := truetype.Parse(raw)
  if err != nil {
    return nil, fmt.Errorf("parse font: %w", err)
  }
  return truetype.NewFace(parsed, &truetype.Options{Size: points}), nil
}
