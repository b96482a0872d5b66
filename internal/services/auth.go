package services

import (
  "context"
  "fmt"
  "time"
  "gorm.io/gorm"
  "golang.org/x/crypto/bcrypt"
  "github.com/golang-jwt/jwt/v5"
  "github.com/google/uuid"
  "github.com/voxelbay/voxelbay-backend/internal/apperr"
  "github.com/voxelbay/voxelbay-backend/internal/logger"
  "github.com/voxelbay/voxelbay-backend/internal/normalization"
  "github.com/voxelbay/voxelbay-backend/internal/repos"
  "github.com/voxelbay/voxelbay-backend/internal/requestdata"
  "github.com/voxelbay/voxelbay-backend/internal/types"
  "github.com/voxelbay/voxelbay-backend/internal/utils"
)

type JWTClaims struct {
  jwt.RegisteredClaims
}

type TokenPair struct {
  AccessToken  string `json:"access_token"`
  RefreshToken string `json:"refresh_token"`
}

type AuthService interface {
  RegisterUser(ctx context.Context, user *types.User) (*TokenPair, error)
  LoginUser(ctx context.Context, email, password string) (*TokenPair, *types.User, error)
  RefreshUser(ctx context.Context, refreshToken string) (*TokenPair, error)
  LogoutUser(ctx context.Context) error
  SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
  GetAccessTTL() time.Duration
}

type authService struct {
  db            *gorm.DB
  log           *logger.Logger
  userRepo      repos.UserRepo
  userTokenRepo repos.UserTokenRepo
  avatarService AvatarService
  jwtSecretKey  string
  accessTTL     time.Duration
  refreshTTL    time.Duration
}

func NewAuthService(
  db *gorm.DB,
  log *logger.Logger,
  userRepo repos.UserRepo,
  userTokenRepo repos.UserTokenRepo,
  avatarService AvatarService,
  jwtSecretKey string,
  accessTTL time.Duration,
  refreshTTL time.Duration,
) AuthService {
  serviceLog := log.With("service", "AuthService")
  return &authService{
    db:            db,
    log:           serviceLog,
    userRepo:      userRepo,
    userTokenRepo: userTokenRepo,
    avatarService: avatarService,
    jwtSecretKey:  jwtSecretKey,
    accessTTL:     accessTTL,
    refreshTTL:    refreshTTL,
  }
}

func (as *authService) RegisterUser(ctx context.Context, user *types.User) (*TokenPair, error) {
  utils.NormalizeUserFields(user)
  if vErr := utils.ValidateRegistration(user); vErr != nil {
    return nil, vErr
  }

  emailExists, err := as.userRepo.EmailExists(ctx, nil, user.Email)
  if err != nil {
    return nil, fmt.Errorf("failed to check user email: %w", err)
  }
  if emailExists {
    return nil, fmt.Errorf("email is already registered: %w", apperr.ErrConflict)
  }

  if hErr := utils.HashPassword(user); hErr != nil {
    return nil, hErr
  }
  if user.Role == "" {
    user.Role = types.RoleUser
  }

  var pair *TokenPair
  err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    user.ID = uuid.New()

    // Avatar is cosmetic. A render or upload failure must not block
    // registration.
    if as.avatarService != nil {
      if aErr := as.avatarService.CreateAndUploadUserAvatar(ctx, tx, user); aErr != nil {
        as.log.Warn("failed to create user avatar (ignored)", "error", aErr, "user_id", user.ID)
      }
    }

    if _, cErr := as.userRepo.Create(ctx, tx, []*types.User{user}); cErr != nil {
      return fmt.Errorf("failed to create user: %w", cErr)
    }

    p, pErr := as.issueTokenPair(ctx, tx, user)
    if pErr != nil {
      return pErr
    }
    pair = p
    return nil
  })
  if err != nil {
    return nil, err
  }
  return pair, nil
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (*TokenPair, *types.User, error) {
  email = normalization.ParseInputString(email)
  if vErr := utils.ValidateLogin(email, password); vErr != nil {
    return nil, nil, vErr
  }

  users, usErr := as.userRepo.GetByEmails(ctx, nil, []string{email})
  if usErr != nil {
    return nil, nil, fmt.Errorf("error retrieving user by email: %w", usErr)
  }
  // One generic message for both unknown email and bad password so
  // the endpoint cannot be used to enumerate accounts.
  if len(users) == 0 {
    return nil, nil, fmt.Errorf("invalid credentials: %w", apperr.ErrUnauthorized)
  }
  user := users[0]
  if hErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); hErr != nil {
    return nil, nil, fmt.Errorf("invalid credentials: %w", apperr.ErrUnauthorized)
  }

  var pair *TokenPair
  err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    foundTokens, ftErr := as.userTokenRepo.GetByUserIDs(ctx, tx, []uuid.UUID{user.ID})
    if ftErr != nil {
      return fmt.Errorf("failed to check user tokens: %w", ftErr)
    }
    for _, t := range foundTokens {
      if t.ExpiresAt.Before(time.Now()) {
        if dtErr := as.userTokenRepo.FullDeleteByIDs(ctx, tx, []uuid.UUID{t.ID}); dtErr != nil {
          return fmt.Errorf("failed to delete expired user token: %w", dtErr)
        }
      }
    }
    p, pErr := as.issueTokenPair(ctx, tx, user)
    if pErr != nil {
      return pErr
    }
    pair = p
    return nil
  })
  if err != nil {
    return nil, nil, err
  }
  return pair, user, nil
}

func (as *authService) RefreshUser(ctx context.Context, refreshToken string) (*TokenPair, error) {
  if refreshToken == "" {
    return nil, fmt.Errorf("missing refresh token: %w", apperr.ErrUnauthorized)
  }

  var pair *TokenPair
  err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    foundTokens, ftErr := as.userTokenRepo.GetByRefreshTokens(ctx, tx, []string{refreshToken})
    if ftErr != nil {
      return fmt.Errorf("error fetching refresh token: %w", ftErr)
    }
    if len(foundTokens) == 0 {
      return fmt.Errorf("unknown refresh token: %w", apperr.ErrUnauthorized)
    }
    existingToken := foundTokens[0]
    if existingToken.ExpiresAt.Before(time.Now()) {
      if dtErr := as.userTokenRepo.FullDeleteByIDs(ctx, tx, []uuid.UUID{existingToken.ID}); dtErr != nil {
        return fmt.Errorf("refresh token expired, error deleting: %w", dtErr)
      }
      return fmt.Errorf("refresh token expired: %w", apperr.ErrUnauthorized)
    }

    users, uErr := as.userRepo.GetByIDs(ctx, tx, []uuid.UUID{existingToken.UserID})
    if uErr != nil {
      return fmt.Errorf("failed to load user for refresh: %w", uErr)
    }
    if len(users) == 0 {
      return fmt.Errorf("no user found for the given refresh token: %w", apperr.ErrUnauthorized)
    }

    p, pErr := as.issueTokenPair(ctx, tx, users[0])
    if pErr != nil {
      return pErr
    }
    if dErr := as.userTokenRepo.FullDeleteByIDs(ctx, tx, []uuid.UUID{existingToken.ID}); dErr != nil {
      return fmt.Errorf("failed to remove old refresh token: %w", dErr)
    }
    pair = p
    return nil
  })
  if err != nil {
    return nil, err
  }
  return pair, nil
}

func (as *authService) LogoutUser(ctx context.Context) error {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.TokenString == "" {
    return fmt.Errorf("no access token in request context: %w", apperr.ErrUnauthorized)
  }
  return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    foundTokens, ftErr := as.userTokenRepo.GetByAccessTokens(ctx, tx, []string{rd.TokenString})
    if ftErr != nil {
      return fmt.Errorf("error finding user token: %w", ftErr)
    }
    tokenIDs := make([]uuid.UUID, 0, len(foundTokens))
    for _, t := range foundTokens {
      tokenIDs = append(tokenIDs, t.ID)
    }
    if tdErr := as.userTokenRepo.FullDeleteByIDs(ctx, tx, tokenIDs); tdErr != nil {
      return fmt.Errorf("error deleting user token: %w", tdErr)
    }
    return nil
  })
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
  if tokenString == "" {
    return ctx, fmt.Errorf("missing token: %w", apperr.ErrUnauthorized)
  }
  parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
    return []byte(as.jwtSecretKey), nil
  })
  if err != nil {
    return ctx, fmt.Errorf("failed to parse token: %w", apperr.ErrUnauthorized)
  }
  claims, ok := parsedToken.Claims.(*JWTClaims)
  if !ok || !parsedToken.Valid {
    return ctx, fmt.Errorf("invalid or expired token: %w", apperr.ErrUnauthorized)
  }
  userID, err := uuid.Parse(claims.Subject)
  if err != nil {
    return ctx, fmt.Errorf("invalid user id in token: %w", apperr.ErrUnauthorized)
  }

  users, uErr := as.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
  if uErr != nil {
    return ctx, fmt.Errorf("failed to load user from token: %w", uErr)
  }
  if len(users) == 0 {
    return ctx, fmt.Errorf("token user no longer exists: %w", apperr.ErrUnauthorized)
  }

  rd := &requestdata.RequestData{
    TokenString: tokenString,
    UserID:      userID,
    Role:        users[0].Role,
  }
  foundTokens, ftErr := as.userTokenRepo.GetByAccessTokens(ctx, nil, []string{tokenString})
  if ftErr != nil {
    return ctx, fmt.Errorf("failed to fetch user token: %w", ftErr)
  }
  if len(foundTokens) > 0 {
    rd.RefreshToken = foundTokens[0].RefreshToken
  }
  return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
  return as.accessTTL
}

func (as *authService) issueTokenPair(ctx context.Context, tx *gorm.DB, user *types.User) (*TokenPair, error) {
  accessToken, genErr := as.generateAccessToken(user)
  if genErr != nil {
    return nil, fmt.Errorf("generate access token error: %w", genErr)
  }
  refreshToken := uuid.New().String()
  userToken := types.UserToken{
    ID:           uuid.New(),
    UserID:       user.ID,
    AccessToken:  accessToken,
    RefreshToken: refreshToken,
    ExpiresAt:    time.Now().Add(as.refreshTTL),
  }
  if _, ctErr := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{&userToken}); ctErr != nil {
    return nil, fmt.Errorf("create user token error: %w", ctErr)
  }
  return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
  claims := JWTClaims{
    RegisteredClaims: jwt.RegisteredClaims{
      Subject:   user.ID.String(),
      ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
      IssuedAt:  jwt.NewNumericDate(time.Now()),
    },
  }
  token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
  return token.SignedString([]byte(as.jwtSecretKey))
}
