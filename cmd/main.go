package main

import (
  "fmt"
  "os"
  "strings"
  "time"
  "github.com/voxelbay/voxelbay-backend/internal/clients/gcp"
  "github.com/voxelbay/voxelbay-backend/internal/clients/redis"
  "github.com/voxelbay/voxelbay-backend/internal/db"
  "github.com/voxelbay/voxelbay-backend/internal/handlers"
  "github.com/voxelbay/voxelbay-backend/internal/logger"
  "github.com/voxelbay/voxelbay-backend/internal/middleware"
  "github.com/voxelbay/voxelbay-backend/internal/repos"
  "github.com/voxelbay/voxelbay-backend/internal/server"
  "github.com/voxelbay/voxelbay-backend/internal/services"
  "github.com/voxelbay/voxelbay-backend/internal/utils"
)

func main() {
  // Logger
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("Failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Env
  log.Info("Loading environment variables from main...")
  jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
  accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
  refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
  port := utils.GetEnv("PORT", "8080", log)
  allowOrigins := strings.Split(utils.GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000,http://localhost:5173", log), ",")

  // Postgres
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Fatal("Postgres init failed", "error", err)
  }
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Fatal("Postgres auto migration failed", "error", err)
  }
  thePG := postgresService.DB()

  // Repos
  log.Info("Setting up Repos from main...")
  userRepo := repos.NewUserRepo(thePG, log)
  userTokenRepo := repos.NewUserTokenRepo(thePG, log)
  assetRepo := repos.NewAssetRepo(thePG, log)
  commentRepo := repos.NewCommentRepo(thePG, log)
  cartRepo := repos.NewCartRepo(thePG, log)
  historyRepo := repos.NewDownloadHistoryRepo(thePG, log)

  // Clients
  log.Info("Setting up storage clients from main...")
  driveService, err := gcp.NewDriveService(log)
  if err != nil {
    log.Fatal("Drive init failed", "error", err)
  }
  var avatarService services.AvatarService
  bucketService, err := gcp.NewBucketService(log)
  if err != nil {
    log.Warn("Avatar bucket unavailable, users get no generated avatar", "error", err)
  } else {
    avatarService, err = services.NewAvatarService(thePG, log, userRepo, bucketService)
    if err != nil {
      log.Warn("Avatar service unavailable, users get no generated avatar", "error", err)
      avatarService = nil
    }
  }
  downloadCounter, err := redis.NewDownloadCounter(log)
  if err != nil {
    log.Warn("Redis unavailable, trending is disabled", "error", err)
    downloadCounter = nil
  } else {
    defer downloadCounter.Close()
  }

  // Services
  log.Info("Setting up Services from main...")
  authService := services.NewAuthService(
    thePG, log, userRepo, userTokenRepo, avatarService,
    jwtSecretKey,
    time.Duration(accessTokenTTL)*time.Second,
    time.Duration(refreshTokenTTL)*time.Second,
  )
  userService := services.NewUserService(thePG, log, userRepo, userTokenRepo)
  assetService := services.NewAssetService(thePG, log, assetRepo, driveService, downloadCounter)
  commentService := services.NewCommentService(thePG, log, commentRepo, assetRepo)
  cartService := services.NewCartService(thePG, log, cartRepo, assetRepo, historyRepo, driveService)
  historyService := services.NewHistoryService(thePG, log, historyRepo, assetRepo)

  // Handlers
  log.Info("Setting up Handlers from main...")
  routerCfg := server.RouterConfig{
    HealthcheckHandler: handlers.NewHealthcheckHandler(),
    AuthHandler:        handlers.NewAuthHandler(authService),
    AuthMiddleware:     middleware.NewAuthMiddleware(log, authService),
    UserHandler:        handlers.NewUserHandler(userService, assetService),
    AssetHandler:       handlers.NewAssetHandler(log, assetService),
    CommentHandler:     handlers.NewCommentHandler(commentService),
    CartHandler:        handlers.NewCartHandler(cartService),
    HistoryHandler:     handlers.NewHistoryHandler(historyService),
    AdminHandler:       handlers.NewAdminHandler(userService),
    DriveHandler:       handlers.NewDriveHandler(log, driveService),
    AllowOrigins:       allowOrigins,
  }

  router := server.NewRouter(routerCfg)
  log.Info("Starting server...", "port", port)
  if err := router.Run(":" + port); err != nil {
    log.Fatal("Server exited", "error", err)
  }
}
