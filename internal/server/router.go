package server

import (
  "github.com/gin-gonic/gin"
  "github.com/gin-contrib/cors"
  "github.com/voxelbay/voxelbay-backend/internal/handlers"
  "github.com/voxelbay/voxelbay-backend/internal/middleware"
)

type RouterConfig struct {
  HealthcheckHandler *handlers.HealthcheckHandler
  AuthHandler        *handlers.AuthHandler
  AuthMiddleware     *middleware.AuthMiddleware
  UserHandler        *handlers.UserHandler
  AssetHandler       *handlers.AssetHandler
  CommentHandler     *handlers.CommentHandler
  CartHandler        *handlers.CartHandler
  HistoryHandler     *handlers.HistoryHandler
  AdminHandler       *handlers.AdminHandler
  DriveHandler       *handlers.DriveHandler
  AllowOrigins       []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()

  // Cors
  router.Use(cors.New(cors.Config{
    AllowOrigins:     cfg.AllowOrigins,
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
    AllowCredentials: true,
  }))

// ===============
// || Public    ||
// ===============
  router.GET("/healthcheck", cfg.HealthcheckHandler.Healthcheck)
  router.POST("/auth/register", cfg.AuthHandler.Register)
  router.POST("/auth/login", cfg.AuthHandler.Login)
  router.POST("/auth/refresh", cfg.AuthHandler.Refresh)
  router.GET("/assets", cfg.AssetHandler.List)
  router.GET("/assets/trending", cfg.AssetHandler.Trending)
  router.GET("/assets/:id", cfg.AssetHandler.GetByID)
  router.GET("/comments/asset/:id", cfg.CommentHandler.ListByAsset)
  router.GET("/comments/:id", cfg.CommentHandler.GetByID)
  router.GET("/assets/user/:id", cfg.UserHandler.GetAssets)
  router.GET("/users", cfg.UserHandler.List)
  router.GET("/users/:id", cfg.UserHandler.GetByID)
  router.GET("/drive/file/:fileId", cfg.DriveHandler.GetFile)

// ===============
// || Protected ||
// ===============
  protected := router.Group("/")
  protected.Use(cfg.AuthMiddleware.RequireAuth())
  // Auth
  protected.POST("/auth/logout", cfg.AuthHandler.Logout)
  protected.GET("/auth/profile", cfg.UserHandler.GetMe)
  protected.PUT("/auth/profile", cfg.UserHandler.UpdateMe)
  // Assets
  protected.POST("/assets", cfg.AssetHandler.Create)
  protected.DELETE("/assets/:id", cfg.AssetHandler.Delete)
  protected.PUT("/assets/:id/rating", cfg.CommentHandler.Rate)
  protected.POST("/assets/:id/comments", cfg.CommentHandler.Create)
  protected.GET("/assets/download/:id", cfg.AssetHandler.Download)
  // Comments
  protected.POST("/comments", cfg.CommentHandler.CreateFromBody)
  protected.DELETE("/comments/:id", cfg.CommentHandler.Delete)
  // Cart
  protected.GET("/cart", cfg.CartHandler.Get)
  protected.POST("/cart/add", cfg.CartHandler.AddItem)
  protected.DELETE("/cart/remove/:id", cfg.CartHandler.RemoveItem)
  protected.GET("/cart/download", cfg.CartHandler.DownloadBundle)
  // History
  protected.GET("/historial", cfg.HistoryHandler.ListMine)
  // Users
  protected.DELETE("/users/:id", cfg.UserHandler.Delete)

// ===============
// || Admin     ||
// ===============
  admin := router.Group("/admin")
  admin.Use(cfg.AuthMiddleware.RequireAuth(), cfg.AuthMiddleware.RequireAdmin())
  admin.GET("/users", cfg.AdminHandler.ListUsers)
  admin.PATCH("/users/:id/role", cfg.AdminHandler.SetUserRole)

  return router
}
