package server

import (
  "github.com/gin-gonic/gin"
  "github.com/gin-contrib/cors"

  "github.com/cfanatic-org/cfanatic-backend/internal/handlers"
  "github.com/cfanatic-org/cfanatic-backend/internal/middleware"
)

type RouterConfig struct {
  AuthHandler           *handlers.AuthHandler
  AuthMiddleware        *middleware.AuthMiddleware
  MeHandler             *handlers.MeHandler
  KeysHandler           *handlers.KeysHandler
  ChatHandler           *handlers.ChatHandler
  RagHandler            *handlers.RagHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()

  //-----------------------------------------
  // Cors Setup
  //-----------------------------------------
  router.Use(cors.New(cors.Config{
    AllowOrigins: []string{
        "http://localhost:5173",
        "http://localhost:5174",
        "http://127.0.0.1:5173",
        "http://127.0.0.1:5174",
    },
    AllowMethods:     []string{"GET","POST","PUT","DELETE","OPTIONS"},
    AllowHeaders:     []string{"Authorization","Content-Type","X-Requested-With"},
    AllowCredentials: true,
  }))

  //-----------------------------------------
  // Health Routes
  //-----------------------------------------
  router.GET("/healthz", handlers.Healthz)

  //-----------------------------------------
  // Public Routes
  //-----------------------------------------
  router.POST("/register", cfg.AuthHandler.Register)
  router.POST("/token", cfg.AuthHandler.Login)

  //------------------------------------------
  // Protected Routes
  //------------------------------------------
  protected := router.Group("/")
  protected.Use(cfg.AuthMiddleware.RequireAuth())

  //Me
  protected.GET("/users/me", cfg.MeHandler.GetMe)

  //Keys
  protected.POST("/keys", cfg.KeysHandler.UpdateKeys)
  protected.GET("/keys", cfg.KeysHandler.GetKeys)

  //Chat
  protected.GET("/chat/sessions", cfg.ChatHandler.ListSessions)
  protected.GET("/chat/sessions/:id", cfg.ChatHandler.GetSession)
  protected.POST("/chat/sessions", cfg.ChatHandler.CreateSession)
  protected.DELETE("/chat/sessions/:id", cfg.ChatHandler.DeleteSession)
  protected.POST("/chat", cfg.ChatHandler.Chat)

  //Knowledge Base
  protected.POST("/rag/ingest", cfg.RagHandler.Ingest)

  return router
}
