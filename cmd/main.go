package main

import (
  "fmt"
  "os"
  "time"

  "github.com/cfanatic-org/cfanatic-backend/internal/agent"
  "github.com/cfanatic-org/cfanatic-backend/internal/db"
  "github.com/cfanatic-org/cfanatic-backend/internal/handlers"
  "github.com/cfanatic-org/cfanatic-backend/internal/logger"
  "github.com/cfanatic-org/cfanatic-backend/internal/middleware"
  "github.com/cfanatic-org/cfanatic-backend/internal/repos"
  "github.com/cfanatic-org/cfanatic-backend/internal/server"
  "github.com/cfanatic-org/cfanatic-backend/internal/services"
  "github.com/cfanatic-org/cfanatic-backend/internal/utils"
)

func main() {
  // Logger Setup
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Environment Variables
  log.Info("Attempting to load environment variables for Main now...")
  jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
  accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
  redisAddress := utils.GetEnv("REDIS_ADDRESS", "localhost:6379", log)
  redisPassword := utils.GetEnv("REDIS_PASSWORD", "", log)
  encryptionKey, err := utils.MustGetEnv("ENCRYPTION_KEY")
  if err != nil {
    log.Error("Fatal error: ENCRYPTION_KEY must be configured (64 hex chars)", "error", err)
    os.Exit(1)
  }

  // Postgres Setup
  log.Info("Setting Up Postgres from Main now...")
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Error("Fatal error: Cannot init Postgres", "error", err)
    os.Exit(1)
  }
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Warn("Postgres auto migration failed", "error", err)
  }
  thePG := postgresService.DB()
  log.Info("Postgres Setup From Main Successful :)")

  // Redis Setup (optional: the Codeforces client degrades to direct calls)
  redisClient, err := db.NewRedisClient(log, redisAddress, redisPassword)
  if err != nil {
    log.Warn("Redis unavailable, Codeforces responses will not be cached", "error", err)
    redisClient = nil
  }

  // Pinecone Setup (optional: the knowledge base tools report it in-band)
  pineconeService, err := db.NewPineconeService(log)
  if err != nil {
    log.Warn("Pinecone unavailable, knowledge base is disabled", "error", err)
    pineconeService = nil
  }

  // Repositories Setup
  log.Info("Setting Up Repositories from Main now...")
  userRepo := repos.NewUserRepo(thePG, log)
  userKeysRepo := repos.NewUserKeysRepo(thePG, log)
  chatSessionRepo := repos.NewChatSessionRepo(thePG, log)
  chatMessageRepo := repos.NewChatMessageRepo(thePG, log)
  documentRepo := repos.NewDocumentRepo(thePG, log)
  log.Info("Repositories Set Up From Main Successful :)")

  // Services Setup
  log.Info("Setting up Services from Main now...")
  authService := services.NewAuthService(thePG, log, userRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second)
  meService := services.NewMeService(thePG, log, userRepo)
  vaultService, err := services.NewVaultService(thePG, log, userKeysRepo, encryptionKey)
  if err != nil {
    log.Error("Fatal error: Cannot init VaultService", "error", err)
    os.Exit(1)
  }
  codeforcesService := services.NewCodeforcesService(log, redisClient)
  geminiService := services.NewGeminiService(log)
  var ragService services.RagService
  if pineconeService != nil {
    ragService = services.NewRagService(log, pineconeService, documentRepo)
  }
  toolRegistry := agent.NewRegistry(log, codeforcesService, ragService)
  agentService := agent.New(log, geminiService, toolRegistry)
  chatService := services.NewChatService(thePG, log, chatSessionRepo, chatMessageRepo, vaultService, agentService)
  log.Info("Services Set Up From Main Successful :)")

  // Handler Setup
  log.Info("Setting Up Handlers from Main now...")
  authHandler := handlers.NewAuthHandler(authService)
  meHandler := handlers.NewMeHandler(meService)
  keysHandler := handlers.NewKeysHandler(vaultService)
  chatHandler := handlers.NewChatHandler(chatService)
  ragHandler := handlers.NewRagHandler(ragService)
  log.Info("Handlers Set Up From Main Successful :)")

  // MiddleWare Setup
  authMiddleware := middleware.NewAuthMiddleware(log, authService)

  // Router Setup
  log.Info("Setting Up Router from Main now...")
  router := server.NewRouter(server.RouterConfig{
    AuthHandler:    authHandler,
    AuthMiddleware: authMiddleware,
    MeHandler:      meHandler,
    KeysHandler:    keysHandler,
    ChatHandler:    chatHandler,
    RagHandler:     ragHandler,
  })
  log.Info("Router Set Up From Main Successful :)")

  port := utils.GetEnv("PORT", "8000", log)
  fmt.Printf("Server listening on :%s\n", port)
  if err := router.Run(":" + port); err != nil {
    log.Warn("Server failed", "error", err)
  }
}
