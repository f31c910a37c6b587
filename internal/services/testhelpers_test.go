package services

import (
  "context"
  "fmt"
  "strings"
  "testing"

  "github.com/google/uuid"
  "github.com/stretchr/testify/require"
  "gorm.io/driver/sqlite"
  "gorm.io/gorm"

  "github.com/cfanatic-org/cfanatic-backend/internal/logger"
  "github.com/cfanatic-org/cfanatic-backend/internal/repos"
  "github.com/cfanatic-org/cfanatic-backend/internal/requestdata"
  "github.com/cfanatic-org/cfanatic-backend/internal/types"
)

// 64 hex chars -> 32 byte AES key.
const testEncryptionKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func newTestDB(t *testing.T) *gorm.DB {
  t.Helper()
  dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
  gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
  require.NoError(t, err)
  require.NoError(t, gdb.AutoMigrate(
    &types.User{},
    &types.UserKeys{},
    &types.ChatSession{},
    &types.ChatMessage{},
    &types.Document{},
  ))
  return gdb
}

func newTestUser(t *testing.T, gdb *gorm.DB, username string) *types.User {
  t.Helper()
  userRepo := repos.NewUserRepo(gdb, logger.NewNop())
  user, err := userRepo.Create(context.Background(), nil, &types.User{
    Username: username,
    Email:    username + "@example.com",
    Password: "hashed",
  })
  require.NoError(t, err)
  return user
}

func ctxFor(user *types.User) context.Context {
  return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
    UserID:   user.ID,
    Username: user.Username,
  })
}

func ctxForID(userID uuid.UUID, username string) context.Context {
  return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
    UserID:   userID,
    Username: username,
  })
}
