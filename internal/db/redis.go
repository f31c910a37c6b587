package db

import (
  "context"
  "fmt"
  "time"

  "github.com/redis/go-redis/v9"

  "github.com/cfanatic-org/cfanatic-backend/internal/logger"
)

func NewRedisClient(log *logger.Logger, address, password string) (*redis.Client, error) {
  serviceLog := log.With("service", "RedisClient")
  client := redis.NewClient(&redis.Options{
    Addr:     address,
    Password: password,
  })
  ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
  defer cancel()
  if err := client.Ping(ctx).Err(); err != nil {
    serviceLog.Warn("Failed to ping redis :(", "address", address, "error", err)
    return nil, fmt.Errorf("failed to ping redis at %s: %w", address, err)
  }
  serviceLog.Info("Redis connection established :)", "address", address)
  return client, nil
}
