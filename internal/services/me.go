package services

import (
  "context"
  "fmt"

  "gorm.io/gorm"

  "github.com/cfanatic-org/cfanatic-backend/internal/logger"
  "github.com/cfanatic-org/cfanatic-backend/internal/repos"
  "github.com/cfanatic-org/cfanatic-backend/internal/requestdata"
  "github.com/cfanatic-org/cfanatic-backend/internal/types"
)

type MeService interface {
  GetMe(ctx context.Context, tx *gorm.DB) (*types.User, error)
}

type meService struct {
  db          *gorm.DB
  log         *logger.Logger
  userRepo    repos.UserRepo
}

func NewMeService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo) MeService {
  serviceLog := log.With("service", "MeService")
  return &meService{db: db, log: serviceLog, userRepo: userRepo}
}

func (ms *meService) GetMe(ctx context.Context, tx *gorm.DB) (*types.User, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil {
    return nil, fmt.Errorf("no request data in context")
  }
  user, err := ms.userRepo.GetByID(ctx, tx, rd.UserID)
  if err != nil {
    ms.log.Warn("Failed to fetch current user, Cannot proceed further. Returning error.", "error", err)
    return nil, fmt.Errorf("Failed to fetch current user: %w", err)
  }
  return user, nil
}
