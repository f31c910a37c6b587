package repos

import (
    "context"

    "github.com/google/uuid"
    "gorm.io/gorm"

    "github.com/cfanatic-org/cfanatic-backend/internal/logger"
    "github.com/cfanatic-org/cfanatic-backend/internal/types"
)

type UserKeysRepo interface {
    Upsert(ctx context.Context, tx *gorm.DB, keys *types.UserKeys) (*types.UserKeys, error)
    GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserKeys, error)
}

type userKeysRepo struct {
    db      *gorm.DB
    log     *logger.Logger
}

func NewUserKeysRepo(db *gorm.DB, baseLog *logger.Logger) UserKeysRepo {
    return &userKeysRepo{
        db: db,
        log: baseLog.With("repo", "UserKeysRepo"),
    }
}

func (ukr *userKeysRepo) Upsert(ctx context.Context, tx *gorm.DB, keys *types.UserKeys) (*types.UserKeys, error) {
    if tx == nil {
        tx = ukr.db
    }
    if keys.ID == uuid.Nil {
        keys.ID = uuid.New()
    }
    if err := tx.WithContext(ctx).Save(keys).Error; err != nil {
        ukr.log.Error("failed to upsert user keys", "error", err)
        return nil, err
    }
    return keys, nil
}

func (ukr *userKeysRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserKeys, error) {
    if tx == nil {
        tx = ukr.db
    }
    var k types.UserKeys
    if err := tx.WithContext(ctx).
        Where("user_id = ?", userID).
        First(&k).Error; err != nil {
        return nil, err
    }
    return &k, nil
}
