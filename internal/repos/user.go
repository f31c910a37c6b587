package repos

import (
    "context"

    "github.com/google/uuid"
    "gorm.io/gorm"

    "github.com/cfanatic-org/cfanatic-backend/internal/logger"
    "github.com/cfanatic-org/cfanatic-backend/internal/types"
)

type UserRepo interface {
    Create(ctx context.Context, tx *gorm.DB, user *types.User) (*types.User, error)
    GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.User, error)
    GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*types.User, error)
    UsernameExists(ctx context.Context, tx *gorm.DB, username string) (bool, error)
    EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error)
}

type userRepo struct {
    db      *gorm.DB
    log     *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
    return &userRepo{
        db: db,
        log: baseLog.With("repo", "UserRepo"),
    }
}

func (ur *userRepo) Create(ctx context.Context, tx *gorm.DB, user *types.User) (*types.User, error) {
    if tx == nil {
        tx = ur.db
    }
    if user.ID == uuid.Nil {
        user.ID = uuid.New()
    }
    if err := tx.WithContext(ctx).Create(user).Error; err != nil {
        ur.log.Error("failed to create user", "error", err)
        return nil, err
    }
    return user, nil
}

func (ur *userRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.User, error) {
    if tx == nil {
        tx = ur.db
    }
    var u types.User
    if err := tx.WithContext(ctx).
        Where("id = ?", id).
        First(&u).Error; err != nil {
        return nil, err
    }
    return &u, nil
}

func (ur *userRepo) GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*types.User, error) {
    if tx == nil {
        tx = ur.db
    }
    var u types.User
    if err := tx.WithContext(ctx).
        Where("username = ?", username).
        First(&u).Error; err != nil {
        return nil, err
    }
    return &u, nil
}

func (ur *userRepo) UsernameExists(ctx context.Context, tx *gorm.DB, username string) (bool, error) {
    if tx == nil {
        tx = ur.db
    }
    var count int64
    if err := tx.WithContext(ctx).
        Model(&types.User{}).
        Where("username = ?", username).
        Count(&count).Error; err != nil {
        ur.log.Error("failed to check username existence", "error", err)
        return false, err
    }
    return count > 0, nil
}

func (ur *userRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
    if tx == nil {
        tx = ur.db
    }
    var count int64
    if err := tx.WithContext(ctx).
        Model(&types.User{}).
        Where("email = ?", email).
        Count(&count).Error; err != nil {
        ur.log.Error("failed to check email existence", "error", err)
        return false, err
    }
    return count > 0, nil
}
