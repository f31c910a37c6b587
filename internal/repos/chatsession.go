package repos

import (
    "context"
    "time"

    "github.com/google/uuid"
    "gorm.io/gorm"

    "github.com/cfanatic-org/cfanatic-backend/internal/logger"
    "github.com/cfanatic-org/cfanatic-backend/internal/types"
)

// Every lookup is scoped by the owning user id. A session that exists under
// a different owner is indistinguishable from one that does not exist.
type ChatSessionRepo interface {
    CreateSession(ctx context.Context, tx *gorm.DB, session *types.ChatSession) (*types.ChatSession, error)
    GetByIDAndUser(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) (*types.ChatSession, error)
    GetUserSessions(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.ChatSession, error)
    Touch(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) error
    DeleteByIDAndUser(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) error
}

type chatSessionRepo struct {
    db      *gorm.DB
    log     *logger.Logger
}

func NewChatSessionRepo(db *gorm.DB, baseLog *logger.Logger) ChatSessionRepo {
    return &chatSessionRepo{
        db: db,
        log: baseLog.With("repo", "ChatSessionRepo"),
    }
}

func (csr *chatSessionRepo) CreateSession(ctx context.Context, tx *gorm.DB, session *types.ChatSession) (*types.ChatSession, error) {
    if tx == nil {
        tx = csr.db
    }
    if session.ID == uuid.Nil {
        session.ID = uuid.New()
    }
    if err := tx.WithContext(ctx).Create(session).Error; err != nil {
        csr.log.Error("failed to create chat session", "error", err)
        return nil, err
    }
    return session, nil
}

func (csr *chatSessionRepo) GetByIDAndUser(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) (*types.ChatSession, error) {
    if tx == nil {
        tx = csr.db
    }
    var s types.ChatSession
    if err := tx.WithContext(ctx).
        Where("id = ? AND user_id = ?", id, userID).
        First(&s).Error; err != nil {
        return nil, err
    }
    return &s, nil
}

func (csr *chatSessionRepo) GetUserSessions(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.ChatSession, error) {
    if tx == nil {
        tx = csr.db
    }
    var sessions []*types.ChatSession
    if err := tx.WithContext(ctx).
        Where("user_id = ?", userID).
        Order("updated_at DESC").
        Limit(limit).
        Find(&sessions).Error; err != nil {
        return nil, err
    }
    return sessions, nil
}

func (csr *chatSessionRepo) Touch(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) error {
    if tx == nil {
        tx = csr.db
    }
    if err := tx.WithContext(ctx).
        Model(&types.ChatSession{}).
        Where("id = ?", id).
        Update("updated_at", at).Error; err != nil {
        return err
    }
    return nil
}

func (csr *chatSessionRepo) DeleteByIDAndUser(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) error {
    if tx == nil {
        tx = csr.db
    }
    res := tx.WithContext(ctx).
        Where("id = ? AND user_id = ?", id, userID).
        Delete(&types.ChatSession{})
    if res.Error != nil {
        csr.log.Error("failed to delete chat session", "error", res.Error)
        return res.Error
    }
    if res.RowsAffected == 0 {
        return gorm.ErrRecordNotFound
    }
    return nil
}
