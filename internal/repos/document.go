package repos

import (
    "context"

    "github.com/google/uuid"
    "gorm.io/gorm"

    "github.com/cfanatic-org/cfanatic-backend/internal/logger"
    "github.com/cfanatic-org/cfanatic-backend/internal/types"
)

type DocumentRepo interface {
    Create(ctx context.Context, tx *gorm.DB, doc *types.Document) (*types.Document, error)
    GetRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Document, error)
}

type documentRepo struct {
    db      *gorm.DB
    log     *logger.Logger
}

func NewDocumentRepo(db *gorm.DB, baseLog *logger.Logger) DocumentRepo {
    return &documentRepo{
        db: db,
        log: baseLog.With("repo", "DocumentRepo"),
    }
}

func (dr *documentRepo) Create(ctx context.Context, tx *gorm.DB, doc *types.Document) (*types.Document, error) {
    if tx == nil {
        tx = dr.db
    }
    if doc.ID == uuid.Nil {
        doc.ID = uuid.New()
    }
    if err := tx.WithContext(ctx).Create(doc).Error; err != nil {
        dr.log.Error("failed to create document", "error", err)
        return nil, err
    }
    return doc, nil
}

func (dr *documentRepo) GetRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Document, error) {
    if tx == nil {
        tx = dr.db
    }
    var docs []*types.Document
    if err := tx.WithContext(ctx).
        Order("created_at DESC").
        Limit(limit).
        Find(&docs).Error; err != nil {
        dr.log.Error("failed to list documents", "error", err)
        return nil, err
    }
    return docs, nil
}
