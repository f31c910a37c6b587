package services

import (
  "context"
  "fmt"

  "github.com/google/uuid"
  "github.com/pinecone-io/go-pinecone/v3/pinecone"
  "google.golang.org/protobuf/types/known/structpb"
  "gorm.io/datatypes"

  "github.com/cfanatic-org/cfanatic-backend/internal/db"
  "github.com/cfanatic-org/cfanatic-backend/internal/logger"
  "github.com/cfanatic-org/cfanatic-backend/internal/repos"
  "github.com/cfanatic-org/cfanatic-backend/internal/types"
)

const ragTopK = 3

// RagService is the knowledge retriever: passages go into the vector index
// (with a relational audit row) and come back ranked by semantic
// similarity. Ranking and embedding are delegated to the index provider.
type RagService interface {
  AddDocument(ctx context.Context, text string, metadata map[string]interface{}) (*types.Document, error)
  Query(ctx context.Context, query string) ([]string, error)
}

type ragService struct {
  log             *logger.Logger
  pine            *db.PineconeService
  documentRepo    repos.DocumentRepo
}

func NewRagService(log *logger.Logger, pine *db.PineconeService, documentRepo repos.DocumentRepo) RagService {
  return &ragService{
    log:          log.With("service", "RagService"),
    pine:         pine,
    documentRepo: documentRepo,
  }
}

func (rs *ragService) AddDocument(ctx context.Context, text string, metadata map[string]interface{}) (*types.Document, error) {
  if text == "" {
    return nil, fmt.Errorf("document text is empty")
  }

  //1) Embed the passage
  embeddings, err := rs.pine.Embed(ctx, []string{text}, "passage")
  if err != nil {
    return nil, err
  }
  if len(embeddings) != 1 {
    return nil, fmt.Errorf("expected 1 embedding, got %d", len(embeddings))
  }

  //2) Upsert into the index, carrying the passage text in metadata
  docID := uuid.New()
  fields := map[string]interface{}{"text": text}
  for k, v := range metadata {
    fields[k] = v
  }
  md, err := structpb.NewStruct(fields)
  if err != nil {
    return nil, fmt.Errorf("failed to build vector metadata: %w", err)
  }
  values := embeddings[0]
  vector := &pinecone.Vector{
    Id:       docID.String(),
    Values:   &values,
    Metadata: md,
  }
  if err := rs.pine.Upsert(ctx, []*pinecone.Vector{vector}); err != nil {
    return nil, err
  }

  //3) Record the audit row
  doc := &types.Document{
    ID:       docID,
    Content:  text,
    Metadata: datatypes.JSONMap(metadata),
  }
  created, err := rs.documentRepo.Create(ctx, nil, doc)
  if err != nil {
    return nil, err
  }
  rs.log.Info("Document ingested into knowledge index", "documentID", docID)
  return created, nil
}

func (rs *ragService) Query(ctx context.Context, query string) ([]string, error) {
  embeddings, err := rs.pine.Embed(ctx, []string{query}, "query")
  if err != nil {
    return nil, err
  }
  if len(embeddings) != 1 {
    return nil, fmt.Errorf("expected 1 embedding, got %d", len(embeddings))
  }
  res, err := rs.pine.Query(ctx, embeddings[0], ragTopK)
  if err != nil {
    return nil, err
  }
  var passages []string
  for _, match := range res.Matches {
    if match == nil || match.Vector == nil || match.Vector.Metadata == nil {
      continue
    }
    if field, ok := match.Vector.Metadata.Fields["text"]; ok {
      if text := field.GetStringValue(); text != "" {
        passages = append(passages, text)
      }
    }
  }
  return passages, nil
}
