package db

import (
  "context"
  "fmt"
  "os"

  "github.com/pinecone-io/go-pinecone/v3/pinecone"

  "github.com/cfanatic-org/cfanatic-backend/internal/logger"
)

const embeddingModel = "multilingual-e5-large"

type PineconeService struct {
  log               *logger.Logger
  pineconeClient    *pinecone.Client
  indexConn         *pinecone.IndexConnection
  indexName         string
}

func NewPineconeService(log *logger.Logger) (*PineconeService, error) {
  serviceLog := log.With("service", "PineconeService")
  apiKey := os.Getenv("PINECONE_API_KEY")
  indexName := os.Getenv("PINECONE_INDEX_NAME")

  if apiKey == "" || indexName == "" {
    return nil, fmt.Errorf("missing Pinecone environment variables: PINECONE_API_KEY, PINECONE_INDEX_NAME")
  }

  pineClient, err := pinecone.NewClient(pinecone.NewClientParams{
    ApiKey: apiKey,
  })
  if err != nil {
    serviceLog.Error("Failed to create Pinecone client :(", "error", err)
    return nil, fmt.Errorf("failed to create pinecone client: %w", err)
  }
  idx, err := pineClient.DescribeIndex(context.Background(), indexName)
  if err != nil {
    serviceLog.Error("Failed to describe Pinecone index :(", "index", indexName, "error", err)
    return nil, fmt.Errorf("failed to describe pinecone index %s: %w", indexName, err)
  }
  idxConn, err := pineClient.Index(pinecone.NewIndexConnParams{Host: idx.Host})
  if err != nil {
    serviceLog.Error("Failed to connect to Pinecone index :(", "host", idx.Host, "error", err)
    return nil, fmt.Errorf("failed to connect to pinecone index %s: %w", indexName, err)
  }
  serviceLog.Info("Pinecone index connection established :)", "index", indexName)
  return &PineconeService{
    log:            serviceLog,
    pineconeClient: pineClient,
    indexConn:      idxConn,
    indexName:      indexName,
  }, nil
}

// Embed runs texts through Pinecone's hosted embedding model. inputType is
// "passage" for ingests and "query" for searches.
func (s *PineconeService) Embed(ctx context.Context, texts []string, inputType string) ([][]float32, error) {
  res, err := s.pineconeClient.Inference.Embed(ctx, &pinecone.EmbedRequest{
    Model:      embeddingModel,
    TextInputs: texts,
    Parameters: pinecone.EmbedParameters{
      "input_type": inputType,
      "truncate":   "END",
    },
  })
  if err != nil {
    s.log.Warn("Pinecone embed call failed", "error", err)
    return nil, fmt.Errorf("failed to embed texts: %w", err)
  }
  out := make([][]float32, 0, len(res.Data))
  for _, e := range res.Data {
    if e.Values == nil {
      return nil, fmt.Errorf("embed response carried no values")
    }
    out = append(out, *e.Values)
  }
  return out, nil
}

func (s *PineconeService) Upsert(ctx context.Context, vectors []*pinecone.Vector) error {
  if len(vectors) == 0 {
    return nil
  }
  if _, err := s.indexConn.UpsertVectors(ctx, vectors); err != nil {
    s.log.Warn("Pinecone upsert failed", "error", err)
    return fmt.Errorf("failed to upsert vectors: %w", err)
  }
  return nil
}

func (s *PineconeService) Query(ctx context.Context, values []float32, topK uint32) (*pinecone.QueryVectorsResponse, error) {
  res, err := s.indexConn.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
    Vector:          values,
    TopK:            topK,
    IncludeMetadata: true,
  })
  if err != nil {
    s.log.Warn("Pinecone query failed", "error", err)
    return nil, fmt.Errorf("failed to query vectors: %w", err)
  }
  return res, nil
}
