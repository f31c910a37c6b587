package agent

import (
  "context"
  "testing"

  "github.com/stretchr/testify/assert"

  "github.com/cfanatic-org/cfanatic-backend/internal/logger"
  "github.com/cfanatic-org/cfanatic-backend/internal/services"
  "github.com/cfanatic-org/cfanatic-backend/internal/types"
)

type fakeRetriever struct {
  passages   []string
  err        error
  gotQuery   string
}

func (fr *fakeRetriever) AddDocument(ctx context.Context, text string, metadata map[string]interface{}) (*types.Document, error) {
  return nil, nil
}

func (fr *fakeRetriever) Query(ctx context.Context, query string) ([]string, error) {
  fr.gotQuery = query
  return fr.passages, fr.err
}

func TestRegistry_DeclaresAllTools(t *testing.T) {
  r := NewRegistry(logger.NewNop(), &fakeCodeforces{}, nil)
  decls := r.Declarations()

  names := make([]string, 0, len(decls))
  for _, d := range decls {
    names = append(names, d.Name)
  }
  assert.ElementsMatch(t, []string{
    "get_user_info",
    "get_user_submissions",
    "get_user_rating",
    "search_knowledge_base",
  }, names)
}

func TestRegistry_SubmissionsCountDefaults(t *testing.T) {
  cf := &fakeCodeforces{submissionsResult: "[]"}
  r := NewRegistry(logger.NewNop(), cf, nil)

  r.Execute(context.Background(), services.FunctionCall{
    Name: "get_user_submissions",
    Args: map[string]interface{}{"handle": "tourist"},
  })
  assert.Equal(t, 10, cf.gotCount)

  // JSON numbers arrive as float64; they still land as ints.
  r.Execute(context.Background(), services.FunctionCall{
    Name: "get_user_submissions",
    Args: map[string]interface{}{"handle": "tourist", "count": float64(25)},
  })
  assert.Equal(t, 25, cf.gotCount)
}

func TestRegistry_SearchWithoutIndex(t *testing.T) {
  r := NewRegistry(logger.NewNop(), &fakeCodeforces{}, nil)

  out := r.Execute(context.Background(), services.FunctionCall{
    Name: "search_knowledge_base",
    Args: map[string]interface{}{"query": "dp optimization"},
  })
  assert.Equal(t, "Error searching knowledge base: knowledge index is not configured.", out)
}

func TestRegistry_SearchEmptyAndHit(t *testing.T) {
  retriever := &fakeRetriever{}
  r := NewRegistry(logger.NewNop(), &fakeCodeforces{}, retriever)

  out := r.Execute(context.Background(), services.FunctionCall{
    Name: "search_knowledge_base",
    Args: map[string]interface{}{"query": "dp optimization"},
  })
  assert.Equal(t, "No relevant information found in knowledge base.", out)
  assert.Equal(t, "dp optimization", retriever.gotQuery)

  retriever.passages = []string{"passage one", "passage two"}
  out = r.Execute(context.Background(), services.FunctionCall{
    Name: "search_knowledge_base",
    Args: map[string]interface{}{"query": "dp optimization"},
  })
  assert.Equal(t, "Found relevant info: passage one\npassage two", out)
}
