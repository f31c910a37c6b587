package services

import (
  "context"
  "encoding/json"
  "io"
  "net/http"
  "net/http/httptest"
  "testing"

  "github.com/stretchr/testify/assert"
  "github.com/stretchr/testify/require"

  "github.com/cfanatic-org/cfanatic-backend/internal/logger"
)

func newTestGemini(t *testing.T, handler http.HandlerFunc) GeminiService {
  t.Helper()
  srv := httptest.NewServer(handler)
  t.Cleanup(srv.Close)
  t.Setenv("GEMINI_API_URL", srv.URL)
  t.Setenv("GEMINI_MODEL", "gemini-flash-lite-latest")
  return NewGeminiService(logger.NewNop())
}

func TestGeminiService_MapsTranscriptToWireFormat(t *testing.T) {
  var gotPath, gotAPIKey string
  var gotBody map[string]interface{}
  gemini := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
    gotPath = r.URL.Path
    gotAPIKey = r.Header.Get("x-goog-api-key")
    raw, _ := io.ReadAll(r.Body)
    require.NoError(t, json.Unmarshal(raw, &gotBody))
    w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"hello there"}]},"finishReason":"STOP"}]}`))
  })

  msgs := []ModelMessage{
    {Role: RoleSystem, Text: "You are a helpful assistant."},
    {Role: RoleUser, Text: "hi"},
    {Role: RoleModel, Calls: []FunctionCall{{Name: "get_user_rating", Args: map[string]interface{}{"handle": "tourist"}}}},
    {Role: RoleTool, Results: []FunctionResult{{Name: "get_user_rating", Content: "[]"}}},
  }
  tools := []FunctionDecl{{Name: "get_user_rating", Description: "rating history", Parameters: map[string]interface{}{"type": "object"}}}

  out, err := gemini.Generate(context.Background(), "the-api-key", msgs, tools)
  require.NoError(t, err)
  assert.Equal(t, "hello there", out.Text)
  assert.Empty(t, out.Calls)

  assert.Equal(t, "/models/gemini-flash-lite-latest:generateContent", gotPath)
  assert.Equal(t, "the-api-key", gotAPIKey)

  // The system message becomes systemInstruction, not a content entry.
  sys := gotBody["systemInstruction"].(map[string]interface{})
  sysParts := sys["parts"].([]interface{})
  assert.Equal(t, "You are a helpful assistant.", sysParts[0].(map[string]interface{})["text"])

  contents := gotBody["contents"].([]interface{})
  require.Len(t, contents, 3)
  assert.Equal(t, "user", contents[0].(map[string]interface{})["role"])
  assert.Equal(t, "model", contents[1].(map[string]interface{})["role"])
  // Tool results ride back under the user role.
  toolTurn := contents[2].(map[string]interface{})
  assert.Equal(t, "user", toolTurn["role"])
  toolPart := toolTurn["parts"].([]interface{})[0].(map[string]interface{})
  fr := toolPart["functionResponse"].(map[string]interface{})
  assert.Equal(t, "get_user_rating", fr["name"])

  wireTools := gotBody["tools"].([]interface{})
  decls := wireTools[0].(map[string]interface{})["functionDeclarations"].([]interface{})
  assert.Equal(t, "get_user_rating", decls[0].(map[string]interface{})["name"])
}

func TestGeminiService_ParsesFunctionCalls(t *testing.T) {
  gemini := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
    w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[
      {"functionCall":{"name":"get_user_info","args":{"count":10}}},
      {"functionCall":{"name":"get_user_rating","args":{}}}
    ]},"finishReason":"STOP"}]}`))
  })

  out, err := gemini.Generate(context.Background(), "k", []ModelMessage{{Role: RoleUser, Text: "stats please"}}, nil)
  require.NoError(t, err)
  require.Len(t, out.Calls, 2)
  assert.Equal(t, "get_user_info", out.Calls[0].Name)
  assert.Equal(t, float64(10), out.Calls[0].Args["count"])
  assert.Equal(t, "get_user_rating", out.Calls[1].Name)
}

func TestGeminiService_NonOKStatus(t *testing.T) {
  gemini := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
    w.WriteHeader(http.StatusBadRequest)
    w.Write([]byte(`{"error":{"message":"API key not valid"}}`))
  })

  _, err := gemini.Generate(context.Background(), "bad-key", []ModelMessage{{Role: RoleUser, Text: "hi"}}, nil)
  require.Error(t, err)
  assert.Contains(t, err.Error(), "400")
  assert.Contains(t, err.Error(), "API key not valid")
}

func TestGeminiService_NoCandidates(t *testing.T) {
  gemini := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
    w.Write([]byte(`{"candidates":[]}`))
  })

  _, err := gemini.Generate(context.Background(), "k", []ModelMessage{{Role: RoleUser, Text: "hi"}}, nil)
  assert.Error(t, err)
}
