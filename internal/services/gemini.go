package services

import (
  "bytes"
  "context"
  "encoding/json"
  "fmt"
  "io"
  "net/http"
  "time"

  "github.com/cfanatic-org/cfanatic-backend/internal/logger"
  "github.com/cfanatic-org/cfanatic-backend/internal/utils"
)

// Transcript roles. RoleTool messages carry function results back to the
// model; they are never persisted, only the user/model pair is.
const (
  RoleSystem = "system"
  RoleUser   = "user"
  RoleModel  = "model"
  RoleTool   = "tool"
)

type FunctionCall struct {
  Name    string
  Args    map[string]interface{}
}

type FunctionResult struct {
  Name    string
  Content string
}

// ModelMessage is one entry of the in-flight transcript handed to the model.
type ModelMessage struct {
  Role      string
  Text      string
  Calls     []FunctionCall
  Results   []FunctionResult
}

// FunctionDecl describes a callable tool offered to the model. Parameters is
// a JSON-schema object.
type FunctionDecl struct {
  Name          string
  Description   string
  Parameters    map[string]interface{}
}

type GeminiService interface {
  Generate(ctx context.Context, apiKey string, msgs []ModelMessage, tools []FunctionDecl) (*ModelMessage, error)
}

type geminiService struct {
  log               *logger.Logger
  client            *http.Client
  baseURL           string
  model             string
}

func NewGeminiService(log *logger.Logger) GeminiService {
  serviceLog := log.With("service", "GeminiService")
  baseURL := utils.GetEnv("GEMINI_API_URL", "https://generativelanguage.googleapis.com/v1beta", log)
  model := utils.GetEnv("GEMINI_MODEL", "gemini-flash-lite-latest", log)
  httpClient := &http.Client{
    Timeout: 60 * time.Second,
  }
  return &geminiService{
    log:      serviceLog,
    client:   httpClient,
    baseURL:  baseURL,
    model:    model,
  }
}

type geminiFunctionCall struct {
  Name    string                   `json:"name"`
  Args    map[string]interface{}   `json:"args,omitempty"`
}

type geminiFunctionResponse struct {
  Name        string                   `json:"name"`
  Response    map[string]interface{}   `json:"response"`
}

type geminiPart struct {
  Text                string                    `json:"text,omitempty"`
  FunctionCall        *geminiFunctionCall       `json:"functionCall,omitempty"`
  FunctionResponse    *geminiFunctionResponse   `json:"functionResponse,omitempty"`
}

type geminiContent struct {
  Role    string        `json:"role,omitempty"`
  Parts   []geminiPart  `json:"parts"`
}

type geminiFunctionDecl struct {
  Name          string                    `json:"name"`
  Description   string                    `json:"description,omitempty"`
  Parameters    map[string]interface{}    `json:"parameters,omitempty"`
}

type geminiTool struct {
  FunctionDeclarations    []geminiFunctionDecl    `json:"functionDeclarations"`
}

type geminiGenerationConfig struct {
  Temperature   float64   `json:"temperature"`
}

type geminiRequest struct {
  SystemInstruction   *geminiContent            `json:"systemInstruction,omitempty"`
  Contents            []geminiContent           `json:"contents"`
  Tools               []geminiTool              `json:"tools,omitempty"`
  GenerationConfig    *geminiGenerationConfig   `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
  Candidates []struct {
    Content         geminiContent   `json:"content"`
    FinishReason    string          `json:"finishReason"`
  } `json:"candidates"`
}

func (gs *geminiService) Generate(ctx context.Context, apiKey string, msgs []ModelMessage, tools []FunctionDecl) (*ModelMessage, error) {
  reqBody := geminiRequest{
    GenerationConfig: &geminiGenerationConfig{Temperature: 0.7},
  }
  for _, m := range msgs {
    switch m.Role {
    case RoleSystem:
      reqBody.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: m.Text}}}
    case RoleUser:
      reqBody.Contents = append(reqBody.Contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: m.Text}}})
    case RoleModel:
      content := geminiContent{Role: "model"}
      if m.Text != "" {
        content.Parts = append(content.Parts, geminiPart{Text: m.Text})
      }
      for _, call := range m.Calls {
        content.Parts = append(content.Parts, geminiPart{FunctionCall: &geminiFunctionCall{Name: call.Name, Args: call.Args}})
      }
      reqBody.Contents = append(reqBody.Contents, content)
    case RoleTool:
      content := geminiContent{Role: "user"}
      for _, res := range m.Results {
        content.Parts = append(content.Parts, geminiPart{FunctionResponse: &geminiFunctionResponse{
          Name:     res.Name,
          Response: map[string]interface{}{"content": res.Content},
        }})
      }
      reqBody.Contents = append(reqBody.Contents, content)
    default:
      return nil, fmt.Errorf("unknown transcript role: '%s'", m.Role)
    }
  }
  if len(tools) > 0 {
    wireTool := geminiTool{}
    for _, t := range tools {
      wireTool.FunctionDeclarations = append(wireTool.FunctionDeclarations, geminiFunctionDecl{
        Name:        t.Name,
        Description: t.Description,
        Parameters:  t.Parameters,
      })
    }
    reqBody.Tools = []geminiTool{wireTool}
  }

  payload, err := json.Marshal(reqBody)
  if err != nil {
    return nil, fmt.Errorf("failed to marshal gemini request: %w", err)
  }
  reqURL := fmt.Sprintf("%s/models/%s:generateContent", gs.baseURL, gs.model)
  req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
  if err != nil {
    gs.log.Warn("failed to build gemini request", "error", err)
    return nil, err
  }
  req.Header.Set("Content-Type", "application/json")
  req.Header.Set("x-goog-api-key", apiKey)

  resp, err := gs.client.Do(req)
  if err != nil {
    gs.log.Warn("failed to call gemini", "error", err)
    return nil, err
  }
  defer resp.Body.Close()

  if resp.StatusCode < 200 || resp.StatusCode > 299 {
    bodyBytes, _ := io.ReadAll(resp.Body)
    gs.log.Warn("gemini responded with non-2xx", "statusCode", resp.StatusCode, "body", string(bodyBytes))
    return nil, fmt.Errorf("gemini HTTP %d: %s", resp.StatusCode, string(bodyBytes))
  }
  var out geminiResponse
  if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
    gs.log.Warn("failed to decode gemini response body", "error", err)
    return nil, err
  }
  if len(out.Candidates) == 0 {
    return nil, fmt.Errorf("gemini returned no candidates")
  }

  result := &ModelMessage{Role: RoleModel}
  for _, part := range out.Candidates[0].Content.Parts {
    if part.Text != "" {
      result.Text += part.Text
    }
    if part.FunctionCall != nil {
      result.Calls = append(result.Calls, FunctionCall{Name: part.FunctionCall.Name, Args: part.FunctionCall.Args})
    }
  }
  return result, nil
}
