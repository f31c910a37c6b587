package agent

import (
  "context"
  "fmt"
  "strings"
  "testing"

  "github.com/stretchr/testify/assert"
  "github.com/stretchr/testify/require"

  "github.com/cfanatic-org/cfanatic-backend/internal/logger"
  "github.com/cfanatic-org/cfanatic-backend/internal/services"
)

// scriptedModel plays back canned responses and records every transcript it
// was handed, one snapshot per Generate call.
type scriptedModel struct {
  responses     []*services.ModelMessage
  err           error
  transcripts   [][]services.ModelMessage
}

func (sm *scriptedModel) Generate(ctx context.Context, apiKey string, msgs []services.ModelMessage, tools []services.FunctionDecl) (*services.ModelMessage, error) {
  snapshot := make([]services.ModelMessage, len(msgs))
  copy(snapshot, msgs)
  sm.transcripts = append(sm.transcripts, snapshot)
  if sm.err != nil {
    return nil, sm.err
  }
  call := len(sm.transcripts) - 1
  if call >= len(sm.responses) {
    call = len(sm.responses) - 1
  }
  return sm.responses[call], nil
}

type fakeCodeforces struct {
  infoResult         string
  submissionsResult  string
  ratingResult       string
  err                error
  gotHandle          string
  gotCount           int
}

func (fc *fakeCodeforces) GetUserInfo(ctx context.Context, handle string) (string, error) {
  fc.gotHandle = handle
  return fc.infoResult, fc.err
}

func (fc *fakeCodeforces) GetUserSubmissions(ctx context.Context, handle string, count int) (string, error) {
  fc.gotHandle = handle
  fc.gotCount = count
  return fc.submissionsResult, fc.err
}

func (fc *fakeCodeforces) GetUserRating(ctx context.Context, handle string) (string, error) {
  fc.gotHandle = handle
  return fc.ratingResult, fc.err
}

func newTestAgent(model *scriptedModel, cf services.CodeforcesService, retriever services.RagService) Service {
  return New(logger.NewNop(), model, NewRegistry(logger.NewNop(), cf, retriever))
}

func modelText(text string) *services.ModelMessage {
  return &services.ModelMessage{Role: services.RoleModel, Text: text}
}

func modelCall(name string, args map[string]interface{}) *services.ModelMessage {
  return &services.ModelMessage{
    Role:  services.RoleModel,
    Calls: []services.FunctionCall{{Name: name, Args: args}},
  }
}

func TestAgent_DirectAnswer(t *testing.T) {
  model := &scriptedModel{responses: []*services.ModelMessage{modelText("Just say hi back.")}}
  agent := newTestAgent(model, &fakeCodeforces{}, nil)

  answer, err := agent.Process(context.Background(), "hello", "tourist", "key", nil)
  require.NoError(t, err)
  assert.Equal(t, "Just say hi back.", answer)

  // The model saw a system preamble bound to the handle, then the message.
  require.Len(t, model.transcripts, 1)
  transcript := model.transcripts[0]
  require.Len(t, transcript, 2)
  assert.Equal(t, services.RoleSystem, transcript[0].Role)
  assert.Contains(t, transcript[0].Text, "tourist")
  assert.Equal(t, services.RoleUser, transcript[1].Role)
  assert.Equal(t, "hello", transcript[1].Text)
}

func TestAgent_ToolCallRoundTrip(t *testing.T) {
  cf := &fakeCodeforces{ratingResult: `[{"newRating":3979}]`}
  model := &scriptedModel{responses: []*services.ModelMessage{
    modelCall("get_user_rating", map[string]interface{}{"handle": "tourist"}),
    modelText("Your current rating is 3979."),
  }}
  agent := newTestAgent(model, cf, nil)

  answer, err := agent.Process(context.Background(), "What is my rating?", "tourist", "key", nil)
  require.NoError(t, err)
  assert.Equal(t, "Your current rating is 3979.", answer)
  assert.Equal(t, "tourist", cf.gotHandle)

  // Second model call carries the tool result for it to reason over.
  require.Len(t, model.transcripts, 2)
  second := model.transcripts[1]
  last := second[len(second)-1]
  assert.Equal(t, services.RoleTool, last.Role)
  require.Len(t, last.Results, 1)
  assert.Equal(t, "get_user_rating", last.Results[0].Name)
  assert.Equal(t, `[{"newRating":3979}]`, last.Results[0].Content)
}

func TestAgent_MultipleCallsRunInRequestOrder(t *testing.T) {
  cf := &fakeCodeforces{infoResult: `[{"rank":"legendary grandmaster"}]`, ratingResult: `[]`}
  model := &scriptedModel{responses: []*services.ModelMessage{
    {
      Role: services.RoleModel,
      Calls: []services.FunctionCall{
        {Name: "get_user_info", Args: map[string]interface{}{"handle": "tourist"}},
        {Name: "get_user_rating", Args: map[string]interface{}{"handle": "tourist"}},
      },
    },
    modelText("done"),
  }}
  agent := newTestAgent(model, cf, nil)

  _, err := agent.Process(context.Background(), "summarize me", "tourist", "key", nil)
  require.NoError(t, err)

  second := model.transcripts[1]
  last := second[len(second)-1]
  require.Len(t, last.Results, 2)
  assert.Equal(t, "get_user_info", last.Results[0].Name)
  assert.Equal(t, "get_user_rating", last.Results[1].Name)
}

func TestAgent_ToolErrorIsFedBackAsText(t *testing.T) {
  cf := &fakeCodeforces{err: fmt.Errorf("codeforces responded with status FAILED: handle not found")}
  model := &scriptedModel{responses: []*services.ModelMessage{
    modelCall("get_user_info", map[string]interface{}{"handle": "nosuch"}),
    modelText("I couldn't find that handle."),
  }}
  agent := newTestAgent(model, cf, nil)

  answer, err := agent.Process(context.Background(), "who is nosuch?", "tourist", "key", nil)
  require.NoError(t, err)
  assert.Equal(t, "I couldn't find that handle.", answer)

  second := model.transcripts[1]
  last := second[len(second)-1]
  require.Len(t, last.Results, 1)
  assert.True(t, strings.HasPrefix(last.Results[0].Content, "Error fetching user info:"))
}

func TestAgent_UnknownToolReportedInBand(t *testing.T) {
  model := &scriptedModel{responses: []*services.ModelMessage{
    modelCall("delete_account", nil),
    modelText("That tool does not exist."),
  }}
  agent := newTestAgent(model, &fakeCodeforces{}, nil)

  _, err := agent.Process(context.Background(), "do it", "tourist", "key", nil)
  require.NoError(t, err)

  second := model.transcripts[1]
  last := second[len(second)-1]
  assert.Equal(t, "Error: unknown tool 'delete_account'.", last.Results[0].Content)
}

func TestAgent_PreambleNotDuplicated(t *testing.T) {
  history := []services.ModelMessage{
    {Role: services.RoleSystem, Text: "existing preamble"},
    {Role: services.RoleUser, Text: "earlier question"},
    {Role: services.RoleModel, Text: "earlier answer"},
  }
  model := &scriptedModel{responses: []*services.ModelMessage{modelText("ok")}}
  agent := newTestAgent(model, &fakeCodeforces{}, nil)

  _, err := agent.Process(context.Background(), "next question", "tourist", "key", history)
  require.NoError(t, err)

  transcript := model.transcripts[0]
  systemCount := 0
  for _, m := range transcript {
    if m.Role == services.RoleSystem {
      systemCount++
    }
  }
  assert.Equal(t, 1, systemCount)
  assert.Equal(t, "existing preamble", transcript[0].Text)
  // The caller's history slice stays untouched.
  assert.Len(t, history, 3)
}

func TestAgent_IterationCapFallsBackToLastText(t *testing.T) {
  greedy := &services.ModelMessage{
    Role:  services.RoleModel,
    Text:  "still digging...",
    Calls: []services.FunctionCall{{Name: "get_user_rating", Args: map[string]interface{}{"handle": "tourist"}}},
  }
  model := &scriptedModel{responses: []*services.ModelMessage{greedy}}
  agent := newTestAgent(model, &fakeCodeforces{ratingResult: "[]"}, nil)

  answer, err := agent.Process(context.Background(), "loop forever", "tourist", "key", nil)
  require.NoError(t, err)
  assert.Equal(t, "still digging...", answer)
  assert.Len(t, model.transcripts, 8)
}

func TestAgent_IterationCapWithoutTextUsesFallback(t *testing.T) {
  greedy := modelCall("get_user_rating", map[string]interface{}{"handle": "tourist"})
  model := &scriptedModel{responses: []*services.ModelMessage{greedy}}
  agent := newTestAgent(model, &fakeCodeforces{ratingResult: "[]"}, nil)

  answer, err := agent.Process(context.Background(), "loop forever", "tourist", "key", nil)
  require.NoError(t, err)
  assert.Equal(t, fallbackAnswer, answer)
}

func TestAgent_ModelFailureAbortsTurn(t *testing.T) {
  model := &scriptedModel{err: fmt.Errorf("gemini HTTP 500")}
  agent := newTestAgent(model, &fakeCodeforces{}, nil)

  _, err := agent.Process(context.Background(), "hello", "tourist", "key", nil)
  require.Error(t, err)
  assert.Contains(t, err.Error(), "model call failed")
}
