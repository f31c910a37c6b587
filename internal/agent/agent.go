package agent

import (
  "context"
  "fmt"

  "github.com/cfanatic-org/cfanatic-backend/internal/logger"
  "github.com/cfanatic-org/cfanatic-backend/internal/services"
)

// The loop alternates between two states: Reasoning (send the transcript to
// the model) and Tool-Dispatch (execute the calls the model asked for and
// feed the results back). It terminates when a model response carries no
// tool calls; the response text is the turn's answer.
const maxIterations = 8

const fallbackAnswer = "I wasn't able to finish answering that. Please try again."

type Service interface {
  Process(ctx context.Context, message, userHandle, apiKey string, history []services.ModelMessage) (string, error)
}

type service struct {
  log     *logger.Logger
  model   services.GeminiService
  tools   *Registry
}

func New(log *logger.Logger, model services.GeminiService, tools *Registry) Service {
  return &service{
    log:   log.With("service", "AgentService"),
    model: model,
    tools: tools,
  }
}

func (s *service) Process(ctx context.Context, message, userHandle, apiKey string, history []services.ModelMessage) (string, error) {
  msgs := ensurePreamble(history, userHandle)
  msgs = append(msgs, services.ModelMessage{Role: services.RoleUser, Text: message})

  lastText := ""
  for i := 0; i < maxIterations; i++ {
    //Reasoning
    resp, err := s.model.Generate(ctx, apiKey, msgs, s.tools.Declarations())
    if err != nil {
      // A failed model call is not recoverable inside the loop; it
      // surfaces as a turn-level failure.
      s.log.Warn("model call failed", "iteration", i+1, "error", err)
      return "", fmt.Errorf("model call failed: %w", err)
    }
    msgs = append(msgs, *resp)
    if resp.Text != "" {
      lastText = resp.Text
    }

    //Terminal: no pending tool calls
    if len(resp.Calls) == 0 {
      s.log.Debug("agent turn complete", "iterations", i+1)
      return resp.Text, nil
    }

    //Tool-Dispatch: execute every requested call, in request order
    toolMsg := services.ModelMessage{Role: services.RoleTool}
    for _, call := range resp.Calls {
      s.log.Debug("executing tool", "tool", call.Name)
      toolMsg.Results = append(toolMsg.Results, services.FunctionResult{
        Name:    call.Name,
        Content: s.tools.Execute(ctx, call),
      })
    }
    msgs = append(msgs, toolMsg)
  }

  // Safety net against a model that keeps requesting tools.
  s.log.Warn("agent hit iteration cap", "cap", maxIterations)
  if lastText != "" {
    return lastText, nil
  }
  return fallbackAnswer, nil
}

// ensurePreamble prepends the system message unless the transcript already
// starts with one. Pure: the input slice is never mutated.
func ensurePreamble(history []services.ModelMessage, userHandle string) []services.ModelMessage {
  if len(history) > 0 && history[0].Role == services.RoleSystem {
    out := make([]services.ModelMessage, 0, len(history))
    return append(out, history...)
  }
  out := make([]services.ModelMessage, 0, len(history)+1)
  out = append(out, services.ModelMessage{Role: services.RoleSystem, Text: preambleFor(userHandle)})
  return append(out, history...)
}

func preambleFor(userHandle string) string {
  return fmt.Sprintf(`You are CFanatic, an AI assistant specialized in helping competitive programmers analyze their Codeforces performance.

The user's Codeforces handle is: %s

When the user asks questions about "my" performance, submissions, rating, or profile, always use the handle '%s' with the available tools.

Available tools:
- get_user_info: Get user rank, rating, and profile information
- get_user_submissions: Get recent submissions
- get_user_rating: Get rating history over time
- search_knowledge_base: Search for general competitive programming knowledge

Be helpful, insightful, and provide actionable advice to improve their competitive programming skills.`, userHandle, userHandle)
}
