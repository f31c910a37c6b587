package agent

import (
  "context"
  "fmt"
  "strings"

  "github.com/cfanatic-org/cfanatic-backend/internal/logger"
  "github.com/cfanatic-org/cfanatic-backend/internal/services"
)

// Tools return strings, never errors: a failure comes back as descriptive
// text so the model can react to it in-band instead of the turn aborting.
// That contract is deliberate and applies to this boundary only.
type toolFunc func(ctx context.Context, args map[string]interface{}) string

type tool struct {
  decl    services.FunctionDecl
  run     toolFunc
}

type Registry struct {
  log       *logger.Logger
  tools     []tool
  byName    map[string]toolFunc
}

// NewRegistry wires the fixed tool set. retriever may be nil when no
// knowledge index is configured; the search tool then reports that in-band.
func NewRegistry(log *logger.Logger, cf services.CodeforcesService, retriever services.RagService) *Registry {
  r := &Registry{
    log:    log.With("service", "ToolRegistry"),
    byName: make(map[string]toolFunc),
  }

  r.register(services.FunctionDecl{
    Name:        "get_user_info",
    Description: "Get information about a Codeforces user (rank, rating, etc).",
    Parameters: map[string]interface{}{
      "type": "object",
      "properties": map[string]interface{}{
        "handle": map[string]interface{}{
          "type":        "string",
          "description": "The Codeforces handle to look up.",
        },
      },
      "required": []string{"handle"},
    },
  }, func(ctx context.Context, args map[string]interface{}) string {
    info, err := cf.GetUserInfo(ctx, stringArg(args, "handle"))
    if err != nil {
      return fmt.Sprintf("Error fetching user info: %v", err)
    }
    return info
  })

  r.register(services.FunctionDecl{
    Name:        "get_user_submissions",
    Description: "Get recent submissions of a Codeforces user.",
    Parameters: map[string]interface{}{
      "type": "object",
      "properties": map[string]interface{}{
        "handle": map[string]interface{}{
          "type":        "string",
          "description": "The Codeforces handle to look up.",
        },
        "count": map[string]interface{}{
          "type":        "integer",
          "description": "How many recent submissions to fetch (default 10).",
        },
      },
      "required": []string{"handle"},
    },
  }, func(ctx context.Context, args map[string]interface{}) string {
    submissions, err := cf.GetUserSubmissions(ctx, stringArg(args, "handle"), intArg(args, "count", 10))
    if err != nil {
      return fmt.Sprintf("Error fetching submissions: %v", err)
    }
    return submissions
  })

  r.register(services.FunctionDecl{
    Name:        "get_user_rating",
    Description: "Get rating history of a Codeforces user.",
    Parameters: map[string]interface{}{
      "type": "object",
      "properties": map[string]interface{}{
        "handle": map[string]interface{}{
          "type":        "string",
          "description": "The Codeforces handle to look up.",
        },
      },
      "required": []string{"handle"},
    },
  }, func(ctx context.Context, args map[string]interface{}) string {
    rating, err := cf.GetUserRating(ctx, stringArg(args, "handle"))
    if err != nil {
      return fmt.Sprintf("Error fetching rating: %v", err)
    }
    return rating
  })

  r.register(services.FunctionDecl{
    Name:        "search_knowledge_base",
    Description: "Search the local knowledge base for relevant information.",
    Parameters: map[string]interface{}{
      "type": "object",
      "properties": map[string]interface{}{
        "query": map[string]interface{}{
          "type":        "string",
          "description": "What to search for.",
        },
      },
      "required": []string{"query"},
    },
  }, func(ctx context.Context, args map[string]interface{}) string {
    if retriever == nil {
      return "Error searching knowledge base: knowledge index is not configured."
    }
    passages, err := retriever.Query(ctx, stringArg(args, "query"))
    if err != nil {
      return fmt.Sprintf("Error searching knowledge base: %v", err)
    }
    if len(passages) == 0 {
      return "No relevant information found in knowledge base."
    }
    return "Found relevant info: " + strings.Join(passages, "\n")
  })

  return r
}

func (r *Registry) register(decl services.FunctionDecl, run toolFunc) {
  r.tools = append(r.tools, tool{decl: decl, run: run})
  r.byName[decl.Name] = run
}

func (r *Registry) Declarations() []services.FunctionDecl {
  decls := make([]services.FunctionDecl, 0, len(r.tools))
  for _, t := range r.tools {
    decls = append(decls, t.decl)
  }
  return decls
}

// Execute runs one requested call and always produces text for the model.
func (r *Registry) Execute(ctx context.Context, call services.FunctionCall) string {
  run, ok := r.byName[call.Name]
  if !ok {
    r.log.Warn("model requested unknown tool", "tool", call.Name)
    return fmt.Sprintf("Error: unknown tool '%s'.", call.Name)
  }
  return run(ctx, call.Args)
}

func stringArg(args map[string]interface{}, key string) string {
  if args == nil {
    return ""
  }
  if s, ok := args[key].(string); ok {
    return s
  }
  return ""
}

func intArg(args map[string]interface{}, key string, defaultVal int) int {
  if args == nil {
    return defaultVal
  }
  switch v := args[key].(type) {
  case float64:
    return int(v)
  case int:
    return v
  default:
    return defaultVal
  }
}
