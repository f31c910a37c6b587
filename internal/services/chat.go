package services

import (
  "context"
  "errors"
  "fmt"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/cfanatic-org/cfanatic-backend/internal/logger"
  "github.com/cfanatic-org/cfanatic-backend/internal/repos"
  "github.com/cfanatic-org/cfanatic-backend/internal/requestdata"
  "github.com/cfanatic-org/cfanatic-backend/internal/types"
)

const (
  sessionListLimit  = 20
  sessionTitleLimit = 50
)

// AgentRunner is the agent loop contract: given the new message, the
// acting user's platform handle, the per-call model credential and the
// prior transcript, produce the turn's final answer. Persistence stays
// out of the loop and in this service.
type AgentRunner interface {
  Process(ctx context.Context, message, userHandle, apiKey string, history []ModelMessage) (string, error)
}

type SessionSummary struct {
  ID              uuid.UUID     `json:"id"`
  Title           string        `json:"title"`
  UpdatedAt       time.Time     `json:"updated_at"`
  MessageCount    int64         `json:"message_count"`
}

type MessageView struct {
  Role        string        `json:"role"`
  Content     string        `json:"content"`
  CreatedAt   time.Time     `json:"created_at"`
}

type SessionDetail struct {
  ID          uuid.UUID       `json:"id"`
  Title       string          `json:"title"`
  Messages    []MessageView   `json:"messages"`
}

type ChatService interface {
  //Session Level
  ListSessions(ctx context.Context) ([]SessionSummary, error)
  GetSession(ctx context.Context, sessionID uuid.UUID) (*SessionDetail, error)
  CreateSession(ctx context.Context) (*types.ChatSession, error)
  DeleteSession(ctx context.Context, sessionID uuid.UUID) error
  //Turn Level
  SendMessage(ctx context.Context, sessionID *uuid.UUID, message string) (string, uuid.UUID, error)
}

type chatService struct {
  db              *gorm.DB
  log             *logger.Logger
  sessionRepo     repos.ChatSessionRepo
  messageRepo     repos.ChatMessageRepo
  vault           VaultService
  agent           AgentRunner
}

func NewChatService(
  db              *gorm.DB,
  log             *logger.Logger,
  sessionRepo     repos.ChatSessionRepo,
  messageRepo     repos.ChatMessageRepo,
  vault           VaultService,
  agent           AgentRunner,
) ChatService {
  serviceLog := log.With("service", "ChatService")
  return &chatService{
    db:          db,
    log:         serviceLog,
    sessionRepo: sessionRepo,
    messageRepo: messageRepo,
    vault:       vault,
    agent:       agent,
  }
}

func (cs *chatService) ListSessions(ctx context.Context) ([]SessionSummary, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil {
    return nil, fmt.Errorf("no request data in context")
  }
  sessions, err := cs.sessionRepo.GetUserSessions(ctx, nil, rd.UserID, sessionListLimit)
  if err != nil {
    cs.log.Warn("Failed to list chat sessions, Cannot proceed further. Returning error.", "error", err)
    return nil, fmt.Errorf("Failed to list chat sessions: %w", err)
  }
  out := make([]SessionSummary, 0, len(sessions))
  for _, s := range sessions {
    count, err := cs.messageRepo.CountBySessionID(ctx, nil, s.ID)
    if err != nil {
      return nil, fmt.Errorf("Failed to count session messages: %w", err)
    }
    out = append(out, SessionSummary{
      ID:           s.ID,
      Title:        s.Title,
      UpdatedAt:    s.UpdatedAt,
      MessageCount: count,
    })
  }
  return out, nil
}

func (cs *chatService) GetSession(ctx context.Context, sessionID uuid.UUID) (*SessionDetail, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil {
    return nil, fmt.Errorf("no request data in context")
  }
  session, err := cs.sessionRepo.GetByIDAndUser(ctx, nil, sessionID, rd.UserID)
  if err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, ErrSessionNotFound
    }
    return nil, fmt.Errorf("Failed to fetch chat session: %w", err)
  }
  msgs, err := cs.messageRepo.GetBySessionID(ctx, nil, session.ID)
  if err != nil {
    return nil, fmt.Errorf("Failed to fetch session messages: %w", err)
  }
  detail := &SessionDetail{
    ID:       session.ID,
    Title:    session.Title,
    Messages: make([]MessageView, 0, len(msgs)),
  }
  for _, m := range msgs {
    detail.Messages = append(detail.Messages, MessageView{
      Role:      m.Role,
      Content:   m.Content,
      CreatedAt: m.CreatedAt,
    })
  }
  return detail, nil
}

func (cs *chatService) CreateSession(ctx context.Context) (*types.ChatSession, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil {
    return nil, fmt.Errorf("no request data in context")
  }
  session := &types.ChatSession{
    UserID: rd.UserID,
    Title:  "New Chat",
  }
  created, err := cs.sessionRepo.CreateSession(ctx, nil, session)
  if err != nil {
    return nil, fmt.Errorf("Failed to create chat session: %w", err)
  }
  return created, nil
}

func (cs *chatService) DeleteSession(ctx context.Context, sessionID uuid.UUID) error {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil {
    return fmt.Errorf("no request data in context")
  }
  if err := cs.sessionRepo.DeleteByIDAndUser(ctx, nil, sessionID, rd.UserID); err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return ErrSessionNotFound
    }
    return fmt.Errorf("Failed to delete chat session: %w", err)
  }
  return nil
}

// SendMessage runs one chat turn end to end: resolve credentials, resolve
// the session, rebuild the transcript, run the agent loop, persist the
// user/model message pair and bump the session.
func (cs *chatService) SendMessage(ctx context.Context, sessionID *uuid.UUID, message string) (string, uuid.UUID, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil {
    return "", uuid.Nil, fmt.Errorf("no request data in context")
  }
  if message == "" {
    return "", uuid.Nil, fmt.Errorf("message is empty")
  }

  //1) Resolve credentials
  geminiKey, cfHandle, err := cs.vault.Load(ctx, rd.UserID)
  if err != nil {
    return "", uuid.Nil, err
  }
  if geminiKey == "" {
    return "", uuid.Nil, ErrKeyNotConfigured
  }
  if cfHandle == "" {
    cfHandle = rd.Username
  }

  //2) Resolve the session
  var session *types.ChatSession
  if sessionID != nil && *sessionID != uuid.Nil {
    session, err = cs.sessionRepo.GetByIDAndUser(ctx, nil, *sessionID, rd.UserID)
    if err != nil {
      if errors.Is(err, gorm.ErrRecordNotFound) {
        return "", uuid.Nil, ErrSessionNotFound
      }
      return "", uuid.Nil, fmt.Errorf("Failed to fetch chat session: %w", err)
    }
  } else {
    session, err = cs.sessionRepo.CreateSession(ctx, nil, &types.ChatSession{
      UserID: rd.UserID,
      Title:  deriveTitle(message),
    })
    if err != nil {
      return "", uuid.Nil, fmt.Errorf("Failed to create chat session: %w", err)
    }
  }

  //3) Rebuild prior transcript before this turn's message is written
  prior, err := cs.messageRepo.GetBySessionID(ctx, nil, session.ID)
  if err != nil {
    return "", uuid.Nil, fmt.Errorf("Failed to fetch session messages: %w", err)
  }
  history := make([]ModelMessage, 0, len(prior))
  for _, m := range prior {
    role := RoleModel
    if m.Role == types.MessageRoleUser {
      role = RoleUser
    }
    history = append(history, ModelMessage{Role: role, Text: m.Content})
  }

  //4) Persist the user message
  userMsg := &types.ChatMessage{
    SessionID: session.ID,
    Role:      types.MessageRoleUser,
    Content:   message,
  }
  if _, err := cs.messageRepo.CreateMessages(ctx, nil, []*types.ChatMessage{userMsg}); err != nil {
    return "", uuid.Nil, fmt.Errorf("Failed to persist user message: %w", err)
  }

  //5) Run the agent loop
  answer, err := cs.agent.Process(ctx, message, cfHandle, geminiKey, history)
  if err != nil {
    cs.log.Warn("Agent turn failed", "sessionID", session.ID, "error", err)
    return "", uuid.Nil, fmt.Errorf("Failed to complete chat turn: %w", err)
  }

  //6) Persist the model answer and bump the session
  modelMsg := &types.ChatMessage{
    SessionID: session.ID,
    Role:      types.MessageRoleModel,
    Content:   answer,
  }
  if _, err := cs.messageRepo.CreateMessages(ctx, nil, []*types.ChatMessage{modelMsg}); err != nil {
    return "", uuid.Nil, fmt.Errorf("Failed to persist model message: %w", err)
  }
  if err := cs.sessionRepo.Touch(ctx, nil, session.ID, time.Now()); err != nil {
    cs.log.Warn("Failed to bump session timestamp", "sessionID", session.ID, "error", err)
  }
  return answer, session.ID, nil
}

func deriveTitle(message string) string {
  runes := []rune(message)
  if len(runes) > sessionTitleLimit {
    return string(runes[:sessionTitleLimit]) + "..."
  }
  return message
}
