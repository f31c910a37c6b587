package handlers

import (
  "errors"
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/cfanatic-org/cfanatic-backend/internal/services"
)

type ChatHandler struct {
  chatService services.ChatService
}

func NewChatHandler(chatService services.ChatService) *ChatHandler {
  return &ChatHandler{chatService: chatService}
}

func (ch *ChatHandler) ListSessions(c *gin.Context) {
  sessions, err := ch.chatService.ListSessions(c.Request.Context())
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
    return
  }
  c.JSON(http.StatusOK, sessions)
}

func (ch *ChatHandler) GetSession(c *gin.Context) {
  sessionID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusNotFound, gin.H{"error": services.ErrSessionNotFound.Error()})
    return
  }
  detail, err := ch.chatService.GetSession(c.Request.Context(), sessionID)
  if err != nil {
    if errors.Is(err, services.ErrSessionNotFound) {
      c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
      return
    }
    c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
    return
  }
  c.JSON(http.StatusOK, detail)
}

func (ch *ChatHandler) CreateSession(c *gin.Context) {
  session, err := ch.chatService.CreateSession(c.Request.Context())
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
    return
  }
  c.JSON(http.StatusOK, gin.H{"id": session.ID, "title": session.Title})
}

func (ch *ChatHandler) DeleteSession(c *gin.Context) {
  sessionID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    c.JSON(http.StatusNotFound, gin.H{"error": services.ErrSessionNotFound.Error()})
    return
  }
  if err := ch.chatService.DeleteSession(c.Request.Context(), sessionID); err != nil {
    if errors.Is(err, services.ErrSessionNotFound) {
      c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
      return
    }
    c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
    return
  }
  c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (ch *ChatHandler) Chat(c *gin.Context) {
  var req struct {
    Message         string          `json:"message"`
    SessionID       *uuid.UUID      `json:"session_id,omitempty"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  answer, sessionID, err := ch.chatService.SendMessage(c.Request.Context(), req.SessionID, req.Message)
  if err != nil {
    switch {
    case errors.Is(err, services.ErrSessionNotFound):
      c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
    case errors.Is(err, services.ErrKeyNotConfigured):
      c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
    default:
      c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
    }
    return
  }
  c.JSON(http.StatusOK, gin.H{"response": answer, "session_id": sessionID})
}
