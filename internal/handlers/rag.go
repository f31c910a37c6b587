package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/cfanatic-org/cfanatic-backend/internal/services"
)

type RagHandler struct {
  ragService services.RagService
}

// NewRagHandler accepts a nil service; ingest then reports the index as
// unavailable instead of the route disappearing.
func NewRagHandler(ragService services.RagService) *RagHandler {
  return &RagHandler{ragService: ragService}
}

func (rh *RagHandler) Ingest(c *gin.Context) {
  var req struct {
    Text        string                    `json:"text"`
    Metadata    map[string]interface{}    `json:"metadata,omitempty"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  if rh.ragService == nil {
    c.JSON(http.StatusServiceUnavailable, gin.H{"error": "knowledge index is not configured"})
    return
  }
  if _, err := rh.ragService.AddDocument(c.Request.Context(), req.Text, req.Metadata); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
    return
  }
  c.JSON(http.StatusOK, gin.H{"status": "Document ingested"})
}
