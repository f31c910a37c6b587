package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/cfanatic-org/cfanatic-backend/internal/requestdata"
  "github.com/cfanatic-org/cfanatic-backend/internal/services"
)

type KeysHandler struct {
  vault services.VaultService
}

func NewKeysHandler(vault services.VaultService) *KeysHandler {
  return &KeysHandler{vault: vault}
}

func (kh *KeysHandler) UpdateKeys(c *gin.Context) {
  var req struct {
    GeminiKey       string          `json:"gemini_key"`
    CFHandle        string          `json:"cf_handle,omitempty"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    c.JSON(http.StatusUnauthorized, gin.H{"error": "missing request data"})
    return
  }
  if err := kh.vault.Store(c.Request.Context(), rd.UserID, req.GeminiKey, req.CFHandle); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
    return
  }
  c.JSON(http.StatusOK, gin.H{"status": "keys updated"})
}

func (kh *KeysHandler) GetKeys(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    c.JSON(http.StatusUnauthorized, gin.H{"error": "missing request data"})
    return
  }
  status, err := kh.vault.Describe(c.Request.Context(), rd.UserID)
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
    return
  }
  c.JSON(http.StatusOK, status)
}
