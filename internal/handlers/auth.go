package handlers

import (
  "errors"
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/cfanatic-org/cfanatic-backend/internal/services"
)

type AuthHandler struct {
  authService     services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
  return &AuthHandler{authService: authService}
}

func (ah *AuthHandler) Register(c *gin.Context) {
  var req struct {
    Username        string              `json:"username"`
    Email           string              `json:"email"`
    Password        string              `json:"password"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  accessToken, err := ah.authService.RegisterUser(c.Request.Context(), req.Username, req.Email, req.Password)
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
    return
  }
  c.JSON(http.StatusOK, gin.H{"access_token": accessToken, "token_type": "bearer"})
}

func (ah *AuthHandler) Login(c *gin.Context) {
  var req struct {
    Username        string          `json:"username"`
    Password        string          `json:"password"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  accessToken, err := ah.authService.Login(c.Request.Context(), req.Username, req.Password)
  if err != nil {
    if errors.Is(err, services.ErrInvalidCredentials) {
      c.Header("WWW-Authenticate", "Bearer")
      c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
      return
    }
    c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
    return
  }
  c.JSON(http.StatusOK, gin.H{"access_token": accessToken, "token_type": "bearer"})
}
