package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/cfanatic-org/cfanatic-backend/internal/services"
)

type MeHandler struct {
  meService services.MeService
}

func NewMeHandler(meService services.MeService) *MeHandler {
  return &MeHandler{meService: meService}
}

func (mh *MeHandler) GetMe(c *gin.Context) {
  me, err := mh.meService.GetMe(c.Request.Context(), nil)
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
    return
  }
  c.JSON(http.StatusOK, gin.H{"username": me.Username, "email": me.Email})
}
