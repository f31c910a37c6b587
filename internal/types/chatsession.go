package types

import (
  "time"

  "gorm.io/gorm"
  "github.com/google/uuid"
)

type ChatSession struct {
  gorm.Model

  ID          uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
  UserID      uuid.UUID         `gorm:"index;not null" json:"userID"`
  Title       string            `gorm:"column:title" json:"title"`
  CreatedAt   time.Time         `gorm:"not null" json:"createdAt"`
  UpdatedAt   time.Time         `gorm:"not null" json:"updatedAt"`
}

func (ChatSession) TableName() string {
  return "chat_session"
}
