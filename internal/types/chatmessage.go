package types

import (
  "time"

  "gorm.io/gorm"
  "github.com/google/uuid"
)

// ChatMessage rows are immutable once written; replaying a session's
// messages in created_at order reconstructs the transcript.
type ChatMessage struct {
  gorm.Model

  ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
  SessionID   uuid.UUID       `gorm:"index;not null" json:"sessionID"`
  Role        string          `gorm:"column:role;not null" json:"role"`
  Content     string          `gorm:"column:content;type:text;not null" json:"content"`
  CreatedAt   time.Time       `gorm:"not null" json:"createdAt"`
  UpdatedAt   time.Time       `gorm:"not null" json:"-"`
}

const (
  MessageRoleUser  = "user"
  MessageRoleModel = "model"
)

func (ChatMessage) TableName() string {
  return "chat_message"
}
