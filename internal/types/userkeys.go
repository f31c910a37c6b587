package types

import (
  "time"

  "gorm.io/gorm"
  "github.com/google/uuid"
)

// UserKeys holds the per-user model credential and contest-platform handle.
// GeminiAPIKey is AES-GCM ciphertext (base64); CFHandle is stored verbatim.
type UserKeys struct {
  gorm.Model
  ID                  uuid.UUID                 `gorm:"type:uuid;primaryKey"`
  UserID              uuid.UUID                 `gorm:"uniqueIndex;not null"`
  User                *User                     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID"`

  GeminiAPIKey        string                    `gorm:"column:gemini_api_key;type:text"`
  CFHandle            string                    `gorm:"column:cf_handle"`

  CreatedAt           time.Time                 `gorm:"not null"`
  UpdatedAt           time.Time                 `gorm:"not null"`
}

func (UserKeys) TableName() string {
  return "user_keys"
}
