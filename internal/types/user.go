package types

import (
  "time"

  "gorm.io/gorm"
  "github.com/google/uuid"
)

type User struct {
  gorm.Model
  ID                  uuid.UUID                 `gorm:"type:uuid;primaryKey" json:"id"`
  Username            string                    `gorm:"uniqueIndex;not null;column:username" json:"username"`
  Email               string                    `gorm:"uniqueIndex;not null;column:email" json:"email"`
  Password            string                    `gorm:"not null;column:password" json:"-"`

  CreatedAt           time.Time                 `gorm:"not null" json:"createdAt"`
  UpdatedAt           time.Time                 `gorm:"not null" json:"updatedAt"`
}

func (User) TableName() string {
  return "user"
}
