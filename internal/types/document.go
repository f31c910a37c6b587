package types

import (
  "time"

  "gorm.io/datatypes"
  "gorm.io/gorm"
  "github.com/google/uuid"
)

// Document is the relational audit row for a passage ingested into the
// vector index. The index itself holds the embedding; this table makes
// ingests listable without querying it.
type Document struct {
  gorm.Model

  ID          uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
  Content     string              `gorm:"column:content;type:text;not null" json:"content"`
  Metadata    datatypes.JSONMap   `gorm:"column:metadata" json:"metadata"`
  CreatedAt   time.Time           `gorm:"not null" json:"createdAt"`
  UpdatedAt   time.Time           `gorm:"not null" json:"-"`
}

func (Document) TableName() string {
  return "document"
}
