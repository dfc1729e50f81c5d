package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel provides shared columns for all tables.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate ensures UUIDs are generated for new records.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	b.EnsureID()
	return nil
}

// EnsureID assigns a fresh UUID when none is set. Stores that bypass gorm
// hooks call it directly.
func (b *BaseModel) EnsureID() {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
}
