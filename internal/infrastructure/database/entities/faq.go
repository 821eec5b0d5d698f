package entities

import (
	"time"

	"github.com/google/uuid"
)

// FaqEntry models one canned question and answer offered to customers.
type FaqEntry struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Slug         string    `gorm:"type:varchar(64);not null;uniqueIndex"`
	Question     string    `gorm:"type:text;not null"`
	Answer       string    `gorm:"type:text;not null"`
	DisplayOrder int       `gorm:"not null;default:0"`
	IsActive     bool      `gorm:"not null;default:true;index"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (FaqEntry) TableName() string {
	return "faq_entries"
}
