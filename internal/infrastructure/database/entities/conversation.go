package entities

import (
	"time"

	"github.com/google/uuid"
)

// Conversation models the persisted representation of a support
// conversation.
type Conversation struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CustomerSessionID string     `gorm:"type:varchar(64);not null;index"`
	Status            string     `gorm:"type:varchar(16);not null;index"`
	AssignedAgentID   *uuid.UUID `gorm:"type:uuid;index"`
	RequestedAgentAt  *time.Time
	ClosedAt          *time.Time
	CreatedAt         time.Time `gorm:"autoCreateTime"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`
}

func (Conversation) TableName() string {
	return "conversations"
}
