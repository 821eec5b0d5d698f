package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Message models one persisted conversation message. Metadata carries
// structured hints for clients (quick-reply slugs, UI flags) as JSONB.
type Message struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ConversationID uuid.UUID  `gorm:"type:uuid;not null;index"`
	SenderType     string     `gorm:"type:varchar(16);not null"`
	SenderAgentID  *uuid.UUID `gorm:"type:uuid"`
	Kind           string     `gorm:"type:varchar(16);not null"`
	Content        string     `gorm:"type:text;not null"`
	Metadata       datatypes.JSONMap
	CreatedAt      time.Time `gorm:"autoCreateTime;index"`
}

func (Message) TableName() string {
	return "messages"
}
