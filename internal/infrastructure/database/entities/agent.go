package entities

import (
	"time"

	"github.com/google/uuid"
)

// Agent models a human support agent profile.
type Agent struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	DisplayName    string    `gorm:"type:varchar(128);not null"`
	Presence       string    `gorm:"type:varchar(16);not null;index"`
	MaxActiveChats int       `gorm:"not null;default:3"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (Agent) TableName() string {
	return "agents"
}

// AgentUser is the login account paired with an agent profile.
type AgentUser struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	AgentID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Username     string    `gorm:"type:varchar(64);not null;uniqueIndex"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	IsActive     bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (AgentUser) TableName() string {
	return "agent_users"
}
