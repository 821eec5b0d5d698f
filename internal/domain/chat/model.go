package chat

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Conversation is one customer support thread. Its status is governed by
// the lifecycle machine in lifecycle.go; AssignedAgentID is a weak
// reference that is only ever set through escalation or an agent claim.
type Conversation struct {
	ID                uuid.UUID
	CustomerSessionID string
	Status            ConversationStatus
	AssignedAgentID   *uuid.UUID
	RequestedAgentAt  *time.Time
	ClosedAt          *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Message is immutable once created. Ordering within a conversation is
// (CreatedAt, ID) ascending; the ID tie-break keeps the order total when
// timestamps collide.
type Message struct {
	ID             uuid.UUID
	ConversationID uuid.UUID
	SenderType     SenderType
	SenderAgentID  *uuid.UUID
	Kind           MessageKind
	Content        string
	Metadata       map[string]any
	CreatedAt      time.Time
}

// Agent is a human operator in the workspace.
type Agent struct {
	ID             uuid.UUID
	DisplayName    string
	Presence       AgentPresence
	MaxActiveChats int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AgentUser is a credential account bound to an agent.
type AgentUser struct {
	ID           uuid.UUID
	AgentID      uuid.UUID
	Username     string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FaqEntry is a canned question/answer pair used for bot matching.
// Read-only to this service.
type FaqEntry struct {
	ID           uuid.UUID
	Slug         string
	Question     string
	Answer       string
	DisplayOrder int
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DisplayAgentName returns a presentable name for system messages.
func DisplayAgentName(agent *Agent) string {
	if agent == nil {
		return "Support agent"
	}
	if name := strings.TrimSpace(agent.DisplayName); name != "" {
		return name
	}
	return "Support agent"
}
