package chat

import (
	"context"

	"github.com/google/uuid"
)

// Repository ports consumed by the conversation and workspace services.
// Implementations run against the ambient transaction carried in ctx;
// the service layer wraps each use case in one transaction and commits
// before any realtime publication.

type ConversationRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Conversation, error)
	GetLatestActiveBySession(ctx context.Context, customerSessionID string) (*Conversation, error)
	Create(ctx context.Context, customerSessionID string) (*Conversation, error)
	// Touch persists the conversation's mutable fields and refreshes
	// UpdatedAt.
	Touch(ctx context.Context, conversation *Conversation) error
	CountActiveAssignedTo(ctx context.Context, agentID uuid.UUID) (int, error)
	// AssignAgent claims the conversation for agentID only if it is
	// currently unassigned, as a single conditional update. Returns
	// ErrConversationAlreadyAssigned when the claim loses the race.
	AssignAgent(ctx context.Context, conversation *Conversation, agentID uuid.UUID) error
	// ListForAgentWorkspace returns the agent's visible queue:
	// conversations assigned to it plus unassigned AGENT-status ones.
	ListForAgentWorkspace(ctx context.Context, agentID uuid.UUID, statusFilter *ConversationStatus) ([]*Conversation, error)
}

type MessageRepository interface {
	Create(ctx context.Context, message *Message) (*Message, error)
	// ListByConversation returns messages ordered by (created_at, id)
	// ascending.
	ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]*Message, error)
}

type FaqRepository interface {
	ListActive(ctx context.Context) ([]*FaqEntry, error)
	GetActiveBySlug(ctx context.Context, slug string) (*FaqEntry, error)
	// FindByQuestionOrSlug matches the trimmed, lowercased content
	// against active questions and slugs.
	FindByQuestionOrSlug(ctx context.Context, content string) (*FaqEntry, error)
}

type AgentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Agent, error)
	ListOnline(ctx context.Context) ([]*Agent, error)
	Create(ctx context.Context, agent *Agent) (*Agent, error)
	// UpdatePresence persists the presence carried on the agent and
	// refreshes UpdatedAt.
	UpdatePresence(ctx context.Context, agent *Agent) error
}

type AgentUserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*AgentUser, error)
	GetByUsername(ctx context.Context, username string) (*AgentUser, error)
	Create(ctx context.Context, user *AgentUser) (*AgentUser, error)
}

// Transactor wraps a use case in one ambient transaction. The callback's
// context carries the transaction for every repository call made inside.
type Transactor interface {
	Transaction(ctx context.Context, fn func(txCtx context.Context) error) error
}
