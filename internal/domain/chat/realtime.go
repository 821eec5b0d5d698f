package chat

import (
	"fmt"

	"github.com/google/uuid"
)

// RealtimeEvent names an event fanned out to live connections.
type RealtimeEvent string

const (
	EventMessageCreated       RealtimeEvent = "message.created"
	EventConversationUpdated  RealtimeEvent = "conversation.updated"
	EventAgentAssigned        RealtimeEvent = "agent.assigned"
	EventChatClosed           RealtimeEvent = "chat.closed"
	EventAgentPresenceChanged RealtimeEvent = "agent.presence.changed"
)

// AgentPresenceChannel carries presence changes for all agents.
const AgentPresenceChannel = "agents:presence"

// ConversationChannel is the per-conversation fanout channel.
func ConversationChannel(conversationID uuid.UUID) string {
	return fmt.Sprintf("conversation:%s", conversationID)
}

// AgentQueueChannel is the per-agent workspace channel.
func AgentQueueChannel(agentID uuid.UUID) string {
	return fmt.Sprintf("agent:%s:queue", agentID)
}

// Publisher delivers an event to the current subscribers of the given
// channels. Delivery is best-effort and at-most-once; implementations
// must never block on a slow consumer while holding shared state.
type Publisher interface {
	Publish(channels []string, event RealtimeEvent, payload map[string]any) error
}

// NoopPublisher discards all events. Used when no hub is wired, e.g. in
// unit tests.
type NoopPublisher struct{}

func (NoopPublisher) Publish([]string, RealtimeEvent, map[string]any) error { return nil }
