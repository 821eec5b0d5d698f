package chat

// ConversationStatus is the lifecycle state of a support conversation.
type ConversationStatus string

const (
	StatusAutomated ConversationStatus = "automated"
	StatusAgent     ConversationStatus = "agent"
	StatusClosed    ConversationStatus = "closed"
)

// SenderType identifies who authored a message.
type SenderType string

const (
	SenderCustomer SenderType = "customer"
	SenderBot      SenderType = "bot"
	SenderAgent    SenderType = "agent"
	SenderSystem   SenderType = "system"
)

// MessageKind distinguishes free text, quick-reply selections and
// lifecycle event markers.
type MessageKind string

const (
	KindText       MessageKind = "text"
	KindQuickReply MessageKind = "quick_reply"
	KindEvent      MessageKind = "event"
)

// AgentPresence reflects whether an agent is accepting chats.
type AgentPresence string

const (
	PresenceOnline  AgentPresence = "online"
	PresenceOffline AgentPresence = "offline"
)

// TransitionAction is an input to the conversation lifecycle machine.
type TransitionAction string

const (
	ActionEscalateToAgent TransitionAction = "escalate_to_agent"
	ActionCloseByAgent    TransitionAction = "close_by_agent"
)
