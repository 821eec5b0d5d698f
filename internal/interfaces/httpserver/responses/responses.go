// Package responses contains HTTP response DTOs and the error mapping
// for the chat API.
package responses

import (
	"time"

	"support-chat/chat-api/internal/domain/chat"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error *ErrorDetail `json:"error"`
}

// ErrorDetail contains error details.
type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Conversation is the wire form of a conversation.
type Conversation struct {
	ID                string     `json:"id"`
	CustomerSessionID string     `json:"customer_session_id"`
	Status            string     `json:"status"`
	AssignedAgentID   *string    `json:"assigned_agent_id"`
	RequestedAgentAt  *time.Time `json:"requested_agent_at"`
	ClosedAt          *time.Time `json:"closed_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Message is the wire form of a conversation message.
type Message struct {
	ID             string         `json:"id"`
	ConversationID string         `json:"conversation_id"`
	SenderType     string         `json:"sender_type"`
	SenderAgentID  *string        `json:"sender_agent_id"`
	Kind           string         `json:"kind"`
	Content        string         `json:"content"`
	Metadata       map[string]any `json:"metadata"`
	CreatedAt      time.Time      `json:"created_at"`
}

// QuickQuestion is one canned FAQ offered to customers.
type QuickQuestion struct {
	Slug     string `json:"slug"`
	Question string `json:"question"`
}

// Agent is the wire form of an agent profile.
type Agent struct {
	ID             string `json:"id"`
	DisplayName    string `json:"display_name"`
	Presence       string `json:"presence"`
	MaxActiveChats int    `json:"max_active_chats"`
}

// ConversationBootstrap is the payload for start/resume.
type ConversationBootstrap struct {
	Conversation    Conversation    `json:"conversation"`
	Messages        []Message       `json:"messages"`
	QuickQuestions  []QuickQuestion `json:"quick_questions"`
	ShowTalkToAgent bool            `json:"show_talk_to_agent"`
}

// BotExchange is the payload for customer-side mutations.
type BotExchange struct {
	Conversation    Conversation    `json:"conversation"`
	CustomerMessage Message         `json:"customer_message"`
	BotMessage      *Message        `json:"bot_message"`
	QuickQuestions  []QuickQuestion `json:"quick_questions"`
	ShowTalkToAgent bool            `json:"show_talk_to_agent"`
}

// ConversationMessages pairs a conversation with its history.
type ConversationMessages struct {
	Conversation Conversation `json:"conversation"`
	Messages     []Message    `json:"messages"`
}

// Login is the payload for a successful agent login.
type Login struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Agent       Agent     `json:"agent"`
}

func FromConversation(conversation *chat.Conversation) Conversation {
	out := Conversation{
		ID:                conversation.ID.String(),
		CustomerSessionID: conversation.CustomerSessionID,
		Status:            string(conversation.Status),
		RequestedAgentAt:  conversation.RequestedAgentAt,
		ClosedAt:          conversation.ClosedAt,
		CreatedAt:         conversation.CreatedAt,
		UpdatedAt:         conversation.UpdatedAt,
	}
	if conversation.AssignedAgentID != nil {
		assigned := conversation.AssignedAgentID.String()
		out.AssignedAgentID = &assigned
	}
	return out
}

func FromMessage(message *chat.Message) Message {
	out := Message{
		ID:             message.ID.String(),
		ConversationID: message.ConversationID.String(),
		SenderType:     string(message.SenderType),
		Kind:           string(message.Kind),
		Content:        message.Content,
		Metadata:       message.Metadata,
		CreatedAt:      message.CreatedAt,
	}
	if message.SenderAgentID != nil {
		sender := message.SenderAgentID.String()
		out.SenderAgentID = &sender
	}
	return out
}

func FromMessages(messages []*chat.Message) []Message {
	out := make([]Message, 0, len(messages))
	for _, message := range messages {
		out = append(out, FromMessage(message))
	}
	return out
}

func FromQuickQuestions(entries []*chat.FaqEntry) []QuickQuestion {
	out := make([]QuickQuestion, 0, len(entries))
	for _, entry := range entries {
		out = append(out, QuickQuestion{Slug: entry.Slug, Question: entry.Question})
	}
	return out
}

func FromAgent(agent *chat.Agent) Agent {
	return Agent{
		ID:             agent.ID.String(),
		DisplayName:    agent.DisplayName,
		Presence:       string(agent.Presence),
		MaxActiveChats: agent.MaxActiveChats,
	}
}

func FromBootstrap(bootstrap *chat.ConversationBootstrap) ConversationBootstrap {
	return ConversationBootstrap{
		Conversation:    FromConversation(bootstrap.Conversation),
		Messages:        FromMessages(bootstrap.Messages),
		QuickQuestions:  FromQuickQuestions(bootstrap.QuickQuestions),
		ShowTalkToAgent: bootstrap.ShowTalkToAgent,
	}
}

func FromExchange(exchange *chat.BotExchange) BotExchange {
	out := BotExchange{
		Conversation:    FromConversation(exchange.Conversation),
		CustomerMessage: FromMessage(exchange.CustomerMessage),
		QuickQuestions:  FromQuickQuestions(exchange.QuickQuestions),
		ShowTalkToAgent: exchange.ShowTalkToAgent,
	}
	if exchange.BotMessage != nil {
		bot := FromMessage(exchange.BotMessage)
		out.BotMessage = &bot
	}
	return out
}
