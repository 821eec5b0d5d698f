package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"support-chat/chat-api/internal/infrastructure/metrics"
)

// PasswordHasher abstracts credential hashing so the domain never
// depends on a concrete algorithm.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) bool
}

// AgentRegistration carries the inputs for provisioning a new agent
// together with their login account.
type AgentRegistration struct {
	DisplayName    string
	Username       string
	Password       string
	MaxActiveChats int
}

// AgentService is the agent-side workspace: authentication, presence,
// the conversation inbox, replying (which claims unassigned chats), and
// closing. It follows the same commit-before-publish discipline as the
// customer orchestrator.
type AgentService struct {
	tx            Transactor
	conversations ConversationRepository
	messages      MessageRepository
	agents        AgentRepository
	agentUsers    AgentUserRepository
	hasher        PasswordHasher
	realtime      Publisher
	log           zerolog.Logger
	now           func() time.Time
}

func NewAgentService(
	tx Transactor,
	conversations ConversationRepository,
	messages MessageRepository,
	agents AgentRepository,
	agentUsers AgentUserRepository,
	hasher PasswordHasher,
	realtime Publisher,
	log zerolog.Logger,
) *AgentService {
	if realtime == nil {
		realtime = NoopPublisher{}
	}
	return &AgentService{
		tx:            tx,
		conversations: conversations,
		messages:      messages,
		agents:        agents,
		agentUsers:    agentUsers,
		hasher:        hasher,
		realtime:      realtime,
		log:           log.With().Str("component", "agent-service").Logger(),
		now:           time.Now,
	}
}

// Register provisions an agent profile plus its login account. New
// agents start OFFLINE until their first websocket attach.
func (s *AgentService) Register(ctx context.Context, registration AgentRegistration) (*Agent, error) {
	displayName := strings.TrimSpace(registration.DisplayName)
	username := strings.ToLower(strings.TrimSpace(registration.Username))
	if displayName == "" || username == "" || registration.Password == "" {
		return nil, ErrEmptyContent
	}

	passwordHash, err := s.hasher.Hash(registration.Password)
	if err != nil {
		return nil, fmt.Errorf("hash agent password: %w", err)
	}

	maxChats := registration.MaxActiveChats
	if maxChats <= 0 {
		maxChats = 3
	}

	var agent *Agent
	err = s.tx.Transaction(ctx, func(txCtx context.Context) error {
		agent, err = s.agents.Create(txCtx, &Agent{
			DisplayName:    displayName,
			Presence:       PresenceOffline,
			MaxActiveChats: maxChats,
		})
		if err != nil {
			return err
		}
		_, err = s.agentUsers.Create(txCtx, &AgentUser{
			AgentID:      agent.ID,
			Username:     username,
			PasswordHash: passwordHash,
			IsActive:     true,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return agent, nil
}

// Authenticate checks an agent's credentials and returns the matching
// profile. Unknown usernames and wrong passwords are indistinguishable
// to the caller.
func (s *AgentService) Authenticate(ctx context.Context, username, password string) (*Agent, *AgentUser, error) {
	account, err := s.agentUsers.GetByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		return nil, nil, err
	}
	if account == nil || !account.IsActive {
		return nil, nil, ErrInvalidCredentials
	}
	if !s.hasher.Verify(account.PasswordHash, password) {
		return nil, nil, ErrInvalidCredentials
	}
	agent, err := s.agents.GetByID(ctx, account.AgentID)
	if err != nil {
		return nil, nil, err
	}
	if agent == nil {
		return nil, nil, ErrInvalidCredentials
	}
	return agent, account, nil
}

// GetAgent loads an agent profile by id.
func (s *AgentService) GetAgent(ctx context.Context, agentID uuid.UUID) (*Agent, error) {
	agent, err := s.agents.GetByID(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if agent == nil {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, agentID)
	}
	return agent, nil
}

// SetPresence flips an agent between ONLINE and OFFLINE and broadcasts
// the change to the presence channel and the agent's queue channel.
func (s *AgentService) SetPresence(ctx context.Context, agentID uuid.UUID, presence AgentPresence) (*Agent, error) {
	agent, err := s.GetAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if agent.Presence != presence {
		agent.Presence = presence
		if err = s.agents.UpdatePresence(ctx, agent); err != nil {
			return nil, err
		}
	}
	s.safePublish(
		[]string{AgentPresenceChannel, AgentQueueChannel(agent.ID)},
		EventAgentPresenceChanged,
		map[string]any{"agent": AgentPayload(agent)},
	)
	return agent, nil
}

// ListConversations returns the agent's inbox: chats assigned to them
// plus the unassigned AGENT-mode queue, optionally filtered by status.
func (s *AgentService) ListConversations(ctx context.Context, agentID uuid.UUID, statusFilter *ConversationStatus) ([]*Conversation, error) {
	if _, err := s.GetAgent(ctx, agentID); err != nil {
		return nil, err
	}
	return s.conversations.ListForAgentWorkspace(ctx, agentID, statusFilter)
}

// GetConversationMessages returns a conversation and its history for an
// agent. Chats assigned to a different agent are off limits.
func (s *AgentService) GetConversationMessages(ctx context.Context, conversationID, agentID uuid.UUID) (*ConversationMessages, error) {
	conversation, err := s.getAccessibleConversation(ctx, conversationID, agentID)
	if err != nil {
		return nil, err
	}
	history, err := s.messages.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return &ConversationMessages{Conversation: conversation, Messages: history}, nil
}

// SendMessage appends an agent reply. Replying to an unassigned
// AGENT-mode conversation claims it first; the claim is conditional so
// two agents racing for the same chat cannot both win.
func (s *AgentService) SendMessage(ctx context.Context, conversationID, agentID uuid.UUID, content string) (*Message, error) {
	cleaned := strings.TrimSpace(content)
	if cleaned == "" {
		return nil, ErrEmptyContent
	}

	var (
		agentMessage *Message
		conversation *Conversation
		agent        *Agent
		claimed      bool
	)

	err := s.tx.Transaction(ctx, func(txCtx context.Context) error {
		var err error
		agent, err = s.GetAgent(txCtx, agentID)
		if err != nil {
			return err
		}
		conversation, err = s.getAccessibleConversation(txCtx, conversationID, agentID)
		if err != nil {
			return err
		}
		if IsReadOnly(conversation.Status) {
			return fmt.Errorf("%w: %s", ErrConversationClosed, conversation.ID)
		}
		if conversation.Status != StatusAgent {
			return &ModeError{
				ConversationID: conversation.ID,
				Status:         conversation.Status,
				Required:       StatusAgent,
			}
		}

		if conversation.AssignedAgentID == nil {
			if err = s.conversations.AssignAgent(txCtx, conversation, agent.ID); err != nil {
				return err
			}
			claimed = true
		}

		agentMessage, err = s.messages.Create(txCtx, &Message{
			ConversationID: conversation.ID,
			SenderType:     SenderAgent,
			SenderAgentID:  &agent.ID,
			Kind:           KindText,
			Content:        cleaned,
			Metadata:       map[string]any{"show_talk_to_agent": false},
		})
		if err != nil {
			return err
		}
		return s.conversations.Touch(txCtx, conversation)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordMessageCreated(string(SenderAgent))
	if claimed {
		metrics.RecordAssignment("assigned")
	}

	s.emitMessageCreated(agentMessage)
	s.emitConversationUpdated(conversation)
	if claimed {
		s.safePublish(
			conversationChannels(conversation),
			EventAgentAssigned,
			map[string]any{
				"conversation": ConversationPayload(conversation),
				"agent":        AgentPayload(agent),
			},
		)
	}

	return agentMessage, nil
}

// Close ends a conversation. Closing an already-closed chat is a no-op;
// an unassigned conversation is claimed for the closing agent first, so
// the closed row stays attributable in their workspace. The "closed"
// system message is created only on the actual transition.
func (s *AgentService) Close(ctx context.Context, conversationID, agentID uuid.UUID) (*Conversation, error) {
	var (
		conversation  *Conversation
		systemMessage *Message
	)

	err := s.tx.Transaction(ctx, func(txCtx context.Context) error {
		agent, err := s.GetAgent(txCtx, agentID)
		if err != nil {
			return err
		}
		conversation, err = s.getAccessibleConversation(txCtx, conversationID, agentID)
		if err != nil {
			return err
		}
		if conversation.Status == StatusClosed {
			return nil
		}

		if conversation.AssignedAgentID == nil {
			if err = s.conversations.AssignAgent(txCtx, conversation, agent.ID); err != nil {
				return err
			}
		}

		next, err := Transition(conversation.Status, ActionCloseByAgent)
		if err != nil {
			return err
		}
		conversation.Status = next
		now := s.now().UTC()
		conversation.ClosedAt = &now

		agentName := DisplayAgentName(agent)
		systemMessage, err = s.messages.Create(txCtx, &Message{
			ConversationID: conversation.ID,
			SenderType:     SenderSystem,
			Kind:           KindEvent,
			Content:        agentName + " closed the chat.",
			Metadata: map[string]any{
				"closed_by_agent_id": agent.ID.String(),
				"show_talk_to_agent": false,
			},
		})
		if err != nil {
			return err
		}
		return s.conversations.Touch(txCtx, conversation)
	})
	if err != nil {
		return nil, err
	}

	if systemMessage != nil {
		metrics.RecordTransition(string(StatusAgent), string(StatusClosed))
		metrics.RecordMessageCreated(string(SenderSystem))
		s.emitMessageCreated(systemMessage)
		s.safePublish(
			conversationChannels(conversation),
			EventChatClosed,
			map[string]any{"conversation": ConversationPayload(conversation)},
		)
		s.emitConversationUpdated(conversation)
	}

	return conversation, nil
}

func (s *AgentService) getAccessibleConversation(ctx context.Context, conversationID, agentID uuid.UUID) (*Conversation, error) {
	conversation, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, fmt.Errorf("%w: %s", ErrConversationNotFound, conversationID)
	}
	if conversation.AssignedAgentID != nil && *conversation.AssignedAgentID != agentID {
		return nil, fmt.Errorf("%w: %s", ErrAgentAccessDenied, conversationID)
	}
	return conversation, nil
}

func (s *AgentService) emitMessageCreated(message *Message) {
	s.safePublish(
		[]string{ConversationChannel(message.ConversationID)},
		EventMessageCreated,
		map[string]any{
			"conversation_id": message.ConversationID.String(),
			"message":         MessagePayload(message),
		},
	)
}

func (s *AgentService) emitConversationUpdated(conversation *Conversation) {
	s.safePublish(
		conversationChannels(conversation),
		EventConversationUpdated,
		map[string]any{"conversation": ConversationPayload(conversation)},
	)
}

func (s *AgentService) safePublish(channels []string, event RealtimeEvent, payload map[string]any) {
	if err := s.realtime.Publish(channels, event, payload); err != nil {
		s.log.Warn().Err(err).Str("event", string(event)).Msg("realtime publish failed")
	}
}
