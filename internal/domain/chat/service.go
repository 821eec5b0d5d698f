package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"support-chat/chat-api/internal/infrastructure/metrics"
)

const welcomeMessage = "Hi! I am your support assistant. " +
	"Select a quick question or choose talk to agent."

const talkToAgentLabel = "Talk to an agent"

const queuedMessage = "All agents are currently busy. " +
	"You are in queue and will be connected soon."

// ConversationBootstrap is the customer-side view returned when a
// conversation is started or resumed.
type ConversationBootstrap struct {
	Conversation    *Conversation
	QuickQuestions  []*FaqEntry
	Messages        []*Message
	ShowTalkToAgent bool
}

// ConversationMessages pairs a conversation with its ordered history.
type ConversationMessages struct {
	Conversation *Conversation
	Messages     []*Message
}

// BotExchange is the outcome of a customer-side mutation: the customer
// message plus whatever reply (bot or system) the exchange produced.
type BotExchange struct {
	Conversation    *Conversation
	CustomerMessage *Message
	BotMessage      *Message
	QuickQuestions  []*FaqEntry
	ShowTalkToAgent bool
}

// ConversationService orchestrates the customer side of a support
// conversation: bootstrap, bot exchanges, and escalation to a human
// agent. Every mutation commits its transaction before any hub
// publication, and publish failures never propagate to the caller.
type ConversationService struct {
	tx            Transactor
	conversations ConversationRepository
	messages      MessageRepository
	faqs          FaqRepository
	agents        AgentRepository
	realtime      Publisher
	log           zerolog.Logger
	now           func() time.Time
}

// NewConversationService wires the orchestrator with its repositories
// and the realtime publisher.
func NewConversationService(
	tx Transactor,
	conversations ConversationRepository,
	messages MessageRepository,
	faqs FaqRepository,
	agents AgentRepository,
	realtime Publisher,
	log zerolog.Logger,
) *ConversationService {
	if realtime == nil {
		realtime = NoopPublisher{}
	}
	return &ConversationService{
		tx:            tx,
		conversations: conversations,
		messages:      messages,
		faqs:          faqs,
		agents:        agents,
		realtime:      realtime,
		log:           log.With().Str("component", "conversation-service").Logger(),
		now:           time.Now,
	}
}

// StartConversation resolves or generates a customer session key and
// returns the latest non-closed conversation for it, creating a fresh
// one (seeded with a welcome message) when none exists or forceNew is
// set.
func (s *ConversationService) StartConversation(ctx context.Context, customerSessionID string, forceNew bool) (*ConversationBootstrap, error) {
	sessionID := resolveCustomerSessionID(customerSessionID)

	var (
		bootstrap *ConversationBootstrap
		created   bool
	)
	err := s.tx.Transaction(ctx, func(txCtx context.Context) error {
		var conversation *Conversation
		var err error

		if !forceNew {
			conversation, err = s.conversations.GetLatestActiveBySession(txCtx, sessionID)
			if err != nil {
				return err
			}
		}

		if conversation == nil {
			conversation, err = s.conversations.Create(txCtx, sessionID)
			if err != nil {
				return err
			}
			if _, err = s.messages.Create(txCtx, &Message{
				ConversationID: conversation.ID,
				SenderType:     SenderBot,
				Kind:           KindEvent,
				Content:        welcomeMessage,
				Metadata:       map[string]any{"show_talk_to_agent": true},
			}); err != nil {
				return err
			}
			if err = s.conversations.Touch(txCtx, conversation); err != nil {
				return err
			}
			created = true
		}

		quickQuestions, err := s.faqs.ListActive(txCtx)
		if err != nil {
			return err
		}
		history, err := s.messages.ListByConversation(txCtx, conversation.ID)
		if err != nil {
			return err
		}

		bootstrap = &ConversationBootstrap{
			Conversation:    conversation,
			QuickQuestions:  quickQuestions,
			Messages:        history,
			ShowTalkToAgent: ShouldShowTalkToAgent(conversation.Status),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if created {
		metrics.RecordConversationStarted()
		metrics.RecordMessageCreated(string(SenderBot))
	}
	return bootstrap, nil
}

// ListQuickQuestions returns the active FAQ catalog in display order.
func (s *ConversationService) ListQuickQuestions(ctx context.Context) ([]*FaqEntry, error) {
	return s.faqs.ListActive(ctx)
}

// GetConversation loads a conversation owned by the customer session.
func (s *ConversationService) GetConversation(ctx context.Context, conversationID uuid.UUID, customerSessionID string) (*Conversation, error) {
	return s.getOwnedConversation(ctx, conversationID, customerSessionID)
}

// GetConversationMessages returns the conversation and its ordered
// history, after the session ownership check.
func (s *ConversationService) GetConversationMessages(ctx context.Context, conversationID uuid.UUID, customerSessionID string) (*ConversationMessages, error) {
	conversation, err := s.getOwnedConversation(ctx, conversationID, customerSessionID)
	if err != nil {
		return nil, err
	}
	history, err := s.messages.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return &ConversationMessages{Conversation: conversation, Messages: history}, nil
}

// SendQuickReply handles a canned FAQ selection. Only valid while the
// conversation is in AUTOMATED mode; the customer's echo and the bot's
// answer are appended as one exchange.
func (s *ConversationService) SendQuickReply(ctx context.Context, conversationID uuid.UUID, faqSlug, customerSessionID string) (*BotExchange, error) {
	var (
		exchange        *BotExchange
		customerMessage *Message
		botMessage      *Message
		conversation    *Conversation
	)

	err := s.tx.Transaction(ctx, func(txCtx context.Context) error {
		var err error
		conversation, err = s.getOwnedConversation(txCtx, conversationID, customerSessionID)
		if err != nil {
			return err
		}
		if err = assertBotMode(conversation); err != nil {
			return err
		}

		faqEntry, err := s.faqs.GetActiveBySlug(txCtx, faqSlug)
		if err != nil {
			return err
		}
		if faqEntry == nil {
			return fmt.Errorf("%w: %s", ErrFaqNotFound, faqSlug)
		}

		customerMessage, err = s.messages.Create(txCtx, &Message{
			ConversationID: conversation.ID,
			SenderType:     SenderCustomer,
			Kind:           KindQuickReply,
			Content:        faqEntry.Question,
			Metadata:       map[string]any{"faq_slug": faqEntry.Slug},
		})
		if err != nil {
			return err
		}

		botMessage, err = s.messages.Create(txCtx, &Message{
			ConversationID: conversation.ID,
			SenderType:     SenderBot,
			Kind:           KindText,
			Content:        faqEntry.Answer,
			Metadata:       map[string]any{"faq_slug": faqEntry.Slug, "show_talk_to_agent": true},
		})
		if err != nil {
			return err
		}

		if err = s.conversations.Touch(txCtx, conversation); err != nil {
			return err
		}

		quickQuestions, err := s.faqs.ListActive(txCtx)
		if err != nil {
			return err
		}
		exchange = &BotExchange{
			Conversation:    conversation,
			CustomerMessage: customerMessage,
			BotMessage:      botMessage,
			QuickQuestions:  quickQuestions,
			ShowTalkToAgent: ShouldShowTalkToAgent(conversation.Status),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordMessageCreated(string(SenderCustomer))
	metrics.RecordMessageCreated(string(SenderBot))

	s.emitMessageCreated(customerMessage)
	s.emitMessageCreated(botMessage)
	s.emitConversationUpdated(conversation)

	return exchange, nil
}

// SendCustomerMessage appends a free-text customer message. In AGENT
// mode the bot stays silent and at most performs a one-time assignment
// of a still-unassigned conversation; in AUTOMATED mode the bot answers
// with a FAQ match or a fallback offering sample questions.
func (s *ConversationService) SendCustomerMessage(ctx context.Context, conversationID uuid.UUID, content, customerSessionID string) (*BotExchange, error) {
	cleaned := strings.TrimSpace(content)
	if cleaned == "" {
		return nil, ErrEmptyContent
	}

	var (
		exchange          *BotExchange
		customerMessage   *Message
		botMessage        *Message
		conversation      *Conversation
		assignedAgent     *Agent
		assignmentChanged bool
	)

	err := s.tx.Transaction(ctx, func(txCtx context.Context) error {
		var err error
		conversation, err = s.getOwnedConversation(txCtx, conversationID, customerSessionID)
		if err != nil {
			return err
		}
		if IsReadOnly(conversation.Status) {
			return fmt.Errorf("%w: %s", ErrConversationClosed, conversation.ID)
		}

		customerMessage, err = s.messages.Create(txCtx, &Message{
			ConversationID: conversation.ID,
			SenderType:     SenderCustomer,
			Kind:           KindText,
			Content:        cleaned,
		})
		if err != nil {
			return err
		}

		if conversation.Status == StatusAgent {
			// Never reassign an already-assigned chat whose agent is
			// temporarily offline; keep the customer experience stable
			// and let them wait for a reply.
			if conversation.AssignedAgentID == nil {
				assignedAgent, err = s.pickAvailableAgent(txCtx)
				if err != nil && !errors.Is(err, ErrNoAgentAvailable) {
					return err
				}
				if assignedAgent != nil {
					if err = s.conversations.AssignAgent(txCtx, conversation, assignedAgent.ID); err != nil {
						if errors.Is(err, ErrConversationAlreadyAssigned) {
							assignedAgent = nil
						} else {
							return err
						}
					} else {
						now := s.now().UTC()
						conversation.RequestedAgentAt = &now
						assignmentChanged = true
					}
				}
			}

			if err = s.conversations.Touch(txCtx, conversation); err != nil {
				return err
			}
			exchange = &BotExchange{
				Conversation:    conversation,
				CustomerMessage: customerMessage,
				QuickQuestions:  []*FaqEntry{},
				ShowTalkToAgent: false,
			}
			return nil
		}

		faqMatch, err := s.faqs.FindByQuestionOrSlug(txCtx, cleaned)
		if err != nil {
			return err
		}
		quickQuestions, err := s.faqs.ListActive(txCtx)
		if err != nil {
			return err
		}

		var botContent string
		var botMetadata map[string]any
		if faqMatch != nil {
			botContent = faqMatch.Answer
			botMetadata = map[string]any{"faq_slug": faqMatch.Slug, "show_talk_to_agent": true}
		} else {
			botContent = fallbackBotContent(quickQuestions)
			botMetadata = map[string]any{"show_talk_to_agent": true}
		}

		botMessage, err = s.messages.Create(txCtx, &Message{
			ConversationID: conversation.ID,
			SenderType:     SenderBot,
			Kind:           KindText,
			Content:        botContent,
			Metadata:       botMetadata,
		})
		if err != nil {
			return err
		}

		if err = s.conversations.Touch(txCtx, conversation); err != nil {
			return err
		}
		exchange = &BotExchange{
			Conversation:    conversation,
			CustomerMessage: customerMessage,
			BotMessage:      botMessage,
			QuickQuestions:  quickQuestions,
			ShowTalkToAgent: ShouldShowTalkToAgent(conversation.Status),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordMessageCreated(string(SenderCustomer))
	if botMessage != nil {
		metrics.RecordMessageCreated(string(SenderBot))
	}
	if assignmentChanged && assignedAgent != nil {
		metrics.RecordAssignment("assigned")
	}

	s.emitMessageCreated(customerMessage)
	if botMessage != nil {
		s.emitMessageCreated(botMessage)
	}
	s.emitConversationUpdated(conversation)
	if assignmentChanged && assignedAgent != nil {
		s.emitAgentAssigned(conversation, assignedAgent)
	}

	return exchange, nil
}

// Escalate moves a conversation to AGENT handling. The operation is
// idempotent: the status transition happens on the first call only, the
// agent-request timestamp is set once, and the "queued" system message
// is emitted only on the status-changing call. An assignee that no
// longer exists is cleared and a fresh pick is attempted.
func (s *ConversationService) Escalate(ctx context.Context, conversationID uuid.UUID, customerSessionID string) (*BotExchange, error) {
	var (
		exchange          *BotExchange
		customerMessage   *Message
		systemMessage     *Message
		conversation      *Conversation
		assignedAgent     *Agent
		assignmentChanged bool
		statusChanged     bool
	)

	err := s.tx.Transaction(ctx, func(txCtx context.Context) error {
		var err error
		conversation, err = s.getOwnedConversation(txCtx, conversationID, customerSessionID)
		if err != nil {
			return err
		}
		if IsReadOnly(conversation.Status) {
			return fmt.Errorf("%w: %s", ErrConversationClosed, conversation.ID)
		}

		customerMessage, err = s.messages.Create(txCtx, &Message{
			ConversationID: conversation.ID,
			SenderType:     SenderCustomer,
			Kind:           KindQuickReply,
			Content:        talkToAgentLabel,
			Metadata:       map[string]any{"action": "talk_to_agent"},
		})
		if err != nil {
			return err
		}
		if conversation.Status == StatusAutomated {
			next, err := Transition(conversation.Status, ActionEscalateToAgent)
			if err != nil {
				return err
			}
			conversation.Status = next
			statusChanged = true
		}

		if conversation.RequestedAgentAt == nil {
			now := s.now().UTC()
			conversation.RequestedAgentAt = &now
		}

		if conversation.AssignedAgentID != nil {
			assignedAgent, err = s.agents.GetByID(txCtx, *conversation.AssignedAgentID)
			if err != nil {
				return err
			}
			if assignedAgent == nil {
				conversation.AssignedAgentID = nil
			}
		}

		if assignedAgent == nil && conversation.AssignedAgentID == nil {
			assignedAgent, err = s.pickAvailableAgent(txCtx)
			if err != nil && !errors.Is(err, ErrNoAgentAvailable) {
				return err
			}
			if assignedAgent != nil {
				if err = s.conversations.AssignAgent(txCtx, conversation, assignedAgent.ID); err != nil {
					if errors.Is(err, ErrConversationAlreadyAssigned) {
						assignedAgent = nil
					} else {
						return err
					}
				} else {
					assignmentChanged = true
				}
			}
		}

		if assignmentChanged && assignedAgent != nil {
			agentName := DisplayAgentName(assignedAgent)
			systemMessage, err = s.messages.Create(txCtx, &Message{
				ConversationID: conversation.ID,
				SenderType:     SenderSystem,
				Kind:           KindEvent,
				Content:        agentName + " is connected. You can continue typing your message.",
				Metadata: map[string]any{
					"assigned_agent_id":   assignedAgent.ID.String(),
					"assigned_agent_name": agentName,
					"show_talk_to_agent":  false,
				},
			})
			if err != nil {
				return err
			}
		} else if statusChanged {
			systemMessage, err = s.messages.Create(txCtx, &Message{
				ConversationID: conversation.ID,
				SenderType:     SenderSystem,
				Kind:           KindEvent,
				Content:        queuedMessage,
				Metadata: map[string]any{
					"queued_for_agent":   true,
					"show_talk_to_agent": false,
				},
			})
			if err != nil {
				return err
			}
		}

		if err = s.conversations.Touch(txCtx, conversation); err != nil {
			return err
		}

		exchange = &BotExchange{
			Conversation:    conversation,
			CustomerMessage: customerMessage,
			BotMessage:      systemMessage,
			QuickQuestions:  []*FaqEntry{},
			ShowTalkToAgent: false,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if statusChanged {
		metrics.RecordTransition(string(StatusAutomated), string(StatusAgent))
	}
	metrics.RecordMessageCreated(string(SenderCustomer))
	if systemMessage != nil {
		metrics.RecordMessageCreated(string(SenderSystem))
	}
	switch {
	case assignmentChanged && assignedAgent != nil:
		metrics.RecordAssignment("assigned")
	case statusChanged:
		metrics.RecordAssignment("queued")
	}

	s.emitMessageCreated(customerMessage)
	if systemMessage != nil {
		s.emitMessageCreated(systemMessage)
	}
	s.emitConversationUpdated(conversation)
	if assignmentChanged && assignedAgent != nil {
		s.emitAgentAssigned(conversation, assignedAgent)
	}

	return exchange, nil
}

func (s *ConversationService) getOwnedConversation(ctx context.Context, conversationID uuid.UUID, customerSessionID string) (*Conversation, error) {
	conversation, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, fmt.Errorf("%w: %s", ErrConversationNotFound, conversationID)
	}
	if conversation.CustomerSessionID != customerSessionID {
		return nil, fmt.Errorf("%w: %s", ErrConversationAccessDenied, conversationID)
	}
	return conversation, nil
}

func (s *ConversationService) pickAvailableAgent(ctx context.Context) (*Agent, error) {
	online, err := s.agents.ListOnline(ctx)
	if err != nil {
		return nil, err
	}
	return PickAgent(ctx, online, s.conversations.CountActiveAssignedTo)
}

func (s *ConversationService) emitMessageCreated(message *Message) {
	s.safePublish(
		[]string{ConversationChannel(message.ConversationID)},
		EventMessageCreated,
		map[string]any{
			"conversation_id": message.ConversationID.String(),
			"message":         MessagePayload(message),
		},
	)
}

func (s *ConversationService) emitConversationUpdated(conversation *Conversation) {
	s.safePublish(
		conversationChannels(conversation),
		EventConversationUpdated,
		map[string]any{"conversation": ConversationPayload(conversation)},
	)
}

func (s *ConversationService) emitAgentAssigned(conversation *Conversation, agent *Agent) {
	s.safePublish(
		conversationChannels(conversation),
		EventAgentAssigned,
		map[string]any{
			"conversation": ConversationPayload(conversation),
			"agent":        AgentPayload(agent),
		},
	)
}

// safePublish is the fire-and-forget seam between durable state and
// realtime delivery: a publish failure is logged and dropped so it can
// never fail or roll back a committed use case.
func (s *ConversationService) safePublish(channels []string, event RealtimeEvent, payload map[string]any) {
	if err := s.realtime.Publish(channels, event, payload); err != nil {
		s.log.Warn().Err(err).Str("event", string(event)).Msg("realtime publish failed")
	}
}

func resolveCustomerSessionID(customerSessionID string) string {
	if trimmed := strings.TrimSpace(customerSessionID); trimmed != "" {
		return trimmed
	}
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func assertBotMode(conversation *Conversation) error {
	if IsReadOnly(conversation.Status) {
		return fmt.Errorf("%w: %s", ErrConversationClosed, conversation.ID)
	}
	if conversation.Status != StatusAutomated {
		return &ModeError{
			ConversationID: conversation.ID,
			Status:         conversation.Status,
			Required:       StatusAutomated,
		}
	}
	return nil
}

func fallbackBotContent(quickQuestions []*FaqEntry) string {
	samples := make([]string, 0, 3)
	for _, entry := range quickQuestions {
		if len(samples) == 3 {
			break
		}
		samples = append(samples, entry.Question)
	}
	if len(samples) == 0 {
		return "I can help with common support questions."
	}
	return "I can help with common questions. Try one of these: " +
		strings.Join(samples, ", ") + "."
}
