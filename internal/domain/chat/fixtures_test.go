package chat

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// In-memory fakes for the repository ports. Tests run single-threaded
// against them; the slice and map snapshots keep ordering stable.

type memConversations struct {
	rows map[uuid.UUID]*Conversation
	seq  int
}

func newMemConversations() *memConversations {
	return &memConversations{rows: make(map[uuid.UUID]*Conversation)}
}

func (m *memConversations) GetByID(_ context.Context, id uuid.UUID) (*Conversation, error) {
	row, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	clone := *row
	return &clone, nil
}

func (m *memConversations) GetLatestActiveBySession(_ context.Context, sessionID string) (*Conversation, error) {
	var latest *Conversation
	for _, row := range m.rows {
		if row.CustomerSessionID != sessionID || row.Status == StatusClosed {
			continue
		}
		if latest == nil || row.CreatedAt.After(latest.CreatedAt) {
			latest = row
		}
	}
	if latest == nil {
		return nil, nil
	}
	clone := *latest
	return &clone, nil
}

func (m *memConversations) Create(_ context.Context, sessionID string) (*Conversation, error) {
	m.seq++
	now := time.Now().UTC().Add(time.Duration(m.seq) * time.Millisecond)
	row := &Conversation{
		ID:                uuid.New(),
		CustomerSessionID: sessionID,
		Status:            StatusAutomated,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	m.rows[row.ID] = row
	clone := *row
	return &clone, nil
}

func (m *memConversations) Touch(_ context.Context, conversation *Conversation) error {
	row, ok := m.rows[conversation.ID]
	if !ok {
		return fmt.Errorf("touch: conversation %s missing", conversation.ID)
	}
	row.Status = conversation.Status
	row.AssignedAgentID = conversation.AssignedAgentID
	row.RequestedAgentAt = conversation.RequestedAgentAt
	row.ClosedAt = conversation.ClosedAt
	row.UpdatedAt = time.Now().UTC()
	conversation.UpdatedAt = row.UpdatedAt
	return nil
}

func (m *memConversations) CountActiveAssignedTo(_ context.Context, agentID uuid.UUID) (int, error) {
	count := 0
	for _, row := range m.rows {
		if row.Status == StatusAgent && row.AssignedAgentID != nil && *row.AssignedAgentID == agentID {
			count++
		}
	}
	return count, nil
}

func (m *memConversations) AssignAgent(_ context.Context, conversation *Conversation, agentID uuid.UUID) error {
	row, ok := m.rows[conversation.ID]
	if !ok {
		return fmt.Errorf("assign: conversation %s missing", conversation.ID)
	}
	if row.AssignedAgentID != nil {
		return fmt.Errorf("%w: %s", ErrConversationAlreadyAssigned, conversation.ID)
	}
	assigned := agentID
	row.AssignedAgentID = &assigned
	conversation.AssignedAgentID = &assigned
	return nil
}

func (m *memConversations) ListForAgentWorkspace(_ context.Context, agentID uuid.UUID, statusFilter *ConversationStatus) ([]*Conversation, error) {
	var out []*Conversation
	for _, row := range m.rows {
		visible := (row.AssignedAgentID != nil && *row.AssignedAgentID == agentID) ||
			(row.AssignedAgentID == nil && row.Status == StatusAgent)
		if !visible {
			continue
		}
		if statusFilter != nil && row.Status != *statusFilter {
			continue
		}
		clone := *row
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

type memMessages struct {
	rows []*Message
	seq  int
}

func (m *memMessages) Create(_ context.Context, message *Message) (*Message, error) {
	m.seq++
	clone := *message
	clone.ID = uuid.New()
	clone.CreatedAt = time.Now().UTC().Add(time.Duration(m.seq) * time.Millisecond)
	m.rows = append(m.rows, &clone)
	out := clone
	return &out, nil
}

func (m *memMessages) ListByConversation(_ context.Context, conversationID uuid.UUID) ([]*Message, error) {
	var out []*Message
	for _, row := range m.rows {
		if row.ConversationID == conversationID {
			clone := *row
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *memMessages) lastForConversation(conversationID uuid.UUID) *Message {
	for i := len(m.rows) - 1; i >= 0; i-- {
		if m.rows[i].ConversationID == conversationID {
			return m.rows[i]
		}
	}
	return nil
}

type memFaqs struct {
	entries []*FaqEntry
}

func newMemFaqs() *memFaqs {
	return &memFaqs{entries: []*FaqEntry{
		{ID: uuid.New(), Slug: "delivery-date", Question: "What is the delivery date?", Answer: "Most orders arrive in 3-5 business days.", DisplayOrder: 1, IsActive: true},
		{ID: uuid.New(), Slug: "return-policy", Question: "What is the return policy?", Answer: "Returns are accepted within 30 days.", DisplayOrder: 2, IsActive: true},
		{ID: uuid.New(), Slug: "retired", Question: "Old question?", Answer: "Old answer.", DisplayOrder: 3, IsActive: false},
	}}
}

func (m *memFaqs) ListActive(context.Context) ([]*FaqEntry, error) {
	var out []*FaqEntry
	for _, entry := range m.entries {
		if entry.IsActive {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (m *memFaqs) GetActiveBySlug(_ context.Context, slug string) (*FaqEntry, error) {
	for _, entry := range m.entries {
		if entry.IsActive && entry.Slug == slug {
			return entry, nil
		}
	}
	return nil, nil
}

func (m *memFaqs) FindByQuestionOrSlug(_ context.Context, content string) (*FaqEntry, error) {
	needle := strings.ToLower(strings.TrimSpace(content))
	for _, entry := range m.entries {
		if !entry.IsActive {
			continue
		}
		if strings.ToLower(entry.Question) == needle || entry.Slug == needle {
			return entry, nil
		}
	}
	return nil, nil
}

type memAgents struct {
	rows map[uuid.UUID]*Agent
	seq  int
}

func newMemAgents() *memAgents {
	return &memAgents{rows: make(map[uuid.UUID]*Agent)}
}

func (m *memAgents) add(agent *Agent) *Agent {
	m.seq++
	if agent.ID == uuid.Nil {
		agent.ID = uuid.New()
	}
	agent.CreatedAt = time.Now().UTC().Add(time.Duration(m.seq) * time.Millisecond)
	m.rows[agent.ID] = agent
	return agent
}

func (m *memAgents) GetByID(_ context.Context, id uuid.UUID) (*Agent, error) {
	row, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	clone := *row
	return &clone, nil
}

func (m *memAgents) ListOnline(context.Context) ([]*Agent, error) {
	var out []*Agent
	for _, row := range m.rows {
		if row.Presence == PresenceOnline {
			clone := *row
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memAgents) Create(_ context.Context, agent *Agent) (*Agent, error) {
	clone := *agent
	stored := m.add(&clone)
	out := *stored
	return &out, nil
}

func (m *memAgents) UpdatePresence(_ context.Context, agent *Agent) error {
	row, ok := m.rows[agent.ID]
	if !ok {
		return fmt.Errorf("presence: agent %s missing", agent.ID)
	}
	row.Presence = agent.Presence
	row.UpdatedAt = time.Now().UTC()
	return nil
}

type memAgentUsers struct {
	rows map[uuid.UUID]*AgentUser
}

func newMemAgentUsers() *memAgentUsers {
	return &memAgentUsers{rows: make(map[uuid.UUID]*AgentUser)}
}

func (m *memAgentUsers) GetByID(_ context.Context, id uuid.UUID) (*AgentUser, error) {
	row, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	clone := *row
	return &clone, nil
}

func (m *memAgentUsers) GetByUsername(_ context.Context, username string) (*AgentUser, error) {
	for _, row := range m.rows {
		if row.Username == username {
			clone := *row
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *memAgentUsers) Create(_ context.Context, user *AgentUser) (*AgentUser, error) {
	clone := *user
	if clone.ID == uuid.Nil {
		clone.ID = uuid.New()
	}
	m.rows[clone.ID] = &clone
	out := clone
	return &out, nil
}

// passTransactor runs the callback directly; commit ordering is covered
// by the recording publisher's event sequence.
type passTransactor struct{}

func (passTransactor) Transaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type publishedEvent struct {
	channels []string
	event    RealtimeEvent
	payload  map[string]any
}

type recordingPublisher struct {
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(channels []string, event RealtimeEvent, payload map[string]any) error {
	p.events = append(p.events, publishedEvent{channels: channels, event: event, payload: payload})
	return p.err
}

func (p *recordingPublisher) eventNames() []string {
	out := make([]string, 0, len(p.events))
	for _, event := range p.events {
		out = append(out, string(event.event))
	}
	return out
}

type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }
func (plainHasher) Verify(hash, plain string) bool    { return hash == "hashed:"+plain }

type serviceFixture struct {
	conversations *memConversations
	messages      *memMessages
	faqs          *memFaqs
	agents        *memAgents
	agentUsers    *memAgentUsers
	publisher     *recordingPublisher
	service       *ConversationService
	agentService  *AgentService
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		conversations: newMemConversations(),
		messages:      &memMessages{},
		faqs:          newMemFaqs(),
		agents:        newMemAgents(),
		agentUsers:    newMemAgentUsers(),
		publisher:     &recordingPublisher{},
	}
	log := zerolog.Nop()
	f.service = NewConversationService(
		passTransactor{}, f.conversations, f.messages, f.faqs, f.agents, f.publisher, log,
	)
	f.agentService = NewAgentService(
		passTransactor{}, f.conversations, f.messages, f.agents, f.agentUsers,
		plainHasher{}, f.publisher, log,
	)
	return f
}

func (f *serviceFixture) onlineAgent(name string, maxChats int) *Agent {
	return f.agents.add(&Agent{
		DisplayName:    name,
		Presence:       PresenceOnline,
		MaxActiveChats: maxChats,
	})
}
