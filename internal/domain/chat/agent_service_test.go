package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func (f *serviceFixture) escalatedConversation(t *testing.T, sessionID string) *Conversation {
	t.Helper()
	bootstrap, err := f.service.StartConversation(context.Background(), sessionID, false)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	exchange, err := f.service.Escalate(context.Background(), bootstrap.Conversation.ID, sessionID)
	if err != nil {
		t.Fatalf("escalate failed: %v", err)
	}
	return exchange.Conversation
}

func TestRegisterAndAuthenticate(t *testing.T) {
	f := newServiceFixture()

	agent, err := f.agentService.Register(context.Background(), AgentRegistration{
		DisplayName: "Dana Reeve",
		Username:    "  Dana.Reeve ",
		Password:    "s3cret",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if agent.Presence != PresenceOffline {
		t.Fatalf("new agents start offline, got %q", agent.Presence)
	}
	if agent.MaxActiveChats != 3 {
		t.Fatalf("default max chats = %d, want 3", agent.MaxActiveChats)
	}

	authed, account, err := f.agentService.Authenticate(context.Background(), "dana.reeve", "s3cret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if authed.ID != agent.ID {
		t.Fatal("authenticate must resolve the registered agent")
	}
	if account.Username != "dana.reeve" {
		t.Fatalf("stored username = %q", account.Username)
	}

	if _, _, err := f.agentService.Authenticate(context.Background(), "dana.reeve", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := f.agentService.Authenticate(context.Background(), "nobody", "s3cret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSetPresencePublishes(t *testing.T) {
	f := newServiceFixture()
	agent := f.agents.add(&Agent{DisplayName: "Dana", Presence: PresenceOffline, MaxActiveChats: 3})
	f.publisher.events = nil

	updated, err := f.agentService.SetPresence(context.Background(), agent.ID, PresenceOnline)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Presence != PresenceOnline {
		t.Fatalf("presence = %q, want online", updated.Presence)
	}

	if len(f.publisher.events) != 1 {
		t.Fatalf("expected one presence event, got %d", len(f.publisher.events))
	}
	event := f.publisher.events[0]
	if event.event != EventAgentPresenceChanged {
		t.Fatalf("event = %q", event.event)
	}
	wantChannels := map[string]bool{
		AgentPresenceChannel:        false,
		AgentQueueChannel(agent.ID): false,
	}
	for _, channel := range event.channels {
		wantChannels[channel] = true
	}
	for channel, seen := range wantChannels {
		if !seen {
			t.Fatalf("presence event missing channel %q", channel)
		}
	}
}

func TestAgentSendMessageClaimsUnassigned(t *testing.T) {
	f := newServiceFixture()
	// Offline at escalation time, so the conversation queues unassigned
	// and the first reply performs the claim.
	agent := f.agents.add(&Agent{DisplayName: "Dana", Presence: PresenceOffline, MaxActiveChats: 3})
	conversation := f.escalatedConversation(t, "session-1")
	if conversation.AssignedAgentID != nil {
		t.Fatal("fixture expects an unassigned queued conversation")
	}
	f.publisher.events = nil

	message, err := f.agentService.SendMessage(context.Background(), conversation.ID, agent.ID, "Hello, how can I help?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if message.SenderType != SenderAgent || message.SenderAgentID == nil || *message.SenderAgentID != agent.ID {
		t.Fatalf("agent message attribution wrong: %+v", message)
	}

	stored, _ := f.conversations.GetByID(context.Background(), conversation.ID)
	if stored.AssignedAgentID == nil || *stored.AssignedAgentID != agent.ID {
		t.Fatal("first reply must claim the conversation")
	}

	// The claim itself is silent: the only agent-side artifacts are the
	// reply and the agent.assigned event.
	history, _ := f.messages.ListByConversation(context.Background(), conversation.ID)
	for _, m := range history {
		if m.SenderType == SenderSystem && strings.Contains(m.Content, "is connected") {
			t.Fatalf("claim-on-reply must not add a system message, got %q", m.Content)
		}
	}
	if show, ok := message.Metadata["show_talk_to_agent"].(bool); !ok || show {
		t.Fatalf("agent reply metadata = %v, want show_talk_to_agent=false", message.Metadata)
	}

	var sawAssigned bool
	for _, name := range f.publisher.eventNames() {
		if name == "agent.assigned" {
			sawAssigned = true
		}
	}
	if !sawAssigned {
		t.Fatal("claim must publish agent.assigned")
	}
}

func TestAgentSendMessageDeniedForOtherAgent(t *testing.T) {
	f := newServiceFixture()
	owner := f.onlineAgent("Dana", 3)
	other := f.agents.add(&Agent{DisplayName: "Sam", Presence: PresenceOnline, MaxActiveChats: 3})
	conversation := f.escalatedConversation(t, "session-1")
	if conversation.AssignedAgentID == nil || *conversation.AssignedAgentID != owner.ID {
		t.Fatal("fixture expects assignment to the online agent")
	}

	_, err := f.agentService.SendMessage(context.Background(), conversation.ID, other.ID, "let me take this")
	if !errors.Is(err, ErrAgentAccessDenied) {
		t.Fatalf("expected ErrAgentAccessDenied, got %v", err)
	}
}

func TestAgentSendMessageRequiresAgentMode(t *testing.T) {
	f := newServiceFixture()
	agent := f.agents.add(&Agent{DisplayName: "Dana", Presence: PresenceOnline, MaxActiveChats: 3})
	bootstrap, _ := f.service.StartConversation(context.Background(), "session-1", false)

	_, err := f.agentService.SendMessage(context.Background(), bootstrap.Conversation.ID, agent.ID, "hi")
	var modeErr *ModeError
	if !errors.As(err, &modeErr) {
		t.Fatalf("expected ModeError for automated conversation, got %v", err)
	}
	if modeErr.Required != StatusAgent {
		t.Fatalf("mode error requires %q, want %q", modeErr.Required, StatusAgent)
	}
}

func TestAgentSendMessageEmptyContent(t *testing.T) {
	f := newServiceFixture()
	agent := f.onlineAgent("Dana", 3)
	conversation := f.escalatedConversation(t, "session-1")

	_, err := f.agentService.SendMessage(context.Background(), conversation.ID, agent.ID, "  ")
	if !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
}

func TestCloseConversation(t *testing.T) {
	f := newServiceFixture()
	agent := f.onlineAgent("Dana", 3)
	conversation := f.escalatedConversation(t, "session-1")
	f.publisher.events = nil

	closed, err := f.agentService.Close(context.Background(), conversation.ID, agent.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if closed.Status != StatusClosed {
		t.Fatalf("status = %q, want closed", closed.Status)
	}
	if closed.ClosedAt == nil {
		t.Fatal("closed_at must be stamped")
	}

	history, _ := f.messages.ListByConversation(context.Background(), conversation.ID)
	last := history[len(history)-1]
	if last.SenderType != SenderSystem || !strings.Contains(last.Content, "Dana closed the chat.") {
		t.Fatalf("expected closing system message, got %+v", last)
	}
	if closedBy, _ := last.Metadata["closed_by_agent_id"].(string); closedBy != agent.ID.String() {
		t.Fatalf("closed_by_agent_id = %q", closedBy)
	}

	var sawClosed bool
	for _, name := range f.publisher.eventNames() {
		if name == "chat.closed" {
			sawClosed = true
		}
	}
	if !sawClosed {
		t.Fatal("close must publish chat.closed")
	}
}

func TestCloseClaimsUnassigned(t *testing.T) {
	f := newServiceFixture()
	// Offline at escalation time, so the conversation queues unassigned.
	agent := f.agents.add(&Agent{DisplayName: "Dana", Presence: PresenceOffline, MaxActiveChats: 3})
	conversation := f.escalatedConversation(t, "session-1")
	if conversation.AssignedAgentID != nil {
		t.Fatal("fixture expects an unassigned queued conversation")
	}

	closed, err := f.agentService.Close(context.Background(), conversation.ID, agent.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if closed.Status != StatusClosed {
		t.Fatalf("status = %q, want closed", closed.Status)
	}

	stored, _ := f.conversations.GetByID(context.Background(), conversation.ID)
	if stored.AssignedAgentID == nil || *stored.AssignedAgentID != agent.ID {
		t.Fatal("close must claim the unassigned conversation for the closing agent")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	f := newServiceFixture()
	agent := f.onlineAgent("Dana", 3)
	conversation := f.escalatedConversation(t, "session-1")

	if _, err := f.agentService.Close(context.Background(), conversation.ID, agent.ID); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	before, _ := f.messages.ListByConversation(context.Background(), conversation.ID)

	again, err := f.agentService.Close(context.Background(), conversation.ID, agent.ID)
	if err != nil {
		t.Fatalf("repeat close must not fail: %v", err)
	}
	if again.Status != StatusClosed {
		t.Fatalf("status = %q", again.Status)
	}

	after, _ := f.messages.ListByConversation(context.Background(), conversation.ID)
	if len(after) != len(before) {
		t.Fatal("repeat close must not add messages")
	}
}

func TestListConversationsWorkspace(t *testing.T) {
	f := newServiceFixture()
	agent := f.onlineAgent("Dana", 1)

	assigned := f.escalatedConversation(t, "session-1")
	if assigned.AssignedAgentID == nil {
		t.Fatal("expected first escalation to assign")
	}
	// Capacity is exhausted, so the second escalation queues unassigned.
	queued := f.escalatedConversation(t, "session-2")
	if queued.AssignedAgentID != nil {
		t.Fatal("expected second escalation to queue")
	}

	inbox, err := f.agentService.ListConversations(context.Background(), agent.ID, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inbox) != 2 {
		t.Fatalf("workspace should show assigned plus queued, got %d", len(inbox))
	}

	closedStatus := StatusClosed
	filtered, err := f.agentService.ListConversations(context.Background(), agent.ID, &closedStatus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(filtered) != 0 {
		t.Fatalf("no closed conversations expected, got %d", len(filtered))
	}
}
