package realtime

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"support-chat/chat-api/internal/domain/chat"
)

type fakeConn struct {
	frames  [][]byte
	sendErr error
}

func (c *fakeConn) Send(frame []byte) error {
	if c.sendErr != nil {
		return c.sendErr
	}
	c.frames = append(c.frames, frame)
	return nil
}

func newTestHub() *Hub {
	return NewHub(zerolog.Nop())
}

func TestHubPublishToSubscribers(t *testing.T) {
	hub := newTestHub()
	a := &fakeConn{}
	b := &fakeConn{}
	hub.Subscribe(a, "conversation:1")
	hub.Subscribe(b, "conversation:2")

	err := hub.Publish([]string{"conversation:1"}, chat.EventMessageCreated, map[string]any{"x": 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(a.frames) != 1 {
		t.Fatalf("subscriber a frames = %d, want 1", len(a.frames))
	}
	if len(b.frames) != 0 {
		t.Fatalf("subscriber b must not receive, got %d frames", len(b.frames))
	}

	var envelope Envelope
	if err := json.Unmarshal(a.frames[0], &envelope); err != nil {
		t.Fatalf("invalid envelope: %v", err)
	}
	if envelope.Event != "message.created" {
		t.Fatalf("event = %q", envelope.Event)
	}
	if envelope.Channel != "conversation:1" {
		t.Fatalf("channel = %q", envelope.Channel)
	}
	if envelope.SentAt.IsZero() {
		t.Fatal("sent_at must be stamped")
	}
}

func TestHubPublishPerChannelEnvelopes(t *testing.T) {
	hub := newTestHub()
	conn := &fakeConn{}
	hub.Subscribe(conn, "conversation:1")
	hub.Subscribe(conn, "agent:1:queue")

	err := hub.Publish([]string{"conversation:1", "agent:1:queue"},
		chat.EventConversationUpdated, map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// One envelope per published channel, each tagged with its channel,
	// in publish order, so clients can route by channel.
	if len(conn.frames) != 2 {
		t.Fatalf("connection on both channels must receive one frame per channel, got %d", len(conn.frames))
	}
	wantChannels := []string{"conversation:1", "agent:1:queue"}
	for i, frame := range conn.frames {
		var envelope Envelope
		if err := json.Unmarshal(frame, &envelope); err != nil {
			t.Fatalf("invalid envelope %d: %v", i, err)
		}
		if envelope.Channel != wantChannels[i] {
			t.Fatalf("frame %d channel = %q, want %q", i, envelope.Channel, wantChannels[i])
		}
	}
}

func TestHubPublishDedupesChannels(t *testing.T) {
	hub := newTestHub()
	conn := &fakeConn{}
	hub.Subscribe(conn, "conversation:1")

	err := hub.Publish([]string{"conversation:1", "conversation:1", ""},
		chat.EventMessageCreated, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(conn.frames) != 1 {
		t.Fatalf("duplicate channel must deliver once, got %d frames", len(conn.frames))
	}
}

func TestHubPrunesFailedConnections(t *testing.T) {
	hub := newTestHub()
	healthy := &fakeConn{}
	broken := &fakeConn{sendErr: errors.New("gone")}
	hub.Subscribe(healthy, "conversation:1")
	hub.Subscribe(broken, "conversation:1")

	if err := hub.Publish([]string{"conversation:1"}, chat.EventMessageCreated, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if hub.Subscribers("conversation:1") != 1 {
		t.Fatalf("broken connection must be pruned, %d subscribers left", hub.Subscribers("conversation:1"))
	}
	if len(hub.Channels(broken)) != 0 {
		t.Fatal("pruned connection must lose all subscriptions")
	}

	// The healthy connection keeps receiving.
	if err := hub.Publish([]string{"conversation:1"}, chat.EventMessageCreated, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(healthy.frames) != 2 {
		t.Fatalf("healthy connection frames = %d, want 2", len(healthy.frames))
	}
}

func TestHubPruneScopedToFailingChannel(t *testing.T) {
	hub := newTestHub()
	broken := &fakeConn{sendErr: errors.New("slow consumer")}
	hub.Subscribe(broken, "conversation:1")
	hub.Subscribe(broken, "agent:1:queue")

	if err := hub.Publish([]string{"conversation:1"}, chat.EventMessageCreated, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if hub.Subscribers("conversation:1") != 0 {
		t.Fatal("failing channel subscription must be pruned")
	}
	if hub.Subscribers("agent:1:queue") != 1 {
		t.Fatalf("other subscriptions must survive a scoped prune, agent:1:queue subscribers = %d",
			hub.Subscribers("agent:1:queue"))
	}
	if channels := hub.Channels(broken); len(channels) != 1 || channels[0] != "agent:1:queue" {
		t.Fatalf("connection channels after prune = %v, want [agent:1:queue]", channels)
	}
}

func TestHubUnsubscribeKeepsAttachment(t *testing.T) {
	hub := newTestHub()
	conn := &fakeConn{}
	hub.Subscribe(conn, "conversation:1")
	hub.Subscribe(conn, "agent:1:queue")

	hub.Unsubscribe(conn, "conversation:1")

	if hub.Subscribers("conversation:1") != 0 {
		t.Fatal("unsubscribe must remove channel membership")
	}
	if hub.Subscribers("agent:1:queue") != 1 {
		t.Fatal("other subscriptions must survive")
	}
}

func TestHubDetachRemovesEverything(t *testing.T) {
	hub := newTestHub()
	conn := &fakeConn{}
	hub.Subscribe(conn, "conversation:1")
	hub.Subscribe(conn, "agents:presence")

	hub.Detach(conn)

	if hub.Subscribers("conversation:1") != 0 || hub.Subscribers("agents:presence") != 0 {
		t.Fatal("detach must remove the connection from every channel")
	}
	if err := hub.Publish([]string{"conversation:1"}, chat.EventMessageCreated, nil); err != nil {
		t.Fatalf("publishing to empty channel: %v", err)
	}
	if len(conn.frames) != 0 {
		t.Fatal("detached connection must not receive frames")
	}
}

func TestHubPublishNoSubscribers(t *testing.T) {
	hub := newTestHub()
	if err := hub.Publish([]string{"conversation:none"}, chat.EventChatClosed, nil); err != nil {
		t.Fatalf("publish with no subscribers must be a no-op, got %v", err)
	}
}
