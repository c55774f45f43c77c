package bridge

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/askdokita/dokita/internal/events"
	"github.com/askdokita/dokita/internal/pubsub"
)

type recordingSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (s *recordingSender) Send(msg tea.Msg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
}

func (s *recordingSender) messages() []tea.Msg {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]tea.Msg(nil), s.msgs...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestTUIBridge(t *testing.T) {
	t.Run("forwards stream events as messages", func(t *testing.T) {
		hub := pubsub.NewHub()
		defer hub.Shutdown()

		sender := &recordingSender{}
		b := NewTUIBridge(hub, sender)
		b.Start(context.Background())
		defer b.Stop()

		hub.Stream.Publish(pubsub.EventProgress, events.NewTextDeltaEvent("s1", "Hel"))

		waitFor(t, func() bool { return len(sender.messages()) == 1 })

		msg, ok := sender.messages()[0].(StreamEventMsg)
		if !ok {
			t.Fatalf("expected StreamEventMsg, got %T", sender.messages()[0])
		}
		if msg.Event.Payload.SessionID != "s1" || msg.Event.Payload.TextDelta != "Hel" {
			t.Errorf("unexpected payload: %+v", msg.Event.Payload)
		}
	})

	t.Run("forwards session events as messages", func(t *testing.T) {
		hub := pubsub.NewHub()
		defer hub.Shutdown()

		sender := &recordingSender{}
		b := NewTUIBridge(hub, sender)
		b.Start(context.Background())
		defer b.Stop()

		hub.Session.Publish(pubsub.EventCreated, events.NewSessionCreatedEvent("s1", "New Chat"))

		waitFor(t, func() bool { return len(sender.messages()) == 1 })

		msg, ok := sender.messages()[0].(SessionEventMsg)
		if !ok {
			t.Fatalf("expected SessionEventMsg, got %T", sender.messages()[0])
		}
		if msg.Event.Payload.SessionID != "s1" {
			t.Errorf("unexpected payload: %+v", msg.Event.Payload)
		}
	})

	t.Run("stop ends forwarding", func(t *testing.T) {
		hub := pubsub.NewHub()
		defer hub.Shutdown()

		sender := &recordingSender{}
		b := NewTUIBridge(hub, sender)
		b.Start(context.Background())
		b.Stop()

		hub.Stream.Publish(pubsub.EventProgress, events.NewTextDeltaEvent("s1", "late"))
		time.Sleep(50 * time.Millisecond)

		if len(sender.messages()) != 0 {
			t.Errorf("expected no messages after stop, got %d", len(sender.messages()))
		}
	})
}
