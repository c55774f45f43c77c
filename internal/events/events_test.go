package events

import (
	"errors"
	"testing"
)

func TestSessionEventConstructors(t *testing.T) {
	t.Run("created event carries id and title", func(t *testing.T) {
		event := NewSessionCreatedEvent("s1", "New Chat")
		if event.Type != SessionEventCreated {
			t.Errorf("expected type %q, got %q", SessionEventCreated, event.Type)
		}
		if event.SessionID != "s1" || event.Title != "New Chat" {
			t.Errorf("unexpected event: %+v", event)
		}
		if event.Timestamp.IsZero() {
			t.Error("timestamp not set")
		}
	})

	t.Run("message added event carries role and text", func(t *testing.T) {
		event := NewSessionMessageAddedEvent("s1", "user", "hello")
		if event.Type != SessionEventMessageAdded {
			t.Errorf("expected type %q, got %q", SessionEventMessageAdded, event.Type)
		}
		if event.MessageRole != "user" || event.MessageText != "hello" {
			t.Errorf("unexpected event: %+v", event)
		}
	})
}

func TestStreamEventConstructors(t *testing.T) {
	t.Run("text delta event carries fragment", func(t *testing.T) {
		event := NewTextDeltaEvent("s1", "Hel")
		if event.Type != StreamEventTextDelta {
			t.Errorf("expected type %q, got %q", StreamEventTextDelta, event.Type)
		}
		if event.TextDelta != "Hel" {
			t.Errorf("expected delta %q, got %q", "Hel", event.TextDelta)
		}
	})

	t.Run("error event carries cause", func(t *testing.T) {
		cause := errors.New("boom")
		event := NewStreamErrorEvent("s1", cause)
		if event.Type != StreamEventError {
			t.Errorf("expected type %q, got %q", StreamEventError, event.Type)
		}
		if !errors.Is(event.Error, cause) {
			t.Errorf("expected cause %v, got %v", cause, event.Error)
		}
	})
}
