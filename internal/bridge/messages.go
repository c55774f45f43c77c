// Package bridge provides the connection between the pub/sub system and
// Bubble Tea.
package bridge

import (
	"github.com/askdokita/dokita/internal/events"
	"github.com/askdokita/dokita/internal/pubsub"
)

// StreamEventMsg wraps a streaming response event for the TUI.
type StreamEventMsg struct {
	Event pubsub.Event[events.StreamEvent]
}

// SessionEventMsg wraps a session event for the TUI.
type SessionEventMsg struct {
	Event pubsub.Event[events.SessionEvent]
}
