package events

import "time"

// StreamEventType represents streaming response event types.
type StreamEventType string

// Stream event type constants.
const (
	StreamEventStarted   StreamEventType = "started"
	StreamEventTextDelta StreamEventType = "text_delta"
	StreamEventComplete  StreamEventType = "complete"
	StreamEventError     StreamEventType = "error"
	StreamEventCancelled StreamEventType = "cancelled"
)

// StreamEvent represents progress of one streaming response.
type StreamEvent struct {
	SessionID string
	Type      StreamEventType
	TextDelta string
	Error     error
	Timestamp time.Time
}

// NewStreamStartedEvent creates a stream started event.
func NewStreamStartedEvent(sessionID string) StreamEvent {
	return StreamEvent{
		SessionID: sessionID,
		Type:      StreamEventStarted,
		Timestamp: time.Now(),
	}
}

// NewTextDeltaEvent creates a text delta event.
func NewTextDeltaEvent(sessionID, delta string) StreamEvent {
	return StreamEvent{
		SessionID: sessionID,
		Type:      StreamEventTextDelta,
		TextDelta: delta,
		Timestamp: time.Now(),
	}
}

// NewStreamCompleteEvent creates a stream complete event.
func NewStreamCompleteEvent(sessionID string) StreamEvent {
	return StreamEvent{
		SessionID: sessionID,
		Type:      StreamEventComplete,
		Timestamp: time.Now(),
	}
}

// NewStreamErrorEvent creates a stream error event.
func NewStreamErrorEvent(sessionID string, err error) StreamEvent {
	return StreamEvent{
		SessionID: sessionID,
		Type:      StreamEventError,
		Error:     err,
		Timestamp: time.Now(),
	}
}

// NewStreamCancelledEvent creates a stream cancelled event.
func NewStreamCancelledEvent(sessionID string) StreamEvent {
	return StreamEvent{
		SessionID: sessionID,
		Type:      StreamEventCancelled,
		Timestamp: time.Now(),
	}
}
