// Package agent drives one streaming completion per session and folds the
// response into the session store.
package agent

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/askdokita/dokita/internal/debug"
	"github.com/askdokita/dokita/internal/events"
	"github.com/askdokita/dokita/internal/pubsub"
	"github.com/askdokita/dokita/internal/session"
	"github.com/askdokita/dokita/internal/stream"
	"github.com/askdokita/dokita/internal/transport"
)

// FailureNotice replaces the assistant placeholder when a request fails.
const FailureNotice = "Sorry, I encountered an error. Please try again later."

// Sentinel errors for Send.
var (
	ErrEmptyPrompt = errors.New("prompt is empty")
	ErrSessionBusy = errors.New("session already has a response streaming")
)

// Agent coordinates streaming completions. Each session has at most one
// in-flight send; each send carries a generation token so a superseded
// stream can never write into the session again.
type Agent struct {
	client      *transport.Client
	sessions    *session.Service
	broker      pubsub.Publisher[events.StreamEvent]
	mu          sync.Mutex
	active      map[string]context.CancelFunc
	generations map[string]uint64
}

// New creates an Agent folding responses into the given session service.
func New(client *transport.Client, sessions *session.Service, broker pubsub.Publisher[events.StreamEvent]) *Agent {
	return &Agent{
		client:      client,
		sessions:    sessions,
		broker:      broker,
		active:      make(map[string]context.CancelFunc),
		generations: make(map[string]uint64),
	}
}

// Send issues one completion request for the session and folds the streamed
// fragments into its trailing assistant message. It blocks until the stream
// ends and is expected to run off the UI goroutine; every fragment becomes
// an independently observable state transition, never a buffered whole.
func (a *Agent) Send(ctx context.Context, sessionID, prompt string) error {
	if prompt == "" {
		return ErrEmptyPrompt
	}

	a.mu.Lock()
	if _, busy := a.active[sessionID]; busy {
		a.mu.Unlock()
		return ErrSessionBusy
	}
	ctx, cancel := context.WithCancel(ctx)
	a.active[sessionID] = cancel
	a.generations[sessionID]++
	generation := a.generations[sessionID]
	a.mu.Unlock()

	defer func() {
		cancel()
		a.mu.Lock()
		delete(a.active, sessionID)
		a.mu.Unlock()
	}()

	if err := a.sessions.AppendUserMessage(sessionID, prompt); err != nil {
		a.publish(pubsub.EventFailed, events.NewStreamErrorEvent(sessionID, err))
		return err
	}
	if err := a.sessions.AppendPlaceholderAssistantMessage(sessionID); err != nil {
		a.publish(pubsub.EventFailed, events.NewStreamErrorEvent(sessionID, err))
		return err
	}

	a.publish(pubsub.EventStarted, events.NewStreamStartedEvent(sessionID))

	body, err := a.client.Stream(ctx, transport.Request{Message: prompt, SessionID: sessionID})
	if err != nil {
		a.fail(sessionID, generation, err)
		return err
	}
	defer body.Close()

	decoder := stream.NewDecoder(body)
	for {
		record, err := decoder.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if errors.Is(err, context.Canceled) {
				a.publish(pubsub.EventCancelled, events.NewStreamCancelledEvent(sessionID))
				return err
			}
			a.fail(sessionID, generation, err)
			return err
		}
		if record.Text == "" {
			continue
		}
		if err := a.fold(sessionID, generation, record.Text); err != nil {
			if errors.Is(err, errSuperseded) {
				return nil
			}
			// The session may be gone (deleted mid-stream); listeners
			// still need a terminal event to settle their state.
			a.fail(sessionID, generation, err)
			return err
		}
		a.publish(pubsub.EventProgress, events.NewTextDeltaEvent(sessionID, record.Text))
	}

	a.publish(pubsub.EventCompleted, events.NewStreamCompleteEvent(sessionID))
	return nil
}

// Cancel aborts the in-flight send for the session, if any.
func (a *Agent) Cancel(sessionID string) {
	a.mu.Lock()
	cancel, ok := a.active[sessionID]
	a.mu.Unlock()
	if ok {
		cancel()
	}
}

// IsBusy reports whether the session has a response streaming.
func (a *Agent) IsBusy(sessionID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, busy := a.active[sessionID]
	return busy
}

var errSuperseded = errors.New("send superseded by a newer one")

// fold appends the fragment to the accumulated content of the session's
// trailing assistant message. The accumulated content is read from the
// store's current state, not from a snapshot taken at request time, and the
// write is refused when a newer send owns the session.
func (a *Agent) fold(sessionID string, generation uint64, fragment string) error {
	if !a.isCurrent(sessionID, generation) {
		debug.Log("[agent] discarding stale fragment for session %s", sessionID)
		return errSuperseded
	}

	sess, err := a.sessions.Get(sessionID)
	if err != nil {
		return err
	}
	if len(sess.Messages) == 0 {
		return session.ErrInvalidState
	}
	content := sess.Messages[len(sess.Messages)-1].Content + fragment

	return a.sessions.UpdateLastMessageContent(sessionID, content)
}

// fail replaces the streaming placeholder with the fixed failure notice so
// no partial content stays rendered, then publishes the error.
func (a *Agent) fail(sessionID string, generation uint64, cause error) {
	debug.Error("agent", cause, "completion stream failed")

	if a.isCurrent(sessionID, generation) {
		if err := a.sessions.UpdateLastMessageContent(sessionID, FailureNotice); err != nil {
			debug.Error("agent", err, "writing failure notice")
		}
	}
	a.publish(pubsub.EventFailed, events.NewStreamErrorEvent(sessionID, cause))
}

func (a *Agent) isCurrent(sessionID string, generation uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.generations[sessionID] == generation
}

func (a *Agent) publish(eventType pubsub.EventType, event events.StreamEvent) {
	if a.broker != nil {
		a.broker.Publish(eventType, event)
	}
}
