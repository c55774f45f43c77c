package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/askdokita/dokita/internal/debug"
	"github.com/askdokita/dokita/internal/events"
	"github.com/askdokita/dokita/internal/pubsub"
)

// Sentinel errors for store operations.
var (
	ErrNotFound     = errors.New("session not found")
	ErrInvalidState = errors.New("last message is not an assistant message")
)

// Service is the authoritative in-memory model of all conversation sessions.
// Every mutation writes the whole collection through to the Adapter before
// returning; adapter failures are logged and the in-memory state stays
// authoritative. The collection is ordered newest-created-first and is never
// empty, and the active pointer always references a present session.
type Service struct {
	adapter  Adapter
	broker   pubsub.Publisher[events.SessionEvent]
	sessions []*Session
	active   string
	mu       sync.RWMutex
}

// NewService seeds the store from the adapter. An empty or unreadable
// persisted collection yields a single fresh session.
func NewService(adapter Adapter, broker pubsub.Publisher[events.SessionEvent]) *Service {
	s := &Service{
		adapter: adapter,
		broker:  broker,
	}

	loaded, err := adapter.Load()
	if err != nil {
		debug.Error("session", err, "loading persisted sessions")
	}
	for _, sess := range loaded {
		if sess != nil && sess.ID != "" {
			s.sessions = append(s.sessions, sess)
		}
	}

	if len(s.sessions) == 0 {
		s.create()
		s.persist()
	} else {
		s.active = s.sessions[0].ID
	}

	return s
}

// CreateSession inserts a fresh empty session, makes it active, and returns
// its id.
func (s *Service) CreateSession() string {
	s.mu.Lock()
	sess := s.create()
	s.persist()
	s.mu.Unlock()

	s.publish(pubsub.EventCreated, events.NewSessionCreatedEvent(sess.ID, sess.Title))
	return sess.ID
}

// create builds a new session and makes it active. Caller holds the lock.
func (s *Service) create() *Session {
	sess := &Session{
		ID:        uuid.New().String(),
		Title:     DefaultTitle,
		Messages:  []Message{},
		CreatedAt: time.Now(),
	}
	s.sessions = append([]*Session{sess}, s.sessions...)
	s.active = sess.ID
	return sess
}

// SelectSession makes the given session active.
func (s *Service) SelectSession(id string) error {
	s.mu.Lock()
	sess := s.find(id)
	if sess == nil {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.active = id
	title := sess.Title
	s.mu.Unlock()

	s.publish(pubsub.EventUpdated, events.NewSessionSwitchedEvent(id, title))
	return nil
}

// DeleteSession removes the given session. Deleting the active session
// reselects the first remaining session, or creates a fresh one when none
// remain. Unknown ids are a no-op.
func (s *Service) DeleteSession(id string) {
	s.mu.Lock()
	idx := -1
	for i, sess := range s.sessions {
		if sess.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return
	}

	s.sessions = append(s.sessions[:idx], s.sessions[idx+1:]...)

	var created *Session
	if s.active == id {
		if len(s.sessions) > 0 {
			s.active = s.sessions[0].ID
		} else {
			created = s.create()
		}
	}
	s.persist()
	s.mu.Unlock()

	s.publish(pubsub.EventDeleted, events.NewSessionDeletedEvent(id))
	if created != nil {
		s.publish(pubsub.EventCreated, events.NewSessionCreatedEvent(created.ID, created.Title))
	}
}

// AppendUserMessage appends a user turn to the given session. The first user
// message of a session also fixes its title, exactly once.
func (s *Service) AppendUserMessage(id, content string) error {
	s.mu.Lock()
	sess := s.find(id)
	if sess == nil {
		s.mu.Unlock()
		return ErrNotFound
	}

	if len(sess.Messages) == 0 && sess.Title == DefaultTitle {
		sess.Title = DeriveTitle(content)
	}
	sess.Messages = append(sess.Messages, Message{
		Role:      RoleUser,
		Content:   content,
		CreatedAt: time.Now(),
	})
	s.persist()
	s.mu.Unlock()

	s.publish(pubsub.EventProgress, events.NewSessionMessageAddedEvent(id, string(RoleUser), content))
	return nil
}

// AppendPlaceholderAssistantMessage appends the empty assistant message that
// a streaming response is folded into.
func (s *Service) AppendPlaceholderAssistantMessage(id string) error {
	s.mu.Lock()
	sess := s.find(id)
	if sess == nil {
		s.mu.Unlock()
		return ErrNotFound
	}

	sess.Messages = append(sess.Messages, Message{
		Role:      RoleAssistant,
		Content:   "",
		CreatedAt: time.Now(),
	})
	s.persist()
	s.mu.Unlock()

	s.publish(pubsub.EventProgress, events.NewSessionMessageAddedEvent(id, string(RoleAssistant), ""))
	return nil
}

// UpdateLastMessageContent replaces the content of the session's last
// message. The last message must be an assistant message; anything else is a
// violation of the streaming protocol and returns ErrInvalidState.
func (s *Service) UpdateLastMessageContent(id, content string) error {
	s.mu.Lock()
	sess := s.find(id)
	if sess == nil {
		s.mu.Unlock()
		return ErrNotFound
	}
	if len(sess.Messages) == 0 || sess.Messages[len(sess.Messages)-1].Role != RoleAssistant {
		s.mu.Unlock()
		return ErrInvalidState
	}

	sess.Messages[len(sess.Messages)-1].Content = content
	s.persist()
	s.mu.Unlock()
	return nil
}

// Sessions returns a snapshot of the collection, newest-created-first.
func (s *Service) Sessions() []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Session, len(s.sessions))
	for i, sess := range s.sessions {
		out[i] = sess.clone()
	}
	return out
}

// Get returns a snapshot of one session.
func (s *Service) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess := s.find(id)
	if sess == nil {
		return nil, ErrNotFound
	}
	return sess.clone(), nil
}

// ActiveID returns the id of the active session.
func (s *Service) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Active returns a snapshot of the active session.
func (s *Service) Active() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sess := s.find(s.active); sess != nil {
		return sess.clone()
	}
	return nil
}

// Count returns the number of sessions.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// find locates a session by id. Caller holds the lock.
func (s *Service) find(id string) *Session {
	for _, sess := range s.sessions {
		if sess.ID == id {
			return sess
		}
	}
	return nil
}

// persist writes the collection through the adapter. Failures keep the
// in-memory state authoritative and are only logged. Caller holds the lock.
func (s *Service) persist() {
	if err := s.adapter.Save(s.sessions); err != nil {
		debug.Error("session", err, "persisting sessions")
	}
}

func (s *Service) publish(eventType pubsub.EventType, event events.SessionEvent) {
	if s.broker != nil {
		s.broker.Publish(eventType, event)
	}
}
