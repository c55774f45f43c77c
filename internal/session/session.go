// Package session provides the conversation session model, its store, and
// persistence.
package session

import (
	"time"

	"github.com/rivo/uniseg"
)

// Role identifies the author of a message.
type Role string

// Message roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// DefaultTitle is the sentinel title of a session before its first user
// message fixes the real one.
const DefaultTitle = "New Chat"

// titleMaxGraphemes is how much of the first user message becomes the title.
const titleMaxGraphemes = 30

// Message is a single conversation turn.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is one independent conversation thread.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
}

// clone returns a deep copy so callers can't mutate store state.
func (s *Session) clone() *Session {
	c := *s
	c.Messages = make([]Message, len(s.Messages))
	copy(c.Messages, s.Messages)
	return &c
}

// DeriveTitle builds a session title from the first user message: its first
// 30 characters, with an ellipsis appended when the content was longer.
// Counting is done on grapheme clusters so multi-byte input is never split
// mid-character.
func DeriveTitle(content string) string {
	g := uniseg.NewGraphemes(content)
	var title []byte
	count := 0
	for g.Next() {
		if count == titleMaxGraphemes {
			return string(title) + "…"
		}
		title = append(title, g.Bytes()...)
		count++
	}
	return string(title)
}
