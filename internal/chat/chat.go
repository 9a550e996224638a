// Package chat implements the assistant side-channel: an ordered message
// log and a single request/response exchange per turn. There is no
// streaming and no client-side reasoning; the provider does all the work.
package chat

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kontali/konsole/internal/api"
)

// Roles in the message log.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one entry in the session log.
type Message struct {
	ID      string
	Role    string
	Content string
	At      time.Time
}

// Provider answers one chat turn given the prior history.
type Provider interface {
	Reply(ctx context.Context, message string, history []api.ChatMessage) (string, error)
}

// Session holds the ordered message log for one chat widget instance.
type Session struct {
	messages []Message
}

// NewSession returns a session seeded with an optional system greeting.
func NewSession(greeting string) *Session {
	s := &Session{}
	if greeting != "" {
		s.append(RoleSystem, greeting)
	}
	return s
}

func (s *Session) append(role, content string) Message {
	m := Message{ID: uuid.NewString(), Role: role, Content: content, At: time.Now()}
	s.messages = append(s.messages, m)
	return m
}

// Messages returns the full log including system entries, for rendering.
func (s *Session) Messages() []Message {
	return s.messages
}

// History serializes prior turns for the provider. System messages are
// filtered out; only user/assistant roles travel.
func (s *Session) History() []api.ChatMessage {
	out := make([]api.ChatMessage, 0, len(s.messages))
	for _, m := range s.messages {
		if m.Role != RoleUser && m.Role != RoleAssistant {
			continue
		}
		out = append(out, api.ChatMessage{Role: m.Role, Content: m.Content})
	}
	return out
}

// AppendUser records the operator's turn. The caller appends it before
// dispatching the provider call, so a failed reply still leaves the
// question in the log; nothing is rolled back.
func (s *Session) AppendUser(text string) Message {
	return s.append(RoleUser, strings.TrimSpace(text))
}

// AppendAssistant records a provider reply.
func (s *Session) AppendAssistant(text string) Message {
	return s.append(RoleAssistant, text)
}

// BackendProvider answers via the Kontali backend chat endpoint.
type BackendProvider struct {
	Client *api.Client
}

func (b *BackendProvider) Reply(ctx context.Context, message string, history []api.ChatMessage) (string, error) {
	return b.Client.Chat(ctx, message, history)
}
