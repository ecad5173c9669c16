// ABOUTME: Core data types for conversations and messages
// ABOUTME: Defines Message, Conversation, and the JSON shape used by the archive

package conversation

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// PlaceholderTitle is assigned to a conversation until its first message
// determines the real title.
const PlaceholderTitle = "New Chat"

// Message is a single entry in a conversation's message list.
// IDs are generated client-side and never change. Agent is set only on
// assistant messages.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Agent     string    `json:"agent,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is a titled, ordered sequence of messages. Its ID doubles as
// the remote session key. Agent caches the specialist tag from the most
// recent assistant message.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	Agent     string    `json:"agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewConversation allocates an empty conversation with a fresh ID and the
// placeholder title.
func NewConversation() *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        uuid.New().String(),
		Title:     PlaceholderTitle,
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy. The store hands out clones so callers can never
// mutate its state except through store operations.
func (c *Conversation) Clone() *Conversation {
	out := *c
	out.Messages = make([]Message, len(c.Messages))
	copy(out.Messages, c.Messages)
	return &out
}

// NewUserMessage builds a user message with a fresh ID, trimmed content, and
// a client-side timestamp.
func NewUserMessage(content string) Message {
	return Message{
		ID:        uuid.New().String(),
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewAssistantMessage builds an assistant message carrying the backend's
// agent tag and timestamp.
func NewAssistantMessage(content, agent string, timestamp time.Time) Message {
	return Message{
		ID:        uuid.New().String(),
		Role:      RoleAssistant,
		Content:   content,
		Agent:     agent,
		Timestamp: timestamp,
	}
}
