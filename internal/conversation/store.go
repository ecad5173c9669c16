// ABOUTME: In-memory conversation store with current-conversation pointer
// ABOUTME: Funnels every mutation through sort + archive flush + event publish

package conversation

import (
	"errors"
	"log/slog"
	"sort"
	"sync"
)

// ErrConversationNotFound is returned when an operation addresses a
// conversation ID that is not in the store.
var ErrConversationNotFound = errors.New("conversation not found")

// Archive defines what the store needs from durable persistence.
// Implementations are best-effort: Load returns an empty list on any
// failure, and Save/Clear swallow their errors.
type Archive interface {
	Load() []*Conversation
	Save(conversations []*Conversation)
	Clear()
}

// Store owns the conversation list and the current-conversation pointer.
// It is the only writer of conversation state; the pipeline and the UI go
// through its operations. All accessors hand out clones.
type Store struct {
	mu            sync.RWMutex
	conversations []*Conversation
	currentID     string
	archive       Archive
	broadcaster   *Broadcaster
	logger        *slog.Logger
}

// NewStore creates a store seeded from the archive. If the archive yields
// nothing, one fresh conversation is created so there is always something
// current on first run. Pass nil broadcaster to disable events and nil
// logger for the default.
func NewStore(archive Archive, broadcaster *Broadcaster, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		archive:     archive,
		broadcaster: broadcaster,
		logger:      logger.With("component", "store"),
	}

	s.conversations = archive.Load()
	s.sortLocked()

	if len(s.conversations) == 0 {
		conv := NewConversation()
		s.conversations = []*Conversation{conv}
		s.archive.Save(s.conversations)
		s.logger.Debug("seeded fresh conversation", "conversation_id", conv.ID)
	}
	s.currentID = s.conversations[0].ID

	s.logger.Info("conversation store loaded", "conversations", len(s.conversations))
	return s
}

// Create allocates a new empty conversation, makes it current, and returns
// a clone of it.
func (s *Store) Create() *Conversation {
	s.mu.Lock()
	conv := NewConversation()
	s.conversations = append([]*Conversation{conv}, s.conversations...)
	s.currentID = conv.ID
	s.flushLocked()
	s.mu.Unlock()

	s.publish(Event{Type: EventConversationCreated, ConversationID: conv.ID})
	s.logger.Debug("conversation created", "conversation_id", conv.ID)
	return conv.Clone()
}

// Get returns a clone of the conversation with the given ID.
func (s *Store) Get(id string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv := s.findLocked(id)
	if conv == nil {
		return nil, ErrConversationNotFound
	}
	return conv.Clone(), nil
}

// List returns clones of all conversations, most recently updated first.
func (s *Store) List() []*Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Conversation, len(s.conversations))
	for i, conv := range s.conversations {
		out[i] = conv.Clone()
	}
	return out
}

// Current returns a clone of the current conversation, or nil when the
// store is empty.
func (s *Store) Current() *Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv := s.findLocked(s.currentID)
	if conv == nil {
		return nil
	}
	return conv.Clone()
}

// CurrentID returns the current conversation's ID, or "" when none.
func (s *Store) CurrentID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentID
}

// Switch moves the current pointer to the given conversation. Message lists
// are untouched and nothing is persisted; the pointer is in-memory state.
func (s *Store) Switch(id string) error {
	s.mu.Lock()
	if s.findLocked(id) == nil {
		s.mu.Unlock()
		return ErrConversationNotFound
	}
	s.currentID = id
	s.mu.Unlock()

	s.publish(Event{Type: EventConversationSwitched, ConversationID: id})
	return nil
}

// Delete removes a conversation from the store. If it was current, the most
// recently updated remaining conversation becomes current, or none if the
// store is now empty. Removal is local-authoritative; remote cleanup is the
// service's concern.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	idx := -1
	for i, conv := range s.conversations {
		if conv.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return ErrConversationNotFound
	}

	s.conversations = append(s.conversations[:idx], s.conversations[idx+1:]...)
	if s.currentID == id {
		if len(s.conversations) > 0 {
			// List is kept sorted, so the head is the most recently updated.
			s.currentID = s.conversations[0].ID
		} else {
			s.currentID = ""
		}
	}
	s.flushLocked()
	s.mu.Unlock()

	s.publish(Event{Type: EventConversationDeleted, ConversationID: id})
	s.logger.Debug("conversation deleted", "conversation_id", id)
	return nil
}

// ClearAll destroys every conversation, resets the archive, and reseeds one
// fresh conversation for continuity. The fresh conversation becomes current
// and a clone of it is returned.
func (s *Store) ClearAll() *Conversation {
	s.mu.Lock()
	s.archive.Clear()
	conv := NewConversation()
	s.conversations = []*Conversation{conv}
	s.currentID = conv.ID
	s.flushLocked()
	s.mu.Unlock()

	s.publish(Event{Type: EventConversationsCleared, ConversationID: conv.ID})
	s.logger.Info("all conversations cleared", "seed_conversation_id", conv.ID)
	return conv.Clone()
}

// StagedTitle records what the title rule did during an optimistic append,
// so a rollback can restore the exact prior title.
type StagedTitle struct {
	Assigned bool
	Previous string
}

// StageUserMessage optimistically appends a user message to the target
// conversation. If this is the conversation's first message, the title is
// derived from it. The conversation's updated_at becomes the message
// timestamp and the list is re-sorted and flushed, so the staged message is
// visible before any network activity.
func (s *Store) StageUserMessage(conversationID string, msg Message) (StagedTitle, error) {
	s.mu.Lock()
	conv := s.findLocked(conversationID)
	if conv == nil {
		s.mu.Unlock()
		return StagedTitle{}, ErrConversationNotFound
	}

	var staged StagedTitle
	if len(conv.Messages) == 0 {
		staged = StagedTitle{Assigned: true, Previous: conv.Title}
		conv.Title = TitleForMessage(msg.Content)
	}
	conv.Messages = append(conv.Messages, msg)
	conv.UpdatedAt = msg.Timestamp
	s.flushLocked()
	s.mu.Unlock()

	s.publish(Event{Type: EventConversationUpdated, ConversationID: conversationID, MessageID: msg.ID})
	return staged, nil
}

// CommitAssistantMessage appends the backend's reply to the conversation it
// was issued for, addressed by ID rather than by the current pointer. The
// conversation's agent cache and updated_at take the backend-supplied
// values.
func (s *Store) CommitAssistantMessage(conversationID string, msg Message) error {
	s.mu.Lock()
	conv := s.findLocked(conversationID)
	if conv == nil {
		s.mu.Unlock()
		return ErrConversationNotFound
	}

	conv.Messages = append(conv.Messages, msg)
	conv.Agent = msg.Agent
	conv.UpdatedAt = msg.Timestamp
	s.flushLocked()
	s.mu.Unlock()

	s.publish(Event{Type: EventConversationUpdated, ConversationID: conversationID, MessageID: msg.ID})
	return nil
}

// RollbackMessage removes exactly the staged message, identified by its ID,
// and restores the prior title if the staging assigned one. A title must
// never reflect a message that is not in the list.
func (s *Store) RollbackMessage(conversationID, messageID string, staged StagedTitle) error {
	s.mu.Lock()
	conv := s.findLocked(conversationID)
	if conv == nil {
		// Conversation was deleted while the send was in flight; nothing
		// left to roll back.
		s.mu.Unlock()
		return ErrConversationNotFound
	}

	for i, msg := range conv.Messages {
		if msg.ID == messageID {
			conv.Messages = append(conv.Messages[:i], conv.Messages[i+1:]...)
			break
		}
	}
	if staged.Assigned {
		conv.Title = staged.Previous
	}
	s.flushLocked()
	s.mu.Unlock()

	s.publish(Event{Type: EventConversationUpdated, ConversationID: conversationID, MessageID: messageID})
	return nil
}

// findLocked returns the conversation with the given ID, or nil.
// Callers must hold s.mu.
func (s *Store) findLocked(id string) *Conversation {
	if id == "" {
		return nil
	}
	for _, conv := range s.conversations {
		if conv.ID == id {
			return conv
		}
	}
	return nil
}

// sortLocked orders the list by updated_at descending. The stable sort
// preserves insertion order for equal timestamps.
func (s *Store) sortLocked() {
	sort.SliceStable(s.conversations, func(i, j int) bool {
		return s.conversations[i].UpdatedAt.After(s.conversations[j].UpdatedAt)
	})
}

// flushLocked re-sorts the list and flushes it to the archive.
// Callers must hold s.mu.
func (s *Store) flushLocked() {
	s.sortLocked()
	s.archive.Save(s.conversations)
}

// publish emits a change event if a broadcaster is configured.
func (s *Store) publish(event Event) {
	if s.broadcaster != nil {
		s.broadcaster.Publish(event)
	}
}
