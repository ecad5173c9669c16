// ABOUTME: Send pipeline and session lifecycle facade over the store
// ABOUTME: Optimistic append, remote call, then commit or rollback by message ID

package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/2389/coven-client/internal/backend"
)

// ErrEmptyMessage is returned for empty or whitespace-only input. No state
// is changed; callers may silently ignore it.
var ErrEmptyMessage = errors.New("message is empty")

// ErrSendInFlight is returned when a send is already pending for the target
// conversation. Sends for different conversations may overlap.
var ErrSendInFlight = errors.New("send already in flight for this conversation")

// ChatBackend defines what the service needs from the remote backend.
type ChatBackend interface {
	SendMessage(ctx context.Context, sessionID, message string) (*backend.ChatResult, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// Service is the send pipeline and the session lifecycle facade the UI
// talks to. Every mutation goes through the store; every remote failure is
// converted into a recoverable error after the staged state is rolled back.
type Service struct {
	store       *Store
	backend     ChatBackend
	inflight    *inflightRegistry
	broadcaster *Broadcaster
	logger      *slog.Logger
}

// NewService creates the conversation service. Pass nil broadcaster to
// disable send lifecycle events and nil logger for the default.
func NewService(store *Store, chat ChatBackend, broadcaster *Broadcaster, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:       store,
		backend:     chat,
		inflight:    newInflightRegistry(),
		broadcaster: broadcaster,
		logger:      logger.With("component", "conversation"),
	}
}

// SendMessage runs the full pipeline for one user message.
//
// The user message is staged into the target conversation before the
// network call, so it is visible immediately. The backend's reply is
// committed to the conversation the send was issued for, addressed by ID.
// The user may switch conversations while the call is outstanding; the
// reply still lands in the right place. On failure the staged message is
// removed by ID and the prior title restored.
func (s *Service) SendMessage(ctx context.Context, conversationID, text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ErrEmptyMessage
	}

	state, ok := s.inflight.begin(conversationID)
	if !ok {
		return ErrSendInFlight
	}
	defer s.inflight.end(conversationID)

	// Stage the optimistic user message. A missing conversation makes the
	// whole operation a no-op.
	msg := NewUserMessage(trimmed)
	staged, err := s.store.StageUserMessage(conversationID, msg)
	if err != nil {
		return err
	}
	s.inflight.stage(conversationID, msg.ID, staged)
	s.publish(Event{Type: EventSendStarted, ConversationID: conversationID, MessageID: msg.ID})

	s.logger.Debug("message staged",
		"conversation_id", conversationID,
		"message_id", msg.ID,
		"title_assigned", staged.Assigned)

	result, err := s.backend.SendMessage(ctx, conversationID, trimmed)
	if err != nil {
		if rbErr := s.store.RollbackMessage(state.conversationID, state.stagedMessageID, state.stagedTitle); rbErr != nil {
			// Conversation deleted while the send was in flight.
			s.logger.Debug("rollback skipped",
				"conversation_id", conversationID,
				"error", rbErr)
		}
		s.logger.Warn("send failed, staged message rolled back",
			"conversation_id", conversationID,
			"message_id", msg.ID,
			"transport", errors.Is(err, backend.ErrTransport),
			"error", err)
		s.publish(Event{Type: EventSendFailed, ConversationID: conversationID, MessageID: msg.ID})
		return fmt.Errorf("sending message: %w", err)
	}

	assistant := NewAssistantMessage(result.Response, result.Agent, result.Timestamp)
	if err := s.store.CommitAssistantMessage(conversationID, assistant); err != nil {
		// Local deletion is authoritative; the reply has nowhere to land.
		s.logger.Debug("reply dropped, conversation deleted mid-send",
			"conversation_id", conversationID)
		return nil
	}

	s.logger.Debug("reply committed",
		"conversation_id", conversationID,
		"message_id", assistant.ID,
		"agent", result.Agent,
		"turn_count", result.TurnCount)
	s.publish(Event{Type: EventSendCompleted, ConversationID: conversationID, MessageID: assistant.ID})
	return nil
}

// IsSending reports whether a send is pending for the conversation.
func (s *Service) IsSending(conversationID string) bool {
	return s.inflight.active(conversationID)
}

// Sending reports whether any send is pending.
func (s *Service) Sending() bool {
	return s.inflight.count() > 0
}

// NewConversation creates an empty conversation and makes it current.
func (s *Service) NewConversation() *Conversation {
	return s.store.Create()
}

// SwitchConversation moves the current pointer.
func (s *Service) SwitchConversation(id string) error {
	return s.store.Switch(id)
}

// DeleteConversation removes the conversation locally, then issues a
// best-effort remote session delete whose failure is ignored.
func (s *Service) DeleteConversation(ctx context.Context, id string) error {
	if err := s.store.Delete(id); err != nil {
		return err
	}
	if err := s.backend.DeleteSession(ctx, id); err != nil {
		s.logger.Debug("remote session delete failed",
			"conversation_id", id,
			"error", err)
	}
	return nil
}

// ClearAll destroys every conversation and reseeds one fresh conversation.
func (s *Service) ClearAll() *Conversation {
	return s.store.ClearAll()
}

// Current returns the current conversation, or nil when none.
func (s *Service) Current() *Conversation {
	return s.store.Current()
}

// List returns all conversations, most recently updated first.
func (s *Service) List() []*Conversation {
	return s.store.List()
}

func (s *Service) publish(event Event) {
	if s.broadcaster != nil {
		s.broadcaster.Publish(event)
	}
}
