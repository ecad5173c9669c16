// ABOUTME: Best-effort conversation archive over the durable KV store
// ABOUTME: Load tolerates missing or corrupt data, Save truncates to the cap

package store

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/2389/coven-client/internal/conversation"
)

// Archive persists the bounded conversation list. It is deliberately not a
// correctness boundary: every failure is logged and swallowed, and the
// in-memory state carries on regardless.
type Archive struct {
	kv     KV
	max    int
	logger *slog.Logger
}

// NewArchive creates an archive writing through kv, keeping at most max
// conversations. Pass nil logger for the default.
func NewArchive(kv KV, max int, logger *slog.Logger) *Archive {
	if logger == nil {
		logger = slog.Default()
	}
	return &Archive{
		kv:     kv,
		max:    max,
		logger: logger.With("component", "archive"),
	}
}

// Load reads the persisted conversation list. Missing data, corrupt data,
// and read errors all yield an empty list; blocking startup on bad local
// state would be worse than starting fresh.
func (a *Archive) Load() []*conversation.Conversation {
	data, err := a.kv.Get(ConversationsKey)
	if errors.Is(err, ErrKeyNotFound) {
		return []*conversation.Conversation{}
	}
	if err != nil {
		a.logger.Warn("failed to read conversations, starting empty", "error", err)
		return []*conversation.Conversation{}
	}

	var conversations []*conversation.Conversation
	if err := json.Unmarshal(data, &conversations); err != nil {
		a.logger.Warn("corrupt conversation data, starting empty", "error", err)
		return []*conversation.Conversation{}
	}
	return conversations
}

// Save writes at most max conversations. The list arrives sorted by
// updated_at descending, so truncation drops the oldest. Write errors such
// as exceeded quota are logged, never propagated.
func (a *Archive) Save(conversations []*conversation.Conversation) {
	if len(conversations) > a.max {
		conversations = conversations[:a.max]
	}

	data, err := json.Marshal(conversations)
	if err != nil {
		a.logger.Error("failed to serialize conversations", "error", err)
		return
	}

	if err := a.kv.Set(ConversationsKey, data); err != nil {
		a.logger.Warn("failed to persist conversations",
			"conversations", len(conversations),
			"error", err)
	}
}

// Clear removes the persisted list entirely. Errors are swallowed the same
// way as in Save.
func (a *Archive) Clear() {
	if err := a.kv.Remove(ConversationsKey); err != nil {
		a.logger.Warn("failed to clear persisted conversations", "error", err)
	}
}
