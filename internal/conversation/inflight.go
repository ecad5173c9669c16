// ABOUTME: Registry of in-flight sends keyed by conversation ID
// ABOUTME: Tagged send state gives rollback the exact staged message to remove

package conversation

import (
	"sync"
	"time"
)

// sendState is the tagged record of one in-flight send. It carries the
// staged message ID and the title snapshot so the failure path can undo
// exactly what the optimistic append did, regardless of what the UI is
// currently displaying.
type sendState struct {
	conversationID  string
	stagedMessageID string
	stagedTitle     StagedTitle
	startedAt       time.Time
}

// inflightRegistry tracks which conversations have a send pending. At most
// one send per conversation is allowed; sends for different conversations
// may overlap.
type inflightRegistry struct {
	mu    sync.Mutex
	sends map[string]*sendState
}

func newInflightRegistry() *inflightRegistry {
	return &inflightRegistry{
		sends: make(map[string]*sendState),
	}
}

// begin atomically registers a send for the conversation. Returns false if
// one is already pending, in which case the caller must not proceed.
func (r *inflightRegistry) begin(conversationID string) (*sendState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sends[conversationID]; exists {
		return nil, false
	}
	state := &sendState{
		conversationID: conversationID,
		startedAt:      time.Now(),
	}
	r.sends[conversationID] = state
	return state, true
}

// stage records the staged message and title snapshot on an active send.
func (r *inflightRegistry) stage(conversationID, messageID string, title StagedTitle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if state, ok := r.sends[conversationID]; ok {
		state.stagedMessageID = messageID
		state.stagedTitle = title
	}
}

// end clears the send for the conversation.
func (r *inflightRegistry) end(conversationID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sends, conversationID)
}

// active returns true if the conversation has a send pending.
func (r *inflightRegistry) active(conversationID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sends[conversationID]
	return ok
}

// count returns the number of pending sends across all conversations.
func (r *inflightRegistry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sends)
}
