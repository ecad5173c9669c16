// Package conversation owns client-side conversation state: the in-memory
// store, the message send pipeline, and the session lifecycle.
//
// # Overview
//
// The package sits between the UI layer and the backend HTTP client. The
// Store holds the conversation list and the current-conversation pointer;
// the Service runs the send pipeline and exposes the lifecycle operations
// the UI calls.
//
// # Store
//
// The Store enforces the structural invariants:
//
//   - The list is always sorted by updated_at descending, ties stable
//   - Exactly one conversation is current, or none when the list is empty
//   - Every mutation flushes the list to the archive
//   - Accessors hand out clones; nothing outside the store mutates state
//
// # Send Pipeline
//
// SendMessage runs a small state machine per conversation:
//
//  1. Validate: empty input and unknown conversations are no-ops
//  2. Stage: append the user message optimistically, derive the title if
//     this is the first message, flush
//  3. Call the backend with the conversation ID as session key
//  4. Commit the assistant reply to the same conversation by ID, or roll
//     back the staged message by ID and restore the title
//
// The staged message and title snapshot live in a tagged in-flight record,
// so rollback works even if the user switched conversations or other sends
// completed meanwhile. One send per conversation may be pending at a time;
// a second is rejected with ErrSendInFlight.
//
// # Title Rule
//
// A conversation's title is derived exactly once, from its first message.
// If that message is rolled back, the title reverts with it: a title never
// reflects a message that is not in the list.
//
// # Events
//
// Store and Service publish change events through the Broadcaster:
//
//	events, subID := broadcaster.Subscribe(ctx)
//
// The UI re-reads store state on each event instead of polling. Event types
// cover conversation lifecycle (created, switched, updated, deleted,
// cleared) and send lifecycle (started, completed, failed).
//
// # Error Taxonomy
//
//   - ErrEmptyMessage: validation, silently ignorable, no state change
//   - ErrSendInFlight: a send is already pending for the conversation
//   - ErrConversationNotFound: ID does not address a stored conversation
//   - backend.ErrTransport / backend.ErrServer: send failed and was rolled
//     back; recoverable, no automatic retry
//
// Persistence failures never surface here; the archive logs and swallows
// them.
package conversation
