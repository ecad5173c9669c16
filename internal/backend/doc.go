// Package backend implements the HTTP client for the remote multi-agent
// chat service.
//
// # Overview
//
// The backend exposes two endpoints this client consumes:
//
//   - POST /api/chat: chat completion for a session
//   - DELETE /api/sessions/{id}: best-effort session deletion
//
// # Chat Completion
//
// Request body:
//
//	{"message": "...", "user_id": "...", "workspace": "...", "session_id": "..."}
//
// Success payload:
//
//	{"response": "...", "agent": "...", "session_id": "...",
//	 "turn_count": 3, "timestamp": "2026-01-02T15:04:05Z"}
//
// The agent field tags which backend specialist produced the reply. The
// timestamp is RFC 3339; an unparsable value falls back to the local clock.
//
// # Error Classification
//
// Failures split into two kinds:
//
//   - *TransportError: connection failures, timeouts, unreadable bodies
//   - *ServerError: non-2xx responses, with status code and a body snippet
//
// Both match their sentinel (ErrTransport, ErrServer) via errors.Is. The
// send pipeline treats them identically; the split is for logging.
//
// # Session Deletion
//
// DeleteSession is best-effort by contract: a 404 is success, and callers
// ignore all other failures too. The gateway may have already expired the
// session.
package backend
