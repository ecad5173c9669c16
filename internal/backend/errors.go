// ABOUTME: Error types for remote chat backend failures
// ABOUTME: Distinguishes transport failures from non-2xx server responses

package backend

import (
	"errors"
	"fmt"
)

// Sentinel kinds for errors.Is checks. Both kinds get identical rollback
// treatment in the pipeline; the distinction exists for observability.
var (
	ErrTransport = errors.New("backend transport error")
	ErrServer    = errors.New("backend server error")
)

// TransportError wraps a network-level failure: connection refused, DNS,
// timeout, or a body that could not be read.
type TransportError struct {
	Op  string // "send" or "delete_session"
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is reports ErrTransport so callers can classify without type assertions.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// ServerError carries a non-2xx response. Body is truncated and kept for
// logging only; the pipeline does not rely on its format.
type ServerError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s: server returned status %d", e.Op, e.StatusCode)
}

// Is reports ErrServer so callers can classify without type assertions.
func (e *ServerError) Is(target error) bool { return target == ErrServer }
