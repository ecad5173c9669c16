// ABOUTME: Tests for the backend HTTP client
// ABOUTME: Covers request shape, response parsing, and error classification

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SendMessage_Success(t *testing.T) {
	var gotBody chatRequest
	var gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatResponse{
			Response:  "Noted — want a reminder?",
			Agent:     "task_agent",
			SessionID: gotBody.SessionID,
			TurnCount: 3,
			Timestamp: "2026-03-01T12:00:00Z",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "alice", "personal", 0, nil)
	result, err := client.SendMessage(context.Background(), "session-123", "Call the dentist tomorrow")
	require.NoError(t, err)

	assert.Equal(t, "/api/chat", gotPath)
	assert.Equal(t, "Call the dentist tomorrow", gotBody.Message)
	assert.Equal(t, "alice", gotBody.UserID)
	assert.Equal(t, "personal", gotBody.Workspace)
	assert.Equal(t, "session-123", gotBody.SessionID)

	assert.Equal(t, "Noted — want a reminder?", result.Response)
	assert.Equal(t, "task_agent", result.Agent)
	assert.Equal(t, "session-123", result.SessionID)
	assert.Equal(t, 3, result.TurnCount)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), result.Timestamp.UTC())
}

func TestClient_SendMessage_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "agent pool exhausted", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "alice", "personal", 0, nil)
	_, err := client.SendMessage(context.Background(), "session-123", "hello")
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrServer)
	assert.NotErrorIs(t, err, ErrTransport)

	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusBadGateway, serverErr.StatusCode)
	assert.Contains(t, serverErr.Body, "agent pool exhausted")
}

func TestClient_SendMessage_TransportError(t *testing.T) {
	// Point at a closed server
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, "alice", "personal", 0, nil)
	_, err := client.SendMessage(context.Background(), "session-123", "hello")
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrTransport)
	assert.NotErrorIs(t, err, ErrServer)
}

func TestClient_SendMessage_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(server.URL, "alice", "personal", 50*time.Millisecond, nil)
	_, err := client.SendMessage(context.Background(), "session-123", "hello")
	require.Error(t, err)

	// Timeout is just another transport failure
	assert.ErrorIs(t, err, ErrTransport)
}

func TestClient_SendMessage_MalformedResponseBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "alice", "personal", 0, nil)
	_, err := client.SendMessage(context.Background(), "session-123", "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestClient_SendMessage_TimestampFallback(t *testing.T) {
	tests := []struct {
		name      string
		timestamp string
	}{
		{name: "missing timestamp", timestamp: ""},
		{name: "malformed timestamp", timestamp: "yesterday-ish"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(chatResponse{
					Response:  "ok",
					Agent:     "router",
					Timestamp: tt.timestamp,
				})
			}))
			defer server.Close()

			before := time.Now()
			client := NewClient(server.URL, "alice", "personal", 0, nil)
			result, err := client.SendMessage(context.Background(), "session-123", "hello")
			require.NoError(t, err)

			// Falls back to the local clock
			assert.False(t, result.Timestamp.Before(before))
			assert.False(t, result.Timestamp.After(time.Now()))
		})
	}
}

func TestClient_DeleteSession(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantErr    bool
		wantServer bool
	}{
		{name: "deleted", status: http.StatusOK, wantErr: false},
		{name: "no content", status: http.StatusNoContent, wantErr: false},
		{name: "not found is success", status: http.StatusNotFound, wantErr: false},
		{name: "server failure", status: http.StatusInternalServerError, wantErr: true, wantServer: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotMethod, gotPath string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotMethod = r.Method
				gotPath = r.URL.Path
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := NewClient(server.URL, "alice", "personal", 0, nil)
			err := client.DeleteSession(context.Background(), "session-123")

			assert.Equal(t, http.MethodDelete, gotMethod)
			assert.Equal(t, "/api/sessions/session-123", gotPath)

			if tt.wantErr {
				require.Error(t, err)
				if tt.wantServer {
					assert.ErrorIs(t, err, ErrServer)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestClient_DeleteSession_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, "alice", "personal", 0, nil)
	err := client.DeleteSession(context.Background(), "session-123")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestClient_BaseURLTrailingSlash(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(chatResponse{Response: "ok"})
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", "alice", "personal", 0, nil)
	_, err := client.SendMessage(context.Background(), "s", "hello")
	require.NoError(t, err)
	assert.Equal(t, "/api/chat", gotPath)
}

func TestErrors_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := &TransportError{Op: "send", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")

	serverErr := &ServerError{Op: "send", StatusCode: 503}
	assert.Contains(t, serverErr.Error(), "503")
}
