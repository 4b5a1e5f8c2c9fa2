package agent

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abysslabs/abyss/internal/config"
	"github.com/abysslabs/abyss/internal/models"
)

func testClient(t *testing.T, url string) *Client {
	t.Helper()

	return New(config.Config{
		AgentURL:       url,
		AgentID:        "agent-test",
		RequestTimeout: 2 * time.Second,
	}, slog.New(slog.DiscardHandler))
}

func TestSendEmptyInputMakesNoRequest(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)

	for _, input := range []string{"", "   ", "\n\t "} {
		_, ok := c.Send(context.Background(), input, "session-1", "user-1")
		assert.False(t, ok)
	}
	assert.Equal(t, int64(0), calls.Load())
}

func TestSendStructuredSuccess(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		var req exchangeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "I feel overwhelmed", req.Message)
		assert.Equal(t, "agent-test", req.AgentID)
		assert.Equal(t, "user-1", req.UserID)
		assert.Equal(t, "session-1", req.SessionID)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"success": true,
			"response": {
				"therapeutic_response": "That sounds heavy.",
				"response_type": "empathetic_reflection",
				"emotional_themes_detected": ["overwhelm", "stress"],
				"crisis_detected": false
			}
		}`))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)

	msg, ok := c.Send(context.Background(), "I feel overwhelmed", "session-1", "user-1")
	require.True(t, ok)
	assert.Equal(t, int64(1), calls.Load())

	assert.Equal(t, models.RoleAgent, msg.Role)
	assert.Equal(t, "That sounds heavy.", msg.Content)
	assert.Equal(t, models.TypeEmpatheticReflection, msg.Type)
	assert.Equal(t, []string{"overwhelm", "stress"}, msg.EmotionalThemes)
	assert.False(t, msg.CrisisDetected)
	assert.NotEmpty(t, msg.ID)
	assert.False(t, msg.Timestamp.IsZero())
}

func TestSendPlainStringResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "response": "You are not alone in this."}`))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)

	msg, ok := c.Send(context.Background(), "hello", "session-1", "user-1")
	require.True(t, ok)
	assert.Equal(t, "You are not alone in this.", msg.Content)
	assert.Equal(t, models.TypeEmpatheticReflection, msg.Type)
	assert.Empty(t, msg.EmotionalThemes)
	assert.False(t, msg.CrisisDetected)
}

func TestSendCrisisDetected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"success": true,
			"response": {
				"therapeutic_response": "Please reach out right now.",
				"response_type": "crisis_response",
				"crisis_detected": true
			}
		}`))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)

	msg, ok := c.Send(context.Background(), "hello", "session-1", "user-1")
	require.True(t, ok)
	assert.True(t, msg.CrisisDetected)
	assert.Equal(t, "crisis_response", msg.Type)
}

func TestSendLogicalFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false}`))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)

	msg, ok := c.Send(context.Background(), "hello", "session-1", "user-1")
	require.True(t, ok)
	assert.Equal(t, models.RoleAgent, msg.Role)
	assert.Equal(t, models.TypeError, msg.Type)
	assert.Contains(t, msg.Content, "I apologize")
	assert.False(t, msg.CrisisDetected)
}

func TestSendTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := testClient(t, srv.URL)

	msg, ok := c.Send(context.Background(), "hello", "session-1", "user-1")
	require.True(t, ok)
	assert.Equal(t, models.RoleAgent, msg.Role)
	assert.Equal(t, models.TypeError, msg.Type)
	assert.Contains(t, msg.Content, "crisis service")
	// The referral text never flips the agent-asserted crisis flag.
	assert.False(t, msg.CrisisDetected)
}

func TestSendUnparseableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>so much for json</html>"))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)

	msg, ok := c.Send(context.Background(), "hello", "session-1", "user-1")
	require.True(t, ok)
	assert.Equal(t, models.TypeError, msg.Type)
	assert.Contains(t, msg.Content, "technical issue")
}

func TestSendServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)

	msg, ok := c.Send(context.Background(), "hello", "session-1", "user-1")
	require.True(t, ok)
	assert.Equal(t, models.TypeError, msg.Type)
	assert.False(t, msg.CrisisDetected)
}

func TestNormalizeObjectWithoutResponseText(t *testing.T) {
	raw := json.RawMessage(`{"mood":"calm"}`)

	msg := normalize(raw)
	assert.Equal(t, `{"mood":"calm"}`, msg.Content)
	assert.Equal(t, models.TypeEmpatheticReflection, msg.Type)
}

func TestNormalizeDefaults(t *testing.T) {
	raw := json.RawMessage(`{"therapeutic_response":"Take a breath."}`)

	msg := normalize(raw)
	assert.Equal(t, "Take a breath.", msg.Content)
	assert.Equal(t, models.TypeEmpatheticReflection, msg.Type)
	assert.Empty(t, msg.EmotionalThemes)
	assert.False(t, msg.CrisisDetected)
}
