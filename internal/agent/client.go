// Package agent provides the HTTP client for the remote dialogue agent and
// normalizes its replies into the message shape the transcript uses.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/abysslabs/abyss/internal/config"
	"github.com/abysslabs/abyss/internal/models"
)

// Fallback copy for failed exchanges. The transport-failure text refers the
// user to crisis support but deliberately does not set CrisisDetected: that
// flag is reserved for crisis signals asserted by the agent itself.
const (
	apologyContent = "I apologize, but I'm having difficulty processing that at the moment. " +
		"Please try again, or if you're in crisis, please reach out to a mental health professional immediately."

	technicalIssueContent = "I'm experiencing a technical issue. Your feelings matter - " +
		"please reach out to a trusted person or crisis service if you need immediate support."
)

// Client issues exchanges against the remote dialogue agent.
type Client struct {
	endpoint   string
	agentID    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a client from configuration. Pass nil for logger to use
// slog.Default().
func New(cfg config.Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		endpoint: cfg.AgentURL,
		agentID:  cfg.AgentID,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		logger: logger,
	}
}

// exchangeRequest is the outbound payload, one per user-submitted message.
type exchangeRequest struct {
	Message   string `json:"message"`
	AgentID   string `json:"agent_id"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

// exchangeResponse is the reply envelope. Response may be a plain JSON string
// or a structured reply object.
type exchangeResponse struct {
	Success  bool            `json:"success"`
	Response json.RawMessage `json:"response"`
}

// replyPayload is the structured form of the response field.
type replyPayload struct {
	TherapeuticResponse string   `json:"therapeutic_response"`
	ResponseType        string   `json:"response_type"`
	EmotionalThemes     []string `json:"emotional_themes_detected"`
	CrisisDetected      bool     `json:"crisis_detected"`
}

// Send issues exactly one exchange for the given user text and returns the
// resulting agent-role message. It never fails past its boundary: transport
// errors, unparseable bodies, and logical failures all resolve to a valid
// fallback message. The second return is false only for empty (trimmed)
// input, in which case no request is made and no message is produced.
func (c *Client) Send(ctx context.Context, userText, sessionID, userID string) (models.Message, bool) {
	if strings.TrimSpace(userText) == "" {
		return models.Message{}, false
	}

	resp, err := c.exchange(ctx, exchangeRequest{
		Message:   userText,
		AgentID:   c.agentID,
		UserID:    userID,
		SessionID: sessionID,
	})
	if err != nil {
		c.logger.Warn("exchange failed", "error", err, "session_id", sessionID)
		return agentMessage(technicalIssueContent, models.TypeError, nil, false), true
	}

	if !resp.Success {
		c.logger.Warn("agent reported failure", "session_id", sessionID)
		return agentMessage(apologyContent, models.TypeError, nil, false), true
	}

	return normalize(resp.Response), true
}

func (c *Client) exchange(ctx context.Context, payload exchangeRequest) (*exchangeResponse, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, fmt.Errorf("agent error: %s - %s", httpResp.Status, string(body))
	}

	var resp exchangeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &resp, nil
}

// normalize maps a successful reply payload onto a transcript message. The
// payload may be a plain string or a structured object; missing fields fall
// back to defaults.
func normalize(raw json.RawMessage) models.Message {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return agentMessage(asString, models.TypeEmpatheticReflection, nil, false)
	}

	var reply replyPayload
	if err := json.Unmarshal(raw, &reply); err != nil {
		// Not a string and not an object: surface the payload verbatim.
		return agentMessage(string(raw), models.TypeEmpatheticReflection, nil, false)
	}

	content := reply.TherapeuticResponse
	if content == "" {
		content = string(raw)
	}
	responseType := reply.ResponseType
	if responseType == "" {
		responseType = models.TypeEmpatheticReflection
	}

	return agentMessage(content, responseType, reply.EmotionalThemes, reply.CrisisDetected)
}

func agentMessage(content, msgType string, themes []string, crisis bool) models.Message {
	return models.Message{
		ID:              models.NewMessageID(),
		Role:            models.RoleAgent,
		Content:         content,
		Timestamp:       time.Now(),
		Type:            msgType,
		EmotionalThemes: themes,
		CrisisDetected:  crisis,
	}
}
