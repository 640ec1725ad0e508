// Package chatapi is the HTTP client for the remote store-registration chat
// service: session creation, message exchange, validation, and history.
package chatapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nianverse/storechat/internal/domain"
	"github.com/nianverse/storechat/internal/logging"
)

// Client talks to the chat-family endpoints under a single base URL.
type Client struct {
	baseURL string
	client  *http.Client
	log     *logging.Logger
}

// New creates a chat service client. The timeout applies per request.
func New(baseURL string, timeout time.Duration, log *logging.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		log:     log.Sub("chatapi"),
	}
}

// SendResult is the decoded payload of a successful message exchange.
type SendResult struct {
	MessageID         string
	AiResponse        string
	ExtractedData     map[string]any
	ValidationResults map[string]any
	// State is the server's conversation snapshot for this turn, or nil
	// when the response did not carry one.
	State *domain.ConversationState
}

// CreateSession requests a new session keyed by the given user identifier.
func (c *Client) CreateSession(ctx context.Context, userIdentifier, businessTypeHint string) (domain.Session, error) {
	data, err := c.request(ctx, http.MethodPost, "/sessions", createSessionRequest{
		UserIdentifier:   userIdentifier,
		BusinessTypeHint: businessTypeHint,
	})
	if err != nil {
		return domain.Session{}, err
	}

	var payload createSessionPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return domain.Session{}, fmt.Errorf("parsing session payload: %w", err)
	}
	if payload.SessionID == "" {
		return domain.Session{}, &APIError{Message: "session response missing SessionId"}
	}

	expiresAt, err := time.Parse(time.RFC3339, payload.ExpiresAt)
	if err != nil {
		return domain.Session{}, fmt.Errorf("parsing session expiry %q: %w", payload.ExpiresAt, err)
	}

	return domain.Session{ID: payload.SessionID, ExpiresAt: expiresAt}, nil
}

// SendMessage delivers one turn's content to the service.
func (c *Client) SendMessage(ctx context.Context, sessionID, content string, metadata map[string]any) (*SendResult, error) {
	data, err := c.request(ctx, http.MethodPost, "/messages", sendMessageRequest{
		SessionID: sessionID,
		Message:   content,
		Metadata:  metadata,
	})
	if err != nil {
		return nil, err
	}

	var payload sendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parsing message payload: %w", err)
	}

	result := &SendResult{
		MessageID:         payload.MessageID,
		AiResponse:        payload.AiResponse,
		ExtractedData:     payload.ExtractedData,
		ValidationResults: payload.ValidationResults,
	}
	if ws := payload.ConversationState; ws != nil {
		state := domain.ConversationState{
			CurrentStep:        ws.CurrentStep,
			CollectedFields:    ws.CollectedFields,
			ProgressPercentage: ws.ProgressPercentage,
			BusinessType:       ws.BusinessType,
		}
		if ws.NextFieldToCollect != nil {
			state.NextFieldToCollect = *ws.NextFieldToCollect
		}
		result.State = &state
	}
	return result, nil
}

// ValidateSession asks the service whether enough data has been collected.
func (c *Client) ValidateSession(ctx context.Context, sessionID string, includeDetails bool) (*domain.ValidationResult, error) {
	data, err := c.request(ctx, http.MethodPost, "/validate", validateSessionRequest{
		SessionID:      sessionID,
		IncludeDetails: includeDetails,
	})
	if err != nil {
		return nil, err
	}

	var payload validatePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parsing validation payload: %w", err)
	}

	result := &domain.ValidationResult{
		IsComplete:         payload.IsComplete,
		CanCreateStore:     payload.CanCreateStore,
		CollectedData:      payload.CollectedData,
		MissingFields:      payload.MissingFields,
		ValidationErrors:   payload.ValidationErrors,
		ProgressPercentage: payload.ProgressPercentage,
	}
	if payload.NextFieldToCollect != nil {
		result.NextFieldToCollect = *payload.NextFieldToCollect
	}
	return result, nil
}

// History fetches the full message log for a session in chronological order.
func (c *Client) History(ctx context.Context, sessionID string) ([]domain.Message, error) {
	data, err := c.request(ctx, http.MethodGet, "/sessions/"+sessionID+"/messages", nil)
	if err != nil {
		return nil, err
	}

	var entries []historyEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing history payload: %w", err)
	}

	msgs := make([]domain.Message, 0, len(entries))
	for _, e := range entries {
		createdAt, _ := time.Parse(time.RFC3339, e.CreatedAt)
		msgs = append(msgs, domain.Message{
			ID:        e.ID,
			Role:      domain.Role(e.Role),
			Content:   e.Content,
			Origin:    domain.OriginServer,
			CreatedAt: createdAt,
		})
	}
	return msgs, nil
}

// request performs one call against the service and unwraps the envelope.
// A nil body produces a request without a payload (for GETs).
func (c *Client) request(ctx context.Context, method, endpoint string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.log.Debug().Str("method", method).Str("endpoint", endpoint).Msg("calling chat service")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var env Envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &APIError{
				HTTPStatus: resp.StatusCode,
				Message:    fmt.Sprintf("unexpected status %d", resp.StatusCode),
			}
		}
		return nil, fmt.Errorf("parsing response envelope: %w", err)
	}

	if env.Status != StatusOK {
		return nil, &APIError{
			HTTPStatus: resp.StatusCode,
			Status:     env.Status,
			Message:    env.Message,
			ErrorCode:  env.ErrorCode,
			Details:    env.Details,
		}
	}

	return env.Data, nil
}
