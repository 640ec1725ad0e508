package chatapi

import "encoding/json"

// StatusOK is the envelope status value the service uses for success.
// Any other value is a caller-visible failure described by Message.
const StatusOK = 2

// Envelope is the response wrapper used by every chat-family endpoint.
type Envelope struct {
	Status    int             `json:"status"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data,omitempty"`
	ErrorCode string          `json:"error_code,omitempty"`
	Details   string          `json:"details,omitempty"`
}

// Request bodies. Field names follow the service's wire format.

type createSessionRequest struct {
	UserIdentifier   string `json:"UserIdentifier"`
	BusinessTypeHint string `json:"BusinessTypeHint,omitempty"`
}

type sendMessageRequest struct {
	SessionID string         `json:"SessionId"`
	Message   string         `json:"Message"`
	Metadata  map[string]any `json:"Metadata,omitempty"`
}

type validateSessionRequest struct {
	SessionID      string `json:"SessionId"`
	IncludeDetails bool   `json:"IncludeDetails"`
}

// Response payloads (the Data field of a success envelope).

type createSessionPayload struct {
	SessionID string `json:"SessionId"`
	ExpiresAt string `json:"ExpiresAt"`
}

type sendMessagePayload struct {
	MessageID         string           `json:"MessageId"`
	AiResponse        string           `json:"AiResponse"`
	ExtractedData     map[string]any   `json:"ExtractedData,omitempty"`
	ValidationResults map[string]any   `json:"ValidationResults,omitempty"`
	ConversationState *wireConvState   `json:"ConversationState,omitempty"`
}

type wireConvState struct {
	CurrentStep        string   `json:"current_step"`
	CollectedFields    []string `json:"collected_fields"`
	NextFieldToCollect *string  `json:"next_field_to_collect"`
	ProgressPercentage int      `json:"progress_percentage"`
	BusinessType       string   `json:"business_type,omitempty"`
}

type validatePayload struct {
	IsComplete         bool           `json:"IsComplete"`
	CanCreateStore     bool           `json:"CanCreateStore"`
	CollectedData      map[string]any `json:"CollectedData,omitempty"`
	MissingFields      []string       `json:"MissingFields,omitempty"`
	ValidationErrors   []any          `json:"ValidationErrors,omitempty"`
	ProgressPercentage int            `json:"ProgressPercentage"`
	NextFieldToCollect *string        `json:"NextFieldToCollect"`
}

type historyEntry struct {
	ID        string `json:"ID"`
	SessionID string `json:"SessionId"`
	Role      string `json:"Role"`
	Content   string `json:"Content"`
	CreatedAt string `json:"CreatedAt"`
}
