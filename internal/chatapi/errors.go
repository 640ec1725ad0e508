package chatapi

import "fmt"

// APIError is a caller-visible failure reported by the chat service, either
// as a non-success envelope status or a non-2xx HTTP response.
type APIError struct {
	HTTPStatus int    // HTTP status code, when the response was received
	Status     int    // envelope status, when an envelope was parsed
	Message    string // human-readable description from the service
	ErrorCode  string
	Details    string
}

func (e *APIError) Error() string {
	if e.ErrorCode != "" {
		return fmt.Sprintf("chat service: %s (%s)", e.Message, e.ErrorCode)
	}
	return fmt.Sprintf("chat service: %s", e.Message)
}
