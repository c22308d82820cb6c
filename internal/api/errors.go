package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is the structured failure every API operation returns. Flow
// controllers never observe raw transport errors: a non-success HTTP status
// yields an Error carrying the server's detail message, the status code, and
// the parsed body; a transport failure yields an Error with StatusCode 0 and
// a generic network message.
type Error struct {
	// Message is the human-readable failure text, taken from the response
	// body's "detail" field when present.
	Message string

	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int

	// Body is the parsed response body, nil for transport failures. Kept so
	// a future structured error-code contract can be adopted without
	// reshaping the taxonomy.
	Body map[string]any
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
}

// IsNetwork reports a transport failure: no response was received at all.
func (e *Error) IsNetwork() bool { return e.StatusCode == 0 }

// IsAuth reports an authentication failure (401).
func (e *Error) IsAuth() bool { return e.StatusCode == http.StatusUnauthorized }

// IsForbidden reports a 403. The backend returns 403 for at least two
// materially different conditions (not enrolled for MFA, account not active)
// with no structured discriminator; callers must not assume which applies.
func (e *Error) IsForbidden() bool { return e.StatusCode == http.StatusForbidden }

// IsNotFound reports a 404.
func (e *Error) IsNotFound() bool { return e.StatusCode == http.StatusNotFound }

// IsValidation reports a request validation failure (400 or 422).
func (e *Error) IsValidation() bool {
	return e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusUnprocessableEntity
}

// IsServer reports a server-side failure (>= 500).
func (e *Error) IsServer() bool { return e.StatusCode >= http.StatusInternalServerError }

// AsError unwraps err into the structured API error form.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

const (
	genericErrorMessage = "An error occurred"
	networkErrorMessage = "Network error. Please check your connection."
)
