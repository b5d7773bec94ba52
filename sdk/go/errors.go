package outreach

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Sentinel errors returned by the SDK.
var (
	// ErrNoToken is returned when an admin call is made without a token.
	ErrNoToken = errors.New("outreach: no access token provided")

	// ErrDeliveryFailed is returned when the server accepted a submission
	// but every email provider failed.
	ErrDeliveryFailed = errors.New("outreach: email delivery failed")
)

// APIError represents an error response from the outreach API.
type APIError struct {
	StatusCode int               `json:"-"`
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("outreach: API error %d [%s]: %s", e.StatusCode, e.Code, e.Message)
}

// apiErrorWrapper matches the API error envelope.
type apiErrorWrapper struct {
	Error APIError `json:"error"`
}

func parseAPIError(statusCode int, body []byte) error {
	var wrapper apiErrorWrapper
	if err := json.Unmarshal(body, &wrapper); err == nil && wrapper.Error.Code != "" {
		wrapper.Error.StatusCode = statusCode
		return &wrapper.Error
	}

	return &APIError{
		StatusCode: statusCode,
		Code:       "unknown",
		Message:    string(body),
	}
}

// IsAPIError checks whether err is an APIError and returns it.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
