// Package types holds the wire envelopes shared by every HTTP endpoint.
package types

// SuccessEnvelope wraps every successful response body under "data".
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public error payload. Details is only filled for error
// codes that allow exposing them to clients.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope nests APIError under "error" so clients can distinguish
// failures from data without inspecting the status code.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
