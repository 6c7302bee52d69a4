package core

import "errors"

// Error codes for domain errors surfaced to connections.
const (
	ErrCodeNotFound         = "not_found"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeStoreUnavailable = "store_unavailable"
	ErrCodeBadRequest       = "bad_request"
)

var (
	ErrSelfChat     = errors.New("cannot open a chat with yourself")
	ErrEmptyUserID  = errors.New("user id is required")
	ErrEmptyMessage = errors.New("message text is empty")
	ErrOversized    = errors.New("message text too large")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
