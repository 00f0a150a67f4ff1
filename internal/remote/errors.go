package remote

import "fmt"

// ErrorCode represents specific remote classification failures.
type ErrorCode string

const (
	ErrNotConfigured  ErrorCode = "NOT_CONFIGURED"
	ErrUnavailable    ErrorCode = "REMOTE_UNAVAILABLE"
	ErrRateLimited    ErrorCode = "REMOTE_RATE_LIMITED"
	ErrRejected       ErrorCode = "REMOTE_REJECTED"
	ErrEmptyResponse  ErrorCode = "EMPTY_RESPONSE"
	ErrBadResponse    ErrorCode = "BAD_RESPONSE"
	ErrQueueClosed    ErrorCode = "QUEUE_CLOSED"
	ErrQueueCancelled ErrorCode = "QUEUE_CANCELLED"
)

// Error is a structured error for remote classification failures.
type Error struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRetryable returns whether this error is retryable.
func (e *Error) IsRetryable() bool {
	return e.Retryable
}
