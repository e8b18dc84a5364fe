package api

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorCode is a machine-readable classification of a failed call.
type ErrorCode string

const (
	ErrBadRequest   ErrorCode = "bad_request"
	ErrUnauthorized ErrorCode = "unauthorized"
	ErrForbidden    ErrorCode = "forbidden"
	ErrNotFound     ErrorCode = "not_found"
	ErrConflict     ErrorCode = "conflict"
	ErrValidation   ErrorCode = "validation_failed"
	ErrRateLimited  ErrorCode = "rate_limited"
	ErrServerError  ErrorCode = "server_error"
	ErrTimeout      ErrorCode = "timeout"
	ErrNetwork      ErrorCode = "network"
	ErrUnknown      ErrorCode = "unknown"
)

// Suggestion returns a human-readable hint for resolving this error.
func (c ErrorCode) Suggestion() string {
	switch c {
	case ErrUnauthorized:
		return "Run 'lsx auth login' with a valid personal token"
	case ErrForbidden:
		return "Check the token's scopes for this store"
	case ErrNotFound:
		return "Check the path and the API version"
	case ErrRateLimited:
		return "Wait a moment before sending more requests"
	case ErrValidation, ErrBadRequest:
		return "Check the request parameters and body"
	case ErrConflict:
		return "The resource changed; fetch it again and retry"
	case ErrServerError:
		return "The store API returned a server error; try again later"
	case ErrTimeout:
		return "The request timed out; raise --timeout or check connectivity"
	case ErrNetwork:
		return "Check the domain prefix and your network connection"
	default:
		return ""
	}
}

// ErrorCodeFromStatus maps an HTTP status code to an ErrorCode.
func ErrorCodeFromStatus(statusCode int) ErrorCode {
	switch statusCode {
	case 400:
		return ErrBadRequest
	case 401:
		return ErrUnauthorized
	case 403:
		return ErrForbidden
	case 404:
		return ErrNotFound
	case 409:
		return ErrConflict
	case 422:
		return ErrValidation
	case 429:
		return ErrRateLimited
	default:
		if statusCode >= 500 && statusCode < 600 {
			return ErrServerError
		}
		return ErrUnknown
	}
}

// StructuredError is the JSON shape of an error in --output json mode.
type StructuredError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Suggestion string         `json:"suggestion,omitempty"`
	Context    map[string]any `json:"context,omitempty"`
}

func (e *StructuredError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// NewStructuredError creates a StructuredError from an ErrorCode and message.
func NewStructuredError(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:       code,
		Message:    message,
		Suggestion: code.Suggestion(),
	}
}

// StructuredErrorFromError classifies any error. It returns nil for nil.
func StructuredErrorFromError(err error) *StructuredError {
	if err == nil {
		return nil
	}

	var se *StructuredError
	if errors.As(err, &se) {
		return se
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		code := ErrorCodeFromStatus(statusErr.StatusCode)
		ctx := map[string]any{"status_code": statusErr.StatusCode}
		if statusErr.URL != "" {
			ctx["url"] = statusErr.URL
		}
		msg := statusErr.Message()
		if msg == "" {
			msg = statusErr.Error()
		}
		return &StructuredError{
			Code:       code,
			Message:    msg,
			Suggestion: code.Suggestion(),
			Context:    ctx,
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewStructuredError(ErrTimeout, err.Error())
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return NewStructuredError(ErrTimeout, err.Error())
		}
		return NewStructuredError(ErrNetwork, err.Error())
	}

	return &StructuredError{Code: ErrUnknown, Message: err.Error()}
}
