package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// AppError is the unified participant error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates the cause is likely transient.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// --- Constructors ---

// UnsupportedMethod creates a configuration error for an HTTP method the
// participant cannot dispatch.
func UnsupportedMethod(method string) *AppError {
	return &AppError{
		Code:    ErrCodeConfiguration,
		Message: fmt.Sprintf("method %s not supported", strings.ToUpper(method)),
		Details: map[string]any{"method": method},
	}
}

// Configuration creates a configuration error for the given key.
func Configuration(key, reason string) *AppError {
	details := make(map[string]any)
	if key != "" {
		details["key"] = key
	}
	return &AppError{
		Code:    ErrCodeConfiguration,
		Message: reason,
		Details: details,
	}
}

// ConnectionSetup creates an error for a client that could not be built for target.
func ConnectionSetup(target string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeConnectionSetup,
		Message: fmt.Sprintf("unable to set up client for %s", target),
		Details: map[string]any{"target": target},
		Cause:   cause,
	}
}

// Transport creates an error for a request that failed on the wire.
func Transport(target string, cause error) *AppError {
	return &AppError{
		Code:      ErrCodeTransport,
		Message:   fmt.Sprintf("request to %s failed", target),
		Retryable: true,
		Details:   map[string]any{"target": target},
		Cause:     cause,
	}
}

// Timeout creates an error for a request to target that timed out.
func Timeout(target string, cause error) *AppError {
	return &AppError{
		Code:      ErrCodeTimeout,
		Message:   fmt.Sprintf("request to %s timed out", target),
		Retryable: true,
		Details:   map[string]any{"target": target},
		Cause:     cause,
	}
}

// Handler creates an error for a failing caller-supplied callback. The
// callback's error is kept untouched as the cause.
func Handler(name string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeHandler,
		Message: fmt.Sprintf("%s failed", name),
		Details: map[string]any{"handler": name},
		Cause:   cause,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidInput,
		Message: message,
	}
}

// Internal creates a new AppError for an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "an unexpected error occurred",
		Cause:   cause,
	}
}

// Wrap converts any error into an AppError. AppErrors anywhere in the chain are
// returned as-is; anything else becomes an internal error.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return Internal(err)
}

// Is reports whether err carries an AppError with the given code.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Code == code
}
