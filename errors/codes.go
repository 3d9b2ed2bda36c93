package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Invocation errors
const (
	// ErrCodeConfiguration indicates an invalid or unsupported setting, such as
	// an HTTP method the participant cannot dispatch.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"
	// ErrCodeConnectionSetup indicates the HTTP client for a target could not be built.
	ErrCodeConnectionSetup ErrorCode = "CONNECTION_SETUP_ERROR"
	// ErrCodeTransport indicates a network or protocol failure during dispatch.
	ErrCodeTransport ErrorCode = "TRANSPORT_ERROR"
	// ErrCodeTimeout indicates the request did not complete in time.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeHandler indicates a caller-supplied data preparer or response handler failed.
	ErrCodeHandler ErrorCode = "HANDLER_ERROR"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected internal failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// retryableCodes marks codes whose cause is usually transient. The participant
// itself never retries; the flag is surfaced so engines can decide.
var retryableCodes = map[ErrorCode]bool{
	ErrCodeTransport: true,
	ErrCodeTimeout:   true,
}

// IsRetryableCode returns true if the error code indicates a transient failure.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
