package dto

import (
	"net/http"

	"github.com/erp/backoffice/internal/domain/shared"
)

// Codes produced by the HTTP layer itself
const (
	// ErrCodeInternal is used for unclassified failures
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed bodies and path parameters
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	shared.CodeValidationFailed:  http.StatusBadRequest,
	shared.CodeSequenceExhausted: http.StatusServiceUnavailable,
	shared.CodeImmutableField:    http.StatusConflict,
	shared.CodeNotFound:          http.StatusNotFound,
	shared.CodeConflict:          http.StatusConflict,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeInternal:        http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
