package dto

import (
	"net/http"

	"github.com/catalogadmin/backend/internal/domain/shared"
)

// Codes raised by the HTTP layer itself. Domain codes come from the shared
// package.
const (
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeUnavailable     = "SERVICE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	shared.CodeValidation:      http.StatusBadRequest,
	shared.CodeNotFound:        http.StatusNotFound,
	shared.CodeAlreadyExists:   http.StatusConflict,
	shared.CodePayloadTooLarge: http.StatusRequestEntityTooLarge,
	shared.CodeStorage:         http.StatusInternalServerError,
	shared.CodeDatabase:        http.StatusInternalServerError,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeUnauthorized:    http.StatusUnauthorized,
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeUnavailable:     http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
