package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/catalogadmin/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{shared.CodeValidation, http.StatusBadRequest},
		{shared.CodeAlreadyExists, http.StatusConflict},
		{shared.CodePayloadTooLarge, http.StatusRequestEntityTooLarge},
		{shared.CodeNotFound, http.StatusNotFound},
		{shared.CodeStorage, http.StatusInternalServerError},
		{shared.CodeDatabase, http.StatusInternalServerError},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeUnavailable, http.StatusServiceUnavailable},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.status, GetHTTPStatus(tt.code))
		})
	}
}

func TestErrorResponseJSON(t *testing.T) {
	t.Run("error envelope carries request id", func(t *testing.T) {
		raw, err := json.Marshal(NewErrorResponseWithRequestID(shared.CodeAlreadyExists, "SKU ABC-1 already exists, use edit instead", "req-1"))
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"success": false,
			"error": {"code": "ALREADY_EXISTS", "message": "SKU ABC-1 already exists, use edit instead"},
			"request_id": "req-1"
		}`, string(raw))
	})

	t.Run("validation details", func(t *testing.T) {
		details := []ValidationDetail{{Field: "title", Message: "This field is required"}}
		resp := NewValidationErrorResponse("Request validation failed", "req-2", details)

		assert.False(t, resp.Success)
		assert.Equal(t, shared.CodeValidation, resp.Error.Code)
		assert.Equal(t, details, resp.Error.Details)
	})

	t.Run("success omits error", func(t *testing.T) {
		raw, err := json.Marshal(NewSuccessResponse(map[string]int{"deleted": 2}))
		require.NoError(t, err)
		assert.JSONEq(t, `{"success": true, "data": {"deleted": 2}}`, string(raw))
	})
}
