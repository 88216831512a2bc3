package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{shared.CodeValidationFailed, http.StatusBadRequest},
		{shared.CodeSequenceExhausted, http.StatusServiceUnavailable},
		{shared.CodeImmutableField, http.StatusConflict},
		{shared.CodeNotFound, http.StatusNotFound},
		{shared.CodeConflict, http.StatusConflict},
		{ErrCodeBadRequest, http.StatusBadRequest},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeInternal, http.StatusInternalServerError},
		// Unknown code should return 500
		{"UNKNOWN_CODE", http.StatusInternalServerError},
		{"", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]string{"a"}, 41, 2, 20)
	require.NotNil(t, resp.Meta)
	assert.True(t, resp.Success)
	assert.Equal(t, 3, resp.Meta.TotalPages)

	empty := NewSuccessResponseWithMeta(nil, 0, 1, 0)
	assert.Equal(t, 0, empty.Meta.TotalPages)
}

func TestNewErrorResponse_JSON(t *testing.T) {
	resp := NewErrorResponse(ErrorInfo{
		Code:      shared.CodeValidationFailed,
		Message:   "Request validation failed",
		RequestID: "req-1",
		Issues:    shared.Issues{{Path: "requiredDate", Message: "must not be before poDate"}},
	})

	b, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, false, decoded["success"])
	assert.NotContains(t, decoded, "data")

	errObj := decoded["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_FAILED", errObj["code"])
	assert.Equal(t, "req-1", errObj["requestId"])
	assert.NotContains(t, errObj, "field")
	issues := errObj["issues"].([]any)
	require.Len(t, issues, 1)
	assert.Equal(t, "requiredDate", issues[0].(map[string]any)["path"])
}

func TestPagination(t *testing.T) {
	page, size := Pagination(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, size)

	page, size = Pagination(3, 500)
	assert.Equal(t, 3, page)
	assert.Equal(t, 100, size)
}
