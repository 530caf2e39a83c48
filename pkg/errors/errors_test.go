package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	err := NewAppError(ErrCodeValidation, "title is required", http.StatusBadRequest)
	assert.Equal(t, "VALIDATION_FAILED: title is required", err.Error())
}

func TestAppError_WithCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewInfrastructureError(cause, "Internal Server Error")

	assert.Same(t, cause, errors.Unwrap(err))
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus)
	assert.True(t, errors.Is(err, cause))
}

func TestAppError_WithContext(t *testing.T) {
	err := NewValidationError("bad")
	err.WithContext("field", "title").WithContext("length", 0)

	assert.Equal(t, "title", err.Context["field"])
	assert.Equal(t, 0, err.Context["length"])
}

func TestConstructors_StatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    *AppError
		code   ErrorCode
		status int
	}{
		{"auth rejected", NewAuthRejectedError(nil), ErrCodeAuthRejected, http.StatusUnauthorized},
		{"validation", NewValidationError("x"), ErrCodeValidation, http.StatusBadRequest},
		{"infrastructure", NewInfrastructureError(errors.New("down"), "x"), ErrCodeInfrastructure, http.StatusInternalServerError},
		{"internal", NewInternalError("x"), ErrCodeInternal, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, tc.err.Code)
			assert.Equal(t, tc.status, tc.err.HTTPStatus)
		})
	}
}

func TestGetAppError(t *testing.T) {
	appErr := NewValidationError("test")

	assert.Same(t, appErr, GetAppError(appErr))

	wrapped := fmt.Errorf("handler: %w", appErr)
	require.NotNil(t, GetAppError(wrapped))
	assert.True(t, Is(wrapped, ErrCodeValidation))
	assert.False(t, Is(wrapped, ErrCodeInfrastructure))

	regular := errors.New("regular error")
	assert.Nil(t, GetAppError(regular))
	assert.Nil(t, GetAppError(nil))
}
