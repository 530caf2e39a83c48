package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies failures surfaced at the HTTP boundary.
type ErrorCode string

const (
	ErrCodeAuthRejected   ErrorCode = "AUTH_REJECTED"
	ErrCodeValidation     ErrorCode = "VALIDATION_FAILED"
	ErrCodeInfrastructure ErrorCode = "INFRASTRUCTURE_FAILURE"
	ErrCodeInternal       ErrorCode = "INTERNAL_ERROR"
)

// AppError carries an error kind, the status it maps to and the internal
// cause. Only Message is ever shown to the client.
type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
	Context    map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext attaches a server-side logging field.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

func NewAppError(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Context:    make(map[string]interface{}),
	}
}

func WrapError(err error, code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Cause:      err,
		Context:    make(map[string]interface{}),
	}
}

func NewAuthRejectedError(cause error) *AppError {
	return WrapError(cause, ErrCodeAuthRejected, "Unauthorized", http.StatusUnauthorized)
}

func NewValidationError(message string) *AppError {
	return NewAppError(ErrCodeValidation, message, http.StatusBadRequest)
}

func NewInfrastructureError(cause error, message string) *AppError {
	return WrapError(cause, ErrCodeInfrastructure, message, http.StatusInternalServerError)
}

func NewInternalError(message string) *AppError {
	return NewAppError(ErrCodeInternal, message, http.StatusInternalServerError)
}

// GetAppError extracts the first AppError from the error chain.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code ErrorCode) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Code == code
}
