package apperrors

import (
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrConfig      ErrorType = "CONFIG_ERROR"
	ErrValidation  ErrorType = "VALIDATION_ERROR"
	ErrAuthFailed  ErrorType = "AUTH_FAILED"
	ErrForbidden   ErrorType = "FORBIDDEN"
	ErrNotFound    ErrorType = "NOT_FOUND"
	ErrRateLimited ErrorType = "RATE_LIMITED"
	ErrInternal    ErrorType = "INTERNAL_ERROR"
)

// AppError is the standard error struct for the application
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"-"`
	Suggestion string    `json:"suggestion,omitempty"`
	HTTPStatus int       `json:"-"`
	Cause      error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func New(errType ErrorType, msg string, cause error) *AppError {
	return &AppError{
		Type:       errType,
		Message:    msg,
		Cause:      cause,
		HTTPStatus: mapTypeToStatus(errType),
		Suggestion: mapTypeToSuggestion(errType),
	}
}

func NewValidation(msg string) *AppError {
	return New(ErrValidation, msg, nil)
}

func NewRateLimited(msg string) *AppError {
	return New(ErrRateLimited, msg, nil)
}

func NewForbidden(msg string) *AppError {
	return New(ErrForbidden, msg, nil)
}

func NewNotFound(msg string) *AppError {
	return New(ErrNotFound, msg, nil)
}

func NewAuthFailed(msg string) *AppError {
	return New(ErrAuthFailed, msg, nil)
}

func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return New(ErrInternal, err.Error(), err)
}

func mapTypeToStatus(t ErrorType) int {
	switch t {
	case ErrValidation:
		return http.StatusBadRequest
	case ErrAuthFailed:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	case ErrNotFound:
		return http.StatusNotFound
	case ErrRateLimited:
		return http.StatusTooManyRequests
	case ErrConfig:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func mapTypeToSuggestion(t ErrorType) string {
	switch t {
	case ErrRateLimited:
		return "Slow down and retry after the reset time."
	case ErrAuthFailed:
		return "Check session token or webhook signature."
	case ErrForbidden:
		return "This operation is not enabled for your account yet."
	default:
		return ""
	}
}
