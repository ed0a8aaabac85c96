package api

import "net/http"

// Error represents an API error response.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (e *Error) Error() string {
	return e.Message
}

// Common error codes
const (
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// Standard errors
var (
	ErrNotFound = &Error{
		Code:    ErrCodeNotFound,
		Message: "Resource not found",
		Status:  http.StatusNotFound,
	}

	ErrInternalServer = &Error{
		Code:    ErrCodeInternalError,
		Message: "Internal server error",
		Status:  http.StatusInternalServerError,
	}
)

// NewBadRequest creates a bad request error with custom message.
func NewBadRequest(message string) *Error {
	return &Error{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewValidationError creates a validation error with custom message.
func NewValidationError(message string) *Error {
	return &Error{
		Code:    ErrCodeValidationFailed,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewConflict creates a conflict error with custom message.
func NewConflict(message string) *Error {
	return &Error{
		Code:    ErrCodeConflict,
		Message: message,
		Status:  http.StatusConflict,
	}
}

// NewNotFound creates a not found error with custom message.
func NewNotFound(message string) *Error {
	return &Error{
		Code:    ErrCodeNotFound,
		Message: message,
		Status:  http.StatusNotFound,
	}
}
