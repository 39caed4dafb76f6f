package errors

import (
	"errors"
	"fmt"
)

// Standard error codes
const (
	ErrInvalidRequest      = 400
	ErrUnauthorized        = 401
	ErrForbidden           = 403
	ErrNotFound            = 404
	ErrConflict            = 409
	ErrInternalServerError = 500

	// Bot-specific error codes (1000+)
	ErrInsufficientBalance = 1001
	ErrAlreadyClaimed      = 1002
	ErrSessionExpired      = 1003
	ErrSessionPlayed       = 1004
	ErrSessionNotYours     = 1005
	ErrStorage             = 1006
	ErrDelivery            = 1007
	ErrConfig              = 1008
)

// AppError represents a custom application error
type AppError struct {
	Code         int    `json:"code"`
	Message      string `json:"message"`
	DebugMessage string `json:"debug_message,omitempty"`
	Err          error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.DebugMessage != "" {
		return fmt.Sprintf("[%d] %s: %s", e.Code, e.Message, e.DebugMessage)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s [%v]", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewWithDebug creates a new AppError with a debug message
func NewWithDebug(code int, message string, debugMessage string) *AppError {
	return &AppError{
		Code:         code,
		Message:      message,
		DebugMessage: debugMessage,
	}
}

// Wrap wraps an existing error into an AppError
func Wrap(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetCode extracts the error code from an error.
// Unknown errors map to ErrInternalServerError.
func GetCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternalServerError
}

// Is reports whether err carries the given code.
func Is(err error, code int) bool {
	return GetCode(err) == code
}

// UserMessage returns the message a user should see for an error.
// Storage and unknown failures get a generic transient-failure notice,
// everything else surfaces its own message.
func UserMessage(err error) string {
	switch GetCode(err) {
	case ErrStorage, ErrInternalServerError:
		return "Something went wrong, please try again in a moment."
	default:
		var appErr *AppError
		if errors.As(err, &appErr) {
			return appErr.Message
		}
		return "Something went wrong, please try again in a moment."
	}
}
