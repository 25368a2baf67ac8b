package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code
type ErrorCode int

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrUnauthorized
	ErrForbidden
	ErrConflict
	ErrInternal
)

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Error constructors
func NotFound(message string) *AppError {
	return &AppError{Code: ErrNotFound, Message: message}
}

func BadRequest(message string) *AppError {
	return &AppError{Code: ErrBadRequest, Message: message}
}

func Unauthorized(message string) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return &AppError{Code: ErrUnauthorized, Message: message}
}

func Forbidden(message string) *AppError {
	if message == "" {
		message = "permission denied"
	}
	return &AppError{Code: ErrForbidden, Message: message}
}

func Conflict(message string) *AppError {
	return &AppError{Code: ErrConflict, Message: message}
}

func Internal(message string) *AppError {
	if message == "" {
		message = "internal server error"
	}
	return &AppError{Code: ErrInternal, Message: message}
}

// Wrap attaches an underlying cause to an application error.
func (e *AppError) Wrap(err error) *AppError {
	e.Err = err
	return e
}

// Code extracts the application error code, defaulting to ErrInternal.
func Code(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// IsForbidden reports whether err carries the forbidden code.
func IsForbidden(err error) bool {
	return Code(err) == ErrForbidden
}

// IsNotFound reports whether err carries the not-found code.
func IsNotFound(err error) bool {
	return Code(err) == ErrNotFound
}
