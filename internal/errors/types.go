package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType defines the category of the error
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "VALIDATION_ERROR"
	ErrorTypeDetection  ErrorType = "DETECTION_ERROR"
	ErrorTypeProvider   ErrorType = "PROVIDER_ERROR"
	ErrorTypeNotFound   ErrorType = "NOT_FOUND_ERROR"
	ErrorTypeInternal   ErrorType = "INTERNAL_ERROR"
)

// AppError represents a structured error for the application.
// Only Message reaches the caller; the rest is for logs and Sentry.
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	StatusCode int       `json:"statusCode"`
	ErrorCode  string    `json:"errorCode"`
	Err        error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Code returns the application-specific error code
func (e *AppError) Code() string {
	return e.ErrorCode
}

// StatusOf returns the HTTP status carried by err, or 500 for anything
// that is not an AppError.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.StatusCode != 0 {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// NewValidationError creates a new validation error (400)
func NewValidationError(message string, errorCode string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		ErrorCode:  errorCode,
	}
}

// NewNotFoundError creates a new not found error (404)
func NewNotFoundError(message string, errorCode string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
		ErrorCode:  errorCode,
	}
}

// NewDetectionError creates a new detection error (500). Every detection
// failure, including undecodable input, is reported as a server error.
func NewDetectionError(message string, errorCode string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeDetection,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		ErrorCode:  errorCode,
		Err:        err,
	}
}

// NewProviderError creates a new upstream provider error (502)
func NewProviderError(message string, errorCode string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeProvider,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		ErrorCode:  errorCode,
		Err:        err,
	}
}

// NewInternalError creates a new internal error (500)
func NewInternalError(message string, errorCode string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		ErrorCode:  errorCode,
		Err:        err,
	}
}
