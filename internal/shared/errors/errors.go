package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies failures of the data layer.
type ErrorType string

const (
	ErrorTypeConfiguration  ErrorType = "CONFIGURATION_ERROR"
	ErrorTypeSchemaMissing  ErrorType = "SCHEMA_MISSING_ERROR"
	ErrorTypeValidation     ErrorType = "VALIDATION_ERROR"
	ErrorTypeInfrastructure ErrorType = "INFRASTRUCTURE_ERROR"
	ErrorTypeAuthentication ErrorType = "AUTHENTICATION_ERROR"
	ErrorTypeNotFound       ErrorType = "NOT_FOUND_ERROR"
	ErrorTypeRateLimited    ErrorType = "RATE_LIMITED_ERROR"
	ErrorTypeInternal       ErrorType = "INTERNAL_ERROR"
)

// Common application errors
var (
	ErrNotFound          = errors.New("resource not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidToken      = errors.New("invalid token")
	ErrTokenExpired      = errors.New("token expired")
	ErrSchemaMissing     = errors.New("schema not provisioned")
	ErrNotInitialized    = errors.New("Database not initialized. Call Get first.")
	ErrDonationNotFound  = errors.New("Donation not found")
	ErrMedicineNotFound  = errors.New("Medicine not found")
	ErrProfileNotFound   = errors.New("Profile not found")
	ErrInvalidIdentifier = errors.New("invalid identifier")
)

// AppError represents a custom application error with context
type AppError struct {
	Type      ErrorType              `json:"type"`
	Message   string                 `json:"message"`
	Code      string                 `json:"code,omitempty"`
	HTTPCode  int                    `json:"-"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Cause     error                  `json:"-"`
	Component string                 `json:"component,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new application error
func NewAppError(errorType ErrorType, message string, httpCode int) *AppError {
	return &AppError{
		Type:     errorType,
		Message:  message,
		HTTPCode: httpCode,
		Details:  make(map[string]interface{}),
	}
}

func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithComponent(component string) *AppError {
	e.Component = component
	return e
}

func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewConfigurationError reports a missing or invalid configuration value.
// variable names the offending environment variable.
func NewConfigurationError(variable, message string) *AppError {
	return NewAppError(ErrorTypeConfiguration, message, http.StatusInternalServerError).
		WithDetail("variable", variable)
}

// NewSchemaMissingError reports that the backing table or collection does not exist.
func NewSchemaMissingError(resource string) *AppError {
	return NewAppError(ErrorTypeSchemaMissing, fmt.Sprintf("%s is not provisioned", resource), http.StatusServiceUnavailable).
		WithCause(ErrSchemaMissing)
}

func NewValidationError(message string) *AppError {
	return NewAppError(ErrorTypeValidation, message, http.StatusBadRequest)
}

func NewInfrastructureError(message string) *AppError {
	return NewAppError(ErrorTypeInfrastructure, message, http.StatusInternalServerError)
}

func NewAuthenticationError(message string) *AppError {
	return NewAppError(ErrorTypeAuthentication, message, http.StatusUnauthorized)
}

func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrorTypeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func NewRateLimitedError(message string) *AppError {
	return NewAppError(ErrorTypeRateLimited, message, http.StatusTooManyRequests)
}

func NewInternalError(message string) *AppError {
	return NewAppError(ErrorTypeInternal, message, http.StatusInternalServerError)
}

// WrapError wraps an error with context
func WrapError(err error, message string) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError(message).WithCause(err)
}

func isType(err error, t ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

// IsConfiguration checks if an error is a configuration error
func IsConfiguration(err error) bool {
	return isType(err, ErrorTypeConfiguration)
}

// IsSchemaMissing checks if an error reports an unprovisioned table or collection
func IsSchemaMissing(err error) bool {
	return isType(err, ErrorTypeSchemaMissing) || errors.Is(err, ErrSchemaMissing)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	if isType(err, ErrorTypeNotFound) {
		return true
	}
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrDonationNotFound) ||
		errors.Is(err, ErrMedicineNotFound) ||
		errors.Is(err, ErrProfileNotFound)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return isType(err, ErrorTypeValidation) || errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrInvalidIdentifier)
}

// IsAuthentication checks if an error is an authentication error
func IsAuthentication(err error) bool {
	if isType(err, ErrorTypeAuthentication) {
		return true
	}
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrTokenExpired)
}

// HTTPStatus returns the HTTP status carried by err, or 500.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.HTTPCode != 0 {
		return appErr.HTTPCode
	}
	if IsNotFound(err) {
		return http.StatusNotFound
	}
	if IsValidation(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
