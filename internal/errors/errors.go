package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/zsiec/vtc/pkg/vtc"
)

// ErrorType represents the type of error.
type ErrorType string

const (
	ErrorTypeValidation  ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound    ErrorType = "NOT_FOUND"
	ErrorTypeInternal    ErrorType = "INTERNAL_ERROR"
	ErrorTypeRateLimit   ErrorType = "RATE_LIMIT"
	ErrorTypeServiceDown ErrorType = "SERVICE_DOWN"
)

// Error codes attached to validation failures.
const (
	CodeInvalidValue    = "INVALID_VALUE"
	CodeUnsupportedType = "UNSUPPORTED_TYPE"
	CodeInvalidJSON     = "INVALID_JSON"
	CodeDivisionByZero  = "DIVISION_BY_ZERO"
)

// AppError represents an application error with additional context.
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	HTTPStatus int                    `json:"-"`
	Err        error                  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetails adds details to the error.
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithCode adds an error code.
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// New creates a new AppError.
func New(errType ErrorType, message string, httpStatus int) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an existing error.
func Wrap(err error, errType ErrorType, message string, httpStatus int) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// NewValidationError creates a validation error.
func NewValidationError(message string) *AppError {
	return New(ErrorTypeValidation, message, http.StatusBadRequest)
}

// NewNotFoundError creates a not found error.
func NewNotFoundError(resource string) *AppError {
	return New(ErrorTypeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

// NewInternalError creates an internal server error.
func NewInternalError(message string) *AppError {
	return New(ErrorTypeInternal, message, http.StatusInternalServerError)
}

// WrapInternalError wraps an error as internal server error.
func WrapInternalError(err error, message string) *AppError {
	return Wrap(err, ErrorTypeInternal, message, http.StatusInternalServerError)
}

// NewRateLimitError creates a rate limit error.
func NewRateLimitError(message string) *AppError {
	return New(ErrorTypeRateLimit, message, http.StatusTooManyRequests)
}

// NewServiceDownError creates a service down error.
func NewServiceDownError(service string) *AppError {
	return New(ErrorTypeServiceDown, fmt.Sprintf("%s service is currently unavailable", service), http.StatusServiceUnavailable)
}

// NewInvalidJSONError reports a request body that could not be decoded.
func NewInvalidJSONError(err error) *AppError {
	return Wrap(err, ErrorTypeValidation, "request body is not valid JSON", http.StatusBadRequest).
		WithCode(CodeInvalidJSON)
}

// FromTimecodeError maps an error returned by the vtc package to an
// AppError. The message of the underlying error is passed through to
// the client since it describes the offending input.
func FromTimecodeError(err error) *AppError {
	if err == nil {
		return nil
	}

	if appErr, ok := GetAppError(err); ok {
		return appErr
	}

	switch {
	case stderrors.Is(err, vtc.ErrValue):
		code := CodeInvalidValue
		if stderrors.Is(err, vtc.ErrDivisionByZero) {
			code = CodeDivisionByZero
		}
		return Wrap(err, ErrorTypeValidation, err.Error(), http.StatusBadRequest).WithCode(code)
	case stderrors.Is(err, vtc.ErrType):
		return Wrap(err, ErrorTypeValidation, err.Error(), http.StatusBadRequest).WithCode(CodeUnsupportedType)
	default:
		return WrapInternalError(err, "An unexpected error occurred")
	}
}

// IsAppError checks if an error is, or wraps, an AppError.
func IsAppError(err error) bool {
	_, ok := GetAppError(err)
	return ok
}

// GetAppError extracts AppError from an error chain.
func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
