package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeAuthExchange indicates the backend rejected an identity
	// token during the login exchange. Not retried automatically.
	ErrCodeAuthExchange ErrorCode = "auth_exchange"
	// ErrCodeSessionExpired indicates the local session record failed
	// its validity check. Treated silently as unauthenticated.
	ErrCodeSessionExpired ErrorCode = "session_expired"
	// ErrCodeAuthRequired indicates the backend signaled an
	// authentication failure (401/403 or a login redirect). Triggers a
	// forced logout plus navigation to the login surface.
	ErrCodeAuthRequired ErrorCode = "auth_required"
	// ErrCodeConnectivity indicates no response was received. Retryable;
	// carries no authentication signal, so the session is untouched.
	ErrCodeConnectivity ErrorCode = "connectivity"
	// ErrCodeDomainFetch indicates a non-auth 4xx/5xx on a data
	// endpoint. Surfaced inline; session untouched.
	ErrCodeDomainFetch ErrorCode = "domain_fetch"
	// ErrCodeValidation indicates invalid input data.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeInternal indicates an unexpected client-side failure.
	ErrCodeInternal ErrorCode = "internal"
)

// AppError represents a structured application error with a code,
// message, and optional cause. It supports error wrapping and
// unwrapping for use with errors.Is and errors.As.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Message is a human-readable error message
	Message string
	// Cause is the underlying error that caused this error (optional)
	Cause error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// AuthExchange creates a new AuthExchange error.
func AuthExchange(message string) *AppError {
	return &AppError{Code: ErrCodeAuthExchange, Message: message}
}

// AuthExchangef creates a new AuthExchange error with formatted message.
func AuthExchangef(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeAuthExchange, Message: fmt.Sprintf(format, args...)}
}

// SessionExpired creates a new SessionExpired error.
func SessionExpired(message string) *AppError {
	return &AppError{Code: ErrCodeSessionExpired, Message: message}
}

// AuthRequired creates a new AuthRequired error.
func AuthRequired(message string) *AppError {
	return &AppError{Code: ErrCodeAuthRequired, Message: message}
}

// AuthRequiredf creates a new AuthRequired error with formatted message.
func AuthRequiredf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeAuthRequired, Message: fmt.Sprintf(format, args...)}
}

// Connectivity creates a new Connectivity error.
func Connectivity(message string) *AppError {
	return &AppError{Code: ErrCodeConnectivity, Message: message}
}

// DomainFetch creates a new DomainFetch error.
func DomainFetch(message string) *AppError {
	return &AppError{Code: ErrCodeDomainFetch, Message: message}
}

// DomainFetchf creates a new DomainFetch error with formatted message.
func DomainFetchf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeDomainFetch, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a new Validation error.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message}
}

// Validationf creates a new Validation error with a formatted message.
func Validationf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: fmt.Sprintf(format, args...)}
}

// Internal creates a new Internal error.
func Internal(message string) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: message}
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an existing error with an AppError and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsAuthExchange checks if an error is an AuthExchange error.
func IsAuthExchange(err error) bool {
	return isCode(err, ErrCodeAuthExchange)
}

// IsSessionExpired checks if an error is a SessionExpired error.
func IsSessionExpired(err error) bool {
	return isCode(err, ErrCodeSessionExpired)
}

// IsAuthRequired checks if an error is an AuthRequired error.
func IsAuthRequired(err error) bool {
	return isCode(err, ErrCodeAuthRequired)
}

// IsConnectivity checks if an error is a Connectivity error.
func IsConnectivity(err error) bool {
	return isCode(err, ErrCodeConnectivity)
}

// IsDomainFetch checks if an error is a DomainFetch error.
func IsDomainFetch(err error) bool {
	return isCode(err, ErrCodeDomainFetch)
}

// IsValidation checks if an error is a Validation error.
func IsValidation(err error) bool {
	return isCode(err, ErrCodeValidation)
}

// IsInternal checks if an error is an Internal error.
func IsInternal(err error) bool {
	return isCode(err, ErrCodeInternal)
}

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
