package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents different types of errors in the system
type ErrorType string

const (
	// ErrorTypeConfig indicates a missing or invalid configuration value
	ErrorTypeConfig ErrorType = "CONFIG"

	// ErrorTypeDateParse indicates a malformed explicit date entry
	ErrorTypeDateParse ErrorType = "DATE_PARSE"

	// ErrorTypeAuth indicates the remote session expired or was rejected
	ErrorTypeAuth ErrorType = "AUTH"

	// ErrorTypeTransport indicates a non-auth network, HTTP or decoding failure
	ErrorTypeTransport ErrorType = "TRANSPORT"

	// ErrorTypeFatal indicates the re-authentication protocol was exhausted
	ErrorTypeFatal ErrorType = "FATAL"

	// ErrorTypeNotification indicates a message could not be delivered
	ErrorTypeNotification ErrorType = "NOTIFICATION"

	// ErrorTypeConfigStore indicates persisting the session token or enable flag failed
	ErrorTypeConfigStore ErrorType = "CONFIG_STORE"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// IsType reports whether err, or any error it wraps, is an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	for err != nil {
		if !stderrors.As(err, &appErr) {
			return false
		}
		if appErr.Type == errType {
			return true
		}
		err = appErr.Err
	}
	return false
}

// NewConfigError creates a new configuration error
func NewConfigError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeConfig,
		Message: message,
	}
}

// NewDateParseError creates a new date parse error
func NewDateParseError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeDateParse,
		Message: message,
		Err:     err,
	}
}

// NewAuthError creates a new authentication error
func NewAuthError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeAuth,
		Message: message,
	}
}

// NewTransportError creates a new transport error
func NewTransportError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeTransport,
		Message: message,
		Err:     err,
	}
}

// NewFatalError creates a new fatal error
func NewFatalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeFatal,
		Message: message,
		Err:     err,
	}
}

// NewNotificationError creates a new notification delivery error
func NewNotificationError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeNotification,
		Message: message,
		Err:     err,
	}
}

// NewConfigStoreError creates a new config store error
func NewConfigStoreError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeConfigStore,
		Message: message,
		Err:     err,
	}
}
