package errors

import (
	"fmt"
	"net/http"

	"inventory-ledger-service/internal/domain"
)

// StandardError represents a standardized error response
type StandardError struct {
	Code    string `json:"error"`   // Error code/type (e.g., "InvalidQuantity", "NotFound")
	Message string `json:"message"` // Human-readable error message
	Details string `json:"details"` // Additional details (quantities involved, field name, etc.)
}

// Error implements the error interface
func (e *StandardError) Error() string {
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for the error
func (e *StandardError) HTTPStatus() int {
	switch e.Code {
	case "InvalidRequest", "ValidationError", "InvalidQuantity", "InvalidAdjustment", "InvalidTransaction":
		return http.StatusBadRequest
	case "NotFound":
		return http.StatusNotFound
	case "VariantExists", "Conflict":
		return http.StatusConflict
	case "InsufficientStock", "InsufficientAvailable", "OverRelease":
		return http.StatusConflict
	case "ConcurrencyConflict", "BrokerConnectionError", "ServiceUnavailable":
		return http.StatusServiceUnavailable
	case "SerializationError", "DatabaseError", "InternalError":
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// NewStandardError creates a new StandardError
func NewStandardError(errorCode, message, details string) *StandardError {
	return &StandardError{
		Code:    errorCode,
		Message: message,
		Details: details,
	}
}

// FromDomain converts a domain error into a StandardError, preserving its
// code. Unknown errors become InternalError.
func FromDomain(err error, details string) *StandardError {
	if domainErr, ok := err.(*domain.Error); ok {
		return NewStandardError(domainErr.Code, domainErr.Message, details)
	}
	return NewInternalError("unexpected error", err)
}

// Common error constructors
func NewInvalidRequest(message, details string) *StandardError {
	return NewStandardError("InvalidRequest", message, details)
}

func NewValidationError(message, field string) *StandardError {
	return NewStandardError("ValidationError", message, fmt.Sprintf("Field: %s", field))
}

func NewNotFound(details string) *StandardError {
	return NewStandardError("NotFound", "stock record not found", details)
}

func NewInsufficientAvailable(available, requested int) *StandardError {
	return NewStandardError("InsufficientAvailable", "insufficient available stock",
		fmt.Sprintf("Available: %d, Requested: %d", available, requested))
}

func NewSerializationError(err error) *StandardError {
	return NewStandardError("SerializationError", "failed to serialize data", err.Error())
}

func NewDatabaseError(operation string, err error) *StandardError {
	return NewStandardError("DatabaseError", fmt.Sprintf("database operation failed: %s", operation), err.Error())
}

func NewBrokerConnectionError(err error) *StandardError {
	return NewStandardError("BrokerConnectionError", "failed to connect to event broker", err.Error())
}

func NewInternalError(message string, err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return NewStandardError("InternalError", message, details)
}
