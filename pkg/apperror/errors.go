package apperror

import (
	"errors"
	"net/http"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Common errors
var (
	ErrNotFound       = &AppError{Code: http.StatusNotFound, Message: "Resource not found"}
	ErrInternalServer = &AppError{Code: http.StatusInternalServerError, Message: "Internal server error"}
)

// Point-of-sale input validation. The caller must fix the input and resubmit.
var (
	ErrInvalidQuantity     = &AppError{Code: http.StatusUnprocessableEntity, Message: "Quantity must be a positive whole number"}
	ErrInvalidDiscount     = &AppError{Code: http.StatusUnprocessableEntity, Message: "Discount must be between zero and the payable amount"}
	ErrInvalidAmount       = &AppError{Code: http.StatusUnprocessableEntity, Message: "Amount is not valid"}
	ErrEmptyConcept        = &AppError{Code: http.StatusUnprocessableEntity, Message: "Movement concept is required"}
	ErrInvalidMovementType = &AppError{Code: http.StatusUnprocessableEntity, Message: "Movement type must be INCOME or EXPENSE"}
	ErrEmptyCart           = &AppError{Code: http.StatusUnprocessableEntity, Message: "Cart is empty"}
)

// Cash register and sale state violations. The caller should re-fetch state before retrying.
var (
	ErrAlreadyOpen      = &AppError{Code: http.StatusConflict, Message: "A cash register is already open for this business"}
	ErrNotOpen          = &AppError{Code: http.StatusConflict, Message: "Cash register is not open"}
	ErrAlreadyCancelled = &AppError{Code: http.StatusConflict, Message: "Sale is already cancelled"}
)

// NewAppError creates a new application error
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewNotFoundError creates a not found error with a custom message.
// It matches ErrNotFound with errors.Is.
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Message: resource + " not found",
	}
}

// Is reports whether target is a sentinel of the same kind. Sentinels match by
// identity; a not-found error built with NewNotFoundError matches ErrNotFound.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	if e == t {
		return true
	}
	return t == ErrNotFound && e.Code == http.StatusNotFound
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError converts an error to AppError if possible.
// Errors that are not AppErrors become a generic 500 so storage details never reach clients.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternalServer
}
