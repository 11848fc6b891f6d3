package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrInvalidState           = errors.New("transition not legal from current state")
	ErrEquipmentUnavailable   = errors.New("equipment is not available for loan")
	ErrBorrowerBlocked        = errors.New("borrower is blocked by an active penalty")
	ErrDuplicateActiveRequest = errors.New("an active loan request already exists for this equipment and borrower")
	ErrInvalidDateRange       = errors.New("invalid loan date range")
	ErrMissingJustification   = errors.New("degraded condition grade requires a written observation")
	ErrForbidden              = errors.New("caller role is not allowed to perform this operation")
	ErrNotFound               = errors.New("entity not found")
)

// BusinessError represents a recoverable validation failure. It carries
// enough detail for the caller to render an actionable message; none of
// these leave partial writes behind.
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeInvalidState           = "INVALID_STATE"
	ErrCodeEquipmentUnavailable   = "EQUIPMENT_UNAVAILABLE"
	ErrCodeBorrowerBlocked        = "BORROWER_BLOCKED"
	ErrCodeDuplicateActiveRequest = "DUPLICATE_ACTIVE_REQUEST"
	ErrCodeInvalidDateRange       = "INVALID_DATE_RANGE"
	ErrCodeMissingJustification   = "MISSING_JUSTIFICATION"
	ErrCodeForbidden              = "FORBIDDEN"
	ErrCodeNotFound               = "NOT_FOUND"
	ErrCodeDatabaseError          = "DATABASE_ERROR"
)

// Wrap common errors with business context

func WrapInvalidState(entity, current, required string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidState,
		fmt.Sprintf("%s is in state %q, operation requires %q", entity, current, required),
		ErrInvalidState,
	)
}

func WrapEquipmentUnavailable(equipmentID, status string) *BusinessError {
	return NewBusinessError(
		ErrCodeEquipmentUnavailable,
		fmt.Sprintf("Equipment %s cannot be loaned (status %q)", equipmentID, status),
		ErrEquipmentUnavailable,
	)
}

func WrapBorrowerBlocked(borrowerID, until string) *BusinessError {
	return NewBusinessError(
		ErrCodeBorrowerBlocked,
		fmt.Sprintf("Borrower %s has an active penalty until %s", borrowerID, until),
		ErrBorrowerBlocked,
	)
}

func WrapDuplicateActiveRequest(equipmentID, borrowerID string) *BusinessError {
	return NewBusinessError(
		ErrCodeDuplicateActiveRequest,
		fmt.Sprintf("Borrower %s already has an open loan request for equipment %s", borrowerID, equipmentID),
		ErrDuplicateActiveRequest,
	)
}

func WrapInvalidDateRange(detail string) *BusinessError {
	return NewBusinessError(ErrCodeInvalidDateRange, detail, ErrInvalidDateRange)
}

func WrapMissingJustification(grade string, minLen int) *BusinessError {
	return NewBusinessError(
		ErrCodeMissingJustification,
		fmt.Sprintf("Grade %q requires an observation of at least %d characters", grade, minLen),
		ErrMissingJustification,
	)
}

func WrapForbidden(operation, role string) *BusinessError {
	return NewBusinessError(
		ErrCodeForbidden,
		fmt.Sprintf("Role %q may not perform %s", role, operation),
		ErrForbidden,
	)
}

func WrapNotFound(entity, id string) *BusinessError {
	return NewBusinessError(
		ErrCodeNotFound,
		fmt.Sprintf("%s with ID %s not found", entity, id),
		ErrNotFound,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}
