package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	LoanStatusPending   = "pending"
	LoanStatusApproved  = "approved"
	LoanStatusRejected  = "rejected"
	LoanStatusCancelled = "cancelled"
	LoanStatusReturned  = "returned"
)

// LoanRequest represents a single borrow request over its whole life:
// submission, decision, hand-off and return. Version is the optimistic
// lock used to serialize handoff/return against concurrent calls.
type LoanRequest struct {
	ID                 uuid.UUID  `json:"id" db:"id"`
	EquipmentID        uuid.UUID  `json:"equipment_id" db:"equipment_id"`
	BorrowerID         string     `json:"borrower_id" db:"borrower_id"`
	BorrowerName       string     `json:"borrower_name" db:"borrower_name"`
	StartDate          time.Time  `json:"start_date" db:"start_date"`
	EndDate            time.Time  `json:"end_date" db:"end_date"`
	Purpose            string     `json:"purpose" db:"purpose"`
	Status             string     `json:"status" db:"status"`
	ApproverID         *string    `json:"approver_id,omitempty" db:"approver_id"`
	ApproverName       *string    `json:"approver_name,omitempty" db:"approver_name"`
	DecidedAt          *time.Time `json:"decided_at,omitempty" db:"decided_at"`
	ReviewerNotes      *string    `json:"reviewer_notes,omitempty" db:"reviewer_notes"`
	InitialConditionID *uuid.UUID `json:"initial_condition_id,omitempty" db:"initial_condition_id"`
	FinalConditionID   *uuid.UUID `json:"final_condition_id,omitempty" db:"final_condition_id"`
	HandedOverAt       *time.Time `json:"handed_over_at,omitempty" db:"handed_over_at"`
	ReturnedAt         *time.Time `json:"returned_at,omitempty" db:"returned_at"`
	DaysLate           int        `json:"days_late" db:"days_late"`
	Version            int        `json:"version" db:"version"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
}

// Active reports whether the request still holds (or could come to
// hold) the equipment: pending, or approved and not yet returned.
func (l *LoanRequest) Active() bool {
	return l.Status == LoanStatusPending || l.Status == LoanStatusApproved
}

// HandedOver reports whether the physical hand-off already happened.
func (l *LoanRequest) HandedOver() bool {
	return l.HandedOverAt != nil
}

// DTOs for requests and responses

type CreateLoanRequest struct {
	EquipmentID string    `json:"equipment_id" validate:"required,uuid"`
	StartDate   time.Time `json:"start_date" validate:"required"`
	EndDate     time.Time `json:"end_date" validate:"required"`
	Purpose     string    `json:"purpose" validate:"required"`
}

type DecideLoanRequest struct {
	Notes string `json:"notes"`
}

// ReturnResult carries the informational grade comparison back to the
// caller; a degraded grade never blocks the return itself.
type ReturnResult struct {
	Loan         *LoanRequest `json:"loan"`
	InitialGrade string       `json:"initial_grade"`
	FinalGrade   string       `json:"final_grade"`
	Degraded     bool         `json:"degraded"`
	DaysLate     int          `json:"days_late"`
	Penalty      *Penalty     `json:"penalty,omitempty"`
}
