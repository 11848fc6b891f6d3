package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/acadlab/equipment-loan-engine/internal/domain"
)

// EquipmentRepository defines the interface for equipment data operations
type EquipmentRepository interface {
	// Create registers a new equipment unit
	Create(ctx context.Context, equipment *domain.Equipment) error

	// GetByID retrieves an equipment unit by ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Equipment, error)

	// List retrieves all equipment units
	List(ctx context.Context) ([]*domain.Equipment, error)

	// UpdateStatus updates status, loanability and the current damage
	// report reference in one write
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, availableForLoan bool, damageReportID *uuid.UUID) error
}

// LoanRepository defines the interface for loan request data operations
type LoanRepository interface {
	// Create inserts a new pending request. The equipment row is locked
	// for the duration of the check-and-insert so two concurrent calls
	// cannot both succeed; returns ErrEquipmentUnavailable or
	// ErrDuplicateActiveRequest when the guarded checks fail.
	Create(ctx context.Context, loan *domain.LoanRequest) error

	// GetByID retrieves a loan request by ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.LoanRequest, error)

	// UpdateDecision applies an approve/reject/cancel decision; only
	// legal while the request is still pending
	UpdateDecision(ctx context.Context, loan *domain.LoanRequest) error

	// MarkHandoff attaches the initial condition record and flips the
	// equipment to on_loan atomically, guarded by the loan version and
	// by the equipment still being available; returns
	// ErrEquipmentUnavailable when the equipment guard fails
	MarkHandoff(ctx context.Context, loanID uuid.UUID, version int, conditionID uuid.UUID, at time.Time) error

	// MarkReturned closes the loan with its final condition record and
	// moves the equipment to its next status atomically, guarded by the
	// loan version; the next status is decided under the equipment row
	// lock (damaged stays damaged, anything else reverts to available)
	// and returned to the caller
	MarkReturned(ctx context.Context, loanID uuid.UUID, version int, conditionID uuid.UUID, at time.Time, daysLate int) (string, error)

	// ListByBorrower retrieves all requests of one borrower
	ListByBorrower(ctx context.Context, borrowerID string) ([]*domain.LoanRequest, error)

	// ListByStatus retrieves all requests in a given status
	ListByStatus(ctx context.Context, status string) ([]*domain.LoanRequest, error)

	// ListReturnedBetween retrieves closed loans returned inside a period
	ListReturnedBetween(ctx context.Context, from, to time.Time) ([]*domain.LoanRequest, error)

	// ListOverdue retrieves handed-over loans past their requested end date
	ListOverdue(ctx context.Context, asOf time.Time) ([]*domain.LoanRequest, error)
}

// ConditionRepository defines the interface for condition snapshots
type ConditionRepository interface {
	// Create stores an immutable condition record
	Create(ctx context.Context, record *domain.ConditionRecord) error

	// GetByID retrieves a condition record by ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ConditionRecord, error)

	// ListByEquipment retrieves all records for an equipment unit
	ListByEquipment(ctx context.Context, equipmentID uuid.UUID) ([]*domain.ConditionRecord, error)
}

// DamageRepository defines the interface for damage report operations
type DamageRepository interface {
	// Create stores a report and forces the equipment out of
	// circulation in the same transaction
	Create(ctx context.Context, report *domain.DamageReport) error

	// GetByID retrieves a damage report by ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.DamageReport, error)

	// Resolve marks a report resolved; when it was the last unresolved
	// report for the unit, the equipment returns to circulation in the
	// same transaction (on_loan while a handed-over loan is still out,
	// available otherwise). Returns ErrInvalidState for an
	// already-resolved report.
	Resolve(ctx context.Context, reportID uuid.UUID, resolverID, notes string, at time.Time) error

	// HasUnresolved reports whether an unresolved report exists for the
	// equipment
	HasUnresolved(ctx context.Context, equipmentID uuid.UUID) (bool, error)

	// ListOpen retrieves all unresolved reports
	ListOpen(ctx context.Context) ([]*domain.DamageReport, error)

	// ListByEquipment retrieves all reports for an equipment unit
	ListByEquipment(ctx context.Context, equipmentID uuid.UUID) ([]*domain.DamageReport, error)
}

// PenaltyRepository defines the interface for penalty data operations
type PenaltyRepository interface {
	// Create stores a new penalty
	Create(ctx context.Context, penalty *domain.Penalty) error

	// GetByID retrieves a penalty by ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Penalty, error)

	// GetActiveByBorrower retrieves the borrower's active penalty, if any
	GetActiveByBorrower(ctx context.Context, borrowerID string) (*domain.Penalty, error)

	// ExtendActive pushes the end date of an active penalty
	ExtendActive(ctx context.Context, id uuid.UUID, newEnd time.Time) error

	// Cancel cancels an active penalty; only legal while active
	Cancel(ctx context.Context, id uuid.UUID, cancelledBy string) error

	// CompleteExpired flips active penalties past their end date to
	// completed and returns how many were touched
	CompleteExpired(ctx context.Context, now time.Time) (int64, error)

	// ListByBorrower retrieves all penalties of one borrower
	ListByBorrower(ctx context.Context, borrowerID string) ([]*domain.Penalty, error)
}
