package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/acadlab/equipment-loan-engine/internal/domain"
	apperrors "github.com/acadlab/equipment-loan-engine/pkg/errors"
)

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

const loanColumns = `
	id, equipment_id, borrower_id, borrower_name, start_date, end_date, purpose, status,
	approver_id, approver_name, decided_at, reviewer_notes,
	initial_condition_id, final_condition_id, handed_over_at, returned_at,
	days_late, version, created_at, updated_at
`

// Create holds a row lock on the equipment while checking loanability
// and the open-request uniqueness, so two concurrent submissions cannot
// both pass the checks.
func (r *loanRepository) Create(ctx context.Context, loan *domain.LoanRequest) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var equipment domain.Equipment
	err = tx.GetContext(ctx, &equipment, `
		SELECT id, name, category, location, serial_number, status, available_for_loan, current_damage_report_id, created_at, updated_at
		FROM equipment
		WHERE id = $1
		FOR UPDATE
	`, loan.EquipmentID)
	if err != nil {
		return err
	}

	if !equipment.Loanable() {
		return apperrors.ErrEquipmentUnavailable
	}

	var open int
	err = tx.GetContext(ctx, &open, `
		SELECT COUNT(*)
		FROM loan_requests
		WHERE equipment_id = $1 AND borrower_id = $2 AND status IN ($3, $4)
	`, loan.EquipmentID, loan.BorrowerID, domain.LoanStatusPending, domain.LoanStatusApproved)
	if err != nil {
		return err
	}

	if open > 0 {
		return apperrors.ErrDuplicateActiveRequest
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO loan_requests (id, equipment_id, borrower_id, borrower_name, start_date, end_date, purpose, status, days_late, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, 1, $9, $10)
	`,
		loan.ID,
		loan.EquipmentID,
		loan.BorrowerID,
		loan.BorrowerName,
		loan.StartDate,
		loan.EndDate,
		loan.Purpose,
		loan.Status,
		loan.CreatedAt,
		loan.UpdatedAt,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *loanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LoanRequest, error) {
	query := `SELECT ` + loanColumns + ` FROM loan_requests WHERE id = $1`

	var loan domain.LoanRequest
	err := r.db.GetContext(ctx, &loan, query, id)
	if err != nil {
		return nil, err
	}

	return &loan, nil
}

// UpdateDecision writes an approve/reject/cancel outcome. The WHERE
// clause re-checks pending so a concurrent decision loses cleanly.
func (r *loanRepository) UpdateDecision(ctx context.Context, loan *domain.LoanRequest) error {
	query := `
		UPDATE loan_requests
		SET status = $2, approver_id = $3, approver_name = $4, decided_at = $5, reviewer_notes = $6, version = version + 1, updated_at = $7
		WHERE id = $1 AND status = $8
	`

	result, err := r.db.ExecContext(ctx, query,
		loan.ID,
		loan.Status,
		loan.ApproverID,
		loan.ApproverName,
		loan.DecidedAt,
		loan.ReviewerNotes,
		time.Now(),
		domain.LoanStatusPending,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperrors.ErrInvalidState
	}

	return nil
}

// MarkHandoff is guarded on both rows: the loan must still be approved
// at the caller's version, and the equipment must still be available.
// Either guard failing rolls the whole hand-off back, so a damage
// report filed between approval and hand-off is never overwritten.
func (r *loanRepository) MarkHandoff(ctx context.Context, loanID uuid.UUID, version int, conditionID uuid.UUID, at time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE loan_requests
		SET initial_condition_id = $3, handed_over_at = $4, version = version + 1, updated_at = $5
		WHERE id = $1 AND version = $2 AND status = $6 AND handed_over_at IS NULL
	`, loanID, version, conditionID, at, time.Now(), domain.LoanStatusApproved)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperrors.ErrInvalidState
	}

	result, err = tx.ExecContext(ctx, `
		UPDATE equipment
		SET status = $2, updated_at = $3
		WHERE id = (SELECT equipment_id FROM loan_requests WHERE id = $1) AND status = $4
	`, loanID, domain.EquipmentStatusOnLoan, time.Now(), domain.EquipmentStatusAvailable)
	if err != nil {
		return err
	}

	rows, err = result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperrors.ErrEquipmentUnavailable
	}

	return tx.Commit()
}

// MarkReturned closes the loan and decides the equipment's next status
// under the equipment row lock: a damage report committed at any point
// before this transaction keeps the unit damaged, everything else goes
// back to available. Returns the status the equipment ended up in.
func (r *loanRepository) MarkReturned(ctx context.Context, loanID uuid.UUID, version int, conditionID uuid.UUID, at time.Time, daysLate int) (string, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE loan_requests
		SET status = $3, final_condition_id = $4, returned_at = $5, days_late = $6, version = version + 1, updated_at = $7
		WHERE id = $1 AND version = $2 AND status = $8 AND handed_over_at IS NOT NULL
	`, loanID, version, domain.LoanStatusReturned, conditionID, at, daysLate, time.Now(), domain.LoanStatusApproved)
	if err != nil {
		return "", err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return "", err
	}
	if rows == 0 {
		return "", apperrors.ErrInvalidState
	}

	var equipment struct {
		ID     uuid.UUID `db:"id"`
		Status string    `db:"status"`
	}
	err = tx.GetContext(ctx, &equipment, `
		SELECT e.id, e.status
		FROM equipment e
		JOIN loan_requests l ON l.equipment_id = e.id
		WHERE l.id = $1
		FOR UPDATE OF e
	`, loanID)
	if err != nil {
		return "", err
	}

	target := domain.EquipmentStatusAvailable
	if equipment.Status == domain.EquipmentStatusDamaged {
		target = domain.EquipmentStatusDamaged
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE equipment
		SET status = $2, updated_at = $3
		WHERE id = $1
	`, equipment.ID, target, time.Now())
	if err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}

	return target, nil
}

func (r *loanRepository) ListByBorrower(ctx context.Context, borrowerID string) ([]*domain.LoanRequest, error) {
	query := `SELECT ` + loanColumns + ` FROM loan_requests WHERE borrower_id = $1 ORDER BY created_at DESC`

	var loans []*domain.LoanRequest
	err := r.db.SelectContext(ctx, &loans, query, borrowerID)
	if err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) ListByStatus(ctx context.Context, status string) ([]*domain.LoanRequest, error) {
	query := `SELECT ` + loanColumns + ` FROM loan_requests WHERE status = $1 ORDER BY created_at DESC`

	var loans []*domain.LoanRequest
	err := r.db.SelectContext(ctx, &loans, query, status)
	if err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) ListReturnedBetween(ctx context.Context, from, to time.Time) ([]*domain.LoanRequest, error) {
	query := `SELECT ` + loanColumns + ` FROM loan_requests WHERE status = $1 AND returned_at >= $2 AND returned_at < $3 ORDER BY returned_at`

	var loans []*domain.LoanRequest
	err := r.db.SelectContext(ctx, &loans, query, domain.LoanStatusReturned, from, to)
	if err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]*domain.LoanRequest, error) {
	query := `SELECT ` + loanColumns + ` FROM loan_requests WHERE status = $1 AND handed_over_at IS NOT NULL AND end_date < $2 ORDER BY end_date`

	var loans []*domain.LoanRequest
	err := r.db.SelectContext(ctx, &loans, query, domain.LoanStatusApproved, asOf)
	if err != nil {
		return nil, err
	}

	return loans, nil
}
