package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/acadlab/equipment-loan-engine/internal/domain"
	apperrors "github.com/acadlab/equipment-loan-engine/pkg/errors"
)

type penaltyRepository struct {
	db *sqlx.DB
}

func NewPenaltyRepository(db *sqlx.DB) PenaltyRepository {
	return &penaltyRepository{db: db}
}

const penaltyColumns = `
	id, borrower_id, reason, start_date, end_date, status, rule_threshold, cancelled_by, created_at, updated_at
`

func (r *penaltyRepository) Create(ctx context.Context, penalty *domain.Penalty) error {
	query := `
		INSERT INTO penalties (id, borrower_id, reason, start_date, end_date, status, rule_threshold, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		penalty.ID,
		penalty.BorrowerID,
		penalty.Reason,
		penalty.StartDate,
		penalty.EndDate,
		penalty.Status,
		penalty.RuleThreshold,
		penalty.CreatedAt,
		penalty.UpdatedAt,
	)

	return err
}

func (r *penaltyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Penalty, error) {
	query := `SELECT ` + penaltyColumns + ` FROM penalties WHERE id = $1`

	var penalty domain.Penalty
	err := r.db.GetContext(ctx, &penalty, query, id)
	if err != nil {
		return nil, err
	}

	return &penalty, nil
}

// GetActiveByBorrower returns sql.ErrNoRows when the borrower carries
// no active penalty; at most one is active per borrower.
func (r *penaltyRepository) GetActiveByBorrower(ctx context.Context, borrowerID string) (*domain.Penalty, error) {
	query := `
		SELECT ` + penaltyColumns + `
		FROM penalties
		WHERE borrower_id = $1 AND status = $2
		ORDER BY end_date DESC
		LIMIT 1
	`

	var penalty domain.Penalty
	err := r.db.GetContext(ctx, &penalty, query, borrowerID, domain.PenaltyStatusActive)
	if err != nil {
		return nil, err
	}

	return &penalty, nil
}

func (r *penaltyRepository) ExtendActive(ctx context.Context, id uuid.UUID, newEnd time.Time) error {
	query := `
		UPDATE penalties
		SET end_date = $2, updated_at = $3
		WHERE id = $1 AND status = $4
	`

	result, err := r.db.ExecContext(ctx, query, id, newEnd, time.Now(), domain.PenaltyStatusActive)
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

func (r *penaltyRepository) Cancel(ctx context.Context, id uuid.UUID, cancelledBy string) error {
	query := `
		UPDATE penalties
		SET status = $2, cancelled_by = $3, updated_at = $4
		WHERE id = $1 AND status = $5
	`

	result, err := r.db.ExecContext(ctx, query, id, domain.PenaltyStatusCancelled, cancelledBy, time.Now(), domain.PenaltyStatusActive)
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

func (r *penaltyRepository) CompleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE penalties
		SET status = $1, updated_at = $2
		WHERE status = $3 AND end_date < $4
	`

	result, err := r.db.ExecContext(ctx, query, domain.PenaltyStatusCompleted, time.Now(), domain.PenaltyStatusActive, now)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func (r *penaltyRepository) ListByBorrower(ctx context.Context, borrowerID string) ([]*domain.Penalty, error) {
	query := `SELECT ` + penaltyColumns + ` FROM penalties WHERE borrower_id = $1 ORDER BY created_at DESC`

	var penalties []*domain.Penalty
	err := r.db.SelectContext(ctx, &penalties, query, borrowerID)
	if err != nil {
		return nil, err
	}

	return penalties, nil
}
