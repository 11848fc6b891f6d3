package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/acadlab/equipment-loan-engine/internal/domain"
	apperrors "github.com/acadlab/equipment-loan-engine/pkg/errors"
)

type damageRepository struct {
	db *sqlx.DB
}

func NewDamageRepository(db *sqlx.DB) DamageRepository {
	return &damageRepository{db: db}
}

const damageColumns = `
	id, equipment_id, category, severity, description, photo_refs,
	reporter_id, reporter_name, reporter_role, reported_at,
	resolved, resolver_id, resolver_notes, resolved_at
`

// Create inserts the report and forces the equipment out of
// circulation in the same transaction, regardless of any loan in
// progress.
func (r *damageRepository) Create(ctx context.Context, report *domain.DamageReport) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO damage_reports (id, equipment_id, category, severity, description, photo_refs, reporter_id, reporter_name, reporter_role, reported_at, resolved)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, false)
	`,
		report.ID,
		report.EquipmentID,
		report.Category,
		report.Severity,
		report.Description,
		report.PhotoRefs,
		report.ReporterID,
		report.ReporterName,
		report.ReporterRole,
		report.ReportedAt,
	)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE equipment
		SET status = $2, available_for_loan = false, current_damage_report_id = $3, updated_at = $4
		WHERE id = $1
	`, report.EquipmentID, domain.EquipmentStatusDamaged, report.ID, time.Now())
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *damageRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.DamageReport, error) {
	query := `SELECT ` + damageColumns + ` FROM damage_reports WHERE id = $1`

	var report domain.DamageReport
	err := r.db.GetContext(ctx, &report, query, id)
	if err != nil {
		return nil, err
	}

	return &report, nil
}

// Resolve marks the report resolved exactly once; the guarded UPDATE
// makes a second call surface ErrInvalidState rather than repeating the
// equipment side effect.
func (r *damageRepository) Resolve(ctx context.Context, reportID uuid.UUID, resolverID, notes string, at time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var equipmentID uuid.UUID
	err = tx.GetContext(ctx, &equipmentID, `
		UPDATE damage_reports
		SET resolved = true, resolver_id = $2, resolver_notes = $3, resolved_at = $4
		WHERE id = $1 AND resolved = false
		RETURNING equipment_id
	`, reportID, resolverID, notes, at)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.ErrInvalidState
		}
		return err
	}

	var remaining int
	err = tx.GetContext(ctx, &remaining, `
		SELECT COUNT(*) FROM damage_reports WHERE equipment_id = $1 AND resolved = false
	`, equipmentID)
	if err != nil {
		return err
	}

	if remaining == 0 {
		// A handed-over loan means the unit is physically with the
		// borrower, so it goes back to on_loan, not available; the
		// return flow releases it.
		var outstanding int
		err = tx.GetContext(ctx, &outstanding, `
			SELECT COUNT(*) FROM loan_requests
			WHERE equipment_id = $1 AND status = $2 AND handed_over_at IS NOT NULL
		`, equipmentID, domain.LoanStatusApproved)
		if err != nil {
			return err
		}

		target := domain.EquipmentStatusAvailable
		if outstanding > 0 {
			target = domain.EquipmentStatusOnLoan
		}

		// Loanability and the report reference clear unconditionally;
		// the status only moves when the unit is actually damaged.
		_, err = tx.ExecContext(ctx, `
			UPDATE equipment
			SET status = CASE WHEN status = $4 THEN $2 ELSE status END,
			    available_for_loan = true,
			    current_damage_report_id = NULL,
			    updated_at = $3
			WHERE id = $1
		`, equipmentID, target, time.Now(), domain.EquipmentStatusDamaged)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *damageRepository) HasUnresolved(ctx context.Context, equipmentID uuid.UUID) (bool, error) {
	query := `SELECT COUNT(*) FROM damage_reports WHERE equipment_id = $1 AND resolved = false`

	var count int
	err := r.db.GetContext(ctx, &count, query, equipmentID)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *damageRepository) ListOpen(ctx context.Context) ([]*domain.DamageReport, error) {
	query := `SELECT ` + damageColumns + ` FROM damage_reports WHERE resolved = false ORDER BY reported_at DESC`

	var reports []*domain.DamageReport
	err := r.db.SelectContext(ctx, &reports, query)
	if err != nil {
		return nil, err
	}

	return reports, nil
}

func (r *damageRepository) ListByEquipment(ctx context.Context, equipmentID uuid.UUID) ([]*domain.DamageReport, error) {
	query := `SELECT ` + damageColumns + ` FROM damage_reports WHERE equipment_id = $1 ORDER BY reported_at DESC`

	var reports []*domain.DamageReport
	err := r.db.SelectContext(ctx, &reports, query, equipmentID)
	if err != nil {
		return nil, err
	}

	return reports, nil
}
