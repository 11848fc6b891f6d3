package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/acadlab/equipment-loan-engine/internal/domain"
)

type equipmentRepository struct {
	db *sqlx.DB
}

func NewEquipmentRepository(db *sqlx.DB) EquipmentRepository {
	return &equipmentRepository{db: db}
}

func (r *equipmentRepository) Create(ctx context.Context, equipment *domain.Equipment) error {
	query := `
		INSERT INTO equipment (id, name, category, location, serial_number, status, available_for_loan, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		equipment.ID,
		equipment.Name,
		equipment.Category,
		equipment.Location,
		equipment.SerialNumber,
		equipment.Status,
		equipment.AvailableForLoan,
		equipment.CreatedAt,
		equipment.UpdatedAt,
	)

	return err
}

func (r *equipmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Equipment, error) {
	query := `
		SELECT id, name, category, location, serial_number, status, available_for_loan, current_damage_report_id, created_at, updated_at
		FROM equipment
		WHERE id = $1
	`

	var equipment domain.Equipment
	err := r.db.GetContext(ctx, &equipment, query, id)
	if err != nil {
		return nil, err
	}

	return &equipment, nil
}

func (r *equipmentRepository) List(ctx context.Context) ([]*domain.Equipment, error) {
	query := `
		SELECT id, name, category, location, serial_number, status, available_for_loan, current_damage_report_id, created_at, updated_at
		FROM equipment
		ORDER BY name
	`

	var equipment []*domain.Equipment
	err := r.db.SelectContext(ctx, &equipment, query)
	if err != nil {
		return nil, err
	}

	return equipment, nil
}

func (r *equipmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, availableForLoan bool, damageReportID *uuid.UUID) error {
	query := `
		UPDATE equipment
		SET status = $2, available_for_loan = $3, current_damage_report_id = $4, updated_at = $5
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, status, availableForLoan, damageReportID, time.Now())
	return err
}
