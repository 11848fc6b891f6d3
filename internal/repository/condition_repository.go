package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/acadlab/equipment-loan-engine/internal/domain"
)

type conditionRepository struct {
	db *sqlx.DB
}

func NewConditionRepository(db *sqlx.DB) ConditionRepository {
	return &conditionRepository{db: db}
}

func (r *conditionRepository) Create(ctx context.Context, record *domain.ConditionRecord) error {
	query := `
		INSERT INTO condition_records (id, equipment_id, grade, observation, photo_refs, recorded_at, recorder_id, recorder_name, recorder_role)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.EquipmentID,
		record.Grade,
		record.Observation,
		record.PhotoRefs,
		record.RecordedAt,
		record.RecorderID,
		record.RecorderName,
		record.RecorderRole,
	)

	return err
}

func (r *conditionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ConditionRecord, error) {
	query := `
		SELECT id, equipment_id, grade, observation, photo_refs, recorded_at, recorder_id, recorder_name, recorder_role
		FROM condition_records
		WHERE id = $1
	`

	var record domain.ConditionRecord
	err := r.db.GetContext(ctx, &record, query, id)
	if err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *conditionRepository) ListByEquipment(ctx context.Context, equipmentID uuid.UUID) ([]*domain.ConditionRecord, error) {
	query := `
		SELECT id, equipment_id, grade, observation, photo_refs, recorded_at, recorder_id, recorder_name, recorder_role
		FROM condition_records
		WHERE equipment_id = $1
		ORDER BY recorded_at DESC
	`

	var records []*domain.ConditionRecord
	err := r.db.SelectContext(ctx, &records, query, equipmentID)
	if err != nil {
		return nil, err
	}

	return records, nil
}
