package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/acadlab/equipment-loan-engine/internal/domain"
	"github.com/acadlab/equipment-loan-engine/internal/photo"
	"github.com/acadlab/equipment-loan-engine/internal/repository"
	apperrors "github.com/acadlab/equipment-loan-engine/pkg/errors"
)

// ConditionService captures condition snapshots. It is a pure capture
// component: it never mutates equipment or loan state; callers decide
// what a record means.
type ConditionService struct {
	conditionRepo     repository.ConditionRepository
	photos            photo.Store
	minObservationLen int
}

func NewConditionService(conditionRepo repository.ConditionRepository, photos photo.Store, minObservationLen int) *ConditionService {
	return &ConditionService{
		conditionRepo:     conditionRepo,
		photos:            photos,
		minObservationLen: minObservationLen,
	}
}

// Record stores an immutable snapshot. A fair or poor grade without a
// written observation of the configured minimum length is refused.
func (s *ConditionService) Record(ctx context.Context, equipmentID uuid.UUID, input domain.ConditionInput, recordedBy domain.Actor) (*domain.ConditionRecord, error) {
	if !domain.ValidGrade(input.Grade) {
		return nil, apperrors.WrapInvalidState("condition grade", input.Grade, "excellent|good|fair|poor")
	}

	observation := strings.TrimSpace(input.Observation)
	if domain.DegradedGrade(input.Grade) && len([]rune(observation)) < s.minObservationLen {
		return nil, apperrors.WrapMissingJustification(input.Grade, s.minObservationLen)
	}

	refs := make([]string, 0, len(input.Photos))
	for _, p := range input.Photos {
		ref, err := s.photos.Save(ctx, p.Data, p.Ext)
		if err != nil {
			return nil, apperrors.NewBusinessError(apperrors.ErrCodeInvalidState, "photo upload rejected: "+err.Error(), err)
		}
		refs = append(refs, ref)
	}

	record := &domain.ConditionRecord{
		ID:           uuid.New(),
		EquipmentID:  equipmentID,
		Grade:        input.Grade,
		Observation:  observation,
		PhotoRefs:    refs,
		RecordedAt:   time.Now(),
		RecorderID:   recordedBy.ID,
		RecorderName: recordedBy.Name,
		RecorderRole: recordedBy.Role,
	}

	if err := s.conditionRepo.Create(ctx, record); err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	return record, nil
}

func (s *ConditionService) Get(ctx context.Context, id uuid.UUID) (*domain.ConditionRecord, error) {
	record, err := s.conditionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.WrapNotFound("ConditionRecord", id.String())
		}
		return nil, apperrors.WrapDatabaseError(err)
	}

	return record, nil
}

func (s *ConditionService) ListByEquipment(ctx context.Context, equipmentID uuid.UUID) ([]*domain.ConditionRecord, error) {
	records, err := s.conditionRepo.ListByEquipment(ctx, equipmentID)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	return records, nil
}
