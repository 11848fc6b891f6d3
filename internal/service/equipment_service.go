package service

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/acadlab/equipment-loan-engine/internal/domain"
	"github.com/acadlab/equipment-loan-engine/internal/notify"
	"github.com/acadlab/equipment-loan-engine/internal/repository"
	apperrors "github.com/acadlab/equipment-loan-engine/pkg/errors"
)

// EquipmentService owns equipment identity and the status lifecycle.
// Status is only ever mutated here, by the loan workflow, or by the
// damage tracker; all three serialize on the equipment row.
type EquipmentService struct {
	equipmentRepo repository.EquipmentRepository
	damageRepo    repository.DamageRepository
	sink          notify.Sink
}

func NewEquipmentService(
	equipmentRepo repository.EquipmentRepository,
	damageRepo repository.DamageRepository,
	sink notify.Sink,
) *EquipmentService {
	return &EquipmentService{
		equipmentRepo: equipmentRepo,
		damageRepo:    damageRepo,
		sink:          sink,
	}
}

// Register creates a new equipment unit. Administrators only.
func (s *EquipmentService) Register(ctx context.Context, actor domain.Actor, request *domain.RegisterEquipmentRequest) (*domain.Equipment, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.WrapForbidden("equipment registration", actor.Role)
	}

	now := time.Now()
	equipment := &domain.Equipment{
		ID:               uuid.New(),
		Name:             request.Name,
		Category:         request.Category,
		Location:         request.Location,
		SerialNumber:     request.SerialNumber,
		Status:           domain.EquipmentStatusAvailable,
		AvailableForLoan: true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.equipmentRepo.Create(ctx, equipment); err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	return equipment, nil
}

// SetStatus applies an explicit maintenance-style status change.
// Setting available while an unresolved damage report exists is
// refused; damage resolution is the only path out of damaged.
func (s *EquipmentService) SetStatus(ctx context.Context, actor domain.Actor, id uuid.UUID, status string) (*domain.Equipment, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.WrapForbidden("equipment status change", actor.Role)
	}

	if !domain.ValidEquipmentStatus(status) {
		return nil, apperrors.WrapInvalidState("equipment", status, "a known status")
	}

	equipment, err := s.equipmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.WrapNotFound("Equipment", id.String())
		}
		return nil, apperrors.WrapDatabaseError(err)
	}

	if !domain.CanTransitionEquipment(equipment.Status, status) {
		return nil, apperrors.WrapInvalidState("equipment "+id.String(), equipment.Status, status)
	}

	if status == domain.EquipmentStatusAvailable {
		unresolved, err := s.damageRepo.HasUnresolved(ctx, id)
		if err != nil {
			return nil, apperrors.WrapDatabaseError(err)
		}
		if unresolved {
			return nil, apperrors.WrapInvalidState("equipment "+id.String(), equipment.Status, "no unresolved damage report")
		}
	}

	availableForLoan := equipment.AvailableForLoan
	if status == domain.EquipmentStatusDamaged || status == domain.EquipmentStatusDecommissioned {
		availableForLoan = false
	}

	if err := s.equipmentRepo.UpdateStatus(ctx, id, status, availableForLoan, equipment.CurrentDamageReportID); err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	s.publishStatusChange(ctx, id, equipment.Status, status)

	equipment.Status = status
	equipment.AvailableForLoan = availableForLoan
	return equipment, nil
}

// SetLoanability flips the manual circulation override without
// touching the lifecycle status.
func (s *EquipmentService) SetLoanability(ctx context.Context, actor domain.Actor, id uuid.UUID, available bool) (*domain.Equipment, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.WrapForbidden("equipment loanability change", actor.Role)
	}

	equipment, err := s.equipmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.WrapNotFound("Equipment", id.String())
		}
		return nil, apperrors.WrapDatabaseError(err)
	}

	if err := s.equipmentRepo.UpdateStatus(ctx, id, equipment.Status, available, equipment.CurrentDamageReportID); err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	equipment.AvailableForLoan = available
	return equipment, nil
}

// IsLoanable reports the equipment-side loanability predicate. The
// borrower-side penalty block is layered on by the loan workflow.
func (s *EquipmentService) IsLoanable(ctx context.Context, id uuid.UUID) (bool, error) {
	equipment, err := s.equipmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, apperrors.WrapNotFound("Equipment", id.String())
		}
		return false, apperrors.WrapDatabaseError(err)
	}

	return equipment.Loanable(), nil
}

func (s *EquipmentService) Get(ctx context.Context, id uuid.UUID) (*domain.Equipment, error) {
	equipment, err := s.equipmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.WrapNotFound("Equipment", id.String())
		}
		return nil, apperrors.WrapDatabaseError(err)
	}

	return equipment, nil
}

func (s *EquipmentService) List(ctx context.Context) ([]*domain.Equipment, error) {
	equipment, err := s.equipmentRepo.List(ctx)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	return equipment, nil
}

func (s *EquipmentService) publishStatusChange(ctx context.Context, id uuid.UUID, from, to string) {
	event := domain.NewEvent(domain.EventEquipmentStatusChanged, id.String(), map[string]any{
		"from": from,
		"to":   to,
	})
	if err := s.sink.Publish(ctx, event); err != nil {
		log.Printf("equipment status event dropped: %v", err)
	}
}
