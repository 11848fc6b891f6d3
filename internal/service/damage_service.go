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
	"github.com/acadlab/equipment-loan-engine/internal/photo"
	"github.com/acadlab/equipment-loan-engine/internal/repository"
	apperrors "github.com/acadlab/equipment-loan-engine/pkg/errors"
)

// DamageService records defect reports and forces damaged equipment
// out of circulation. A report filed while a loan is in progress does
// not cancel the loan; the unit just stops being re-loanable after
// hand-back until the report is resolved.
type DamageService struct {
	damageRepo    repository.DamageRepository
	equipmentRepo repository.EquipmentRepository
	photos        photo.Store
	sink          notify.Sink
}

func NewDamageService(
	damageRepo repository.DamageRepository,
	equipmentRepo repository.EquipmentRepository,
	photos photo.Store,
	sink notify.Sink,
) *DamageService {
	return &DamageService{
		damageRepo:    damageRepo,
		equipmentRepo: equipmentRepo,
		photos:        photos,
		sink:          sink,
	}
}

// Report files a damage report. Any authenticated role may file one.
func (s *DamageService) Report(ctx context.Context, actor domain.Actor, equipmentID uuid.UUID, request *domain.ReportDamageRequest) (*domain.DamageReport, error) {
	if !domain.ValidSeverity(request.Severity) {
		return nil, apperrors.WrapInvalidState("damage severity", request.Severity, "minor|moderate|severe")
	}

	equipment, err := s.equipmentRepo.GetByID(ctx, equipmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.WrapNotFound("Equipment", equipmentID.String())
		}
		return nil, apperrors.WrapDatabaseError(err)
	}

	refs := make([]string, 0, len(request.Photos))
	for _, p := range request.Photos {
		ref, err := s.photos.Save(ctx, p.Data, p.Ext)
		if err != nil {
			return nil, apperrors.NewBusinessError(apperrors.ErrCodeInvalidState, "photo upload rejected: "+err.Error(), err)
		}
		refs = append(refs, ref)
	}

	report := &domain.DamageReport{
		ID:           uuid.New(),
		EquipmentID:  equipmentID,
		Category:     request.Category,
		Severity:     request.Severity,
		Description:  request.Description,
		PhotoRefs:    refs,
		ReporterID:   actor.ID,
		ReporterName: actor.Name,
		ReporterRole: actor.Role,
		ReportedAt:   time.Now(),
	}

	// The repository flips the equipment to damaged in the same
	// transaction, unconditionally.
	if err := s.damageRepo.Create(ctx, report); err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	s.publish(ctx, domain.NewEvent(domain.EventDamageReported, report.ID.String(), map[string]any{
		"equipment_id": equipmentID.String(),
		"severity":     request.Severity,
	}))
	s.publish(ctx, domain.NewEvent(domain.EventEquipmentStatusChanged, equipmentID.String(), map[string]any{
		"from": equipment.Status,
		"to":   domain.EquipmentStatusDamaged,
	}))

	return report, nil
}

// Resolve closes a damage report after repair. Administrators only;
// this is the only operation that returns damaged equipment to
// available. Resolving twice is refused without side effects.
func (s *DamageService) Resolve(ctx context.Context, actor domain.Actor, reportID uuid.UUID, notes string) (*domain.DamageReport, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.WrapForbidden("damage report resolution", actor.Role)
	}

	report, err := s.damageRepo.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.WrapNotFound("DamageReport", reportID.String())
		}
		return nil, apperrors.WrapDatabaseError(err)
	}

	if report.Resolved {
		return nil, apperrors.WrapInvalidState("damage report "+reportID.String(), "resolved", "unresolved")
	}

	now := time.Now()
	if err := s.damageRepo.Resolve(ctx, reportID, actor.ID, notes, now); err != nil {
		if errors.Is(err, apperrors.ErrInvalidState) {
			return nil, apperrors.WrapInvalidState("damage report "+reportID.String(), "resolved", "unresolved")
		}
		return nil, apperrors.WrapDatabaseError(err)
	}

	report.Resolved = true
	report.ResolverID = &actor.ID
	report.ResolverNotes = &notes
	report.ResolvedAt = &now

	s.publish(ctx, domain.NewEvent(domain.EventDamageResolved, reportID.String(), map[string]any{
		"equipment_id": report.EquipmentID.String(),
	}))

	return report, nil
}

func (s *DamageService) Get(ctx context.Context, id uuid.UUID) (*domain.DamageReport, error) {
	report, err := s.damageRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.WrapNotFound("DamageReport", id.String())
		}
		return nil, apperrors.WrapDatabaseError(err)
	}

	return report, nil
}

func (s *DamageService) ListOpen(ctx context.Context) ([]*domain.DamageReport, error) {
	reports, err := s.damageRepo.ListOpen(ctx)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	return reports, nil
}

func (s *DamageService) ListByEquipment(ctx context.Context, equipmentID uuid.UUID) ([]*domain.DamageReport, error) {
	reports, err := s.damageRepo.ListByEquipment(ctx, equipmentID)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	return reports, nil
}

func (s *DamageService) publish(ctx context.Context, event domain.Event) {
	if err := s.sink.Publish(ctx, event); err != nil {
		log.Printf("damage event dropped: %v", err)
	}
}
