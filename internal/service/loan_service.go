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
	"github.com/acadlab/equipment-loan-engine/pkg/utils"
)

// LoanService is the state machine governing a borrow request from
// submission through decision and hand-off to return. Every transition
// here is the single authoritative mutation point for its request.
type LoanService struct {
	loanRepo      repository.LoanRepository
	equipmentRepo repository.EquipmentRepository
	conditions    *ConditionService
	penalties     *PenaltyService
	sink          notify.Sink
}

func NewLoanService(
	loanRepo repository.LoanRepository,
	equipmentRepo repository.EquipmentRepository,
	conditions *ConditionService,
	penalties *PenaltyService,
	sink notify.Sink,
) *LoanService {
	return &LoanService{
		loanRepo:      loanRepo,
		equipmentRepo: equipmentRepo,
		conditions:    conditions,
		penalties:     penalties,
		sink:          sink,
	}
}

// Create submits a new pending request.
func (s *LoanService) Create(ctx context.Context, actor domain.Actor, equipmentID uuid.UUID, request *domain.CreateLoanRequest) (*domain.LoanRequest, error) {
	// 1. Date sanity at day granularity
	if utils.BeforeDay(request.EndDate, request.StartDate) {
		return nil, apperrors.WrapInvalidDateRange("end date is before start date")
	}
	if utils.BeforeDay(request.StartDate, time.Now()) {
		return nil, apperrors.WrapInvalidDateRange("start date is in the past")
	}

	// 2. Borrower-side block
	active, err := s.penalties.ActiveFor(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, apperrors.WrapBorrowerBlocked(actor.ID, active.EndDate.Format("2006-01-02"))
	}

	// 3. Equipment-side pre-check; the repository re-checks under the
	// equipment row lock, which is the authoritative answer
	equipment, err := s.equipmentRepo.GetByID(ctx, equipmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.WrapNotFound("Equipment", equipmentID.String())
		}
		return nil, apperrors.WrapDatabaseError(err)
	}
	if !equipment.Loanable() {
		return nil, apperrors.WrapEquipmentUnavailable(equipmentID.String(), equipment.Status)
	}

	now := time.Now()
	loan := &domain.LoanRequest{
		ID:           uuid.New(),
		EquipmentID:  equipmentID,
		BorrowerID:   actor.ID,
		BorrowerName: actor.Name,
		StartDate:    utils.Day(request.StartDate),
		EndDate:      utils.Day(request.EndDate),
		Purpose:      request.Purpose,
		Status:       domain.LoanStatusPending,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.loanRepo.Create(ctx, loan); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrEquipmentUnavailable):
			return nil, apperrors.WrapEquipmentUnavailable(equipmentID.String(), equipment.Status)
		case errors.Is(err, apperrors.ErrDuplicateActiveRequest):
			return nil, apperrors.WrapDuplicateActiveRequest(equipmentID.String(), actor.ID)
		case errors.Is(err, sql.ErrNoRows):
			return nil, apperrors.WrapNotFound("Equipment", equipmentID.String())
		default:
			return nil, apperrors.WrapDatabaseError(err)
		}
	}

	return loan, nil
}

// Approve moves a pending request to approved. Approval alone does not
// remove the unit from the loanable pool; hand-off does.
func (s *LoanService) Approve(ctx context.Context, actor domain.Actor, id uuid.UUID, notes string) (*domain.LoanRequest, error) {
	return s.decide(ctx, actor, id, domain.LoanStatusApproved, notes, domain.EventLoanApproved)
}

// Reject moves a pending request to rejected.
func (s *LoanService) Reject(ctx context.Context, actor domain.Actor, id uuid.UUID, notes string) (*domain.LoanRequest, error) {
	return s.decide(ctx, actor, id, domain.LoanStatusRejected, notes, domain.EventLoanRejected)
}

func (s *LoanService) decide(ctx context.Context, actor domain.Actor, id uuid.UUID, status, notes, eventType string) (*domain.LoanRequest, error) {
	if !actor.CanApprove() {
		return nil, apperrors.WrapForbidden("loan decision", actor.Role)
	}

	loan, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if loan.Status != domain.LoanStatusPending {
		return nil, apperrors.WrapInvalidState("loan request "+id.String(), loan.Status, domain.LoanStatusPending)
	}

	now := time.Now()
	loan.Status = status
	loan.ApproverID = &actor.ID
	loan.ApproverName = &actor.Name
	loan.DecidedAt = &now
	if notes != "" {
		loan.ReviewerNotes = &notes
	}

	if err := s.loanRepo.UpdateDecision(ctx, loan); err != nil {
		if errors.Is(err, apperrors.ErrInvalidState) {
			return nil, apperrors.WrapInvalidState("loan request "+id.String(), loan.Status, domain.LoanStatusPending)
		}
		return nil, apperrors.WrapDatabaseError(err)
	}
	loan.Version++

	s.publish(ctx, domain.NewEvent(eventType, id.String(), map[string]any{
		"equipment_id": loan.EquipmentID.String(),
		"borrower_id":  loan.BorrowerID,
		"approver_id":  actor.ID,
	}))

	return loan, nil
}

// Cancel withdraws a pending request. Only the borrower may cancel,
// and only before a decision; an approved loan has no cancel path,
// only return.
func (s *LoanService) Cancel(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.LoanRequest, error) {
	loan, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if loan.BorrowerID != actor.ID {
		return nil, apperrors.WrapForbidden("loan cancellation", actor.Role)
	}

	if loan.Status != domain.LoanStatusPending {
		return nil, apperrors.WrapInvalidState("loan request "+id.String(), loan.Status, domain.LoanStatusPending)
	}

	loan.Status = domain.LoanStatusCancelled
	now := time.Now()
	loan.DecidedAt = &now

	if err := s.loanRepo.UpdateDecision(ctx, loan); err != nil {
		if errors.Is(err, apperrors.ErrInvalidState) {
			return nil, apperrors.WrapInvalidState("loan request "+id.String(), loan.Status, domain.LoanStatusPending)
		}
		return nil, apperrors.WrapDatabaseError(err)
	}
	loan.Version++

	return loan, nil
}

// RecordHandoff attaches the initial condition snapshot and flips the
// equipment to on_loan. This is the synchronization point that removes
// the unit from the loanable pool.
func (s *LoanService) RecordHandoff(ctx context.Context, actor domain.Actor, id uuid.UUID, condition domain.ConditionInput) (*domain.LoanRequest, error) {
	if !actor.CanApprove() {
		return nil, apperrors.WrapForbidden("loan hand-off", actor.Role)
	}

	loan, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if loan.Status != domain.LoanStatusApproved {
		return nil, apperrors.WrapInvalidState("loan request "+id.String(), loan.Status, domain.LoanStatusApproved)
	}
	if loan.HandedOver() {
		return nil, apperrors.WrapInvalidState("loan request "+id.String(), "handed over", "approved without hand-off")
	}

	// A damage report or maintenance hold filed after approval blocks
	// the hand-off; the repository re-checks under the equipment lock.
	equipment, err := s.equipmentRepo.GetByID(ctx, loan.EquipmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.WrapNotFound("Equipment", loan.EquipmentID.String())
		}
		return nil, apperrors.WrapDatabaseError(err)
	}
	if equipment.Status != domain.EquipmentStatusAvailable {
		return nil, apperrors.WrapEquipmentUnavailable(loan.EquipmentID.String(), equipment.Status)
	}

	record, err := s.conditions.Record(ctx, loan.EquipmentID, condition, actor)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.loanRepo.MarkHandoff(ctx, loan.ID, loan.Version, record.ID, now); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrEquipmentUnavailable):
			return nil, apperrors.WrapEquipmentUnavailable(loan.EquipmentID.String(), equipment.Status)
		case errors.Is(err, apperrors.ErrInvalidState):
			return nil, apperrors.WrapInvalidState("loan request "+id.String(), loan.Status, "approved without hand-off")
		default:
			return nil, apperrors.WrapDatabaseError(err)
		}
	}

	loan.InitialConditionID = &record.ID
	loan.HandedOverAt = &now
	loan.Version++

	s.publish(ctx, domain.NewEvent(domain.EventLoanHandedOver, id.String(), map[string]any{
		"equipment_id": loan.EquipmentID.String(),
		"borrower_id":  loan.BorrowerID,
		"grade":        record.Grade,
	}))
	s.publish(ctx, domain.NewEvent(domain.EventEquipmentStatusChanged, loan.EquipmentID.String(), map[string]any{
		"from": domain.EquipmentStatusAvailable,
		"to":   domain.EquipmentStatusOnLoan,
	}))

	return loan, nil
}

// RecordReturn attaches the final condition snapshot, closes the loan
// and reverts the equipment to available unless a damage report holds
// it. The grade comparison is informational; damage is a separate,
// explicit report, never inferred from the return narrative.
func (s *LoanService) RecordReturn(ctx context.Context, actor domain.Actor, id uuid.UUID, condition domain.ConditionInput, returnedAt time.Time) (*domain.ReturnResult, error) {
	if !actor.CanApprove() {
		return nil, apperrors.WrapForbidden("loan return", actor.Role)
	}

	loan, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if loan.Status != domain.LoanStatusApproved {
		return nil, apperrors.WrapInvalidState("loan request "+id.String(), loan.Status, domain.LoanStatusApproved)
	}
	if !loan.HandedOver() {
		return nil, apperrors.WrapInvalidState("loan request "+id.String(), "approved without hand-off", "handed over")
	}

	if returnedAt.IsZero() {
		returnedAt = time.Now()
	}

	record, err := s.conditions.Record(ctx, loan.EquipmentID, condition, actor)
	if err != nil {
		return nil, err
	}

	equipment, err := s.equipmentRepo.GetByID(ctx, loan.EquipmentID)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	daysLate := utils.DaysLate(loan.EndDate, returnedAt)

	// The repository decides the equipment's next status under the row
	// lock: an unresolved damage report keeps the unit out of
	// circulation through the return.
	equipmentStatus, err := s.loanRepo.MarkReturned(ctx, loan.ID, loan.Version, record.ID, returnedAt, daysLate)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidState) {
			return nil, apperrors.WrapInvalidState("loan request "+id.String(), loan.Status, domain.LoanStatusApproved)
		}
		return nil, apperrors.WrapDatabaseError(err)
	}

	loan.Status = domain.LoanStatusReturned
	loan.FinalConditionID = &record.ID
	loan.ReturnedAt = &returnedAt
	loan.DaysLate = daysLate
	loan.Version++

	result := &domain.ReturnResult{
		Loan:       loan,
		FinalGrade: record.Grade,
		DaysLate:   daysLate,
	}

	if loan.InitialConditionID != nil {
		initial, err := s.conditions.Get(ctx, *loan.InitialConditionID)
		if err == nil {
			result.InitialGrade = initial.Grade
			result.Degraded = domain.GradeWorseThan(record.Grade, initial.Grade)
		}
	}

	if daysLate > 0 {
		penalty, err := s.penalties.Evaluate(ctx, loan.BorrowerID, daysLate, LateReason(equipment.Name, daysLate))
		if err != nil {
			// The return itself already committed; surface the
			// evaluation failure without undoing it.
			return result, err
		}
		result.Penalty = penalty
	}

	s.publish(ctx, domain.NewEvent(domain.EventLoanReturned, id.String(), map[string]any{
		"equipment_id": loan.EquipmentID.String(),
		"borrower_id":  loan.BorrowerID,
		"days_late":    daysLate,
		"grade":        record.Grade,
	}))
	s.publish(ctx, domain.NewEvent(domain.EventEquipmentStatusChanged, loan.EquipmentID.String(), map[string]any{
		"from": equipment.Status,
		"to":   equipmentStatus,
	}))

	return result, nil
}

func (s *LoanService) Get(ctx context.Context, id uuid.UUID) (*domain.LoanRequest, error) {
	return s.get(ctx, id)
}

func (s *LoanService) ListByBorrower(ctx context.Context, borrowerID string) ([]*domain.LoanRequest, error) {
	loans, err := s.loanRepo.ListByBorrower(ctx, borrowerID)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	return loans, nil
}

func (s *LoanService) ListByStatus(ctx context.Context, status string) ([]*domain.LoanRequest, error) {
	loans, err := s.loanRepo.ListByStatus(ctx, status)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	return loans, nil
}

// ListOverdue returns handed-over loans past their requested end date.
func (s *LoanService) ListOverdue(ctx context.Context, asOf time.Time) ([]*domain.LoanRequest, error) {
	loans, err := s.loanRepo.ListOverdue(ctx, asOf)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	return loans, nil
}

func (s *LoanService) get(ctx context.Context, id uuid.UUID) (*domain.LoanRequest, error) {
	loan, err := s.loanRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.WrapNotFound("LoanRequest", id.String())
		}
		return nil, apperrors.WrapDatabaseError(err)
	}

	return loan, nil
}

func (s *LoanService) publish(ctx context.Context, event domain.Event) {
	if err := s.sink.Publish(ctx, event); err != nil {
		log.Printf("loan event dropped: %v", err)
	}
}
