package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/acadlab/equipment-loan-engine/internal/domain"
	"github.com/acadlab/equipment-loan-engine/internal/notify"
	"github.com/acadlab/equipment-loan-engine/internal/repository"
	apperrors "github.com/acadlab/equipment-loan-engine/pkg/errors"
)

// PenaltyService evaluates return lateness against the configured rule
// table and issues time-boxed borrowing blocks.
type PenaltyService struct {
	penaltyRepo repository.PenaltyRepository
	rules       []domain.PenaltyRule
	autoApply   bool
	sink        notify.Sink
}

// NewPenaltyService expects rules sorted ascending by threshold, the
// way config.ParsePenaltyRules produces them.
func NewPenaltyService(penaltyRepo repository.PenaltyRepository, rules []domain.PenaltyRule, autoApply bool, sink notify.Sink) *PenaltyService {
	return &PenaltyService{
		penaltyRepo: penaltyRepo,
		rules:       rules,
		autoApply:   autoApply,
		sink:        sink,
	}
}

// matchRule picks the rule with the largest threshold <= daysLate.
// Rules are sorted ascending, so the last match wins.
func (s *PenaltyService) matchRule(daysLate int) *domain.PenaltyRule {
	var matched *domain.PenaltyRule
	for i := range s.rules {
		if s.rules[i].DaysLateThreshold <= daysLate {
			matched = &s.rules[i]
		}
	}
	return matched
}

// Evaluate issues (or extends) a penalty for a late return. Returns
// nil when daysLate is zero, no rule qualifies, or auto-apply is off.
func (s *PenaltyService) Evaluate(ctx context.Context, borrowerID string, daysLate int, reason string) (*domain.Penalty, error) {
	if daysLate <= 0 {
		return nil, nil
	}

	rule := s.matchRule(daysLate)
	if rule == nil {
		return nil, nil
	}

	if !s.autoApply {
		log.Printf("penalty auto-apply disabled: borrower %s is %d days late (rule threshold %d, %d penalty days)",
			borrowerID, daysLate, rule.DaysLateThreshold, rule.PenaltyDays)
		return nil, nil
	}

	now := time.Now()
	end := now.AddDate(0, 0, rule.PenaltyDays)

	// An already-blocked borrower gets the window extended, never a
	// second concurrent penalty.
	existing, err := s.ActiveFor(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if end.Before(existing.EndDate) {
			end = existing.EndDate
		}
		if err := s.penaltyRepo.ExtendActive(ctx, existing.ID, end); err != nil {
			return nil, apperrors.WrapDatabaseError(err)
		}
		existing.EndDate = end

		s.publish(ctx, domain.NewEvent(domain.EventPenaltyIssued, existing.ID.String(), map[string]any{
			"borrower_id": borrowerID,
			"days_late":   daysLate,
			"extended":    true,
			"end_date":    end,
		}))
		return existing, nil
	}

	penalty := &domain.Penalty{
		ID:            uuid.New(),
		BorrowerID:    borrowerID,
		Reason:        reason,
		StartDate:     now,
		EndDate:       end,
		Status:        domain.PenaltyStatusActive,
		RuleThreshold: rule.DaysLateThreshold,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.penaltyRepo.Create(ctx, penalty); err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	s.publish(ctx, domain.NewEvent(domain.EventPenaltyIssued, penalty.ID.String(), map[string]any{
		"borrower_id": borrowerID,
		"days_late":   daysLate,
		"end_date":    end,
	}))

	return penalty, nil
}

// ActiveFor returns the borrower's active penalty, or nil.
func (s *PenaltyService) ActiveFor(ctx context.Context, borrowerID string) (*domain.Penalty, error) {
	penalty, err := s.penaltyRepo.GetActiveByBorrower(ctx, borrowerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.WrapDatabaseError(err)
	}

	return penalty, nil
}

// Cancel is the administrator override, available while the penalty is
// still active.
func (s *PenaltyService) Cancel(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Penalty, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.WrapForbidden("penalty cancellation", actor.Role)
	}

	penalty, err := s.penaltyRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.WrapNotFound("Penalty", id.String())
		}
		return nil, apperrors.WrapDatabaseError(err)
	}

	if penalty.Status != domain.PenaltyStatusActive {
		return nil, apperrors.WrapInvalidState("penalty "+id.String(), penalty.Status, domain.PenaltyStatusActive)
	}

	if err := s.penaltyRepo.Cancel(ctx, id, actor.ID); err != nil {
		if errors.Is(err, apperrors.ErrInvalidState) {
			return nil, apperrors.WrapInvalidState("penalty "+id.String(), penalty.Status, domain.PenaltyStatusActive)
		}
		return nil, apperrors.WrapDatabaseError(err)
	}

	penalty.Status = domain.PenaltyStatusCancelled
	penalty.CancelledBy = &actor.ID

	s.publish(ctx, domain.NewEvent(domain.EventPenaltyCancelled, id.String(), map[string]any{
		"borrower_id":  penalty.BorrowerID,
		"cancelled_by": actor.ID,
	}))

	return penalty, nil
}

// CompleteExpired flips active penalties past their end date to
// completed. Called by the scheduler.
func (s *PenaltyService) CompleteExpired(ctx context.Context, now time.Time) (int64, error) {
	count, err := s.penaltyRepo.CompleteExpired(ctx, now)
	if err != nil {
		return 0, apperrors.WrapDatabaseError(err)
	}

	return count, nil
}

func (s *PenaltyService) ListByBorrower(ctx context.Context, borrowerID string) ([]*domain.Penalty, error) {
	penalties, err := s.penaltyRepo.ListByBorrower(ctx, borrowerID)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	return penalties, nil
}

func (s *PenaltyService) publish(ctx context.Context, event domain.Event) {
	if err := s.sink.Publish(ctx, event); err != nil {
		log.Printf("penalty event dropped: %v", err)
	}
}

// LateReason builds the standard reason text stored on issued
// penalties.
func LateReason(equipmentName string, daysLate int) string {
	return fmt.Sprintf("returned %q %d day(s) late", equipmentName, daysLate)
}
