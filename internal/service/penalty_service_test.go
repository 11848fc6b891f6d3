package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/acadlab/equipment-loan-engine/internal/domain"
	apperrors "github.com/acadlab/equipment-loan-engine/pkg/errors"
	"github.com/acadlab/equipment-loan-engine/tests/mocks"
)

var testRules = []domain.PenaltyRule{
	{DaysLateThreshold: 1, PenaltyDays: 3},
	{DaysLateThreshold: 3, PenaltyDays: 7},
	{DaysLateThreshold: 7, PenaltyDays: 14},
}

func TestEvaluate_RuleSelection(t *testing.T) {
	tests := []struct {
		name          string
		daysLate      int
		expectPenalty bool
		expectedDays  int
		expectedRule  int
	}{
		{
			name:          "zero days late never issues",
			daysLate:      0,
			expectPenalty: false,
		},
		{
			name:          "negative lateness never issues",
			daysLate:      -2,
			expectPenalty: false,
		},
		{
			name:          "exact lowest threshold",
			daysLate:      1,
			expectPenalty: true,
			expectedDays:  3,
			expectedRule:  1,
		},
		{
			name:          "between thresholds picks the lower rule",
			daysLate:      2,
			expectPenalty: true,
			expectedDays:  3,
			expectedRule:  1,
		},
		{
			name:          "exact middle threshold",
			daysLate:      3,
			expectPenalty: true,
			expectedDays:  7,
			expectedRule:  3,
		},
		{
			name:          "far past the largest threshold",
			daysLate:      30,
			expectPenalty: true,
			expectedDays:  14,
			expectedRule:  7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mocks.MockPenaltyRepository{}
			sink := &mocks.RecordingSink{}
			svc := NewPenaltyService(mockRepo, testRules, true, sink)

			if tt.expectPenalty {
				mockRepo.On("GetActiveByBorrower", mock.Anything, "student1").Return(nil, sql.ErrNoRows)
				mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Penalty) bool {
					return p.BorrowerID == "student1" && p.RuleThreshold == tt.expectedRule
				})).Return(nil)
			}

			penalty, err := svc.Evaluate(context.Background(), "student1", tt.daysLate, "late return")

			assert.NoError(t, err)
			if !tt.expectPenalty {
				assert.Nil(t, penalty)
				mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				return
			}

			assert.NotNil(t, penalty)
			assert.Equal(t, domain.PenaltyStatusActive, penalty.Status)
			assert.Equal(t, tt.expectedRule, penalty.RuleThreshold)

			expectedEnd := time.Now().AddDate(0, 0, tt.expectedDays)
			assert.WithinDuration(t, expectedEnd, penalty.EndDate, 2*time.Second)

			assert.Equal(t, []string{domain.EventPenaltyIssued}, sink.Types())
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestEvaluate_BelowAllThresholds(t *testing.T) {
	mockRepo := &mocks.MockPenaltyRepository{}
	rules := []domain.PenaltyRule{{DaysLateThreshold: 5, PenaltyDays: 7}}
	svc := NewPenaltyService(mockRepo, rules, true, &mocks.RecordingSink{})

	penalty, err := svc.Evaluate(context.Background(), "student1", 4, "late return")

	assert.NoError(t, err)
	assert.Nil(t, penalty)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestEvaluate_AutoApplyDisabled(t *testing.T) {
	mockRepo := &mocks.MockPenaltyRepository{}
	svc := NewPenaltyService(mockRepo, testRules, false, &mocks.RecordingSink{})

	penalty, err := svc.Evaluate(context.Background(), "student1", 10, "late return")

	assert.NoError(t, err)
	assert.Nil(t, penalty)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "GetActiveByBorrower", mock.Anything, mock.Anything)
}

func TestEvaluate_ExtendsExistingPenalty(t *testing.T) {
	mockRepo := &mocks.MockPenaltyRepository{}
	sink := &mocks.RecordingSink{}
	svc := NewPenaltyService(mockRepo, testRules, true, sink)

	existing := &domain.Penalty{
		ID:         uuid.New(),
		BorrowerID: "student1",
		Status:     domain.PenaltyStatusActive,
		StartDate:  time.Now().AddDate(0, 0, -1),
		EndDate:    time.Now().AddDate(0, 0, 2),
	}

	mockRepo.On("GetActiveByBorrower", mock.Anything, "student1").Return(existing, nil)
	mockRepo.On("ExtendActive", mock.Anything, existing.ID, mock.MatchedBy(func(end time.Time) bool {
		return end.After(existing.StartDate)
	})).Return(nil)

	penalty, err := svc.Evaluate(context.Background(), "student1", 7, "late return")

	assert.NoError(t, err)
	assert.NotNil(t, penalty)
	assert.Equal(t, existing.ID, penalty.ID)

	// 14 penalty days from now beats the old end date
	expectedEnd := time.Now().AddDate(0, 0, 14)
	assert.WithinDuration(t, expectedEnd, penalty.EndDate, 2*time.Second)

	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestEvaluate_ExtensionNeverShrinksWindow(t *testing.T) {
	mockRepo := &mocks.MockPenaltyRepository{}
	svc := NewPenaltyService(mockRepo, testRules, true, &mocks.RecordingSink{})

	farEnd := time.Now().AddDate(0, 0, 60)
	existing := &domain.Penalty{
		ID:         uuid.New(),
		BorrowerID: "student1",
		Status:     domain.PenaltyStatusActive,
		EndDate:    farEnd,
	}

	mockRepo.On("GetActiveByBorrower", mock.Anything, "student1").Return(existing, nil)
	mockRepo.On("ExtendActive", mock.Anything, existing.ID, farEnd).Return(nil)

	penalty, err := svc.Evaluate(context.Background(), "student1", 1, "late return")

	assert.NoError(t, err)
	assert.Equal(t, farEnd, penalty.EndDate)
	mockRepo.AssertExpectations(t)
}

func TestCancelPenalty(t *testing.T) {
	admin := domain.Actor{ID: "admin1", Name: "Admin", Role: domain.RoleAdmin}
	student := domain.Actor{ID: "student1", Name: "Student", Role: domain.RoleStudent}

	t.Run("forbidden for non-admin", func(t *testing.T) {
		mockRepo := &mocks.MockPenaltyRepository{}
		svc := NewPenaltyService(mockRepo, testRules, true, &mocks.RecordingSink{})

		_, err := svc.Cancel(context.Background(), student, uuid.New())

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		mockRepo.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("success while active", func(t *testing.T) {
		mockRepo := &mocks.MockPenaltyRepository{}
		sink := &mocks.RecordingSink{}
		svc := NewPenaltyService(mockRepo, testRules, true, sink)

		id := uuid.New()
		mockRepo.On("GetByID", mock.Anything, id).Return(&domain.Penalty{
			ID:         id,
			BorrowerID: "student1",
			Status:     domain.PenaltyStatusActive,
		}, nil)
		mockRepo.On("Cancel", mock.Anything, id, "admin1").Return(nil)

		penalty, err := svc.Cancel(context.Background(), admin, id)

		assert.NoError(t, err)
		assert.Equal(t, domain.PenaltyStatusCancelled, penalty.Status)
		assert.Equal(t, []string{domain.EventPenaltyCancelled}, sink.Types())
		mockRepo.AssertExpectations(t)
	})

	t.Run("invalid state when already completed", func(t *testing.T) {
		mockRepo := &mocks.MockPenaltyRepository{}
		svc := NewPenaltyService(mockRepo, testRules, true, &mocks.RecordingSink{})

		id := uuid.New()
		mockRepo.On("GetByID", mock.Anything, id).Return(&domain.Penalty{
			ID:     id,
			Status: domain.PenaltyStatusCompleted,
		}, nil)

		_, err := svc.Cancel(context.Background(), admin, id)

		assert.ErrorIs(t, err, apperrors.ErrInvalidState)
		mockRepo.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestActiveFor_NoPenalty(t *testing.T) {
	mockRepo := &mocks.MockPenaltyRepository{}
	svc := NewPenaltyService(mockRepo, testRules, true, &mocks.RecordingSink{})

	mockRepo.On("GetActiveByBorrower", mock.Anything, "student1").Return(nil, sql.ErrNoRows)

	penalty, err := svc.ActiveFor(context.Background(), "student1")

	assert.NoError(t, err)
	assert.Nil(t, penalty)
}
