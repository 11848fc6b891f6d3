package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/acadlab/equipment-loan-engine/internal/domain"
)

type MockEquipmentRepository struct {
	mock.Mock
}

func (m *MockEquipmentRepository) Create(ctx context.Context, equipment *domain.Equipment) error {
	args := m.Called(ctx, equipment)
	return args.Error(0)
}

func (m *MockEquipmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Equipment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Equipment), args.Error(1)
}

func (m *MockEquipmentRepository) List(ctx context.Context) ([]*domain.Equipment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Equipment), args.Error(1)
}

func (m *MockEquipmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, availableForLoan bool, damageReportID *uuid.UUID) error {
	args := m.Called(ctx, id, status, availableForLoan, damageReportID)
	return args.Error(0)
}

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) Create(ctx context.Context, loan *domain.LoanRequest) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LoanRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanRequest), args.Error(1)
}

func (m *MockLoanRepository) UpdateDecision(ctx context.Context, loan *domain.LoanRequest) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) MarkHandoff(ctx context.Context, loanID uuid.UUID, version int, conditionID uuid.UUID, at time.Time) error {
	args := m.Called(ctx, loanID, version, conditionID, at)
	return args.Error(0)
}

func (m *MockLoanRepository) MarkReturned(ctx context.Context, loanID uuid.UUID, version int, conditionID uuid.UUID, at time.Time, daysLate int) (string, error) {
	args := m.Called(ctx, loanID, version, conditionID, at, daysLate)
	return args.String(0), args.Error(1)
}

func (m *MockLoanRepository) ListByBorrower(ctx context.Context, borrowerID string) ([]*domain.LoanRequest, error) {
	args := m.Called(ctx, borrowerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LoanRequest), args.Error(1)
}

func (m *MockLoanRepository) ListByStatus(ctx context.Context, status string) ([]*domain.LoanRequest, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LoanRequest), args.Error(1)
}

func (m *MockLoanRepository) ListReturnedBetween(ctx context.Context, from, to time.Time) ([]*domain.LoanRequest, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LoanRequest), args.Error(1)
}

func (m *MockLoanRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]*domain.LoanRequest, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LoanRequest), args.Error(1)
}

type MockConditionRepository struct {
	mock.Mock
}

func (m *MockConditionRepository) Create(ctx context.Context, record *domain.ConditionRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockConditionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ConditionRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConditionRecord), args.Error(1)
}

func (m *MockConditionRepository) ListByEquipment(ctx context.Context, equipmentID uuid.UUID) ([]*domain.ConditionRecord, error) {
	args := m.Called(ctx, equipmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ConditionRecord), args.Error(1)
}

type MockDamageRepository struct {
	mock.Mock
}

func (m *MockDamageRepository) Create(ctx context.Context, report *domain.DamageReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockDamageRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.DamageReport, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DamageReport), args.Error(1)
}

func (m *MockDamageRepository) Resolve(ctx context.Context, reportID uuid.UUID, resolverID, notes string, at time.Time) error {
	args := m.Called(ctx, reportID, resolverID, notes, at)
	return args.Error(0)
}

func (m *MockDamageRepository) HasUnresolved(ctx context.Context, equipmentID uuid.UUID) (bool, error) {
	args := m.Called(ctx, equipmentID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDamageRepository) ListOpen(ctx context.Context) ([]*domain.DamageReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.DamageReport), args.Error(1)
}

func (m *MockDamageRepository) ListByEquipment(ctx context.Context, equipmentID uuid.UUID) ([]*domain.DamageReport, error) {
	args := m.Called(ctx, equipmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.DamageReport), args.Error(1)
}

type MockPenaltyRepository struct {
	mock.Mock
}

func (m *MockPenaltyRepository) Create(ctx context.Context, penalty *domain.Penalty) error {
	args := m.Called(ctx, penalty)
	return args.Error(0)
}

func (m *MockPenaltyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Penalty, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Penalty), args.Error(1)
}

func (m *MockPenaltyRepository) GetActiveByBorrower(ctx context.Context, borrowerID string) (*domain.Penalty, error) {
	args := m.Called(ctx, borrowerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Penalty), args.Error(1)
}

func (m *MockPenaltyRepository) ExtendActive(ctx context.Context, id uuid.UUID, newEnd time.Time) error {
	args := m.Called(ctx, id, newEnd)
	return args.Error(0)
}

func (m *MockPenaltyRepository) Cancel(ctx context.Context, id uuid.UUID, cancelledBy string) error {
	args := m.Called(ctx, id, cancelledBy)
	return args.Error(0)
}

func (m *MockPenaltyRepository) CompleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPenaltyRepository) ListByBorrower(ctx context.Context, borrowerID string) ([]*domain.Penalty, error) {
	args := m.Called(ctx, borrowerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Penalty), args.Error(1)
}
