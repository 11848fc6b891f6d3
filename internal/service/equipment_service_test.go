package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/acadlab/equipment-loan-engine/internal/domain"
	apperrors "github.com/acadlab/equipment-loan-engine/pkg/errors"
	"github.com/acadlab/equipment-loan-engine/tests/mocks"
)

var labAdmin = domain.Actor{ID: "admin1", Name: "Dana", Role: domain.RoleAdmin}

func newEquipmentService() (*EquipmentService, *mocks.MockEquipmentRepository, *mocks.MockDamageRepository, *mocks.RecordingSink) {
	equipmentRepo := &mocks.MockEquipmentRepository{}
	damageRepo := &mocks.MockDamageRepository{}
	sink := &mocks.RecordingSink{}
	return NewEquipmentService(equipmentRepo, damageRepo, sink), equipmentRepo, damageRepo, sink
}

func TestRegisterEquipment(t *testing.T) {
	request := &domain.RegisterEquipmentRequest{
		Name:         "Microscope",
		Category:     "optics",
		Location:     "Lab 204",
		SerialNumber: "MS-0042",
	}

	t.Run("admin registers a unit", func(t *testing.T) {
		svc, equipmentRepo, _, _ := newEquipmentService()

		equipmentRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *domain.Equipment) bool {
			return e.Name == "Microscope" &&
				e.Status == domain.EquipmentStatusAvailable &&
				e.AvailableForLoan
		})).Return(nil)

		equipment, err := svc.Register(context.Background(), labAdmin, request)

		assert.NoError(t, err)
		assert.Equal(t, domain.EquipmentStatusAvailable, equipment.Status)
		assert.True(t, equipment.AvailableForLoan)
		equipmentRepo.AssertExpectations(t)
	})

	t.Run("non-admin is refused", func(t *testing.T) {
		svc, equipmentRepo, _, _ := newEquipmentService()

		_, err := svc.Register(context.Background(), reviewer, request)

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		equipmentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestSetEquipmentStatus(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name          string
		current       string
		target        string
		hasUnresolved bool
		expectedError error
	}{
		{
			name:    "available to maintenance",
			current: domain.EquipmentStatusAvailable,
			target:  domain.EquipmentStatusMaintenance,
		},
		{
			name:    "maintenance back to available",
			current: domain.EquipmentStatusMaintenance,
			target:  domain.EquipmentStatusAvailable,
		},
		{
			name:    "available to decommissioned",
			current: domain.EquipmentStatusAvailable,
			target:  domain.EquipmentStatusDecommissioned,
		},
		{
			name:          "decommissioned is terminal",
			current:       domain.EquipmentStatusDecommissioned,
			target:        domain.EquipmentStatusAvailable,
			expectedError: apperrors.ErrInvalidState,
		},
		{
			name:          "on_loan cannot go to maintenance",
			current:       domain.EquipmentStatusOnLoan,
			target:        domain.EquipmentStatusMaintenance,
			expectedError: apperrors.ErrInvalidState,
		},
		{
			name:          "unknown status",
			current:       domain.EquipmentStatusAvailable,
			target:        "lost",
			expectedError: apperrors.ErrInvalidState,
		},
		{
			name:          "damaged stays damaged while a report is open",
			current:       domain.EquipmentStatusDamaged,
			target:        domain.EquipmentStatusAvailable,
			hasUnresolved: true,
			expectedError: apperrors.ErrInvalidState,
		},
		{
			name:    "damaged to available once reports are resolved",
			current: domain.EquipmentStatusDamaged,
			target:  domain.EquipmentStatusAvailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, equipmentRepo, damageRepo, sink := newEquipmentService()

			equipmentRepo.On("GetByID", mock.Anything, id).Return(&domain.Equipment{
				ID:               id,
				Name:             "Microscope",
				Status:           tt.current,
				AvailableForLoan: tt.current == domain.EquipmentStatusAvailable,
			}, nil)
			if tt.target == domain.EquipmentStatusAvailable {
				damageRepo.On("HasUnresolved", mock.Anything, id).Return(tt.hasUnresolved, nil)
			}
			if tt.expectedError == nil {
				equipmentRepo.On("UpdateStatus", mock.Anything, id, tt.target, mock.AnythingOfType("bool"), mock.Anything).Return(nil)
			}

			equipment, err := svc.SetStatus(context.Background(), labAdmin, id, tt.target)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				equipmentRepo.AssertNotCalled(t, "UpdateStatus",
					mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.target, equipment.Status)
			assert.Equal(t, []string{domain.EventEquipmentStatusChanged}, sink.Types())
			equipmentRepo.AssertExpectations(t)
		})
	}
}

func TestSetEquipmentStatus_Forbidden(t *testing.T) {
	svc, equipmentRepo, _, _ := newEquipmentService()

	_, err := svc.SetStatus(context.Background(), borrower, uuid.New(), domain.EquipmentStatusMaintenance)

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	equipmentRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestSetLoanability(t *testing.T) {
	id := uuid.New()

	t.Run("withdraw from circulation", func(t *testing.T) {
		svc, equipmentRepo, _, _ := newEquipmentService()

		equipmentRepo.On("GetByID", mock.Anything, id).Return(&domain.Equipment{
			ID:               id,
			Status:           domain.EquipmentStatusAvailable,
			AvailableForLoan: true,
		}, nil)
		equipmentRepo.On("UpdateStatus", mock.Anything, id, domain.EquipmentStatusAvailable, false, mock.Anything).Return(nil)

		equipment, err := svc.SetLoanability(context.Background(), labAdmin, id, false)

		assert.NoError(t, err)
		assert.Equal(t, domain.EquipmentStatusAvailable, equipment.Status)
		assert.False(t, equipment.AvailableForLoan)
		assert.False(t, equipment.Loanable())
	})

	t.Run("non-admin is refused", func(t *testing.T) {
		svc, _, _, _ := newEquipmentService()

		_, err := svc.SetLoanability(context.Background(), reviewer, id, false)

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}

func TestIsLoanable(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name             string
		status           string
		availableForLoan bool
		expected         bool
	}{
		{"available and in pool", domain.EquipmentStatusAvailable, true, true},
		{"available but withdrawn", domain.EquipmentStatusAvailable, false, false},
		{"on loan", domain.EquipmentStatusOnLoan, true, false},
		{"damaged", domain.EquipmentStatusDamaged, false, false},
		{"maintenance", domain.EquipmentStatusMaintenance, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, equipmentRepo, _, _ := newEquipmentService()

			equipmentRepo.On("GetByID", mock.Anything, id).Return(&domain.Equipment{
				ID:               id,
				Status:           tt.status,
				AvailableForLoan: tt.availableForLoan,
			}, nil)

			loanable, err := svc.IsLoanable(context.Background(), id)

			assert.NoError(t, err)
			assert.Equal(t, tt.expected, loanable)
		})
	}

	t.Run("unknown equipment", func(t *testing.T) {
		svc, equipmentRepo, _, _ := newEquipmentService()

		equipmentRepo.On("GetByID", mock.Anything, id).Return(nil, sql.ErrNoRows)

		_, err := svc.IsLoanable(context.Background(), id)

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}
