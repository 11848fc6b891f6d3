package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadlab/equipment-loan-engine/internal/domain"
	"github.com/acadlab/equipment-loan-engine/internal/repository"
	apperrors "github.com/acadlab/equipment-loan-engine/pkg/errors"
)

func TestLoanRepository_Create(t *testing.T) {
	db := setupTestDB(t)

	repo := repository.NewLoanRepository(db)
	ctx := context.Background()
	equipment := createEquipment(t, db)

	loan := &domain.LoanRequest{
		ID:           uuid.New(),
		EquipmentID:  equipment.ID,
		BorrowerID:   "student-001",
		BorrowerName: "Dina Kusuma",
		StartDate:    time.Now().AddDate(0, 0, 1),
		EndDate:      time.Now().AddDate(0, 0, 8),
		Purpose:      "Signal integrity lab session",
		Status:       domain.LoanStatusPending,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	err := repo.Create(ctx, loan)
	require.NoError(t, err)

	stored, err := repo.GetByID(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanStatusPending, stored.Status)
	assert.Equal(t, 1, stored.Version)
}

func TestLoanRepository_Create_DuplicateOpenRequest(t *testing.T) {
	db := setupTestDB(t)

	repo := repository.NewLoanRepository(db)
	ctx := context.Background()
	equipment := createEquipment(t, db)

	first := &domain.LoanRequest{
		ID:           uuid.New(),
		EquipmentID:  equipment.ID,
		BorrowerID:   "student-001",
		BorrowerName: "Dina Kusuma",
		StartDate:    time.Now().AddDate(0, 0, 1),
		EndDate:      time.Now().AddDate(0, 0, 8),
		Purpose:      "Signal integrity lab session",
		Status:       domain.LoanStatusPending,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	require.NoError(t, repo.Create(ctx, first))

	second := &domain.LoanRequest{
		ID:           uuid.New(),
		EquipmentID:  equipment.ID,
		BorrowerID:   "student-001",
		BorrowerName: "Dina Kusuma",
		StartDate:    time.Now().AddDate(0, 0, 2),
		EndDate:      time.Now().AddDate(0, 0, 9),
		Purpose:      "Follow-up measurements",
		Status:       domain.LoanStatusPending,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	err := repo.Create(ctx, second)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateActiveRequest)
}

func TestLoanRepository_Create_DamagedEquipment(t *testing.T) {
	db := setupTestDB(t)

	repo := repository.NewLoanRepository(db)
	ctx := context.Background()
	equipment := createEquipment(t, db)
	fileDamageReport(t, db, equipment.ID)

	loan := &domain.LoanRequest{
		ID:           uuid.New(),
		EquipmentID:  equipment.ID,
		BorrowerID:   "student-001",
		BorrowerName: "Dina Kusuma",
		StartDate:    time.Now().AddDate(0, 0, 1),
		EndDate:      time.Now().AddDate(0, 0, 8),
		Purpose:      "Signal integrity lab session",
		Status:       domain.LoanStatusPending,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	err := repo.Create(ctx, loan)
	assert.ErrorIs(t, err, apperrors.ErrEquipmentUnavailable)
}

func TestLoanRepository_MarkHandoff(t *testing.T) {
	db := setupTestDB(t)

	repo := repository.NewLoanRepository(db)
	ctx := context.Background()
	equipment := createEquipment(t, db)
	loan := createApprovedLoan(t, db, equipment.ID)

	conditionID := uuid.New()
	err := repo.MarkHandoff(ctx, loan.ID, loan.Version, conditionID, time.Now())
	require.NoError(t, err)

	stored, err := repo.GetByID(ctx, loan.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.HandedOverAt)
	require.NotNil(t, stored.InitialConditionID)
	assert.Equal(t, conditionID, *stored.InitialConditionID)
	assert.Equal(t, loan.Version+1, stored.Version)

	assert.Equal(t, domain.EquipmentStatusOnLoan, fetchEquipment(t, db, equipment.ID).Status)
}

// A damage report filed between approval and hand-off must win: the
// hand-off fails outright and neither row changes.
func TestLoanRepository_MarkHandoff_DamagedEquipment(t *testing.T) {
	db := setupTestDB(t)

	repo := repository.NewLoanRepository(db)
	ctx := context.Background()
	equipment := createEquipment(t, db)
	loan := createApprovedLoan(t, db, equipment.ID)

	report := fileDamageReport(t, db, equipment.ID)

	err := repo.MarkHandoff(ctx, loan.ID, loan.Version, uuid.New(), time.Now())
	assert.ErrorIs(t, err, apperrors.ErrEquipmentUnavailable)

	stored, err := repo.GetByID(ctx, loan.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.HandedOverAt)
	assert.Equal(t, loan.Version, stored.Version)

	current := fetchEquipment(t, db, equipment.ID)
	assert.Equal(t, domain.EquipmentStatusDamaged, current.Status)
	require.NotNil(t, current.CurrentDamageReportID)
	assert.Equal(t, report.ID, *current.CurrentDamageReportID)
}

func TestLoanRepository_MarkHandoff_VersionConflict(t *testing.T) {
	db := setupTestDB(t)

	repo := repository.NewLoanRepository(db)
	ctx := context.Background()
	equipment := createEquipment(t, db)
	loan := createApprovedLoan(t, db, equipment.ID)

	err := repo.MarkHandoff(ctx, loan.ID, loan.Version+5, uuid.New(), time.Now())
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	assert.Equal(t, domain.EquipmentStatusAvailable, fetchEquipment(t, db, equipment.ID).Status)
}

func TestLoanRepository_MarkReturned(t *testing.T) {
	db := setupTestDB(t)

	repo := repository.NewLoanRepository(db)
	ctx := context.Background()
	equipment := createEquipment(t, db)
	loan := createApprovedLoan(t, db, equipment.ID)

	require.NoError(t, repo.MarkHandoff(ctx, loan.ID, loan.Version, uuid.New(), time.Now()))
	handedOver, err := repo.GetByID(ctx, loan.ID)
	require.NoError(t, err)

	conditionID := uuid.New()
	status, err := repo.MarkReturned(ctx, loan.ID, handedOver.Version, conditionID, time.Now(), 0)
	require.NoError(t, err)
	assert.Equal(t, domain.EquipmentStatusAvailable, status)

	stored, err := repo.GetByID(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanStatusReturned, stored.Status)
	require.NotNil(t, stored.ReturnedAt)
	require.NotNil(t, stored.FinalConditionID)
	assert.Equal(t, conditionID, *stored.FinalConditionID)

	assert.Equal(t, domain.EquipmentStatusAvailable, fetchEquipment(t, db, equipment.ID).Status)
}

// Damage reported while the unit was out keeps the equipment damaged
// through the return; the status decision happens under the equipment
// row lock, not from a stale read.
func TestLoanRepository_MarkReturned_DamagedMidLoan(t *testing.T) {
	db := setupTestDB(t)

	repo := repository.NewLoanRepository(db)
	ctx := context.Background()
	equipment := createEquipment(t, db)
	loan := createApprovedLoan(t, db, equipment.ID)

	require.NoError(t, repo.MarkHandoff(ctx, loan.ID, loan.Version, uuid.New(), time.Now()))
	handedOver, err := repo.GetByID(ctx, loan.ID)
	require.NoError(t, err)

	fileDamageReport(t, db, equipment.ID)

	status, err := repo.MarkReturned(ctx, loan.ID, handedOver.Version, uuid.New(), time.Now(), 2)
	require.NoError(t, err)
	assert.Equal(t, domain.EquipmentStatusDamaged, status)

	stored, err := repo.GetByID(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanStatusReturned, stored.Status)
	assert.Equal(t, 2, stored.DaysLate)

	current := fetchEquipment(t, db, equipment.ID)
	assert.Equal(t, domain.EquipmentStatusDamaged, current.Status)
	assert.False(t, current.AvailableForLoan)
}

func TestLoanRepository_MarkReturned_VersionConflict(t *testing.T) {
	db := setupTestDB(t)

	repo := repository.NewLoanRepository(db)
	ctx := context.Background()
	equipment := createEquipment(t, db)
	loan := createApprovedLoan(t, db, equipment.ID)

	require.NoError(t, repo.MarkHandoff(ctx, loan.ID, loan.Version, uuid.New(), time.Now()))

	_, err := repo.MarkReturned(ctx, loan.ID, loan.Version, uuid.New(), time.Now(), 0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	assert.Equal(t, domain.EquipmentStatusOnLoan, fetchEquipment(t, db, equipment.ID).Status)
}

func TestLoanRepository_UpdateDecision_AlreadyDecided(t *testing.T) {
	db := setupTestDB(t)

	repo := repository.NewLoanRepository(db)
	ctx := context.Background()
	equipment := createEquipment(t, db)
	loan := createApprovedLoan(t, db, equipment.ID)

	approverID := "staff-002"
	approverName := "Bu Ratna"
	decidedAt := time.Now()
	loan.Status = domain.LoanStatusRejected
	loan.ApproverID = &approverID
	loan.ApproverName = &approverName
	loan.DecidedAt = &decidedAt

	err := repo.UpdateDecision(ctx, loan)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}
