package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/acadlab/equipment-loan-engine/internal/domain"
	"github.com/acadlab/equipment-loan-engine/internal/repository"
	apperrors "github.com/acadlab/equipment-loan-engine/pkg/errors"
	"github.com/acadlab/equipment-loan-engine/pkg/utils"
)

// ReportingService rolls up closed loans into usage statistics. Purely
// derived from the loan workflow's output; it holds no invariants.
type ReportingService struct {
	loanRepo      repository.LoanRepository
	equipmentRepo repository.EquipmentRepository
}

func NewReportingService(loanRepo repository.LoanRepository, equipmentRepo repository.EquipmentRepository) *ReportingService {
	return &ReportingService{
		loanRepo:      loanRepo,
		equipmentRepo: equipmentRepo,
	}
}

// UsageReport aggregates loans returned inside [from, to).
func (s *ReportingService) UsageReport(ctx context.Context, from, to time.Time) (*domain.UsageReport, error) {
	if to.Before(from) {
		return nil, apperrors.WrapInvalidDateRange("report period end is before start")
	}

	loans, err := s.loanRepo.ListReturnedBetween(ctx, from, to)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	equipment, err := s.equipmentRepo.List(ctx)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}
	names := make(map[uuid.UUID]string, len(equipment))
	for _, e := range equipment {
		names[e.ID] = e.Name
	}

	report := &domain.UsageReport{
		From:        from,
		To:          to,
		TotalLoans:  len(loans),
		LateRate:    decimal.Zero,
		AvgDaysLate: decimal.Zero,
	}

	type bucket struct {
		count    int
		loanDays int
		late     int
	}
	buckets := make(map[uuid.UUID]*bucket)
	order := make([]uuid.UUID, 0)
	totalDaysLate := 0

	for _, loan := range loans {
		b, ok := buckets[loan.EquipmentID]
		if !ok {
			b = &bucket{}
			buckets[loan.EquipmentID] = b
			order = append(order, loan.EquipmentID)
		}

		days := 1
		if loan.HandedOverAt != nil && loan.ReturnedAt != nil {
			days = utils.DaysBetween(*loan.HandedOverAt, *loan.ReturnedAt)
		}

		b.count++
		b.loanDays += days
		if loan.DaysLate > 0 {
			b.late++
			report.LateReturns++
			totalDaysLate += loan.DaysLate
		}
	}

	periodDays := decimal.NewFromInt(int64(utils.DaysBetween(from, to)))

	for _, id := range order {
		b := buckets[id]
		count := decimal.NewFromInt(int64(b.count))

		usage := domain.EquipmentUsage{
			EquipmentID:   id,
			EquipmentName: names[id],
			LoanCount:     b.count,
			TotalLoanDays: b.loanDays,
			LateReturns:   b.late,
			AvgLoanDays:   decimal.NewFromInt(int64(b.loanDays)).Div(count).Round(2),
			LateRate:      decimal.NewFromInt(int64(b.late)).Div(count).Round(2),
			Utilization:   decimal.NewFromInt(int64(b.loanDays)).Div(periodDays).Round(2),
		}
		report.PerEquipment = append(report.PerEquipment, usage)
	}

	if report.TotalLoans > 0 {
		total := decimal.NewFromInt(int64(report.TotalLoans))
		report.LateRate = decimal.NewFromInt(int64(report.LateReturns)).Div(total).Round(2)
		report.AvgDaysLate = decimal.NewFromInt(int64(totalDaysLate)).Div(total).Round(2)
	}

	return report, nil
}
