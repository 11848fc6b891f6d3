package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EquipmentUsage aggregates the closed loans of one equipment unit
// over a reporting period.
type EquipmentUsage struct {
	EquipmentID   uuid.UUID       `json:"equipment_id"`
	EquipmentName string          `json:"equipment_name"`
	LoanCount     int             `json:"loan_count"`
	TotalLoanDays int             `json:"total_loan_days"`
	LateReturns   int             `json:"late_returns"`
	AvgLoanDays   decimal.Decimal `json:"avg_loan_days"`
	LateRate      decimal.Decimal `json:"late_rate"`
	Utilization   decimal.Decimal `json:"utilization"`
}

// UsageReport rolls up closed loans into usage statistics. Purely
// derived; holds no invariants of its own.
type UsageReport struct {
	From         time.Time        `json:"from"`
	To           time.Time        `json:"to"`
	TotalLoans   int              `json:"total_loans"`
	LateReturns  int              `json:"late_returns"`
	LateRate     decimal.Decimal  `json:"late_rate"`
	AvgDaysLate  decimal.Decimal  `json:"avg_days_late"`
	PerEquipment []EquipmentUsage `json:"per_equipment"`
}
