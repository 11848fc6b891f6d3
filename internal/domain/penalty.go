package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	PenaltyStatusActive    = "active"
	PenaltyStatusCompleted = "completed"
	PenaltyStatusCancelled = "cancelled"
)

// Penalty is a time-boxed borrowing block issued against a borrower.
// While one is active, new loan requests from that borrower are
// rejected at validation time.
type Penalty struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	BorrowerID    string     `json:"borrower_id" db:"borrower_id"`
	Reason        string     `json:"reason" db:"reason"`
	StartDate     time.Time  `json:"start_date" db:"start_date"`
	EndDate       time.Time  `json:"end_date" db:"end_date"`
	Status        string     `json:"status" db:"status"`
	RuleThreshold int        `json:"rule_threshold" db:"rule_threshold"`
	CancelledBy   *string    `json:"cancelled_by,omitempty" db:"cancelled_by"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// PenaltyRule maps a days-late threshold to a penalty duration. Rules
// are administrator-configured and kept sorted ascending by threshold;
// the engine picks the largest threshold <= daysLate.
type PenaltyRule struct {
	DaysLateThreshold int `json:"days_late_threshold"`
	PenaltyDays       int `json:"penalty_days"`
}
