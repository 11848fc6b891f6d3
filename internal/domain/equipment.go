package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	EquipmentStatusAvailable      = "available"
	EquipmentStatusOnLoan         = "on_loan"
	EquipmentStatusMaintenance    = "maintenance"
	EquipmentStatusDamaged        = "damaged"
	EquipmentStatusDecommissioned = "decommissioned"
)

// Equipment represents a shared laboratory equipment unit
type Equipment struct {
	ID                    uuid.UUID  `json:"id" db:"id"`
	Name                  string     `json:"name" db:"name"`
	Category              string     `json:"category" db:"category"`
	Location              string     `json:"location" db:"location"`
	SerialNumber          string     `json:"serial_number" db:"serial_number"`
	Status                string     `json:"status" db:"status"`
	AvailableForLoan      bool       `json:"available_for_loan" db:"available_for_loan"`
	CurrentDamageReportID *uuid.UUID `json:"current_damage_report_id,omitempty" db:"current_damage_report_id"`
	CreatedAt             time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at" db:"updated_at"`
}

// Loanable reports whether the unit itself can be attached to a new
// loan request. Borrower-side blocks (active penalties) are checked
// by the loan workflow, not here.
func (e *Equipment) Loanable() bool {
	return e.Status == EquipmentStatusAvailable && e.AvailableForLoan
}

// equipmentTransitions lists the legal status transitions. Damaged
// equipment only returns to available through damage report resolution;
// decommissioned is terminal.
var equipmentTransitions = map[string][]string{
	EquipmentStatusAvailable:   {EquipmentStatusOnLoan, EquipmentStatusMaintenance, EquipmentStatusDamaged, EquipmentStatusDecommissioned},
	EquipmentStatusOnLoan:      {EquipmentStatusAvailable, EquipmentStatusDamaged},
	EquipmentStatusMaintenance: {EquipmentStatusAvailable, EquipmentStatusDamaged, EquipmentStatusDecommissioned},
	EquipmentStatusDamaged:     {EquipmentStatusAvailable, EquipmentStatusDecommissioned},
}

// CanTransitionEquipment reports whether a status change is legal per
// the equipment lifecycle.
func CanTransitionEquipment(from, to string) bool {
	for _, next := range equipmentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidEquipmentStatus reports whether s is a known equipment status.
func ValidEquipmentStatus(s string) bool {
	switch s {
	case EquipmentStatusAvailable, EquipmentStatusOnLoan, EquipmentStatusMaintenance,
		EquipmentStatusDamaged, EquipmentStatusDecommissioned:
		return true
	}
	return false
}

// DTOs for requests and responses

type RegisterEquipmentRequest struct {
	Name         string `json:"name" validate:"required"`
	Category     string `json:"category" validate:"required"`
	Location     string `json:"location" validate:"required"`
	SerialNumber string `json:"serial_number" validate:"required"`
}

type SetEquipmentStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type SetLoanabilityRequest struct {
	AvailableForLoan *bool `json:"available_for_loan" validate:"required"`
}
