package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	SeverityMinor    = "minor"
	SeverityModerate = "moderate"
	SeveritySevere   = "severe"
)

// ValidSeverity reports whether s is a known damage severity.
func ValidSeverity(s string) bool {
	switch s {
	case SeverityMinor, SeverityModerate, SeveritySevere:
		return true
	}
	return false
}

// DamageReport records a defect observed on an equipment unit,
// independent of any specific loan. Filing one forces the unit out of
// circulation; resolution by an administrator is the only path back.
type DamageReport struct {
	ID            uuid.UUID      `json:"id" db:"id"`
	EquipmentID   uuid.UUID      `json:"equipment_id" db:"equipment_id"`
	Category      string         `json:"category" db:"category"`
	Severity      string         `json:"severity" db:"severity"`
	Description   string         `json:"description" db:"description"`
	PhotoRefs     pq.StringArray `json:"photo_refs" db:"photo_refs"`
	ReporterID    string         `json:"reporter_id" db:"reporter_id"`
	ReporterName  string         `json:"reporter_name" db:"reporter_name"`
	ReporterRole  string         `json:"reporter_role" db:"reporter_role"`
	ReportedAt    time.Time      `json:"reported_at" db:"reported_at"`
	Resolved      bool           `json:"resolved" db:"resolved"`
	ResolverID    *string        `json:"resolver_id,omitempty" db:"resolver_id"`
	ResolverNotes *string        `json:"resolver_notes,omitempty" db:"resolver_notes"`
	ResolvedAt    *time.Time     `json:"resolved_at,omitempty" db:"resolved_at"`
}

// DTOs for requests and responses

type ReportDamageRequest struct {
	EquipmentID string        `json:"equipment_id" validate:"required,uuid"`
	Category    string        `json:"category" validate:"required"`
	Severity    string        `json:"severity" validate:"required"`
	Description string        `json:"description" validate:"required"`
	Photos      []PhotoUpload `json:"photos"`
}

type ResolveDamageRequest struct {
	Notes string `json:"notes"`
}
