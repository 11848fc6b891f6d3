package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Condition grades, best to worst.
const (
	GradeExcellent = "excellent"
	GradeGood      = "good"
	GradeFair      = "fair"
	GradePoor      = "poor"
)

// gradeRank orders grades so a return can be compared against the
// hand-off snapshot.
var gradeRank = map[string]int{
	GradeExcellent: 4,
	GradeGood:      3,
	GradeFair:      2,
	GradePoor:      1,
}

// ValidGrade reports whether g is a known condition grade.
func ValidGrade(g string) bool {
	_, ok := gradeRank[g]
	return ok
}

// GradeWorseThan reports whether grade a is strictly worse than b.
func GradeWorseThan(a, b string) bool {
	return gradeRank[a] < gradeRank[b]
}

// DegradedGrade reports whether the grade requires a written
// justification when recorded.
func DegradedGrade(g string) bool {
	return g == GradeFair || g == GradePoor
}

// ConditionRecord is an immutable snapshot of an equipment unit's
// physical condition, taken at hand-off or hand-back.
type ConditionRecord struct {
	ID           uuid.UUID      `json:"id" db:"id"`
	EquipmentID  uuid.UUID      `json:"equipment_id" db:"equipment_id"`
	Grade        string         `json:"grade" db:"grade"`
	Observation  string         `json:"observation" db:"observation"`
	PhotoRefs    pq.StringArray `json:"photo_refs" db:"photo_refs"`
	RecordedAt   time.Time      `json:"recorded_at" db:"recorded_at"`
	RecorderID   string         `json:"recorder_id" db:"recorder_id"`
	RecorderName string         `json:"recorder_name" db:"recorder_name"`
	RecorderRole string         `json:"recorder_role" db:"recorder_role"`
}

// ConditionInput is the caller-supplied part of a snapshot; photos are
// raw bytes handed to the photo store, only references persist.
type ConditionInput struct {
	Grade       string        `json:"grade" validate:"required"`
	Observation string        `json:"observation"`
	Photos      []PhotoUpload `json:"photos"`
}

type PhotoUpload struct {
	Data []byte `json:"data"`
	Ext  string `json:"ext"`
}
