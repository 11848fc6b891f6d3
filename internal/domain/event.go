package domain

import "time"

// Event types published to the notification/reporting sink.
const (
	EventEquipmentStatusChanged = "equipment.status_changed"
	EventLoanApproved           = "loan.approved"
	EventLoanRejected           = "loan.rejected"
	EventLoanHandedOver         = "loan.handed_over"
	EventLoanReturned           = "loan.returned"
	EventLoanOverdue            = "loan.overdue"
	EventDamageReported         = "damage.reported"
	EventDamageResolved         = "damage.resolved"
	EventPenaltyIssued          = "penalty.issued"
	EventPenaltyCancelled       = "penalty.cancelled"
)

// Event is a fire-and-forget status-change notification for downstream
// display and export. The core never depends on delivery.
type Event struct {
	Type       string         `json:"type"`
	EntityID   string         `json:"entity_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Data       map[string]any `json:"data,omitempty"`
}

// NewEvent builds an event stamped with the current time.
func NewEvent(eventType, entityID string, data map[string]any) Event {
	return Event{
		Type:       eventType,
		EntityID:   entityID,
		OccurredAt: time.Now(),
		Data:       data,
	}
}
