package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/civicbridge/complaint-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventComplaintSubmitted     EventType = "complaint_submitted"
	EventComplaintStatusChanged EventType = "complaint_status_changed"
	EventComplaintAssigned      EventType = "complaint_assigned"
	EventComplaintEscalated     EventType = "complaint_escalated"
	EventMessagePosted          EventType = "message_posted"
)

// AllEventTypes lists every type a subscriber may register for.
var AllEventTypes = []EventType{
	EventComplaintSubmitted,
	EventComplaintStatusChanged,
	EventComplaintAssigned,
	EventComplaintEscalated,
	EventMessagePosted,
}

// Event represents a domain event emitted by services.
type Event struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	ComplaintID string    `json:"complaint_id"`
	Timestamp   time.Time `json:"timestamp"`
	Payload     any       `json:"payload"`
}

// New stamps an event with a fresh id.
func New(eventType EventType, complaintID string, at time.Time, payload any) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		ComplaintID: complaintID,
		Timestamp:   at,
		Payload:     payload,
	}
}

// ComplaintSubmittedPayload payload.
type ComplaintSubmittedPayload struct {
	UserID     string `json:"user_id"`
	Department string `json:"department"`
	District   string `json:"district"`
	ImageCount int    `json:"image_count"`
}

// ComplaintStatusChangedPayload payload. The flags record which side of the
// dual write found a record.
type ComplaintStatusChangedPayload struct {
	Status            domain.ComplaintStatus `json:"status"`
	ComplaintUpdated  bool                   `json:"complaint_updated"`
	AssignmentsUpdate int64                  `json:"assignments_updated"`
}

// ComplaintAssignedPayload payload.
type ComplaintAssignedPayload struct {
	AssignmentID string `json:"assignment_id"`
	AgentID      string `json:"agent_id"`
	AgentName    string `json:"agent_name"`
}

// ComplaintEscalatedPayload payload.
type ComplaintEscalatedPayload struct {
	Reason string `json:"reason"`
}

// MessagePostedPayload payload.
type MessagePostedPayload struct {
	MessageID   string `json:"message_id"`
	Sender      string `json:"sender"`
	BodyPreview string `json:"body_preview"`
}
