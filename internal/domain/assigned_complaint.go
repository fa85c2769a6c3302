package domain

import "time"

// AssignedComplaint links a complaint to the agent responsible for it.
// Status and CompletionTime are denormalized copies of the complaint's values.
type AssignedComplaint struct {
	ID             string
	ComplaintID    string
	AgentID        string
	AgentName      string
	Status         ComplaintStatus
	CompletionTime *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AssignmentDetail is an assignment joined in memory with its complaint.
// Complaint is nil when the assignment references a complaint that no longer exists.
type AssignmentDetail struct {
	Assignment     AssignedComplaint
	Complaint      *Complaint
	CompletionTime *time.Time
}
