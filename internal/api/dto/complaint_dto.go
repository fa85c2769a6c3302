package dto

import (
	"time"

	"github.com/civicbridge/complaint-service/internal/domain"
)

// ComplaintResponse is the wire form of a complaint.
type ComplaintResponse struct {
	ID               string                 `json:"_id"`
	UserID           string                 `json:"userId"`
	Name             string                 `json:"name"`
	Address          string                 `json:"address"`
	Pincode          string                 `json:"pincode"`
	Taluk            string                 `json:"taluk"`
	WardNo           string                 `json:"wardNo"`
	Department       string                 `json:"department"`
	District         string                 `json:"district"`
	Comment          string                 `json:"comment"`
	Images           []string               `json:"images"`
	Status           domain.ComplaintStatus `json:"status"`
	Assigned         bool                   `json:"assigned"`
	AgentName        string                 `json:"agentName"`
	CanEscalate      bool                   `json:"canEscalate"`
	Escalated        bool                   `json:"escalated"`
	EscalationReason string                 `json:"escalationReason,omitempty"`
	EscalationDate   *time.Time             `json:"escalationDate,omitempty"`
	CompletionTime   *time.Time             `json:"completionTime,omitempty"`
	CreatedAt        time.Time              `json:"createdAt"`
	UpdatedAt        time.Time              `json:"updatedAt"`
}

// SetStatusRequest payload. UpdateTime becomes the completion time when present.
type SetStatusRequest struct {
	Status     string     `json:"status"`
	UpdateTime *time.Time `json:"updateTime"`
}

// StatusUpdatedResponse wraps the complaint after a status change. Complaint
// is null when only assignment rows existed.
type StatusUpdatedResponse struct {
	Message   string             `json:"message"`
	Complaint *ComplaintResponse `json:"complaint"`
}

// EscalateRequest payload.
type EscalateRequest struct {
	Reason string `json:"reason"`
}

// EscalatedResponse response.
type EscalatedResponse struct {
	Message   string            `json:"message"`
	Complaint ComplaintResponse `json:"complaint"`
}

// EligibilityResponse carries either the updated complaint or the remaining hours.
type EligibilityResponse struct {
	Message        string             `json:"message"`
	Complaint      *ComplaintResponse `json:"complaint,omitempty"`
	HoursRemaining *int               `json:"hoursRemaining,omitempty"`
}

// AssignRequest payload.
type AssignRequest struct {
	ComplaintID string `json:"complaintId"`
	AgentID     string `json:"agentId"`
	AgentName   string `json:"agentName"`
}

// AssignmentResponse is the wire form of an assignment row.
type AssignmentResponse struct {
	ID             string                 `json:"_id"`
	ComplaintID    string                 `json:"complaintId"`
	AgentID        string                 `json:"agentId"`
	AgentName      string                 `json:"agentName"`
	Status         domain.ComplaintStatus `json:"status"`
	CompletionTime *time.Time             `json:"completionTime,omitempty"`
	CreatedAt      time.Time              `json:"createdAt"`
}

// AssignedResponse response for a new assignment.
type AssignedResponse struct {
	Message           string             `json:"message"`
	AssignedComplaint AssignmentResponse `json:"assignedComplaint"`
}

// AssignmentDetailResponse is an assignment with the full complaint, null when dangling.
type AssignmentDetailResponse struct {
	ID               string                 `json:"_id"`
	AgentID          string                 `json:"agentId"`
	ComplaintID      string                 `json:"complaintId"`
	Status           domain.ComplaintStatus `json:"status"`
	AgentName        string                 `json:"agentName"`
	ComplaintDetails *ComplaintResponse     `json:"complaintDetails"`
}

// AgentComplaintResponse is one row of an agent's work queue: the assignment
// flattened with the complaint fields an agent needs.
type AgentComplaintResponse struct {
	ID             string                 `json:"_id"`
	ComplaintID    string                 `json:"complaintId"`
	AgentID        string                 `json:"agentId"`
	AgentName      string                 `json:"agentName"`
	Status         domain.ComplaintStatus `json:"status"`
	CreatedAt      time.Time              `json:"createdAt"`
	Name           string                 `json:"name"`
	Address        string                 `json:"address"`
	Pincode        string                 `json:"pincode"`
	Comment        string                 `json:"comment"`
	Department     string                 `json:"department"`
	District       string                 `json:"district"`
	Taluk          string                 `json:"taluk"`
	WardNo         string                 `json:"wardNo"`
	Images         []string               `json:"images"`
	Escalated      bool                   `json:"escalated"`
	CompletionTime *time.Time             `json:"completionTime"`
}

// SubmitComplaintRequest holds the text fields of a complaint submission,
// sent either as multipart form values or as JSON.
type SubmitComplaintRequest struct {
	Name       string `json:"name" form:"name"`
	Address    string `json:"address" form:"address"`
	Pincode    string `json:"pincode" form:"pincode"`
	Taluk      string `json:"taluk" form:"taluk"`
	WardNo     string `json:"wardNo" form:"wardNo"`
	Department string `json:"department" form:"department"`
	District   string `json:"district" form:"district"`
	Comment    string `json:"comment" form:"comment"`
}
