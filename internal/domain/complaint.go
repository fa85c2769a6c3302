package domain

import (
	"math"
	"time"
)

// ComplaintStatus is free text; the constants are the values the workflow itself writes or inspects.
type ComplaintStatus string

const (
	ComplaintStatusPending    ComplaintStatus = "pending"
	ComplaintStatusInProgress ComplaintStatus = "in-progress"
	ComplaintStatusCompleted  ComplaintStatus = "completed"
)

// MaxStatusLength bounds free-text statuses accepted from callers.
const MaxStatusLength = 64

// Complaint is a citizen-filed civic issue.
type Complaint struct {
	ID               string
	UserID           string
	Name             string
	Address          string
	Pincode          string
	Taluk            string
	WardNo           string
	Department       string
	District         string
	Comment          string
	Images           []string
	Status           ComplaintStatus
	Assigned         bool
	AgentName        string
	CanEscalate      bool
	Escalated        bool
	EscalationReason string
	EscalationDate   *time.Time
	CompletionTime   *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Age returns how long the complaint has existed at now.
func (c *Complaint) Age(now time.Time) time.Duration {
	return now.Sub(c.CreatedAt)
}

// HoursRemaining returns the whole hours, rounded up, until the complaint is dwell old.
// It is zero once the dwell time has elapsed.
func (c *Complaint) HoursRemaining(now time.Time, dwell time.Duration) int {
	remaining := dwell.Hours() - c.Age(now).Hours()
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining))
}

// EscalationEligible reports whether the dwell time has elapsed.
func (c *Complaint) EscalationEligible(now time.Time, dwell time.Duration) bool {
	return c.Age(now) >= dwell
}
