package domain

import "time"

// Message is one entry of a complaint conversation. Messages are never updated or deleted.
type Message struct {
	ID          string
	ComplaintID string
	Name        string
	Body        string
	CreatedAt   time.Time
}
