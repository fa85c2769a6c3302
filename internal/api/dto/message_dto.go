package dto

import "time"

// PostMessageRequest payload.
type PostMessageRequest struct {
	ComplaintID string `json:"complaintId"`
	Name        string `json:"name"`
	Message     string `json:"message"`
}

// ConversationMessage is the wire form of one message.
type ConversationMessage struct {
	ID          string    `json:"_id"`
	ComplaintID string    `json:"complaintId"`
	Name        string    `json:"name"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"createdAt"`
}
