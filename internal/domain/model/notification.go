package model

import "time"

const DefaultNotificationMessage = "some notification"

// Notification is a queued message for a single recipient.
type Notification struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Message    string    `json:"message"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}
