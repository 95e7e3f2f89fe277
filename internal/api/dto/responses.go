package dto

import (
	"time"

	"github.com/google/uuid"
)

// SendResponse is returned for both fresh and duplicate admissions; a
// duplicate carries the original notification's identity and status.
type SendResponse struct {
	NotificationID   uuid.UUID `json:"notification_id"`
	Status           string    `json:"status"`
	NotificationType string    `json:"notification_type"`
	CreatedAt        time.Time `json:"created_at"`
	Duplicate        bool      `json:"duplicate"`
}

// StatusResponse is the body of GET /api/notifications/:id.
type StatusResponse struct {
	NotificationID uuid.UUID `json:"notification_id"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
