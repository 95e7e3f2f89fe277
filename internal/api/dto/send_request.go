package dto

// SendRequest is the body of POST /api/notifications. The recipient and
// variables maps are opaque to the gateway and forwarded to the delivery
// queue unmodified.
type SendRequest struct {
	NotificationType string                 `json:"notification_type" validate:"required,oneof=email push"`
	TemplateID       string                 `json:"template_id" validate:"required"`
	Recipient        map[string]interface{} `json:"recipient" validate:"required"`
	Variables        map[string]interface{} `json:"variables"`
}

// ReportRequest is the body of the worker status callback,
// POST /api/notifications/:id/status.
type ReportRequest struct {
	Status string `json:"status" validate:"required"`
	Error  string `json:"error"`
}
