package model

import (
	"time"

	"github.com/google/uuid"
)

// Type is the delivery channel of a notification.
type Type string

const (
	TypeEmail Type = "email"
	TypePush  Type = "push"
)

// Valid reports whether t is a known delivery channel.
func (t Type) Valid() bool {
	return t == TypeEmail || t == TypePush
}

// Status is a notification lifecycle state.
type Status string

const (
	StatusQueued       Status = "queued"
	StatusProcessing   Status = "processing"
	StatusSent         Status = "sent"
	StatusFailed       Status = "failed"
	StatusRetried      Status = "retried"
	StatusDeadLettered Status = "dead_lettered"

	// StatusPending is returned for a duplicate admission whose record is not
	// visible yet (the winner has claimed the key but its create has not
	// completed). It is never persisted.
	StatusPending Status = "pending"
)

// transitions lists the legal successors of every non-terminal state.
var transitions = map[Status][]Status{
	StatusQueued:     {StatusProcessing, StatusFailed},
	StatusProcessing: {StatusSent, StatusFailed},
	StatusFailed:     {StatusDeadLettered, StatusRetried},
	StatusRetried:    {StatusProcessing},
}

// Known reports whether s is a persistable lifecycle state.
func (s Status) Known() bool {
	if _, ok := transitions[s]; ok {
		return true
	}
	return s == StatusSent || s == StatusDeadLettered
}

// Terminal reports whether s has no legal successors.
func (s Status) Terminal() bool {
	return s == StatusSent || s == StatusDeadLettered
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s Status) CanTransitionTo(next Status) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// AllowedSources returns every state from which next is reachable in one step.
func AllowedSources(next Status) []Status {
	var sources []Status
	for from, successors := range transitions {
		for _, t := range successors {
			if t == next {
				sources = append(sources, from)
			}
		}
	}
	return sources
}

// Notification represents an admitted notification and its tracked state.
type Notification struct {
	ID             uuid.UUID              `json:"notification_id"` // assigned once at admission, never reused
	IdempotencyKey string                 `json:"idempotency_key"`
	Type           Type                   `json:"notification_type"` // delivery channel, e.g. "email", "push"
	Status         Status                 `json:"status"`
	TemplateID     string                 `json:"template_id"`
	Recipient      map[string]interface{} `json:"recipient"` // opaque, forwarded to the queue as-is
	Variables      map[string]interface{} `json:"variables"` // opaque template variables
	ErrorMessage   string                 `json:"error_message,omitempty"` // last worker-reported failure reason
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"` // advances on every status transition
}
