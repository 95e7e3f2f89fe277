package notification

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/wb-go/wbf/dbpg"

	"github.com/dkhamitov/notify-gateway/internal/model"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrAlreadyExists signals a second Create for an id that already has a
	// record. The idempotency guard makes this unreachable in normal
	// operation, so it is treated as an invariant violation, not user error.
	ErrAlreadyExists = errors.New("notification already exists")

	ErrInvalidTransition = errors.New("invalid status transition")
)

const uniqueViolation = "23505"

// Repository is the notification registry: the durable record of every
// admitted notification and its lifecycle state.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new notification repository.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new notification record. The caller supplies the id,
// status and timestamps; status is expected to be "queued" at admission.
func (r *Repository) Create(ctx context.Context, n model.Notification) error {
	query := `
		INSERT INTO notifications (
		    id, idempotency_key, type, status, template_id, recipient, variables, error_message, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
    `

	recipient, err := json.Marshal(n.Recipient)
	if err != nil {
		return fmt.Errorf("failed to marshal recipient: %w", err)
	}

	variables, err := json.Marshal(n.Variables)
	if err != nil {
		return fmt.Errorf("failed to marshal variables: %w", err)
	}

	_, err = r.db.ExecContext(
		ctx, query,
		n.ID, n.IdempotencyKey, n.Type, n.Status, n.TemplateID, recipient, variables, n.ErrorMessage, n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrAlreadyExists
		}

		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// Get retrieves a notification record by its ID.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (model.Notification, error) {
	query := `
		SELECT id, idempotency_key, type, status, template_id, recipient, variables, error_message, created_at, updated_at
		FROM notifications
		WHERE id = $1;
    `

	var (
		n         model.Notification
		recipient []byte
		variables []byte
	)

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&n.ID, &n.IdempotencyKey, &n.Type, &n.Status, &n.TemplateID, &recipient, &variables, &n.ErrorMessage, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Notification{}, ErrNotificationNotFound
		}

		return model.Notification{}, fmt.Errorf("failed to get notification: %w", err)
	}

	if err := json.Unmarshal(recipient, &n.Recipient); err != nil {
		return model.Notification{}, fmt.Errorf("failed to unmarshal recipient: %w", err)
	}
	if err := json.Unmarshal(variables, &n.Variables); err != nil {
		return model.Notification{}, fmt.Errorf("failed to unmarshal variables: %w", err)
	}

	return n, nil
}

// Transition moves a notification to next and returns the updated record.
// The state machine is enforced inside the UPDATE itself: the row is only
// touched when its current status is a legal predecessor of next, so racing
// transitions cannot produce an illegal path. A non-empty errMsg is recorded
// with the transition; an empty one keeps whatever was recorded before.
// Returns ErrInvalidTransition when the record exists but next is not
// reachable from its current state.
func (r *Repository) Transition(ctx context.Context, id uuid.UUID, next model.Status, errMsg string) (model.Notification, error) {
	sources := model.AllowedSources(next)
	if len(sources) == 0 {
		return model.Notification{}, ErrInvalidTransition
	}

	from := make([]string, 0, len(sources))
	for _, s := range sources {
		from = append(from, string(s))
	}

	query := `
		UPDATE notifications
		SET status = $2, error_message = COALESCE(NULLIF($4, ''), error_message), updated_at = now()
		WHERE id = $1 AND status = ANY($3)
		RETURNING id, idempotency_key, type, status, template_id, recipient, variables, error_message, created_at, updated_at;
    `

	var (
		n         model.Notification
		recipient []byte
		variables []byte
	)

	err := r.db.QueryRowContext(ctx, query, id, next, pq.Array(from), errMsg).Scan(
		&n.ID, &n.IdempotencyKey, &n.Type, &n.Status, &n.TemplateID, &recipient, &variables, &n.ErrorMessage, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Either the record is missing or its current status does not
			// allow the transition; a second read distinguishes the two.
			if _, getErr := r.Get(ctx, id); getErr != nil {
				return model.Notification{}, getErr
			}

			return model.Notification{}, ErrInvalidTransition
		}

		return model.Notification{}, fmt.Errorf("failed to transition notification: %w", err)
	}

	if err := json.Unmarshal(recipient, &n.Recipient); err != nil {
		return model.Notification{}, fmt.Errorf("failed to unmarshal recipient: %w", err)
	}
	if err := json.Unmarshal(variables, &n.Variables); err != nil {
		return model.Notification{}, fmt.Errorf("failed to unmarshal variables: %w", err)
	}

	return n, nil
}
