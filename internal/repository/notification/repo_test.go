package notification

import (
	"context"
	"database/sql"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/dbpg"

	"github.com/dkhamitov/notify-gateway/internal/model"
)

func setupMockDB(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open mock db: %v", err)
	}

	wrappedDB := &dbpg.DB{Master: db}
	repo := NewRepository(wrappedDB)

	return repo, mock
}

func sampleNotification() model.Notification {
	now := time.Now().UTC()
	return model.Notification{
		ID:             uuid.New(),
		IdempotencyKey: "req-42",
		Type:           model.TypeEmail,
		Status:         model.StatusQueued,
		TemplateID:     "welcome_email",
		Recipient:      map[string]interface{}{"user_id": "user_123", "email": "test@example.com"},
		Variables:      map[string]interface{}{"name": "John Doe"},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func recordRow(n model.Notification) *sqlmock.Rows {
	recipient, _ := json.Marshal(n.Recipient)
	variables, _ := json.Marshal(n.Variables)

	return sqlmock.NewRows([]string{
		"id", "idempotency_key", "type", "status", "template_id", "recipient", "variables", "error_message", "created_at", "updated_at",
	}).AddRow(n.ID, n.IdempotencyKey, n.Type, n.Status, n.TemplateID, recipient, variables, n.ErrorMessage, n.CreatedAt, n.UpdatedAt)
}

func TestCreate(t *testing.T) {
	repo, mock := setupMockDB(t)

	n := sampleNotification()
	recipient, _ := json.Marshal(n.Recipient)
	variables, _ := json.Marshal(n.Variables)

	mock.ExpectExec(regexp.QuoteMeta(`
		INSERT INTO notifications (
		    id, idempotency_key, type, status, template_id, recipient, variables, error_message, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
    `)).
		WithArgs(n.ID, n.IdempotencyKey, n.Type, n.Status, n.TemplateID, recipient, variables, n.ErrorMessage, n.CreatedAt, n.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), n)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_AlreadyExists(t *testing.T) {
	repo, mock := setupMockDB(t)

	n := sampleNotification()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO notifications`)).
		WillReturnError(&pq.Error{Code: uniqueViolation})

	err := repo.Create(context.Background(), n)
	assert.ErrorIs(t, err, ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet(t *testing.T) {
	repo, mock := setupMockDB(t)

	n := sampleNotification()

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id, idempotency_key, type, status, template_id, recipient, variables, error_message, created_at, updated_at
		FROM notifications
		WHERE id = $1;
    `)).
		WithArgs(n.ID).
		WillReturnRows(recordRow(n))

	got, err := repo.Get(context.Background(), n.ID)
	require.NoError(t, err)
	assert.Equal(t, n.ID, got.ID)
	assert.Equal(t, n.Status, got.Status)
	assert.Equal(t, "test@example.com", got.Recipient["email"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_NotFound(t *testing.T) {
	repo, mock := setupMockDB(t)

	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, idempotency_key`)).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotificationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransition(t *testing.T) {
	repo, mock := setupMockDB(t)

	n := sampleNotification()
	n.Status = model.StatusProcessing

	mock.ExpectQuery(regexp.QuoteMeta(`
		UPDATE notifications
		SET status = $2, error_message = COALESCE(NULLIF($4, ''), error_message), updated_at = now()
		WHERE id = $1 AND status = ANY($3)
		RETURNING id, idempotency_key, type, status, template_id, recipient, variables, error_message, created_at, updated_at;
    `)).
		WithArgs(n.ID, model.StatusProcessing, sqlmock.AnyArg(), "").
		WillReturnRows(recordRow(n))

	got, err := repo.Transition(context.Background(), n.ID, model.StatusProcessing, "")
	require.NoError(t, err)
	assert.Equal(t, model.StatusProcessing, got.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransition_RecordsErrorMessage(t *testing.T) {
	repo, mock := setupMockDB(t)

	n := sampleNotification()
	n.Status = model.StatusFailed
	n.ErrorMessage = "smtp 550 mailbox unavailable"

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE notifications`)).
		WithArgs(n.ID, model.StatusFailed, sqlmock.AnyArg(), "smtp 550 mailbox unavailable").
		WillReturnRows(recordRow(n))

	got, err := repo.Transition(context.Background(), n.ID, model.StatusFailed, "smtp 550 mailbox unavailable")
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, got.Status)
	assert.Equal(t, "smtp 550 mailbox unavailable", got.ErrorMessage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransition_Invalid(t *testing.T) {
	repo, mock := setupMockDB(t)

	n := sampleNotification()
	n.Status = model.StatusSent

	// No row matches the allowed predecessors, then the follow-up read finds
	// the record in a terminal state: the transition is illegal.
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE notifications`)).
		WithArgs(n.ID, model.StatusProcessing, sqlmock.AnyArg(), "").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, idempotency_key`)).
		WithArgs(n.ID).
		WillReturnRows(recordRow(n))

	_, err := repo.Transition(context.Background(), n.ID, model.StatusProcessing, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransition_NotFound(t *testing.T) {
	repo, mock := setupMockDB(t)

	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE notifications`)).
		WithArgs(id, model.StatusSent, sqlmock.AnyArg(), "").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, idempotency_key`)).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Transition(context.Background(), id, model.StatusSent, "")
	assert.ErrorIs(t, err, ErrNotificationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransition_NoPathToQueued(t *testing.T) {
	repo, _ := setupMockDB(t)

	_, err := repo.Transition(context.Background(), uuid.New(), model.StatusQueued, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}
