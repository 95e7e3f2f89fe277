package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/dkhamitov/notify-gateway/internal/idempotency"
	"github.com/dkhamitov/notify-gateway/internal/model"
	"github.com/dkhamitov/notify-gateway/internal/rabbitmq/queue"
	notifrepo "github.com/dkhamitov/notify-gateway/internal/repository/notification"
)

const statusKeyPrefix = "notification:status:"

// ErrPublishFailed means the claim and record exist but the message never
// reached the broker; the record is marked failed and stays queryable.
var ErrPublishFailed = errors.New("failed to publish notification")

type idempotencyGuard interface {
	Claim(ctx context.Context, key string, id uuid.UUID) (idempotency.Claim, error)
	Release(ctx context.Context, key string, id uuid.UUID) error
}

type notificationRepository interface {
	Create(ctx context.Context, n model.Notification) error
	Get(ctx context.Context, id uuid.UUID) (model.Notification, error)
	Transition(ctx context.Context, id uuid.UUID, next model.Status, errMsg string) (model.Notification, error)
}

type notificationPublisher interface {
	Publish(msg queue.NotificationMessage, strategy retry.Strategy) error
}

type cache interface {
	SetWithRetry(ctx context.Context, strategy retry.Strategy, key string, value interface{}) error
	GetWithRetry(ctx context.Context, strategy retry.Strategy, key string) (string, error)
}

// AdmitResult is the outcome of a successful admission. Duplicate means the
// idempotency key was already claimed and Notification describes the
// original admission, not a new one.
type AdmitResult struct {
	Notification model.Notification
	Duplicate    bool
}

// Service is the admission coordinator: it orders the idempotency claim,
// record creation and queue publish for each request, and applies
// worker-reported transitions. It holds no shared mutable state of its own;
// all mutual exclusion lives in the store's atomic claim. Every call to the
// store, the registry and the broker is bounded by storeTimeout so a hung
// dependency rejects the request instead of blocking it forever.
type Service struct {
	guard        idempotencyGuard
	repo         notificationRepository
	queue        notificationPublisher
	cache        cache
	storeTimeout time.Duration
}

func NewService(
	guard idempotencyGuard,
	repo notificationRepository,
	queue notificationPublisher,
	cache cache,
	storeTimeout time.Duration,
) *Service {
	return &Service{guard: guard, repo: repo, queue: queue, cache: cache, storeTimeout: storeTimeout}
}

// Admit turns a validated request into queued work with at-most-once
// semantics per idempotency key. A lost claim is not an error: the caller
// gets the original notification's identity and current status.
func (s *Service) Admit(ctx context.Context, strategy retry.Strategy, n model.Notification) (AdmitResult, error) {
	candidate := uuid.New()

	claimCtx, cancel := s.storeCtx(ctx)
	claim, err := s.guard.Claim(claimCtx, n.IdempotencyKey, candidate)
	cancel()
	if err != nil {
		return AdmitResult{}, fmt.Errorf("claim idempotency key: %w", err)
	}

	if !claim.Winner {
		getCtx, cancel := s.storeCtx(ctx)
		existing, err := s.repo.Get(getCtx, claim.Existing)
		cancel()
		if errors.Is(err, notifrepo.ErrNotificationNotFound) {
			// The winning request has claimed the key but its record is not
			// visible yet. Report the duplicate as pending rather than
			// failing or re-claiming.
			return AdmitResult{
				Notification: model.Notification{ID: claim.Existing, Status: model.StatusPending},
				Duplicate:    true,
			}, nil
		}
		if err != nil {
			return AdmitResult{}, fmt.Errorf("get existing notification: %w", err)
		}

		return AdmitResult{Notification: existing, Duplicate: true}, nil
	}

	now := time.Now().UTC()
	n.ID = candidate
	n.Status = model.StatusQueued
	n.CreatedAt = now
	n.UpdatedAt = now

	createCtx, cancel := s.storeCtx(ctx)
	err = s.repo.Create(createCtx, n)
	cancel()
	if err != nil {
		// The marker exists without a record behind it. Roll the claim back
		// so a retry of the same key can start clean; the marker would
		// expire on its own anyway.
		relCtx, cancel := s.storeCtx(ctx)
		relErr := s.guard.Release(relCtx, n.IdempotencyKey, candidate)
		cancel()
		if relErr != nil {
			zlog.Logger.Error().Err(relErr).Str("key", n.IdempotencyKey).Msg("failed to release idempotency marker")
		}

		if errors.Is(err, notifrepo.ErrAlreadyExists) {
			zlog.Logger.Error().Str("id", candidate.String()).Msg("record exists for a freshly claimed key; invariant violation")
		}

		return AdmitResult{}, fmt.Errorf("create notification: %w", err)
	}

	s.cacheRecord(ctx, strategy, n)

	msg := queue.NotificationMessage{
		ID:         n.ID,
		Type:       n.Type,
		TemplateID: n.TemplateID,
		Recipient:  n.Recipient,
		Variables:  n.Variables,
		QueuedAt:   now,
	}

	if err := s.publish(msg, strategy); err != nil {
		zlog.Logger.Error().Err(err).Str("id", n.ID.String()).Msg("failed to publish notification")

		failCtx, cancel := s.storeCtx(ctx)
		failed, terr := s.repo.Transition(failCtx, n.ID, model.StatusFailed, err.Error())
		cancel()
		if terr != nil {
			zlog.Logger.Error().Err(terr).Str("id", n.ID.String()).Msg("failed to mark notification failed")
		} else {
			s.cacheRecord(ctx, strategy, failed)
		}

		return AdmitResult{}, fmt.Errorf("publish notification %s: %w", n.ID, ErrPublishFailed)
	}

	return AdmitResult{Notification: n}, nil
}

// publish bounds a broker publish by storeTimeout. PublishWithRetry takes no
// context, so the bound is external; a late result is drained by the buffered
// channel.
func (s *Service) publish(msg queue.NotificationMessage, strategy retry.Strategy) error {
	done := make(chan error, 1)
	go func() {
		done <- s.queue.Publish(msg, strategy)
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(s.storeTimeout):
		return fmt.Errorf("publish timed out after %s", s.storeTimeout)
	}
}

func (s *Service) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.storeTimeout)
}

// GetNotification returns the current record for id, preferring the status
// cache and falling back to the registry.
func (s *Service) GetNotification(ctx context.Context, strategy retry.Strategy, id uuid.UUID) (model.Notification, error) {
	cacheCtx, cancel := s.storeCtx(ctx)
	cached, err := s.cache.GetWithRetry(cacheCtx, strategy, statusKeyPrefix+id.String())
	cancel()
	if err != nil && !errors.Is(err, redis.Nil) {
		zlog.Logger.Error().Err(err).Str("id", id.String()).Msg("failed to read notification from cache")
	}

	if err == nil {
		var n model.Notification
		if jsonErr := json.Unmarshal([]byte(cached), &n); jsonErr == nil {
			return n, nil
		}
		zlog.Logger.Warn().Str("id", id.String()).Msg("malformed cache entry, falling back to registry")
	}

	getCtx, cancel := s.storeCtx(ctx)
	n, err := s.repo.Get(getCtx, id)
	cancel()
	if err != nil {
		if errors.Is(err, notifrepo.ErrNotificationNotFound) {
			return model.Notification{}, err
		}

		return model.Notification{}, fmt.Errorf("get notification: %w", err)
	}

	s.cacheRecord(ctx, strategy, n)

	return n, nil
}

// ReportTransition applies a worker-reported status change, recording errMsg
// alongside failure reports. The registry enforces legality; an illegal
// report leaves the record untouched.
func (s *Service) ReportTransition(ctx context.Context, strategy retry.Strategy, id uuid.UUID, status model.Status, errMsg string) (model.Notification, error) {
	if !status.Known() {
		return model.Notification{}, notifrepo.ErrInvalidTransition
	}

	trCtx, cancel := s.storeCtx(ctx)
	n, err := s.repo.Transition(trCtx, id, status, errMsg)
	cancel()
	if err != nil {
		return model.Notification{}, err
	}

	s.cacheRecord(ctx, strategy, n)

	return n, nil
}

// MarkDeadLettered records that the broker dead-lettered a notification.
// Dead-lettering is only reachable from failed, but a message can land in
// the DLQ without the worker ever reporting a failure, so the record is
// moved through failed first when needed. The broker delivers at least once,
// so a redelivery for an already dead-lettered record is a no-op.
func (s *Service) MarkDeadLettered(ctx context.Context, strategy retry.Strategy, id uuid.UUID) error {
	_, err := s.ReportTransition(ctx, strategy, id, model.StatusDeadLettered, "")
	if !errors.Is(err, notifrepo.ErrInvalidTransition) {
		return err
	}

	getCtx, cancel := s.storeCtx(ctx)
	n, getErr := s.repo.Get(getCtx, id)
	cancel()
	if getErr == nil && n.Status == model.StatusDeadLettered {
		return nil
	}

	if _, err := s.ReportTransition(ctx, strategy, id, model.StatusFailed, ""); err != nil {
		return err
	}

	_, err = s.ReportTransition(ctx, strategy, id, model.StatusDeadLettered, "")
	return err
}

func (s *Service) cacheRecord(ctx context.Context, strategy retry.Strategy, n model.Notification) {
	body, err := json.Marshal(n)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("id", n.ID.String()).Msg("failed to marshal notification for cache")
		return
	}

	setCtx, cancel := s.storeCtx(ctx)
	defer cancel()

	if err := s.cache.SetWithRetry(setCtx, strategy, statusKeyPrefix+n.ID.String(), string(body)); err != nil {
		zlog.Logger.Error().Err(err).Str("id", n.ID.String()).Msg("failed to cache notification")
	}
}
