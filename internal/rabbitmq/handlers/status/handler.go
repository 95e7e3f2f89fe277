package status

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/dkhamitov/notify-gateway/internal/model"
	"github.com/dkhamitov/notify-gateway/internal/rabbitmq/queue"
	notifrepo "github.com/dkhamitov/notify-gateway/internal/repository/notification"
)

//go:generate mockgen -source=handler.go -destination=../../../mocks/rabbitmq/handlers/status/mock.go -package=mocks

type transitionService interface {
	ReportTransition(ctx context.Context, strategy retry.Strategy, id uuid.UUID, status model.Status, errMsg string) (model.Notification, error)
	MarkDeadLettered(ctx context.Context, strategy retry.Strategy, id uuid.UUID) error
}

// Handler applies broker-delivered lifecycle signals to the registry. The
// registry stays passive: it only rejects illegal transitions, the handler
// just records what the workers and the broker report.
type Handler struct {
	service transitionService
}

func NewHandler(svc transitionService) *Handler {
	return &Handler{
		service: svc,
	}
}

// HandleReport applies a worker status report. Reports for unknown
// notifications and illegal transitions are logged and dropped; the queue
// must keep draining either way.
func (h *Handler) HandleReport(ctx context.Context, report queue.StatusReport, strategy retry.Strategy) {
	_, err := h.service.ReportTransition(ctx, strategy, report.ID, model.Status(report.Status), report.Error)
	if err != nil {
		switch {
		case errors.Is(err, notifrepo.ErrNotificationNotFound):
			zlog.Logger.Warn().Str("id", report.ID.String()).Msg("status report for unknown notification")
		case errors.Is(err, notifrepo.ErrInvalidTransition):
			zlog.Logger.Warn().Str("id", report.ID.String()).Str("status", report.Status).Msg("illegal status transition reported")
		default:
			zlog.Logger.Error().Err(err).Str("id", report.ID.String()).Msg("failed to apply status report")
		}
		return
	}

	zlog.Logger.Info().Str("id", report.ID.String()).Str("status", report.Status).Msg("status report applied")
}

// HandleDeadLetter records that the broker dead-lettered a notification
// message after the worker-side retry budget was spent.
func (h *Handler) HandleDeadLetter(ctx context.Context, msg queue.NotificationMessage, strategy retry.Strategy) {
	if err := h.service.MarkDeadLettered(ctx, strategy, msg.ID); err != nil {
		if errors.Is(err, notifrepo.ErrNotificationNotFound) {
			zlog.Logger.Warn().Str("id", msg.ID.String()).Msg("dead letter for unknown notification")
			return
		}

		zlog.Logger.Error().Err(err).Str("id", msg.ID.String()).Msg("failed to mark notification dead-lettered")
		return
	}

	zlog.Logger.Info().Str("id", msg.ID.String()).Msg("notification dead-lettered")
}
