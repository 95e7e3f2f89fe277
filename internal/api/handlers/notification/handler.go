package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/dkhamitov/notify-gateway/internal/api/dto"
	"github.com/dkhamitov/notify-gateway/internal/api/respond"
	"github.com/dkhamitov/notify-gateway/internal/config"
	"github.com/dkhamitov/notify-gateway/internal/idempotency"
	"github.com/dkhamitov/notify-gateway/internal/model"
	notifrepo "github.com/dkhamitov/notify-gateway/internal/repository/notification"
	notifsvc "github.com/dkhamitov/notify-gateway/internal/service/notification"
)

//go:generate mockgen -source=handler.go -destination=../../../mocks/api/handlers/notification/mock.go -package=mocks

const idempotencyKeyHeader = "Idempotency-Key"

type notifService interface {
	Admit(ctx context.Context, strategy retry.Strategy, n model.Notification) (notifsvc.AdmitResult, error)
	GetNotification(ctx context.Context, strategy retry.Strategy, id uuid.UUID) (model.Notification, error)
	ReportTransition(ctx context.Context, strategy retry.Strategy, id uuid.UUID, status model.Status, errMsg string) (model.Notification, error)
}

type Handler struct {
	service   notifService
	validator *validator.Validate
	cfg       *config.Config
}

func NewHandler(
	s notifService,
	v *validator.Validate,
	cfg *config.Config,
) *Handler {
	return &Handler{service: s, validator: v, cfg: cfg}
}

// Send admits a notification request. The Idempotency-Key header is
// mandatory; resubmissions within the idempotency window return the original
// notification instead of creating a new one.
func (h *Handler) Send(c *ginext.Context) {
	key := c.GetHeader(idempotencyKeyHeader)
	if key == "" {
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("missing %s header", idempotencyKeyHeader))
		return
	}

	var req dto.SendRequest

	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to decode request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	if err := h.validator.Struct(req); err != nil {
		zlog.Logger.Warn().Err(err).Msg("failed to validate request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("validation error: %s", err.Error()))
		return
	}

	n := model.Notification{
		IdempotencyKey: key,
		Type:           model.Type(req.NotificationType),
		TemplateID:     req.TemplateID,
		Recipient:      req.Recipient,
		Variables:      req.Variables,
	}

	res, err := h.service.Admit(c.Request.Context(), h.cfg.Retry, n)
	if err != nil {
		switch {
		case errors.Is(err, idempotency.ErrStoreUnavailable):
			zlog.Logger.Error().Err(err).Msg("idempotency store unavailable")
			respond.Fail(c.Writer, http.StatusServiceUnavailable, fmt.Errorf("service temporarily unavailable"))
		case errors.Is(err, notifsvc.ErrPublishFailed):
			zlog.Logger.Error().Err(err).Msg("failed to publish notification")
			respond.Fail(c.Writer, http.StatusBadGateway, fmt.Errorf("notification was not queued"))
		default:
			zlog.Logger.Error().Err(err).Msg("failed to admit notification")
			respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		}
		return
	}

	respond.Accepted(c.Writer, dto.SendResponse{
		NotificationID:   res.Notification.ID,
		Status:           string(res.Notification.Status),
		NotificationType: string(res.Notification.Type),
		CreatedAt:        res.Notification.CreatedAt,
		Duplicate:        res.Duplicate,
	})
}

// GetStatus returns the current lifecycle state of a notification.
func (h *Handler) GetStatus(c *ginext.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		zlog.Logger.Warn().Err(err).Str("id", idStr).Msg("failed to parse id")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid id"))
		return
	}

	n, err := h.service.GetNotification(c.Request.Context(), h.cfg.Retry, id)
	if err != nil {
		if errors.Is(err, notifrepo.ErrNotificationNotFound) {
			respond.Fail(c.Writer, http.StatusNotFound, fmt.Errorf("notification not found"))
			return
		}

		zlog.Logger.Error().Err(err).Str("id", id.String()).Msg("failed to get notification")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.OK(c.Writer, dto.StatusResponse{
		NotificationID: n.ID,
		Status:         string(n.Status),
		CreatedAt:      n.CreatedAt,
		UpdatedAt:      n.UpdatedAt,
	})
}

// Report is the worker status callback: delivery workers post lifecycle
// transitions here. Illegal transitions are rejected without mutating the
// record.
func (h *Handler) Report(c *ginext.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		zlog.Logger.Warn().Err(err).Str("id", idStr).Msg("failed to parse id")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid id"))
		return
	}

	var req dto.ReportRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to decode request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("validation error: %s", err.Error()))
		return
	}

	n, err := h.service.ReportTransition(c.Request.Context(), h.cfg.Retry, id, model.Status(req.Status), req.Error)
	if err != nil {
		switch {
		case errors.Is(err, notifrepo.ErrNotificationNotFound):
			respond.Fail(c.Writer, http.StatusNotFound, fmt.Errorf("notification not found"))
		case errors.Is(err, notifrepo.ErrInvalidTransition):
			zlog.Logger.Warn().Str("id", id.String()).Str("status", req.Status).Msg("illegal status transition reported")
			respond.Fail(c.Writer, http.StatusConflict, fmt.Errorf("invalid status transition"))
		default:
			zlog.Logger.Error().Err(err).Str("id", id.String()).Msg("failed to apply status transition")
			respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		}
		return
	}

	respond.OK(c.Writer, dto.StatusResponse{
		NotificationID: n.ID,
		Status:         string(n.Status),
		CreatedAt:      n.CreatedAt,
		UpdatedAt:      n.UpdatedAt,
	})
}
