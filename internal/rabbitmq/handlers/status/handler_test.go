package status

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"

	mocks "github.com/dkhamitov/notify-gateway/internal/mocks/rabbitmq/handlers/status"
	"github.com/dkhamitov/notify-gateway/internal/model"
	"github.com/dkhamitov/notify-gateway/internal/rabbitmq/queue"
	notifrepo "github.com/dkhamitov/notify-gateway/internal/repository/notification"
)

func TestHandler_HandleReport_Applied(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMocktransitionService(ctrl)
	h := NewHandler(mockService)

	id := uuid.New()
	strategy := retry.Strategy{Attempts: 1, Delay: time.Millisecond}
	report := queue.StatusReport{ID: id, Status: "sent"}

	mockService.EXPECT().
		ReportTransition(gomock.Any(), strategy, id, model.StatusSent, "").
		Return(model.Notification{ID: id, Status: model.StatusSent}, nil)

	h.HandleReport(context.Background(), report, strategy)
}

func TestHandler_HandleReport_FailureCarriesError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMocktransitionService(ctrl)
	h := NewHandler(mockService)

	id := uuid.New()
	strategy := retry.Strategy{Attempts: 1, Delay: time.Millisecond}
	report := queue.StatusReport{ID: id, Status: "failed", Error: "smtp 550 mailbox unavailable"}

	mockService.EXPECT().
		ReportTransition(gomock.Any(), strategy, id, model.StatusFailed, "smtp 550 mailbox unavailable").
		Return(model.Notification{ID: id, Status: model.StatusFailed, ErrorMessage: "smtp 550 mailbox unavailable"}, nil)

	h.HandleReport(context.Background(), report, strategy)
}

func TestHandler_HandleReport_InvalidTransitionDropped(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMocktransitionService(ctrl)
	h := NewHandler(mockService)

	id := uuid.New()
	strategy := retry.Strategy{Attempts: 1, Delay: time.Millisecond}
	report := queue.StatusReport{ID: id, Status: "queued"}

	// The illegal report is logged and dropped; no retry, no panic.
	mockService.EXPECT().
		ReportTransition(gomock.Any(), strategy, id, model.StatusQueued, "").
		Return(model.Notification{}, notifrepo.ErrInvalidTransition)

	h.HandleReport(context.Background(), report, strategy)
}

func TestHandler_HandleReport_UnknownNotification(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMocktransitionService(ctrl)
	h := NewHandler(mockService)

	id := uuid.New()
	strategy := retry.Strategy{Attempts: 1, Delay: time.Millisecond}

	mockService.EXPECT().
		ReportTransition(gomock.Any(), strategy, id, model.StatusProcessing, "").
		Return(model.Notification{}, notifrepo.ErrNotificationNotFound)

	h.HandleReport(context.Background(), queue.StatusReport{ID: id, Status: "processing"}, strategy)
}

func TestHandler_HandleDeadLetter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMocktransitionService(ctrl)
	h := NewHandler(mockService)

	id := uuid.New()
	strategy := retry.Strategy{Attempts: 1, Delay: time.Millisecond}

	mockService.EXPECT().
		MarkDeadLettered(gomock.Any(), strategy, id).
		Return(nil)

	h.HandleDeadLetter(context.Background(), queue.NotificationMessage{ID: id, Type: model.TypeEmail}, strategy)
}
