package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/rabbitmq"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/dkhamitov/notify-gateway/internal/model"
)

const (
	ExchangeName = "notify-exchange"

	EmailQueueName  = "notify-email"
	PushQueueName   = "notify-push"
	StatusQueueName = "notify-status"
	DLQName         = "notify-dlq"

	EmailRoutingKey  = "notify.email"
	PushRoutingKey   = "notify.push"
	StatusRoutingKey = "notify.status"
)

// routingKeys is the static routing table: each notification type maps to
// exactly one destination queue.
var routingKeys = map[model.Type]string{
	model.TypeEmail: EmailRoutingKey,
	model.TypePush:  PushRoutingKey,
}

// RoutingKeyFor resolves the routing key for a notification type.
func RoutingKeyFor(t model.Type) (string, error) {
	key, ok := routingKeys[t]
	if !ok {
		return "", fmt.Errorf("no route for notification type %q", t)
	}
	return key, nil
}

// NotificationMessage is the payload handed to a delivery worker. The
// recipient and variables fields are forwarded exactly as admitted.
type NotificationMessage struct {
	ID         uuid.UUID              `json:"notification_id"`
	Type       model.Type             `json:"notification_type"`
	TemplateID string                 `json:"template_id"`
	Recipient  map[string]interface{} `json:"recipient"`
	Variables  map[string]interface{} `json:"variables"`
	QueuedAt   time.Time              `json:"queued_at"`
}

// StatusReport is published by delivery workers to report a lifecycle
// transition back to the gateway.
type StatusReport struct {
	ID     uuid.UUID `json:"notification_id"`
	Status string    `json:"status"`
	Error  string    `json:"error,omitempty"`
}

// NotificationQueue owns the broker topology: one direct exchange, a durable
// queue per delivery channel (each dead-lettering into the DLQ), a status
// queue the workers report into, and the DLQ itself. The gateway publishes
// admissions and consumes status reports and dead letters; it never consumes
// the delivery queues.
type NotificationQueue struct {
	Publisher      *rabbitmq.Publisher
	statusConsumer *rabbitmq.Consumer
	dlqConsumer    *rabbitmq.Consumer
}

func NewNotificationQueue(ch *rabbitmq.Channel) (*NotificationQueue, error) {
	exchange := rabbitmq.NewExchange(ExchangeName, "direct")
	if err := exchange.BindToChannel(ch); err != nil {
		return nil, fmt.Errorf("failed to bind to exchange: %w", err)
	}

	qm := rabbitmq.NewQueueManager(ch)

	dlq, err := qm.DeclareQueue(DLQName, rabbitmq.QueueConfig{Durable: true})
	if err != nil {
		return nil, fmt.Errorf("failed to declare DLQ: %w", err)
	}

	// Undeliverable messages from either delivery queue are re-routed to the
	// DLQ by the broker once the worker-side retry budget is spent.
	deliveryArgs := map[string]interface{}{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": DLQName,
	}

	emailQ, err := qm.DeclareQueue(EmailQueueName, rabbitmq.QueueConfig{
		Durable: true,
		Args:    deliveryArgs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to declare email queue: %w", err)
	}

	pushQ, err := qm.DeclareQueue(PushQueueName, rabbitmq.QueueConfig{
		Durable: true,
		Args:    deliveryArgs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to declare push queue: %w", err)
	}

	statusQ, err := qm.DeclareQueue(StatusQueueName, rabbitmq.QueueConfig{Durable: true})
	if err != nil {
		return nil, fmt.Errorf("failed to declare status queue: %w", err)
	}

	if err := ch.QueueBind(emailQ.Name, EmailRoutingKey, exchange.Name(), false, nil); err != nil {
		return nil, fmt.Errorf("failed to bind email queue: %w", err)
	}
	if err := ch.QueueBind(pushQ.Name, PushRoutingKey, exchange.Name(), false, nil); err != nil {
		return nil, fmt.Errorf("failed to bind push queue: %w", err)
	}
	if err := ch.QueueBind(statusQ.Name, StatusRoutingKey, exchange.Name(), false, nil); err != nil {
		return nil, fmt.Errorf("failed to bind status queue: %w", err)
	}

	pub := rabbitmq.NewPublisher(ch, exchange.Name())
	statusCons := rabbitmq.NewConsumer(ch, rabbitmq.NewConsumerConfig(statusQ.Name))
	dlqCons := rabbitmq.NewConsumer(ch, rabbitmq.NewConsumerConfig(dlq.Name))

	return &NotificationQueue{
		Publisher:      pub,
		statusConsumer: statusCons,
		dlqConsumer:    dlqCons,
	}, nil
}

// Publish routes msg to its channel-specific delivery queue.
func (q *NotificationQueue) Publish(msg NotificationMessage, strategy retry.Strategy) error {
	routingKey, err := RoutingKeyFor(msg.Type)
	if err != nil {
		return err
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	return q.Publisher.PublishWithRetry(body, routingKey, "application/json", strategy)
}

// ConsumeStatus forwards worker status reports into out until the consumer
// stops. Malformed reports are logged and dropped.
func (q *NotificationQueue) ConsumeStatus(ctx context.Context, out chan<- StatusReport, strategy retry.Strategy) error {
	msgChan := make(chan []byte)

	go func() {
		for m := range msgChan {
			var report StatusReport
			if err := json.Unmarshal(m, &report); err != nil {
				zlog.Logger.Error().Err(err).Msg("failed to unmarshal status report")
				continue
			}

			select {
			case <-ctx.Done():
				return
			case out <- report:
			}
		}
	}()

	return q.statusConsumer.ConsumeWithRetry(msgChan, strategy)
}

// ConsumeDeadLetters forwards dead-lettered notification messages into out.
func (q *NotificationQueue) ConsumeDeadLetters(ctx context.Context, out chan<- NotificationMessage, strategy retry.Strategy) error {
	msgChan := make(chan []byte)

	go func() {
		for m := range msgChan {
			var msg NotificationMessage
			if err := json.Unmarshal(m, &msg); err != nil {
				zlog.Logger.Error().Err(err).Msg("failed to unmarshal dead-lettered message")
				continue
			}

			select {
			case <-ctx.Done():
				return
			case out <- msg:
			}
		}
	}()

	return q.dlqConsumer.ConsumeWithRetry(msgChan, strategy)
}
