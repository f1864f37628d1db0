package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"gaming-notification-service/internal/models"
	"gaming-notification-service/internal/notification"
	"gaming-notification-service/internal/registry"
)

// EventRouter routes a gaming event through audience resolution and
// dispatch.
type EventRouter interface {
	Route(ctx context.Context, event models.GamingEvent) (notification.DispatchResult, error)
}

// DeviceRegistrar upserts and removes device installations.
type DeviceRegistrar interface {
	Upsert(ctx context.Context, device models.UserDeviceInfo) (registry.Installation, error)
	Remove(ctx context.Context, deviceToken string) error
}

// QueueConsumer consumes gaming platform messages from RabbitMQ and drives
// the notification pipeline. Handler failures go back through the broker's
// retry headers and ultimately the DLQ; nothing is retried in-process.
type QueueConsumer struct {
	conn      *RabbitMQConnection
	router    EventRouter
	registrar DeviceRegistrar
}

type ConsumerConfig struct {
	PrefetchCount int
}

func NewQueueConsumer(conn *RabbitMQConnection, cfg *ConsumerConfig, router EventRouter, registrar DeviceRegistrar) (*QueueConsumer, error) {
	prefetch := cfg.PrefetchCount
	if prefetch <= 0 {
		prefetch = defaultPrefetchCount
	}

	// Set QoS for controlled processing. Queue topology is declared when
	// the connection is established.
	if err := conn.Channel.Qos(prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	return &QueueConsumer{
		conn:      conn,
		router:    router,
		registrar: registrar,
	}, nil
}

// StartConsuming blocks reading the gaming events queue until the context
// is cancelled.
func (q *QueueConsumer) StartConsuming(ctx context.Context) error {
	msgs, err := q.conn.Channel.Consume(
		GamingEventsQueue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("consumer channel closed")
			}
			q.handleDelivery(ctx, msg)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (q *QueueConsumer) handleDelivery(ctx context.Context, msg amqp.Delivery) {
	err := q.processMessage(ctx, msg)
	if err == nil {
		msg.Ack(false)
		return
	}

	slog.Error("Error processing message", "error", err)

	// Redelivery cannot fix a malformed or invalid message; dead-letter
	// immediately instead of burning retries.
	if isNonRetryable(err) {
		msg.Nack(false, false)
		slog.Error("Unprocessable message sent to DLQ", "error", err)
		return
	}

	retryCount := 0
	if val, ok := msg.Headers[retryCountHeader].(int32); ok {
		retryCount = int(val)
	}

	if retryCount < maxDeliveryAttempts {
		if err := q.requeueMessage(msg, retryCount+1); err != nil {
			slog.Error("Failed to requeue message", "error", err)
			msg.Nack(false, false)
			return
		}
		msg.Ack(false)
	} else {
		msg.Nack(false, false)
		slog.Error("Message sent to DLQ", "retries", retryCount)
	}
}

func isNonRetryable(err error) bool {
	var deserialization *notification.DeserializationError
	var validation *notification.ValidationError
	var audience *notification.UnsupportedAudienceError
	var platform *notification.UnsupportedPlatformError
	return errors.As(err, &deserialization) ||
		errors.As(err, &validation) ||
		errors.As(err, &audience) ||
		errors.As(err, &platform)
}

func (q *QueueConsumer) processMessage(ctx context.Context, msg amqp.Delivery) error {
	var envelope Envelope
	if err := json.Unmarshal(msg.Body, &envelope); err != nil {
		return &notification.DeserializationError{Kind: "envelope", Err: err}
	}

	switch envelope.Kind {
	case KindGamingEvent:
		return q.processGamingEvent(ctx, envelope)
	case KindDeviceRegister:
		return q.processDeviceRegistration(ctx, envelope)
	case KindDeviceUnregister:
		return q.processDeviceRemoval(ctx, envelope)
	default:
		return &notification.DeserializationError{
			Kind: string(envelope.Kind),
			Err:  fmt.Errorf("unsupported message kind"),
		}
	}
}

func (q *QueueConsumer) processGamingEvent(ctx context.Context, envelope Envelope) error {
	var gamingEvent models.GamingEvent
	if err := json.Unmarshal(envelope.Payload, &gamingEvent); err != nil {
		return &notification.DeserializationError{Kind: string(KindGamingEvent), Err: err}
	}

	result, err := q.router.Route(ctx, gamingEvent)
	if err != nil {
		return fmt.Errorf("failed to route gaming event %s: %w", gamingEvent.EventID, err)
	}

	slog.Info("Successfully processed gaming event",
		"event_id", gamingEvent.EventID,
		"delivered", result.DeliveredCount(),
	)
	return nil
}

func (q *QueueConsumer) processDeviceRegistration(ctx context.Context, envelope Envelope) error {
	var device models.UserDeviceInfo
	if err := json.Unmarshal(envelope.Payload, &device); err != nil {
		return &notification.DeserializationError{Kind: string(KindDeviceRegister), Err: err}
	}

	if _, err := q.registrar.Upsert(ctx, device); err != nil {
		return fmt.Errorf("failed to register device for user %s: %w", device.UserID, err)
	}
	return nil
}

func (q *QueueConsumer) processDeviceRemoval(ctx context.Context, envelope Envelope) error {
	var request models.UnregisterDeviceRequest
	if err := json.Unmarshal(envelope.Payload, &request); err != nil {
		return &notification.DeserializationError{Kind: string(KindDeviceUnregister), Err: err}
	}

	if err := q.registrar.Remove(ctx, request.DeviceToken); err != nil {
		return fmt.Errorf("failed to unregister device for user %s: %w", request.UserID, err)
	}
	return nil
}

func (q *QueueConsumer) requeueMessage(msg amqp.Delivery, retryCount int) error {
	// Add retry count to headers
	headers := msg.Headers
	if headers == nil {
		headers = amqp.Table{}
	}
	headers[retryCountHeader] = int32(retryCount)

	// No Expiration here: the main queue dead-letters expired messages, so
	// a TTL-based backoff would send retries straight to the DLQ.
	return q.conn.Channel.Publish(
		"",                // exchange
		GamingEventsQueue, // routing key
		false,             // mandatory
		false,             // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        msg.Body,
			Headers:     headers,
		},
	)
}
