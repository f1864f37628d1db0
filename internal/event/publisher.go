package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"gaming-notification-service/internal/models"
)

// publishChannel is the subset of amqp.Channel the publisher needs.
type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher publishes gaming platform messages to RabbitMQ. It does not
// retry; the broker's delivery guarantees and the consumer's requeue policy
// own redelivery. Safe for concurrent use.
type Publisher struct {
	conn *RabbitMQConnection
	ch   publishChannel

	mu                sync.Mutex
	messagesPublished int64
	messagesFailed    int64
	lastPublishTime   time.Time
}

// NewPublisher creates a new gaming event publisher
func NewPublisher(conn *RabbitMQConnection) *Publisher {
	return &Publisher{
		conn:            conn,
		ch:              conn.Channel,
		lastPublishTime: time.Now(),
	}
}

// PublishGamingEvent wraps the event in an envelope and publishes it to the
// gaming events queue. The event id is assigned here if the caller left it
// empty, so every event is identifiable before dispatch.
func (p *Publisher) PublishGamingEvent(ctx context.Context, gamingEvent models.GamingEvent) (string, error) {
	if gamingEvent.EventID == "" {
		gamingEvent.EventID = uuid.NewString()
	}

	payload, err := json.Marshal(gamingEvent)
	if err != nil {
		p.recordFailure()
		return "", fmt.Errorf("failed to marshal gaming event: %w", err)
	}

	envelope := Envelope{
		ID:         uuid.NewString(),
		Kind:       KindGamingEvent,
		Subject:    gamingSubjectPrefix + gamingEvent.EventType,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}

	if err := p.publish(ctx, envelope); err != nil {
		return "", err
	}

	slog.Info("Gaming event published",
		"queue", GamingEventsQueue,
		"event_id", gamingEvent.EventID,
		"event_type", gamingEvent.EventType,
	)
	return gamingEvent.EventID, nil
}

// PublishScheduled stamps the envelope with the intended publish time but
// performs an immediate publish; delayed delivery is not implemented.
func (p *Publisher) PublishScheduled(ctx context.Context, gamingEvent models.GamingEvent, publishTime time.Time) (string, error) {
	gamingEvent.ScheduledTime = publishTime
	return p.PublishGamingEvent(ctx, gamingEvent)
}

// PublishDeviceRegistration publishes a device registration to the bus.
func (p *Publisher) PublishDeviceRegistration(ctx context.Context, device models.UserDeviceInfo) error {
	payload, err := json.Marshal(device)
	if err != nil {
		p.recordFailure()
		return fmt.Errorf("failed to marshal device info: %w", err)
	}
	return p.publish(ctx, Envelope{
		ID:         uuid.NewString(),
		Kind:       KindDeviceRegister,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	})
}

// PublishDeviceRemoval publishes a device unregistration to the bus.
func (p *Publisher) PublishDeviceRemoval(ctx context.Context, request models.UnregisterDeviceRequest) error {
	payload, err := json.Marshal(request)
	if err != nil {
		p.recordFailure()
		return fmt.Errorf("failed to marshal unregister request: %w", err)
	}
	return p.publish(ctx, Envelope{
		ID:         uuid.NewString(),
		Kind:       KindDeviceUnregister,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	})
}

func (p *Publisher) publish(ctx context.Context, envelope Envelope) error {
	body, err := json.Marshal(envelope)
	if err != nil {
		p.recordFailure()
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	err = p.ch.PublishWithContext(
		ctx,
		"",                // exchange
		GamingEventsQueue, // routing key (queue name)
		false,             // mandatory
		false,             // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		p.recordFailure()
		return fmt.Errorf("failed to publish message: %w", err)
	}

	p.mu.Lock()
	p.messagesPublished++
	p.lastPublishTime = time.Now()
	p.mu.Unlock()
	return nil
}

func (p *Publisher) recordFailure() {
	p.mu.Lock()
	p.messagesFailed++
	p.mu.Unlock()
}

// GetMetrics returns publisher metrics
func (p *Publisher) GetMetrics() map[string]any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return map[string]any{
		"messages_published": p.messagesPublished,
		"messages_failed":    p.messagesFailed,
		"last_publish_time":  p.lastPublishTime,
		"queue":              GamingEventsQueue,
	}
}

// HealthCheck returns the health status of the publisher
func (p *Publisher) HealthCheck() PublisherHealthStatus {
	isHealthy := p.conn != nil && p.conn.Connection != nil && !p.conn.Connection.IsClosed()

	p.mu.Lock()
	defer p.mu.Unlock()
	return PublisherHealthStatus{
		IsHealthy:         isHealthy,
		MessagesPublished: p.messagesPublished,
		MessagesFailed:    p.messagesFailed,
		LastPublishTime:   p.lastPublishTime,
		Queue:             GamingEventsQueue,
	}
}

// PublisherHealthStatus represents the health status of the publisher
type PublisherHealthStatus struct {
	IsHealthy         bool      `json:"is_healthy"`
	MessagesPublished int64     `json:"messages_published"`
	MessagesFailed    int64     `json:"messages_failed"`
	LastPublishTime   time.Time `json:"last_publish_time"`
	Queue             string    `json:"queue"`
}
