// Package push defines the outbound boundary to the platform push
// transport. The core pipeline only sees the Sender and TopicSubscriber
// interfaces; the FCM implementation lives in the fcm subpackage.
package push

import (
	"context"

	"gaming-notification-service/internal/models"
)

// DeliveryState is the transport's acknowledgement for one partition send,
// typically the provider-issued message id.
type DeliveryState string

// Target selects the installations one partition send addresses: a platform
// plus an optional tag expression. An empty expression is a platform-wide
// broadcast.
type Target struct {
	Platform   models.DevicePlatform
	Expression models.TagExpression
}

// Sender performs a single partition delivery. Implementations do not retry;
// redelivery belongs to the upstream event bus.
type Sender interface {
	Send(ctx context.Context, payload Payload, target Target) (DeliveryState, error)
}

// TopicSubscriber keeps a device's transport-side topic membership in step
// with its registry tag set.
type TopicSubscriber interface {
	Subscribe(ctx context.Context, deviceToken string, tags []models.Tag) error
	Unsubscribe(ctx context.Context, deviceToken string, tags []models.Tag) error
}
