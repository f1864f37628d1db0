// Package fcm implements the push transport on Firebase Cloud Messaging.
// Installation tags become FCM topics and tag expressions become topic
// conditions, so targeting never enumerates individual device tokens.
package fcm

import (
	"context"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"gaming-notification-service/internal/models"
	"gaming-notification-service/internal/push"
)

type Config struct {
	CredentialsPath string
	ProjectID       string
}

// Client implements push.Sender and push.TopicSubscriber on FCM.
type Client struct {
	client *messaging.Client
}

func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	opt := option.WithCredentialsFile(cfg.CredentialsPath)
	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID: cfg.ProjectID,
	}, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %w", err)
	}

	return &Client{client: client}, nil
}

// Send delivers one partition. The platform tag every installation carries
// anchors the condition, so a broadcast partition is a send to the platform
// topic and a filtered one adds the expression's topics as conjuncts.
func (c *Client) Send(ctx context.Context, payload push.Payload, target push.Target) (push.DeliveryState, error) {
	message := &messaging.Message{
		Condition: conditionFor(target),
	}

	switch payload.Platform {
	case models.PlatformAndroid:
		if payload.Android == nil {
			return "", fmt.Errorf("android payload missing")
		}
		applyAndroid(message, payload.Android)
	case models.PlatformIOS:
		if payload.Apple == nil {
			return "", fmt.Errorf("apple payload missing")
		}
		applyApple(message, payload.Apple)
	default:
		return "", fmt.Errorf("unsupported payload platform: %s", payload.Platform)
	}

	messageID, err := c.client.Send(ctx, message)
	if err != nil {
		return "", fmt.Errorf("error sending message: %w", err)
	}
	return push.DeliveryState(messageID), nil
}

// Subscribe adds the device token to the topic behind each tag.
func (c *Client) Subscribe(ctx context.Context, deviceToken string, tags []models.Tag) error {
	for _, tag := range tags {
		resp, err := c.client.SubscribeToTopic(ctx, []string{deviceToken}, TopicForTag(tag))
		if err != nil {
			return fmt.Errorf("error subscribing to topic %s: %w", TopicForTag(tag), err)
		}
		if resp.FailureCount > 0 {
			return fmt.Errorf("subscription to topic %s rejected", TopicForTag(tag))
		}
	}
	return nil
}

// Unsubscribe removes the device token from the topic behind each tag.
func (c *Client) Unsubscribe(ctx context.Context, deviceToken string, tags []models.Tag) error {
	for _, tag := range tags {
		resp, err := c.client.UnsubscribeFromTopic(ctx, []string{deviceToken}, TopicForTag(tag))
		if err != nil {
			return fmt.Errorf("error unsubscribing from topic %s: %w", TopicForTag(tag), err)
		}
		if resp.FailureCount > 0 {
			return fmt.Errorf("unsubscription from topic %s rejected", TopicForTag(tag))
		}
	}
	return nil
}

func applyAndroid(message *messaging.Message, payload *push.AndroidPayload) {
	message.Data = map[string]string{
		"title":         payload.Data.Title,
		"message":       payload.Data.Message,
		"eventId":       payload.Data.EventID,
		"gameId":        payload.Data.GameID,
		"scheduledTime": payload.Data.ScheduledTime,
		"eventType":     payload.Data.EventType,
		"priority":      payload.Data.Priority,
	}
	message.Notification = &messaging.Notification{
		Title: payload.Notification.Title,
		Body:  payload.Notification.Body,
	}
	message.Android = &messaging.AndroidConfig{
		Priority: androidPriority(payload.Data.Priority),
		Notification: &messaging.AndroidNotification{
			Sound:       payload.Notification.Sound,
			ClickAction: payload.Notification.ClickAction,
		},
	}
}

func applyApple(message *messaging.Message, payload *push.ApplePayload) {
	badge := payload.Aps.Badge
	message.APNS = &messaging.APNSConfig{
		Payload: &messaging.APNSPayload{
			Aps: &messaging.Aps{
				Alert: &messaging.ApsAlert{
					Title: payload.Aps.Alert.Title,
					Body:  payload.Aps.Alert.Body,
				},
				Sound:            payload.Aps.Sound,
				Badge:            &badge,
				Category:         payload.Aps.Category,
				ContentAvailable: payload.Aps.ContentAvailable == 1,
			},
			CustomData: map[string]interface{}{
				"eventId":       payload.EventID,
				"gameId":        payload.GameID,
				"scheduledTime": payload.ScheduledTime,
			},
		},
	}
}

func androidPriority(priority string) string {
	if priority == string(models.PriorityHigh) {
		return "high"
	}
	return "normal"
}

// TopicForTag maps a tag onto a legal FCM topic name. Topic names only
// allow [a-zA-Z0-9-_.~%], so the kind:value separator becomes '~' and any
// other illegal rune becomes '-'.
func TopicForTag(tag models.Tag) string {
	return sanitizeTopic(tag.Kind) + "~" + sanitizeTopic(tag.Value)
}

func sanitizeTopic(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.', r == '%':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}

func conditionFor(target push.Target) string {
	topics := []string{TopicForTag(models.PlatformTag(target.Platform))}
	for _, tag := range target.Expression {
		topics = append(topics, TopicForTag(tag))
	}
	parts := make([]string, len(topics))
	for i, topic := range topics {
		parts[i] = fmt.Sprintf("'%s' in topics", topic)
	}
	return strings.Join(parts, " && ")
}
