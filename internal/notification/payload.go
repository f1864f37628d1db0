package notification

import (
	"time"

	"gaming-notification-service/internal/models"
	"gaming-notification-service/internal/push"
)

const (
	defaultSound       = "default"
	androidClickAction = "OPEN_GAMING_EVENT"
	appleBadgeCount    = 1
)

// scheduledTimeFormat keeps scheduledTime round-trippable across the wire.
const scheduledTimeFormat = time.RFC3339Nano

// BuildPayload maps a gaming event onto the platform-specific notification
// body. It is pure and never fails for missing optional fields; the only
// error is an unrecognized platform.
func BuildPayload(event models.GamingEvent, platform models.DevicePlatform) (push.Payload, error) {
	switch platform {
	case models.PlatformAndroid:
		return push.Payload{
			Platform: models.PlatformAndroid,
			Android:  buildAndroidPayload(event),
		}, nil
	case models.PlatformIOS:
		return push.Payload{
			Platform: models.PlatformIOS,
			Apple:    buildApplePayload(event),
		}, nil
	default:
		return push.Payload{}, &UnsupportedPlatformError{Platform: platform}
	}
}

func buildAndroidPayload(event models.GamingEvent) *push.AndroidPayload {
	return &push.AndroidPayload{
		Data: push.AndroidData{
			Title:         event.Title,
			Message:       event.Message,
			EventID:       event.EventID,
			GameID:        event.GameID,
			ScheduledTime: event.ScheduledTime.UTC().Format(scheduledTimeFormat),
			EventType:     event.EventType,
			Priority:      string(event.Priority),
		},
		Notification: push.AndroidNotification{
			Title:       event.Title,
			Body:        event.Message,
			Sound:       defaultSound,
			ClickAction: androidClickAction,
		},
	}
}

func buildApplePayload(event models.GamingEvent) *push.ApplePayload {
	return &push.ApplePayload{
		Aps: push.Aps{
			Alert: push.ApsAlert{
				Title: event.Title,
				Body:  event.Message,
			},
			Sound: defaultSound,
			Badge: appleBadgeCount,
			// Category carries the event type so the app can attach
			// platform-native action buttons per event class.
			Category:         event.EventType,
			ContentAvailable: 1,
		},
		EventID:       event.EventID,
		GameID:        event.GameID,
		ScheduledTime: event.ScheduledTime.UTC().Format(scheduledTimeFormat),
	}
}
