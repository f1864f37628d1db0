// Package registry owns the mapping from device installs to delivery tags.
package registry

import (
	"context"
	"log/slog"

	"gaming-notification-service/internal/models"
	"gaming-notification-service/internal/notification"
	"gaming-notification-service/internal/push"
)

// Installation binds a device token to the tag set it can be targeted by.
type Installation struct {
	DeviceToken string                `json:"deviceToken"`
	UserID      string                `json:"userId"`
	Platform    models.DevicePlatform `json:"platform"`
	Tags        []string              `json:"tags"`
}

// TagSet parses the stored tags back into typed form.
func (i Installation) TagSet() []models.Tag {
	tags := make([]models.Tag, 0, len(i.Tags))
	for _, s := range i.Tags {
		if tag, ok := models.ParseTag(s); ok {
			tags = append(tags, tag)
		}
	}
	return tags
}

// DeriveTags computes the full tag set for a device registration:
// userid:<userId>, platform:<platform>, language:<preferredLanguage> and one
// game:<gameId> per preference. The rule is deterministic; re-deriving from
// the same device info always yields the same set.
func DeriveTags(device models.UserDeviceInfo) []models.Tag {
	language := device.PreferredLanguage
	if language == "" {
		language = "en"
	}
	tags := []models.Tag{
		models.UserTag(device.UserID),
		models.PlatformTag(device.Platform),
		models.LanguageTag(language),
	}
	for _, gameID := range device.GamePreferences {
		tags = append(tags, models.GameTag(gameID))
	}
	return tags
}

// Store is the external installation store. Implementations must provide
// atomic per-key replace and delete; no client-side locking happens here.
type Store interface {
	Replace(ctx context.Context, installation Installation) error
	Get(ctx context.Context, deviceToken string) (Installation, bool, error)
	Delete(ctx context.Context, deviceToken string) error
}

// Service keeps the installation store and the push transport's topic
// membership in step with each other.
type Service struct {
	store  Store
	topics push.TopicSubscriber
}

func NewService(store Store, topics push.TopicSubscriber) *Service {
	return &Service{store: store, topics: topics}
}

// Upsert registers or fully replaces a device installation. Replacement is
// last-write-wins: tags from a previous registration never survive a
// refreshed one, so stale game preferences are unsubscribed before the new
// set is applied.
func (s *Service) Upsert(ctx context.Context, device models.UserDeviceInfo) (Installation, error) {
	if device.DeviceToken == "" {
		return Installation{}, &notification.ValidationError{Field: "deviceToken", Reason: "required"}
	}
	switch device.Platform {
	case models.PlatformAndroid, models.PlatformIOS:
	default:
		return Installation{}, &notification.UnsupportedPlatformError{Platform: device.Platform}
	}

	tags := DeriveTags(device)
	installation := Installation{
		DeviceToken: device.DeviceToken,
		UserID:      device.UserID,
		Platform:    device.Platform,
		Tags:        tagStrings(tags),
	}

	previous, found, err := s.store.Get(ctx, device.DeviceToken)
	if err != nil {
		return Installation{}, &notification.TransportError{Op: "registry get", Err: err}
	}
	if found {
		if stale := staleTags(previous.TagSet(), tags); len(stale) > 0 {
			if err := s.topics.Unsubscribe(ctx, device.DeviceToken, stale); err != nil {
				return Installation{}, &notification.TransportError{Op: "topic unsubscribe", Err: err}
			}
		}
	}

	if err := s.store.Replace(ctx, installation); err != nil {
		return Installation{}, &notification.TransportError{Op: "registry replace", Err: err}
	}
	if err := s.topics.Subscribe(ctx, device.DeviceToken, tags); err != nil {
		return Installation{}, &notification.TransportError{Op: "topic subscribe", Err: err}
	}

	slog.Info("Registered device installation",
		"user_id", device.UserID,
		"platform", device.Platform,
		"tag_count", len(tags),
	)
	return installation, nil
}

// Remove deletes an installation by device token. Removing an absent token
// is already-satisfied intent, not an error.
func (s *Service) Remove(ctx context.Context, deviceToken string) error {
	if deviceToken == "" {
		return &notification.ValidationError{Field: "deviceToken", Reason: "required"}
	}

	previous, found, err := s.store.Get(ctx, deviceToken)
	if err != nil {
		return &notification.TransportError{Op: "registry get", Err: err}
	}
	if !found {
		return nil
	}

	if tags := previous.TagSet(); len(tags) > 0 {
		if err := s.topics.Unsubscribe(ctx, deviceToken, tags); err != nil {
			return &notification.TransportError{Op: "topic unsubscribe", Err: err}
		}
	}
	if err := s.store.Delete(ctx, deviceToken); err != nil {
		return &notification.TransportError{Op: "registry delete", Err: err}
	}

	slog.Info("Unregistered device installation", "user_id", previous.UserID)
	return nil
}

func tagStrings(tags []models.Tag) []string {
	out := make([]string, len(tags))
	for i, tag := range tags {
		out[i] = tag.String()
	}
	return out
}

// staleTags returns the tags present in old but absent from current.
func staleTags(old, current []models.Tag) []models.Tag {
	keep := make(map[string]struct{}, len(current))
	for _, tag := range current {
		keep[tag.String()] = struct{}{}
	}
	var stale []models.Tag
	for _, tag := range old {
		if _, ok := keep[tag.String()]; !ok {
			stale = append(stale, tag)
		}
	}
	return stale
}
