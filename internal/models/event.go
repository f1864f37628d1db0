package models

import (
	"time"
)

type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "Low"
	PriorityNormal NotificationPriority = "Normal"
	PriorityHigh   NotificationPriority = "High"
)

type TargetAudience string

const (
	AudienceAllUsers            TargetAudience = "AllUsers"
	AudiencePremiumUsers        TargetAudience = "PremiumUsers"
	AudienceSpecificGamePlayers TargetAudience = "SpecificGamePlayers"
	AudienceInactiveUsers       TargetAudience = "InactiveUsers"
)

// GamingEvent is the wire model consumed from the event bus and the
// ingestion API. Instances are treated as immutable during dispatch; the
// With* helpers below derive copies instead of mutating in place.
type GamingEvent struct {
	EventID        string               `json:"eventId"`
	EventType      string               `json:"eventType"`
	Title          string               `json:"title"`
	Message        string               `json:"message"`
	ScheduledTime  time.Time            `json:"scheduledTime"`
	GameID         string               `json:"gameId,omitempty"`
	Priority       NotificationPriority `json:"priority"`
	TargetAudience TargetAudience       `json:"targetAudience"`
}

// WithMessage returns a copy of the event with a rewritten message.
func (e GamingEvent) WithMessage(message string) GamingEvent {
	e.Message = message
	return e
}

// WithPriority returns a copy of the event with an overridden priority.
func (e GamingEvent) WithPriority(priority NotificationPriority) GamingEvent {
	e.Priority = priority
	return e
}

// WithAudience returns a copy of the event with an overridden target audience.
func (e GamingEvent) WithAudience(audience TargetAudience) GamingEvent {
	e.TargetAudience = audience
	return e
}
