package notification

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"gaming-notification-service/internal/models"
)

// EventClass is the closed classification of the open eventType wire field.
// Unrecognized types pass through untouched.
type EventClass int

const (
	ClassUnknown EventClass = iota
	ClassTournamentStart
	ClassNewGameRelease
	ClassMaintenance
)

// Classify maps the wire event type onto its class.
func Classify(eventType string) EventClass {
	switch eventType {
	case "TournamentStart":
		return ClassTournamentStart
	case "NewGameRelease":
		return ClassNewGameRelease
	case "Maintenance":
		return ClassMaintenance
	default:
		return ClassUnknown
	}
}

// Router receives inbound gaming events, applies event-type transforms, and
// drives resolution plus dispatch. It holds no state; every transform
// derives a new event value and the inbound event is never mutated.
type Router struct {
	resolver   *Resolver
	dispatcher *Dispatcher
}

func NewRouter(resolver *Resolver, dispatcher *Dispatcher) *Router {
	return &Router{resolver: resolver, dispatcher: dispatcher}
}

// Route classifies the event, applies type-specific transforms, resolves
// the audience and executes the resulting plan.
func (r *Router) Route(ctx context.Context, event models.GamingEvent) (DispatchResult, error) {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	if event.Priority == "" {
		event.Priority = models.PriorityNormal
	}

	switch Classify(event.EventType) {
	case ClassTournamentStart:
		// Tournament starts are always urgent.
		event = event.WithPriority(models.PriorityHigh)
	case ClassNewGameRelease:
		// Releases go to players interested in the game regardless of the
		// declared audience.
		event = event.WithAudience(models.AudienceSpecificGamePlayers)
	}

	slog.Info("Processing gaming event",
		"event_id", event.EventID,
		"event_type", event.EventType,
		"audience", event.TargetAudience,
	)

	plan, err := r.resolver.Resolve(event)
	if err != nil {
		return nil, err
	}
	return r.dispatcher.Dispatch(ctx, plan)
}

// RouteToUser delivers an event to every device of one user, bypassing
// audience resolution.
func (r *Router) RouteToUser(ctx context.Context, userID string, event models.GamingEvent) (DispatchResult, error) {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	return r.dispatcher.Dispatch(ctx, UserPlan(userID, event))
}
