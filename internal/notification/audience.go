package notification

import (
	"gaming-notification-service/internal/models"
)

const (
	premiumMessagePrefix      = "[PREMIUM] "
	reEngagementMessagePrefix = "We miss you! "
)

// allPlatforms is the fixed platform fan-out order for broadcast plans.
var allPlatforms = []models.DevicePlatform{models.PlatformAndroid, models.PlatformIOS}

// Partition is one independent unit of dispatch and failure: a platform, an
// optional tag expression, and the event variant whose payload it delivers.
type Partition struct {
	Platform   models.DevicePlatform
	Expression models.TagExpression
	Event      models.GamingEvent
}

// PartitionKey identifies a partition inside a dispatch result.
type PartitionKey struct {
	Platform   models.DevicePlatform
	Expression string
}

func (p Partition) Key() PartitionKey {
	return PartitionKey{Platform: p.Platform, Expression: p.Expression.String()}
}

// DeliveryPlan is the transient result of audience resolution, consumed
// immediately by the dispatcher.
type DeliveryPlan struct {
	Partitions []Partition
}

// SegmentSource supplies targeting expressions for audiences whose
// membership lives outside the installation registry (premium tier,
// inactivity). The zero default broadcasts to everyone, which is the
// documented placeholder until a tier/inactivity store is wired in.
type SegmentSource interface {
	PremiumSegment() models.TagExpression
	InactiveSegment() models.TagExpression
}

type broadcastSegments struct{}

func (broadcastSegments) PremiumSegment() models.TagExpression  { return nil }
func (broadcastSegments) InactiveSegment() models.TagExpression { return nil }

// Resolver maps an event's declared audience onto a concrete delivery plan.
// Resolution is pure: all side-effecting work happens in the dispatcher.
type Resolver struct {
	segments SegmentSource
}

func NewResolver(segments SegmentSource) *Resolver {
	if segments == nil {
		segments = broadcastSegments{}
	}
	return &Resolver{segments: segments}
}

// Resolve is total over the audience enum: every recognized value yields a
// non-empty plan or a well-defined error, and unrecognized values fail with
// UnsupportedAudienceError since the enum is open at the wire boundary.
func (r *Resolver) Resolve(event models.GamingEvent) (DeliveryPlan, error) {
	switch event.TargetAudience {
	case models.AudienceAllUsers:
		return broadcastPlan(event, nil), nil

	case models.AudiencePremiumUsers:
		variant := event.WithMessage(premiumMessagePrefix + event.Message)
		return broadcastPlan(variant, r.segments.PremiumSegment()), nil

	case models.AudienceSpecificGamePlayers:
		if event.GameID == "" {
			return DeliveryPlan{}, ErrMissingGameID()
		}
		expr := models.TagExpression{models.GameTag(event.GameID)}
		return broadcastPlan(event, expr), nil

	case models.AudienceInactiveUsers:
		variant := event.
			WithMessage(reEngagementMessagePrefix + event.Message).
			WithPriority(models.PriorityHigh)
		return broadcastPlan(variant, r.segments.InactiveSegment()), nil

	default:
		return DeliveryPlan{}, &UnsupportedAudienceError{Audience: event.TargetAudience}
	}
}

func broadcastPlan(event models.GamingEvent, expr models.TagExpression) DeliveryPlan {
	partitions := make([]Partition, 0, len(allPlatforms))
	for _, platform := range allPlatforms {
		partitions = append(partitions, Partition{
			Platform:   platform,
			Expression: expr,
			Event:      event,
		})
	}
	return DeliveryPlan{Partitions: partitions}
}

// UserPlan targets every device of a single user across all platforms via
// the userid tag, without enumerating device tokens.
func UserPlan(userID string, event models.GamingEvent) DeliveryPlan {
	return broadcastPlan(event, models.TagExpression{models.UserTag(userID)})
}

// PlatformPlan limits delivery to a single platform.
func PlatformPlan(platform models.DevicePlatform, event models.GamingEvent) (DeliveryPlan, error) {
	switch platform {
	case models.PlatformAndroid, models.PlatformIOS:
		return DeliveryPlan{Partitions: []Partition{{Platform: platform, Event: event}}}, nil
	default:
		return DeliveryPlan{}, &UnsupportedPlatformError{Platform: platform}
	}
}
