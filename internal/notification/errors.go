package notification

import (
	"fmt"

	"gaming-notification-service/internal/models"
)

// ValidationError reports a missing or malformed required field on an
// inbound model. It is fatal to the single request or message carrying it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// ErrMissingGameID is the ValidationError raised when a game-targeted
// audience is resolved without a game id.
func ErrMissingGameID() *ValidationError {
	return &ValidationError{Field: "gameId", Reason: "required for SpecificGamePlayers audience"}
}

// UnsupportedAudienceError is returned when the target audience enum carries
// a value the resolver does not recognize. TargetAudience is open at the
// wire boundary, so this must stay a well-defined failure rather than a
// silent empty plan.
type UnsupportedAudienceError struct {
	Audience models.TargetAudience
}

func (e *UnsupportedAudienceError) Error() string {
	return fmt.Sprintf("unsupported target audience: %s", e.Audience)
}

// UnsupportedPlatformError is returned when a device platform cannot be
// mapped to a known push transport.
type UnsupportedPlatformError struct {
	Platform models.DevicePlatform
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("unsupported device platform: %s", e.Platform)
}

// TransportError wraps a push or registry backend failure. Dispatch keeps
// transport errors scoped to the partition that raised them.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DeserializationError reports a bus message whose body could not be
// decoded. It is surfaced unmodified so the transport's dead-letter policy
// can act on it.
type DeserializationError struct {
	Kind string
	Err  error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("cannot deserialize %s payload: %v", e.Kind, e.Err)
}

func (e *DeserializationError) Unwrap() error { return e.Err }
