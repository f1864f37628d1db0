package event

import (
	"encoding/json"
	"time"
)

const (
	GamingEventsQueue    = "gaming_events"
	GamingEventsDLQ      = "gaming_events.dlq"
	gamingSubjectPrefix  = "gaming/events/"
	maxDeliveryAttempts  = 3
	retryCountHeader     = "x-retry-count"
	defaultPrefetchCount = 10
)

type MessageKind string

const (
	KindGamingEvent      MessageKind = "gaming_event"
	KindDeviceRegister   MessageKind = "device_register"
	KindDeviceUnregister MessageKind = "device_unregister"
)

// Envelope is the bus message wrapper. Payload holds the raw JSON of the
// model the kind names; decoding it is deferred to the consumer so a bad
// payload can be dead-lettered with the envelope intact.
type Envelope struct {
	ID         string          `json:"id"`
	Kind       MessageKind     `json:"kind"`
	Subject    string          `json:"subject,omitempty"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}
