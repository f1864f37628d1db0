package event

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gaming-notification-service/internal/models"
)

func TestEnvelope_DecodesGamingEvent(t *testing.T) {
	body := []byte(`{
		"id": "env-1",
		"kind": "gaming_event",
		"subject": "gaming/events/TournamentStart",
		"occurredAt": "2026-08-30T12:00:00Z",
		"payload": {
			"eventId": "evt-001",
			"eventType": "TournamentStart",
			"title": "Blitz Cup",
			"message": "Starts in one hour",
			"scheduledTime": "2026-08-30T13:00:00Z",
			"priority": "Normal",
			"targetAudience": "AllUsers"
		}
	}`)

	var envelope Envelope
	require.NoError(t, json.Unmarshal(body, &envelope))
	assert.Equal(t, KindGamingEvent, envelope.Kind)

	var gamingEvent models.GamingEvent
	require.NoError(t, json.Unmarshal(envelope.Payload, &gamingEvent))
	assert.Equal(t, "evt-001", gamingEvent.EventID)
	assert.Equal(t, models.AudienceAllUsers, gamingEvent.TargetAudience)
	assert.Equal(t, models.PriorityNormal, gamingEvent.Priority)
}

func TestEnvelope_MalformedPayloadSurfaces(t *testing.T) {
	var envelope Envelope
	require.NoError(t, json.Unmarshal([]byte(`{"kind":"gaming_event","payload":"not-an-object"}`), &envelope))

	var gamingEvent models.GamingEvent
	err := json.Unmarshal(envelope.Payload, &gamingEvent)
	assert.Error(t, err)
}
