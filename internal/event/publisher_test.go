package event

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gaming-notification-service/internal/models"
)

type publishedMessage struct {
	routingKey string
	msg        amqp.Publishing
}

type fakeChannel struct {
	mu        sync.Mutex
	published []publishedMessage
	err       error
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _ string, key string, _ bool, _ bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, publishedMessage{routingKey: key, msg: msg})
	return nil
}

func newTestPublisher(ch *fakeChannel) *Publisher {
	return &Publisher{ch: ch, lastPublishTime: time.Now()}
}

func decodeEnvelope(t *testing.T, msg amqp.Publishing) Envelope {
	t.Helper()
	var envelope Envelope
	require.NoError(t, json.Unmarshal(msg.Body, &envelope))
	return envelope
}

func TestPublishGamingEvent_AssignsEventID(t *testing.T) {
	ch := &fakeChannel{}
	publisher := newTestPublisher(ch)

	eventID, err := publisher.PublishGamingEvent(context.Background(), models.GamingEvent{
		EventType:      "Maintenance",
		Title:          "Server Maintenance",
		TargetAudience: models.AudienceAllUsers,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, eventID)
	require.Len(t, ch.published, 1)

	published := ch.published[0]
	assert.Equal(t, GamingEventsQueue, published.routingKey)
	assert.Equal(t, amqp.Persistent, published.msg.DeliveryMode)

	envelope := decodeEnvelope(t, published.msg)
	assert.Equal(t, KindGamingEvent, envelope.Kind)
	assert.Equal(t, "gaming/events/Maintenance", envelope.Subject)

	var gamingEvent models.GamingEvent
	require.NoError(t, json.Unmarshal(envelope.Payload, &gamingEvent))
	assert.Equal(t, eventID, gamingEvent.EventID)
}

func TestPublishGamingEvent_KeepsCallerEventID(t *testing.T) {
	ch := &fakeChannel{}
	publisher := newTestPublisher(ch)

	eventID, err := publisher.PublishGamingEvent(context.Background(), models.GamingEvent{
		EventID:        "evt-042",
		EventType:      "TournamentStart",
		TargetAudience: models.AudienceAllUsers,
	})

	require.NoError(t, err)
	assert.Equal(t, "evt-042", eventID)
}

func TestPublishScheduled_StampsScheduledTime(t *testing.T) {
	ch := &fakeChannel{}
	publisher := newTestPublisher(ch)
	publishTime := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)

	_, err := publisher.PublishScheduled(context.Background(), models.GamingEvent{
		EventType:      "TournamentStart",
		TargetAudience: models.AudienceAllUsers,
	}, publishTime)

	require.NoError(t, err)
	require.Len(t, ch.published, 1)

	envelope := decodeEnvelope(t, ch.published[0].msg)
	var gamingEvent models.GamingEvent
	require.NoError(t, json.Unmarshal(envelope.Payload, &gamingEvent))
	assert.True(t, publishTime.Equal(gamingEvent.ScheduledTime))
}

func TestPublishDeviceRegistration(t *testing.T) {
	ch := &fakeChannel{}
	publisher := newTestPublisher(ch)

	err := publisher.PublishDeviceRegistration(context.Background(), models.UserDeviceInfo{
		UserID:      "u-1001",
		DeviceToken: "token-abc",
		Platform:    models.PlatformAndroid,
	})

	require.NoError(t, err)
	require.Len(t, ch.published, 1)

	envelope := decodeEnvelope(t, ch.published[0].msg)
	assert.Equal(t, KindDeviceRegister, envelope.Kind)

	var device models.UserDeviceInfo
	require.NoError(t, json.Unmarshal(envelope.Payload, &device))
	assert.Equal(t, "u-1001", device.UserID)
	assert.Equal(t, "token-abc", device.DeviceToken)
}

func TestPublishDeviceRemoval(t *testing.T) {
	ch := &fakeChannel{}
	publisher := newTestPublisher(ch)

	err := publisher.PublishDeviceRemoval(context.Background(), models.UnregisterDeviceRequest{
		UserID:      "u-1001",
		DeviceToken: "token-abc",
	})

	require.NoError(t, err)
	require.Len(t, ch.published, 1)

	envelope := decodeEnvelope(t, ch.published[0].msg)
	assert.Equal(t, KindDeviceUnregister, envelope.Kind)

	var request models.UnregisterDeviceRequest
	require.NoError(t, json.Unmarshal(envelope.Payload, &request))
	assert.Equal(t, "token-abc", request.DeviceToken)
}

func TestPublish_BrokerFailureCounted(t *testing.T) {
	ch := &fakeChannel{err: assert.AnError}
	publisher := newTestPublisher(ch)

	_, err := publisher.PublishGamingEvent(context.Background(), models.GamingEvent{
		EventType:      "Maintenance",
		TargetAudience: models.AudienceAllUsers,
	})

	require.Error(t, err)
	metrics := publisher.GetMetrics()
	assert.Equal(t, int64(0), metrics["messages_published"])
	assert.Equal(t, int64(1), metrics["messages_failed"])
}

func TestPublisher_ConcurrentPublishes(t *testing.T) {
	ch := &fakeChannel{}
	publisher := newTestPublisher(ch)

	const publishers = 16
	var wg sync.WaitGroup
	for i := 0; i < publishers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := publisher.PublishGamingEvent(context.Background(), models.GamingEvent{
				EventType:      "Maintenance",
				TargetAudience: models.AudienceAllUsers,
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	metrics := publisher.GetMetrics()
	assert.Equal(t, int64(publishers), metrics["messages_published"])
	assert.Len(t, ch.published, publishers)
}
