package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"

	"gaming-notification-service/internal/event"
	"gaming-notification-service/internal/models"
	"gaming-notification-service/internal/notification"
)

// NotificationHandler exposes the synchronous ingestion surface: event
// publication and the test-notification trigger.
type NotificationHandler struct {
	publisher *event.Publisher
	router    *notification.Router
}

func NewNotificationHandler(publisher *event.Publisher, router *notification.Router) *NotificationHandler {
	return &NotificationHandler{
		publisher: publisher,
		router:    router,
	}
}

func (h *NotificationHandler) RegisterRoutes(app *fiber.App) {
	gr := app.Group("gaming/api/v1")

	gr.Post("/events", h.CreateGamingEvent)
	gr.Post("/test/notification", h.SendTestNotification)
	gr.Get("/publisher/health", h.PublisherHealth)
}

// CreateGamingEvent accepts a gaming event and publishes it to the bus.
// Dispatch happens asynchronously when the consumer picks the event up.
func (h *NotificationHandler) CreateGamingEvent(c fiber.Ctx) error {
	var gamingEvent models.GamingEvent
	if err := c.Bind().Body(&gamingEvent); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	eventID, err := h.publisher.PublishGamingEvent(c.Context(), gamingEvent)
	if err != nil {
		return statusError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"eventId": eventID,
		"message": "Gaming event published successfully",
	})
}

// SendTestNotification dispatches a fixed test event directly through the
// router, bypassing the bus hop.
func (h *NotificationHandler) SendTestNotification(c fiber.Ctx) error {
	testEvent := models.GamingEvent{
		EventType:      "TestNotification",
		Title:          "Test Gaming Event",
		Message:        "This is a test notification from the gaming platform",
		ScheduledTime:  time.Now().UTC().Add(time.Hour),
		GameID:         "test-game-001",
		Priority:       models.PriorityNormal,
		TargetAudience: models.AudienceAllUsers,
	}

	result, err := h.router.Route(c.Context(), testEvent)
	// Partial failure still reports the per-partition counts, but a dispatch
	// where nothing was delivered is not a success.
	if err != nil && result.DeliveredCount() == 0 {
		return statusError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":   "Test notification sent successfully",
		"delivered": result.DeliveredCount(),
		"failed":    result.FailedCount(),
	})
}

// PublisherHealth reports the event publisher's health and metrics.
func (h *NotificationHandler) PublisherHealth(c fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.publisher.HealthCheck())
}

// statusError maps pipeline errors onto HTTP statuses: caller mistakes are
// 400, backend unavailability is 502, everything else 500.
func statusError(err error) error {
	var validation *notification.ValidationError
	var audience *notification.UnsupportedAudienceError
	var platform *notification.UnsupportedPlatformError
	var transport *notification.TransportError

	switch {
	case errors.As(err, &validation), errors.As(err, &audience), errors.As(err, &platform):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.As(err, &transport):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
