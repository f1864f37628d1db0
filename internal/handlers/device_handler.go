package handlers

import (
	"github.com/gofiber/fiber/v3"

	"gaming-notification-service/internal/event"
	"gaming-notification-service/internal/models"
)

// DeviceHandler exposes device registration over HTTP. Registration is
// applied to the registry directly; the bus path exists for collaborators
// that register devices asynchronously.
type DeviceHandler struct {
	registrar event.DeviceRegistrar
}

func NewDeviceHandler(registrar event.DeviceRegistrar) *DeviceHandler {
	return &DeviceHandler{registrar: registrar}
}

func (h *DeviceHandler) RegisterRoutes(app *fiber.App) {
	gr := app.Group("gaming/api/v1")

	gr.Post("/devices/register", h.RegisterDevice)
	gr.Delete("/devices", h.UnregisterDevice)
}

func (h *DeviceHandler) RegisterDevice(c fiber.Ctx) error {
	var device models.UserDeviceInfo
	if err := c.Bind().Body(&device); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	installation, err := h.registrar.Upsert(c.Context(), device)
	if err != nil {
		return statusError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Device registered successfully",
		"tags":    installation.Tags,
	})
}

func (h *DeviceHandler) UnregisterDevice(c fiber.Ctx) error {
	var request models.UnregisterDeviceRequest
	if err := c.Bind().Body(&request); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := h.registrar.Remove(c.Context(), request.DeviceToken); err != nil {
		return statusError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Device unregistered successfully",
	})
}
