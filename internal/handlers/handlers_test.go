package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gaming-notification-service/internal/models"
	"gaming-notification-service/internal/notification"
	"gaming-notification-service/internal/push"
	"gaming-notification-service/internal/registry"
)

// stubSender fails sends for the platforms listed in failPlatform and
// accepts everything else.
type stubSender struct {
	failPlatform map[models.DevicePlatform]error
}

func (s *stubSender) Send(_ context.Context, _ push.Payload, target push.Target) (push.DeliveryState, error) {
	if err, ok := s.failPlatform[target.Platform]; ok {
		return "", err
	}
	return push.DeliveryState("msg-" + string(target.Platform)), nil
}

type stubRegistrar struct {
	installation registry.Installation
	err          error
	removed      []string
}

func (s *stubRegistrar) Upsert(_ context.Context, _ models.UserDeviceInfo) (registry.Installation, error) {
	return s.installation, s.err
}

func (s *stubRegistrar) Remove(_ context.Context, deviceToken string) error {
	s.removed = append(s.removed, deviceToken)
	return s.err
}

func newNotificationApp(sender push.Sender) *fiber.App {
	router := notification.NewRouter(notification.NewResolver(nil), notification.NewDispatcher(sender))
	app := fiber.New()
	NewNotificationHandler(nil, router).RegisterRoutes(app)
	return app
}

func newDeviceApp(registrar *stubRegistrar) *fiber.App {
	app := fiber.New()
	NewDeviceHandler(registrar).RegisterRoutes(app)
	return app
}

func jsonRequest(method, target string, body any) *http.Request {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func TestStatusError_Mapping(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"validation", notification.ErrMissingGameID(), fiber.StatusBadRequest},
		{"unsupported audience", &notification.UnsupportedAudienceError{Audience: "VIPWhales"}, fiber.StatusBadRequest},
		{"unsupported platform", &notification.UnsupportedPlatformError{Platform: "Symbian"}, fiber.StatusBadRequest},
		{"transport", &notification.TransportError{Op: "send", Err: assert.AnError}, fiber.StatusBadGateway},
		{"wrapped transport", fmt.Errorf("route: %w", &notification.TransportError{Op: "send", Err: assert.AnError}), fiber.StatusBadGateway},
		{"unclassified", assert.AnError, fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var fiberErr *fiber.Error
			require.ErrorAs(t, statusError(tc.err), &fiberErr)
			assert.Equal(t, tc.wantCode, fiberErr.Code)
		})
	}
}

func TestSendTestNotification_Success(t *testing.T) {
	app := newNotificationApp(&stubSender{})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/gaming/api/v1/test/notification", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, float64(2), body["delivered"])
	assert.Equal(t, float64(0), body["failed"])
}

func TestSendTestNotification_PartialFailureStillReportsCounts(t *testing.T) {
	sender := &stubSender{failPlatform: map[models.DevicePlatform]error{
		models.PlatformAndroid: assert.AnError,
	}}
	app := newNotificationApp(sender)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/gaming/api/v1/test/notification", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, float64(1), body["delivered"])
	assert.Equal(t, float64(1), body["failed"])
}

func TestSendTestNotification_TotalFailureIsNotSuccess(t *testing.T) {
	sender := &stubSender{failPlatform: map[models.DevicePlatform]error{
		models.PlatformAndroid: assert.AnError,
		models.PlatformIOS:     assert.AnError,
	}}
	app := newNotificationApp(sender)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/gaming/api/v1/test/notification", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestCreateGamingEvent_InvalidBody(t *testing.T) {
	app := newNotificationApp(&stubSender{})

	req := httptest.NewRequest(http.MethodPost, "/gaming/api/v1/events", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRegisterDevice_Success(t *testing.T) {
	registrar := &stubRegistrar{installation: registry.Installation{
		DeviceToken: "token-abc",
		Tags:        []string{"userid:u-1001", "platform:android", "language:en"},
	}}
	app := newDeviceApp(registrar)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/gaming/api/v1/devices/register", models.UserDeviceInfo{
		UserID:      "u-1001",
		DeviceToken: "token-abc",
		Platform:    models.PlatformAndroid,
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Len(t, body["tags"], 3)
}

func TestRegisterDevice_UnsupportedPlatform(t *testing.T) {
	registrar := &stubRegistrar{err: &notification.UnsupportedPlatformError{Platform: "Symbian"}}
	app := newDeviceApp(registrar)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/gaming/api/v1/devices/register", models.UserDeviceInfo{
		UserID:      "u-1001",
		DeviceToken: "token-abc",
		Platform:    "Symbian",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUnregisterDevice(t *testing.T) {
	registrar := &stubRegistrar{}
	app := newDeviceApp(registrar)

	resp, err := app.Test(jsonRequest(http.MethodDelete, "/gaming/api/v1/devices", models.UnregisterDeviceRequest{
		UserID:      "u-1001",
		DeviceToken: "token-abc",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"token-abc"}, registrar.removed)
}
