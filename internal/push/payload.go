package push

import "gaming-notification-service/internal/models"

// Payload is a platform-specific notification body. Exactly one of Android
// and Apple is populated, matching Platform.
type Payload struct {
	Platform models.DevicePlatform
	Android  *AndroidPayload
	Apple    *ApplePayload
}

// AndroidPayload carries both a silent data block (app-processable) and a
// notification block (OS-rendered) so delivery works whether the receiving
// app is foregrounded or backgrounded.
type AndroidPayload struct {
	Data         AndroidData         `json:"data"`
	Notification AndroidNotification `json:"notification"`
}

type AndroidData struct {
	Title         string `json:"title"`
	Message       string `json:"message"`
	EventID       string `json:"eventId"`
	GameID        string `json:"gameId"`
	ScheduledTime string `json:"scheduledTime"`
	EventType     string `json:"eventType"`
	Priority      string `json:"priority"`
}

type AndroidNotification struct {
	Title       string `json:"title"`
	Body        string `json:"body"`
	Sound       string `json:"sound"`
	ClickAction string `json:"click_action"`
}

// ApplePayload is the APNs body: the aps block plus event metadata outside
// it so the app can process the event without parsing the alert.
type ApplePayload struct {
	Aps           Aps    `json:"aps"`
	EventID       string `json:"eventId"`
	GameID        string `json:"gameId"`
	ScheduledTime string `json:"scheduledTime"`
}

type Aps struct {
	Alert            ApsAlert `json:"alert"`
	Sound            string   `json:"sound"`
	Badge            int      `json:"badge"`
	Category         string   `json:"category"`
	ContentAvailable int      `json:"contentAvailable"`
}

type ApsAlert struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}
