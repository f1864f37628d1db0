package models

type DevicePlatform string

const (
	PlatformAndroid DevicePlatform = "Android"
	PlatformIOS     DevicePlatform = "iOS"
)

// UserDeviceInfo is the registration payload for a mobile device install.
// DeviceToken and Platform are both required; PreferredLanguage defaults to
// "en" when absent.
type UserDeviceInfo struct {
	UserID            string         `json:"userId"`
	DeviceToken       string         `json:"deviceToken"`
	Platform          DevicePlatform `json:"platform"`
	PhoneNumber       string         `json:"phoneNumber,omitempty"`
	PreferredLanguage string         `json:"preferredLanguage"`
	GamePreferences   []string       `json:"gamePreferences"`
}

// UnregisterDeviceRequest removes a device installation. Removal is keyed by
// the device token; the user id is carried for logging only.
type UnregisterDeviceRequest struct {
	UserID      string `json:"userId"`
	DeviceToken string `json:"deviceToken"`
}
