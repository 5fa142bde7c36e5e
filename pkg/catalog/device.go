package catalog

import (
	"context"
	"html"
	"strings"

	"github.com/geteduroam/discogen/pkg/catapi"
)

// Device statuses as reported by the catalog.
const (
	StatusUnknown     = -1
	StatusAvailable   = 0
	StatusUnavailable = 1
)

// ProfileDeviceID is the id of the device entry that stands for the whole profile.
const ProfileDeviceID = "0"

// Device is a *LinkDevice or a *CertificateDevice.
type Device interface {
	// ID returns the catalog device id.
	ID() string
	// Display returns the name shown to users.
	Display() string
	// Message returns an explanation of the device, if there is one.
	Message() string
	// DownloadLink returns where the configuration can be downloaded.
	DownloadLink(ctx context.Context) (string, error)
	// IsRedirect reports whether the device sends users elsewhere.
	IsRedirect() bool
	// Group returns the bucket the device is shown in.
	Group() string

	available() bool
}

// LinkDevice is a device listed by the catalog.
type LinkDevice struct {
	profile *Profile
	raw     catapi.Device
	info    *string
}

func (d *LinkDevice) ID() string {
	return d.raw.DeviceID()
}

// Profile returns the profile the device belongs to.
func (d *LinkDevice) Profile() *Profile {
	return d.profile
}

// Display returns "External" for a profile-level redirect.
func (d *LinkDevice) Display() string {
	if d.IsProfileRedirect() {
		return "External"
	}
	if d.raw.Display == nil {
		return ""
	}
	return *d.raw.Display
}

// Status returns the catalog status, StatusUnknown when the catalog sent none.
func (d *LinkDevice) Status() int {
	if d.raw.Status == nil {
		return StatusUnknown
	}
	return int(*d.raw.Status)
}

// Redirect returns the redirect URL, or "" if the device has none.
func (d *LinkDevice) Redirect() string {
	if !d.raw.Redirect.Truthy() {
		return ""
	}
	return d.raw.Redirect.String()
}

func (d *LinkDevice) IsRedirect() bool {
	return d.raw.Redirect.Truthy()
}

// IsProfileRedirect reports whether the redirect is set for the whole profile.
func (d *LinkDevice) IsProfileRedirect() bool {
	return d.ID() == ProfileDeviceID && d.raw.Display == nil && d.raw.Redirect.Truthy()
}

// EAPCustomText returns the administrator text for the EAP method.
func (d *LinkDevice) EAPCustomText() string {
	return d.raw.EAPCustomText.String()
}

// DeviceCustomText returns the administrator text for the device,
// HTML escaped with line breaks turned into <br />.
func (d *LinkDevice) DeviceCustomText() string {
	text := d.raw.DeviceCustomText.String()
	if text == "" {
		return ""
	}
	return nl2br(html.EscapeString(text))
}

// Message returns the HTML message of the catalog. Redirects have none.
func (d *LinkDevice) Message() string {
	if !d.raw.Message.Truthy() {
		return ""
	}
	return d.raw.Message.String()
}

// DeviceInfo returns the HTML notes of the catalog for this device.
// Redirects have none and are not looked up.
func (d *LinkDevice) DeviceInfo(ctx context.Context) (string, error) {
	if d.IsRedirect() {
		return "", nil
	}
	if d.info == nil {
		info, err := d.profile.g.api.DeviceInfo(ctx, d.ID(), d.profile.id, d.profile.provider.lang)
		if err != nil {
			return "", err
		}
		d.info = &info
	}
	return *d.info, nil
}

// DownloadLink returns the catalog URL of the installer.
func (d *LinkDevice) DownloadLink(ctx context.Context) (string, error) {
	return d.profile.g.api.DownloadInstallerURL(ctx, d.ID(), d.profile.id)
}

func (d *LinkDevice) Group() string {
	return GroupOf(d.ID())
}

func (d *LinkDevice) available() bool {
	return d.IsRedirect() || d.Status() == StatusAvailable
}

// nl2br inserts "<br />" before every line break.
func nl2br(s string) string {
	r := strings.NewReplacer("\r\n", "<br />\r\n", "\n\r", "<br />\n\r", "\n", "<br />\n", "\r", "<br />\r")
	return r.Replace(s)
}
