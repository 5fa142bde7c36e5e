// Package catalogtest provides an in-memory catalog for tests.
package catalogtest

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"github.com/geteduroam/discogen/pkg/catapi"
)

// DefaultBase is the base URL reported by a Catalog without one.
const DefaultBase = "https://cat.example.org/user/API.php"

// Catalog answers catalog calls from fixed data and counts them per action.
// Languages are accepted and ignored.
type Catalog struct {
	BaseURL    string
	Countries  []catapi.Country
	Providers  []catapi.Provider
	ByCountry  map[string][]catapi.CountryProvider
	Profiles   map[int][]catapi.ProfileSummary
	Attributes map[int]*catapi.ProfileAttributes
	Devices    map[int][]catapi.Device
	EAPConfigs map[int]*catapi.EAPConfig
	Info       map[string]string

	mu    sync.Mutex
	calls map[string]int
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		BaseURL:    DefaultBase,
		ByCountry:  make(map[string][]catapi.CountryProvider),
		Profiles:   make(map[int][]catapi.ProfileSummary),
		Attributes: make(map[int]*catapi.ProfileAttributes),
		Devices:    make(map[int][]catapi.Device),
		EAPConfigs: make(map[int]*catapi.EAPConfig),
		Info:       make(map[string]string),
		calls:      make(map[string]int),
	}
}

// Str returns a pointer to s.
func Str(s string) *string {
	return &s
}

// Status returns a pointer to a device status.
func Status(n int) *catapi.FlexInt {
	v := catapi.FlexInt(n)
	return &v
}

// AddProvider registers a provider in both listings.
// A nil title leaves the full listing without a title.
func (c *Catalog) AddProvider(id int, country string, title *string, display string, geo ...catapi.RawGeo) {
	c.Providers = append(c.Providers, catapi.Provider{
		EntityID: catapi.FlexInt(id),
		Title:    title,
		Country:  country,
		Geo:      geo,
	})
	c.ByCountry[country] = append(c.ByCountry[country], catapi.CountryProvider{ID: catapi.FlexInt(id), Display: display})
}

// AddProfile registers a profile of provider with the given devices.
func (c *Catalog) AddProfile(provider, profile int, display string, devices ...catapi.Device) {
	c.Profiles[provider] = append(c.Profiles[provider], catapi.ProfileSummary{ID: catapi.FlexInt(profile), Display: display})
	c.Attributes[profile] = &catapi.ProfileAttributes{Devices: devices}
}

// AvailableDevice is a device served by the catalog.
func AvailableDevice(id, display string) catapi.Device {
	return catapi.Device{ID: catapi.Scalar(id), Display: Str(display), Status: Status(0)}
}

// RedirectDevice is a device entry for the whole profile pointing at target.
func RedirectDevice(target string) catapi.Device {
	return catapi.Device{ID: "0", Redirect: catapi.Scalar(target)}
}

// Calls returns how often action was called.
func (c *Catalog) Calls(action string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[action]
}

func (c *Catalog) count(action string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = make(map[string]int)
	}
	c.calls[action]++
}

func (c *Catalog) Base() string {
	if c.BaseURL == "" {
		return DefaultBase
	}
	return c.BaseURL
}

func (c *Catalog) ListAllCountries(_ context.Context, _ string) ([]catapi.Country, error) {
	c.count("listAllCountries")
	return c.Countries, nil
}

func (c *Catalog) ListAllIdentityProviders(_ context.Context, _ string) ([]catapi.Provider, error) {
	c.count("listAllIdentityProviders")
	return c.Providers, nil
}

func (c *Catalog) ListIdentityProviders(_ context.Context, country, _ string) ([]catapi.CountryProvider, error) {
	c.count("listIdentityProviders")
	return c.ByCountry[country], nil
}

func (c *Catalog) ListProfiles(_ context.Context, idp int, _ string) ([]catapi.ProfileSummary, error) {
	c.count("listProfiles")
	return c.Profiles[idp], nil
}

func (c *Catalog) ProfileAttributes(_ context.Context, profile int, _ string) (*catapi.ProfileAttributes, error) {
	c.count("profileAttributes")
	if attrs, ok := c.Attributes[profile]; ok {
		return attrs, nil
	}
	return &catapi.ProfileAttributes{}, nil
}

func (c *Catalog) ListDevices(_ context.Context, profile int, _ string) ([]catapi.Device, error) {
	c.count("listDevices")
	return c.Devices[profile], nil
}

func (c *Catalog) DownloadInstallerURL(_ context.Context, device string, profile int) (string, error) {
	c.count("generateInstaller")
	return c.Base() + "?" + url.Values{
		"action":  {"downloadInstaller"},
		"device":  {device},
		"profile": {strconv.Itoa(profile)},
	}.Encode(), nil
}

func (c *Catalog) DeviceInfo(_ context.Context, device string, profile int, _ string) (string, error) {
	c.count("deviceInfo")
	return c.Info[fmt.Sprintf("%s/%d", device, profile)], nil
}

func (c *Catalog) EAPConfig(_ context.Context, profile int, _ string) (*catapi.EAPConfig, error) {
	c.count("eap-config")
	if cfg, ok := c.EAPConfigs[profile]; ok {
		return cfg, nil
	}
	return nil, &catapi.FetchError{URL: c.Base(), Err: catapi.ErrEmptyResponse}
}

func (c *Catalog) IconURL(icon string) string {
	return c.Base() + "?" + url.Values{"action": {"sendLogo"}, "id": {icon}}.Encode()
}
