package catapi

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// ProviderListTTL caps the cache lifetime of the provider listings.
const ProviderListTTL = 30 * time.Minute

// EAPConfigTTL caps the cache lifetime of eap-config documents, so that a
// certificate change in the catalog shows up quickly.
const EAPConfigTTL = time.Minute

type envelope struct {
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// ListAllCountries lists the federations known to the catalog.
func (c *Client) ListAllCountries(ctx context.Context, lang string) ([]Country, error) {
	var out []Country
	err := c.objectData(ctx, NewQuery("listAllCountries"), lang, 0, &out)
	return out, err
}

// ListAllIdentityProviders lists every provider, including geo and icon data.
func (c *Client) ListAllIdentityProviders(ctx context.Context, lang string) ([]Provider, error) {
	q := NewQuery("listAllIdentityProviders")
	body, err := c.Execute(ctx, q, lang, AcceptJSON, c.capTTL(ProviderListTTL))
	if err != nil {
		return nil, err
	}
	var out []Provider
	if err := decodeShape(body, '[', &out); err != nil {
		return nil, &DecodeError{Action: q.Action, Err: err}
	}
	return out, nil
}

// ListIdentityProviders lists the providers of one federation.
func (c *Client) ListIdentityProviders(ctx context.Context, country, lang string) ([]CountryProvider, error) {
	var out []CountryProvider
	err := c.objectData(ctx, NewQuery("listIdentityProviders", "federation", country), lang, c.capTTL(ProviderListTTL), &out)
	return out, err
}

// ListProfiles lists the profiles of a provider.
func (c *Client) ListProfiles(ctx context.Context, idp int, lang string) ([]ProfileSummary, error) {
	var out []ProfileSummary
	err := c.objectData(ctx, NewQuery("listProfiles", "idp", strconv.Itoa(idp)), lang, 0, &out)
	return out, err
}

// ProfileAttributes returns support information, description and devices of a profile.
func (c *Client) ProfileAttributes(ctx context.Context, profile int, lang string) (*ProfileAttributes, error) {
	q := NewQuery("profileAttributes", "profile", strconv.Itoa(profile))
	var out *ProfileAttributes
	if err := c.objectData(ctx, q, lang, 0, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, &DecodeError{Action: q.Action, Err: fmt.Errorf("no attributes for profile %d", profile)}
	}
	return out, nil
}

// ListDevices lists the devices of a profile, without custom texts.
func (c *Client) ListDevices(ctx context.Context, profile int, lang string) ([]Device, error) {
	var out []Device
	err := c.objectData(ctx, NewQuery("listDevices", "profile", strconv.Itoa(profile)), lang, 0, &out)
	return out, err
}

// GenerateInstaller makes sure the catalog has built the installer for device.
func (c *Client) GenerateInstaller(ctx context.Context, device string, profile int, lang string) (*Installer, error) {
	var out Installer
	q := NewQuery("generateInstaller", "device", device, "profile", strconv.Itoa(profile))
	if err := c.objectData(ctx, q, lang, 0, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeviceInfo returns the catalog's HTML notes for a device.
func (c *Client) DeviceInfo(ctx context.Context, device string, profile int, lang string) (string, error) {
	q := NewQuery("deviceInfo", "device", device, "profile", strconv.Itoa(profile))
	body, err := c.Execute(ctx, q, lang, AcceptHTML, 0)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// DownloadInstallerURL generates the installer and returns its download URL.
func (c *Client) DownloadInstallerURL(ctx context.Context, device string, profile int) (string, error) {
	if _, err := c.GenerateInstaller(ctx, device, profile, ""); err != nil {
		return "", err
	}
	return c.URL(NewQuery("downloadInstaller", "device", device, "profile", strconv.Itoa(profile)), ""), nil
}

// EAPConfig downloads and parses the eap-config document of a profile.
func (c *Client) EAPConfig(ctx context.Context, profile int, lang string) (*EAPConfig, error) {
	q := NewQuery("downloadInstaller", "device", "eap-config", "profile", strconv.Itoa(profile))
	body, err := c.Execute(ctx, q, lang, AcceptEAPConfig, c.capTTL(EAPConfigTTL))
	if err != nil {
		return nil, err
	}
	var out EAPConfig
	if err := xml.Unmarshal(body, &out); err != nil {
		return nil, &DecodeError{Action: "eap-config", Err: fmt.Errorf("profile %d: %w", profile, err)}
	}
	return &out, nil
}

// IconURL returns the URL of a provider logo.
func (c *Client) IconURL(icon string) string {
	return c.base + "?" + url.Values{"action": {"sendLogo"}, "id": {icon}}.Encode()
}

func (c *Client) capTTL(limit time.Duration) time.Duration {
	if c.ttl < limit {
		return c.ttl
	}
	return limit
}

// objectData runs q and decodes the data member of the JSON object answer into v.
func (c *Client) objectData(ctx context.Context, q Query, lang string, ttl time.Duration, v any) error {
	body, err := c.Execute(ctx, q, lang, AcceptJSON, ttl)
	if err != nil {
		return err
	}
	var env envelope
	if err := decodeShape(body, '{', &env); err != nil {
		return &DecodeError{Action: q.Action, Err: err}
	}
	if len(env.Data) == 0 {
		return &DecodeError{Action: q.Action, Err: errors.New("missing data member")}
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return &DecodeError{Action: q.Action, Err: err}
	}
	return nil
}

// decodeShape decodes body into v after checking that it starts with open.
func decodeShape(body []byte, open byte, v any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != open {
		kind := "object"
		if open == '[' {
			kind = "array"
		}
		return fmt.Errorf("answer is not a JSON %s", kind)
	}
	return json.Unmarshal(trimmed, v)
}
