package catalog

import (
	"context"
	"strconv"

	"github.com/geteduroam/discogen/pkg/catapi"
)

// Profile is a way of connecting offered by a provider.
type Profile struct {
	g        *Graph
	provider *Provider
	id       int
	summary  catapi.ProfileSummary
}

// Support holds the help desk contacts of a profile.
type Support struct {
	Email string
	Phone string
	URL   string
}

// Any reports whether at least one contact is set.
func (s Support) Any() bool {
	return s.Email != "" || s.Phone != "" || s.URL != ""
}

// ID returns the catalog profile ID.
func (p *Profile) ID() int {
	return p.id
}

// Provider returns the provider that offers the profile.
func (p *Profile) Provider() *Provider {
	return p.provider
}

// Display returns the profile name, or the provider title if the profile has none.
func (p *Profile) Display(ctx context.Context) (string, error) {
	if p.summary.Display != "" {
		return p.summary.Display, nil
	}
	return p.provider.Title(ctx)
}

func (p *Profile) attributes(ctx context.Context) (*catapi.ProfileAttributes, error) {
	return p.g.loadAttributes(ctx, p.id, p.provider.lang)
}

// Support returns the help desk contacts.
func (p *Profile) Support(ctx context.Context) (Support, error) {
	attrs, err := p.attributes(ctx)
	if err != nil {
		return Support{}, err
	}
	return Support{Email: attrs.LocalEmail, Phone: attrs.LocalPhone, URL: attrs.LocalURL}, nil
}

// HasSupport reports whether the profile lists any help desk contact.
func (p *Profile) HasSupport(ctx context.Context) (bool, error) {
	s, err := p.Support(ctx)
	return s.Any(), err
}

// Description returns the free text description of the profile.
func (p *Profile) Description(ctx context.Context) (string, error) {
	attrs, err := p.attributes(ctx)
	if err != nil {
		return "", err
	}
	return attrs.Description, nil
}

// SilverBullet reports whether the profile is a managed IdP profile.
func (p *Profile) SilverBullet(ctx context.Context) (bool, error) {
	attrs, err := p.attributes(ctx)
	if err != nil {
		return false, err
	}
	return attrs.SilverBullet.Truthy(), nil
}

func (p *Profile) rawDevices(ctx context.Context) ([]catapi.Device, error) {
	return p.g.loadDevices(ctx, p.id, p.provider.lang)
}

// Devices returns the devices that are available or redirect, and are not
// hidden, in catalog order. A CertificateDevice is appended when at least
// one device of the profile is served by the catalog itself.
func (p *Profile) Devices(ctx context.Context) ([]Device, error) {
	raw, err := p.rawDevices(ctx)
	if err != nil {
		return nil, err
	}
	var out []Device
	addCertificate := false
	for _, d := range raw {
		ld := &LinkDevice{profile: p, raw: d}
		if (ld.IsRedirect() || ld.Status() == StatusAvailable) && !d.Options.Hidden.Truthy() {
			out = append(out, ld)
		}
		if !ld.IsRedirect() {
			addCertificate = true
		}
	}
	if addCertificate {
		out = append(out, &CertificateDevice{profile: p})
	}
	return out, nil
}

// LookupDevice returns the device with the given id, if the profile offers it.
func (p *Profile) LookupDevice(ctx context.Context, id string) (Device, bool, error) {
	devices, err := p.Devices(ctx)
	if err != nil {
		return nil, false, err
	}
	for _, d := range devices {
		if d.ID() == id {
			return d, true, nil
		}
	}
	return nil, false, nil
}

// Device is LookupDevice that reports a missing device as a *MissingEntityError.
func (p *Profile) Device(ctx context.Context, id string) (Device, error) {
	d, ok, err := p.LookupDevice(ctx, id)
	if err != nil || ok {
		return d, err
	}
	display, err := p.Display(ctx)
	if err != nil {
		display = "profile " + strconv.Itoa(p.id)
	}
	return nil, &MissingEntityError{Kind: "device", ID: id, Owner: "Profile " + display}
}

// singleRedirect returns the redirect of a profile whose only raw device has
// no display name and carries a redirect.
func (p *Profile) singleRedirect(ctx context.Context) (string, bool, error) {
	raw, err := p.rawDevices(ctx)
	if err != nil {
		return "", false, err
	}
	if len(raw) != 1 {
		return "", false, nil
	}
	d := raw[0]
	if (d.Display != nil && *d.Display != "") || !d.Redirect.Truthy() {
		return "", false, nil
	}
	return d.Redirect.String(), true, nil
}

// profileRedirects returns the redirects if every device is a profile-level
// redirect. ok is true for a profile without devices.
func (p *Profile) profileRedirects(ctx context.Context) ([]string, bool, error) {
	devices, err := p.Devices(ctx)
	if err != nil {
		return nil, false, err
	}
	var urls []string
	for _, d := range devices {
		ld, isLink := d.(*LinkDevice)
		if !isLink || !ld.IsProfileRedirect() {
			return nil, false, nil
		}
		urls = append(urls, ld.Redirect())
	}
	return urls, true, nil
}

// IsRedirect reports whether the whole profile is a redirect to another site.
func (p *Profile) IsRedirect(ctx context.Context) (bool, error) {
	if _, ok, err := p.singleRedirect(ctx); err != nil || ok {
		return ok, err
	}
	_, ok, err := p.profileRedirects(ctx)
	return ok, err
}

// RedirectURL returns the target of a redirect profile. ok is false when the
// profile is not a redirect or no target is known.
func (p *Profile) RedirectURL(ctx context.Context) (string, bool, error) {
	if url, ok, err := p.singleRedirect(ctx); err != nil || ok {
		return url, ok, err
	}
	urls, ok, err := p.profileRedirects(ctx)
	if err != nil || !ok || len(urls) == 0 {
		return "", false, err
	}
	return urls[0], true, nil
}
