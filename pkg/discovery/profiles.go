package discovery

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/geteduroam/discogen/pkg/catalog"
	"github.com/geteduroam/discogen/pkg/logging"
	"github.com/geteduroam/discogen/pkg/models"
)

// EAPConfigDeviceID is the catalog device that serves the eap-config document.
const EAPConfigDeviceID = "eap-config"

// Overrides are the static adjustments applied to catalog data.
type Overrides struct {
	HiddenInstitutions map[int]bool
	HiddenProfiles     map[int]bool
	// Extra institutions are published as they are, in addition to the catalog.
	Extra []models.Instance
	// Seeds are put before the catalog profiles of a provider.
	Seeds map[int][]models.ProfileEntry
	// Replacements are published instead of the catalog profiles of a provider.
	Replacements map[int][]models.ProfileEntry
	Keywords     map[int][]string
}

// ProfileBuilder turns catalog profiles into discovery profile entries.
type ProfileBuilder struct {
	base      string
	edge      string
	overrides Overrides
}

// NewProfileBuilder returns a builder for profiles of the catalog at base.
// When edge is set, eap-config links are rewritten from base to edge.
func NewProfileBuilder(base, edge string, overrides Overrides) *ProfileBuilder {
	return &ProfileBuilder{base: base, edge: edge, overrides: overrides}
}

// Build returns the profile entries of a provider: its replacement if one is
// configured, otherwise its seeds followed by the visible catalog profiles.
func (b *ProfileBuilder) Build(ctx context.Context, provider *catalog.Provider) ([]models.ProfileEntry, error) {
	id := provider.EntityID()
	if repl, ok := b.overrides.Replacements[id]; ok {
		return append([]models.ProfileEntry(nil), repl...), nil
	}

	entries := append([]models.ProfileEntry(nil), b.overrides.Seeds[id]...)
	letswifi := 0
	for _, e := range entries {
		if _, ok := e.(models.LetsWifiRedirect); ok {
			letswifi++
		}
	}

	log := logging.FromContext(ctx).With(zap.Int("provider", id))
	profiles, err := provider.Profiles(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range profiles {
		if b.overrides.HiddenProfiles[p.ID()] {
			log.Debug("skipping hidden profile", zap.Int("profile", p.ID()))
			continue
		}
		sb, err := p.SilverBullet(ctx)
		if err != nil {
			return nil, err
		}
		if sb {
			log.Debug("skipping silver bullet profile", zap.Int("profile", p.ID()))
			continue
		}

		entry, err := b.entry(ctx, p, letswifi == 0)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			log.Debug("skipping redirect profile without target", zap.Int("profile", p.ID()))
			continue
		}
		if _, ok := entry.(models.LetsWifiRedirect); ok {
			letswifi++
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// entry returns nil for a redirect profile that has no target.
func (b *ProfileBuilder) entry(ctx context.Context, p *catalog.Profile, firstLetsWifi bool) (models.ProfileEntry, error) {
	name, err := p.Display(ctx)
	if err != nil {
		return nil, err
	}
	redirect, err := p.IsRedirect(ctx)
	if err != nil {
		return nil, err
	}
	if redirect {
		target, ok, err := p.RedirectURL(ctx)
		if err != nil || !ok {
			return nil, err
		}
		return redirectEntry(target, p.ID(), name, firstLetsWifi)
	}
	return b.catEntry(ctx, p, name)
}

// catEntry points at the eap-config of the profile. Without a usable
// eap-config device the user is sent to the catalog download page instead.
func (b *ProfileBuilder) catEntry(ctx context.Context, p *catalog.Profile, name string) (models.ProfileEntry, error) {
	device, ok, err := p.LookupDevice(ctx, EAPConfigDeviceID)
	if err != nil {
		return nil, err
	}
	if !ok || device.IsRedirect() {
		page, err := downloadPage(b.base)
		if err != nil {
			return nil, err
		}
		q := url.Values{
			"idp":     {strconv.Itoa(p.Provider().EntityID())},
			"profile": {strconv.Itoa(p.ID())},
		}
		return models.PlainRedirect{
			ID:       catID(p.ID()),
			Redirect: page + "?" + q.Encode(),
			Name:     name,
		}, nil
	}

	link, err := device.DownloadLink(ctx)
	if err != nil {
		return nil, err
	}
	if b.edge != "" {
		link = strings.ReplaceAll(link, b.base, b.edge)
	}
	return models.CatHosted{
		ID:                catID(p.ID()),
		CatProfile:        p.ID(),
		Name:              name,
		EAPConfigEndpoint: link,
	}, nil
}

// downloadPage returns the first three slash-terminated segments of base,
// which is the catalog web root, e.g. "https://cat.eduroam.org/".
func downloadPage(base string) (string, error) {
	end := 0
	for i := 0; i < 3; i++ {
		j := strings.IndexByte(base[end:], '/')
		if j < 0 {
			return "", fmt.Errorf("catalog base %q is not a valid URL", base)
		}
		end += j + 1
	}
	return base[:end], nil
}
