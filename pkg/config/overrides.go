package config

import (
	"fmt"

	"github.com/geteduroam/discogen/pkg/discovery"
	"github.com/geteduroam/discogen/pkg/models"
)

// Profile entry types.
const (
	ProfileCat      = "cat"
	ProfileLetsWifi = "letswifi"
	ProfileRedirect = "redirect"
)

// ExtraProvider is an institution published in addition to the catalog.
type ExtraProvider struct {
	ID       string            `yaml:"id"`
	Name     string            `yaml:"name"`
	Country  string            `yaml:"country"`
	Geo      []models.GeoPoint `yaml:"geo"`
	Profiles []ProfileConfig   `yaml:"profiles"`
}

// ProfileConfig is a statically configured profile entry. When Type is
// empty it is inferred from the endpoints that are set.
type ProfileConfig struct {
	Type                  string `yaml:"type"`
	ID                    string `yaml:"id"`
	Name                  string `yaml:"name"`
	Default               bool   `yaml:"default"`
	CatProfile            int    `yaml:"cat_profile"`
	EAPConfigEndpoint     string `yaml:"eapconfig_endpoint"`
	TokenEndpoint         string `yaml:"token_endpoint"`
	AuthorizationEndpoint string `yaml:"authorization_endpoint"`
	Redirect              string `yaml:"redirect"`
}

func (p ProfileConfig) kind() string {
	switch {
	case p.Type != "":
		return p.Type
	case p.TokenEndpoint != "" || p.AuthorizationEndpoint != "":
		return ProfileLetsWifi
	case p.Redirect != "":
		return ProfileRedirect
	default:
		return ProfileCat
	}
}

// Entry converts p into a discovery profile entry.
func (p ProfileConfig) Entry() (models.ProfileEntry, error) {
	if p.ID == "" {
		return nil, fmt.Errorf("profile id is required")
	}
	switch k := p.kind(); k {
	case ProfileCat:
		if p.EAPConfigEndpoint == "" {
			return nil, fmt.Errorf("profile %s: eapconfig_endpoint is required", p.ID)
		}
		return models.CatHosted{
			ID:                p.ID,
			CatProfile:        p.CatProfile,
			Name:              p.Name,
			EAPConfigEndpoint: p.EAPConfigEndpoint,
		}, nil
	case ProfileLetsWifi:
		if p.EAPConfigEndpoint == "" || p.TokenEndpoint == "" || p.AuthorizationEndpoint == "" {
			return nil, fmt.Errorf("profile %s: letswifi needs eapconfig, token and authorization endpoints", p.ID)
		}
		return models.LetsWifiRedirect{
			ID:                    p.ID,
			Name:                  p.Name,
			Default:               p.Default,
			EAPConfigEndpoint:     p.EAPConfigEndpoint,
			TokenEndpoint:         p.TokenEndpoint,
			AuthorizationEndpoint: p.AuthorizationEndpoint,
		}, nil
	case ProfileRedirect:
		if p.Redirect == "" {
			return nil, fmt.Errorf("profile %s: redirect is required", p.ID)
		}
		return models.PlainRedirect{ID: p.ID, Redirect: p.Redirect, Name: p.Name}, nil
	default:
		return nil, fmt.Errorf("profile %s: unknown type %q", p.ID, k)
	}
}

func entries(key string, profiles []ProfileConfig) ([]models.ProfileEntry, error) {
	out := make([]models.ProfileEntry, 0, len(profiles))
	for _, p := range profiles {
		e, err := p.Entry()
		if err != nil {
			return nil, &Error{Key: key, Err: err}
		}
		out = append(out, e)
	}
	return out, nil
}

func entryMap(key string, m map[int][]ProfileConfig) (map[int][]models.ProfileEntry, error) {
	out := make(map[int][]models.ProfileEntry, len(m))
	for id, profiles := range m {
		e, err := entries(fmt.Sprintf("%s.%d", key, id), profiles)
		if err != nil {
			return nil, err
		}
		out[id] = e
	}
	return out, nil
}

func set(ids []int) map[int]bool {
	m := make(map[int]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

// Overrides converts the static adjustments into their discovery form.
func (d DiscoveryConfig) Overrides() (discovery.Overrides, error) {
	o := discovery.Overrides{
		HiddenInstitutions: set(d.HiddenInstitutions),
		HiddenProfiles:     set(d.HiddenProfiles),
		Keywords:           d.Keywords,
	}

	for i, x := range d.ExtraProviders {
		key := fmt.Sprintf("discovery.extra_providers[%d]", i)
		if x.ID == "" || x.Name == "" || x.Country == "" {
			return discovery.Overrides{}, invalid(key, "id, name and country are required")
		}
		profiles, err := entries(key, x.Profiles)
		if err != nil {
			return discovery.Overrides{}, err
		}
		o.Extra = append(o.Extra, models.Instance{
			ID:       x.ID,
			Name:     x.Name,
			Country:  x.Country,
			Geo:      x.Geo,
			Profiles: profiles,
		})
	}

	var err error
	if o.Seeds, err = entryMap("discovery.profile_seeds", d.ProfileSeeds); err != nil {
		return discovery.Overrides{}, err
	}
	if o.Replacements, err = entryMap("discovery.profile_replacements", d.ProfileReplacements); err != nil {
		return discovery.Overrides{}, err
	}
	return o, nil
}
