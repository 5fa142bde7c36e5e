package catalog

import (
	"context"
	"slices"
	"sync"

	"github.com/geteduroam/discogen/pkg/catapi"
)

// API is the part of the catalog client the graph needs.
// *catapi.Client implements it.
type API interface {
	Base() string
	ListAllCountries(ctx context.Context, lang string) ([]catapi.Country, error)
	ListAllIdentityProviders(ctx context.Context, lang string) ([]catapi.Provider, error)
	ListIdentityProviders(ctx context.Context, country, lang string) ([]catapi.CountryProvider, error)
	ListProfiles(ctx context.Context, idp int, lang string) ([]catapi.ProfileSummary, error)
	ProfileAttributes(ctx context.Context, profile int, lang string) (*catapi.ProfileAttributes, error)
	ListDevices(ctx context.Context, profile int, lang string) ([]catapi.Device, error)
	DownloadInstallerURL(ctx context.Context, device string, profile int) (string, error)
	DeviceInfo(ctx context.Context, device string, profile int, lang string) (string, error)
	EAPConfig(ctx context.Context, profile int, lang string) (*catapi.EAPConfig, error)
	IconURL(icon string) string
}

var _ API = (*catapi.Client)(nil)

type scope struct {
	base string
	lang string
}

type countryKey struct {
	scope
	country string
}

type providerKey struct {
	scope
	provider int
}

type profileKey struct {
	scope
	profile int
}

// countryListing keeps the by-country answer in catalog order.
type countryListing struct {
	order []int
	byID  map[int]catapi.CountryProvider
}

// Graph memoizes catalog entities for the lifetime of a run.
// Every slot is keyed by API base and language, so one graph can serve
// several languages without mixing their titles.
type Graph struct {
	api API

	mu           sync.Mutex
	allProviders map[scope]map[int]catapi.Provider
	byCountry    map[countryKey]*countryListing
	profiles     map[providerKey][]catapi.ProfileSummary
	attributes   map[profileKey]*catapi.ProfileAttributes
	devices      map[profileKey][]catapi.Device
}

// NewGraph returns an empty graph on top of api.
func NewGraph(api API) *Graph {
	return &Graph{
		api:          api,
		allProviders: make(map[scope]map[int]catapi.Provider),
		byCountry:    make(map[countryKey]*countryListing),
		profiles:     make(map[providerKey][]catapi.ProfileSummary),
		attributes:   make(map[profileKey]*catapi.ProfileAttributes),
		devices:      make(map[profileKey][]catapi.Device),
	}
}

// API returns the catalog client behind the graph.
func (g *Graph) API() API {
	return g.api
}

func (g *Graph) scope(lang string) scope {
	return scope{base: g.api.Base(), lang: lang}
}

// Provider returns a lazy handle for the provider id. Nothing is fetched
// until one of its methods needs catalog data.
func (g *Graph) Provider(id int, lang string) *Provider {
	return &Provider{g: g, id: id, lang: lang}
}

// AllProviders returns every provider of the catalog, ordered by entity ID.
func (g *Graph) AllProviders(ctx context.Context, lang string) ([]*Provider, error) {
	all, err := g.loadAllProviders(ctx, lang)
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]*Provider, 0, len(ids))
	for _, id := range ids {
		out = append(out, g.Provider(id, lang))
	}
	return out, nil
}

// ProvidersByCountry returns the providers of one federation in catalog order.
// The returned providers know their country without a further lookup.
func (g *Graph) ProvidersByCountry(ctx context.Context, country, lang string) ([]*Provider, error) {
	listing, err := g.loadByCountry(ctx, country, lang)
	if err != nil {
		return nil, err
	}
	out := make([]*Provider, 0, len(listing.order))
	for _, id := range listing.order {
		p := g.Provider(id, lang)
		p.country = country
		out = append(out, p)
	}
	return out, nil
}

// ProvidersForCountries concatenates ProvidersByCountry for each country,
// keeping the first occurrence of a provider listed by more than one.
// An empty country list selects every federation known to the catalog.
func (g *Graph) ProvidersForCountries(ctx context.Context, countries []string, lang string) ([]*Provider, error) {
	if len(countries) == 0 {
		all, err := g.Countries(ctx, lang)
		if err != nil {
			return nil, err
		}
		for _, c := range all {
			countries = append(countries, c.Federation)
		}
	}
	seen := make(map[int]bool)
	var out []*Provider
	for _, country := range countries {
		providers, err := g.ProvidersByCountry(ctx, country, lang)
		if err != nil {
			return nil, err
		}
		for _, p := range providers {
			if seen[p.id] {
				continue
			}
			seen[p.id] = true
			out = append(out, p)
		}
	}
	return out, nil
}

// Countries lists the federations of the catalog.
func (g *Graph) Countries(ctx context.Context, lang string) ([]catapi.Country, error) {
	return g.api.ListAllCountries(ctx, lang)
}

func (g *Graph) loadAllProviders(ctx context.Context, lang string) (map[int]catapi.Provider, error) {
	key := g.scope(lang)
	g.mu.Lock()
	all, ok := g.allProviders[key]
	g.mu.Unlock()
	if ok {
		return all, nil
	}

	list, err := g.api.ListAllIdentityProviders(ctx, lang)
	if err != nil {
		return nil, err
	}
	all = make(map[int]catapi.Provider, len(list))
	for _, p := range list {
		all[p.ID()] = p
	}

	g.mu.Lock()
	g.allProviders[key] = all
	g.mu.Unlock()
	return all, nil
}

func (g *Graph) loadByCountry(ctx context.Context, country, lang string) (*countryListing, error) {
	key := countryKey{scope: g.scope(lang), country: country}
	g.mu.Lock()
	listing, ok := g.byCountry[key]
	g.mu.Unlock()
	if ok {
		return listing, nil
	}

	list, err := g.api.ListIdentityProviders(ctx, country, lang)
	if err != nil {
		return nil, err
	}
	listing = &countryListing{byID: make(map[int]catapi.CountryProvider, len(list))}
	for _, p := range list {
		id := int(p.ID)
		if _, dup := listing.byID[id]; !dup {
			listing.order = append(listing.order, id)
		}
		listing.byID[id] = p
	}

	g.mu.Lock()
	g.byCountry[key] = listing
	g.mu.Unlock()
	return listing, nil
}

func (g *Graph) loadProfiles(ctx context.Context, provider int, lang string) ([]catapi.ProfileSummary, error) {
	key := providerKey{scope: g.scope(lang), provider: provider}
	g.mu.Lock()
	list, ok := g.profiles[key]
	g.mu.Unlock()
	if ok {
		return list, nil
	}

	list, err := g.api.ListProfiles(ctx, provider, lang)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []catapi.ProfileSummary{}
	}

	g.mu.Lock()
	g.profiles[key] = list
	g.mu.Unlock()
	return list, nil
}

func (g *Graph) loadAttributes(ctx context.Context, profile int, lang string) (*catapi.ProfileAttributes, error) {
	key := profileKey{scope: g.scope(lang), profile: profile}
	g.mu.Lock()
	attrs, ok := g.attributes[key]
	g.mu.Unlock()
	if ok {
		return attrs, nil
	}

	attrs, err := g.api.ProfileAttributes(ctx, profile, lang)
	if err != nil {
		return nil, err
	}
	if attrs == nil {
		attrs = &catapi.ProfileAttributes{}
	}

	g.mu.Lock()
	g.attributes[key] = attrs
	g.mu.Unlock()
	return attrs, nil
}

// loadDevices prefers the device list of profileAttributes and falls back to
// listDevices when that list is empty.
func (g *Graph) loadDevices(ctx context.Context, profile int, lang string) ([]catapi.Device, error) {
	key := profileKey{scope: g.scope(lang), profile: profile}
	g.mu.Lock()
	devices, ok := g.devices[key]
	g.mu.Unlock()
	if ok {
		return devices, nil
	}

	attrs, err := g.loadAttributes(ctx, profile, lang)
	if err != nil {
		return nil, err
	}
	devices = attrs.Devices
	if len(devices) == 0 {
		if devices, err = g.api.ListDevices(ctx, profile, lang); err != nil {
			return nil, err
		}
	}
	if devices == nil {
		devices = []catapi.Device{}
	}

	g.mu.Lock()
	g.devices[key] = devices
	g.mu.Unlock()
	return devices, nil
}
