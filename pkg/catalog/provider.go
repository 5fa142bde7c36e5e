package catalog

import (
	"context"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/geteduroam/discogen/pkg/catapi"
	"github.com/geteduroam/discogen/pkg/models"
)

// Provider is an institution in the catalog.
type Provider struct {
	g       *Graph
	id      int
	lang    string
	country string
}

// EntityID returns the catalog entity ID.
func (p *Provider) EntityID() int {
	return p.id
}

// Lang returns the language the provider is resolved in.
func (p *Provider) Lang() string {
	return p.lang
}

func (p *Provider) raw(ctx context.Context) (catapi.Provider, bool, error) {
	all, err := p.g.loadAllProviders(ctx, p.lang)
	if err != nil {
		return catapi.Provider{}, false, err
	}
	raw, ok := all[p.id]
	return raw, ok, nil
}

func (p *Provider) mustRaw(ctx context.Context) (catapi.Provider, error) {
	raw, ok, err := p.raw(ctx)
	if err != nil {
		return raw, err
	}
	if !ok {
		return raw, &MissingEntityError{Kind: "provider", ID: strconv.Itoa(p.id)}
	}
	return raw, nil
}

// Country returns the two letter federation code.
func (p *Provider) Country(ctx context.Context) (string, error) {
	if p.country != "" {
		return p.country, nil
	}
	raw, err := p.mustRaw(ctx)
	if err != nil {
		return "", err
	}
	p.country = raw.Country
	return p.country, nil
}

// Title returns the display name. When the full listing has no title, the
// display name of the by-country listing is used.
func (p *Provider) Title(ctx context.Context) (string, error) {
	raw, ok, err := p.raw(ctx)
	if err != nil {
		return "", err
	}
	if ok && raw.Title != nil {
		return *raw.Title, nil
	}
	if p.country != "" {
		listing, err := p.g.loadByCountry(ctx, p.country, p.lang)
		if err != nil {
			return "", err
		}
		if cp, ok := listing.byID[p.id]; ok {
			return cp.Display, nil
		}
	}
	return "", &MissingEntityError{Kind: "provider", ID: strconv.Itoa(p.id)}
}

// Geo returns the locations of the provider. Points that are not numeric are left out.
// A provider that is missing from the full listing has no locations.
func (p *Provider) Geo(ctx context.Context) ([]models.GeoPoint, error) {
	raw, _, err := p.raw(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.GeoPoint, 0, len(raw.Geo))
	for _, g := range raw.Geo {
		lat, ok1 := g.Lat.Float()
		lon, ok2 := g.Lon.Float()
		if !ok1 || !ok2 {
			continue
		}
		out = append(out, models.GeoPoint{Lat: lat, Lon: lon})
	}
	return out, nil
}

// RoundedGeo returns Geo with every coordinate rounded to digits decimals.
func (p *Provider) RoundedGeo(ctx context.Context, digits int) ([]models.GeoPoint, error) {
	geo, err := p.Geo(ctx)
	if err != nil {
		return nil, err
	}
	for i := range geo {
		geo[i].Lat = Round(geo[i].Lat, digits)
		geo[i].Lon = Round(geo[i].Lon, digits)
	}
	return geo, nil
}

// DistanceFrom returns the distance in kilometers from point to each location
// of the provider. A provider without locations returns a single +Inf.
func (p *Provider) DistanceFrom(ctx context.Context, point models.GeoPoint) ([]float64, error) {
	geo, err := p.Geo(ctx)
	if err != nil {
		return nil, err
	}
	if len(geo) == 0 {
		return []float64{math.Inf(1)}, nil
	}
	out := make([]float64, len(geo))
	for i, g := range geo {
		out[i] = Distance(point, g)
	}
	return out, nil
}

// NearestDistance is the smallest value of DistanceFrom.
func (p *Provider) NearestDistance(ctx context.Context, point models.GeoPoint) (float64, error) {
	distances, err := p.DistanceFrom(ctx, point)
	if err != nil {
		return 0, err
	}
	nearest := math.Inf(1)
	for _, d := range distances {
		nearest = math.Min(nearest, d)
	}
	return nearest, nil
}

// IconURL returns the logo URL, if the provider has a logo.
func (p *Provider) IconURL(ctx context.Context) (string, bool, error) {
	raw, ok, err := p.raw(ctx)
	if err != nil || !ok || raw.Icon == "" {
		return "", false, err
	}
	return p.g.api.IconURL(raw.Icon.String()), true, nil
}

// Profiles returns the profiles of the provider in catalog order.
func (p *Provider) Profiles(ctx context.Context) ([]*Profile, error) {
	list, err := p.g.loadProfiles(ctx, p.id, p.lang)
	if err != nil {
		return nil, err
	}
	out := make([]*Profile, 0, len(list))
	for _, summary := range list {
		out = append(out, &Profile{
			g:        p.g,
			provider: p,
			id:       int(summary.ID),
			summary:  summary,
		})
	}
	return out, nil
}

// Matches reports whether every keyword of search occurs in the lower-cased title.
// Keywords are separated by whitespace or commas; an empty search matches everything.
func (p *Provider) Matches(ctx context.Context, search string) (bool, error) {
	keywords := strings.FieldsFunc(strings.ToLower(search), func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	if len(keywords) == 0 {
		return true, nil
	}
	title, err := p.Title(ctx)
	if err != nil {
		return false, err
	}
	title = strings.ToLower(title)
	for _, kw := range keywords {
		if !strings.Contains(title, kw) {
			return false, nil
		}
	}
	return true, nil
}
