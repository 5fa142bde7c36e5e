package catalog

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geteduroam/discogen/pkg/catalog/catalogtest"
	"github.com/geteduroam/discogen/pkg/catapi"
	"github.com/geteduroam/discogen/pkg/models"
)

func newFixture() *catalogtest.Catalog {
	cat := catalogtest.New()
	cat.Countries = []catapi.Country{{Federation: "NL", Display: "Netherlands"}, {Federation: "NO", Display: "Norway"}}
	cat.AddProvider(1, "NL", catalogtest.Str("Example University"), "Example University",
		catapi.RawGeo{Lat: "52.08951", Lon: "5.10791"},
		catapi.RawGeo{Lat: "unknown", Lon: "5"},
	)
	cat.AddProvider(2, "NO", nil, "Norsk Institutt")
	cat.AddProfile(1, 10, "Staff", catalogtest.AvailableDevice("w10", "Windows 10"))
	cat.AddProfile(1, 11, "")
	cat.Devices[11] = []catapi.Device{catalogtest.AvailableDevice("android_q", "Android")}
	return cat
}

func TestProvidersByCountryKnowCountry(t *testing.T) {
	cat := newFixture()
	g := NewGraph(cat)
	ctx := context.Background()

	providers, err := g.ProvidersByCountry(ctx, "NO", "en")
	require.NoError(t, err)
	require.Len(t, providers, 1)

	country, err := providers[0].Country(ctx)
	require.NoError(t, err)
	assert.Equal(t, "NO", country)
	assert.Equal(t, 0, cat.Calls("listAllIdentityProviders"))
}

func TestTitleFallsBackToCountryDisplay(t *testing.T) {
	g := NewGraph(newFixture())
	ctx := context.Background()

	providers, err := g.ProvidersByCountry(ctx, "NO", "en")
	require.NoError(t, err)
	title, err := providers[0].Title(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Norsk Institutt", title)

	// Without a known country there is nothing to fall back to.
	_, err = g.Provider(2, "en").Title(ctx)
	var missing *MissingEntityError
	assert.ErrorAs(t, err, &missing)
}

func TestProvidersForCountriesDefaultsToAll(t *testing.T) {
	cat := newFixture()
	cat.ByCountry["NO"] = append(cat.ByCountry["NO"], catapi.CountryProvider{ID: 1, Display: "Example University"})
	g := NewGraph(cat)

	providers, err := g.ProvidersForCountries(context.Background(), nil, "en")
	require.NoError(t, err)
	require.Len(t, providers, 2)
	assert.Equal(t, 1, providers[0].EntityID())
	assert.Equal(t, 2, providers[1].EntityID())
	assert.Equal(t, 1, cat.Calls("listAllCountries"))
}

func TestMemoizationIsScopedByLanguage(t *testing.T) {
	cat := newFixture()
	g := NewGraph(cat)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := g.Provider(1, "en").Title(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, cat.Calls("listAllIdentityProviders"))

	_, err := g.Provider(1, "nb").Title(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, cat.Calls("listAllIdentityProviders"))
}

func TestGeo(t *testing.T) {
	g := NewGraph(newFixture())
	ctx := context.Background()
	p := g.Provider(1, "en")

	geo, err := p.Geo(ctx)
	require.NoError(t, err)
	require.Len(t, geo, 1, "non-numeric points are dropped")

	rounded, err := p.RoundedGeo(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []models.GeoPoint{{Lat: 52.09, Lon: 5.108}}, rounded)

	// Rounding does not touch the cached data.
	geo, err = p.Geo(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 52.08951, geo[0].Lat, 1e-9)
}

func TestDistanceFrom(t *testing.T) {
	g := NewGraph(newFixture())
	ctx := context.Background()

	d, err := g.Provider(1, "en").DistanceFrom(ctx, models.GeoPoint{Lat: 52.08951, Lon: 5.10791})
	require.NoError(t, err)
	require.Len(t, d, 1)
	assert.InDelta(t, 0, d[0], 1e-6)

	d, err = g.Provider(2, "en").DistanceFrom(ctx, models.GeoPoint{Lat: 0, Lon: 0})
	require.NoError(t, err)
	assert.Equal(t, []float64{math.Inf(1)}, d)
}

func TestDistance(t *testing.T) {
	oslo := models.GeoPoint{Lat: 59.9139, Lon: 10.7522}
	utrecht := models.GeoPoint{Lat: 52.0907, Lon: 5.1214}
	assert.InDelta(t, 937, Distance(oslo, utrecht), 1)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 1.235, Round(1.2345, 3))
	assert.Equal(t, -1.235, Round(-1.2345, 3))
	assert.Equal(t, 5.0, Round(4.9996, 3))
	assert.Equal(t, 1.001, Round(1.0005, 3))
}

func TestIconURL(t *testing.T) {
	cat := newFixture()
	cat.Providers[0].Icon = "7"
	g := NewGraph(cat)
	ctx := context.Background()

	url, ok, err := g.Provider(1, "en").IconURL(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, catalogtest.DefaultBase+"?action=sendLogo&id=7", url)

	_, ok, err = g.Provider(2, "en").IconURL(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatches(t *testing.T) {
	g := NewGraph(newFixture())
	p := g.Provider(1, "en")
	ctx := context.Background()

	for search, want := range map[string]bool{
		"":                  true,
		"example":           true,
		"UNIVERSITY, exam":  true,
		"example   college": false,
		" ,, ":              true,
	} {
		got, err := p.Matches(ctx, search)
		require.NoError(t, err)
		assert.Equal(t, want, got, "search %q", search)
	}
}

func TestProfiles(t *testing.T) {
	cat := newFixture()
	g := NewGraph(cat)
	ctx := context.Background()

	profiles, err := g.Provider(1, "en").Profiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	name, err := profiles[0].Display(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Staff", name)

	name, err = profiles[1].Display(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Example University", name, "falls back to the provider title")

	_, err = g.Provider(1, "en").Profiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cat.Calls("listProfiles"))
}

func TestDevicesFallBackToListDevices(t *testing.T) {
	cat := newFixture()
	g := NewGraph(cat)
	ctx := context.Background()

	profiles, err := g.Provider(1, "en").Profiles(ctx)
	require.NoError(t, err)

	devices, err := profiles[0].Devices(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"w10", CertificateDeviceID}, deviceIDs(devices))
	assert.Equal(t, 0, cat.Calls("listDevices"))

	devices, err = profiles[1].Devices(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"android_q", CertificateDeviceID}, deviceIDs(devices))
	assert.Equal(t, 1, cat.Calls("listDevices"))
}

func deviceIDs(devices []Device) []string {
	ids := make([]string, len(devices))
	for i, d := range devices {
		ids[i] = d.ID()
	}
	return ids
}
