package discovery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geteduroam/discogen/pkg/catalog"
	"github.com/geteduroam/discogen/pkg/catalog/catalogtest"
	"github.com/geteduroam/discogen/pkg/models"
)

func TestV1Document(t *testing.T) {
	cat := newTestCatalog()
	doc, err := newTestV1(cat, testOverrides()).Document(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, 1, doc.Version)
	assert.Equal(t, 5, doc.Seq)
	require.Len(t, doc.Instances, 3)
	assert.Equal(t, "NORDUnet", doc.Instances[0].Name)
	assert.Equal(t, "2Bravo Institute", doc.Instances[2].Name)

	utrecht := doc.Instances[1]
	assert.Equal(t, "Utrecht University", utrecht.Name)
	assert.Equal(t, "NL", utrecht.Country)
	assert.Equal(t, 1, utrecht.CatIDP)
	assert.Equal(t, []models.GeoPoint{{Lat: 52.09, Lon: 5.108}}, utrecht.Geo)
	assert.Equal(t, []models.ProfileEntry{
		models.CatHosted{
			ID:                "cat_10",
			CatProfile:        10,
			Name:              "Staff",
			EAPConfigEndpoint: testEdge + "?action=downloadInstaller&device=eap-config&profile=10",
		},
		models.LetsWifiRedirect{
			ID:                    "letswifi_idp_example_cat_11",
			Name:                  "Students",
			Default:               true,
			EAPConfigEndpoint:     "https://idp.example/api/eap-config/",
			TokenEndpoint:         "https://idp.example/oauth/token/",
			AuthorizationEndpoint: "https://idp.example/oauth/authorize/",
		},
		models.PlainRedirect{
			ID:       "cat_12",
			Redirect: "https://cat.example.org/?idp=1&profile=12",
			Name:     "Guests",
		},
	}, utrecht.Profiles)

	bravo := doc.Instances[2]
	assert.Equal(t, []models.ProfileEntry{
		models.PlainRedirect{ID: "cat_20", Redirect: "https://www.example.org/wifi", Name: "2Bravo Institute"},
	}, bravo.Profiles)
}

func TestBuildWithoutEdgeKeepsCatalogLink(t *testing.T) {
	cat := newTestCatalog()
	builder := NewProfileBuilder(cat.Base(), "", Overrides{})
	profiles, err := builder.Build(context.Background(), catalog.NewGraph(cat).Provider(1, ""))
	require.NoError(t, err)
	require.NotEmpty(t, profiles)
	assert.Equal(t, cat.Base()+"?action=downloadInstaller&device=eap-config&profile=10",
		profiles[0].(models.CatHosted).EAPConfigEndpoint)
}

func TestBuildSeedsComeFirstAndTakeDefault(t *testing.T) {
	cat := newTestCatalog()
	seed := models.LetsWifiRedirect{ID: "seeded", Name: "geteduroam", Default: true}
	overrides := Overrides{
		HiddenProfiles: map[int]bool{13: true},
		Seeds:          map[int][]models.ProfileEntry{1: {seed}},
	}
	builder := NewProfileBuilder(cat.Base(), "", overrides)

	profiles, err := builder.Build(context.Background(), catalog.NewGraph(cat).Provider(1, ""))
	require.NoError(t, err)
	require.Len(t, profiles, 4)
	assert.Equal(t, seed, profiles[0])
	lw, ok := profiles[2].(models.LetsWifiRedirect)
	require.True(t, ok)
	assert.False(t, lw.Default, "the seed already is the default")
}

func TestBuildOnlyFirstLetsWifiIsDefault(t *testing.T) {
	cat := newTestCatalog()
	cat.AddProfile(1, 15, "Visitors", catalogtest.RedirectDevice("https://visit.example/#letswifi"))
	builder := NewProfileBuilder(cat.Base(), "", Overrides{})

	profiles, err := builder.Build(context.Background(), catalog.NewGraph(cat).Provider(1, ""))
	require.NoError(t, err)
	var defaults []bool
	for _, p := range profiles {
		if lw, ok := p.(models.LetsWifiRedirect); ok {
			defaults = append(defaults, lw.Default)
		}
	}
	assert.Equal(t, []bool{true, false}, defaults)
}

func TestBuildReplacement(t *testing.T) {
	cat := newTestCatalog()
	repl := []models.ProfileEntry{models.PlainRedirect{ID: "custom", Redirect: "https://example.org/", Name: "Custom"}}
	builder := NewProfileBuilder(cat.Base(), "", Overrides{Replacements: map[int][]models.ProfileEntry{1: repl}})

	profiles, err := builder.Build(context.Background(), catalog.NewGraph(cat).Provider(1, ""))
	require.NoError(t, err)
	assert.Equal(t, repl, profiles)
	assert.Equal(t, 0, cat.Calls("listProfiles"))
}

func TestBuildIllegalRedirect(t *testing.T) {
	cat := newTestCatalog()
	cat.AddProfile(4, 40, "Broken", catalogtest.RedirectDevice("https://bro ken.example/\x7f"))
	builder := NewProfileBuilder(cat.Base(), "", Overrides{})

	_, err := builder.Build(context.Background(), catalog.NewGraph(cat).Provider(4, ""))
	var ire *IllegalRedirectError
	assert.ErrorAs(t, err, &ire)
}

func TestDownloadPage(t *testing.T) {
	page, err := downloadPage("https://cat.eduroam.org/user/API.php")
	require.NoError(t, err)
	assert.Equal(t, "https://cat.eduroam.org/", page)

	_, err = downloadPage("https://cat.eduroam.org")
	assert.Error(t, err)
}

func TestV2Files(t *testing.T) {
	cat := newTestCatalog()
	overrides := testOverrides()
	builder := NewProfileBuilder(cat.Base(), "", overrides)
	v2 := NewV2(catalog.NewGraph(cat), builder, overrides, []string{"NL", "NO"}, []string{"en", "nb"})

	files, err := v2.Generate(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, files, 8)

	assert.Equal(t, "v2/en/discovery-3.json", files[0].Name(3))
	index := files[0].Doc.(models.DocumentV2)
	assert.Equal(t, "en", index.Lang)
	assert.Equal(t, []models.InstanceV2{
		{Name: "NORDUnet", Country: "DK", Keywords: []string{}, Provider: "extra_nordunet"},
		{Name: "Utrecht University", Country: "NL", Keywords: []string{"UU", "Utrecht"}, Provider: "cat_1"},
		{Name: "2Bravo Institute", Country: "NL", Keywords: []string{}, Provider: "cat_2"},
	}, index.Instances)

	var names []string
	for _, f := range files[1:4] {
		names = append(names, f.Name(3))
	}
	assert.Equal(t, []string{
		"v2/en/provider-extra_nordunet-3.json",
		"v2/en/provider-cat_1-3.json",
		"v2/en/provider-cat_2-3.json",
	}, names)
	provider := files[2].Doc.(models.ProviderDocument)
	assert.Equal(t, "cat_1", provider.Provider)
	assert.Len(t, provider.Profiles, 3)

	assert.Equal(t, "v2/nb/discovery-3.json", files[4].Name(3))
}
