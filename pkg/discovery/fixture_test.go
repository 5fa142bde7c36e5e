package discovery

import (
	"github.com/geteduroam/discogen/pkg/catalog"
	"github.com/geteduroam/discogen/pkg/catalog/catalogtest"
	"github.com/geteduroam/discogen/pkg/catapi"
	"github.com/geteduroam/discogen/pkg/models"
)

const testEdge = "https://edge.example.net/catnip"

func newTestCatalog() *catalogtest.Catalog {
	cat := catalogtest.New()
	cat.AddProvider(1, "NL", catalogtest.Str("Utrecht University"), "Utrecht University",
		catapi.RawGeo{Lat: "52.08951", Lon: "5.10791"})
	cat.AddProfile(1, 10, "Staff",
		catalogtest.AvailableDevice("eap-config", "EAP config"),
		catalogtest.AvailableDevice("w10", "Windows 10"))
	cat.AddProfile(1, 11, "Students", catalogtest.RedirectDevice("https://idp.example/#letswifi"))
	cat.AddProfile(1, 12, "Guests", catalogtest.AvailableDevice("w10", "Windows 10"))
	cat.AddProfile(1, 13, "Test", catalogtest.AvailableDevice("eap-config", "EAP config"))
	cat.AddProfile(1, 14, "Managed", catalogtest.AvailableDevice("eap-config", "EAP config"))
	cat.Attributes[14].SilverBullet = "1"

	cat.AddProvider(2, "NL", catalogtest.Str("2Bravo Institute"), "2Bravo Institute")
	cat.AddProfile(2, 20, "", catalogtest.RedirectDevice("https://www.example.org/wifi"))

	cat.AddProvider(3, "NO", catalogtest.Str("Hidden Hogskole"), "Hidden Hogskole")
	cat.AddProfile(3, 30, "Staff", catalogtest.AvailableDevice("eap-config", "EAP config"))

	cat.AddProvider(4, "NO", catalogtest.Str("Empty College"), "Empty College")
	return cat
}

func testOverrides() Overrides {
	return Overrides{
		HiddenInstitutions: map[int]bool{3: true},
		HiddenProfiles:     map[int]bool{13: true},
		Extra: []models.Instance{{
			ID:      "extra_nordunet",
			Name:    "NORDUnet",
			Country: "DK",
			Profiles: []models.ProfileEntry{models.LetsWifiRedirect{
				ID:                    "nordu_geteduroam_no",
				Name:                  "geteduroam",
				Default:               true,
				EAPConfigEndpoint:     "https://demo.example.no/generate.php",
				TokenEndpoint:         "https://demo.example.no/token.php",
				AuthorizationEndpoint: "https://demo.example.no/authorize.php",
			}},
		}},
		Keywords: map[int][]string{1: {"UU", "Utrecht"}},
	}
}

func newTestV1(cat *catalogtest.Catalog, overrides Overrides) *V1 {
	builder := NewProfileBuilder(cat.Base(), testEdge, overrides)
	return NewV1(catalog.NewGraph(cat), builder, overrides, []string{"NL", "NO"}, "")
}
