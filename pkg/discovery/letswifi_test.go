package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geteduroam/discogen/pkg/models"
)

func TestRedirectEntryLetsWifi(t *testing.T) {
	entry, err := redirectEntry("https://idp.example/#letswifi", 12, "Students", true)
	require.NoError(t, err)
	assert.Equal(t, models.LetsWifiRedirect{
		ID:                    "letswifi_idp_example_cat_12",
		Name:                  "Students",
		Default:               true,
		EAPConfigEndpoint:     "https://idp.example/api/eap-config/",
		TokenEndpoint:         "https://idp.example/oauth/token/",
		AuthorizationEndpoint: "https://idp.example/oauth/authorize/",
	}, entry)
}

func TestRedirectEntryLetsWifiRealm(t *testing.T) {
	entry, err := redirectEntry("https://wifi.example.org?realm=uni.example.org#foo#letswifi", 7, "Staff", false)
	require.NoError(t, err)
	lw, ok := entry.(models.LetsWifiRedirect)
	require.True(t, ok)
	assert.Equal(t, "letswifi_uni_example_org_cat_7", lw.ID)
	assert.False(t, lw.Default)
	assert.Equal(t, "https://wifi.example.org/oauth/token/?realm=uni.example.org", lw.TokenEndpoint)
}

func TestRedirectEntryPlain(t *testing.T) {
	for _, target := range []string{
		"https://idp.example:8443/#letswifi",
		"http://idp.example/#letswifi",
		"https://user:pw@idp.example/#letswifi",
		"https://idp.example/enroll/#letswifi",
		"https://idp.example/#letswifi-beta",
		"https://idp.example/",
	} {
		t.Run(target, func(t *testing.T) {
			entry, err := redirectEntry(target, 3, "Guests", true)
			require.NoError(t, err)
			assert.Equal(t, models.PlainRedirect{ID: "cat_3", Redirect: target, Name: "Guests"}, entry)
		})
	}
}

func TestRedirectEntryIllegal(t *testing.T) {
	_, err := redirectEntry("https://exa mple.org/\x7f", 3, "Guests", true)
	var ire *IllegalRedirectError
	require.ErrorAs(t, err, &ire)
	assert.Equal(t, 3, ire.Profile)
}
