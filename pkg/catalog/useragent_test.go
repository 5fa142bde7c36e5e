package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/geteduroam/discogen/pkg/catalog/catalogtest"
	"github.com/geteduroam/discogen/pkg/catapi"
)

func linkDevice(id string, status int, redirect string) *LinkDevice {
	return &LinkDevice{raw: catapi.Device{
		ID:       catapi.Scalar(id),
		Display:  catalogtest.Str(id),
		Status:   catalogtest.Status(status),
		Redirect: catapi.Scalar(redirect),
	}}
}

func TestGuessDeviceID(t *testing.T) {
	tests := []struct {
		ua   string
		want string
	}{
		{"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36", "w10"},
		{"Mozilla/5.0 (Windows NT 6.1; WOW64)", "w7"},
		{"Mozilla/5.0 (iPhone; CPU iPhone OS 14_2 like Mac OS X)", "mobileconfig12"},
		{"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_14_6)", "apple_mojave"},
		{"Mozilla/5.0 (X11; Linux x86_64)", "linux"},
		{"Mozilla/5.0 (Linux; Android 11; Pixel 5)", "android_q"},
		{"Mozilla/5.0 (X11; CrOS x86_64 13421.89.0)", "chromeos"},
		{"curl/8.0", FallbackDeviceID},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, GuessDeviceID(tt.ua))
		})
	}
}

func TestGuessDeviceIDLimitsCandidates(t *testing.T) {
	ua := "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"
	assert.Equal(t, FallbackDeviceID, GuessDeviceID(ua, "w7", "linux"))
	assert.Equal(t, "w10", GuessDeviceID(ua, "linux", "w10"))
}

func TestGroupOf(t *testing.T) {
	assert.Equal(t, GroupWindows, GroupOf("w10"))
	assert.Equal(t, GroupWindows, GroupOf("vista"))
	assert.Equal(t, GroupApple, GroupOf("mobileconfig12"))
	assert.Equal(t, GroupApple, GroupOf("apple_catalina"))
	assert.Equal(t, GroupAndroid, GroupOf("android_pie"))
	assert.Equal(t, GroupOther, GroupOf("linux"))
	assert.Equal(t, GroupOther, GroupOf(CertificateDeviceID))
}

func TestGroupDevices(t *testing.T) {
	devices := []Device{
		linkDevice("android_q", 0, ""),
		linkDevice("w10", 0, ""),
		linkDevice("w7", 1, ""),
		linkDevice("apple_mojave", 1, "https://example.org/"),
		&CertificateDevice{},
	}

	groups := GroupDevices(devices)
	var names []string
	for _, g := range groups {
		names = append(names, g.Name)
	}
	assert.Equal(t, []string{GroupWindows, GroupApple, GroupAndroid, GroupOther}, names)
	assert.Len(t, groups[0].Devices, 1, "unavailable w7 is left out")
}
