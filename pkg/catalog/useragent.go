package catalog

import "regexp"

// FallbackDeviceID is returned by GuessDeviceID when no pattern matches.
const FallbackDeviceID = "0"

type agentRule struct {
	id       string
	patterns []*regexp.Regexp
	// exclude rejects a match of patterns.
	exclude *regexp.Regexp
}

func rule(id string, patterns ...string) agentRule {
	r := agentRule{id: id}
	for _, p := range patterns {
		r.patterns = append(r.patterns, regexp.MustCompile(p))
	}
	return r
}

func (r agentRule) match(ua string) bool {
	for _, p := range r.patterns {
		if p.MatchString(ua) {
			return r.exclude == nil || !r.exclude.MatchString(ua)
		}
	}
	return false
}

// userAgents maps catalog device ids to user agent patterns, in the order
// they are tried.
var userAgents = []agentRule{
	rule("vista", `Windows NT 6[._]0`),
	rule("w7", `Windows NT 6[._]1`),
	rule("w8", `Windows NT 6[._][23]`),
	rule("w10", `Windows NT 10[._]`, `Windows NT 1[1-9]`, `Windows NT [2-9][0-9]`),
	rule("mobileconfig-56", `\((iPad|iPhone|iPod);.*OS [56]_`),
	rule("mobileconfig", `\((iPad|iPhone|iPod);.*OS [7-9]`, `\((iPad|iPhone|iPod);.*OS 1[0-1]`),
	rule("mobileconfig12", `\((iPad|iPhone|iPod);.*OS 1[2-9]`, `\((iPad|iPhone|iPod);.*OS [2-9][0-9]`),
	rule("apple_lion", `Mac OS X 10[._]7`),
	rule("apple_m_lion", `Mac OS X 10[._]8`),
	rule("apple_mav", `Mac OS X 10[._]9`),
	rule("apple_yos", `Mac OS X 10[._]10`),
	rule("apple_el_cap", `Mac OS X 10[._]11`),
	rule("apple_sierra", `Mac OS X 10[._]12`),
	rule("apple_hi_sierra", `Mac OS X 10[._]13`),
	rule("apple_mojave", `Mac OS X 10[._]14`),
	rule("apple_catalina", `Mac OS X 10[._]15`, `Mac OS X 10[._]1[6-9]`, `Mac OS X 10[._][2-9][0-9]`),
	{id: "linux", patterns: []*regexp.Regexp{regexp.MustCompile(`Linux`)}, exclude: regexp.MustCompile(`Linux.*Android`)},
	rule("chromeos", `CrOS`),
	rule("android43", `Android 4[._]3`),
	rule("android_kitkat", `Android 4[._][4-9]`),
	rule("android_lollipop", `Android 5[._][0-9]`),
	rule("android_marshmallow", `Android 6[._][0-9]`),
	rule("android_nougat", `Android 7[._][0-9]`),
	rule("android_oreo", `Android 8[._][0-9]`),
	rule("android_pie", `Android 9[._][0-9]`),
	rule("android_q", `Android 10[._][0-9]`, `Android 1[1-9]`, `Android [2-9][0-9]`),
}

// GuessDeviceID returns the device id for a user agent. When candidates is
// not empty only those ids are considered, still in table order.
func GuessDeviceID(userAgent string, candidates ...string) string {
	allowed := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		allowed[c] = true
	}
	for _, r := range userAgents {
		if len(allowed) > 0 && !allowed[r.id] {
			continue
		}
		if r.match(userAgent) {
			return r.id
		}
	}
	return FallbackDeviceID
}

// Device groups in display order.
const (
	GroupWindows = "Windows"
	GroupApple   = "Apple"
	GroupAndroid = "Android"
	GroupOther   = "Other"
)

var deviceGroups = []agentRule{
	rule(GroupWindows, `^w[0-9]`, `^vista$`),
	rule(GroupApple, `^apple`, `^mobileconfig`),
	rule(GroupAndroid, `^android`),
	rule(GroupOther, ``),
}

// GroupOf returns the group of a device id.
func GroupOf(deviceID string) string {
	for _, g := range deviceGroups {
		if g.match(deviceID) {
			return g.id
		}
	}
	return GroupOther
}

// DeviceGroup is a named bucket of devices.
type DeviceGroup struct {
	Name    string
	Devices []Device
}

// GroupDevices buckets the available devices by group. Empty groups are left out.
func GroupDevices(devices []Device) []DeviceGroup {
	buckets := make(map[string][]Device, len(deviceGroups))
	for _, d := range devices {
		if !d.available() {
			continue
		}
		buckets[d.Group()] = append(buckets[d.Group()], d)
	}
	var out []DeviceGroup
	for _, g := range deviceGroups {
		if len(buckets[g.id]) > 0 {
			out = append(out, DeviceGroup{Name: g.id, Devices: buckets[g.id]})
		}
	}
	return out
}
