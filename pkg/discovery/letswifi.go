package discovery

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/geteduroam/discogen/pkg/models"
)

const letswifiToken = "letswifi"

// parseLetsWifi reports whether target points at the root of a letswifi server:
// https without port or credentials, an empty or "/" path, and "letswifi" as
// one of the '#'-separated parts of the fragment.
func parseLetsWifi(target string) (*url.URL, bool, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, false, err
	}
	if u.Scheme != "https" || u.Hostname() == "" || u.Port() != "" || u.User != nil {
		return u, false, nil
	}
	if u.Path != "" && u.Path != "/" {
		return u, false, nil
	}
	for _, part := range strings.Split(u.Fragment, "#") {
		if part == letswifiToken {
			return u, true, nil
		}
	}
	return u, false, nil
}

// redirectEntry turns the target of a redirect profile into a LetsWifiRedirect
// or a PlainRedirect. isDefault is used for a LetsWifiRedirect only.
func redirectEntry(target string, profileID int, name string, isDefault bool) (models.ProfileEntry, error) {
	u, ok, err := parseLetsWifi(target)
	if err != nil {
		return nil, &IllegalRedirectError{Profile: profileID, URL: target, Err: err}
	}
	if !ok {
		return models.PlainRedirect{
			ID:       catID(profileID),
			Redirect: target,
			Name:     name,
		}, nil
	}

	query := ""
	if u.RawQuery != "" {
		query = "?" + u.RawQuery
	}
	realm := u.Hostname()
	if q := u.Query(); q.Has("realm") {
		realm = q.Get("realm")
	}
	host := "https://" + u.Host

	return models.LetsWifiRedirect{
		ID:                    "letswifi_" + strings.ReplaceAll(realm, ".", "_") + "_cat_" + strconv.Itoa(profileID),
		Name:                  name,
		Default:               isDefault,
		EAPConfigEndpoint:     host + "/api/eap-config/" + query,
		TokenEndpoint:         host + "/oauth/token/" + query,
		AuthorizationEndpoint: host + "/oauth/authorize/" + query,
	}, nil
}

func catID(profileID int) string {
	return "cat_" + strconv.Itoa(profileID)
}
