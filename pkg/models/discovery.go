package models

import (
	"bytes"
	"encoding/json"
)

// GeoPoint is a location of an institution.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Document is the version 1 discovery document.
type Document struct {
	Version   int        `json:"version"`
	Seq       int        `json:"seq"`
	Instances []Instance `json:"instances"`
}

// Instance is a single institution in a version 1 document.
// Catalog institutions carry CatIDP, statically configured ones carry ID.
type Instance struct {
	ID       string         `json:"id,omitempty"`
	Name     string         `json:"name"`
	Country  string         `json:"country"`
	CatIDP   int            `json:"cat_idp,omitempty"`
	Geo      []GeoPoint     `json:"geo,omitempty"`
	Profiles []ProfileEntry `json:"profiles"`
}

// DocumentV2 is the per-language version 2 discovery document.
// Profiles live in a separate ProviderDocument per instance.
type DocumentV2 struct {
	Version   int          `json:"version"`
	Seq       int          `json:"seq"`
	Lang      string       `json:"lang"`
	Instances []InstanceV2 `json:"instances"`
}

// InstanceV2 references the provider document holding its profiles.
type InstanceV2 struct {
	Name     string   `json:"name"`
	Country  string   `json:"country"`
	Keywords []string `json:"keywords"`
	Provider string   `json:"provider"`
}

// ProviderDocument lists the profiles of one institution for version 2.
type ProviderDocument struct {
	Version  int            `json:"version"`
	Seq      int            `json:"seq"`
	Lang     string         `json:"lang"`
	Provider string         `json:"provider"`
	Profiles []ProfileEntry `json:"profiles"`
}

// ProfileEntry is one of CatHosted, LetsWifiRedirect or PlainRedirect.
type ProfileEntry interface {
	EntryID() string
	EntryName() string
	isProfileEntry()
}

// CatHosted is a profile whose eap-config is served by the catalog.
type CatHosted struct {
	ID                string `json:"id"`
	CatProfile        int    `json:"cat_profile"`
	Name              string `json:"name"`
	EAPConfigEndpoint string `json:"eapconfig_endpoint"`
}

func (p CatHosted) EntryID() string   { return p.ID }
func (p CatHosted) EntryName() string { return p.Name }
func (CatHosted) isProfileEntry()     {}

func (p CatHosted) MarshalJSON() ([]byte, error) {
	type plain CatHosted
	return marshal(struct {
		plain
		OAuth bool `json:"oauth"`
	}{plain(p), false})
}

// LetsWifiRedirect is a profile enrolled through OAuth against a letswifi server.
type LetsWifiRedirect struct {
	ID                    string `json:"id"`
	Name                  string `json:"name"`
	Default               bool   `json:"default"`
	EAPConfigEndpoint     string `json:"eapconfig_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
}

func (p LetsWifiRedirect) EntryID() string   { return p.ID }
func (p LetsWifiRedirect) EntryName() string { return p.Name }
func (LetsWifiRedirect) isProfileEntry()     {}

func (p LetsWifiRedirect) MarshalJSON() ([]byte, error) {
	type plain LetsWifiRedirect
	return marshal(struct {
		plain
		OAuth bool `json:"oauth"`
	}{plain(p), true})
}

// PlainRedirect sends the user to a web page instead of configuring the device.
type PlainRedirect struct {
	ID       string `json:"id"`
	Redirect string `json:"redirect"`
	Name     string `json:"name"`
}

func (p PlainRedirect) EntryID() string   { return p.ID }
func (p PlainRedirect) EntryName() string { return p.Name }
func (PlainRedirect) isProfileEntry()     {}

// marshal is json.Marshal without HTML escaping, so endpoints keep their '&'.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
