package catapi

import "encoding/xml"

// Provider is an entry of listAllIdentityProviders.
type Provider struct {
	EntityID FlexInt  `json:"entityID"`
	IDP      FlexInt  `json:"idp"`
	Title    *string  `json:"title"`
	Country  string   `json:"country"`
	Geo      []RawGeo `json:"geo"`
	Icon     Scalar   `json:"icon"`
}

// ID returns the entity ID, falling back to the idp copy.
func (p Provider) ID() int {
	if p.EntityID != 0 {
		return int(p.EntityID)
	}
	return int(p.IDP)
}

// RawGeo is a location as sent by the catalog, possibly as strings.
type RawGeo struct {
	Lat Scalar `json:"lat"`
	Lon Scalar `json:"lon"`
}

// CountryProvider is an entry of listIdentityProviders.
type CountryProvider struct {
	ID      FlexInt `json:"id"`
	Display string  `json:"display"`
}

// Country is an entry of listAllCountries.
type Country struct {
	Federation string `json:"federation"`
	Display    string `json:"display"`
}

// ProfileSummary is an entry of listProfiles.
type ProfileSummary struct {
	ID      FlexInt `json:"id"`
	Display string  `json:"display"`
	IdPName string  `json:"idp_name"`
	Logo    FlexInt `json:"logo"`
}

// ProfileAttributes is the answer of profileAttributes.
type ProfileAttributes struct {
	LocalEmail   string   `json:"local_email"`
	LocalPhone   string   `json:"local_phone"`
	LocalURL     string   `json:"local_url"`
	Description  string   `json:"description"`
	SilverBullet Scalar   `json:"silverbullet"`
	Devices      []Device `json:"devices"`
}

// Device is a device entry of profileAttributes or listDevices.
type Device struct {
	ID               Scalar   `json:"id"`
	DeviceField      Scalar   `json:"device"`
	Display          *string  `json:"display"`
	Status           *FlexInt `json:"status"`
	Redirect         Scalar   `json:"redirect"`
	EAPCustomText    Scalar   `json:"eap_customtext"`
	DeviceCustomText Scalar   `json:"device_customtext"`
	Message          Scalar   `json:"message"`
	Options          struct {
		Hidden Scalar `json:"hidden"`
	} `json:"options"`
}

// DeviceID returns the id, which listDevices sends as "device".
func (d Device) DeviceID() string {
	if d.ID != "" {
		return d.ID.String()
	}
	return d.DeviceField.String()
}

// Installer is the answer of generateInstaller.
type Installer struct {
	Profile FlexInt `json:"profile"`
	Device  string  `json:"device"`
	Link    string  `json:"link"`
	Mime    string  `json:"mime"`
}

// EAPConfig is the eap-config XML document of a profile.
type EAPConfig struct {
	XMLName   xml.Name              `xml:"EAPIdentityProviderList"`
	Providers []EAPIdentityProvider `xml:"EAPIdentityProvider"`
}

// EAPIdentityProvider is one identity provider of an eap-config document.
type EAPIdentityProvider struct {
	ID      string                 `xml:"ID,attr"`
	Methods []AuthenticationMethod `xml:"AuthenticationMethods>AuthenticationMethod"`
}

// AuthenticationMethod lists the trust anchors for the server certificate.
type AuthenticationMethod struct {
	EAPType string          `xml:"EAPMethod>Type"`
	CAs     []CACertificate `xml:"ServerSideCredential>CA"`
}

// CACertificate is a base64 encoded trust anchor.
type CACertificate struct {
	Format   string `xml:"format,attr"`
	Encoding string `xml:"encoding,attr"`
	Value    string `xml:",chardata"`
}
