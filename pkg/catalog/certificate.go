package catalog

import (
	"context"
	"encoding/base64"
	"strings"
)

const (
	// CertificateDeviceID is the id of the synthesized certificate device.
	CertificateDeviceID = "x-pem"

	certificateDisplay = "eduroam CA certificate (PEM)"
	certificateMessage = "This option allows an experienced user to get the CA certificate used by " +
		"this institutions RADIUS server, in order to configure eduroam manually.  " +
		"Note that any EAP and proxy settings are not included, and you may need to " +
		"contact your institution to ask about those."
	certificateInfo = "No instructions are provided for this option, as this is option only meant " +
		"for experienced users that are able to configure eduroam on their devices themselves."

	pemLineLength = 64
)

// CertificateDevice offers the CA certificates of a profile as PEM.
// The catalog has no such device; the certificates are taken from the
// eap-config of the profile.
type CertificateDevice struct {
	profile *Profile
}

func (d *CertificateDevice) ID() string {
	return CertificateDeviceID
}

func (d *CertificateDevice) Display() string {
	return certificateDisplay
}

func (d *CertificateDevice) Message() string {
	return certificateMessage
}

// DeviceInfo returns fixed instructions; the catalog has none for this device.
func (d *CertificateDevice) DeviceInfo(context.Context) (string, error) {
	return certificateInfo, nil
}

func (d *CertificateDevice) IsRedirect() bool {
	return false
}

func (d *CertificateDevice) Group() string {
	return GroupOf(d.ID())
}

func (d *CertificateDevice) available() bool {
	return true
}

// Certificates returns every distinct server trust anchor of the profile's
// eap-config as a PEM block, in document order.
func (d *CertificateDevice) Certificates(ctx context.Context) ([]string, error) {
	cfg, err := d.profile.g.api.EAPConfig(ctx, d.profile.id, d.profile.provider.lang)
	if err != nil {
		return nil, err
	}
	var out []string
	seen := make(map[string]bool)
	for _, provider := range cfg.Providers {
		for _, method := range provider.Methods {
			for _, ca := range method.CAs {
				block := PEMBlock(ca.Value)
				if seen[block] {
					continue
				}
				seen[block] = true
				out = append(out, block)
			}
		}
	}
	return out, nil
}

// DownloadLink returns a data URI holding all certificates.
func (d *CertificateDevice) DownloadLink(ctx context.Context) (string, error) {
	certs, err := d.Certificates(ctx)
	if err != nil {
		return "", err
	}
	return "data:application/x-x509-ca-cert;base64," +
		base64.StdEncoding.EncodeToString([]byte(strings.Join(certs, "\n"))), nil
}

// PEMBlock wraps a base64 certificate body in PEM armor with 64 column lines.
func PEMBlock(body string) string {
	body = strings.Join(strings.Fields(body), "")
	var b strings.Builder
	b.WriteString("-----BEGIN CERTIFICATE-----\n")
	for len(body) > pemLineLength {
		b.WriteString(body[:pemLineLength])
		b.WriteByte('\n')
		body = body[pemLineLength:]
	}
	b.WriteString(body)
	b.WriteString("\n-----END CERTIFICATE-----\n")
	return b.String()
}
