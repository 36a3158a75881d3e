package wifi

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Placeholders substituted by RenderProfile.
const (
	SSIDPlaceholder     = "{SSID}"
	PasswordPlaceholder = "{password}"
)

// DefaultProfileTemplate is a WPA2-Personal WLAN profile as accepted by
// `netsh wlan add profile`.
const DefaultProfileTemplate = `<?xml version="1.0"?>
<WLANProfile xmlns="http://www.microsoft.com/networking/WLAN/profile/v1">
    <name>{SSID}</name>
    <SSIDConfig>
        <SSID>
            <name>{SSID}</name>
        </SSID>
    </SSIDConfig>
    <connectionType>ESS</connectionType>
    <connectionMode>auto</connectionMode>
    <MSM>
        <security>
            <authEncryption>
                <authentication>WPA2PSK</authentication>
                <encryption>AES</encryption>
                <useOneX>false</useOneX>
            </authEncryption>
            <sharedKey>
                <keyType>passPhrase</keyType>
                <protected>false</protected>
                <keyMaterial>{password}</keyMaterial>
            </sharedKey>
        </security>
    </MSM>
</WLANProfile>
`

// RenderProfile substitutes ssid, then password, into tmpl. Values are
// inserted verbatim; a value containing the other placeholder is not treated
// specially.
func RenderProfile(tmpl, ssid, password string) string {
	out := strings.ReplaceAll(tmpl, SSIDPlaceholder, ssid)
	return strings.ReplaceAll(out, PasswordPlaceholder, password)
}

// ProfileArtifact is a rendered profile on disk. It is only valid until
// Close is called.
type ProfileArtifact struct {
	Path string

	closed bool
}

// Close removes the artifact. It is safe to call more than once.
func (a *ProfileArtifact) Close() error {
	if a == nil || a.closed {
		return nil
	}
	a.closed = true
	if err := os.Remove(a.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// ProfileMaterializer stages a network profile for registration.
type ProfileMaterializer interface {
	Materialize(ssid, password string) (*ProfileArtifact, error)
}

// TempProfiles writes rendered profiles into a temporary directory.
type TempProfiles struct {
	// Dir defaults to os.TempDir().
	Dir string
	// Template defaults to DefaultProfileTemplate.
	Template string
}

// Materialize renders the template and writes it to a uniquely named file.
func (p TempProfiles) Materialize(ssid, password string) (*ProfileArtifact, error) {
	dir := p.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	tmpl := p.Template
	if tmpl == "" {
		tmpl = DefaultProfileTemplate
	}

	path := filepath.Join(dir, "wlan-profile-"+uuid.NewString()+".xml")
	if err := os.WriteFile(path, []byte(RenderProfile(tmpl, ssid, password)), 0600); err != nil {
		return nil, fmt.Errorf("failed to write profile: %w", err)
	}
	return &ProfileArtifact{Path: path}, nil
}

// Profile is the subset of a WLAN profile document adapters need in order to
// register it with something other than netsh.
type Profile struct {
	Name           string
	SSID           string
	Authentication string
	Encryption     string
	KeyMaterial    string
}

type wlanProfile struct {
	XMLName    xml.Name `xml:"WLANProfile"`
	Name       string   `xml:"name"`
	SSIDConfig struct {
		SSID struct {
			Name string `xml:"name"`
		} `xml:"SSID"`
	} `xml:"SSIDConfig"`
	MSM struct {
		Security struct {
			AuthEncryption struct {
				Authentication string `xml:"authentication"`
				Encryption     string `xml:"encryption"`
			} `xml:"authEncryption"`
			SharedKey struct {
				KeyMaterial string `xml:"keyMaterial"`
			} `xml:"sharedKey"`
		} `xml:"security"`
	} `xml:"MSM"`
}

// ParseProfile decodes a WLAN profile document.
func ParseProfile(r io.Reader) (Profile, error) {
	var doc wlanProfile
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return Profile{}, fmt.Errorf("failed to parse profile: %w", err)
	}
	p := Profile{
		Name:           doc.Name,
		SSID:           doc.SSIDConfig.SSID.Name,
		Authentication: doc.MSM.Security.AuthEncryption.Authentication,
		Encryption:     doc.MSM.Security.AuthEncryption.Encryption,
		KeyMaterial:    doc.MSM.Security.SharedKey.KeyMaterial,
	}
	if p.SSID == "" {
		p.SSID = p.Name
	}
	if p.Name == "" {
		p.Name = p.SSID
	}
	if p.Name == "" {
		return Profile{}, fmt.Errorf("profile has no name: %w", ErrOperationFailed)
	}
	return p, nil
}

// ParseProfileFile opens path and decodes it with ParseProfile.
func ParseProfileFile(path string) (Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return Profile{}, err
	}
	defer f.Close()
	return ParseProfile(f)
}
