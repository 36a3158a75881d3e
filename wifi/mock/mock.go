package mock

import (
	"fmt"
	"strings"
	"time"

	"github.com/shazow/wlanjoin/wifi"
)

var DefaultActionSleep = 500 * time.Millisecond

// Port is a simulated operating system implementing wifi.ControlPort. It
// keeps the profiles added to it and associates with a profile on connect
// if the network is in range and the passphrase matches.
type Port struct {
	InterfaceName   string
	WirelessEnabled bool
	// InRange maps a visible SSID to the passphrase it accepts.
	InRange map[string]string
	// Profiles maps a registered profile name to its parsed contents.
	Profiles map[string]wifi.Profile
	// Active is the associated SSID, or empty.
	Active string
	// ExtraStatus is appended to the status output as-is.
	ExtraStatus string

	IsWirelessEnabledError error
	AddProfileError        error
	QueryError             error
	ConnectError           error
	DisconnectError        error

	// Calls logs every operation in order: "radio", "add", "query",
	// "connect" or "disconnect".
	Calls []string

	// ActionSleep is a delay before every action, to better emulate a
	// real-world OS for the CLI. Set to 0 during testing.
	ActionSleep time.Duration
}

var _ wifi.ControlPort = (*Port)(nil)

// New creates a Port with a few fun networks in range.
func New() *Port {
	return &Port{
		InterfaceName:   "Wi-Fi",
		WirelessEnabled: true,
		InRange: map[string]string{
			"HideYoKidsHideYoWiFi": "hidden",
			"Password is password": "password",
			"Dunder MiffLAN":       "scranton",
			"TacoBoutAGoodSignal":  "tacos4ever",
		},
		Profiles: map[string]wifi.Profile{
			"Password is password": {Name: "Password is password", SSID: "Password is password", KeyMaterial: "password"},
		},
		ActionSleep: DefaultActionSleep,
	}
}

// Called returns how many times op was invoked.
func (p *Port) Called(op string) int {
	n := 0
	for _, c := range p.Calls {
		if c == op {
			n++
		}
	}
	return n
}

func (p *Port) call(op string) {
	time.Sleep(p.ActionSleep)
	p.Calls = append(p.Calls, op)
}

func (p *Port) IsWirelessEnabled() (bool, error) {
	p.call("radio")
	if p.IsWirelessEnabledError != nil {
		return false, p.IsWirelessEnabledError
	}
	return p.WirelessEnabled, nil
}

func (p *Port) AddProfile(path string) error {
	p.call("add")
	if p.AddProfileError != nil {
		return p.AddProfileError
	}
	profile, err := wifi.ParseProfileFile(path)
	if err != nil {
		// netsh exits non-zero on a malformed profile, which is not a
		// spawn failure.
		return nil
	}
	if p.Profiles == nil {
		p.Profiles = make(map[string]wifi.Profile)
	}
	p.Profiles[profile.Name] = profile
	return nil
}

func (p *Port) QueryInterfaces() (string, error) {
	p.call("query")
	if p.QueryError != nil {
		return "", p.QueryError
	}
	return p.status(), nil
}

func (p *Port) ConnectByName(name string) error {
	p.call("connect")
	if p.ConnectError != nil {
		return p.ConnectError
	}
	if !p.WirelessEnabled {
		return nil
	}
	profile, ok := p.Profiles[name]
	if !ok {
		return nil
	}
	passphrase, ok := p.InRange[profile.SSID]
	if !ok || passphrase != profile.KeyMaterial {
		return nil
	}
	p.Active = profile.SSID
	return nil
}

func (p *Port) Disconnect() (string, error) {
	p.call("disconnect")
	if p.DisconnectError != nil {
		return "", p.DisconnectError
	}
	p.Active = ""
	return fmt.Sprintf("Disconnection request was completed successfully for interface %q.\n", p.InterfaceName), nil
}

// status renders the state the way `netsh wlan show interfaces` does.
func (p *Port) status() string {
	if !p.WirelessEnabled {
		return "There is no wireless interface on the system.\n"
	}

	var b strings.Builder
	b.WriteString("\nThere is 1 interface on the system:\n\n")
	fmt.Fprintf(&b, "    Name                   : %s\n", p.InterfaceName)
	b.WriteString("    Description            : Simulated Wireless Adapter\n")
	b.WriteString("    Physical address       : 02:00:00:00:00:01\n")
	if p.Active == "" {
		b.WriteString("    State                  : disconnected\n")
	} else {
		b.WriteString("    State                  : connected\n")
		fmt.Fprintf(&b, "    SSID                   : %s\n", p.Active)
		b.WriteString("    BSSID                  : 02:00:00:00:00:02\n")
		b.WriteString("    Authentication         : WPA2-Personal\n")
		b.WriteString("    Signal                 : 87%\n")
		fmt.Fprintf(&b, "    Profile                : %s\n", p.Active)
	}
	b.WriteString(p.ExtraStatus)
	b.WriteString("\n    Hosted network status  : Not available\n")
	return b.String()
}
