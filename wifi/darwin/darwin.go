// Package darwin drives the macOS Wi-Fi interface through networksetup.
package darwin

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strings"

	"github.com/shazow/wlanjoin/wifi"
)

var currentNetworkRe = regexp.MustCompile(`Current Wi-Fi Network: (.+)`)

// Runner runs a command to completion and returns its standard output.
type Runner interface {
	Run(name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run wraps exec.Command to capture stderr and wrap errors.
func (ExecRunner) Run(name string, args ...string) ([]byte, error) {
	c := exec.Command(name, args...)
	var stderr strings.Builder
	c.Stderr = &stderr
	out, err := c.Output()
	if err != nil {
		// Keep the arguments out of the error, they can carry a passphrase.
		return out, fmt.Errorf("failed to run command: %s: %w: %s", name, err, stderr.String())
	}
	return out, nil
}

// Port implements wifi.ControlPort for macOS.
type Port struct {
	Runner        Runner
	WifiInterface string

	// profiles keeps the imported profiles so ConnectByName can pass the
	// passphrase along; networksetup has no notion of a named profile.
	profiles map[string]wifi.Profile
	logger   *slog.Logger
}

var _ wifi.ControlPort = (*Port)(nil)

// New creates a new darwin.Port for iface, or for the first Wi-Fi hardware
// port if iface is empty.
func New(iface string, logger *slog.Logger) (*Port, error) {
	return newPort(ExecRunner{}, iface, logger)
}

func newPort(runner Runner, iface string, logger *slog.Logger) (*Port, error) {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Port{Runner: runner, WifiInterface: iface, logger: logger}
	if iface != "" {
		return p, nil
	}

	// Find the Wi-Fi interface name (e.g., en0)
	out, err := p.Runner.Run("networksetup", "-listallhardwareports")
	if err != nil {
		return nil, fmt.Errorf("failed to list hardware ports: %w", wifi.ErrOperationFailed)
	}
	device, err := findWifiDevice(string(out))
	if err != nil {
		return nil, err
	}
	p.WifiInterface = device
	return p, nil
}

// run invokes networksetup. A command that ran and exited non-zero is not
// an error.
func (p *Port) run(args ...string) (string, error) {
	out, err := p.Runner.Run("networksetup", args...)
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return "", err
		}
		if p.logger != nil {
			p.logger.Debug("networksetup exited with an error", "command", args[0], "error", err)
		}
	}
	return string(out), nil
}

// IsWirelessEnabled checks if the wireless radio is enabled.
func (p *Port) IsWirelessEnabled() (bool, error) {
	out, err := p.run("-getairportpower", p.WifiInterface)
	if err != nil {
		return false, err
	}
	return strings.Contains(out, ": On"), nil
}

// AddProfile adds the profile's network to the preferred networks list. A
// profile that cannot be parsed is skipped, the way netsh rejects it with a
// non-zero exit.
func (p *Port) AddProfile(path string) error {
	profile, err := wifi.ParseProfileFile(path)
	if err != nil {
		if p.logger != nil {
			p.logger.Debug("skipping unreadable profile", "error", err)
		}
		return nil
	}
	args := []string{"-addpreferredwirelessnetworkatindex", p.WifiInterface, profile.SSID, "0", securityType(profile)}
	if profile.KeyMaterial != "" {
		args = append(args, profile.KeyMaterial)
	}
	if _, err := p.run(args...); err != nil {
		return err
	}
	if p.profiles == nil {
		p.profiles = make(map[string]wifi.Profile)
	}
	p.profiles[profile.Name] = profile
	return nil
}

// QueryInterfaces renders the current network in the `key : value` layout
// of `netsh wlan show interfaces`.
func (p *Port) QueryInterfaces() (string, error) {
	out, err := p.run("-getairportnetwork", p.WifiInterface)
	if err != nil {
		return "", err
	}
	return renderStatus(p.WifiInterface, out), nil
}

// ConnectByName joins the network of a profile added earlier. For any other
// name, networksetup falls back to the keychain.
func (p *Port) ConnectByName(name string) error {
	args := []string{"-setairportnetwork", p.WifiInterface}
	if profile, ok := p.profiles[name]; ok {
		args = append(args, profile.SSID)
		if profile.KeyMaterial != "" {
			args = append(args, profile.KeyMaterial)
		}
	} else {
		args = append(args, name)
	}
	_, err := p.run(args...)
	return err
}

// Disconnect is not supported: networksetup can only power the radio off.
func (p *Port) Disconnect() (string, error) {
	return "", fmt.Errorf("disconnect on darwin: %w", wifi.ErrNotSupported)
}

func securityType(profile wifi.Profile) string {
	auth := strings.ToUpper(profile.Authentication)
	switch {
	case strings.EqualFold(profile.Encryption, "WEP"):
		return "WEP"
	case auth == "OPEN":
		return "OPEN"
	case auth == "WPA3SAE":
		return "WPA3"
	}
	return "WPA2" // Default to WPA2 for WPA/WPA2
}

func renderStatus(iface, getAirportNetwork string) string {
	var b strings.Builder
	b.WriteString("\nThere is 1 interface on the system:\n\n")
	fmt.Fprintf(&b, "    Name                   : %s\n", iface)

	matches := currentNetworkRe.FindStringSubmatch(getAirportNetwork)
	if len(matches) < 2 {
		b.WriteString("    State                  : disconnected\n")
		return b.String()
	}
	ssid := strings.TrimSpace(matches[1])
	b.WriteString("    State                  : connected\n")
	fmt.Fprintf(&b, "    SSID                   : %s\n", ssid)
	fmt.Fprintf(&b, "    Profile                : %s\n", ssid)
	return b.String()
}

// findWifiDevice parses the output of `networksetup -listallhardwareports` to find the Wi-Fi device.
func findWifiDevice(output string) (string, error) {
	// The output is a series of stanzas, separated by blank lines.
	for _, stanza := range strings.Split(output, "\n\n") {
		var device string
		isWifiPort := false
		for _, line := range strings.Split(stanza, "\n") {
			if port, ok := strings.CutPrefix(line, "Hardware Port: "); ok {
				isWifiPort = strings.Contains(port, "Wi-Fi") || strings.Contains(port, "AirPort")
			}
			if d, ok := strings.CutPrefix(line, "Device: "); ok {
				device = d
			}
		}
		if isWifiPort && device != "" {
			return device, nil
		}
	}
	return "", fmt.Errorf("no Wi-Fi interface found: %w", wifi.ErrNotFound)
}
