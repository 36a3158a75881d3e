//go:build linux

package networkmanager

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	gonetworkmanager "github.com/Wifx/gonetworkmanager/v3"
	"github.com/google/uuid"

	"github.com/shazow/wlanjoin/wifi"
)

const connectionTimeout = 30 * time.Second

// Port implements wifi.ControlPort using D-Bus to communicate with
// NetworkManager. Profiles are imported as saved connections whose id is the
// profile name, so ConnectByName works the same way it does with netsh.
type Port struct {
	NM       gonetworkmanager.NetworkManager
	Settings gonetworkmanager.Settings
	// Interface selects the wireless device by name, such as "wlan0". If
	// empty, the first wireless device is used.
	Interface string

	wirelessDevice gonetworkmanager.DeviceWireless
	logger         *slog.Logger
}

var _ wifi.ControlPort = (*Port)(nil)

// New creates a new networkmanager.Port for the named wireless interface, or
// the first one if iface is empty.
func New(iface string, logger *slog.Logger) (*Port, error) {
	nm, err := gonetworkmanager.NewNetworkManager()
	if err != nil {
		return nil, fmt.Errorf("failed to create network manager client: %w", wifi.ErrNotAvailable)
	}

	settings, err := gonetworkmanager.NewSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", wifi.ErrOperationFailed)
	}

	return &Port{
		NM:        nm,
		Settings:  settings,
		Interface: iface,
		logger:    logger,
	}, nil
}

func (p *Port) log() *slog.Logger {
	if p.logger == nil {
		return slog.Default()
	}
	return p.logger
}

// getWirelessDevice returns the wireless device named by Interface, or the
// first one, cached after the first lookup.
func (p *Port) getWirelessDevice() (gonetworkmanager.DeviceWireless, error) {
	if p.wirelessDevice != nil {
		return p.wirelessDevice, nil
	}
	devices, err := p.NM.GetDevices()
	if err != nil {
		return nil, err
	}
	for _, device := range devices {
		dev, ok := device.(gonetworkmanager.DeviceWireless)
		if !ok {
			continue
		}
		if p.Interface != "" {
			if name, err := dev.GetPropertyInterface(); err != nil || name != p.Interface {
				continue
			}
		}
		p.wirelessDevice = dev
		return dev, nil
	}
	if p.Interface != "" {
		return nil, fmt.Errorf("no wireless device %q found: %w", p.Interface, wifi.ErrNotFound)
	}
	return nil, fmt.Errorf("no wireless device found: %w", wifi.ErrNotFound)
}

// findConnection returns the saved wireless connection with the given id.
func (p *Port) findConnection(id string) (gonetworkmanager.Connection, error) {
	connections, err := p.Settings.ListConnections()
	if err != nil {
		return nil, err
	}
	for _, conn := range connections {
		s, err := conn.GetSettings()
		if err != nil {
			continue
		}
		c, ok := s["connection"]
		if !ok {
			continue
		}
		if t, _ := c["type"].(string); t != "802-11-wireless" {
			continue
		}
		if i, _ := c["id"].(string); i == id {
			return conn, nil
		}
	}
	return nil, nil
}

func (p *Port) IsWirelessEnabled() (bool, error) {
	return p.NM.GetPropertyWirelessEnabled()
}

// AddProfile imports a WLAN profile document as a saved connection,
// replacing the settings of an existing connection with the same name. A
// profile that cannot be parsed is skipped, the way netsh rejects it with a
// non-zero exit.
func (p *Port) AddProfile(path string) error {
	profile, err := wifi.ParseProfileFile(path)
	if err != nil {
		p.log().Debug("skipping unreadable profile", "error", err)
		return nil
	}

	var ifname string
	if dev, err := p.getWirelessDevice(); err == nil {
		ifname, _ = dev.GetPropertyInterface()
	}

	existing, err := p.findConnection(profile.Name)
	if err != nil {
		return err
	}
	if existing != nil {
		current, err := existing.GetSettings()
		if err != nil {
			return err
		}
		settings := connectionSettings(profile, ifname, connectionUUID(current))
		applyUpdateWorkaround(settings)
		p.log().Debug("updating saved connection", "id", profile.Name)
		return existing.Update(settings)
	}

	p.log().Debug("adding saved connection", "id", profile.Name)
	_, err = p.Settings.AddConnection(connectionSettings(profile, ifname, uuid.New().String()))
	return err
}

func connectionUUID(s gonetworkmanager.ConnectionSettings) string {
	if c, ok := s["connection"]; ok {
		if u, ok := c["uuid"].(string); ok && u != "" {
			return u
		}
	}
	return uuid.New().String()
}

// connectionSettings translates a WLAN profile into NetworkManager settings.
func connectionSettings(profile wifi.Profile, ifname, id string) gonetworkmanager.ConnectionSettings {
	connection := gonetworkmanager.ConnectionSettings{
		"connection": {
			"id":          profile.Name,
			"uuid":        id,
			"type":        "802-11-wireless",
			"autoconnect": true,
		},
		"802-11-wireless": {
			"mode": "infrastructure",
			"ssid": []byte(profile.SSID),
		},
		"ipv4": {"method": "auto"},
		"ipv6": {"method": "auto"},
	}
	if ifname != "" {
		connection["connection"]["interface-name"] = ifname
	}

	auth := strings.ToLower(profile.Authentication)
	switch {
	case auth == "open" && !strings.EqualFold(profile.Encryption, "WEP"):
		// No security settings needed
	case auth == "shared" || strings.EqualFold(profile.Encryption, "WEP"):
		connection["802-11-wireless"]["security"] = "802-11-wireless-security"
		connection["802-11-wireless-security"] = map[string]interface{}{
			"key-mgmt": "none",
			"wep-key0": profile.KeyMaterial,
		}
	case auth == "wpa3sae":
		connection["802-11-wireless"]["security"] = "802-11-wireless-security"
		connection["802-11-wireless-security"] = map[string]interface{}{
			"key-mgmt": "sae",
			"psk":      profile.KeyMaterial,
		}
	default: // WPA/WPA2
		connection["802-11-wireless"]["security"] = "802-11-wireless-security"
		connection["802-11-wireless-security"] = map[string]interface{}{
			"key-mgmt": "wpa-psk",
			"psk":      profile.KeyMaterial,
		}
	}
	return connection
}

// applyUpdateWorkaround modifies the settings map to workaround D-Bus type errors.
//
// NetworkManager's D-Bus API can return ipv6.addresses and ipv6.routes as an
// array of array of variants ('aav'), but expects them as an array of structs
// on update. Dropping them avoids a type mismatch error on Update.
//
// See: https://github.com/Wifx/gonetworkmanager/issues/13 and https://github.com/godbus/dbus/issues/400
func applyUpdateWorkaround(settings gonetworkmanager.ConnectionSettings) {
	if ipv6Settings, ok := settings["ipv6"]; ok {
		delete(ipv6Settings, "addresses")
		delete(ipv6Settings, "routes")
	}
}

// QueryInterfaces renders the wireless devices in the same `key : value`
// layout as `netsh wlan show interfaces`. With Interface set, only that
// device is shown.
func (p *Port) QueryInterfaces() (string, error) {
	devices, err := p.NM.GetDevices()
	if err != nil {
		return "", err
	}

	var wireless []gonetworkmanager.DeviceWireless
	for _, device := range devices {
		dev, ok := device.(gonetworkmanager.DeviceWireless)
		if !ok {
			continue
		}
		if p.Interface != "" && propertyOrEmpty(dev.GetPropertyInterface) != p.Interface {
			continue
		}
		wireless = append(wireless, dev)
	}
	if len(wireless) == 0 {
		return "There is no wireless interface on the system.\n", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\nThere are %d interfaces on the system:\n", len(wireless))
	for _, dev := range wireless {
		b.WriteString("\n")
		writeField(&b, "Name", propertyOrEmpty(dev.GetPropertyInterface))

		state, err := dev.GetPropertyState()
		if err != nil || state != gonetworkmanager.NmDeviceStateActivated {
			writeField(&b, "State", "disconnected")
			continue
		}
		writeField(&b, "State", "connected")

		if ap, err := dev.GetPropertyActiveAccessPoint(); err == nil && ap != nil {
			if ssid, err := ap.GetPropertySSID(); err == nil {
				writeField(&b, "SSID", ssid)
			}
			if bssid, err := ap.GetPropertyHWAddress(); err == nil {
				writeField(&b, "BSSID", bssid)
			}
			if strength, err := ap.GetPropertyStrength(); err == nil {
				writeField(&b, "Signal", fmt.Sprintf("%d%%", strength))
			}
		}
		if ac, err := dev.GetPropertyActiveConnection(); err == nil && ac != nil {
			if id, err := ac.GetPropertyID(); err == nil {
				writeField(&b, "Profile", id)
			}
		}
	}
	return b.String(), nil
}

func writeField(b *strings.Builder, key, value string) {
	fmt.Fprintf(b, "    %-22s : %s\n", key, value)
}

func propertyOrEmpty(get func() (string, error)) string {
	v, err := get()
	if err != nil {
		return ""
	}
	return v
}

// ConnectByName activates the saved connection called name and blocks until
// NetworkManager reports it activated, failed or the timeout passes. Only a
// failed D-Bus call is returned as an error.
func (p *Port) ConnectByName(name string) error {
	conn, err := p.findConnection(name)
	if err != nil {
		return err
	}
	if conn == nil {
		p.log().Debug("no saved connection", "id", name)
		return nil
	}

	device, err := p.getWirelessDevice()
	if err != nil {
		return err
	}

	activeConn, err := p.NM.ActivateConnection(conn, device, nil)
	if err != nil {
		return err
	}

	// Now, block until the connection is fully activated.
	stateChanges := make(chan gonetworkmanager.StateChange, 1)
	done := make(chan struct{})
	defer close(done)
	err = activeConn.SubscribeState(stateChanges, done)
	if err != nil {
		return err
	}

	// Check the initial state first
	initialState, err := activeConn.GetPropertyState()
	if err != nil {
		return err
	}
	if initialState == gonetworkmanager.NmActiveConnectionStateActivated {
		return nil
	}

	timeout := time.After(connectionTimeout)
	for {
		select {
		case change := <-stateChanges:
			if change.State == gonetworkmanager.NmActiveConnectionStateActivated {
				return nil
			}
			if change.State == gonetworkmanager.NmActiveConnectionStateDeactivated {
				p.log().Debug("activation failed", "id", name, "reason", change.Reason)
				return nil
			}
		case <-timeout:
			p.log().Debug("activation timed out", "id", name)
			return nil
		}
	}
}

// Disconnect deactivates the wireless device. A refusal from NetworkManager
// is reported in the output rather than as an error.
func (p *Port) Disconnect() (string, error) {
	device, err := p.getWirelessDevice()
	if err != nil {
		return "", err
	}
	ifname, _ := device.GetPropertyInterface()
	if err := device.Disconnect(); err != nil {
		return fmt.Sprintf("Device %q deactivation failed: %v\n", ifname, err), nil
	}
	return fmt.Sprintf("Device %q successfully disconnected.\n", ifname), nil
}
