package wifi

import "time"

// Connection records the network the WiFi handle last confirmed it joined.
type Connection struct {
	SSID          string
	LastConnected *time.Time
}

// ControlPort is the set of OS capabilities the WiFi handle drives. The
// concrete adapters shell out to a platform utility or talk to a system
// daemon; tests use wifi/mock.
type ControlPort interface {
	// IsWirelessEnabled checks if the wireless radio is enabled.
	IsWirelessEnabled() (bool, error)
	// AddProfile registers the network profile stored at path. The file is
	// read once and may be removed as soon as AddProfile returns.
	AddProfile(path string) error
	// QueryInterfaces returns the raw interface status text.
	QueryInterfaces() (string, error)
	// ConnectByName asks the OS to associate with a registered profile.
	ConnectByName(name string) error
	// Disconnect disconnects the wireless interface and returns the tool's
	// output.
	Disconnect() (string, error)
}

// Connectivity joins and leaves wireless networks.
type Connectivity interface {
	// Connect joins ssid with password. It returns false without an error if
	// every step ran but the network never showed up as associated.
	Connect(ssid, password string) (bool, error)
	// Disconnect leaves the current network and reports whether the OS
	// confirmed it.
	Disconnect() (bool, error)
}
