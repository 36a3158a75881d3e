package wifi

import (
	"log/slog"
	"strings"
	"time"
)

// DefaultDisconnectKeyword is looked for in the output of a disconnect.
const DefaultDisconnectKeyword = "disconnect"

// WiFi is a handle on one wireless interface. It is not safe for concurrent
// use. Unset fields fall back to the defaults New would pick.
type WiFi struct {
	// Connection is the last network Connect verified, or nil.
	Connection *Connection

	Port     ControlPort
	Profiles ProfileMaterializer
	Matcher  StatusMatcher
	// DisconnectKeyword must appear in the disconnect output for Disconnect
	// to report success.
	DisconnectKeyword string

	logger *slog.Logger
}

var _ Connectivity = (*WiFi)(nil)

// New creates a WiFi handle that drives port, staging profiles in the
// system temp directory and matching status output by substring.
func New(port ControlPort, logger *slog.Logger) *WiFi {
	if logger == nil {
		logger = slog.Default()
	}
	return &WiFi{
		Port:              port,
		Profiles:          TempProfiles{},
		Matcher:           SubstringMatcher{},
		DisconnectKeyword: DefaultDisconnectKeyword,
		logger:            logger,
	}
}

func (w *WiFi) log() *slog.Logger {
	if w.logger == nil {
		return slog.Default()
	}
	return w.logger
}

func (w *WiFi) profiles() ProfileMaterializer {
	if w.Profiles == nil {
		return TempProfiles{}
	}
	return w.Profiles
}

func (w *WiFi) matcher() StatusMatcher {
	if w.Matcher == nil {
		return SubstringMatcher{}
	}
	return w.Matcher
}

func (w *WiFi) disconnectKeyword() string {
	if w.DisconnectKeyword == "" {
		return DefaultDisconnectKeyword
	}
	return w.DisconnectKeyword
}

// Connect joins ssid using password.
func (w *WiFi) Connect(ssid, password string) (bool, error) {
	enabled, err := w.Port.IsWirelessEnabled()
	if err != nil {
		return false, otherError(err)
	}
	if !enabled {
		return false, otherError(ErrWirelessDisabled)
	}

	connected, err := w.isConnectedTo(ssid)
	if err != nil {
		return false, otherError(err)
	}
	if connected {
		w.log().Debug("already connected", "ssid", ssid)
		return true, nil
	}

	if err := w.addProfile(ssid, password); err != nil {
		return false, err
	}

	if err := w.Port.ConnectByName(ssid); err != nil {
		return false, &ConnectionError{Kind: KindFailedToConnect, Detail: err.Error(), Err: err}
	}

	connected, err = w.isConnectedTo(ssid)
	if err != nil {
		return false, otherError(err)
	}
	if !connected {
		w.log().Debug("network did not associate", "ssid", ssid)
		return false, nil
	}

	now := time.Now()
	w.Connection = &Connection{SSID: ssid, LastConnected: &now}
	w.log().Debug("connected", "ssid", ssid)
	return true, nil
}

// addProfile stages the profile and registers it. The staged file is
// removed whether or not registration succeeded.
func (w *WiFi) addProfile(ssid, password string) error {
	artifact, err := w.profiles().Materialize(ssid, password)
	if err != nil {
		return &ConnectionError{Kind: KindAddNetworkProfileFailed, Err: err}
	}
	defer artifact.Close()

	if err := w.Port.AddProfile(artifact.Path); err != nil {
		return &ConnectionError{Kind: KindAddNetworkProfileFailed, Err: err}
	}
	return nil
}

// Disconnect leaves the current network. The Connection record is left as
// is.
func (w *WiFi) Disconnect() (bool, error) {
	out, err := w.Port.Disconnect()
	if err != nil {
		return false, &ConnectionError{Kind: KindFailedToDisconnect, Detail: err.Error(), Err: err}
	}
	return strings.Contains(out, w.disconnectKeyword()), nil
}

// IsConnectedTo reports whether the interface status shows ssid. A failed
// status query counts as not connected.
func (w *WiFi) IsConnectedTo(ssid string) bool {
	ok, _ := w.isConnectedTo(ssid)
	return ok
}

func (w *WiFi) isConnectedTo(ssid string) (bool, error) {
	status, err := w.Port.QueryInterfaces()
	if err != nil {
		return false, err
	}
	return w.matcher().Matches(status, ssid), nil
}

// Status returns the parsed interface status.
func (w *WiFi) Status() ([]InterfaceStatus, error) {
	status, err := w.Port.QueryInterfaces()
	if err != nil {
		return nil, err
	}
	return ParseInterfaces(status), nil
}
