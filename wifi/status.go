package wifi

import (
	"bufio"
	"strings"
)

// InterfaceStatus is one interface block of `wlan show interfaces` output.
type InterfaceStatus struct {
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	State          string `json:"state,omitempty"`
	SSID           string `json:"ssid,omitempty"`
	BSSID          string `json:"bssid,omitempty"`
	Authentication string `json:"authentication,omitempty"`
	Signal         string `json:"signal,omitempty"`
	Profile        string `json:"profile,omitempty"`
}

// ParseInterfaces parses `key : value` interface status text. A "Name" key
// starts a new interface; unknown keys are ignored.
func ParseInterfaces(output string) []InterfaceStatus {
	var ifaces []InterfaceStatus
	var cur *InterfaceStatus

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if key == "Name" {
			ifaces = append(ifaces, InterfaceStatus{Name: value})
			cur = &ifaces[len(ifaces)-1]
			continue
		}
		if cur == nil {
			continue
		}
		switch key {
		case "Description":
			cur.Description = value
		case "State":
			cur.State = value
		case "SSID":
			cur.SSID = value
		case "BSSID":
			cur.BSSID = value
		case "Authentication":
			cur.Authentication = value
		case "Signal":
			cur.Signal = value
		case "Profile":
			cur.Profile = value
		}
	}
	return ifaces
}

// StatusMatcher decides whether status output shows ssid as associated.
type StatusMatcher interface {
	Matches(status, ssid string) bool
}

// SubstringMatcher reports a match whenever ssid appears anywhere in the
// status text. An SSID that is a substring of another field or of another
// network's name also matches.
type SubstringMatcher struct{}

func (SubstringMatcher) Matches(status, ssid string) bool {
	return strings.Contains(status, ssid)
}

// FieldMatcher only matches an interface whose SSID field equals ssid.
type FieldMatcher struct{}

func (FieldMatcher) Matches(status, ssid string) bool {
	for _, iface := range ParseInterfaces(status) {
		if iface.SSID != "" && iface.SSID == ssid {
			return true
		}
	}
	return false
}

// MatcherByName returns the matcher for a config value: "substring" (or
// empty) or "field".
func MatcherByName(name string) (StatusMatcher, bool) {
	switch name {
	case "", "substring":
		return SubstringMatcher{}, true
	case "field":
		return FieldMatcher{}, true
	}
	return nil, false
}
