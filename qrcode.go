package main

import (
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// EscapeWifiString handles the special character escaping for SSID and Password.
func EscapeWifiString(s string) string {
	// A replacer is more efficient than calling strings.Replace multiple times.
	r := strings.NewReplacer(
		`\`, `\\`,
		`;`, `\;`,
		`,`, `\,`,
		`:`, `\:`,
		`"`, `\"`,
	)
	return r.Replace(s)
}

// WifiURI builds the WIFI: string understood by phone cameras. An empty
// password marks the network as open.
func WifiURI(ssid, password string, isHidden bool) string {
	var b strings.Builder

	b.WriteString("WIFI:S:")
	b.WriteString(EscapeWifiString(ssid))
	b.WriteString(";")

	if password == "" {
		b.WriteString("T:nopass;")
	} else {
		b.WriteString("T:WPA;P:")
		b.WriteString(EscapeWifiString(password))
		b.WriteString(";")
	}

	if isHidden {
		b.WriteString("H:true;")
	}

	b.WriteString(";")
	return b.String()
}

// GenerateWifiQRCode returns a terminal-friendly QR code for joining ssid.
func GenerateWifiQRCode(ssid, password string, isHidden bool) (string, error) {
	q, err := qrcode.New(WifiURI(ssid, password, isHidden), qrcode.Medium)
	if err != nil {
		return "", err
	}
	return q.ToSmallString(false), nil
}
