package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/shazow/wlanjoin/wifi"
)

var (
	errNotAssociated = errors.New("network did not associate")
	errNotConfirmed  = errors.New("disconnect was not confirmed")
)

// statusReader is the part of wifi.WiFi that reports interface status.
type statusReader interface {
	Status() ([]wifi.InterfaceStatus, error)
}

func runConnect(w io.Writer, c wifi.Connectivity, ssid, passphrase string) error {
	ok, err := c.Connect(ssid, passphrase)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", ssid, err)
	}
	if !ok {
		fmt.Fprintf(w, "could not associate with %s\n", ssid)
		return fmt.Errorf("%s: %w", ssid, errNotAssociated)
	}
	fmt.Fprintf(w, "connected to %s\n", ssid)
	return nil
}

func runDisconnect(w io.Writer, c wifi.Connectivity) error {
	ok, err := c.Disconnect()
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(w, "disconnect not confirmed")
		return errNotConfirmed
	}
	fmt.Fprintln(w, "disconnected")
	return nil
}

func runStatus(w io.Writer, asJSON bool, s statusReader) error {
	ifaces, err := s.Status()
	if err != nil {
		return fmt.Errorf("failed to query interfaces: %w", err)
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(ifaces)
	}

	if len(ifaces) == 0 {
		fmt.Fprintln(w, "no wireless interfaces")
		return nil
	}
	for _, iface := range ifaces {
		if iface.SSID == "" {
			fmt.Fprintf(w, "%s\t%s\n", iface.Name, iface.State)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s", iface.Name, iface.State, iface.SSID)
		if iface.Signal != "" {
			fmt.Fprintf(w, "\t%s", iface.Signal)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func runQR(w io.Writer, ssid, passphrase string, hidden bool) error {
	code, err := GenerateWifiQRCode(ssid, passphrase, hidden)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}
	fmt.Fprint(w, code)
	return nil
}

// printLogs writes the retained log records, oldest first.
func printLogs(w io.Writer, records []slog.Record) {
	for _, r := range records {
		fmt.Fprintf(w, "%s %s %s", r.Time.Format("15:04:05.000"), r.Level, r.Message)
		r.Attrs(func(a slog.Attr) bool {
			fmt.Fprintf(w, " %s", a)
			return true
		})
		fmt.Fprintln(w)
	}
}
