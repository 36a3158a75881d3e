package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/shazow/wlanjoin/wifi"
	"github.com/shazow/wlanjoin/wifi/mock"
)

func newMockWiFi() (*wifi.WiFi, *mock.Port) {
	port := mock.New()
	port.ActionSleep = 0
	return wifi.New(port, nil), port
}

func TestRunConnect(t *testing.T) {
	w, port := newMockWiFi()
	var buf bytes.Buffer

	if err := runConnect(&buf, w, "Dunder MiffLAN", "scranton"); err != nil {
		t.Fatalf("runConnect() failed: %v", err)
	}
	if got, want := buf.String(), "connected to Dunder MiffLAN\n"; got != want {
		t.Errorf("runConnect() output = %q, want %q", got, want)
	}
	if port.Active != "Dunder MiffLAN" {
		t.Errorf("port.Active = %q, want %q", port.Active, "Dunder MiffLAN")
	}
}

func TestRunConnectNotAssociated(t *testing.T) {
	w, _ := newMockWiFi()
	var buf bytes.Buffer

	err := runConnect(&buf, w, "Dunder MiffLAN", "wrong")
	if !errors.Is(err, errNotAssociated) {
		t.Fatalf("runConnect() error = %v, want errNotAssociated", err)
	}
	if !strings.Contains(buf.String(), "could not associate with Dunder MiffLAN") {
		t.Errorf("runConnect() output = %q", buf.String())
	}
}

func TestRunConnectError(t *testing.T) {
	w, port := newMockWiFi()
	port.WirelessEnabled = false
	var buf bytes.Buffer

	err := runConnect(&buf, w, "Dunder MiffLAN", "scranton")
	if !errors.Is(err, wifi.ErrWirelessDisabled) {
		t.Fatalf("runConnect() error = %v, want ErrWirelessDisabled", err)
	}
	if buf.Len() != 0 {
		t.Errorf("runConnect() wrote %q on error", buf.String())
	}
}

func TestRunDisconnect(t *testing.T) {
	w, _ := newMockWiFi()
	var buf bytes.Buffer

	// The default keyword is lowercase and the simulated output starts with
	// "Disconnection", so the disconnect goes unconfirmed.
	if err := runDisconnect(&buf, w); !errors.Is(err, errNotConfirmed) {
		t.Fatalf("runDisconnect() error = %v, want errNotConfirmed", err)
	}
	if got, want := buf.String(), "disconnect not confirmed\n"; got != want {
		t.Errorf("runDisconnect() output = %q, want %q", got, want)
	}

	buf.Reset()
	w.DisconnectKeyword = "Disconnection request"
	if err := runDisconnect(&buf, w); err != nil {
		t.Fatalf("runDisconnect() failed: %v", err)
	}
	if got, want := buf.String(), "disconnected\n"; got != want {
		t.Errorf("runDisconnect() output = %q, want %q", got, want)
	}
}

func TestRunDisconnectError(t *testing.T) {
	w, port := newMockWiFi()
	port.DisconnectError = errors.New("spawn failed")

	err := runDisconnect(&bytes.Buffer{}, w)
	if !errors.Is(err, wifi.ErrFailedToDisconnect) {
		t.Fatalf("runDisconnect() error = %v, want ErrFailedToDisconnect", err)
	}
}

func TestRunStatus(t *testing.T) {
	w, port := newMockWiFi()
	port.Active = "Dunder MiffLAN"
	var buf bytes.Buffer

	if err := runStatus(&buf, false, w); err != nil {
		t.Fatalf("runStatus() failed: %v", err)
	}
	if got, want := buf.String(), "Wi-Fi\tconnected\tDunder MiffLAN\t87%\n"; got != want {
		t.Errorf("runStatus() output = %q, want %q", got, want)
	}

	port.Active = ""
	buf.Reset()
	if err := runStatus(&buf, false, w); err != nil {
		t.Fatalf("runStatus() failed: %v", err)
	}
	if got, want := buf.String(), "Wi-Fi\tdisconnected\n"; got != want {
		t.Errorf("runStatus() output = %q, want %q", got, want)
	}
}

func TestRunStatusNoInterfaces(t *testing.T) {
	w, port := newMockWiFi()
	port.WirelessEnabled = false
	var buf bytes.Buffer

	if err := runStatus(&buf, false, w); err != nil {
		t.Fatalf("runStatus() failed: %v", err)
	}
	if got, want := buf.String(), "no wireless interfaces\n"; got != want {
		t.Errorf("runStatus() output = %q, want %q", got, want)
	}
}

func TestRunStatusJSON(t *testing.T) {
	w, port := newMockWiFi()
	port.Active = "Dunder MiffLAN"
	var buf bytes.Buffer

	if err := runStatus(&buf, true, w); err != nil {
		t.Fatalf("runStatus() failed: %v", err)
	}

	var ifaces []wifi.InterfaceStatus
	if err := json.Unmarshal(buf.Bytes(), &ifaces); err != nil {
		t.Fatalf("failed to unmarshal json: %v", err)
	}
	if len(ifaces) != 1 {
		t.Fatalf("got %d interfaces, want 1", len(ifaces))
	}
	if ifaces[0].SSID != "Dunder MiffLAN" || ifaces[0].State != "connected" {
		t.Errorf("unexpected interface: %+v", ifaces[0])
	}
}

func TestRunStatusError(t *testing.T) {
	w, port := newMockWiFi()
	port.QueryError = errors.New("netsh missing")

	if err := runStatus(&bytes.Buffer{}, false, w); err == nil {
		t.Fatal("runStatus() succeeded, want error")
	}
}

func TestRunQR(t *testing.T) {
	var buf bytes.Buffer
	if err := runQR(&buf, "Dunder MiffLAN", "scranton", false); err != nil {
		t.Fatalf("runQR() failed: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("runQR() wrote nothing")
	}
}

func TestWifiURI(t *testing.T) {
	tests := []struct {
		name     string
		ssid     string
		password string
		hidden   bool
		want     string
	}{
		{"secured", "Home", "hunter2", false, "WIFI:S:Home;T:WPA;P:hunter2;;"},
		{"open", "Cafe", "", false, "WIFI:S:Cafe;T:nopass;;"},
		{"hidden", "Attic", "pw", true, "WIFI:S:Attic;T:WPA;P:pw;H:true;;"},
		{"escaped", `a;b,c:d"e\f`, "p;w", false, `WIFI:S:a\;b\,c\:d\"e\\f;T:WPA;P:p\;w;;`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WifiURI(tt.ssid, tt.password, tt.hidden); got != tt.want {
				t.Errorf("WifiURI() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrintLogs(t *testing.T) {
	r := slog.NewRecord(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), slog.LevelDebug, "adding profile", 0)
	r.AddAttrs(slog.String("ssid", "Home"))

	var buf bytes.Buffer
	printLogs(&buf, []slog.Record{r})

	if got, want := buf.String(), "03:04:05.000 DEBUG adding profile ssid=Home\n"; got != want {
		t.Errorf("printLogs() = %q, want %q", got, want)
	}
}
