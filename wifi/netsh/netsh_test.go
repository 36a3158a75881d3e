package netsh

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/shazow/wlanjoin/wifi"
)

// fakeRunner returns canned output for each invocation and records argv.
type fakeRunner struct {
	calls [][]string
	out   map[string]string
	err   error
}

func (f *fakeRunner) Run(name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	return []byte(f.out[strings.Join(args, " ")]), f.err
}

func newTestPort(r Runner) *Port {
	p := New(nil)
	p.Runner = r
	return p
}

func TestCommandArguments(t *testing.T) {
	r := &fakeRunner{}
	p := newTestPort(r)

	if err := p.AddProfile(`C:\Temp\wlan-profile-1.xml`); err != nil {
		t.Fatal(err)
	}
	if _, err := p.QueryInterfaces(); err != nil {
		t.Fatal(err)
	}
	if err := p.ConnectByName("Home 5G"); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Disconnect(); err != nil {
		t.Fatal(err)
	}

	want := [][]string{
		{"netsh", "wlan", "add", "profile", `filename=C:\Temp\wlan-profile-1.xml`},
		{"netsh", "wlan", "show", "interfaces"},
		{"netsh", "wlan", "connect", "name=Home 5G"},
		{"netsh", "wlan", "disconnect"},
	}
	if diff := cmp.Diff(want, r.calls); diff != "" {
		t.Fatalf("unexpected commands (-want +got):\n%s", diff)
	}
}

func TestExitErrorIsNotFailure(t *testing.T) {
	r := &fakeRunner{
		out: map[string]string{"wlan disconnect": "The request is not supported.\n"},
		err: fmt.Errorf("failed to run command: %w", &exec.ExitError{}),
	}
	p := newTestPort(r)

	if err := p.AddProfile("profile.xml"); err != nil {
		t.Errorf("AddProfile() returned %v for a non-zero exit", err)
	}
	if err := p.ConnectByName("net"); err != nil {
		t.Errorf("ConnectByName() returned %v for a non-zero exit", err)
	}
	out, err := p.Disconnect()
	if err != nil {
		t.Errorf("Disconnect() returned %v for a non-zero exit", err)
	}
	if out != "The request is not supported.\n" {
		t.Errorf("Disconnect() = %q", out)
	}
}

func TestSpawnFailure(t *testing.T) {
	spawnErr := errors.New(`exec: "netsh": executable file not found in $PATH`)
	p := newTestPort(&fakeRunner{err: spawnErr})

	if err := p.AddProfile("profile.xml"); !errors.Is(err, spawnErr) {
		t.Errorf("AddProfile() = %v, want %v", err, spawnErr)
	}
	if _, err := p.QueryInterfaces(); !errors.Is(err, spawnErr) {
		t.Errorf("QueryInterfaces() = %v, want %v", err, spawnErr)
	}
	if err := p.ConnectByName("net"); !errors.Is(err, spawnErr) {
		t.Errorf("ConnectByName() = %v, want %v", err, spawnErr)
	}
	if _, err := p.Disconnect(); !errors.Is(err, spawnErr) {
		t.Errorf("Disconnect() = %v, want %v", err, spawnErr)
	}
	if _, err := p.IsWirelessEnabled(); !errors.Is(err, spawnErr) {
		t.Errorf("IsWirelessEnabled() = %v, want %v", err, spawnErr)
	}
}

func TestIsWirelessEnabled(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want bool
	}{
		{name: "no interface", out: "There is no wireless interface on the system.\r\n", want: false},
		{name: "one interface", out: "There is 1 interface on the system:\r\n\r\n    Name : Wi-Fi\r\n", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPort(&fakeRunner{out: map[string]string{"wlan show interfaces": tt.out}})
			got, err := p.IsWirelessEnabled()
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("IsWirelessEnabled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	// "Café" in code page 850 and as invalid UTF-8.
	raw := "    SSID                   : Caf\x82\r\n"

	p := newTestPort(&fakeRunner{out: map[string]string{"wlan show interfaces": raw}})
	out, err := p.QueryInterfaces()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Caf\uFFFD") {
		t.Errorf("expected lossy decoding, got %q", out)
	}

	p.Decoder, err = CodePage("850")
	if err != nil {
		t.Fatal(err)
	}
	out, err = p.QueryInterfaces()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Café") {
		t.Errorf("expected code page 850 decoding, got %q", out)
	}
}

func TestCodePage(t *testing.T) {
	for _, name := range []string{"", "65001"} {
		d, err := CodePage(name)
		if err != nil || d != nil {
			t.Errorf("CodePage(%q) = %v, %v; want nil, nil", name, d, err)
		}
	}
	if _, err := CodePage("932"); !errors.Is(err, wifi.ErrNotSupported) {
		t.Errorf("CodePage(932) = %v, want ErrNotSupported", err)
	}
}

func TestExecRunner(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}

	out, err := ExecRunner{}.Run("sh", "-c", "echo partial; echo oops >&2; exit 3")
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected an *exec.ExitError, got %v", err)
	}
	if !strings.Contains(err.Error(), "oops") {
		t.Errorf("expected stderr in error, got %q", err)
	}
	if string(out) != "partial\n" {
		t.Errorf("Run() output = %q", out)
	}

	_, err = ExecRunner{}.Run("wlanjoin-test-no-such-command")
	if err == nil || errors.As(err, &exitErr) {
		t.Errorf("expected a spawn error, got %v", err)
	}
}
