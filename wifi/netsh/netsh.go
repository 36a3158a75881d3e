// Package netsh drives Windows WLAN AutoConfig through the netsh utility.
package netsh

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/shazow/wlanjoin/wifi"
)

const noInterfaceMessage = "There is no wireless interface on the system."

// Runner runs a command to completion and returns its standard output.
type Runner interface {
	Run(name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run wraps exec.Command to capture stderr and wrap errors. On an
// *exec.ExitError the captured stdout is still returned.
func (ExecRunner) Run(name string, args ...string) ([]byte, error) {
	c := exec.Command(name, args...)
	var stderr strings.Builder
	c.Stderr = &stderr
	out, err := c.Output()
	if err != nil {
		return out, fmt.Errorf("failed to run command: %s: %w: %s", c.String(), err, stderr.String())
	}
	return out, nil
}

// Port implements wifi.ControlPort by running netsh.
type Port struct {
	Runner Runner
	// Command defaults to "netsh".
	Command string
	// Decoder converts netsh output from the console code page. If nil,
	// output is treated as UTF-8 and invalid bytes are replaced.
	Decoder *encoding.Decoder

	logger *slog.Logger
}

var _ wifi.ControlPort = (*Port)(nil)

// New creates a netsh.Port that shells out with os/exec.
func New(logger *slog.Logger) *Port {
	if logger == nil {
		logger = slog.Default()
	}
	return &Port{
		Runner:  ExecRunner{},
		Command: "netsh",
		logger:  logger,
	}
}

// CodePage returns a decoder for a Windows console code page such as "437"
// or "850". An empty name or "65001" selects UTF-8 and returns nil.
func CodePage(name string) (*encoding.Decoder, error) {
	var cm *charmap.Charmap
	switch name {
	case "", "65001":
		return nil, nil
	case "437":
		cm = charmap.CodePage437
	case "850":
		cm = charmap.CodePage850
	case "852":
		cm = charmap.CodePage852
	case "866":
		cm = charmap.CodePage866
	case "1250":
		cm = charmap.Windows1250
	case "1251":
		cm = charmap.Windows1251
	case "1252":
		cm = charmap.Windows1252
	default:
		return nil, fmt.Errorf("code page %s: %w", name, wifi.ErrNotSupported)
	}
	return cm.NewDecoder(), nil
}

// run invokes netsh. Only a failure to launch is reported as an error; a
// command that ran and exited non-zero returns its output.
func (p *Port) run(args ...string) (string, error) {
	name := p.Command
	if name == "" {
		name = "netsh"
	}
	logger := p.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("running netsh", "args", args)

	out, err := p.Runner.Run(name, args...)
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return "", err
		}
		logger.Debug("netsh exited with an error", "args", args, "error", err)
	}
	return p.decode(out), nil
}

func (p *Port) decode(out []byte) string {
	if p.Decoder != nil {
		if b, err := p.Decoder.Bytes(out); err == nil {
			return string(b)
		}
	}
	return strings.ToValidUTF8(string(out), "�")
}

// IsWirelessEnabled reports whether netsh lists any wireless interface.
func (p *Port) IsWirelessEnabled() (bool, error) {
	out, err := p.run("wlan", "show", "interfaces")
	if err != nil {
		return false, err
	}
	return !strings.Contains(out, noInterfaceMessage), nil
}

func (p *Port) AddProfile(path string) error {
	_, err := p.run("wlan", "add", "profile", "filename="+path)
	return err
}

func (p *Port) QueryInterfaces() (string, error) {
	return p.run("wlan", "show", "interfaces")
}

func (p *Port) ConnectByName(name string) error {
	_, err := p.run("wlan", "connect", "name="+name)
	return err
}

func (p *Port) Disconnect() (string, error) {
	return p.run("wlan", "disconnect")
}
