//go:build !linux && !darwin && !windows && !mock

package main

import (
	"fmt"
	"log/slog"

	"github.com/shazow/wlanjoin/wifi"
)

// GetBackend returns an error for unsupported operating systems.
func GetBackend(cfg Config, logger *slog.Logger) (wifi.ControlPort, error) {
	return nil, fmt.Errorf("unsupported operating system: %w", wifi.ErrNotSupported)
}
