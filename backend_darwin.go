//go:build darwin && !mock

package main

import (
	"log/slog"

	"github.com/shazow/wlanjoin/wifi"
	"github.com/shazow/wlanjoin/wifi/darwin"
)

func GetBackend(cfg Config, logger *slog.Logger) (wifi.ControlPort, error) {
	p, err := darwin.New(cfg.Interface, logger)
	if err != nil {
		return nil, err
	}
	return p, nil
}
