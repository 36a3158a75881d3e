//go:build linux && !mock

package main

import (
	"log/slog"

	"github.com/shazow/wlanjoin/wifi"
	"github.com/shazow/wlanjoin/wifi/networkmanager"
)

func GetBackend(cfg Config, logger *slog.Logger) (wifi.ControlPort, error) {
	p, err := networkmanager.New(cfg.Interface, logger)
	if err != nil {
		return nil, err
	}
	return p, nil
}
