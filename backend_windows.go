//go:build windows && !mock

package main

import (
	"log/slog"

	"github.com/shazow/wlanjoin/wifi"
	"github.com/shazow/wlanjoin/wifi/netsh"
)

func GetBackend(cfg Config, logger *slog.Logger) (wifi.ControlPort, error) {
	decoder, err := netsh.CodePage(cfg.CodePage)
	if err != nil {
		return nil, err
	}
	p := netsh.New(logger)
	p.Decoder = decoder
	return p, nil
}
