//go:build mock

package main

import (
	"log/slog"

	"github.com/shazow/wlanjoin/wifi"
	"github.com/shazow/wlanjoin/wifi/mock"
)

func GetBackend(cfg Config, logger *slog.Logger) (wifi.ControlPort, error) {
	p := mock.New()
	if cfg.Interface != "" {
		p.InterfaceName = cfg.Interface
	}
	return p, nil
}
