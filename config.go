package main

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/shazow/wlanjoin/wifi"
)

// Config holds the settings that shape how the WiFi handle is built.
type Config struct {
	// Interface names the wireless device to drive, such as "wlan0" or
	// "en0". Empty picks the first one. netsh ignores it.
	Interface         string
	ProfileDir        string
	ProfileTemplate   string
	Matcher           string
	DisconnectKeyword string
	CodePage          string
}

// configFile represents the structure of the config TOML file.
// We use pointers to strings so we can distinguish between a missing value
// and an empty string. This allows users to override only what they want.
type configFile struct {
	Interface         *string `toml:"interface,omitempty"`
	ProfileDir        *string `toml:"profile_dir,omitempty"`
	ProfileTemplate   *string `toml:"profile_template,omitempty"`
	Matcher           *string `toml:"matcher,omitempty"`
	DisconnectKeyword *string `toml:"disconnect_keyword,omitempty"`
	CodePage          *string `toml:"codepage,omitempty"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		Matcher:           "substring",
		DisconnectKeyword: wifi.DefaultDisconnectKeyword,
	}
}

// LoadConfig reads TOML from r and overrides the matching fields of cfg.
func LoadConfig(r io.Reader, cfg *Config) error {
	var cf configFile
	if _, err := toml.NewDecoder(r).Decode(&cf); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	if cf.Interface != nil {
		cfg.Interface = *cf.Interface
	}
	if cf.ProfileDir != nil {
		cfg.ProfileDir = *cf.ProfileDir
	}
	if cf.ProfileTemplate != nil {
		cfg.ProfileTemplate = *cf.ProfileTemplate
	}
	if cf.Matcher != nil {
		cfg.Matcher = *cf.Matcher
	}
	if cf.DisconnectKeyword != nil {
		cfg.DisconnectKeyword = *cf.DisconnectKeyword
	}
	if cf.CodePage != nil {
		cfg.CodePage = *cf.CodePage
	}

	if _, ok := wifi.MatcherByName(cfg.Matcher); !ok {
		return fmt.Errorf("unknown matcher %q", cfg.Matcher)
	}
	return nil
}

// LoadConfigFile loads the TOML file at path into cfg. If the path is empty,
// it does nothing.
func LoadConfigFile(path string, cfg *Config) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return LoadConfig(f, cfg)
}

// Apply configures w according to cfg. A ProfileTemplate path is read here so
// a bad path fails before any command runs.
func (cfg Config) Apply(w *wifi.WiFi) error {
	profiles := wifi.TempProfiles{Dir: cfg.ProfileDir}
	if cfg.ProfileTemplate != "" {
		data, err := os.ReadFile(cfg.ProfileTemplate)
		if err != nil {
			return fmt.Errorf("failed to read profile template: %w", err)
		}
		profiles.Template = string(data)
	}
	w.Profiles = profiles

	matcher, ok := wifi.MatcherByName(cfg.Matcher)
	if !ok {
		return fmt.Errorf("unknown matcher %q", cfg.Matcher)
	}
	w.Matcher = matcher

	if cfg.DisconnectKeyword != "" {
		w.DisconnectKeyword = cfg.DisconnectKeyword
	}
	return nil
}
