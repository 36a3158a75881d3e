package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/shazow/wlanjoin/internal/log"
	"github.com/shazow/wlanjoin/wifi"
)

var (
	// Version is the version of the application. It is set at build time.
	Version string = "dev"
)

const debugLogFile = "wlanjoin-debug.log"

// main is the entry point of the application
func main() {
	var (
		rootFlagSet = flag.NewFlagSet("wlanjoin", flag.ExitOnError)
		configPath  = rootFlagSet.String("config", "", "path to config toml file (env: WLANJOIN_CONFIG)")
		iface       = rootFlagSet.String("interface", "", "wireless device to use, e.g. wlan0 or en0 (ignored by netsh)")
		profileDir  = rootFlagSet.String("profile-dir", "", "directory for staged profile files")
		matcher     = rootFlagSet.String("matcher", "", "status matcher (substring, field)")
		codePage    = rootFlagSet.String("codepage", "", "console code page of netsh output, e.g. 437 or 850")
		verbose     = rootFlagSet.Bool("verbose", false, "print recent log records when a command fails")
		debug       = rootFlagSet.Bool("debug", false, "write a debug log to "+debugLogFile)
		version     = rootFlagSet.Bool("version", false, "display version")
	)

	var wf *wifi.WiFi
	var root *ffcli.Command

	connectFlagSet := flag.NewFlagSet("connect", flag.ExitOnError)
	connectPassphrase := connectFlagSet.String("passphrase", "", "passphrase for the network (env: WLANJOIN_PASSPHRASE)")
	connectCmd := &ffcli.Command{
		Name:       "connect",
		ShortUsage: "wlanjoin connect [-passphrase <passphrase>] <ssid>",
		ShortHelp:  "Connect to a wifi network",
		FlagSet:    connectFlagSet,
		Options:    []ff.Option{ff.WithEnvVarPrefix("WLANJOIN")},
		Exec: func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("connect requires an ssid")
			}
			return runConnect(os.Stdout, wf, args[0], *connectPassphrase)
		},
	}

	disconnectCmd := &ffcli.Command{
		Name:      "disconnect",
		ShortHelp: "Disconnect from the current wifi network",
		Exec: func(ctx context.Context, args []string) error {
			return runDisconnect(os.Stdout, wf)
		},
	}

	statusFlagSet := flag.NewFlagSet("status", flag.ExitOnError)
	statusJSON := statusFlagSet.Bool("json", false, "output in JSON format")
	statusCmd := &ffcli.Command{
		Name:      "status",
		ShortHelp: "Show wireless interface status",
		FlagSet:   statusFlagSet,
		Exec: func(ctx context.Context, args []string) error {
			return runStatus(os.Stdout, *statusJSON, wf)
		},
	}

	qrFlagSet := flag.NewFlagSet("qr", flag.ExitOnError)
	qrPassphrase := qrFlagSet.String("passphrase", "", "passphrase for the network (env: WLANJOIN_PASSPHRASE)")
	qrHidden := qrFlagSet.Bool("hidden", false, "network is hidden")
	qrCmd := &ffcli.Command{
		Name:       "qr",
		ShortUsage: "wlanjoin qr [-passphrase <passphrase>] [-hidden] <ssid>",
		ShortHelp:  "Print a QR code for joining a wifi network",
		FlagSet:    qrFlagSet,
		Options:    []ff.Option{ff.WithEnvVarPrefix("WLANJOIN")},
		Exec: func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("qr requires an ssid")
			}
			return runQR(os.Stdout, args[0], *qrPassphrase, *qrHidden)
		},
	}

	root = &ffcli.Command{
		ShortUsage:  "wlanjoin [flags] <subcommand> [args...]",
		FlagSet:     rootFlagSet,
		Subcommands: []*ffcli.Command{connectCmd, disconnectCmd, statusCmd, qrCmd},
		Exec: func(ctx context.Context, args []string) error {
			fmt.Fprintln(os.Stderr, ffcli.DefaultUsageFunc(root))
			return nil
		},
	}

	// Parse root flags first so the config and logger are ready before a
	// subcommand runs. root.Run will parse them again, but that's fine.
	err := ff.Parse(rootFlagSet, os.Args[1:],
		ff.WithEnvVarPrefix("WLANJOIN"),
		ff.WithIgnoreUndefined(true), // Ignore subcommand flags for now
	)
	if err != nil {
		if err == flag.ErrHelp {
			// ff.Parse doesn't print usage on ErrHelp, so we do it manually.
			root.FlagSet.Usage()
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error parsing flags: %v\n", err)
		os.Exit(1)
	}

	if *version {
		fmt.Println(Version)
		os.Exit(0)
	}

	logger, closeLog, err := initLogger(*debug, *verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening debug log: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	cfg := DefaultConfig()
	if err := LoadConfigFile(*configPath, &cfg); err != nil {
		fail(fmt.Errorf("error loading config: %w", err), *verbose)
	}
	overrideString(&cfg.Interface, *iface)
	overrideString(&cfg.ProfileDir, *profileDir)
	overrideString(&cfg.Matcher, *matcher)
	overrideString(&cfg.CodePage, *codePage)

	port, err := GetBackend(cfg, logger)
	if err != nil {
		fail(err, *verbose)
	}
	wf = wifi.New(port, logger)
	if err := cfg.Apply(wf); err != nil {
		fail(err, *verbose)
	}

	if err := root.ParseAndRun(context.Background(), os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fail(err, *verbose)
	}
}

func overrideString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// initLogger installs the default logger. With debug set, every record is
// also written to a fresh debug log file.
func initLogger(debug, verbose bool) (*slog.Logger, func(), error) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	if !debug {
		return log.Init(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), func() {}, nil
	}

	// Use O_TRUNC to clear the log file on each new run
	f, err := os.OpenFile(debugLogFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, nil, err
	}
	logger := log.Init(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Debug("--- wlanjoin debug log ---", "version", Version)
	return logger, func() { f.Close() }, nil
}

func fail(err error, verbose bool) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	if verbose {
		printLogs(os.Stderr, log.Logs())
	}
	os.Exit(1)
}
