package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/Veraticus/stretchia/pkg/config"
	"github.com/Veraticus/stretchia/pkg/logging"
)

func main() {
	var (
		configPath string
		noTray     bool
		listen     string
		dbPath     string
		quiet      bool
		help       bool
	)

	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.BoolVar(&noTray, "no-tray", false, "Run without the system tray icon")
	flag.StringVar(&listen, "listen", "", "Address for the local HTTP surface (empty string disables)")
	flag.StringVar(&dbPath, "db", "", "Path to the SQLite database")
	flag.BoolVar(&quiet, "quiet", false, "Disable push reminders")
	flag.BoolVar(&help, "help", false, "Show help message")
	flag.Parse()

	if help {
		printUsage()
		os.Exit(0)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Command line flags win over file and environment.
	if noTray {
		cfg.Tray.Enabled = false
	}
	if flag.CommandLine.Changed("listen") {
		cfg.API.Address = listen
	}
	if dbPath != "" {
		cfg.Storage.Path = dbPath
	}
	if quiet {
		cfg.Quiet = true
	}

	logger := logging.New(cfg.LogLevel, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := NewDependencies(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating dependencies: %v\n", err)
		os.Exit(1)
	}

	app := NewApplication(deps)
	err = app.Run(ctx)
	deps.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("stretchia - sitting time tracker and stretch reminder")
	fmt.Println()
	fmt.Println("Usage: stretchia [OPTIONS]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  STRETCHIA_CONFIG          Path to config file")
	fmt.Println("  STRETCHIA_DB              Path to the SQLite database")
	fmt.Println("  STRETCHIA_STORAGE_DRIVER  sqlite or postgres (default: sqlite)")
	fmt.Println("  STRETCHIA_POSTGRES_URL    Postgres connection string")
	fmt.Println("  STRETCHIA_LISTEN          HTTP address (default: 127.0.0.1:8765)")
	fmt.Println("  STRETCHIA_NTFY_TOPIC      Ntfy topic for reminders")
	fmt.Println("  STRETCHIA_NTFY_SERVER     Ntfy server URL (default: https://ntfy.sh)")
	fmt.Println("  STRETCHIA_QUIET           Disable reminders (true/false)")
	fmt.Println("  STRETCHIA_TRAY            Show the tray icon (true/false)")
	fmt.Println("  STRETCHIA_STATUS_LINE     Draw the terminal status line (true/false)")
	fmt.Println("  STRETCHIA_KAFKA_BROKERS   Export sessions to these brokers (comma-separated)")
	fmt.Println("  STRETCHIA_KAFKA_TOPIC     Export topic (default: stretchia.sessions)")
	fmt.Println("  STRETCHIA_DEBUG           Debug logging (1)")
	fmt.Println()
	fmt.Println("Configuration file: ~/.config/stretchia/config.yaml")
	fmt.Println("Reminder thresholds are stored settings; change them with PUT /api/settings.")
}
