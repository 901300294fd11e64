// Package main is the entry point for the modal editor.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dshills/modal/internal/app"
	"github.com/dshills/modal/internal/term"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Shutdown()

	t, err := term.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	if err := application.SetTerminal(t); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to set terminal: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() app.Options {
	opts := app.Options{Clipboard: true}
	var showVersion, noWatch bool

	flag.StringVar(&opts.ConfigPath, "config", defaultConfigPath(), "Path to configuration file (TOML or YAML)")
	flag.StringVar(&opts.ConfigPath, "c", defaultConfigPath(), "Path to configuration file (shorthand)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	flag.BoolVar(&opts.ReadOnly, "readonly", false, "Open the file in read-only mode")
	flag.BoolVar(&opts.ReadOnly, "R", false, "Open the file in read-only mode (shorthand)")
	flag.BoolVar(&noWatch, "no-watch", false, "Do not reload the configuration when it changes")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "modal - modal key interpretation editor\n\n")
		fmt.Fprintf(os.Stderr, "Usage: modal [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("modal %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}
	if flag.NArg() > 1 {
		flag.Usage()
		os.Exit(2)
	}
	opts.File = flag.Arg(0)
	opts.Watch = !noWatch
	return opts
}

// defaultConfigPath returns modal.toml in the user config directory.
func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "modal", "modal.toml")
}
