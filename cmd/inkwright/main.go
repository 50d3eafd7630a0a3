// Package main is the entry point for the Inkwright framework host.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/inkwright/inkwright/internal/app"
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

	// Ensure cleanup on all exit paths
	defer application.Close()

	// Handle signals for graceful shutdown
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-signals
		application.Shutdown()
	}()

	if err := application.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	return 0
}

func parseFlags() app.Options {
	var opts app.Options
	var components string
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.ConfigDir, "config-dir", "", "Directory for application files")
	flag.StringVar(&opts.ConfigDir, "c", "", "Directory for application files (shorthand)")
	flag.StringVar(&opts.StatePath, "state-path", "", "Path to the state snapshot file")
	flag.StringVar(&opts.StateBackend, "state-backend", "file", "State backend (file, sqlite, memory)")
	flag.StringVar(&components, "components", "", "Comma-separated component manifest directories")
	flag.StringVar(&components, "p", "", "Comma-separated component manifest directories (shorthand)")
	flag.StringVar(&opts.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Inkwright - writing studio application framework\n\n")
		fmt.Fprintf(os.Stderr, "Usage: inkwright [options] [component-dirs...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  inkwright                          Run with the built-in components\n")
		fmt.Fprintf(os.Stderr, "  inkwright ./components             Load component manifests\n")
		fmt.Fprintf(os.Stderr, "  inkwright -state-backend sqlite    Keep state in SQLite\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("Inkwright %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	// Validate log level
	switch opts.LogLevel {
	case "debug", "info", "warn", "error":
		// Valid
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
		os.Exit(1)
	}

	// Validate state backend
	switch opts.StateBackend {
	case "file", "sqlite", "memory":
		// Valid
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid state backend %q (must be file, sqlite, or memory)\n", opts.StateBackend)
		os.Exit(1)
	}

	for _, p := range strings.Split(components, ",") {
		if p = strings.TrimSpace(p); p != "" {
			opts.ComponentPaths = append(opts.ComponentPaths, p)
		}
	}

	// Remaining arguments are extra component directories
	opts.ComponentPaths = append(opts.ComponentPaths, flag.Args()...)

	return opts
}
