// Package main is the entry point for the marklight editor.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/marklight/marklight/internal/config"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if opts.debug {
		cfg.Logging.Level = "debug"
	}
	if opts.sessionPath != "" {
		cfg.Session.Path = opts.sessionPath
	}

	app, err := newApp(cfg, opts.filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

type options struct {
	configPath  string
	sessionPath string
	filePath    string
	debug       bool
}

func parseFlags() options {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.sessionPath, "session", "", "Path to session file")
	flag.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&opts.debug, "d", false, "Enable debug logging (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Marklight - structural markdown editor\n\n")
		fmt.Fprintf(os.Stderr, "Usage: marklight [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  marklight                 Resume the previous session\n")
		fmt.Fprintf(os.Stderr, "  marklight notes.md        Open a markdown file\n")
		fmt.Fprintf(os.Stderr, "\nKeys: Ctrl+Q quits. Enter splits a block, Shift+Enter breaks a line.\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("marklight %s (%s)\n", version, commit)
		os.Exit(0)
	}
	opts.filePath = flag.Arg(0)
	return opts
}
