// Package main provides the entry point for the popviz terminal client.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pandanoir/popviz/internal/apiclient"
	"github.com/pandanoir/popviz/internal/config"
	"github.com/pandanoir/popviz/internal/logger"
	"github.com/pandanoir/popviz/internal/tui"
)

func main() {
	var flags config.Flags
	flag.StringVar(&flags.ProxyURL, "proxy", "", "proxy server URL")
	flag.StringVar(&flags.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	flag.StringVar(&flags.EnvFile, "env-file", "", "path to .env file")
	logFile := flag.String("log-file", "", "write logs to file instead of stderr")
	flag.Parse()

	cfg, err := config.LoadClientConfig(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// The TUI owns the terminal, so logs go to a file when requested and are
	// discarded otherwise.
	logCfg := logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	}
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logCfg.Writer = f
	} else {
		logCfg.Writer = io.Discard
	}
	log := logger.New(logCfg)

	client := apiclient.New(cfg.Client.ProxyURL, log.Logger)

	model := tui.NewModel(client, log)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
