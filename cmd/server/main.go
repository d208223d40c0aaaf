// Package main provides the entry point for the popviz proxy server.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/pandanoir/popviz/internal/config"
	"github.com/pandanoir/popviz/internal/di"
	"github.com/pandanoir/popviz/internal/logger"
)

func main() {
	var flags config.Flags
	flag.StringVar(&flags.Env, "env", "", "environment (development, staging, production)")
	flag.StringVar(&flags.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	flag.StringVar(&flags.Port, "port", "", "port to listen on")
	flag.StringVar(&flags.Upstream, "upstream", "", "upstream API base URL")
	flag.StringVar(&flags.EnvFile, "env-file", "", "path to .env file")
	flag.Parse()

	// Create DI container
	injector := di.NewContainer(flags)

	// Bootstrap all services
	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap server: %v\n", err)
		os.Exit(1)
	}

	// Get logger for shutdown messages
	log := do.MustInvoke[*logger.Logger](injector)

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	// Shutdown all services in reverse order
	// The DI container handles shutdown order automatically
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}

	log.Info("Server stopped")
}
