// Package di provides dependency injection configuration for the popviz proxy.
package di

import (
	"github.com/samber/do/v2"

	"github.com/pandanoir/popviz/internal/config"
	"github.com/pandanoir/popviz/internal/di/providers"
	"github.com/pandanoir/popviz/internal/logger"
	"github.com/pandanoir/popviz/internal/upstream"
)

// NewContainer creates and configures the DI container with all providers.
// Parsed flags are seeded as a value so main owns flag registration.
func NewContainer(flags config.Flags) *do.RootScope {
	injector := do.New()

	do.ProvideValue(injector, flags)

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Upstream client
	do.Provide(injector, providers.ProvideUpstreamClient)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and starts the HTTP server.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*upstream.Client](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}
	return nil
}
