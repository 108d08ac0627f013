// Package di provides dependency injection configuration for the ShelfWatch server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/shelfwatch/shelfwatch-server/internal/catalog"
	"github.com/shelfwatch/shelfwatch-server/internal/config"
	"github.com/shelfwatch/shelfwatch-server/internal/di/providers"
	"github.com/shelfwatch/shelfwatch-server/internal/logger"
	"github.com/shelfwatch/shelfwatch-server/internal/progress"
	"github.com/shelfwatch/shelfwatch-server/internal/ratelimit"
	"github.com/shelfwatch/shelfwatch-server/internal/service"
	"github.com/shelfwatch/shelfwatch-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)

	// Database layer
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideStore)

	// Catalog layer
	do.Provide(injector, providers.ProvideCatalogClient)
	do.Provide(injector, providers.ProvideRateLimiter)

	// Business services
	do.Provide(injector, providers.ProvideTracker)
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideIngestService)
	do.Provide(injector, providers.ProvideBookService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*catalog.Client](injector)
	_ = do.MustInvoke[*ratelimit.KeyedRateLimiter](injector)

	// Business services
	_ = do.MustInvoke[*progress.Tracker](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*service.IngestService](injector)
	_ = do.MustInvoke[*service.BookService](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
