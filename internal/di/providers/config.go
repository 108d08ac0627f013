// Package providers contains dependency injection providers for the ShelfWatch server.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/shelfwatch/shelfwatch-server/internal/config"
	"github.com/shelfwatch/shelfwatch-server/internal/logger"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Format:      cfg.Logger.Format,
		Environment: cfg.App.Environment,
	})

	log.Info("Starting ShelfWatch Server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"db_path", cfg.Store.DBPath,
		"catalog_url", cfg.Catalog.BaseURL,
	)

	return log, nil
}
