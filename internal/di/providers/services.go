package providers

import (
	"github.com/samber/do/v2"

	"github.com/shelfwatch/shelfwatch-server/internal/catalog"
	"github.com/shelfwatch/shelfwatch-server/internal/config"
	"github.com/shelfwatch/shelfwatch-server/internal/logger"
	"github.com/shelfwatch/shelfwatch-server/internal/progress"
	"github.com/shelfwatch/shelfwatch-server/internal/ratelimit"
	"github.com/shelfwatch/shelfwatch-server/internal/service"
	"github.com/shelfwatch/shelfwatch-server/internal/validation"
)

// ProvideCatalogClient provides the catalog availability API client.
func ProvideCatalogClient(i do.Injector) (*catalog.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return catalog.NewWithTimeout(cfg.Catalog.BaseURL, cfg.Catalog.LookupTimeout, log.Logger), nil
}

// ProvideRateLimiter provides the per-user catalog lookup pacer.
func ProvideRateLimiter(i do.Injector) (*ratelimit.KeyedRateLimiter, error) {
	cfg := do.MustInvoke[*config.Config](i)

	return ratelimit.New(cfg.Catalog.RequestsPerSecond, cfg.Catalog.Burst), nil
}

// ProvideTracker provides the in-memory ingestion progress tracker.
func ProvideTracker(i do.Injector) (*progress.Tracker, error) {
	return progress.NewTracker(), nil
}

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideIngestService provides the book ingestion service.
func ProvideIngestService(i do.Injector) (*service.IngestService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	client := do.MustInvoke[*catalog.Client](i)
	limiter := do.MustInvoke[*ratelimit.KeyedRateLimiter](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tracker := do.MustInvoke[*progress.Tracker](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewIngestService(
		client,
		limiter,
		storeHandle.Store,
		tracker,
		sseHandle.Manager,
		cfg.Catalog.MaxBatchSize,
		log.Logger,
	), nil
}

// ProvideBookService provides the book query service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBookService(storeHandle.Store, log.Logger), nil
}
