// Package service implements the application services between the HTTP
// handlers and the catalog client, store, and progress tracker.
package service

import (
	"context"
	"log/slog"

	"github.com/shelfwatch/shelfwatch-server/internal/domain"
	domainerrors "github.com/shelfwatch/shelfwatch-server/internal/errors"
	"github.com/shelfwatch/shelfwatch-server/internal/id"
	"github.com/shelfwatch/shelfwatch-server/internal/progress"
	"github.com/shelfwatch/shelfwatch-server/internal/sse"
	"github.com/shelfwatch/shelfwatch-server/internal/store/sqlite"
)

// Catalog resolves a book id to its per-branch availability records.
type Catalog interface {
	Lookup(ctx context.Context, bid string) ([]domain.BookRecord, error)
}

// Pacer throttles outbound catalog calls. The ingest pipeline waits on it
// before every lookup, keyed by username so one user's batch cannot starve
// another's.
type Pacer interface {
	Wait(ctx context.Context, key string) error
}

// Emitter queues an event for SSE broadcast.
type Emitter interface {
	Emit(event sse.Event)
}

// IngestService runs ingestion batches: for each requested book id it
// fetches current availability from the catalog, persists the records and
// the user's association, and advances the user's progress.
type IngestService struct {
	catalog      Catalog
	pacer        Pacer
	store        *sqlite.Store
	tracker      *progress.Tracker
	emitter      Emitter
	logger       *slog.Logger
	maxBatchSize int
}

// NewIngestService creates an ingest service. maxBatchSize <= 0 disables the
// batch size cap.
func NewIngestService(
	catalog Catalog,
	pacer Pacer,
	store *sqlite.Store,
	tracker *progress.Tracker,
	emitter Emitter,
	maxBatchSize int,
	logger *slog.Logger,
) *IngestService {
	return &IngestService{
		catalog:      catalog,
		pacer:        pacer,
		store:        store,
		tracker:      tracker,
		emitter:      emitter,
		logger:       logger,
		maxBatchSize: maxBatchSize,
	}
}

// Ingest processes the batch synchronously, one id at a time in input order.
// A failing item is logged and skipped; it never stops the batch, and
// progress advances for it all the same, so completed always reaches
// len(bids).
func (s *IngestService) Ingest(ctx context.Context, username string, bids []string) (string, error) {
	batchID, err := s.prepare(ctx, username, bids)
	if err != nil {
		return "", err
	}
	s.run(ctx, username, batchID, bids)
	return batchID, nil
}

// IngestAsync validates the batch, then runs it in a background goroutine
// with a context detached from the request, so a client disconnect does not
// abort the batch. The returned batch id lets the client correlate SSE
// events.
func (s *IngestService) IngestAsync(ctx context.Context, username string, bids []string) (string, error) {
	batchID, err := s.prepare(ctx, username, bids)
	if err != nil {
		return "", err
	}
	go s.run(context.WithoutCancel(ctx), username, batchID, bids)
	return batchID, nil
}

// prepare validates the request, allocates a batch id, and publishes the
// batch start: tracker reset, refreshing flag, started event.
func (s *IngestService) prepare(ctx context.Context, username string, bids []string) (string, error) {
	if username == "" {
		return "", domainerrors.Unauthorized("username is required")
	}
	if len(bids) == 0 {
		return "", domainerrors.Validation("bids must not be empty")
	}
	if s.maxBatchSize > 0 && len(bids) > s.maxBatchSize {
		return "", domainerrors.Validationf("batch exceeds maximum of %d ids", s.maxBatchSize)
	}

	batchID, err := id.Generate("ing")
	if err != nil {
		return "", domainerrors.Internal("generate batch id").WithCause(err)
	}

	s.tracker.Reset(username, len(bids), "")

	// The flag is a readiness signal only; a store hiccup here must not
	// block the batch.
	if err := s.store.SetRefreshing(ctx, username, true); err != nil {
		s.logger.Warn("failed to set refreshing flag",
			slog.String("username", username), "error", err)
	}

	s.emitter.Emit(sse.NewIngestStartedEvent(username, batchID, len(bids)))
	return batchID, nil
}

// run executes the per-item loop and publishes batch completion.
func (s *IngestService) run(ctx context.Context, username, batchID string, bids []string) {
	log := s.logger.With(
		slog.String("username", username),
		slog.String("batch_id", batchID),
		slog.Int("total", len(bids)),
	)
	log.Info("ingest batch starting")

	failed := 0
	for _, bid := range bids {
		title, err := s.ingestOne(ctx, username, bid)
		if err != nil {
			failed++
			// The id itself stands in for the title we never learned.
			title = bid
			log.Warn("ingest item failed",
				slog.String("bid", bid),
				slog.String("error", err.Error()))
		}

		s.tracker.Advance(username, title)
		if p, ok := s.tracker.Read(username); ok {
			s.emitter.Emit(sse.NewIngestProgressEvent(
				username, batchID, p.CurrentTitle, p.Completed, p.Total))
		}
	}

	if err := s.store.SetRefreshing(ctx, username, false); err != nil {
		log.Warn("failed to clear refreshing flag", "error", err)
	}

	s.emitter.Emit(sse.NewIngestCompletedEvent(username, batchID, len(bids), failed))
	log.Info("ingest batch complete", slog.Int("failed", failed))
}

// ingestOne fetches and persists a single book id. The records are stored
// before the association, so a visible association always has records behind
// it. Returns the title for the progress tracker.
func (s *IngestService) ingestOne(ctx context.Context, username, bid string) (string, error) {
	if err := s.pacer.Wait(ctx, username); err != nil {
		return "", err
	}

	records, err := s.catalog.Lookup(ctx, bid)
	if err != nil {
		return "", err
	}

	if err := s.store.UpsertRecords(ctx, records); err != nil {
		return "", err
	}
	if err := s.store.AddAssociation(ctx, username, bid); err != nil {
		return "", err
	}

	if len(records) > 0 {
		return records[0].Title, nil
	}
	// Resolved but stocked nowhere; there is no branch record carrying
	// the title.
	return bid, nil
}

// Progress returns the user's current in-flight progress snapshot.
func (s *IngestService) Progress(username string) (domain.IngestionProgress, error) {
	p, ok := s.tracker.Read(username)
	if !ok {
		return domain.IngestionProgress{}, domainerrors.NotFound("no ingest batch tracked")
	}
	return p, nil
}

// ClearProgress acknowledges a finished batch and removes its tracking.
func (s *IngestService) ClearProgress(username string) {
	s.tracker.Clear(username)
}

// Refreshing reports the persistent per-user refresh flag. This signal is
// independent of the in-memory tracker and survives restarts.
func (s *IngestService) Refreshing(ctx context.Context, username string) (bool, error) {
	refreshing, err := s.store.IsRefreshing(ctx, username)
	if err != nil {
		return false, domainerrors.StoreUnavailable(err)
	}
	return refreshing, nil
}
