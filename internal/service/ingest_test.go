package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shelfwatch/shelfwatch-server/internal/catalog"
	"github.com/shelfwatch/shelfwatch-server/internal/domain"
	domainerrors "github.com/shelfwatch/shelfwatch-server/internal/errors"
	"github.com/shelfwatch/shelfwatch-server/internal/progress"
	"github.com/shelfwatch/shelfwatch-server/internal/sse"
	"github.com/shelfwatch/shelfwatch-server/internal/store/sqlite"
)

// fakeCatalog serves canned availability per bid; missing ids fail lookup.
type fakeCatalog struct {
	records map[string][]domain.BookRecord
	errs    map[string]error
	calls   []string
}

func (f *fakeCatalog) Lookup(_ context.Context, bid string) ([]domain.BookRecord, error) {
	f.calls = append(f.calls, bid)
	if err, ok := f.errs[bid]; ok {
		return nil, err
	}
	if recs, ok := f.records[bid]; ok {
		return recs, nil
	}
	return nil, catalog.ErrNotFound
}

// noPacer waits for nothing.
type noPacer struct{}

func (noPacer) Wait(context.Context, string) error { return nil }

// recordingEmitter captures emitted events for assertions.
type recordingEmitter struct {
	mu     sync.Mutex
	events []sse.Event
}

func (e *recordingEmitter) Emit(event sse.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
}

func (e *recordingEmitter) byType(t sse.EventType) []sse.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []sse.Event
	for _, evt := range e.events {
		if evt.Type == t {
			out = append(out, evt)
		}
	}
	return out
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newServiceStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), testLogger())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func branchRecords(bid, title string, branches ...string) []domain.BookRecord {
	recs := make([]domain.BookRecord, 0, len(branches))
	for _, b := range branches {
		recs = append(recs, domain.BookRecord{
			BID: bid, Title: title, BranchName: b, Available: true,
		})
	}
	return recs
}

func TestIngestHappyPath(t *testing.T) {
	st := newServiceStore(t)
	tracker := progress.NewTracker()
	emitter := &recordingEmitter{}
	cat := &fakeCatalog{records: map[string][]domain.BookRecord{
		"1": branchRecords("1", "A", "Central", "West"),
		"2": branchRecords("2", "B", "Central"),
	}}

	svc := NewIngestService(cat, noPacer{}, st, tracker, emitter, 0, testLogger())

	batchID, err := svc.Ingest(context.Background(), "alice", []string{"1", "2"})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if batchID == "" {
		t.Error("expected a batch id")
	}

	p, ok := tracker.Read("alice")
	if !ok {
		t.Fatal("expected tracked progress")
	}
	if p.Completed != 2 || p.Total != 2 {
		t.Errorf("expected 2/2, got %d/%d", p.Completed, p.Total)
	}
	if p.CurrentTitle != "B" {
		t.Errorf("expected last title B, got %q", p.CurrentTitle)
	}

	records, err := st.AllBooksForUser(context.Background(), "alice")
	if err != nil {
		t.Fatalf("AllBooksForUser: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("expected 3 branch records, got %d", len(records))
	}

	if got := len(emitter.byType(sse.EventIngestStarted)); got != 1 {
		t.Errorf("expected 1 started event, got %d", got)
	}
	if got := len(emitter.byType(sse.EventIngestProgress)); got != 2 {
		t.Errorf("expected 2 progress events, got %d", got)
	}
	if got := len(emitter.byType(sse.EventIngestCompleted)); got != 1 {
		t.Errorf("expected 1 completed event, got %d", got)
	}

	refreshing, err := st.IsRefreshing(context.Background(), "alice")
	if err != nil {
		t.Fatalf("IsRefreshing: %v", err)
	}
	if refreshing {
		t.Error("refreshing flag must be cleared when the batch finishes")
	}
}

func TestIngestFailingItemDoesNotStopBatch(t *testing.T) {
	st := newServiceStore(t)
	tracker := progress.NewTracker()
	emitter := &recordingEmitter{}
	cat := &fakeCatalog{
		records: map[string][]domain.BookRecord{
			"1": branchRecords("1", "A", "Central"),
			"3": branchRecords("3", "C", "West"),
		},
		errs: map[string]error{"2": catalog.ErrUnavailable},
	}

	svc := NewIngestService(cat, noPacer{}, st, tracker, emitter, 0, testLogger())

	if _, err := svc.Ingest(context.Background(), "alice", []string{"1", "2", "3"}); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	// Progress reaches the full total even though the middle item failed.
	p, _ := tracker.Read("alice")
	if p.Completed != 3 {
		t.Errorf("expected completed 3, got %d", p.Completed)
	}

	// Only the two healthy ids were persisted.
	records, err := st.AllBooksForUser(context.Background(), "alice")
	if err != nil {
		t.Fatalf("AllBooksForUser: %v", err)
	}
	bids := map[string]bool{}
	for _, r := range records {
		bids[r.BID] = true
	}
	if !bids["1"] || !bids["3"] || bids["2"] {
		t.Errorf("expected bids 1 and 3 only, got %v", bids)
	}

	completed := emitter.byType(sse.EventIngestCompleted)
	if len(completed) != 1 {
		t.Fatalf("expected 1 completed event, got %d", len(completed))
	}
	data := completed[0].Data.(sse.IngestCompletedEventData)
	if data.Failed != 1 {
		t.Errorf("expected 1 failed item, got %d", data.Failed)
	}
}

func TestIngestAllItemsInOrder(t *testing.T) {
	st := newServiceStore(t)
	cat := &fakeCatalog{records: map[string][]domain.BookRecord{
		"a": branchRecords("a", "A", "Central"),
		"b": branchRecords("b", "B", "Central"),
		"c": branchRecords("c", "C", "Central"),
	}}

	svc := NewIngestService(cat, noPacer{}, st, progress.NewTracker(), &recordingEmitter{}, 0, testLogger())

	if _, err := svc.Ingest(context.Background(), "alice", []string{"a", "b", "c"}); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	want := []string{"a", "b", "c"}
	if len(cat.calls) != len(want) {
		t.Fatalf("expected %d lookups, got %d", len(want), len(cat.calls))
	}
	for i, bid := range want {
		if cat.calls[i] != bid {
			t.Errorf("lookup %d: expected %s, got %s", i, bid, cat.calls[i])
		}
	}
}

func TestIngestValidation(t *testing.T) {
	st := newServiceStore(t)
	svc := NewIngestService(&fakeCatalog{}, noPacer{}, st, progress.NewTracker(), &recordingEmitter{}, 2, testLogger())

	if _, err := svc.Ingest(context.Background(), "alice", nil); !domainerrors.Is(err, domainerrors.ErrValidation) {
		t.Errorf("empty bids: expected ErrValidation, got %v", err)
	}
	if _, err := svc.Ingest(context.Background(), "", []string{"1"}); !domainerrors.Is(err, domainerrors.ErrUnauthorized) {
		t.Errorf("empty username: expected ErrUnauthorized, got %v", err)
	}
	if _, err := svc.Ingest(context.Background(), "alice", []string{"1", "2", "3"}); !domainerrors.Is(err, domainerrors.ErrValidation) {
		t.Errorf("oversized batch: expected ErrValidation, got %v", err)
	}
}

func TestIngestPacerErrorFailsItem(t *testing.T) {
	st := newServiceStore(t)
	tracker := progress.NewTracker()
	svc := NewIngestService(&fakeCatalog{}, failingPacer{}, st, tracker, &recordingEmitter{}, 0, testLogger())

	if _, err := svc.Ingest(context.Background(), "alice", []string{"1"}); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	p, _ := tracker.Read("alice")
	if p.Completed != 1 {
		t.Errorf("progress must advance past a pacing failure, got %d", p.Completed)
	}
}

type failingPacer struct{}

func (failingPacer) Wait(context.Context, string) error {
	return errors.New("context canceled")
}

func TestProgressLifecycle(t *testing.T) {
	st := newServiceStore(t)
	tracker := progress.NewTracker()
	svc := NewIngestService(&fakeCatalog{}, noPacer{}, st, tracker, &recordingEmitter{}, 0, testLogger())

	if _, err := svc.Progress("alice"); !domainerrors.Is(err, domainerrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound before any batch, got %v", err)
	}

	tracker.Reset("alice", 2, "")
	tracker.Advance("alice", "A")

	p, err := svc.Progress("alice")
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if p.Completed != 1 || p.Total != 2 {
		t.Errorf("expected 1/2, got %d/%d", p.Completed, p.Total)
	}

	svc.ClearProgress("alice")
	if _, err := svc.Progress("alice"); !domainerrors.Is(err, domainerrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound after clear, got %v", err)
	}
}
