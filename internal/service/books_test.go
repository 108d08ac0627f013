package service

import (
	"context"
	"testing"

	"github.com/shelfwatch/shelfwatch-server/internal/domain"
	domainerrors "github.com/shelfwatch/shelfwatch-server/internal/errors"
)

func seedBooks(t *testing.T, svc *BookService, username string, records []domain.BookRecord) {
	t.Helper()
	ctx := context.Background()
	if err := svc.store.UpsertRecords(ctx, records); err != nil {
		t.Fatalf("UpsertRecords: %v", err)
	}
	seen := map[string]bool{}
	for _, r := range records {
		if seen[r.BID] {
			continue
		}
		seen[r.BID] = true
		if err := svc.store.AddAssociation(ctx, username, r.BID); err != nil {
			t.Fatalf("AddAssociation: %v", err)
		}
	}
}

func TestOverview(t *testing.T) {
	svc := NewBookService(newServiceStore(t), testLogger())
	seedBooks(t, svc, "alice", []domain.BookRecord{
		{BID: "1", Title: "A", BranchName: "Central", Available: true},
		{BID: "1", Title: "A", BranchName: "West", Available: false},
		{BID: "2", Title: "B", BranchName: "Central", Available: true},
	})

	overview, err := svc.Overview(context.Background(), "alice", "")
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}

	if overview.UniqueBooks != 2 {
		t.Errorf("expected 2 unique books, got %d", overview.UniqueBooks)
	}
	if overview.AvailableBooks != 2 {
		t.Errorf("expected 2 available branch records, got %d", overview.AvailableBooks)
	}
	if len(overview.Records) != 3 {
		t.Errorf("expected 3 records, got %d", len(overview.Records))
	}
	if len(overview.Branches) != 2 {
		t.Fatalf("expected 2 branch summaries, got %d", len(overview.Branches))
	}
	central, west := overview.Branches[0], overview.Branches[1]
	if central.BranchName != "Central" || central.UniqueBooks != 2 || central.AvailableBooks != 2 {
		t.Errorf("unexpected Central summary %+v", central)
	}
	if west.BranchName != "West" || west.UniqueBooks != 1 || west.AvailableBooks != 0 {
		t.Errorf("unexpected West summary %+v", west)
	}
}

func TestOverviewBranchFilter(t *testing.T) {
	svc := NewBookService(newServiceStore(t), testLogger())
	seedBooks(t, svc, "alice", []domain.BookRecord{
		{BID: "1", Title: "A", BranchName: "Central", Available: true},
		{BID: "1", Title: "A", BranchName: "West", Available: false},
	})

	overview, err := svc.Overview(context.Background(), "alice", "west")
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if len(overview.Records) != 1 || overview.Records[0].BranchName != "West" {
		t.Errorf("expected only the West record, got %v", overview.Records)
	}
	if overview.BranchFilter != "west" {
		t.Errorf("expected filter echoed back, got %q", overview.BranchFilter)
	}
}

func TestOverviewUsesStoredPreference(t *testing.T) {
	svc := NewBookService(newServiceStore(t), testLogger())
	seedBooks(t, svc, "alice", []domain.BookRecord{
		{BID: "1", Title: "A", BranchName: "Central", Available: true},
		{BID: "1", Title: "A", BranchName: "West", Available: false},
	})
	if _, err := svc.SetPreferences(context.Background(), "alice", "central"); err != nil {
		t.Fatalf("SetPreferences: %v", err)
	}

	overview, err := svc.Overview(context.Background(), "alice", "")
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if len(overview.Records) != 1 || overview.Records[0].BranchName != "Central" {
		t.Errorf("stored preference should filter to Central, got %v", overview.Records)
	}

	// Explicit query token overrides the stored preference.
	overview, err = svc.Overview(context.Background(), "alice", "west")
	if err != nil {
		t.Fatalf("Overview with override: %v", err)
	}
	if len(overview.Records) != 1 || overview.Records[0].BranchName != "West" {
		t.Errorf("explicit token should win over preference, got %v", overview.Records)
	}
}

func TestOverviewEmptyUser(t *testing.T) {
	svc := NewBookService(newServiceStore(t), testLogger())

	overview, err := svc.Overview(context.Background(), "nobody", "")
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if overview.UniqueBooks != 0 || len(overview.Records) != 0 || len(overview.Branches) != 0 {
		t.Errorf("expected empty overview, got %+v", overview)
	}
}

func TestSummaries(t *testing.T) {
	svc := NewBookService(newServiceStore(t), testLogger())
	seedBooks(t, svc, "alice", []domain.BookRecord{
		{BID: "1", Title: "A", BranchName: "Central", Available: true},
		{BID: "2", Title: "B", BranchName: "West", Available: true},
	})
	// A stored preference must not filter the summary view.
	if _, err := svc.SetPreferences(context.Background(), "alice", "central"); err != nil {
		t.Fatalf("SetPreferences: %v", err)
	}

	summaries, err := svc.Summaries(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Summaries: %v", err)
	}
	if len(summaries) != 2 {
		t.Errorf("expected 2 summaries regardless of preference, got %d", len(summaries))
	}
}

func TestUntrack(t *testing.T) {
	svc := NewBookService(newServiceStore(t), testLogger())
	seedBooks(t, svc, "alice", []domain.BookRecord{
		{BID: "1", Title: "A", BranchName: "Central", Available: true},
	})

	if err := svc.Untrack(context.Background(), "alice", "1"); err != nil {
		t.Fatalf("Untrack: %v", err)
	}

	overview, err := svc.Overview(context.Background(), "alice", "")
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if len(overview.Records) != 0 {
		t.Errorf("expected no records after untrack, got %v", overview.Records)
	}

	if err := svc.Untrack(context.Background(), "alice", " "); !domainerrors.Is(err, domainerrors.ErrValidation) {
		t.Errorf("blank bid: expected ErrValidation, got %v", err)
	}
}

func TestPreferencesLifecycle(t *testing.T) {
	svc := NewBookService(newServiceStore(t), testLogger())
	ctx := context.Background()

	if _, err := svc.Preferences(ctx, "alice"); !domainerrors.Is(err, domainerrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound before saving, got %v", err)
	}

	saved, err := svc.SetPreferences(ctx, "alice", "  bishan  ")
	if err != nil {
		t.Fatalf("SetPreferences: %v", err)
	}
	if saved.PreferredBranch != "bishan" {
		t.Errorf("expected trimmed token, got %q", saved.PreferredBranch)
	}

	got, err := svc.Preferences(ctx, "alice")
	if err != nil {
		t.Fatalf("Preferences: %v", err)
	}
	if got.PreferredBranch != "bishan" {
		t.Errorf("expected bishan, got %q", got.PreferredBranch)
	}
}
