package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shelfwatch/shelfwatch-server/internal/availability"
	"github.com/shelfwatch/shelfwatch-server/internal/domain"
	domainerrors "github.com/shelfwatch/shelfwatch-server/internal/errors"
	"github.com/shelfwatch/shelfwatch-server/internal/store"
	"github.com/shelfwatch/shelfwatch-server/internal/store/sqlite"
)

// LibraryOverview is the aggregated view of a user's tracked books.
type LibraryOverview struct {
	Records        []domain.BookRecord    `json:"records"`
	Branches       []domain.BranchSummary `json:"branches"`
	BranchFilter   string                 `json:"branch_filter,omitempty"`
	UniqueBooks    int                    `json:"unique_books"`
	AvailableBooks int                    `json:"available_books"`
}

// BookService serves a user's tracked book records and their aggregates.
type BookService struct {
	store  *sqlite.Store
	logger *slog.Logger
}

// NewBookService creates a book service.
func NewBookService(st *sqlite.Store, logger *slog.Logger) *BookService {
	return &BookService{store: st, logger: logger}
}

// Overview returns the user's branch-level records with availability
// statistics. branchToken filters records to branches containing the token;
// when empty, the user's stored preference applies instead. A user with no
// tracked books gets an empty overview, not an error.
func (s *BookService) Overview(ctx context.Context, username, branchToken string) (*LibraryOverview, error) {
	records, err := s.store.AllBooksForUser(ctx, username)
	if err != nil {
		return nil, domainerrors.StoreUnavailable(err)
	}

	if strings.TrimSpace(branchToken) == "" {
		prefs, err := s.store.GetUserPreferences(ctx, username)
		switch {
		case err == nil:
			branchToken = prefs.PreferredBranch
		case domainerrors.Is(err, store.ErrNotFound):
			// No stored preference; keep all branches.
		default:
			return nil, domainerrors.StoreUnavailable(err)
		}
	}

	filtered := availability.FilterByBranch(records, branchToken)

	return &LibraryOverview{
		Records:        filtered,
		Branches:       availability.BranchSummaries(filtered),
		BranchFilter:   strings.TrimSpace(branchToken),
		UniqueBooks:    len(availability.UniqueBooks(filtered)),
		AvailableBooks: len(availability.AvailableBooks(filtered)),
	}, nil
}

// Summaries returns one per-branch summary for each branch holding any of
// the user's tracked books, unfiltered by preference.
func (s *BookService) Summaries(ctx context.Context, username string) ([]domain.BranchSummary, error) {
	records, err := s.store.AllBooksForUser(ctx, username)
	if err != nil {
		return nil, domainerrors.StoreUnavailable(err)
	}
	return availability.BranchSummaries(records), nil
}

// Untrack removes the user's association with a book id. The branch records
// stay; other users may still track them.
func (s *BookService) Untrack(ctx context.Context, username, bid string) error {
	if strings.TrimSpace(bid) == "" {
		return domainerrors.Validation("bid is required")
	}
	if err := s.store.RemoveAssociation(ctx, username, bid); err != nil {
		return domainerrors.StoreUnavailable(err)
	}
	return nil
}

// Preferences returns the user's stored preferences.
func (s *BookService) Preferences(ctx context.Context, username string) (*domain.UserPreferences, error) {
	prefs, err := s.store.GetUserPreferences(ctx, username)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("no preferences stored")
		}
		return nil, domainerrors.StoreUnavailable(err)
	}
	return prefs, nil
}

// SetPreferences stores the user's preferred branch token. An empty token is
// valid and clears the preference.
func (s *BookService) SetPreferences(ctx context.Context, username, preferredBranch string) (*domain.UserPreferences, error) {
	prefs := domain.NewUserPreferences(username, strings.TrimSpace(preferredBranch))
	if err := s.store.UpsertUserPreferences(ctx, prefs); err != nil {
		return nil, domainerrors.StoreUnavailable(err)
	}
	return prefs, nil
}
