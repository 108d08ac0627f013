package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shelfwatch/shelfwatch-server/internal/http/response"
)

// handleListBooks returns the user's branch-level records with availability
// statistics. The ?branch= token overrides the stored branch preference for
// this request only.
func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := getUsername(ctx)
	branch := r.URL.Query().Get("branch")

	overview, err := s.bookService.Overview(ctx, username, branch)
	if err != nil {
		s.logger.Error("Failed to build overview", "error", err, "username", username)
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, overview, s.logger)
}

// handleBranchSummary returns the per-branch rollups, never filtered by
// preference.
func (s *Server) handleBranchSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := getUsername(ctx)

	summaries, err := s.bookService.Summaries(ctx, username)
	if err != nil {
		s.logger.Error("Failed to build branch summary", "error", err, "username", username)
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]any{
		"branches": summaries,
	}, s.logger)
}

// handleUntrack removes the caller's association with a book id.
func (s *Server) handleUntrack(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := getUsername(ctx)
	bid := chi.URLParam(r, "bid")

	if err := s.bookService.Untrack(ctx, username, bid); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleStatus reports the persistent refreshing flag for the caller. This
// signal is independent of the in-memory progress tracker.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := getUsername(ctx)

	refreshing, err := s.ingestService.Refreshing(ctx, username)
	if err != nil {
		s.logger.Error("Failed to read refresh status", "error", err, "username", username)
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]bool{
		"refreshing": refreshing,
	}, s.logger)
}
