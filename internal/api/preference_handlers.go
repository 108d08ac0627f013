package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfwatch/shelfwatch-server/internal/domain"
)

func (s *Server) registerPreferenceRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getPreferences",
		Method:      http.MethodGet,
		Path:        "/api/v1/preferences",
		Summary:     "Get preferences",
		Description: "Returns the caller's stored preferences",
		Tags:        []string{"Preferences"},
	}, s.handleGetPreferences)

	huma.Register(s.api, huma.Operation{
		OperationID: "setPreferences",
		Method:      http.MethodPut,
		Path:        "/api/v1/preferences",
		Summary:     "Set preferences",
		Description: "Stores the caller's preferred branch token",
		Tags:        []string{"Preferences"},
	}, s.handleSetPreferences)
}

// === DTOs ===

type GetPreferencesInput struct {
	Username string `header:"X-Username" doc:"Resolved caller identity"`
}

type PreferencesResponse struct {
	Username        string    `json:"username" doc:"Owner of the preferences"`
	PreferredBranch string    `json:"preferred_branch" doc:"Branch filter token, empty for no filter"`
	UpdatedAt       time.Time `json:"updated_at" doc:"Last update time"`
}

type PreferencesOutput struct {
	Body PreferencesResponse
}

type SetPreferencesRequest struct {
	PreferredBranch string `json:"preferred_branch" maxLength:"120" doc:"Branch filter token, empty clears the filter"`
}

type SetPreferencesInput struct {
	Username string `header:"X-Username" doc:"Resolved caller identity"`
	Body     SetPreferencesRequest
}

// === Handlers ===

func (s *Server) handleGetPreferences(ctx context.Context, input *GetPreferencesInput) (*PreferencesOutput, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, huma.Error401Unauthorized("Missing X-Username header")
	}

	prefs, err := s.bookService.Preferences(ctx, username)
	if err != nil {
		return nil, err
	}

	return &PreferencesOutput{Body: mapPreferencesResponse(prefs)}, nil
}

func (s *Server) handleSetPreferences(ctx context.Context, input *SetPreferencesInput) (*PreferencesOutput, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, huma.Error401Unauthorized("Missing X-Username header")
	}

	prefs, err := s.bookService.SetPreferences(ctx, username, input.Body.PreferredBranch)
	if err != nil {
		return nil, err
	}

	return &PreferencesOutput{Body: mapPreferencesResponse(prefs)}, nil
}

func mapPreferencesResponse(p *domain.UserPreferences) PreferencesResponse {
	return PreferencesResponse{
		Username:        p.Username,
		PreferredBranch: p.PreferredBranch,
		UpdatedAt:       p.UpdatedAt,
	}
}
