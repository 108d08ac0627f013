package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfwatch/shelfwatch-server/internal/domain"
)

func (s *Server) registerProgressRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getProgress",
		Method:      http.MethodGet,
		Path:        "/api/v1/progress",
		Summary:     "Get ingest progress",
		Description: "Returns the caller's in-flight ingestion batch progress",
		Tags:        []string{"Progress"},
	}, s.handleGetProgress)

	huma.Register(s.api, huma.Operation{
		OperationID:   "clearProgress",
		Method:        http.MethodDelete,
		Path:          "/api/v1/progress",
		Summary:       "Clear ingest progress",
		Description:   "Acknowledges a finished batch and removes its tracking",
		Tags:          []string{"Progress"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleClearProgress)
}

// === DTOs ===

type GetProgressInput struct {
	Username string `header:"X-Username" doc:"Resolved caller identity"`
}

type ProgressResponse struct {
	CurrentTitle string  `json:"current_title" doc:"Title of the most recently processed item"`
	Completed    int     `json:"completed" doc:"Items processed so far"`
	Total        int     `json:"total" doc:"Items in the batch"`
	Percent      float64 `json:"percent" doc:"Completion percentage"`
	Done         bool    `json:"done" doc:"Whether every item has been processed"`
}

type GetProgressOutput struct {
	Body ProgressResponse
}

type ClearProgressInput struct {
	Username string `header:"X-Username" doc:"Resolved caller identity"`
}

type ClearProgressOutput struct{}

// === Handlers ===

func (s *Server) handleGetProgress(_ context.Context, input *GetProgressInput) (*GetProgressOutput, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, huma.Error401Unauthorized("Missing X-Username header")
	}

	p, err := s.ingestService.Progress(username)
	if err != nil {
		return nil, err
	}

	return &GetProgressOutput{Body: mapProgressResponse(p)}, nil
}

func (s *Server) handleClearProgress(_ context.Context, input *ClearProgressInput) (*ClearProgressOutput, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, huma.Error401Unauthorized("Missing X-Username header")
	}

	s.ingestService.ClearProgress(username)
	return &ClearProgressOutput{}, nil
}

func mapProgressResponse(p domain.IngestionProgress) ProgressResponse {
	return ProgressResponse{
		CurrentTitle: p.CurrentTitle,
		Completed:    p.Completed,
		Total:        p.Total,
		Percent:      p.Percent(),
		Done:         p.Done(),
	}
}
