package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/shelfwatch/shelfwatch-server/internal/http/response"
)

// IngestRequest is the body for POST /api/v1/books/ingest.
type IngestRequest struct {
	BIDs []string `json:"bids" validate:"required,min=1,dive,required"`
}

// IngestResponse acknowledges an accepted batch.
type IngestResponse struct {
	BatchID string `json:"batch_id"`
	Total   int    `json:"total"`
}

// handleIngest accepts a batch of book ids and starts the ingestion
// pipeline in the background. The response carries the batch id; clients
// follow progress via GET /progress or the event stream.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := getUsername(ctx)

	var req IngestRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body", s.logger)
		return
	}

	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	batchID, err := s.ingestService.IngestAsync(ctx, username, req.BIDs)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Accepted(w, IngestResponse{
		BatchID: batchID,
		Total:   len(req.BIDs),
	}, s.logger)
}
