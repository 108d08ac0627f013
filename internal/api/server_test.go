package api

import (
	"context"
	"encoding/json/v2"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfwatch/shelfwatch-server/internal/catalog"
	"github.com/shelfwatch/shelfwatch-server/internal/domain"
	"github.com/shelfwatch/shelfwatch-server/internal/http/response"
	"github.com/shelfwatch/shelfwatch-server/internal/progress"
	"github.com/shelfwatch/shelfwatch-server/internal/ratelimit"
	"github.com/shelfwatch/shelfwatch-server/internal/service"
	"github.com/shelfwatch/shelfwatch-server/internal/sse"
	"github.com/shelfwatch/shelfwatch-server/internal/store/sqlite"
	"github.com/shelfwatch/shelfwatch-server/internal/validation"
)

// fakeCatalog serves canned availability per bid; missing ids fail lookup.
type fakeCatalog struct {
	records map[string][]domain.BookRecord
}

func (f *fakeCatalog) Lookup(_ context.Context, bid string) ([]domain.BookRecord, error) {
	if recs, ok := f.records[bid]; ok {
		return recs, nil
	}
	return nil, catalog.ErrNotFound
}

type testServer struct {
	*Server
	store   *sqlite.Store
	catalog *fakeCatalog
	tracker *progress.Tracker
}

// setupTestServer creates a test server with all dependencies backed by a
// temp database and a canned catalog.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	sseManager := sse.NewManager(logger)
	sseHandler := sse.NewHandler(sseManager, logger)

	cat := &fakeCatalog{records: map[string][]domain.BookRecord{
		"1": {
			{BID: "1", Title: "A", BranchName: "Central", Available: true},
			{BID: "1", Title: "A", BranchName: "West", Available: false},
		},
		"2": {
			{BID: "2", Title: "B", BranchName: "Central", Available: true},
		},
	}}

	tracker := progress.NewTracker()
	ingestService := service.NewIngestService(
		cat, ratelimit.Unlimited(), st, tracker, sseManager, 100, logger)
	bookService := service.NewBookService(st, logger)

	server := NewServer(ingestService, bookService, sseHandler, validation.New(), logger)

	return &testServer{
		Server:  server,
		store:   st,
		catalog: cat,
		tracker: tracker,
	}
}

// do performs a request with the X-Username header set.
func (ts *testServer) do(t *testing.T, method, path string, body io.Reader, username string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if username != "" {
		req.Header.Set("X-Username", username)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	ts.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var result response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	return result
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	w := ts.do(t, http.MethodGet, "/health", http.NoBody, "")

	assert.Equal(t, http.StatusOK, w.Code)

	result := decodeEnvelope(t, w)
	assert.True(t, result.Success)
	assert.NotNil(t, result.Data)
}

func TestRequireUser(t *testing.T) {
	ts := setupTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"list books", http.MethodGet, "/api/v1/books/"},
		{"branch summary", http.MethodGet, "/api/v1/books/summary"},
		{"status", http.MethodGet, "/api/v1/status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, tt.method, tt.path, http.NoBody, "")

			assert.Equal(t, http.StatusUnauthorized, w.Code)

			result := decodeEnvelope(t, w)
			assert.False(t, result.Success)
			assert.Contains(t, result.Error, "X-Username")
		})
	}
}

func TestStatus_Default(t *testing.T) {
	ts := setupTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/v1/status", http.NoBody, "alice")

	assert.Equal(t, http.StatusOK, w.Code)

	result := decodeEnvelope(t, w)
	require.True(t, result.Success)

	data, ok := result.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, data["refreshing"])
}

func TestUnknownRoute(t *testing.T) {
	ts := setupTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/v1/nonexistent", http.NoBody, "alice")

	assert.Equal(t, http.StatusNotFound, w.Code)
}
