package api

import (
	"encoding/json/v2"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProgress_NotTracked(t *testing.T) {
	ts := setupTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/v1/progress", http.NoBody, "alice")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetProgress_MissingUsername(t *testing.T) {
	ts := setupTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/v1/progress", http.NoBody, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetProgress_Tracked(t *testing.T) {
	ts := setupTestServer(t)

	ts.tracker.Reset("alice", 3, "")
	ts.tracker.Advance("alice", "A Title")

	w := ts.do(t, http.MethodGet, "/api/v1/progress", http.NoBody, "alice")

	require.Equal(t, http.StatusOK, w.Code)

	var body ProgressResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Equal(t, 1, body.Completed)
	assert.Equal(t, 3, body.Total)
	assert.Equal(t, "A Title", body.CurrentTitle)
	assert.False(t, body.Done)
	assert.InDelta(t, 33.3, body.Percent, 0.5)
}

func TestClearProgress(t *testing.T) {
	ts := setupTestServer(t)

	ts.tracker.Reset("alice", 1, "")
	ts.tracker.Advance("alice", "A")

	w := ts.do(t, http.MethodDelete, "/api/v1/progress", http.NoBody, "alice")
	assert.Equal(t, http.StatusNoContent, w.Code)

	if _, ok := ts.tracker.Read("alice"); ok {
		t.Error("expected tracking cleared")
	}
}

func TestPreferences_RoundTrip(t *testing.T) {
	ts := setupTestServer(t)

	// Nothing stored yet.
	w := ts.do(t, http.MethodGet, "/api/v1/preferences", http.NoBody, "alice")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Store a preference.
	w = ts.do(t, http.MethodPut, "/api/v1/preferences",
		strings.NewReader(`{"preferred_branch": "central"}`), "alice")
	require.Equal(t, http.StatusOK, w.Code)

	// Read it back.
	w = ts.do(t, http.MethodGet, "/api/v1/preferences", http.NoBody, "alice")
	require.Equal(t, http.StatusOK, w.Code)

	var body PreferencesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "alice", body.Username)
	assert.Equal(t, "central", body.PreferredBranch)
	assert.False(t, body.UpdatedAt.IsZero())
}

func TestPreferences_FilterAppliesToBooks(t *testing.T) {
	ts := setupTestServer(t)
	seedUserBooks(t, ts, "alice")

	w := ts.do(t, http.MethodPut, "/api/v1/preferences",
		strings.NewReader(`{"preferred_branch": "west"}`), "alice")
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/api/v1/books/", http.NoBody, "alice")
	result := decodeEnvelope(t, w)

	data, ok := result.Data.(map[string]any)
	require.True(t, ok)
	records, ok := data["records"].([]any)
	require.True(t, ok)
	require.Len(t, records, 1)

	record, ok := records[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "West", record["branch_name"])
}
