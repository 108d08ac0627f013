// Package catalog implements the HTTP client for the external library
// catalog. A lookup resolves one book identifier to its title and the
// current availability at every branch that stocks it.
//
// The client is a pure fetcher: it does not persist anything and does not
// pace itself. The ingest pipeline owns the pacing policy toward the
// catalog, so callers there go through the rate limiter before each call.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shelfwatch/shelfwatch-server/internal/domain"
)

const (
	// Each lookup is a blocking remote request; the bound keeps a hung
	// catalog from stalling a batch item forever. Timeout surfaces as
	// ErrUnavailable.
	defaultTimeout = 15 * time.Second
)

// Client is an HTTP client for the external catalog API.
type Client struct {
	http    *http.Client
	baseURL string
	logger  *slog.Logger
}

// New creates a catalog client for the given base URL.
func New(baseURL string, logger *slog.Logger) *Client {
	return NewWithTimeout(baseURL, defaultTimeout, logger)
}

// NewWithTimeout creates a catalog client with an explicit per-call timeout.
func NewWithTimeout(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Lookup fetches the title and per-branch availability for one book
// identifier. It returns one record per branch that stocks the title; an
// empty slice means the title resolved but no branch holds it.
func (c *Client) Lookup(ctx context.Context, bid string) ([]domain.BookRecord, error) {
	if strings.TrimSpace(bid) == "" {
		return nil, wrapError("lookup", bid, ErrBadRequest)
	}

	query := url.Values{}
	query.Set("bid", bid)

	body, err := c.doRequest(ctx, "/v1/availability", query)
	if err != nil {
		return nil, wrapError("lookup", bid, err)
	}

	var resp rawAvailability
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, wrapError("lookup", bid, fmt.Errorf("parse response: %w", err))
	}
	if resp.Title == "" {
		// The catalog answers 200 with an empty payload for retired ids.
		return nil, wrapError("lookup", bid, ErrNotFound)
	}

	now := time.Now().UTC()
	records := make([]domain.BookRecord, 0, len(resp.Branches))
	for _, b := range resp.Branches {
		records = append(records, domain.BookRecord{
			BID:        bid,
			Title:      resp.Title,
			BranchName: b.BranchName,
			Available:  b.Available,
			UpdatedAt:  now,
		})
	}

	c.logger.Debug("catalog lookup",
		"bid", bid,
		"title", resp.Title,
		"branches", len(records),
	)

	return records, nil
}

// doRequest executes a GET against the catalog and maps status codes onto
// the sentinel errors.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "ShelfWatch/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		// Covers connection failures and client timeouts.
		return nil, errors.Join(ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Join(ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrUnavailable
	case resp.StatusCode == http.StatusBadRequest:
		return nil, ErrBadRequest
	case resp.StatusCode >= 500:
		return nil, ErrUnavailable
	default:
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
}
