// Package domain defines the core entities of the ShelfWatch server.
package domain

import "time"

// BookRecord is one branch-level holding of a saved book: the availability
// of a single title at a single physical branch. A title held at three
// branches produces three records sharing the same BID.
type BookRecord struct {
	// BID is the external catalog identifier for the title. It is stable
	// across branches but opaque to us.
	BID        string    `json:"bid"`
	Title      string    `json:"title"`
	BranchName string    `json:"branch_name"`
	Available  bool      `json:"available"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BookKey identifies a title independent of branch. Dedup counts are
// computed over this key, never over raw record count.
type BookKey struct {
	BID   string
	Title string
}

// Key returns the branch-independent identity of the record.
func (r BookRecord) Key() BookKey {
	return BookKey{BID: r.BID, Title: r.Title}
}

// BranchSummary is the derived per-branch availability rollup. UniqueBooks
// is deduped on (bid, title); AvailableBooks counts branch-level records,
// so it is not bounded by UniqueBooks in general.
type BranchSummary struct {
	BranchName     string `json:"branch_name"`
	UniqueBooks    int    `json:"unique_books"`
	AvailableBooks int    `json:"available_books"`
}
