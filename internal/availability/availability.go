// Package availability computes aggregated availability statistics over a
// user's branch-level book records. All functions are pure: identical input
// yields identical output, which keeps them testable apart from the store
// and the catalog.
package availability

import (
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/shelfwatch/shelfwatch-server/internal/domain"
)

// NormalizeBranch canonicalizes a branch name for grouping and matching:
// Unicode NFKC, lowercase, collapsed whitespace. Display names keep their
// original casing; only comparisons go through this.
func NormalizeBranch(name string) string {
	s := norm.NFKC.String(name)
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}

// UniqueBooks returns the set of distinct (bid, title) pairs in records.
// A title held at three branches counts once here.
func UniqueBooks(records []domain.BookRecord) map[domain.BookKey]struct{} {
	unique := make(map[domain.BookKey]struct{}, len(records))
	for _, r := range records {
		unique[r.Key()] = struct{}{}
	}
	return unique
}

// AvailableBooks returns the records currently available, in input order.
// This is a branch-level count: the same title available at two branches
// appears twice.
func AvailableBooks(records []domain.BookRecord) []domain.BookRecord {
	var avail []domain.BookRecord
	for _, r := range records {
		if r.Available {
			avail = append(avail, r)
		}
	}
	return avail
}

// UniqueBranches returns the distinct branch names in records, deduplicated
// case-insensitively. The first-seen casing is kept for display; the result
// is sorted by normalized name.
func UniqueBranches(records []domain.BookRecord) []string {
	seen := make(map[string]string, len(records))
	for _, r := range records {
		key := NormalizeBranch(r.BranchName)
		if _, ok := seen[key]; !ok {
			seen[key] = r.BranchName
		}
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	branches := make([]string, 0, len(keys))
	for _, k := range keys {
		branches = append(branches, seen[k])
	}
	return branches
}

// ByBranch groups all records by normalized branch name.
func ByBranch(records []domain.BookRecord) map[string][]domain.BookRecord {
	grouped := make(map[string][]domain.BookRecord)
	for _, r := range records {
		key := NormalizeBranch(r.BranchName)
		grouped[key] = append(grouped[key], r)
	}
	return grouped
}

// AvailableByBranch groups the available records by normalized branch name.
func AvailableByBranch(records []domain.BookRecord) map[string][]domain.BookRecord {
	return ByBranch(AvailableBooks(records))
}

// BranchSummaries returns one summary per distinct branch, sorted by
// normalized branch name. UniqueBooks dedups on (bid, title) within the
// branch; AvailableBooks counts available records at the branch.
func BranchSummaries(records []domain.BookRecord) []domain.BranchSummary {
	branches := UniqueBranches(records)
	byBranch := ByBranch(records)

	summaries := make([]domain.BranchSummary, 0, len(branches))
	for _, branch := range branches {
		group := byBranch[NormalizeBranch(branch)]

		unique := make(map[domain.BookKey]struct{}, len(group))
		available := 0
		for _, r := range group {
			unique[r.Key()] = struct{}{}
			if r.Available {
				available++
			}
		}

		summaries = append(summaries, domain.BranchSummary{
			BranchName:     branch,
			UniqueBooks:    len(unique),
			AvailableBooks: available,
		})
	}
	return summaries
}

// FilterByBranch returns the records whose branch name contains the token,
// compared case-insensitively. An empty token means no preference and
// returns the input unchanged, order preserved.
func FilterByBranch(records []domain.BookRecord, token string) []domain.BookRecord {
	token = NormalizeBranch(token)
	if token == "" {
		return records
	}

	var filtered []domain.BookRecord
	for _, r := range records {
		if strings.Contains(NormalizeBranch(r.BranchName), token) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
