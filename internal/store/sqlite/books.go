package sqlite

import (
	"context"
	"time"

	"github.com/shelfwatch/shelfwatch-server/internal/domain"
)

// bookColumns is the ordered list of columns selected in book queries,
// qualified with the books alias so joins against user_books stay
// unambiguous. Must match the scan order in scanBook.
const bookColumns = `b.bid, b.branch_name, b.title, b.available, b.updated_at`

// scanBook scans a sql.Row or sql.Rows into a domain.BookRecord.
func scanBook(scanner interface{ Scan(dest ...any) error }) (domain.BookRecord, error) {
	var (
		r         domain.BookRecord
		available int
		updatedAt string
	)

	err := scanner.Scan(&r.BID, &r.BranchName, &r.Title, &available, &updatedAt)
	if err != nil {
		return domain.BookRecord{}, err
	}

	r.Available = available != 0
	r.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return domain.BookRecord{}, err
	}
	return r, nil
}

// UpsertRecords stores branch-level availability records, keyed by
// (bid, branch_name). Re-ingesting the same book replaces the title and
// availability of existing rows: last write wins. The batch is applied in
// one transaction so a crash never leaves a book half-written.
func (s *Store) UpsertRecords(ctx context.Context, records []domain.BookRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap(err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO books (bid, branch_name, title, available, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (bid, branch_name) DO UPDATE SET
			title = excluded.title,
			available = excluded.available,
			updated_at = excluded.updated_at`)
	if err != nil {
		return wrap(err)
	}
	defer stmt.Close()

	for _, r := range records {
		updatedAt := r.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = time.Now().UTC()
		}
		if _, err := stmt.ExecContext(ctx,
			r.BID, r.BranchName, r.Title, boolToInt(r.Available), formatTime(updatedAt),
		); err != nil {
			return wrap(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return wrap(err)
	}
	return nil
}

// AddAssociation links a saved book to a user. Idempotent: re-adding an
// existing association is a no-op.
func (s *Store) AddAssociation(ctx context.Context, username, bid string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_books (username, bid, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (username, bid) DO NOTHING`,
		username, bid, formatTime(time.Now()),
	)
	return wrap(err)
}

// RemoveAssociation unlinks a saved book from a user. The availability
// records stay; other users may still reference them.
func (s *Store) RemoveAssociation(ctx context.Context, username, bid string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM user_books WHERE username = ? AND bid = ?`, username, bid)
	return wrap(err)
}

// AllBooksForUser returns every branch-level record for every book the user
// has saved: the full un-deduplicated set, ordered by (bid, branch) for
// stable output.
func (s *Store) AllBooksForUser(ctx context.Context, username string) ([]domain.BookRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+bookColumns+`
		FROM books b
		JOIN user_books ub ON ub.bid = b.bid
		WHERE ub.username = ?
		ORDER BY b.bid, b.branch_name`, username)
	if err != nil {
		return nil, wrap(err)
	}
	defer rows.Close()

	var records []domain.BookRecord
	for rows.Next() {
		r, err := scanBook(rows)
		if err != nil {
			return nil, wrap(err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(err)
	}
	return records, nil
}
