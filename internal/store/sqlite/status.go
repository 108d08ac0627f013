package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SetRefreshing records whether a user's collection is currently being
// refreshed. This flag is a readiness signal for the presentation layer and
// is deliberately independent of the in-memory progress tracker.
func (s *Store) SetRefreshing(ctx context.Context, username string, refreshing bool) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_status (username, refreshing, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (username) DO UPDATE SET
			refreshing = excluded.refreshing,
			updated_at = excluded.updated_at`,
		username, boolToInt(refreshing), formatTime(time.Now()),
	)
	return wrap(err)
}

// IsRefreshing reports whether a refresh is in flight for the user.
// Unknown users are simply not refreshing.
func (s *Store) IsRefreshing(ctx context.Context, username string) (bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT refreshing FROM user_status WHERE username = ?`, username)

	var refreshing int
	err := row.Scan(&refreshing)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, wrap(err)
	}
	return refreshing != 0, nil
}
