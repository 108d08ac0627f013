package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shelfwatch/shelfwatch-server/internal/domain"
	"github.com/shelfwatch/shelfwatch-server/internal/store"
)

// GetUserPreferences retrieves a user's preferences.
// Returns store.ErrNotFound if the user has never saved any.
func (s *Store) GetUserPreferences(ctx context.Context, username string) (*domain.UserPreferences, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT username, preferred_branch, updated_at
		FROM user_preferences WHERE username = ?`, username)

	var (
		p         domain.UserPreferences
		updatedAt string
	)
	err := row.Scan(&p.Username, &p.PreferredBranch, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, wrap(err)
	}

	p.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, wrap(err)
	}
	return &p, nil
}

// UpsertUserPreferences creates or replaces a user's preferences.
func (s *Store) UpsertUserPreferences(ctx context.Context, p *domain.UserPreferences) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO user_preferences (username, preferred_branch, updated_at)
		VALUES (?, ?, ?)`,
		p.Username, p.PreferredBranch, formatTime(time.Now()),
	)
	return wrap(err)
}
