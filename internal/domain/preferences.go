package domain

import "time"

// UserPreferences holds a user's presentation preferences. PreferredBranch
// is a case-insensitive substring token matched against branch names; empty
// means no branch filter.
type UserPreferences struct {
	Username        string    `json:"username"`
	PreferredBranch string    `json:"preferred_branch"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewUserPreferences creates preferences for a user.
func NewUserPreferences(username, preferredBranch string) *UserPreferences {
	return &UserPreferences{
		Username:        username,
		PreferredBranch: preferredBranch,
		UpdatedAt:       time.Now().UTC(),
	}
}
