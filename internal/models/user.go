package models

import "time"

// User represents a person who can join groups and wager points.
type User struct {
	// ID is the unique identifier for the user (UUID format for generated users).
	ID string

	// Name is the display name of the user.
	Name string

	// Username is the unique handle of the user.
	Username string

	// AvatarURL is an optional avatar reference. Empty means no avatar.
	AvatarURL string

	// Points is the user's spendable balance. Stakes on open bets are
	// already deducted from it.
	Points int64

	// CreatedAt is when the user was created.
	CreatedAt time.Time
}

// NewUser creates a new User with the given starting balance.
// The ID is left empty for the store to assign.
func NewUser(name, username string, points int64) *User {
	return &User{
		Name:      name,
		Username:  username,
		Points:    points,
		CreatedAt: time.Now().UTC(),
	}
}
