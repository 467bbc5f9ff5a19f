package models

import "time"

// BetStatus is the lifecycle state of a bet.
type BetStatus string

const (
	BetStatusOpen     BetStatus = "OPEN"
	BetStatusResolved BetStatus = "RESOLVED"
	BetStatusCanceled BetStatus = "CANCELED"
)

// Side is one of the two positions a wager can take on a bet.
type Side string

const (
	SideFor     Side = "FOR"
	SideAgainst Side = "AGAINST"
)

// Valid reports whether s is FOR or AGAINST.
func (s Side) Valid() bool {
	return s == SideFor || s == SideAgainst
}

// Bet represents a proposition that the members of a group wager on.
type Bet struct {
	// ID is the unique identifier for the bet (UUID format).
	ID string

	// GroupID is the group that owns this bet.
	GroupID string

	// Title is the one-line proposition (e.g., "Jazz win 5 straight this month").
	Title string

	// Description adds context for the proposition.
	Description string

	// CreatorID is the member who proposed the bet.
	CreatorID string

	// DeciderID is the member with authority to resolve the bet.
	DeciderID string

	// EndDate is when the proposition is expected to be decided.
	EndDate time.Time

	// Status is OPEN until the bet is resolved or canceled. Both are terminal.
	Status BetStatus

	// WinningSide is set if and only if Status is RESOLVED.
	WinningSide Side

	// Wagers are the stakes placed on this bet. Order carries no meaning
	// for pool totals; stores keep placement order.
	Wagers []Wager

	// CreatedAt is when the bet was proposed.
	CreatedAt time.Time

	// SettledAt is when the bet left OPEN. Zero while open.
	SettledAt time.Time
}

// Wager represents a single member's stake on one side of a bet.
// Wagers are immutable once placed.
type Wager struct {
	ID       string
	UserID   string
	Side     Side
	Amount   int64 // points, always > 0
	PlacedAt time.Time
}

// IsTerminal reports whether the bet can no longer change.
func (b *Bet) IsTerminal() bool {
	return b.Status == BetStatusResolved || b.Status == BetStatusCanceled
}

// WagerBy returns the wager placed by userID, if any.
func (b *Bet) WagerBy(userID string) (Wager, bool) {
	for _, w := range b.Wagers {
		if w.UserID == userID {
			return w, true
		}
	}
	return Wager{}, false
}

// HasWagered reports whether userID already has a stake on the bet.
func (b *Bet) HasWagered(userID string) bool {
	_, ok := b.WagerBy(userID)
	return ok
}

// Clone returns a deep copy of the bet.
func (b *Bet) Clone() *Bet {
	if b == nil {
		return nil
	}
	c := *b
	c.Wagers = append([]Wager(nil), b.Wagers...)
	return &c
}
