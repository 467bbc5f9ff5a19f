package models

import "time"

// LedgerKind classifies a balance change.
type LedgerKind string

const (
	// LedgerStake is the debit taken when a wager is placed.
	LedgerStake LedgerKind = "STAKE"
	// LedgerPayout is a credit paid to a winning wager.
	LedgerPayout LedgerKind = "PAYOUT"
	// LedgerRefund returns a stake, either on cancellation or when nobody won.
	LedgerRefund LedgerKind = "REFUND"
)

// LedgerEntry records one change to a user's point balance.
type LedgerEntry struct {
	// ID is the unique identifier for the entry (UUID format).
	ID string

	// UserID is the user whose balance changed.
	UserID string

	// BetID is the bet that caused the change.
	BetID string

	// WagerID is the wager the change belongs to.
	WagerID string

	// Kind says why the balance changed.
	Kind LedgerKind

	// Amount is the signed change: negative for stakes, positive for credits.
	Amount int64

	// CreatedAt is when the change was applied.
	CreatedAt time.Time
}
