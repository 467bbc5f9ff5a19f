// Package lifecycle holds the bet state machine and the guards that decide
// who may move a bet through it.
//
//	OPEN --resolve (decider, winning side)--> RESOLVED
//	OPEN --cancel (decider or group admin)--> CANCELED
//
// RESOLVED and CANCELED are terminal. Wagers may only be placed while OPEN.
package lifecycle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/youwont/wagers/internal/models"
)

// Op is an operation that acts on a bet.
type Op string

const (
	OpResolve    Op = "resolve"
	OpCancel     Op = "cancel"
	OpPlaceWager Op = "place_wager"
)

var (
	// ErrInvalidTransition matches every rejected lifecycle operation.
	ErrInvalidTransition = errors.New("invalid transition")

	ErrBetClosed          = errors.New("bet is not open")
	ErrNotAuthorized      = errors.New("actor is not allowed to perform this operation")
	ErrNotMember          = errors.New("user is not a member of the bet's group")
	ErrInvalidSide        = errors.New("side must be FOR or AGAINST")
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrDuplicateWager     = errors.New("user already has a wager on this bet")
	ErrInsufficientPoints = errors.New("insufficient points")

	// ErrInvalidBet is returned when a new bet fails validation.
	ErrInvalidBet = errors.New("invalid bet")
)

// Error is a rejected lifecycle operation. It matches both
// ErrInvalidTransition and its Reason with errors.Is.
type Error struct {
	Op     Op
	BetID  string
	Status models.BetStatus
	Reason error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s bet %s (status %s): %v", e.Op, e.BetID, e.Status, e.Reason)
}

func (e *Error) Unwrap() []error {
	return []error{ErrInvalidTransition, e.Reason}
}

func reject(op Op, bet *models.Bet, reason error) error {
	return &Error{Op: op, BetID: bet.ID, Status: bet.Status, Reason: reason}
}

var transitions = map[models.BetStatus]map[Op]models.BetStatus{
	models.BetStatusOpen: {
		OpResolve: models.BetStatusResolved,
		OpCancel:  models.BetStatusCanceled,
	},
}

// Next returns the status a bet in status from moves to when op is applied.
func Next(from models.BetStatus, op Op) (models.BetStatus, error) {
	to, ok := transitions[from][op]
	if !ok {
		return "", fmt.Errorf("%w: cannot %s from %s", ErrInvalidTransition, op, from)
	}
	return to, nil
}

// CheckResolve verifies that actorID may resolve bet in favour of side.
func CheckResolve(bet *models.Bet, actorID string, side models.Side) error {
	if bet.Status != models.BetStatusOpen {
		return reject(OpResolve, bet, ErrBetClosed)
	}
	if actorID != bet.DeciderID {
		return reject(OpResolve, bet, ErrNotAuthorized)
	}
	if !side.Valid() {
		return reject(OpResolve, bet, ErrInvalidSide)
	}
	return nil
}

// CheckCancel verifies that actorID may cancel bet. The decider and any
// admin of the bet's group may cancel.
func CheckCancel(bet *models.Bet, group *models.Group, actorID string) error {
	if bet.Status != models.BetStatusOpen {
		return reject(OpCancel, bet, ErrBetClosed)
	}
	if actorID != bet.DeciderID && (group == nil || !group.IsAdmin(actorID)) {
		return reject(OpCancel, bet, ErrNotAuthorized)
	}
	return nil
}

// CheckPlaceWager verifies that user may stake amount on side of bet.
func CheckPlaceWager(bet *models.Bet, group *models.Group, user *models.User, side models.Side, amount int64) error {
	if bet.Status != models.BetStatusOpen {
		return reject(OpPlaceWager, bet, ErrBetClosed)
	}
	if group == nil || !group.IsMember(user.ID) {
		return reject(OpPlaceWager, bet, ErrNotMember)
	}
	if !side.Valid() {
		return reject(OpPlaceWager, bet, ErrInvalidSide)
	}
	if amount <= 0 {
		return reject(OpPlaceWager, bet, ErrInvalidAmount)
	}
	if bet.HasWagered(user.ID) {
		return reject(OpPlaceWager, bet, ErrDuplicateWager)
	}
	if amount > user.Points {
		return reject(OpPlaceWager, bet, ErrInsufficientPoints)
	}
	return nil
}

// CheckNewBet validates a bet before it is created in group.
func CheckNewBet(bet *models.Bet, group *models.Group) error {
	switch {
	case strings.TrimSpace(bet.Title) == "":
		return fmt.Errorf("%w: title required", ErrInvalidBet)
	case bet.GroupID != group.ID:
		return fmt.Errorf("%w: bet belongs to group %s, not %s", ErrInvalidBet, bet.GroupID, group.ID)
	case !group.IsMember(bet.CreatorID):
		return fmt.Errorf("%w: creator %s is not a member of group %s", ErrInvalidBet, bet.CreatorID, group.ID)
	case !group.IsMember(bet.DeciderID):
		return fmt.Errorf("%w: decider %s is not a member of group %s", ErrInvalidBet, bet.DeciderID, group.ID)
	}
	return nil
}

var reasonCodes = []struct {
	err  error
	code string
}{
	{ErrBetClosed, "bet_closed"},
	{ErrNotAuthorized, "not_authorized"},
	{ErrNotMember, "not_member"},
	{ErrInvalidSide, "invalid_side"},
	{ErrInvalidAmount, "invalid_amount"},
	{ErrDuplicateWager, "duplicate_wager"},
	{ErrInsufficientPoints, "insufficient_points"},
	{ErrInvalidBet, "invalid_bet"},
}

// ReasonCode returns a short snake_case code for a rejection, suitable for
// metric labels. Errors that are not lifecycle rejections map to "other".
func ReasonCode(err error) string {
	for _, rc := range reasonCodes {
		if errors.Is(err, rc.err) {
			return rc.code
		}
	}
	return "other"
}
