// Package storage provides abstractions for the entity store.
package storage

import (
	"context"
	"errors"

	"github.com/youwont/wagers/internal/calculator"
	"github.com/youwont/wagers/internal/models"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInviteCodeTaken    = errors.New("invite code already in use")
	ErrAlreadyMember      = errors.New("user is already a member of the group")
	ErrBetNotOpen         = errors.New("bet is not open")
	ErrDuplicateWager     = errors.New("user already has a wager on this bet")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
)

// Store defines the interface for entity storage operations.
// This abstraction lets the hosting application bring its own backend
// without changing the service layer.
//
// Lookups return (nil, nil) when the entity does not exist; an error always
// means the backend failed. Every returned entity is a copy.
type Store interface {
	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, id string) (*models.User, error)

	// ListUsers returns all users in creation order.
	ListUsers(ctx context.Context) ([]*models.User, error)

	// GetGroup retrieves a group by ID, including its members.
	GetGroup(ctx context.Context, id string) (*models.Group, error)

	// GetGroupByInviteCode retrieves the group an invite code belongs to.
	GetGroupByInviteCode(ctx context.Context, code string) (*models.Group, error)

	// ListGroups returns all groups in creation order.
	ListGroups(ctx context.Context) ([]*models.Group, error)

	// ListGroupsForUser returns the groups userID belongs to, in creation order.
	ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)

	// GetBet retrieves a bet by ID, including its wagers.
	GetBet(ctx context.Context, id string) (*models.Bet, error)

	// ListBetsByGroup returns the bets of a group in creation order.
	ListBetsByGroup(ctx context.Context, groupID string) ([]*models.Bet, error)

	// ListLedger returns a user's balance changes, newest first.
	ListLedger(ctx context.Context, userID string) ([]*models.LedgerEntry, error)

	// CreateUser persists a new user. The ID is generated if empty.
	// Generated fields are written back to user only on success.
	CreateUser(ctx context.Context, user *models.User) error

	// CreateGroup persists a new group with its initial members.
	// The ID is generated if empty and members without JoinedAt join now.
	CreateGroup(ctx context.Context, group *models.Group) error

	// AddGroupMember adds a membership to an existing group.
	AddGroupMember(ctx context.Context, groupID string, member models.GroupMember) error

	// DeleteGroup removes a group together with its bets and their wagers.
	// Stakes still held by OPEN bets are refunded in the same write.
	DeleteGroup(ctx context.Context, groupID string) error

	// CreateBet persists a new bet. The ID is generated if empty.
	CreateBet(ctx context.Context, bet *models.Bet) error

	// PlaceWager atomically checks that the bet is still open, that the user
	// has no wager on it yet and can cover a positive stake, then debits the stake
	// and appends the wager. The wager ID is generated if empty.
	PlaceWager(ctx context.Context, betID string, wager *models.Wager) error

	// SettleBet atomically moves an OPEN bet to status, records winningSide
	// and applies every credit to its user's balance. It returns
	// ErrBetNotOpen if the bet has already left OPEN.
	SettleBet(ctx context.Context, betID string, status models.BetStatus, winningSide models.Side, credits []calculator.Credit) error
}
