package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/youwont/wagers/internal/models"
	"github.com/youwont/wagers/internal/storage"
)

const (
	inviteCodeLength   = 8
	inviteCodeAttempts = 5
)

// GroupService manages groups and their membership.
type GroupService struct {
	store storage.Store
	bets  *BetService
}

// NewGroupService creates a GroupService. bets is used to refund open bets
// when a group is deleted.
func NewGroupService(store storage.Store, bets *BetService) *GroupService {
	return &GroupService{store: store, bets: bets}
}

// CreateGroup creates a new group with creatorID as its only member and admin.
func (s *GroupService) CreateGroup(ctx context.Context, creatorID, name, description string) (*models.Group, error) {
	slog.Info("CreateGroup request received", "creator_id", creatorID, "name", name)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: group name required", ErrInvalidArgument)
	}
	creator, err := s.store.GetUser(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", creatorID, err)
	}
	if creator == nil {
		return nil, fmt.Errorf("user %s: %w", creatorID, ErrNotFound)
	}

	for attempt := 0; attempt < inviteCodeAttempts; attempt++ {
		group := &models.Group{
			Name:        name,
			Description: strings.TrimSpace(description),
			InviteCode:  newInviteCode(),
			CreatedBy:   creatorID,
			Members: []models.GroupMember{
				{UserID: creatorID, Role: models.RoleAdmin},
			},
		}

		err := s.store.CreateGroup(ctx, group)
		if errors.Is(err, storage.ErrInviteCodeTaken) {
			slog.Warn("Invite code collision, retrying", "attempt", attempt+1)
			continue
		}
		if err != nil {
			slog.Error("CreateGroup failed", "error", err)
			return nil, fmt.Errorf("failed to create group: %w", err)
		}

		slog.Info("Group created", "group_id", group.ID, "invite_code", group.InviteCode)
		return s.store.GetGroup(ctx, group.ID)
	}

	return nil, fmt.Errorf("failed to create group: %w", storage.ErrInviteCodeTaken)
}

// JoinGroup adds userID to the group identified by inviteCode as a member.
// Invite codes are matched case-insensitively.
func (s *GroupService) JoinGroup(ctx context.Context, userID, inviteCode string) (*models.Group, error) {
	code := strings.ToUpper(strings.TrimSpace(inviteCode))
	slog.Info("JoinGroup request received", "user_id", userID, "invite_code", code)

	group, err := s.store.GetGroupByInviteCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up invite code: %w", err)
	}
	if group == nil {
		return nil, fmt.Errorf("invite code %s: %w", code, ErrNotFound)
	}
	if group.IsMember(userID) {
		return nil, fmt.Errorf("user %s, group %s: %w", userID, group.ID, ErrAlreadyMember)
	}

	err = s.store.AddGroupMember(ctx, group.ID, models.GroupMember{UserID: userID, Role: models.RoleMember})
	switch {
	case errors.Is(err, storage.ErrAlreadyMember):
		return nil, fmt.Errorf("user %s, group %s: %w", userID, group.ID, ErrAlreadyMember)
	case errors.Is(err, storage.ErrNotFound):
		return nil, fmt.Errorf("failed to join group %s: %w", group.ID, ErrNotFound)
	case err != nil:
		slog.Error("JoinGroup failed", "group_id", group.ID, "error", err)
		return nil, fmt.Errorf("failed to join group %s: %w", group.ID, err)
	}

	slog.Info("User joined group", "user_id", userID, "group_id", group.ID)
	return s.store.GetGroup(ctx, group.ID)
}

// DeleteGroup removes a group and its bets. Open bets are canceled and
// refunded first; the store refunds any bet opened after that pass as part
// of the delete itself. Only admins may delete.
func (s *GroupService) DeleteGroup(ctx context.Context, actorID, groupID string) error {
	slog.Info("DeleteGroup request received", "actor_id", actorID, "group_id", groupID)

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to get group %s: %w", groupID, err)
	}
	if group == nil {
		return fmt.Errorf("group %s: %w", groupID, ErrNotFound)
	}
	if !group.IsAdmin(actorID) {
		slog.Warn("DeleteGroup rejected", "actor_id", actorID, "group_id", groupID)
		return fmt.Errorf("user %s cannot delete group %s: %w", actorID, groupID, ErrForbidden)
	}

	bets, err := s.store.ListBetsByGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to list bets for group %s: %w", groupID, err)
	}
	refunded := 0
	for _, bet := range bets {
		if bet.Status != models.BetStatusOpen {
			continue
		}
		if err := s.bets.cancelOpen(ctx, bet.ID); err != nil {
			slog.Error("DeleteGroup failed - could not refund bet", "bet_id", bet.ID, "error", err)
			return fmt.Errorf("failed to refund bet %s: %w", bet.ID, err)
		}
		refunded++
	}

	if err := s.store.DeleteGroup(ctx, groupID); err != nil {
		slog.Error("DeleteGroup failed", "group_id", groupID, "error", err)
		return fmt.Errorf("failed to delete group %s: %w", groupID, err)
	}

	slog.Info("Group deleted", "group_id", groupID, "bets_count", len(bets), "refunded_bets", refunded)
	return nil
}

// newInviteCode returns a short uppercase code derived from a random UUID.
func newInviteCode() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(id[:inviteCodeLength])
}
