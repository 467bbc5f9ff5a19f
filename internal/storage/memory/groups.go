package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/youwont/wagers/internal/models"
	"github.com/youwont/wagers/internal/storage"
)

// CreateGroup persists a new group with its initial members.
func (s *MemoryStore) CreateGroup(ctx context.Context, group *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.groups[group.ID]; exists && group.ID != "" {
		return fmt.Errorf("failed to create group %s: id already exists", group.ID)
	}
	if _, taken := s.inviteCodes[group.InviteCode]; taken {
		return fmt.Errorf("failed to create group %q: %w", group.Name, storage.ErrInviteCodeTaken)
	}

	seen := make(map[string]bool, len(group.Members))
	for _, m := range group.Members {
		if _, ok := s.users[m.UserID]; !ok {
			return fmt.Errorf("failed to create group %q: member %s: %w", group.Name, m.UserID, storage.ErrNotFound)
		}
		if seen[m.UserID] {
			return fmt.Errorf("failed to create group %q: member %s: %w", group.Name, m.UserID, storage.ErrAlreadyMember)
		}
		seen[m.UserID] = true
	}

	now := s.now()
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt.IsZero() {
		group.CreatedAt = now
	}
	for i := range group.Members {
		if group.Members[i].JoinedAt.IsZero() {
			group.Members[i].JoinedAt = now
		}
	}

	s.groups[group.ID] = group.Clone()
	s.groupOrder = append(s.groupOrder, group.ID)
	s.inviteCodes[group.InviteCode] = group.ID

	return nil
}

// GetGroup retrieves a group by ID.
func (s *MemoryStore) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.groups[id].Clone(), nil
}

// GetGroupByInviteCode retrieves the group an invite code belongs to.
func (s *MemoryStore) GetGroupByInviteCode(ctx context.Context, code string) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.inviteCodes[code]
	if !ok {
		return nil, nil
	}
	return s.groups[id].Clone(), nil
}

// ListGroups returns all groups in creation order.
func (s *MemoryStore) ListGroups(ctx context.Context) ([]*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make([]*models.Group, 0, len(s.groupOrder))
	for _, id := range s.groupOrder {
		groups = append(groups, s.groups[id].Clone())
	}
	return groups, nil
}

// ListGroupsForUser returns the groups userID is a member of.
func (s *MemoryStore) ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var groups []*models.Group
	for _, id := range s.groupOrder {
		if g := s.groups[id]; g.IsMember(userID) {
			groups = append(groups, g.Clone())
		}
	}
	return groups, nil
}

// AddGroupMember adds a user to an existing group.
func (s *MemoryStore) AddGroupMember(ctx context.Context, groupID string, member models.GroupMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	group, ok := s.groups[groupID]
	if !ok {
		return fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if _, ok := s.users[member.UserID]; !ok {
		return fmt.Errorf("user %s: %w", member.UserID, storage.ErrNotFound)
	}
	if group.IsMember(member.UserID) {
		return fmt.Errorf("failed to add %s to group %s: %w", member.UserID, groupID, storage.ErrAlreadyMember)
	}
	if member.JoinedAt.IsZero() {
		member.JoinedAt = s.now()
	}

	group.Members = append(group.Members, member)
	return nil
}

// DeleteGroup removes a group and cascades to its bets and their wagers.
// Stakes on bets that are still OPEN go back to their users with a REFUND
// ledger entry. Ledger history is kept.
func (s *MemoryStore) DeleteGroup(ctx context.Context, groupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	group, ok := s.groups[groupID]
	if !ok {
		return fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}

	now := s.now()
	for id, bet := range s.bets {
		if bet.GroupID == groupID {
			if bet.Status == models.BetStatusOpen {
				s.refundStakes(bet, now)
			}
			delete(s.bets, id)
			s.betOrder = removeID(s.betOrder, id)
		}
	}
	delete(s.inviteCodes, group.InviteCode)
	delete(s.groups, groupID)
	s.groupOrder = removeID(s.groupOrder, groupID)

	return nil
}

// refundStakes returns every stake of bet to its user. Callers must hold the
// write lock.
func (s *MemoryStore) refundStakes(bet *models.Bet, at time.Time) {
	for _, w := range bet.Wagers {
		user, ok := s.users[w.UserID]
		if !ok {
			continue
		}
		user.Points += w.Amount
		s.appendLedger(&models.LedgerEntry{
			UserID:    w.UserID,
			BetID:     bet.ID,
			WagerID:   w.ID,
			Kind:      models.LedgerRefund,
			Amount:    w.Amount,
			CreatedAt: at,
		})
	}
}
