package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/youwont/wagers/internal/calculator"
	"github.com/youwont/wagers/internal/models"
	"github.com/youwont/wagers/internal/storage"
)

// CreateBet persists a new bet.
func (s *MemoryStore) CreateBet(ctx context.Context, bet *models.Bet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bets[bet.ID]; exists && bet.ID != "" {
		return fmt.Errorf("failed to create bet %s: id already exists", bet.ID)
	}
	if _, ok := s.groups[bet.GroupID]; !ok {
		return fmt.Errorf("failed to create bet %q: group %s: %w", bet.Title, bet.GroupID, storage.ErrNotFound)
	}

	if bet.ID == "" {
		bet.ID = uuid.New().String()
	}
	if bet.CreatedAt.IsZero() {
		bet.CreatedAt = s.now()
	}
	if bet.Status == "" {
		bet.Status = models.BetStatusOpen
	}

	stored := bet.Clone()
	for i := range stored.Wagers {
		if stored.Wagers[i].ID == "" {
			stored.Wagers[i].ID = uuid.New().String()
		}
	}
	s.bets[bet.ID] = stored
	s.betOrder = append(s.betOrder, bet.ID)

	return nil
}

// GetBet retrieves a bet by ID, including all wagers.
func (s *MemoryStore) GetBet(ctx context.Context, id string) (*models.Bet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.bets[id].Clone(), nil
}

// ListBetsByGroup returns the group's bets in creation order.
func (s *MemoryStore) ListBetsByGroup(ctx context.Context, groupID string) ([]*models.Bet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var bets []*models.Bet
	for _, id := range s.betOrder {
		if b := s.bets[id]; b.GroupID == groupID {
			bets = append(bets, b.Clone())
		}
	}
	return bets, nil
}

// PlaceWager debits the stake from the user and appends the wager to the bet.
func (s *MemoryStore) PlaceWager(ctx context.Context, betID string, wager *models.Wager) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if wager.Amount <= 0 {
		return fmt.Errorf("failed to place wager on bet %s: %w", betID, storage.ErrInvalidAmount)
	}
	bet, ok := s.bets[betID]
	if !ok {
		return fmt.Errorf("bet %s: %w", betID, storage.ErrNotFound)
	}
	user, ok := s.users[wager.UserID]
	if !ok {
		return fmt.Errorf("user %s: %w", wager.UserID, storage.ErrNotFound)
	}
	if bet.Status != models.BetStatusOpen {
		return fmt.Errorf("failed to place wager on bet %s: %w", betID, storage.ErrBetNotOpen)
	}
	if bet.HasWagered(wager.UserID) {
		return fmt.Errorf("failed to place wager on bet %s: %w", betID, storage.ErrDuplicateWager)
	}
	if user.Points < wager.Amount {
		return fmt.Errorf("failed to place wager on bet %s: %w", betID, storage.ErrInsufficientPoints)
	}

	if wager.ID == "" {
		wager.ID = uuid.New().String()
	}
	if wager.PlacedAt.IsZero() {
		wager.PlacedAt = s.now()
	}

	user.Points -= wager.Amount
	bet.Wagers = append(bet.Wagers, *wager)
	s.appendLedger(&models.LedgerEntry{
		UserID:    wager.UserID,
		BetID:     betID,
		WagerID:   wager.ID,
		Kind:      models.LedgerStake,
		Amount:    -wager.Amount,
		CreatedAt: wager.PlacedAt,
	})

	return nil
}

// SettleBet moves an open bet to a terminal status and pays out credits.
// Nothing is changed unless every step can be applied.
func (s *MemoryStore) SettleBet(ctx context.Context, betID string, status models.BetStatus, winningSide models.Side, credits []calculator.Credit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bet, ok := s.bets[betID]
	if !ok {
		return fmt.Errorf("bet %s: %w", betID, storage.ErrNotFound)
	}
	if bet.Status != models.BetStatusOpen {
		return fmt.Errorf("failed to settle bet %s: %w", betID, storage.ErrBetNotOpen)
	}
	switch status {
	case models.BetStatusResolved:
		if !winningSide.Valid() {
			return fmt.Errorf("failed to settle bet %s: resolved without a winning side", betID)
		}
	case models.BetStatusCanceled:
		if winningSide != "" {
			return fmt.Errorf("failed to settle bet %s: canceled with a winning side", betID)
		}
	default:
		return fmt.Errorf("failed to settle bet %s: %s is not a terminal status", betID, status)
	}
	for _, c := range credits {
		if _, ok := s.users[c.UserID]; !ok {
			return fmt.Errorf("failed to settle bet %s: user %s: %w", betID, c.UserID, storage.ErrNotFound)
		}
	}

	now := s.now()
	bet.Status = status
	bet.WinningSide = winningSide
	bet.SettledAt = now

	for _, c := range credits {
		s.users[c.UserID].Points += c.Amount
		s.appendLedger(&models.LedgerEntry{
			UserID:    c.UserID,
			BetID:     betID,
			WagerID:   c.WagerID,
			Kind:      c.Kind,
			Amount:    c.Amount,
			CreatedAt: now,
		})
	}

	return nil
}
