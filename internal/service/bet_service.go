package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/youwont/wagers/internal/calculator"
	"github.com/youwont/wagers/internal/lifecycle"
	"github.com/youwont/wagers/internal/metrics"
	"github.com/youwont/wagers/internal/models"
	"github.com/youwont/wagers/internal/storage"
)

// BetService owns every state change of a bet: creation, wagers, resolution
// and cancellation. Mutations of the same bet are serialized so guards always
// run against the bet's latest state.
type BetService struct {
	store   storage.Store
	policy  calculator.SettlementPolicy
	metrics *metrics.Metrics
	locks   *keyedMutex
}

// NewBetService creates a BetService. policy decides how a resolved pool is
// paid out. A nil m uses unregistered collectors.
func NewBetService(store storage.Store, policy calculator.SettlementPolicy, m *metrics.Metrics) *BetService {
	if m == nil {
		m = metrics.New(nil)
	}
	return &BetService{
		store:   store,
		policy:  policy,
		metrics: m,
		locks:   newKeyedMutex(),
	}
}

// NewBet describes a bet to be proposed in a group.
type NewBet struct {
	GroupID     string
	CreatorID   string
	DeciderID   string
	Title       string
	Description string
	EndDate     time.Time
}

// CreateBet proposes a new open bet. The creator and the decider must both
// belong to the group.
func (s *BetService) CreateBet(ctx context.Context, req NewBet) (*models.Bet, error) {
	slog.Info("CreateBet request received",
		"group_id", req.GroupID,
		"creator_id", req.CreatorID,
		"decider_id", req.DeciderID,
	)

	group, err := s.store.GetGroup(ctx, req.GroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get group %s: %w", req.GroupID, err)
	}
	if group == nil {
		return nil, fmt.Errorf("group %s: %w", req.GroupID, ErrNotFound)
	}

	bet := &models.Bet{
		GroupID:     req.GroupID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		CreatorID:   req.CreatorID,
		DeciderID:   req.DeciderID,
		EndDate:     req.EndDate,
		Status:      models.BetStatusOpen,
	}
	if err := lifecycle.CheckNewBet(bet, group); err != nil {
		slog.Warn("CreateBet rejected", "group_id", req.GroupID, "error", err)
		s.metrics.Rejections.WithLabelValues("create_bet", lifecycle.ReasonCode(err)).Inc()
		return nil, err
	}

	if err := s.store.CreateBet(ctx, bet); err != nil {
		slog.Error("CreateBet failed", "group_id", req.GroupID, "error", err)
		return nil, fmt.Errorf("failed to create bet: %w", err)
	}

	s.metrics.BetsCreated.Inc()
	slog.Info("Bet created", "bet_id", bet.ID, "group_id", bet.GroupID)

	return bet, nil
}

// PlaceWager stakes amount points of userID's balance on side of an open bet.
// The stake is debited immediately and held in the bet's pool.
func (s *BetService) PlaceWager(ctx context.Context, betID, userID string, side models.Side, amount int64) (*models.Wager, error) {
	slog.Info("PlaceWager request received",
		"bet_id", betID,
		"user_id", userID,
		"side", side,
		"amount", amount,
	)

	unlock := s.locks.Lock(betID)
	defer unlock()

	bet, group, err := s.loadBet(ctx, betID)
	if err != nil {
		return nil, err
	}
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}

	if err := lifecycle.CheckPlaceWager(bet, group, user, side, amount); err != nil {
		return nil, s.rejected(lifecycle.OpPlaceWager, err)
	}

	wager := &models.Wager{UserID: userID, Side: side, Amount: amount}
	if err := s.store.PlaceWager(ctx, betID, wager); err != nil {
		if rejection := fromStoreError(lifecycle.OpPlaceWager, bet, err); rejection != nil {
			return nil, s.rejected(lifecycle.OpPlaceWager, rejection)
		}
		slog.Error("PlaceWager failed", "bet_id", betID, "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to place wager: %w", err)
	}

	s.metrics.WagersPlaced.WithLabelValues(string(side)).Inc()
	s.metrics.PointsStaked.Add(float64(amount))
	slog.Info("Wager placed", "bet_id", betID, "wager_id", wager.ID, "user_id", userID)

	return wager, nil
}

// ResolveBet closes an open bet in favour of side and pays out its pool with
// the service's settlement policy. Only the bet's decider may resolve it.
func (s *BetService) ResolveBet(ctx context.Context, betID, actorID string, side models.Side) (*models.Bet, error) {
	slog.Info("ResolveBet request received", "bet_id", betID, "actor_id", actorID, "side", side)

	unlock := s.locks.Lock(betID)
	defer unlock()

	bet, _, err := s.loadBet(ctx, betID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CheckResolve(bet, actorID, side); err != nil {
		return nil, s.rejected(lifecycle.OpResolve, err)
	}

	next, err := lifecycle.Next(bet.Status, lifecycle.OpResolve)
	if err != nil {
		return nil, s.rejected(lifecycle.OpResolve, err)
	}
	resolved := bet.Clone()
	resolved.Status = next
	resolved.WinningSide = side

	credits, err := s.policy.Settle(resolved)
	if err != nil {
		slog.Error("ResolveBet failed - settlement error", "bet_id", betID, "policy", s.policy.Name(), "error", err)
		return nil, fmt.Errorf("failed to settle bet %s: %w", betID, err)
	}

	return s.settle(ctx, bet, next, side, credits)
}

// CancelBet closes an open bet without a winner and refunds every stake.
// The decider or any admin of the bet's group may cancel.
func (s *BetService) CancelBet(ctx context.Context, betID, actorID string) (*models.Bet, error) {
	slog.Info("CancelBet request received", "bet_id", betID, "actor_id", actorID)

	unlock := s.locks.Lock(betID)
	defer unlock()

	bet, group, err := s.loadBet(ctx, betID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CheckCancel(bet, group, actorID); err != nil {
		return nil, s.rejected(lifecycle.OpCancel, err)
	}

	return s.cancel(ctx, bet)
}

// cancelOpen cancels betID if it is still open, skipping the actor check.
// It is used when a group is deleted out from under its bets.
func (s *BetService) cancelOpen(ctx context.Context, betID string) error {
	unlock := s.locks.Lock(betID)
	defer unlock()

	bet, err := s.store.GetBet(ctx, betID)
	if err != nil {
		return fmt.Errorf("failed to get bet %s: %w", betID, err)
	}
	if bet == nil || bet.Status != models.BetStatusOpen {
		return nil
	}
	_, err = s.cancel(ctx, bet)
	return err
}

func (s *BetService) cancel(ctx context.Context, bet *models.Bet) (*models.Bet, error) {
	next, err := lifecycle.Next(bet.Status, lifecycle.OpCancel)
	if err != nil {
		return nil, s.rejected(lifecycle.OpCancel, err)
	}
	credits, err := calculator.Refund{}.Settle(bet)
	if err != nil {
		return nil, fmt.Errorf("failed to refund bet %s: %w", bet.ID, err)
	}
	return s.settle(ctx, bet, next, "", credits)
}

// settle writes the terminal status and credits in one store call.
func (s *BetService) settle(ctx context.Context, bet *models.Bet, status models.BetStatus, side models.Side, credits []calculator.Credit) (*models.Bet, error) {
	op := lifecycle.OpResolve
	if status == models.BetStatusCanceled {
		op = lifecycle.OpCancel
	}

	if err := s.store.SettleBet(ctx, bet.ID, status, side, credits); err != nil {
		if rejection := fromStoreError(op, bet, err); rejection != nil {
			return nil, s.rejected(op, rejection)
		}
		slog.Error("SettleBet failed", "bet_id", bet.ID, "status", status, "error", err)
		return nil, fmt.Errorf("failed to settle bet %s: %w", bet.ID, err)
	}

	s.metrics.BetsSettled.WithLabelValues(string(status)).Inc()
	for _, c := range credits {
		s.metrics.PointsPaid.WithLabelValues(string(c.Kind)).Add(float64(c.Amount))
	}
	slog.Info("Bet settled",
		"bet_id", bet.ID,
		"status", status,
		"winning_side", side,
		"credits_count", len(credits),
		"points_paid", calculator.SumCredits(credits),
	)

	settled, err := s.store.GetBet(ctx, bet.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get settled bet %s: %w", bet.ID, err)
	}
	return settled, nil
}

// loadBet fetches a bet and the group that owns it.
func (s *BetService) loadBet(ctx context.Context, betID string) (*models.Bet, *models.Group, error) {
	bet, err := s.store.GetBet(ctx, betID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get bet %s: %w", betID, err)
	}
	if bet == nil {
		return nil, nil, fmt.Errorf("bet %s: %w", betID, ErrNotFound)
	}
	group, err := s.store.GetGroup(ctx, bet.GroupID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get group %s: %w", bet.GroupID, err)
	}
	return bet, group, nil
}

// rejected records a guard rejection and returns it unchanged.
func (s *BetService) rejected(op lifecycle.Op, err error) error {
	slog.Warn("Bet operation rejected", "op", op, "error", err)
	s.metrics.Rejections.WithLabelValues(string(op), lifecycle.ReasonCode(err)).Inc()
	return err
}

// fromStoreError translates the store's conflict errors into lifecycle
// rejections. It returns nil for anything else.
func fromStoreError(op lifecycle.Op, bet *models.Bet, err error) error {
	var reason error
	switch {
	case errors.Is(err, storage.ErrBetNotOpen):
		reason = lifecycle.ErrBetClosed
	case errors.Is(err, storage.ErrDuplicateWager):
		reason = lifecycle.ErrDuplicateWager
	case errors.Is(err, storage.ErrInsufficientPoints):
		reason = lifecycle.ErrInsufficientPoints
	case errors.Is(err, storage.ErrInvalidAmount):
		reason = lifecycle.ErrInvalidAmount
	default:
		return nil
	}
	return &lifecycle.Error{Op: op, BetID: bet.ID, Status: bet.Status, Reason: reason}
}
