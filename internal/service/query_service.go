package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/youwont/wagers/internal/calculator"
	"github.com/youwont/wagers/internal/models"
	"github.com/youwont/wagers/internal/storage"
)

// QueryService provides read-only views over the store for presentation callers.
// Lookups of unknown IDs return nil with a nil error.
type QueryService struct {
	store  storage.Store
	policy calculator.SettlementPolicy
}

// NewQueryService creates a QueryService. policy is used to derive the
// payouts shown in a user's activity feed.
func NewQueryService(store storage.Store, policy calculator.SettlementPolicy) *QueryService {
	return &QueryService{store: store, policy: policy}
}

// GetUser retrieves a user by ID.
func (s *QueryService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.store.GetUser(ctx, id)
}

// GetGroup retrieves a group by ID.
func (s *QueryService) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	return s.store.GetGroup(ctx, id)
}

// GetBet retrieves a bet by ID.
func (s *QueryService) GetBet(ctx context.Context, id string) (*models.Bet, error) {
	return s.store.GetBet(ctx, id)
}

// BetsForGroup lists a group's bets in creation order, narrowed by filter.
// An unknown group yields an empty list.
func (s *QueryService) BetsForGroup(ctx context.Context, groupID string, filter storage.StatusFilter) ([]*models.Bet, error) {
	bets, err := s.store.ListBetsByGroup(ctx, groupID)
	if err != nil {
		slog.Error("BetsForGroup failed", "group_id", groupID, "error", err)
		return nil, fmt.Errorf("failed to list bets for group %s: %w", groupID, err)
	}
	return storage.FilterBets(bets, filter), nil
}

// PoolInfo computes the current pool of a bet. It returns nil for an unknown bet.
func (s *QueryService) PoolInfo(ctx context.Context, betID string) (*calculator.PoolInfo, error) {
	bet, err := s.store.GetBet(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet %s: %w", betID, err)
	}
	if bet == nil {
		return nil, nil
	}
	info := calculator.ComputePoolInfo(bet)
	return &info, nil
}

// GroupSummary is a group together with its bet counts.
type GroupSummary struct {
	Group        *models.Group
	BetCount     int
	OpenBetCount int
}

// GroupSummaries lists the groups userID belongs to with their bet counts.
func (s *QueryService) GroupSummaries(ctx context.Context, userID string) ([]GroupSummary, error) {
	groups, err := s.store.ListGroupsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups for user %s: %w", userID, err)
	}

	summaries := make([]GroupSummary, 0, len(groups))
	for _, g := range groups {
		bets, err := s.store.ListBetsByGroup(ctx, g.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list bets for group %s: %w", g.ID, err)
		}
		summaries = append(summaries, GroupSummary{
			Group:        g,
			BetCount:     len(bets),
			OpenBetCount: len(storage.FilterBets(bets, storage.FilterOpen)),
		})
	}
	return summaries, nil
}

// OpenBetCount counts the open bets across every group userID belongs to.
func (s *QueryService) OpenBetCount(ctx context.Context, userID string) (int, error) {
	summaries, err := s.GroupSummaries(ctx, userID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, sum := range summaries {
		n += sum.OpenBetCount
	}
	return n, nil
}

// ActivityKind classifies a settled wager from its owner's point of view.
type ActivityKind string

const (
	ActivityWin    ActivityKind = "win"
	ActivityLoss   ActivityKind = "loss"
	ActivityRefund ActivityKind = "refund"
)

// ActivityItem is one settled wager in a user's activity feed.
type ActivityItem struct {
	BetID     string
	BetTitle  string
	GroupID   string
	GroupName string
	Kind      ActivityKind
	// Amount is the net effect on the user's points: profit for a win,
	// the lost stake (negative) for a loss, the returned stake for a refund.
	Amount int64
	At     time.Time
}

// Activity lists the settled bets userID wagered on, most recently settled first.
// Outcomes come from the user's ledger. Bets settled before they reached this
// store, such as imported history, have no ledger credits and are replayed
// through the settlement policy instead.
func (s *QueryService) Activity(ctx context.Context, userID string) ([]ActivityItem, error) {
	groups, err := s.store.ListGroupsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups for user %s: %w", userID, err)
	}
	ledger, err := s.store.ListLedger(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger for user %s: %w", userID, err)
	}
	credited := make(map[string][]*models.LedgerEntry)
	for _, e := range ledger {
		if e.Kind != models.LedgerStake {
			credited[e.WagerID] = append(credited[e.WagerID], e)
		}
	}

	var items []ActivityItem
	for _, g := range groups {
		bets, err := s.store.ListBetsByGroup(ctx, g.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list bets for group %s: %w", g.ID, err)
		}
		for _, bet := range bets {
			w, ok := bet.WagerBy(userID)
			if !ok || !bet.IsTerminal() {
				continue
			}
			var item ActivityItem
			if entries, ok := credited[w.ID]; ok {
				item = activityFromLedger(bet, w, entries)
			} else if item, err = s.replayActivity(bet, w); err != nil {
				return nil, err
			}
			item.GroupID = g.ID
			item.GroupName = g.Name
			items = append(items, item)
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].At.After(items[j].At)
	})
	return items, nil
}

func activityFromLedger(bet *models.Bet, w models.Wager, entries []*models.LedgerEntry) ActivityItem {
	item := ActivityItem{BetID: bet.ID, BetTitle: bet.Title, At: bet.SettledAt, Kind: ActivityWin}

	var credit int64
	for _, e := range entries {
		credit += e.Amount
		if e.Kind == models.LedgerRefund {
			item.Kind = ActivityRefund
		}
	}
	if item.Kind == ActivityRefund {
		item.Amount = credit
	} else {
		item.Amount = credit - w.Amount
	}
	return item
}

// replayActivity derives a wager's outcome by settling its bet again.
// A resolved wager with no credit is a loss.
func (s *QueryService) replayActivity(bet *models.Bet, w models.Wager) (ActivityItem, error) {
	item := ActivityItem{BetID: bet.ID, BetTitle: bet.Title, At: bet.SettledAt}

	if bet.Status == models.BetStatusCanceled {
		item.Kind = ActivityRefund
		item.Amount = w.Amount
		return item, nil
	}

	credits, err := s.policy.Settle(bet)
	if err != nil {
		return item, fmt.Errorf("failed to settle bet %s for activity: %w", bet.ID, err)
	}

	item.Kind = ActivityLoss
	item.Amount = -w.Amount
	for _, c := range credits {
		if c.WagerID != w.ID {
			continue
		}
		if c.Kind == models.LedgerRefund {
			item.Kind = ActivityRefund
			item.Amount = c.Amount
		} else {
			item.Kind = ActivityWin
			item.Amount = c.Amount - w.Amount
		}
	}
	return item, nil
}
