package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"golang.org/x/sync/errgroup"

	"github.com/youwont/wagers/internal/calculator"
	"github.com/youwont/wagers/internal/lifecycle"
	"github.com/youwont/wagers/internal/models"
	"github.com/youwont/wagers/internal/storage"
)

func TestCreateBet(t *testing.T) {
	env, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	bet, err := env.bets.CreateBet(ctx, NewBet{
		GroupID:   "g1",
		CreatorID: "u1",
		DeciderID: "u2",
		Title:     "  Paul shows up on time to pickup  ",
		EndDate:   time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateBet failed: %v", err)
	}

	if bet.ID == "" {
		t.Error("expected bet ID to be generated")
	}
	if bet.Status != models.BetStatusOpen {
		t.Errorf("expected status OPEN, got %s", bet.Status)
	}
	if bet.Title != "Paul shows up on time to pickup" {
		t.Errorf("expected trimmed title, got %q", bet.Title)
	}
	if got := testutil.ToFloat64(env.metrics.BetsCreated); got != 1 {
		t.Errorf("expected 1 bet created, got %v", got)
	}

	stored, err := env.queries.GetBet(ctx, bet.ID)
	if err != nil {
		t.Fatalf("GetBet failed: %v", err)
	}
	if stored == nil || stored.GroupID != "g1" {
		t.Errorf("expected stored bet in g1, got %+v", stored)
	}
}

func TestCreateBet_Invalid(t *testing.T) {
	env, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	tests := []struct {
		name    string
		req     NewBet
		wantErr error
	}{
		{
			name:    "unknown group",
			req:     NewBet{GroupID: "nope", CreatorID: "u1", DeciderID: "u2", Title: "x"},
			wantErr: ErrNotFound,
		},
		{
			name:    "blank title",
			req:     NewBet{GroupID: "g1", CreatorID: "u1", DeciderID: "u2", Title: "   "},
			wantErr: lifecycle.ErrInvalidBet,
		},
		{
			name:    "creator outside group",
			req:     NewBet{GroupID: "g1", CreatorID: "u6", DeciderID: "u2", Title: "x"},
			wantErr: lifecycle.ErrInvalidBet,
		},
		{
			name:    "decider outside group",
			req:     NewBet{GroupID: "g1", CreatorID: "u1", DeciderID: "u7", Title: "x"},
			wantErr: lifecycle.ErrInvalidBet,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.bets.CreateBet(ctx, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	bets, err := env.queries.BetsForGroup(ctx, "g1", "")
	if err != nil {
		t.Fatalf("BetsForGroup failed: %v", err)
	}
	if len(bets) != 3 {
		t.Errorf("expected rejected bets to leave 3 bets in g1, got %d", len(bets))
	}
}

func TestPlaceWager(t *testing.T) {
	env, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	wager, err := env.bets.PlaceWager(ctx, "b4", "u6", models.SideAgainst, 30)
	if err != nil {
		t.Fatalf("PlaceWager failed: %v", err)
	}
	if wager.ID == "" {
		t.Error("expected wager ID to be generated")
	}

	if got := env.points(t, "u6"); got != 300 {
		t.Errorf("expected u6 balance 300 after staking 30, got %d", got)
	}

	pool, err := env.queries.PoolInfo(ctx, "b4")
	if err != nil {
		t.Fatalf("PoolInfo failed: %v", err)
	}
	if pool.Total != 185 || pool.AgainstTotal != 135 || pool.AgainstCount != 3 {
		t.Errorf("expected pool 185 with 135 AGAINST from 3 wagers, got %+v", pool)
	}

	if got := testutil.ToFloat64(env.metrics.WagersPlaced.WithLabelValues("AGAINST")); got != 1 {
		t.Errorf("expected 1 AGAINST wager counted, got %v", got)
	}
	if got := testutil.ToFloat64(env.metrics.PointsStaked); got != 30 {
		t.Errorf("expected 30 points staked, got %v", got)
	}

	ledger, err := env.store.ListLedger(ctx, "u6")
	if err != nil {
		t.Fatalf("ListLedger failed: %v", err)
	}
	if len(ledger) != 1 || ledger[0].Kind != models.LedgerStake || ledger[0].Amount != -30 {
		t.Errorf("expected one STAKE entry of -30, got %+v", ledger)
	}
}

func TestPlaceWager_Rejected(t *testing.T) {
	env, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	tests := []struct {
		name   string
		betID  string
		userID string
		side   models.Side
		amount int64
		reason error
	}{
		{"canceled bet", "b6", "u1", models.SideFor, 10, lifecycle.ErrBetClosed},
		{"resolved bet", "b3", "u4", models.SideFor, 10, lifecycle.ErrBetClosed},
		{"not a member", "b1", "u6", models.SideFor, 10, lifecycle.ErrNotMember},
		{"invalid side", "b1", "u2", models.Side("MAYBE"), 10, lifecycle.ErrInvalidSide},
		{"zero amount", "b1", "u2", models.SideFor, 0, lifecycle.ErrInvalidAmount},
		{"negative amount", "b1", "u2", models.SideFor, -5, lifecycle.ErrInvalidAmount},
		{"second wager", "b1", "u1", models.SideAgainst, 10, lifecycle.ErrDuplicateWager},
		{"more than balance", "b4", "u6", models.SideFor, 331, lifecycle.ErrInsufficientPoints},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := env.points(t, tt.userID)

			_, err := env.bets.PlaceWager(ctx, tt.betID, tt.userID, tt.side, tt.amount)
			if !errors.Is(err, lifecycle.ErrInvalidTransition) {
				t.Errorf("expected ErrInvalidTransition, got %v", err)
			}
			if !errors.Is(err, tt.reason) {
				t.Errorf("expected reason %v, got %v", tt.reason, err)
			}
			if after := env.points(t, tt.userID); after != before {
				t.Errorf("expected balance unchanged at %d, got %d", before, after)
			}
		})
	}

	if got := testutil.ToFloat64(env.metrics.Rejections.WithLabelValues("place_wager", "bet_closed")); got != 2 {
		t.Errorf("expected 2 bet_closed rejections, got %v", got)
	}
}

func TestPlaceWager_NotFound(t *testing.T) {
	env, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := env.bets.PlaceWager(ctx, "nope", "u1", models.SideFor, 10); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown bet, got %v", err)
	}
	if _, err := env.bets.PlaceWager(ctx, "b1", "nobody", models.SideFor, 10); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown user, got %v", err)
	}
}

func TestResolveBet(t *testing.T) {
	env, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	bet, err := env.bets.CreateBet(ctx, NewBet{GroupID: "g1", CreatorID: "u1", DeciderID: "u2", Title: "Sam finishes the marathon"})
	if err != nil {
		t.Fatalf("CreateBet failed: %v", err)
	}

	stakes := []struct {
		userID string
		side   models.Side
		amount int64
	}{
		{"u1", models.SideFor, 100},
		{"u3", models.SideAgainst, 50},
		{"u5", models.SideAgainst, 30},
	}
	total := env.points(t, "u1") + env.points(t, "u3") + env.points(t, "u5")
	for _, s := range stakes {
		if _, err := env.bets.PlaceWager(ctx, bet.ID, s.userID, s.side, s.amount); err != nil {
			t.Fatalf("PlaceWager(%s) failed: %v", s.userID, err)
		}
	}

	resolved, err := env.bets.ResolveBet(ctx, bet.ID, "u2", models.SideAgainst)
	if err != nil {
		t.Fatalf("ResolveBet failed: %v", err)
	}
	if resolved.Status != models.BetStatusResolved || resolved.WinningSide != models.SideAgainst {
		t.Errorf("expected RESOLVED/AGAINST, got %s/%s", resolved.Status, resolved.WinningSide)
	}
	if resolved.SettledAt.IsZero() {
		t.Error("expected SettledAt to be set")
	}

	// Pool 180, AGAINST 80: u3 gets 112 + 1 remainder, u5 gets 67.
	want := map[string]int64{"u1": 1140, "u3": 1563, "u5": 2137}
	for userID, points := range want {
		if got := env.points(t, userID); got != points {
			t.Errorf("expected %s balance %d, got %d", userID, points, got)
		}
	}
	if got := env.points(t, "u1") + env.points(t, "u3") + env.points(t, "u5"); got != total {
		t.Errorf("expected total points conserved at %d, got %d", total, got)
	}

	if got := testutil.ToFloat64(env.metrics.BetsSettled.WithLabelValues("RESOLVED")); got != 1 {
		t.Errorf("expected 1 resolved bet counted, got %v", got)
	}
	if got := testutil.ToFloat64(env.metrics.PointsPaid.WithLabelValues("PAYOUT")); got != 180 {
		t.Errorf("expected 180 points paid out, got %v", got)
	}
}

func TestResolveBet_SampleBet(t *testing.T) {
	env, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	before := map[string]int64{}
	for _, id := range []string{"u1", "u3", "u4", "u5"} {
		before[id] = env.points(t, id)
	}

	if _, err := env.bets.ResolveBet(ctx, "b1", "u3", models.SideFor); err != nil {
		t.Fatalf("ResolveBet failed: %v", err)
	}

	// Pool 425, FOR 225 from w1, w2, w4; two remainder points go to w1 and w2.
	credited := map[string]int64{"u1": 189, "u4": 142, "u3": 94, "u5": 0}
	for id, delta := range credited {
		if got := env.points(t, id) - before[id]; got != delta {
			t.Errorf("expected %s credited %d, got %d", id, delta, got)
		}
	}
}

func TestResolveBet_Rejected(t *testing.T) {
	env, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	tests := []struct {
		name    string
		betID   string
		actorID string
		side    models.Side
		reason  error
	}{
		{"already resolved", "b3", "u1", models.SideAgainst, lifecycle.ErrBetClosed},
		{"canceled", "b6", "u6", models.SideFor, lifecycle.ErrBetClosed},
		{"not the decider", "b1", "u1", models.SideFor, lifecycle.ErrNotAuthorized},
		{"admin is not the decider", "b2", "u1", models.SideFor, lifecycle.ErrNotAuthorized},
		{"invalid side", "b1", "u3", models.Side(""), lifecycle.ErrInvalidSide},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.bets.ResolveBet(ctx, tt.betID, tt.actorID, tt.side)
			if !errors.Is(err, lifecycle.ErrInvalidTransition) {
				t.Errorf("expected ErrInvalidTransition, got %v", err)
			}
			if !errors.Is(err, tt.reason) {
				t.Errorf("expected reason %v, got %v", tt.reason, err)
			}
		})
	}

	b3, err := env.queries.GetBet(ctx, "b3")
	if err != nil {
		t.Fatalf("GetBet failed: %v", err)
	}
	if b3.WinningSide != models.SideFor {
		t.Errorf("expected b3 to stay FOR, got %s", b3.WinningSide)
	}

	if _, err := env.bets.ResolveBet(ctx, "nope", "u1", models.SideFor); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestResolveBet_EvenSplit(t *testing.T) {
	env, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	bets := NewBetService(env.store, calculator.EvenSplit{}, nil)
	before := map[string]int64{"u1": env.points(t, "u1"), "u4": env.points(t, "u4"), "u3": env.points(t, "u3")}

	if _, err := bets.ResolveBet(ctx, "b1", "u3", models.SideFor); err != nil {
		t.Fatalf("ResolveBet failed: %v", err)
	}

	// 425 split three ways: 141 each plus 2 remainder points in placement order.
	credited := map[string]int64{"u1": 142, "u4": 142, "u3": 141}
	for id, delta := range credited {
		if got := env.points(t, id) - before[id]; got != delta {
			t.Errorf("expected %s credited %d, got %d", id, delta, got)
		}
	}
}

func TestCancelBet(t *testing.T) {
	tests := []struct {
		name    string
		betID   string
		actorID string
		refunds map[string]int64
	}{
		{"by decider", "b2", "u4", map[string]int64{"u2": 60, "u1": 80, "u4": 40}},
		{"by group admin", "b2", "u1", map[string]int64{"u2": 60, "u1": 80, "u4": 40}},
		{"by admin of g2", "b4", "u2", map[string]int64{"u2": 50, "u1": 75, "u7": 30}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, cleanup := setupTestServices(t)
			defer cleanup()
			ctx := context.Background()

			before := map[string]int64{}
			for id := range tt.refunds {
				before[id] = env.points(t, id)
			}

			bet, err := env.bets.CancelBet(ctx, tt.betID, tt.actorID)
			if err != nil {
				t.Fatalf("CancelBet failed: %v", err)
			}
			if bet.Status != models.BetStatusCanceled {
				t.Errorf("expected CANCELED, got %s", bet.Status)
			}
			if bet.WinningSide != "" {
				t.Errorf("expected no winning side, got %s", bet.WinningSide)
			}

			for id, refund := range tt.refunds {
				if got := env.points(t, id) - before[id]; got != refund {
					t.Errorf("expected %s refunded %d, got %d", id, refund, got)
				}
			}
		})
	}
}

func TestCancelBet_Rejected(t *testing.T) {
	env, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	tests := []struct {
		name    string
		betID   string
		actorID string
		reason  error
	}{
		{"plain member", "b1", "u5", lifecycle.ErrNotAuthorized},
		{"already canceled", "b6", "u6", lifecycle.ErrBetClosed},
		{"already resolved", "b5", "u2", lifecycle.ErrBetClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.bets.CancelBet(ctx, tt.betID, tt.actorID)
			if !errors.Is(err, lifecycle.ErrInvalidTransition) || !errors.Is(err, tt.reason) {
				t.Errorf("expected ErrInvalidTransition with %v, got %v", tt.reason, err)
			}
		})
	}

	if got := testutil.ToFloat64(env.metrics.Rejections.WithLabelValues("cancel", "not_authorized")); got != 1 {
		t.Errorf("expected 1 not_authorized cancel, got %v", got)
	}
}

func TestPlaceWager_Concurrent(t *testing.T) {
	env, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	bet, err := env.bets.CreateBet(ctx, NewBet{GroupID: "g3", CreatorID: "u3", DeciderID: "u5", Title: "Draft day trade happens"})
	if err != nil {
		t.Fatalf("CreateBet failed: %v", err)
	}

	members := []string{"u1", "u2", "u3", "u4", "u5", "u6"}
	g, gctx := errgroup.WithContext(ctx)
	for i, userID := range members {
		userID := userID
		side := models.SideFor
		if i%2 == 1 {
			side = models.SideAgainst
		}
		g.Go(func() error {
			_, err := env.bets.PlaceWager(gctx, bet.ID, userID, side, 10)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent PlaceWager failed: %v", err)
	}

	pool, err := env.queries.PoolInfo(ctx, bet.ID)
	if err != nil {
		t.Fatalf("PoolInfo failed: %v", err)
	}
	if pool.Total != 60 || pool.ForCount != 3 || pool.AgainstCount != 3 {
		t.Errorf("expected 60 points from 3+3 wagers, got %+v", pool)
	}
}

func TestPlaceWager_ConcurrentDuplicates(t *testing.T) {
	env, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	before := env.points(t, "u6")
	var placed, duplicates atomic.Int32

	var g errgroup.Group
	for i := 0; i < 20; i++ {
		g.Go(func() error {
			_, err := env.bets.PlaceWager(ctx, "b4", "u6", models.SideFor, 5)
			switch {
			case err == nil:
				placed.Add(1)
			case errors.Is(err, lifecycle.ErrDuplicateWager):
				duplicates.Add(1)
			default:
				return fmt.Errorf("unexpected error: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	if placed.Load() != 1 || duplicates.Load() != 19 {
		t.Errorf("expected 1 placed and 19 duplicates, got %d and %d", placed.Load(), duplicates.Load())
	}
	if got := env.points(t, "u6"); got != before-5 {
		t.Errorf("expected u6 debited once to %d, got %d", before-5, got)
	}
}

func TestResolveAndCancel_Race(t *testing.T) {
	env, cleanup := setupTestServices(t)
	defer cleanup()
	ctx := context.Background()

	var settled atomic.Int32
	var g errgroup.Group
	g.Go(func() error {
		if _, err := env.bets.ResolveBet(ctx, "b2", "u4", models.SideFor); err == nil {
			settled.Add(1)
		} else if !errors.Is(err, lifecycle.ErrBetClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if _, err := env.bets.CancelBet(ctx, "b2", "u1"); err == nil {
			settled.Add(1)
		} else if !errors.Is(err, lifecycle.ErrBetClosed) {
			return err
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if settled.Load() != 1 {
		t.Errorf("expected exactly one settlement, got %d", settled.Load())
	}
	ledger, err := env.store.ListLedger(ctx, "u2")
	if err != nil {
		t.Fatalf("ListLedger failed: %v", err)
	}
	if len(ledger) != 1 {
		t.Errorf("expected u2 credited once, got %d entries", len(ledger))
	}
}

func TestFromStoreError(t *testing.T) {
	bet := &models.Bet{ID: "b1", Status: models.BetStatusOpen}

	tests := []struct {
		name   string
		err    error
		reason error
	}{
		{"bet left open", storage.ErrBetNotOpen, lifecycle.ErrBetClosed},
		{"duplicate", storage.ErrDuplicateWager, lifecycle.ErrDuplicateWager},
		{"balance", storage.ErrInsufficientPoints, lifecycle.ErrInsufficientPoints},
		{"non-positive stake", storage.ErrInvalidAmount, lifecycle.ErrInvalidAmount},
		{"anything else", storage.ErrNotFound, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fromStoreError(lifecycle.OpPlaceWager, bet, fmt.Errorf("wrapped: %w", tt.err))
			if tt.reason == nil {
				if got != nil {
					t.Errorf("expected nil, got %v", got)
				}
				return
			}
			if !errors.Is(got, lifecycle.ErrInvalidTransition) || !errors.Is(got, tt.reason) {
				t.Errorf("expected rejection with %v, got %v", tt.reason, got)
			}
		})
	}
}
