package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/youwont/wagers/internal/fixtures"
	"github.com/youwont/wagers/internal/models"
	"github.com/youwont/wagers/internal/service"
	"github.com/youwont/wagers/internal/storage"
)

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}

func (a *app) listGroups(ctx context.Context) error {
	summaries, err := a.queries.GroupSummaries(ctx, a.userID)
	if err != nil {
		return err
	}

	w := newTable()
	fmt.Fprintln(w, "ID\tNAME\tMEMBERS\tBETS\tOPEN\tINVITE")
	for _, s := range summaries {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n",
			s.Group.ID, s.Group.Name, len(s.Group.Members), s.BetCount, s.OpenBetCount, s.Group.InviteCode)
	}
	return w.Flush()
}

func (a *app) listBets(ctx context.Context, groupID, status string) error {
	filter, err := storage.ParseStatusFilter(status)
	if err != nil {
		return err
	}
	bets, err := a.queries.BetsForGroup(ctx, groupID, filter)
	if err != nil {
		return err
	}

	w := newTable()
	fmt.Fprintln(w, "ID\tSTATUS\tPOOL\tFOR%\tTITLE")
	for _, b := range bets {
		pool, err := a.queries.PoolInfo(ctx, b.ID)
		if err != nil {
			return err
		}
		status := string(b.Status)
		if b.Status == models.BetStatusResolved {
			status += " (" + string(b.WinningSide) + ")"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%.0f\t%s\n", b.ID, status, pool.Total, pool.ForPercentage(), b.Title)
	}
	return w.Flush()
}

func (a *app) showPool(ctx context.Context, betID string) error {
	bet, err := a.queries.GetBet(ctx, betID)
	if err != nil {
		return err
	}
	if bet == nil {
		return fmt.Errorf("bet %s: %w", betID, service.ErrNotFound)
	}
	pool, err := a.queries.PoolInfo(ctx, betID)
	if err != nil {
		return err
	}

	fmt.Printf("%s  [%s]\n", bet.Title, bet.Status)
	w := newTable()
	fmt.Fprintln(w, "SIDE\tPOINTS\tWAGERS\tSHARE")
	fmt.Fprintf(w, "FOR\t%d\t%d\t%.1f%%\n", pool.ForTotal, pool.ForCount, pool.ForPercentage())
	fmt.Fprintf(w, "AGAINST\t%d\t%d\t%.1f%%\n", pool.AgainstTotal, pool.AgainstCount, pool.AgainstPercentage())
	fmt.Fprintf(w, "TOTAL\t%d\t%d\t\n", pool.Total, pool.ForCount+pool.AgainstCount)
	return w.Flush()
}

func (a *app) showActivity(ctx context.Context) error {
	items, err := a.queries.Activity(ctx, a.userID)
	if err != nil {
		return err
	}

	w := newTable()
	fmt.Fprintln(w, "WHEN\tRESULT\tPOINTS\tGROUP\tBET")
	for _, it := range items {
		fmt.Fprintf(w, "%s\t%s\t%+d\t%s\t%s\n",
			it.At.Format(time.DateOnly), it.Kind, it.Amount, it.GroupName, it.BetTitle)
	}
	return w.Flush()
}

// demo runs a short session against the sample community: a newcomer joins
// by invite code, members wager concurrently on a fresh bet, the decider
// resolves it and an admin cancels another open bet.
func (a *app) demo(ctx context.Context) error {
	if !a.cfg.Fixtures.LoadSample {
		return fmt.Errorf("demo needs the sample data (fixtures.load_sample)")
	}

	newcomer := models.NewUser("Riley", "riley", a.cfg.Users.StartingPoints)
	if err := a.store.CreateUser(ctx, newcomer); err != nil {
		return err
	}
	if _, err := a.groups.JoinGroup(ctx, newcomer.ID, "squad2024"); err != nil {
		return err
	}

	bet, err := a.bets.CreateBet(ctx, service.NewBet{
		GroupID:     "g1",
		CreatorID:   fixtures.CurrentUserID,
		DeciderID:   "u2",
		Title:       "Paul finishes the Timp hike before noon",
		Description: "Trailhead at 5am. Summit and back down by 12.",
		EndDate:     time.Now().Add(7 * 24 * time.Hour),
	})
	if err != nil {
		return err
	}

	stakes := []struct {
		userID string
		side   models.Side
		amount int64
	}{
		{fixtures.CurrentUserID, models.SideFor, 120},
		{"u3", models.SideFor, 80},
		{"u4", models.SideAgainst, 60},
		{"u5", models.SideAgainst, 150},
		{newcomer.ID, models.SideFor, 50},
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, s := range stakes {
		s := s
		g.Go(func() error {
			_, err := a.bets.PlaceWager(gctx, bet.ID, s.userID, s.side, s.amount)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Println("== pool before resolution")
	if err := a.showPool(ctx, bet.ID); err != nil {
		return err
	}

	if _, err := a.bets.ResolveBet(ctx, bet.ID, "u2", models.SideFor); err != nil {
		return err
	}
	if _, err := a.bets.CancelBet(ctx, "b2", fixtures.CurrentUserID); err != nil {
		return err
	}
	// Resolving twice is rejected.
	if _, err := a.bets.ResolveBet(ctx, bet.ID, "u2", models.SideAgainst); err != nil {
		fmt.Printf("\nsecond resolve rejected: %v\n", err)
	}

	fmt.Println("\n== balances")
	users, err := a.store.ListUsers(ctx)
	if err != nil {
		return err
	}
	w := newTable()
	fmt.Fprintln(w, "USER\tPOINTS")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%d\n", u.Name, u.Points)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println("\n== metrics")
	return a.printMetrics()
}

func (a *app) printMetrics() error {
	families, err := a.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	w := newTable()
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := ""
			for _, lp := range m.GetLabel() {
				labels += fmt.Sprintf(" %s=%s", lp.GetName(), lp.GetValue())
			}
			fmt.Fprintf(w, "%s%s\t%g\n", mf.GetName(), labels, m.GetCounter().GetValue())
		}
	}
	return w.Flush()
}
