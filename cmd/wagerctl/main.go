// Command wagerctl runs the wager engine in memory over the sample community
// and prints views of it.
//
//	wagerctl [-config wagers.toml] [-user u1] <command> [args]
//
// Commands:
//
//	groups                 groups of -user with bet counts
//	bets <group> [status]  bets of a group, optionally ALL, OPEN, RESOLVED or CANCELED
//	pool <bet>             pool totals and odds of a bet
//	activity               settled wagers of -user
//	demo                   place, resolve and cancel bets, then print balances and metrics
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/youwont/wagers/internal/config"
	"github.com/youwont/wagers/internal/fixtures"
	"github.com/youwont/wagers/internal/metrics"
	"github.com/youwont/wagers/internal/service"
	"github.com/youwont/wagers/internal/storage/memory"
	"github.com/youwont/wagers/pkg/logging"
)

var errUsage = errors.New("usage")

type app struct {
	cfg      *config.Config
	store    *memory.MemoryStore
	registry *prometheus.Registry
	bets     *service.BetService
	groups   *service.GroupService
	queries  *service.QueryService
	userID   string
}

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	userID := flag.String("user", fixtures.CurrentUserID, "user to show views for")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] groups|bets|pool|activity|demo [args]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logging.SetupWithLevelName(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := newApp(ctx, cfg, *userID)
	if err != nil {
		slog.Error("Failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.store.Close()

	if err := a.run(ctx, flag.Args()); err != nil {
		if errors.Is(err, errUsage) {
			flag.Usage()
			os.Exit(2)
		}
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func newApp(ctx context.Context, cfg *config.Config, userID string) (*app, error) {
	policy, err := cfg.SettlementPolicy()
	if err != nil {
		return nil, err
	}

	store := memory.New()
	if cfg.Fixtures.LoadSample {
		if err := fixtures.Load(ctx, store); err != nil {
			return nil, err
		}
		slog.Info("Sample data loaded")
	}

	registry := prometheus.NewRegistry()
	bets := service.NewBetService(store, policy, metrics.New(registry))
	slog.Info("Wager engine initialized", "policy", policy.Name())

	return &app{
		cfg:      cfg,
		store:    store,
		registry: registry,
		bets:     bets,
		groups:   service.NewGroupService(store, bets),
		queries:  service.NewQueryService(store, policy),
		userID:   userID,
	}, nil
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	switch cmd, rest := args[0], args[1:]; cmd {
	case "groups":
		return a.listGroups(ctx)
	case "bets":
		if len(rest) < 1 || len(rest) > 2 {
			return errUsage
		}
		status := ""
		if len(rest) == 2 {
			status = rest[1]
		}
		return a.listBets(ctx, rest[0], status)
	case "pool":
		if len(rest) != 1 {
			return errUsage
		}
		return a.showPool(ctx, rest[0])
	case "activity":
		return a.showActivity(ctx)
	case "demo":
		return a.demo(ctx)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}
