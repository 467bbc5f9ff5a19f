package calculator

import (
	"errors"
	"fmt"
	"math/bits"
	"sort"

	"github.com/youwont/wagers/internal/models"
)

const (
	PolicyParimutuel = "parimutuel"
	PolicyEvenSplit  = "even-split"
)

var (
	ErrNotResolved   = errors.New("bet is not resolved")
	ErrUnknownPolicy = errors.New("unknown settlement policy")
)

// Credit is a balance change owed to one wager when a bet settles.
// Stakes are escrowed at placement, so settlement only ever credits.
type Credit struct {
	UserID  string
	WagerID string
	Kind    models.LedgerKind
	Amount  int64
}

// SettlementPolicy turns a resolved bet into the credits owed to its wagers.
// Implementations must conserve points: the credits always sum to the pool total.
type SettlementPolicy interface {
	Name() string
	Settle(bet *models.Bet) ([]Credit, error)
}

// PolicyByName returns the resolution policy registered under name.
func PolicyByName(name string) (SettlementPolicy, error) {
	switch name {
	case PolicyParimutuel:
		return Parimutuel{}, nil
	case PolicyEvenSplit:
		return EvenSplit{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
}

// Parimutuel pays each winning wager in proportion to its stake:
//
//	payout = stake × total_pool / winning_pool
//
// Integer division leaves at most one point per winner unpaid; those points go
// one each to the winning wagers in placement order.
type Parimutuel struct{}

func (Parimutuel) Name() string { return PolicyParimutuel }

func (Parimutuel) Settle(bet *models.Bet) ([]Credit, error) {
	winners, err := winningWagers(bet)
	if err != nil {
		return nil, err
	}
	pool := ComputePoolInfo(bet)
	winningTotal := pool.SideTotal(bet.WinningSide)
	if winningTotal == 0 {
		// Nobody backed the winning side; everyone gets their stake back.
		return Refund{}.Settle(bet)
	}

	credits := make([]Credit, len(winners))
	for i, w := range winners {
		credits[i] = Credit{
			UserID:  w.UserID,
			WagerID: w.ID,
			Kind:    models.LedgerPayout,
			Amount:  mulDiv(w.Amount, pool.Total, winningTotal),
		}
	}
	distributeRemainder(credits, pool.Total)

	return credits, nil
}

// EvenSplit divides the whole pool equally between the winning wagers,
// regardless of stake size (winner-take-pool).
type EvenSplit struct{}

func (EvenSplit) Name() string { return PolicyEvenSplit }

func (EvenSplit) Settle(bet *models.Bet) ([]Credit, error) {
	winners, err := winningWagers(bet)
	if err != nil {
		return nil, err
	}
	if len(winners) == 0 {
		return Refund{}.Settle(bet)
	}

	pool := ComputePoolInfo(bet)
	share := pool.Total / int64(len(winners))
	credits := make([]Credit, len(winners))
	for i, w := range winners {
		credits[i] = Credit{
			UserID:  w.UserID,
			WagerID: w.ID,
			Kind:    models.LedgerPayout,
			Amount:  share,
		}
	}
	distributeRemainder(credits, pool.Total)

	return credits, nil
}

// Refund returns every stake to its placer. Used for cancellations.
type Refund struct{}

func (Refund) Name() string { return "refund" }

func (Refund) Settle(bet *models.Bet) ([]Credit, error) {
	if bet == nil {
		return nil, nil
	}
	credits := make([]Credit, 0, len(bet.Wagers))
	for _, w := range placementOrder(bet.Wagers) {
		credits = append(credits, Credit{
			UserID:  w.UserID,
			WagerID: w.ID,
			Kind:    models.LedgerRefund,
			Amount:  w.Amount,
		})
	}
	return credits, nil
}

// SumCredits totals the amounts of credits.
func SumCredits(credits []Credit) int64 {
	var sum int64
	for _, c := range credits {
		sum += c.Amount
	}
	return sum
}

// winningWagers returns the wagers on the winning side in placement order.
func winningWagers(bet *models.Bet) ([]models.Wager, error) {
	if bet == nil || bet.Status != models.BetStatusResolved || !bet.WinningSide.Valid() {
		return nil, ErrNotResolved
	}
	var winners []models.Wager
	for _, w := range placementOrder(bet.Wagers) {
		if w.Side == bet.WinningSide {
			winners = append(winners, w)
		}
	}
	return winners, nil
}

func placementOrder(wagers []models.Wager) []models.Wager {
	sorted := append([]models.Wager(nil), wagers...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PlacedAt.Before(sorted[j].PlacedAt)
	})
	return sorted
}

// distributeRemainder hands out the points lost to integer division so the
// credits add up to total. The remainder is always smaller than len(credits).
func distributeRemainder(credits []Credit, total int64) {
	if len(credits) == 0 {
		return
	}
	remainder := total - SumCredits(credits)
	if remainder <= 0 {
		return
	}
	n := int64(len(credits))
	share, extra := remainder/n, remainder%n
	for i := range credits {
		credits[i].Amount += share
		if int64(i) < extra {
			credits[i].Amount++
		}
	}
}

// mulDiv returns a*b/c without overflowing the intermediate product.
// All arguments are non-negative and a <= c, so the quotient fits in b.
func mulDiv(a, b, c int64) int64 {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	q, _ := bits.Div64(hi, lo, uint64(c))
	return int64(q)
}
