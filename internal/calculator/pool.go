// Package calculator computes bet pools and how a settled pool is paid out.
package calculator

import "github.com/youwont/wagers/internal/models"

// PoolInfo is the wagering standing of a bet, derived from its wagers.
type PoolInfo struct {
	Total        int64 // sum of all wager amounts
	ForTotal     int64
	AgainstTotal int64
	ForCount     int
	AgainstCount int
}

// ComputePoolInfo sums a bet's wagers by side.
// It is pure and recomputed on every call; a nil bet or a bet without wagers
// yields the zero PoolInfo.
func ComputePoolInfo(bet *models.Bet) PoolInfo {
	var info PoolInfo
	if bet == nil {
		return info
	}

	for _, w := range bet.Wagers {
		switch w.Side {
		case models.SideFor:
			info.ForTotal += w.Amount
			info.ForCount++
		case models.SideAgainst:
			info.AgainstTotal += w.Amount
			info.AgainstCount++
		}
	}
	info.Total = info.ForTotal + info.AgainstTotal

	return info
}

// SideTotal returns the amount staked on side.
func (p PoolInfo) SideTotal(side models.Side) int64 {
	switch side {
	case models.SideFor:
		return p.ForTotal
	case models.SideAgainst:
		return p.AgainstTotal
	}
	return 0
}

// ForPercentage is the share of the pool staked FOR, in percent.
// An empty pool is shown as an even 50/50 split; this is a display
// convention, not a probability.
func (p PoolInfo) ForPercentage() float64 {
	if p.Total == 0 {
		return 50
	}
	return float64(p.ForTotal) / float64(p.Total) * 100
}

// AgainstPercentage is the complement of ForPercentage.
func (p PoolInfo) AgainstPercentage() float64 {
	return 100 - p.ForPercentage()
}
