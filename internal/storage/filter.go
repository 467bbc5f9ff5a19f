package storage

import (
	"fmt"
	"strings"

	"github.com/youwont/wagers/internal/models"
)

// StatusFilter narrows a bet listing by status.
type StatusFilter string

const (
	FilterAll      StatusFilter = "ALL"
	FilterOpen     StatusFilter = StatusFilter(models.BetStatusOpen)
	FilterResolved StatusFilter = StatusFilter(models.BetStatusResolved)
	FilterCanceled StatusFilter = StatusFilter(models.BetStatusCanceled)
)

// ParseStatusFilter parses a filter name case-insensitively. An empty string
// means FilterAll.
func ParseStatusFilter(s string) (StatusFilter, error) {
	switch f := StatusFilter(strings.ToUpper(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterOpen, FilterResolved, FilterCanceled:
		return f, nil
	}
	return "", fmt.Errorf("unknown status filter %q", s)
}

// Match reports whether bet passes the filter.
func (f StatusFilter) Match(bet *models.Bet) bool {
	return f == FilterAll || f == "" || models.BetStatus(f) == bet.Status
}

// FilterBets returns the bets that pass f, preserving their relative order.
// FilterAll returns bets unchanged.
func FilterBets(bets []*models.Bet, f StatusFilter) []*models.Bet {
	if f == FilterAll || f == "" {
		return bets
	}
	filtered := make([]*models.Bet, 0, len(bets))
	for _, b := range bets {
		if f.Match(b) {
			filtered = append(filtered, b)
		}
	}
	return filtered
}
