// Package fixtures loads the sample community used by the CLI demo and by tests:
// seven users, three groups and eight bets in every lifecycle state.
package fixtures

import (
	"context"
	"fmt"
	"time"

	"github.com/youwont/wagers/internal/models"
	"github.com/youwont/wagers/internal/storage"
)

// CurrentUserID is the user the sample data is written from the point of view of.
const CurrentUserID = "u1"

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(fmt.Sprintf("fixtures: bad timestamp %q: %v", s, err))
	}
	return t
}

func member(userID string, role models.Role, joined string) models.GroupMember {
	return models.GroupMember{UserID: userID, Role: role, JoinedAt: ts(joined)}
}

func wager(id, userID string, side models.Side, amount int64, placed string) models.Wager {
	return models.Wager{ID: id, UserID: userID, Side: side, Amount: amount, PlacedAt: ts(placed)}
}

// Users returns the sample users.
func Users() []*models.User {
	return []*models.User{
		{ID: "u1", Name: "You", Username: "you", Points: 1240},
		{ID: "u2", Name: "Orion", Username: "orion", Points: 980},
		{ID: "u3", Name: "Paul", Username: "paul", Points: 1500},
		{ID: "u4", Name: "Sam", Username: "sam", Points: 640},
		{ID: "u5", Name: "Allison", Username: "allison", Points: 2100},
		{ID: "u6", Name: "Aaron", Username: "aaron", Points: 330},
		{ID: "u7", Name: "Garrett", Username: "garrett", Points: 870},
	}
}

// Groups returns the sample groups.
func Groups() []*models.Group {
	return []*models.Group{
		{
			ID:          "g1",
			Name:        "The Squad",
			Description: "Our main friend group. No cap bets only.",
			InviteCode:  "SQUAD2024",
			CreatedBy:   "u1",
			CreatedAt:   ts("2024-12-01T10:00:00Z"),
			Members: []models.GroupMember{
				member("u1", models.RoleAdmin, "2024-12-01T10:00:00Z"),
				member("u2", models.RoleMember, "2024-12-02T14:30:00Z"),
				member("u3", models.RoleMember, "2024-12-03T09:15:00Z"),
				member("u4", models.RoleMember, "2024-12-05T18:00:00Z"),
				member("u5", models.RoleMember, "2024-12-06T11:45:00Z"),
			},
		},
		{
			ID:          "g2",
			Name:        "Work Rivals",
			Description: "Friendly office competitions. Loser buys lunch vibes.",
			InviteCode:  "WORK42",
			CreatedBy:   "u2",
			CreatedAt:   ts("2025-01-10T08:00:00Z"),
			Members: []models.GroupMember{
				member("u2", models.RoleAdmin, "2025-01-10T08:00:00Z"),
				member("u1", models.RoleMember, "2025-01-11T12:00:00Z"),
				member("u6", models.RoleMember, "2025-01-12T16:30:00Z"),
				member("u7", models.RoleMember, "2025-01-15T10:00:00Z"),
			},
		},
		{
			ID:          "g3",
			Name:        "Fantasy Legends",
			Description: "Side bets for our fantasy football league. Put your points where your mouth is.",
			InviteCode:  "FNTSY99",
			CreatedBy:   "u3",
			CreatedAt:   ts("2025-02-01T09:00:00Z"),
			Members: []models.GroupMember{
				member("u3", models.RoleAdmin, "2025-02-01T09:00:00Z"),
				member("u1", models.RoleMember, "2025-02-02T13:00:00Z"),
				member("u2", models.RoleMember, "2025-02-03T10:00:00Z"),
				member("u5", models.RoleMember, "2025-02-04T15:00:00Z"),
				member("u4", models.RoleMember, "2025-02-05T11:00:00Z"),
				member("u6", models.RoleMember, "2025-02-06T14:00:00Z"),
			},
		},
	}
}

// Bets returns the sample bets with their wagers.
func Bets() []*models.Bet {
	return []*models.Bet{
		{
			ID:          "b1",
			GroupID:     "g1",
			Title:       "Orion won't get her number at the ward activity",
			Description: "Orion keeps saying he's gonna talk to that girl from 3rd ward at the next FHE. We'll see about that.",
			CreatorID:   "u1",
			DeciderID:   "u3",
			EndDate:     ts("2026-03-14T23:59:59Z"),
			Status:      models.BetStatusOpen,
			Wagers: []models.Wager{
				wager("w1", "u1", models.SideFor, 100, "2026-02-15T10:00:00Z"),
				wager("w2", "u4", models.SideFor, 75, "2026-02-16T12:30:00Z"),
				wager("w3", "u5", models.SideAgainst, 200, "2026-02-17T08:00:00Z"),
				wager("w4", "u3", models.SideFor, 50, "2026-02-18T14:00:00Z"),
			},
		},
		{
			ID:          "b2",
			GroupID:     "g1",
			Title:       "Jazz win 5 straight this month",
			Description: "The Jazz are lowkey cooking right now. Lauri is hooping. 5 game win streak or it didn't happen.",
			CreatorID:   "u2",
			DeciderID:   "u4",
			EndDate:     ts("2026-03-31T23:59:59Z"),
			Status:      models.BetStatusOpen,
			Wagers: []models.Wager{
				wager("w5", "u2", models.SideFor, 60, "2026-02-20T09:00:00Z"),
				wager("w6", "u1", models.SideAgainst, 80, "2026-02-21T11:00:00Z"),
				wager("w7", "u4", models.SideFor, 40, "2026-02-22T16:00:00Z"),
			},
		},
		{
			ID:          "b3",
			GroupID:     "g1",
			Title:       "Sam won't hike the Y before spring",
			Description: "Sam has lived in Provo for 2 years and still hasn't hiked the Y. Bet he won't do it before April.",
			CreatorID:   "u5",
			DeciderID:   "u1",
			EndDate:     ts("2026-04-01T23:59:59Z"),
			Status:      models.BetStatusResolved,
			WinningSide: models.SideFor,
			Wagers: []models.Wager{
				wager("w8", "u5", models.SideFor, 150, "2026-01-05T10:00:00Z"),
				wager("w9", "u2", models.SideFor, 100, "2026-01-06T14:00:00Z"),
				wager("w10", "u3", models.SideAgainst, 120, "2026-01-07T09:30:00Z"),
			},
		},
		{
			ID:          "b4",
			GroupID:     "g2",
			Title:       "Garrett won't hit his sales goal this quarter",
			Description: "Garrett is 20% behind on Q1 numbers with 3 weeks left. He says he's \"locked in.\" Sure bro.",
			CreatorID:   "u2",
			DeciderID:   "u6",
			EndDate:     ts("2026-03-31T23:59:59Z"),
			Status:      models.BetStatusOpen,
			Wagers: []models.Wager{
				wager("w11", "u2", models.SideFor, 50, "2026-03-01T08:00:00Z"),
				wager("w12", "u1", models.SideAgainst, 75, "2026-03-02T12:00:00Z"),
				wager("w13", "u7", models.SideAgainst, 30, "2026-03-03T16:00:00Z"),
			},
		},
		{
			ID:          "b5",
			GroupID:     "g2",
			Title:       "Last one to Swig pays for everyone",
			Description: "Friday Swig run. Whoever shows up last covers the whole order. Dirty sodas aren't cheap.",
			CreatorID:   "u6",
			DeciderID:   "u2",
			EndDate:     ts("2026-02-28T17:00:00Z"),
			Status:      models.BetStatusResolved,
			WinningSide: models.SideAgainst,
			Wagers: []models.Wager{
				wager("w14", "u6", models.SideAgainst, 25, "2026-02-28T12:00:00Z"),
				wager("w15", "u1", models.SideFor, 25, "2026-02-28T12:15:00Z"),
				wager("w16", "u7", models.SideAgainst, 25, "2026-02-28T12:30:00Z"),
			},
		},
		{
			ID:          "b6",
			GroupID:     "g2",
			Title:       "Garrett eats at the Creamery 5 days straight",
			Description: "Garrett says the Creamery on 9th is underrated and he'll eat there every day this week. Canceled because he got food poisoning day 3.",
			CreatorID:   "u1",
			DeciderID:   "u6",
			EndDate:     ts("2026-02-21T23:59:59Z"),
			Status:      models.BetStatusCanceled,
			Wagers: []models.Wager{
				wager("w17", "u1", models.SideFor, 40, "2026-02-17T10:00:00Z"),
				wager("w18", "u2", models.SideAgainst, 40, "2026-02-17T14:00:00Z"),
			},
		},
		{
			ID:          "b7",
			GroupID:     "g3",
			Title:       "BYU beats Utah in the rivalry game",
			Description: "The Holy War is back. BYU is looking solid this year. Utah fans in shambles or nah?",
			CreatorID:   "u3",
			DeciderID:   "u5",
			EndDate:     ts("2026-11-29T23:59:59Z"),
			Status:      models.BetStatusOpen,
			Wagers: []models.Wager{
				wager("w19", "u3", models.SideFor, 200, "2026-08-20T10:00:00Z"),
				wager("w20", "u1", models.SideFor, 150, "2026-08-21T14:00:00Z"),
				wager("w21", "u2", models.SideFor, 100, "2026-08-22T09:00:00Z"),
				wager("w22", "u4", models.SideAgainst, 50, "2026-08-23T11:00:00Z"),
				wager("w23", "u6", models.SideAgainst, 75, "2026-08-24T16:00:00Z"),
			},
		},
		{
			ID:          "b8",
			GroupID:     "g3",
			Title:       "Jazz make the playoffs this season",
			Description: "The rebuild is over (maybe). Jazz playoff push or another tank year? I'm saying playoffs.",
			CreatorID:   "u1",
			DeciderID:   "u3",
			EndDate:     ts("2026-04-15T23:59:59Z"),
			Status:      models.BetStatusOpen,
			Wagers: []models.Wager{
				wager("w24", "u1", models.SideFor, 300, "2026-01-01T10:00:00Z"),
				wager("w25", "u5", models.SideAgainst, 250, "2026-01-02T12:00:00Z"),
				wager("w26", "u4", models.SideAgainst, 100, "2026-01-03T08:00:00Z"),
			},
		},
	}
}

// Load inserts the sample users, groups and bets into store.
// Balances are taken as-is; the historical wagers are not debited again.
func Load(ctx context.Context, store storage.Store) error {
	for _, u := range Users() {
		if err := store.CreateUser(ctx, u); err != nil {
			return fmt.Errorf("failed to load user %s: %w", u.ID, err)
		}
	}
	for _, g := range Groups() {
		if err := store.CreateGroup(ctx, g); err != nil {
			return fmt.Errorf("failed to load group %s: %w", g.ID, err)
		}
	}
	for _, b := range Bets() {
		if b.Status != models.BetStatusOpen {
			b.SettledAt = b.EndDate
		}
		if err := store.CreateBet(ctx, b); err != nil {
			return fmt.Errorf("failed to load bet %s: %w", b.ID, err)
		}
	}
	return nil
}
