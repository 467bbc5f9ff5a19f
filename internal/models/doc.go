// Package models defines the core domain models for the wager engine.
//
// # Models
//
//   - User: a person with a point balance
//   - Group: a set of users who wager against each other
//   - GroupMember: a user's membership (and role) in a group
//   - Bet: a proposition the members of one group wager on
//   - Wager: one member's stake on one side of a bet
//   - LedgerEntry: a single balance change caused by a wager or a settlement
//
// # Design Principles
//
// 1. **IDs, not pointers**: relationships are ID strings so models can be copied freely
// 2. **Copies at the boundary**: stores hand out clones, never their own state
// 3. **Escrowed stakes**: a wager's amount leaves the user's balance when it is placed
//    and comes back (or not) when the bet settles
//
// # Ownership
//
// Bets are owned by their group and wagers by their bet; deleting a group deletes
// its bets. Users are independent and only referenced by ID.
package models
