package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/youwont/wagers/internal/models"
)

// appendLedger records an entry. Callers must hold the write lock.
func (s *MemoryStore) appendLedger(entry *models.LedgerEntry) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	s.ledger[entry.UserID] = append(s.ledger[entry.UserID], entry)
}

// ListLedger returns a user's balance changes, newest first.
func (s *MemoryStore) ListLedger(ctx context.Context, userID string) ([]*models.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.ledger[userID]
	out := make([]*models.LedgerEntry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		c := *entries[i]
		out = append(out, &c)
	}
	return out, nil
}
