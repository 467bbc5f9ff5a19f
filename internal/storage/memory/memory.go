// Package memory provides an in-memory implementation of the storage.Store interface.
package memory

import (
	"sync"
	"time"

	"github.com/youwont/wagers/internal/models"
	"github.com/youwont/wagers/internal/storage"
)

// Ensure MemoryStore implements storage.Store
var _ storage.Store = (*MemoryStore)(nil)

// MemoryStore implements storage.Store with maps guarded by a single RWMutex.
// Reads share the lock; every write holds it exclusively, which makes each
// write atomic with respect to all other operations.
type MemoryStore struct {
	mu sync.RWMutex

	users     map[string]*models.User
	userOrder []string
	usernames map[string]string // username -> user ID

	groups      map[string]*models.Group
	groupOrder  []string
	inviteCodes map[string]string // invite code -> group ID

	bets     map[string]*models.Bet
	betOrder []string

	ledger map[string][]*models.LedgerEntry // user ID -> entries, oldest first

	now func() time.Time
}

// Option configures a MemoryStore.
type Option func(*MemoryStore)

// WithClock overrides the clock used for generated timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// New creates an empty MemoryStore.
func New(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		users:       make(map[string]*models.User),
		usernames:   make(map[string]string),
		groups:      make(map[string]*models.Group),
		inviteCodes: make(map[string]string),
		bets:        make(map[string]*models.Bet),
		ledger:      make(map[string][]*models.LedgerEntry),
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close releases the store's contents.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = make(map[string]*models.User)
	s.userOrder = nil
	s.usernames = make(map[string]string)
	s.groups = make(map[string]*models.Group)
	s.groupOrder = nil
	s.inviteCodes = make(map[string]string)
	s.bets = make(map[string]*models.Bet)
	s.betOrder = nil
	s.ledger = make(map[string][]*models.LedgerEntry)
	return nil
}

// removeID returns order without id.
func removeID(order []string, id string) []string {
	out := order[:0]
	for _, v := range order {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
