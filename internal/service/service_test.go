package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/youwont/wagers/internal/calculator"
	"github.com/youwont/wagers/internal/fixtures"
	"github.com/youwont/wagers/internal/metrics"
	"github.com/youwont/wagers/internal/storage/memory"
)

type testEnv struct {
	store   *memory.MemoryStore
	bets    *BetService
	groups  *GroupService
	queries *QueryService
	metrics *metrics.Metrics
}

// setupTestServices creates services over a store seeded with the sample community.
func setupTestServices(t *testing.T) (*testEnv, func()) {
	t.Helper()

	store := memory.New()
	if err := fixtures.Load(context.Background(), store); err != nil {
		t.Fatalf("failed to load fixtures: %v", err)
	}

	m := metrics.New(prometheus.NewRegistry())
	policy := calculator.Parimutuel{}
	bets := NewBetService(store, policy, m)

	env := &testEnv{
		store:   store,
		bets:    bets,
		groups:  NewGroupService(store, bets),
		queries: NewQueryService(store, policy),
		metrics: m,
	}

	cleanup := func() {
		store.Close()
	}

	return env, cleanup
}

func (e *testEnv) points(t *testing.T, userID string) int64 {
	t.Helper()

	user, err := e.store.GetUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if user == nil {
		t.Fatalf("user %s not found", userID)
	}
	return user.Points
}

func TestKeyedMutex(t *testing.T) {
	t.Run("serializes the same key", func(t *testing.T) {
		k := newKeyedMutex()
		counter := 0

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock := k.Lock("b1")
				defer unlock()
				v := counter
				time.Sleep(time.Microsecond)
				counter = v + 1
			}()
		}
		wg.Wait()

		if counter != 50 {
			t.Errorf("expected counter 50, got %d", counter)
		}
	})

	t.Run("different keys do not block", func(t *testing.T) {
		k := newKeyedMutex()
		unlockA := k.Lock("a")
		defer unlockA()

		done := make(chan struct{})
		go func() {
			unlock := k.Lock("b")
			unlock()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("lock on a different key blocked")
		}
	})

	t.Run("released keys are dropped", func(t *testing.T) {
		k := newKeyedMutex()
		unlock := k.Lock("b1")
		if len(k.locks) != 1 {
			t.Fatalf("expected 1 held key, got %d", len(k.locks))
		}
		unlock()
		if len(k.locks) != 0 {
			t.Errorf("expected no held keys, got %d", len(k.locks))
		}
	})
}
