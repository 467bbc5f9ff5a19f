package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/youwont/wagers/internal/models"
	"github.com/youwont/wagers/internal/storage"
)

// CreateUser inserts a new user.
func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.ID]; exists && user.ID != "" {
		return fmt.Errorf("failed to create user %s: id already exists", user.ID)
	}
	if _, taken := s.usernames[user.Username]; taken {
		return fmt.Errorf("failed to create user %s: %w", user.Username, storage.ErrUsernameTaken)
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.now()
	}
	stored := *user
	s.users[user.ID] = &stored
	s.userOrder = append(s.userOrder, user.ID)
	s.usernames[user.Username] = user.ID

	return nil
}

// GetUser retrieves a user by their ID.
func (s *MemoryStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, nil // User not found
	}
	c := *user
	return &c, nil
}

// ListUsers returns all users in creation order.
func (s *MemoryStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*models.User, 0, len(s.userOrder))
	for _, id := range s.userOrder {
		c := *s.users[id]
		users = append(users, &c)
	}
	return users, nil
}
