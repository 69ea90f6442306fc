package identity

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu    sync.RWMutex
	users map[string]User
	logs  []AuthLog
}

// NewMemoryRepository builds an in-memory user store for development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{users: make(map[string]User)}
}

func (r *memoryRepository) Create(_ context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Phone]; exists {
		return ErrPhoneRegistered
	}
	r.users[user.Phone] = user
	return nil
}

func (r *memoryRepository) FindByPhone(_ context.Context, phone string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[phone]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.ID == id {
			return user, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (r *memoryRepository) UpdatePIN(_ context.Context, id string, pinHash []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for phone, user := range r.users {
		if user.ID == id {
			user.PINHash = pinHash
			r.users[phone] = user
			return nil
		}
	}
	return ErrUserNotFound
}

func (r *memoryRepository) AppendAuthLog(_ context.Context, log AuthLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, log)
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for phone, user := range r.users {
		if user.ID == id {
			delete(r.users, phone)
			kept := r.logs[:0]
			for _, log := range r.logs {
				if log.UserID != id {
					kept = append(kept, log)
				}
			}
			r.logs = kept
			return nil
		}
	}
	return ErrUserNotFound
}

// AuthLogs returns the recorded attempts for a user. Test helper.
func AuthLogs(repo Repository, userID string) []AuthLog {
	mem, ok := repo.(*memoryRepository)
	if !ok {
		return nil
	}
	mem.mu.RLock()
	defer mem.mu.RUnlock()
	var out []AuthLog
	for _, log := range mem.logs {
		if log.UserID == userID {
			out = append(out, log)
		}
	}
	return out
}
