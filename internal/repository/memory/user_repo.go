package memory

import (
	"context"
	"fmt"

	"go-autofill-backend/internal/domain"
)

type userRepo struct {
	s *Store
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.checkUniqueLocked("", user.Username, user.Email); err != nil {
		return err
	}

	user.ID = r.s.newID()
	user.CreatedAt = r.s.now()
	r.s.users[user.ID] = cloneUser(user)
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if u, ok := r.s.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (r *userRepo) Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	if patch.Email != nil && *patch.Email != existing.Email {
		if err := r.checkUniqueLocked(id, "", *patch.Email); err != nil {
			return nil, err
		}
	}

	updated := cloneUser(existing)
	patch.Apply(updated)
	r.s.users[id] = cloneUser(updated)
	return updated, nil
}

// checkUniqueLocked rejects a username or email held by a user other than
// selfID. Empty keys are skipped.
func (r *userRepo) checkUniqueLocked(selfID, username, email string) error {
	for id, u := range r.s.users {
		if id == selfID {
			continue
		}
		if username != "" && u.Username == username {
			return fmt.Errorf("%w: username %q already exists", domain.ErrDuplicateKey, username)
		}
		if email != "" && u.Email == email {
			return fmt.Errorf("%w: email already exists", domain.ErrDuplicateKey)
		}
	}
	return nil
}
