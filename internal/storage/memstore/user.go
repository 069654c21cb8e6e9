package memstore

import (
	"context"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/storefront/internal/model"
	"github.com/tuanvumaihuynh/storefront/internal/repository"
	"github.com/tuanvumaihuynh/storefront/pkg/paging"
)

type userRepository struct {
	s *Store
}

func (r *userRepository) ListPaged(_ context.Context, q paging.Query) (paging.Page[model.User], error) {
	defer r.s.lock()()

	users := slices.Collect(maps.Values(r.s.state().users))
	return paging.Apply(users, q, model.UserSortFields, model.CompareUserID)
}

func (r *userRepository) GetByID(_ context.Context, id uuid.UUID) (model.User, error) {
	defer r.s.lock()()

	u, ok := r.s.state().users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (r *userRepository) GetByUsername(_ context.Context, username string) (model.User, error) {
	defer r.s.lock()()

	for _, u := range r.s.state().users {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (r *userRepository) Create(_ context.Context, u model.User) (model.User, error) {
	defer r.s.lock()()

	id, err := newID(u.ID)
	if err != nil {
		return model.User{}, err
	}
	u.ID = id

	st := r.s.state()
	if _, exists := st.users[u.ID]; exists || r.taken(u) {
		return model.User{}, repository.ErrConflict
	}

	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	u.UpdatedAt = u.CreatedAt

	st.users[u.ID] = u
	return u, nil
}

func (r *userRepository) Update(_ context.Context, u model.User) error {
	defer r.s.lock()()

	st := r.s.state()
	old, ok := st.users[u.ID]
	if !ok {
		return repository.ErrNoRowsAffected
	}

	if r.taken(u) {
		return repository.ErrConflict
	}

	u.CreatedAt = old.CreatedAt
	st.users[u.ID] = u
	return nil
}

func (r *userRepository) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	defer r.s.lock()()

	st := r.s.state()
	if _, ok := st.users[id]; !ok {
		return false, nil
	}

	delete(st.users, id)
	delete(st.userRoles, id)
	return true, nil
}

func (r *userRepository) ListRoles(_ context.Context, userID uuid.UUID) ([]model.Role, error) {
	defer r.s.lock()()

	roles := slices.Collect(maps.Keys(r.s.state().userRoles[userID]))
	slices.Sort(roles)
	if roles == nil {
		roles = []model.Role{}
	}
	return roles, nil
}

func (r *userRepository) EnsureRole(_ context.Context, role model.Role) error {
	defer r.s.lock()()

	r.s.state().roles[role] = struct{}{}
	return nil
}

func (r *userRepository) AddUserRole(_ context.Context, userID uuid.UUID, role model.Role) error {
	defer r.s.lock()()

	st := r.s.state()
	if _, ok := st.users[userID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := st.roles[role]; !ok {
		return repository.ErrNotFound
	}

	if st.userRoles[userID] == nil {
		st.userRoles[userID] = map[model.Role]struct{}{}
	}
	st.userRoles[userID][role] = struct{}{}
	return nil
}

// taken reports whether another user already has the username or email.
func (r *userRepository) taken(u model.User) bool {
	for _, other := range r.s.state().users {
		if other.ID == u.ID {
			continue
		}
		if other.Username == u.Username || other.Email == u.Email {
			return true
		}
	}
	return false
}
