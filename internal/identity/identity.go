// Package identity wraps user lookup, credential verification and role
// assignment behind the narrow contract the services depend on.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/storefront/internal/model"
	"github.com/tuanvumaihuynh/storefront/internal/repository"
)

var (
	ErrUserNotFound = errors.New("user not found")
	// ErrRejected reports a request the provider refused.
	ErrRejected = errors.New("identity rejected")
	// ErrDuplicateUser is the ErrRejected of a taken username or email.
	ErrDuplicateUser = fmt.Errorf("%w: username or email already taken", ErrRejected)
)

type Provider interface {
	WithStore(store repository.Store) Provider
	FindByUsername(ctx context.Context, username string) (model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (model.User, error)
	// CheckPassword reports whether password matches the user's credential.
	CheckPassword(ctx context.Context, user model.User, password string) bool
	Roles(ctx context.Context, user model.User) ([]model.Role, error)
	// CreateUser hashes password and stores the user.
	CreateUser(ctx context.Context, user model.User, password string) (model.User, error)
	// AddToRole creates the role if absent and assigns it. Assigning a role
	// the user already has is a no-op.
	AddToRole(ctx context.Context, user model.User, role model.Role) error
}

type PasswordHasher interface {
	HashPassword(password string) (string, error)
	CheckPassword(password, hash string) bool
}

type provider struct {
	store  repository.Store
	hasher PasswordHasher
}

func NewProvider(store repository.Store, hasher PasswordHasher) Provider {
	return &provider{
		store:  store,
		hasher: hasher,
	}
}

func (p *provider) WithStore(store repository.Store) Provider {
	return &provider{
		store:  store,
		hasher: p.hasher,
	}
}

func (p *provider) FindByUsername(ctx context.Context, username string) (model.User, error) {
	user, err := p.store.Users().GetByUsername(ctx, username)
	if err != nil {
		return model.User{}, mapNotFound(err)
	}
	return user, nil
}

func (p *provider) FindByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	user, err := p.store.Users().GetByID(ctx, id)
	if err != nil {
		return model.User{}, mapNotFound(err)
	}
	return user, nil
}

func (p *provider) CheckPassword(_ context.Context, user model.User, password string) bool {
	if user.PasswordHash == "" {
		return false
	}
	return p.hasher.CheckPassword(password, user.PasswordHash)
}

func (p *provider) Roles(ctx context.Context, user model.User) ([]model.Role, error) {
	roles, err := p.store.Users().ListRoles(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

func (p *provider) CreateUser(ctx context.Context, user model.User, password string) (model.User, error) {
	hash, err := p.hasher.HashPassword(password)
	if err != nil {
		return model.User{}, fmt.Errorf("%w: %w", ErrRejected, err)
	}
	user.PasswordHash = hash

	created, err := p.store.Users().Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return model.User{}, ErrDuplicateUser
		}
		return model.User{}, fmt.Errorf("create user: %w", err)
	}

	return created, nil
}

func (p *provider) AddToRole(ctx context.Context, user model.User, role model.Role) error {
	if err := role.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrRejected, err)
	}

	users := p.store.Users()
	if err := users.EnsureRole(ctx, role); err != nil {
		return fmt.Errorf("ensure role: %w", err)
	}

	if err := users.AddUserRole(ctx, user.ID, role); err != nil {
		return fmt.Errorf("add user role: %w", mapNotFound(err))
	}

	return nil
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
