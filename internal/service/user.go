package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/storefront/internal/apperr"
	"github.com/tuanvumaihuynh/storefront/internal/event"
	"github.com/tuanvumaihuynh/storefront/internal/identity"
	"github.com/tuanvumaihuynh/storefront/internal/model"
	"github.com/tuanvumaihuynh/storefront/internal/repository"
	"github.com/tuanvumaihuynh/storefront/pkg/paging"
	"github.com/tuanvumaihuynh/storefront/pkg/validator"
)

// CreateUserParams registers a user. An empty Role means model.RoleCustomer.
type CreateUserParams struct {
	Name        string     `validate:"required,max=100"`
	Username    string     `validate:"required,max=100,username"`
	Email       string     `validate:"required,email,max=254"`
	PhoneNumber string     `validate:"omitempty,max=20,phone"`
	Password    string     `validate:"required,min=6,max=100"`
	Role        model.Role `validate:"omitempty,enum"`
}

type UpdateUserParams struct {
	ID          uuid.UUID `validate:"required"`
	Name        string    `validate:"required,max=100"`
	Username    string    `validate:"required,max=100,username"`
	Email       string    `validate:"required,email,max=254"`
	PhoneNumber string    `validate:"omitempty,max=20,phone"`
	// Password is changed only when set.
	Password *string `validate:"omitempty,min=6,max=100"`
}

type UserService interface {
	// CreateUser registers a user through the identity provider and assigns
	// the requested role.
	CreateUser(ctx context.Context, params CreateUserParams) (model.User, error)
	UpdateUser(ctx context.Context, params UpdateUserParams) (model.User, error)
	// DeleteUser reports whether a user was removed.
	DeleteUser(ctx context.Context, id uuid.UUID) (bool, error)
	GetUser(ctx context.Context, id uuid.UUID) (model.User, error)
	ListUsers(ctx context.Context, q paging.Query) (paging.Page[model.User], error)
}

type userService struct {
	store     repository.Store
	identity  identity.Provider
	hasher    identity.PasswordHasher
	validator validator.Validator
}

func NewUserService(
	store repository.Store,
	identity identity.Provider,
	hasher identity.PasswordHasher,
	validator validator.Validator,
) UserService {
	return &userService{
		store:     store,
		identity:  identity,
		hasher:    hasher,
		validator: validator,
	}
}

func (s *userService) CreateUser(ctx context.Context, params CreateUserParams) (model.User, error) {
	if params.Role == "" {
		params.Role = model.RoleCustomer
	}

	if err := validate(s.validator, params); err != nil {
		return model.User{}, err
	}

	var user model.User
	if err := s.store.WithTx(ctx, func(tx repository.Store) error {
		idp := s.identity.WithStore(tx)

		var err error
		user, err = idp.CreateUser(ctx, model.User{
			Name:        params.Name,
			Username:    params.Username,
			Email:       params.Email,
			PhoneNumber: params.PhoneNumber,
			Role:        params.Role,
		}, params.Password)
		if err != nil {
			return identityErr(err)
		}

		if err := idp.AddToRole(ctx, user, params.Role); err != nil {
			return identityErr(err)
		}

		return enqueue(ctx, tx, event.TopicUserRegistered, user.ID.String(), event.UserRegisteredEvent{
			UserID:   user.ID.String(),
			Username: user.Username,
			Role:     user.Role.String(),
		})
	}); err != nil {
		return model.User{}, fmt.Errorf("store with tx: %w", err)
	}

	return user, nil
}

func (s *userService) UpdateUser(ctx context.Context, params UpdateUserParams) (model.User, error) {
	if err := validate(s.validator, params); err != nil {
		return model.User{}, err
	}

	var user model.User
	if err := s.store.WithTx(ctx, func(tx repository.Store) error {
		existing, err := tx.Users().GetByID(ctx, params.ID)
		if err != nil {
			return userLookupErr(params.ID, err)
		}

		existing.Name = params.Name
		existing.Username = params.Username
		existing.Email = params.Email
		existing.PhoneNumber = params.PhoneNumber
		existing.UpdatedAt = time.Now().UTC()

		if params.Password != nil {
			hash, err := s.hasher.HashPassword(*params.Password)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			existing.PasswordHash = hash
		}

		if err := tx.Users().Update(ctx, existing); err != nil {
			switch {
			case errors.Is(err, repository.ErrConflict):
				return apperr.UsernameTakenErr.WrapParent(err)
			case errors.Is(err, repository.ErrNoRowsAffected):
				return apperr.UpdateFailedErr.WithMsgf("failed to update user %s", params.ID).WrapParent(err)
			default:
				return fmt.Errorf("user repository update: %w", err)
			}
		}
		user = existing

		return nil
	}); err != nil {
		return model.User{}, fmt.Errorf("store with tx: %w", err)
	}

	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, id uuid.UUID) (bool, error) {
	deleted, err := s.store.Users().Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("user repository delete: %w", err)
	}

	return deleted, nil
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (model.User, error) {
	user, err := s.identity.FindByID(ctx, id)
	if err != nil {
		return model.User{}, userLookupErr(id, err)
	}

	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, q paging.Query) (paging.Page[model.User], error) {
	page, err := s.store.Users().ListPaged(ctx, q)
	if err != nil {
		return paging.Page[model.User]{}, fmt.Errorf("user repository list paged: %w", mapListErr(err))
	}

	return page, nil
}

func identityErr(err error) error {
	switch {
	case errors.Is(err, identity.ErrDuplicateUser):
		return apperr.UsernameTakenErr.WrapParent(err)
	case errors.Is(err, identity.ErrRejected):
		return apperr.IdentityErr.WithMsgf("%s", err.Error()).WrapParent(err)
	default:
		return fmt.Errorf("identity provider: %w", err)
	}
}

func userLookupErr(id uuid.UUID, err error) error {
	if errors.Is(err, repository.ErrNotFound) || errors.Is(err, identity.ErrUserNotFound) {
		return apperr.UserNotFoundErr.WithMsgf("user %s not found", id)
	}
	return fmt.Errorf("user repository get by id: %w", err)
}
