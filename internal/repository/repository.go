package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tuanvumaihuynh/storefront/internal/model"
	"github.com/tuanvumaihuynh/storefront/pkg/paging"
)

var (
	ErrNotFound       = errors.New("entity not found")
	ErrNoRowsAffected = errors.New("no rows affected")
	ErrConflict       = errors.New("unique constraint violated")
)

// Repository is the persistence contract shared by every entity.
type Repository[T any] interface {
	// ListPaged returns one page of entities, sorted by the query's sort field
	// with an id tiebreak. Unknown sort fields fail with paging.ErrInvalidField.
	ListPaged(ctx context.Context, q paging.Query) (paging.Page[T], error)
	// GetByID returns ErrNotFound when no entity has the id.
	GetByID(ctx context.Context, id uuid.UUID) (T, error)
	// Create assigns a new id when the entity has none and returns the stored entity.
	Create(ctx context.Context, entity T) (T, error)
	// Update returns ErrNoRowsAffected when nothing was updated.
	Update(ctx context.Context, entity T) error
	// Delete reports whether an entity was removed.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type ProductRepository interface {
	Repository[model.Product]
}

type SaleRepository interface {
	Repository[model.Sale]
	// ListByCustomer pages the sales of one customer.
	ListByCustomer(ctx context.Context, customerID string, q paging.Query) (paging.Page[model.Sale], error)
	// ListByPeriod pages the sales created within the inclusive period,
	// oldest first unless the query sorts otherwise.
	ListByPeriod(ctx context.Context, period model.Period, q paging.Query) (paging.Page[model.Sale], error)
	// SummarizePeriod aggregates every sale created within the inclusive period.
	SummarizePeriod(ctx context.Context, period model.Period) (model.SalesSummary, error)
}

type UserRepository interface {
	Repository[model.User]
	GetByUsername(ctx context.Context, username string) (model.User, error)
	ListRoles(ctx context.Context, userID uuid.UUID) ([]model.Role, error)
	// EnsureRole creates the role when it does not exist yet.
	EnsureRole(ctx context.Context, role model.Role) error
	// AddUserRole is a no-op when the user already has the role.
	AddUserRole(ctx context.Context, userID uuid.UUID, role model.Role) error
}

// Store groups the repositories of one storage backend.
type Store interface {
	Products() ProductRepository
	Sales() SaleRepository
	Users() UserRepository
	OutboxMsgs() OutboxMsgRepository

	// WithTx runs txFunc with a store whose repositories share one transaction.
	WithTx(ctx context.Context, txFunc func(Store) error) error
}

func ensureID(id uuid.UUID) (uuid.UUID, error) {
	if id != uuid.Nil {
		return id, nil
	}

	newID, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, fmt.Errorf("generate uuid v7: %w", err)
	}
	return newID, nil
}

func mapPgError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
	}

	return err
}
