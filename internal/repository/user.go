package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/storefront/internal/model"
	"github.com/tuanvumaihuynh/storefront/internal/storage/db"
	"github.com/tuanvumaihuynh/storefront/pkg/paging"
)

const userColumns = `id, name, username, email, phone_number, role, password_hash, created_at, updated_at`

type userRepository struct {
	db db.DB
}

func NewUserRepository(db db.DB) UserRepository {
	return &userRepository{db: db}
}

func (r userRepository) ListPaged(ctx context.Context, q paging.Query) (paging.Page[model.User], error) {
	q = q.Normalize()

	orderBy, err := model.UserSortFields.OrderBy(q, "id ASC")
	if err != nil {
		return paging.Page[model.User]{}, err
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return paging.Page[model.User]{}, fmt.Errorf("count users: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY `+orderBy+`
		LIMIT @limit OFFSET @offset
	`, pgx.NamedArgs{
		"limit":  q.Limit(),
		"offset": q.Offset(),
	})
	if err != nil {
		return paging.Page[model.User]{}, fmt.Errorf("list users: %w", err)
	}

	users, err := pgx.CollectRows(rows, scanUser)
	if err != nil {
		return paging.Page[model.User]{}, fmt.Errorf("collect users: %w", err)
	}

	return paging.NewPage(users, total, q), nil
}

func (r userRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	return r.getOne(ctx, `WHERE id = @key`, id)
}

func (r userRepository) GetByUsername(ctx context.Context, username string) (model.User, error) {
	return r.getOne(ctx, `WHERE username = @key`, username)
}

func (r userRepository) getOne(ctx context.Context, where string, key any) (model.User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		`+where, pgx.NamedArgs{"key": key})
	if err != nil {
		return model.User{}, fmt.Errorf("get user: %w", err)
	}

	user, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		return model.User{}, mapPgError(err)
	}

	return user, nil
}

func (r userRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	id, err := ensureID(user.ID)
	if err != nil {
		return model.User{}, err
	}
	user.ID = id

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.UpdatedAt = user.CreatedAt

	if _, err := r.db.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (@id, @name, @username, @email, @phone_number, @role, @password_hash, @created_at, @updated_at)
	`, userArgs(user)); err != nil {
		return model.User{}, fmt.Errorf("create user: %w", mapPgError(err))
	}

	return user, nil
}

func (r userRepository) Update(ctx context.Context, user model.User) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET
			name          = @name,
			username      = @username,
			email         = @email,
			phone_number  = @phone_number,
			role          = @role,
			password_hash = @password_hash,
			updated_at    = @updated_at
		WHERE id = @id
	`, userArgs(user))
	if err != nil {
		return fmt.Errorf("update user: %w", mapPgError(err))
	}

	if tag.RowsAffected() == 0 {
		return ErrNoRowsAffected
	}

	return nil
}

func (r userRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r userRepository) ListRoles(ctx context.Context, userID uuid.UUID) ([]model.Role, error) {
	rows, err := r.db.Query(ctx, `
		SELECT role_name
		FROM user_roles
		WHERE user_id = @user_id
		ORDER BY role_name
	`, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("list user roles: %w", err)
	}

	roles, err := pgx.CollectRows(rows, pgx.RowTo[model.Role])
	if err != nil {
		return nil, fmt.Errorf("collect user roles: %w", err)
	}

	return roles, nil
}

func (r userRepository) EnsureRole(ctx context.Context, role model.Role) error {
	if _, err := r.db.Exec(ctx, `
		INSERT INTO roles (name)
		VALUES (@name)
		ON CONFLICT (name) DO NOTHING
	`, pgx.NamedArgs{"name": role}); err != nil {
		return fmt.Errorf("ensure role: %w", err)
	}

	return nil
}

func (r userRepository) AddUserRole(ctx context.Context, userID uuid.UUID, role model.Role) error {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_name)
		SELECT @user_id, @role_name
		WHERE EXISTS (SELECT 1 FROM users WHERE id = @user_id)
		ON CONFLICT (user_id, role_name) DO NOTHING
	`, pgx.NamedArgs{
		"user_id":   userID,
		"role_name": role,
	})
	if err != nil {
		return fmt.Errorf("add user role: %w", err)
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = @id)`, pgx.NamedArgs{"id": userID}).Scan(&exists); err != nil {
			return fmt.Errorf("check user exists: %w", err)
		}
		if !exists {
			return ErrNotFound
		}
	}

	return nil
}

func userArgs(u model.User) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":            u.ID,
		"name":          u.Name,
		"username":      u.Username,
		"email":         u.Email,
		"phone_number":  u.PhoneNumber,
		"role":          u.Role,
		"password_hash": u.PasswordHash,
		"created_at":    u.CreatedAt,
		"updated_at":    u.UpdatedAt,
	}
}

func scanUser(row pgx.CollectableRow) (model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Username,
		&u.Email,
		&u.PhoneNumber,
		&u.Role,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}
