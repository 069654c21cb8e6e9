package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/storefront/pkg/paging"
)

type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleCustomer Role = "Customer"
)

func (r Role) String() string {
	return string(r)
}

// Validate implements the enum validation contract.
func (r Role) Validate() error {
	switch r {
	case RoleAdmin, RoleCustomer:
		return nil
	default:
		return fmt.Errorf("unknown role: %q", string(r))
	}
}

// ParseRole parses a role name case-insensitively.
func ParseRole(s string) (Role, error) {
	for _, r := range []Role{RoleAdmin, RoleCustomer} {
		if strings.EqualFold(s, string(r)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role: %q", s)
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PhoneNumber  string    `json:"phone_number"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserSortFields is the whitelist of fields a user listing can be sorted by.
var UserSortFields = paging.Fields[User]{
	"name": {
		Column:  "name",
		Compare: func(a, b User) int { return strings.Compare(a.Name, b.Name) },
	},
	"username": {
		Column:  "username",
		Compare: func(a, b User) int { return strings.Compare(a.Username, b.Username) },
	},
	"email": {
		Column:  "email",
		Compare: func(a, b User) int { return strings.Compare(a.Email, b.Email) },
	},
	"createdat": {
		Column:  "created_at",
		Compare: func(a, b User) int { return a.CreatedAt.Compare(b.CreatedAt) },
	},
}

func CompareUserID(a, b User) int {
	return CompareID(a.ID, b.ID)
}
