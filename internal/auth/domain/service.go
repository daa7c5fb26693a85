package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/wardboard/internal/domainerr"
)

type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// UpdateUserRequest leaves the password unchanged when Password is empty.
type UpdateUserRequest struct {
	Password string `json:"password"`
	Role     *Role  `json:"role"`
}

type Service interface {
	Authenticate(ctx context.Context, username, password string) (*User, error)
	GetUser(ctx context.Context, id snowflake.ID) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)
	UpdateUser(ctx context.Context, id snowflake.ID, req UpdateUserRequest) (*User, error)
	ToggleActive(ctx context.Context, actorID, id snowflake.ID) (*User, error)
	// Install creates the first admin. It fails once any admin exists.
	Install(ctx context.Context, username, password string) (*User, error)
	EnsureDefaultAdmin(ctx context.Context) (*User, error)
}

var (
	ErrInvalidCredentials = domainerr.Validation("invalid_credentials")
	ErrUserNotFound       = domainerr.NotFound("user_not_found")
	ErrUserExists         = domainerr.Conflict("user_exists")
	ErrInvalidUsername    = domainerr.Validation("invalid_username")
	ErrInvalidPassword    = domainerr.Validation("invalid_password")
	ErrInvalidRole        = domainerr.Validation("invalid_role")
	ErrSelfDeactivation   = domainerr.Validation("cannot_deactivate_self")
	ErrAlreadyInstalled   = domainerr.Conflict("already_installed")
)
