package authorization

import (
	"context"

	authdomain "github.com/smallbiznis/wardboard/internal/auth/domain"
	"github.com/smallbiznis/wardboard/internal/domainerr"
)

type Service interface {
	// Authorize returns ErrForbidden when role may not perform action on object.
	Authorize(ctx context.Context, role authdomain.Role, object, action string) error
}

var (
	ErrForbidden     = domainerr.Forbidden("forbidden")
	ErrInvalidRole   = domainerr.Validation("invalid_role")
	ErrInvalidObject = domainerr.Validation("invalid_object")
	ErrInvalidAction = domainerr.Validation("invalid_action")
)
