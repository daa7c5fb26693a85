package auth

import (
	"github.com/smallbiznis/wardboard/internal/auth/repository"
	"github.com/smallbiznis/wardboard/internal/auth/service"
	"github.com/smallbiznis/wardboard/internal/auth/session"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
	session.Module,
)
