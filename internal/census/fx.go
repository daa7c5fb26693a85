package census

import (
	"github.com/smallbiznis/wardboard/internal/census/repository"
	"github.com/smallbiznis/wardboard/internal/census/service"
	"go.uber.org/fx"
)

var Module = fx.Module("census.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
