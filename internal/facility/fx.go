package facility

import (
	"github.com/smallbiznis/wardboard/internal/facility/repository"
	"github.com/smallbiznis/wardboard/internal/facility/service"
	"go.uber.org/fx"
)

var Module = fx.Module("facility.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
