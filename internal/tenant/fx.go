package tenant

import (
	"github.com/atriumhq/atrium/internal/tenant/repository"
	"github.com/atriumhq/atrium/internal/tenant/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tenant.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
