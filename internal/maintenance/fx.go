package maintenance

import (
	"github.com/atriumhq/atrium/internal/maintenance/repository"
	"github.com/atriumhq/atrium/internal/maintenance/service"
	"go.uber.org/fx"
)

var Module = fx.Module("maintenance.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
