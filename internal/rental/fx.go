package rental

import (
	"github.com/atriumhq/atrium/internal/rental/repository"
	"github.com/atriumhq/atrium/internal/rental/service"
	"go.uber.org/fx"
)

var Module = fx.Module("rental.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
