package utility

import (
	"github.com/atriumhq/atrium/internal/utility/repository"
	"github.com/atriumhq/atrium/internal/utility/service"
	"go.uber.org/fx"
)

var Module = fx.Module("utility.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
