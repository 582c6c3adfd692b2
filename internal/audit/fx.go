package audit

import (
	"github.com/atriumhq/atrium/internal/audit/repository"
	"github.com/atriumhq/atrium/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
