package auth

import (
	"github.com/atriumhq/atrium/internal/auth/repository"
	"github.com/atriumhq/atrium/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
